package bootstrap

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"paydash/pkg/config"
	"paydash/pkg/database"
	"paydash/pkg/database/migrations"
	"paydash/pkg/logger"
)

// SetupDB 初始化数据库和 ORM，返回的连接由调用方注入各个仓库
func SetupDB() (*gorm.DB, error) {
	// 根据配置文件选择数据库类型
	var dbConfig gorm.Dialector
	switch connection := config.Get("database.connection"); connection {
	case "postgresql":
		dbConfig = setupPostgreSQL()
	case "sqlite":
		dbConfig = setupSQLite()
	default:
		return nil, fmt.Errorf("暂不支持该数据库类型: %s", connection)
	}

	// 连接数据库，并设置 GORM 的日志模式
	db, err := database.Connect(dbConfig, logger.NewGormLogger(), database.PoolConfig{
		MaxOpenConns:    config.GetInt("database.postgresql.max_open_connections"),
		MaxIdleConns:    config.GetInt("database.postgresql.max_idle_connections"),
		ConnMaxLifetime: time.Duration(config.GetInt("database.postgresql.max_life_seconds")) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	// 自动迁移数据库结构
	if err := database.AutoMigrate(db, migrations.RegisterTables()); err != nil {
		logger.ErrorString("数据库", "自动迁移", "数据表结构迁移失败："+err.Error())
		return nil, err
	}
	logger.InfoString("数据库", "自动迁移", "数据表结构迁移成功")

	return db, nil
}

// setupPostgreSQL 配置 PostgreSQL 连接
func setupPostgreSQL() gorm.Dialector {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		config.Get("database.postgresql.host"),
		config.Get("database.postgresql.port"),
		config.Get("database.postgresql.username"),
		config.Get("database.postgresql.password"),
		config.Get("database.postgresql.database"),
		config.Get("database.postgresql.sslmode"),
		config.Get("app.timezone"),
	)
	return postgres.New(postgres.Config{
		DSN: dsn,
	})
}

// setupSQLite 配置 SQLite 连接
func setupSQLite() gorm.Dialector {
	database := config.Get("database.sqlite.database")
	return sqlite.Open(database)
}
