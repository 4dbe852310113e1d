package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"paydash/app/repositories"
	"paydash/bootstrap"
	btsConfig "paydash/config"
	"paydash/pkg/config"
	"paydash/pkg/database"
	"paydash/pkg/logger"
	"paydash/pkg/queue"
	"paydash/pkg/redis"
)

// 加载应用程序的基础配置
func init() {
	// 加载 config 目录下的配置信息
	btsConfig.Initialize()
}

// App 应用程序上下文，用于优雅关闭
type App struct {
	server *http.Server
	db     *gorm.DB
	redis  *redis.RedisManager
	worker *queue.Worker
}

func main() {
	// 解析命令行参数
	env := parseFlags()

	// 初始化应用
	app, err := setupApplication(env)
	if err != nil {
		log.Fatalf("初始化应用程序失败: %v", err)
	}

	// 启动服务器（包含优雅关闭）
	app.start()
}

// parseFlags 解析命令行参数
// 返回环境配置参数
func parseFlags() string {
	var env string
	flag.StringVar(&env, "env", "", "加载 .env 文件，例如 --env=testing 将加载 .env.testing 文件")
	flag.Parse()
	return env
}

// setupApplication 初始化应用程序所需的各种组件
// 数据库连接在这里创建一次，随后注入到仓库和控制器
func setupApplication(env string) (*App, error) {
	// 先初始化配置
	config.InitConfig(env)

	// 然后初始化日志
	bootstrap.SetupLogger()

	// 初始化数据库
	db, err := bootstrap.SetupDB()
	if err != nil {
		return nil, err
	}

	// 初始化 Redis，不可用时降级运行：没有补偿队列和分布式限流
	manager, err := bootstrap.SetupRedis()
	if err != nil {
		logger.ErrorString("Redis", "Setup", err.Error())
		manager = nil
	}

	// 初始化落库补偿队列
	recordQueue, worker := bootstrap.SetupQueue(manager, repositories.NewPaymentRepository(db))

	// 设置 gin 为生产模式
	// 这样可以减少不必要的日志输出，提高性能
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if err := bootstrap.SetupRoute(router, bootstrap.RouteDeps{
		DB:          db,
		Redis:       manager,
		RecordQueue: recordQueue,
	}); err != nil {
		return nil, err
	}

	return &App{
		server: &http.Server{
			Addr:              ":" + config.Get("app.port"),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:     db,
		redis:  manager,
		worker: worker,
	}, nil
}

// start 启动服务器并处理优雅关闭
func (a *App) start() {
	// 创建系统信号监听器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("服务器正在启动，监听端口 %s\n", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号
	<-quit
	log.Println("正在关闭服务器...")

	// 创建一个带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 先停止接收请求，再停止补偿队列
	if err := a.server.Shutdown(ctx); err != nil {
		log.Printf("服务器关闭异常: %v", err)
	}
	if a.worker != nil {
		a.worker.Stop(ctx)
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if err := database.Close(a.db); err != nil {
		log.Printf("数据库关闭异常: %v", err)
	}
	_ = logger.Logger.Sync()

	log.Println("服务器已成功关闭")
}
