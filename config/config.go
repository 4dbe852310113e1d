package config

// Initialize 触发加载 config 包下所有文件的 init 方法
func Initialize() {
	// 空函数即可
}
