package config

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息
// 说明：只在校验通过后创建，任务运行期间只读
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
	M   Model   // 模型参数
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 参数：config-已校验的配置对象
// 返回：初始化的运行时配置指针
// 说明：未指定集合名时使用任务名作为轨迹输出集合
func NewRuntimeConfig(config Config, job string) *RuntimeConfig {
	rc := &RuntimeConfig{}

	if config.Output.Mongo != nil {
		mongo := *config.Output.Mongo
		if mongo.Col == "" {
			mongo.Col = job
		}
		if mongo.BatchSize <= 0 {
			mongo.BatchSize = 100
		}
		config.Output.Mongo = &mongo
	}
	rc.All = config
	rc.C = config.Control
	rc.M = config.Model

	return rc
}
