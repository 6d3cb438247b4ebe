package config

// Variant 元胞自动机模型变体
// 说明：三种模型共享同一套实现，简化模型通过关闭部分规则得到
type Variant string

const (
	VariantHCCA  Variant = "hcca"  // 异质驾驶员双车道模型（默认）
	VariantSTCA  Variant = "stca"  // 对称双车道模型：无驾驶员差异，无前景理论判断，固定慢化概率
	VariantNaSch Variant = "nasch" // NaSch模型：不变道，固定慢化概率
)

// CollisionPolicy 两辆车在下一时刻落到同一元胞时的处理方式
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite"  // 后写入的车辆覆盖先写入的车辆（与原始模型一致），计数并记录日志
	CollisionKeepFirst CollisionPolicy = "keep_first" // 保留先写入的车辆，丢弃后写入的车辆，计数并记录日志
	CollisionFail      CollisionPolicy = "fail"       // 直接返回错误，本步结果不生效
)

// Model 元胞自动机模型参数
// 功能：定义构造仿真所需的全部模型参数
// 说明：构造时统一校验，运行期间不可修改
type Model struct {
	Variant      Variant         `yaml:"variant"`       // 模型变体
	Length       int             `yaml:"length"`        // 每条车道的元胞数
	Densities    []float64       `yaml:"densities"`     // 两条车道的初始车流密度
	MaxSpeed     int             `yaml:"max_speed"`     // 最大车速
	RadicalRatio float64         `yaml:"radical_ratio"` // 激进驾驶员比例
	A            int             `yaml:"a"`             // 加速度
	B            int             `yaml:"b"`             // 减速度
	PSlow        float64         `yaml:"p_slow"`        // 固定随机慢化概率，仅stca/nasch使用
	Collision    CollisionPolicy `yaml:"collision"`     // 目标元胞冲突的处理方式
}

// LaneChangeEnabled 是否允许变道
func (m Model) LaneChangeEnabled() bool {
	return m.Variant != VariantNaSch
}

// AdaptiveSlowdown 是否使用与状态相关的随机慢化概率
func (m Model) AdaptiveSlowdown() bool {
	return m.Variant == VariantHCCA
}

// Heterogeneous 是否区分驾驶员类型并使用前景理论判断
func (m Model) Heterogeneous() bool {
	return m.Variant == VariantHCCA
}

// Utility 前景理论参数
// 功能：集中存放变道效用评价所用的行为参数
type Utility struct {
	Alpha  float64 `yaml:"alpha"`  // 收益价值函数指数
	Beta   float64 `yaml:"beta"`   // 损失价值函数指数
	Lambda float64 `yaml:"lambda"` // 损失厌恶系数
	Chi    float64 `yaml:"chi"`    // 收益概率权重参数
	Delta  float64 `yaml:"delta"`  // 损失概率权重参数
	PJam   float64 `yaml:"p_jam"`  // 拥堵概率
}

// ControlStep 指定模拟器模拟步数范围的配置项
type ControlStep struct {
	Start int32 `yaml:"start"` // 开始步数
	Total int32 `yaml:"total"` // 总步数
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
	Seed uint64      `yaml:"seed"` // 随机数种子
}

// MongoOutput 轨迹输出到MongoDB的配置
type MongoOutput struct {
	URI       string `yaml:"uri"`                  // MongoDB连接字符串
	DB        string `yaml:"db"`                   // 数据库名
	Col       string `yaml:"col,omitempty"`        // 集合名，为空则使用任务名
	BatchSize int    `yaml:"batch_size,omitempty"` // 批量写入的步数，默认100
}

// Output 输出配置
type Output struct {
	History int          `yaml:"history,omitempty"` // 内存中保留的时空图步数，0表示不记录
	Warmup  int32        `yaml:"warmup,omitempty"`  // 统计量开始累计前跳过的步数
	Mongo   *MongoOutput `yaml:"mongo,omitempty"`   // 轨迹输出，为空则不输出
}

// Input 初始状态输入配置
type Input struct {
	File string `yaml:"file,omitempty"` // 初始元胞状态文本文件，为空则按密度随机生成
}

// Config YAML配置文件的根结构
type Config struct {
	Model   Model   `yaml:"model"`   // 模型参数
	Utility Utility `yaml:"utility"` // 前景理论参数
	Input   Input   `yaml:"input"`   // 初始状态
	Control Control `yaml:"control"` // 模拟过程控制
	Output  Output  `yaml:"output"`  // 输出
}
