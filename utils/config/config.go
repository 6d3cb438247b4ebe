package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v2"
)

// ErrInvalidModel 模型参数不合法
var ErrInvalidModel = errors.New("invalid model parameters")

// DefaultModel 默认模型参数
func DefaultModel() Model {
	return Model{
		Variant:      VariantHCCA,
		Length:       100,
		Densities:    []float64{0.1, 0.2},
		MaxSpeed:     5,
		RadicalRatio: 0.2,
		A:            1,
		B:            1,
		PSlow:        0.1,
		Collision:    CollisionOverwrite,
	}
}

// DefaultUtility 默认前景理论参数
func DefaultUtility() Utility {
	return Utility{
		Alpha:  0.89,
		Beta:   0.92,
		Lambda: 2.25,
		Chi:    0.61,
		Delta:  0.69,
		PJam:   0.5,
	}
}

// Default 默认配置
func Default() Config {
	return Config{
		Model:   DefaultModel(),
		Utility: DefaultUtility(),
		Control: Control{
			Step: ControlStep{Start: 0, Total: 1000},
			Seed: 1,
		},
		Output: Output{History: 500},
	}
}

// Load 解析YAML配置
// 功能：在默认配置的基础上解析YAML数据并校验
// 参数：data-YAML文本
// 返回：配置对象，错误信息
// 说明：使用严格模式，未知字段视为错误
func Load(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate 校验完整配置
func (c Config) Validate() error {
	var errs []error
	if err := c.Model.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Utility.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Control.Step.Start < 0 || c.Control.Step.Total < 0 {
		errs = append(errs, fmt.Errorf("config: control.step must be non-negative, got %+v", c.Control.Step))
	}
	if c.Output.History < 0 {
		errs = append(errs, fmt.Errorf("config: output.history must be non-negative, got %d", c.Output.History))
	}
	if m := c.Output.Mongo; m != nil && (m.URI == "" || m.DB == "") {
		errs = append(errs, errors.New("config: output.mongo requires uri and db"))
	}
	return errors.Join(errs...)
}

// Validate 校验模型参数
// 功能：在构造仿真前检查所有模型参数，返回包含全部不合法项的错误
// 返回：nil或包装了ErrInvalidModel的错误
func (m Model) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidModel}, args...)...))
	}
	switch m.Variant {
	case VariantHCCA, VariantSTCA, VariantNaSch:
	default:
		bad("unknown variant %q", m.Variant)
	}
	if m.Length <= 0 {
		bad("length must be positive, got %d", m.Length)
	}
	if len(m.Densities) != 2 {
		bad("densities must have 2 values, got %d", len(m.Densities))
	}
	for i, d := range m.Densities {
		if !(d >= 0 && d <= 1) {
			bad("densities[%d] must be in [0,1], got %v", i, d)
		}
	}
	if m.MaxSpeed <= 0 {
		bad("max_speed must be positive, got %d", m.MaxSpeed)
	}
	if !(m.RadicalRatio >= 0 && m.RadicalRatio <= 1) {
		bad("radical_ratio must be in [0,1], got %v", m.RadicalRatio)
	}
	if m.A <= 0 {
		bad("a must be positive, got %d", m.A)
	}
	if m.B <= 0 {
		bad("b must be positive, got %d", m.B)
	}
	if !(m.PSlow >= 0 && m.PSlow <= 1) {
		bad("p_slow must be in [0,1], got %v", m.PSlow)
	}
	switch m.Collision {
	case CollisionOverwrite, CollisionKeepFirst, CollisionFail:
	default:
		bad("unknown collision policy %q", m.Collision)
	}
	return errors.Join(errs...)
}

// Validate 校验前景理论参数
func (u Utility) Validate() error {
	var errs []error
	if u.Alpha <= 0 || u.Beta <= 0 {
		errs = append(errs, fmt.Errorf("config: utility alpha/beta must be positive, got %v/%v", u.Alpha, u.Beta))
	}
	if u.Lambda <= 0 {
		errs = append(errs, fmt.Errorf("config: utility lambda must be positive, got %v", u.Lambda))
	}
	if u.Chi <= 0 || u.Delta <= 0 {
		errs = append(errs, fmt.Errorf("config: utility chi/delta must be positive, got %v/%v", u.Chi, u.Delta))
	}
	if !(u.PJam >= 0 && u.PJam <= 1) {
		errs = append(errs, fmt.Errorf("config: utility p_jam must be in [0,1], got %v", u.PJam))
	}
	return errors.Join(errs...)
}
