//go:build !ebiten

package viewer

import "errors"

// Run 无图形界面的构建中不可用
func Run(sim Simulation, scale int) error {
	return errors.New("viewer.Run requires building with the 'ebiten' tag")
}
