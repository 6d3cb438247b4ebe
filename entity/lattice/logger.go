package lattice

import "github.com/sirupsen/logrus"

// log 元胞状态模块的日志记录器
var log = logrus.WithField("module", "lattice")
