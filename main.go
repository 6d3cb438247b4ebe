package main

import (
	"encoding/base64"
	"flag"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/task"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
	"github.com/tsinghua-fib-lab/hcca-sim/viewer"
)

var (
	// 模拟任务名，主要用于输出的数据库表名
	job = flag.String("job", "job0", "the name of the whole simulation task")
	// 本程序监听的RPC地址，设置为空则不提供RPC服务
	listen = flag.String("listen", "", "rpc listening address (empty means no rpc), e.g. :51102")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 图形界面
	gui      = flag.Bool("gui", false, "open the viewer window (requires the ebiten build tag)")
	guiScale = flag.Int("gui.scale", 4, "viewer pixels per cell")
	// 结束时打印时空图
	printHistory = flag.Bool("print-history", false, "print the recorded space-time diagram of both lanes on exit")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "hcca")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置，未指定时使用默认配置
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Warn("no config file or config data specified, use default config")
	}
	c, err := config.Load(file)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("%+v", c)

	t, err := task.NewContext(*job, *listen, c)
	if err != nil {
		log.Panicf("task init err: %v", err)
	}
	defer func() {
		if err := t.Close(); err != nil {
			log.Errorf("close err: %v", err)
		}
	}()

	if *gui {
		if err := t.Init(); err != nil {
			log.Panicf("task init err: %v", err)
		}
		if err := viewer.Run(t, *guiScale); err != nil {
			log.Panicf("viewer err: %v", err)
		}
	} else if err := t.Run(); err != nil {
		log.Panicf("simulation err: %v", err)
	}

	if *printHistory && t.History() != nil {
		for lane := 0; lane < entity.NumLanes; lane++ {
			log.Infof("lane %d space-time diagram:\n%s", lane, t.History().Render(lane))
		}
	}
}
