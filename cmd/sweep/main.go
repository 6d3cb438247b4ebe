// 密度扫描：对一组初始密度分别运行仿真，输出基本图所需的统计量（CSV）
package main

import (
	"flag"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
)

var (
	configPath = flag.String("config", "", "config file path (model, utility, control.seed and output.warmup are used)")
	from       = flag.Float64("from", 0.05, "first density")
	to         = flag.Float64("to", 0.95, "last density")
	step       = flag.Float64("step", 0.05, "density step")
	repeats    = flag.Int("repeats", 1, "runs per density")
	steps      = flag.Int("steps", 0, "steps per run (0 means control.step.total)")
	outPath    = flag.String("out", "", "output csv path (empty means stdout)")

	log = logrus.WithField("module", "sweep")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})

	var data []byte
	if *configPath != "" {
		var err error
		if data, err = os.ReadFile(*configPath); err != nil {
			log.Panicf("config file load err: %v", err)
		}
	}
	c, err := config.Load(data)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	n := c.Control.Step.Total
	if *steps > 0 {
		n = int32(*steps)
	}

	ps := points(densities(*from, *to, *step), *repeats)
	log.Infof("sweeping %d runs of %s (%d steps, warmup %d)", len(ps), c.Model.Variant, n, c.Output.Warmup)
	results := sweep(c, ps, n)

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Panicf("create output err: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeCSV(out, c.Model.Variant, results); err != nil {
		log.Panicf("write output err: %v", err)
	}
	log.Infof("sweep complete")
}
