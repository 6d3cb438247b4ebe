package output

import (
	"context"
	"fmt"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoWriter 轨迹输出到MongoDB
// 功能：每步一个文档，记录各车道的元胞速度、驾驶员类型与单步统计，按批写入
type MongoWriter struct {
	client    *mongo.Client
	col       *mongo.Collection
	batchSize int
	buffer    []any
}

// NewMongoWriter 连接MongoDB并创建轨迹输出
// 参数：cfg-输出配置，Col与BatchSize需已填好默认值
func NewMongoWriter(cfg config.MongoOutput) *MongoWriter {
	client := mongoutil.NewClient(cfg.URI)
	log.Infof("write trajectory to mongo %s.%s, batch size %d", cfg.DB, cfg.Col, cfg.BatchSize)
	return &MongoWriter{
		client:    client,
		col:       client.Database(cfg.DB).Collection(cfg.Col),
		batchSize: max(cfg.BatchSize, 1),
		buffer:    make([]any, 0, cfg.BatchSize),
	}
}

// stepDocument 单步文档
// 格式：{step, length, lanes: [[speed|-1]], radical: [[pos]], stats: {...}}
func stepDocument(f Frame) bson.D {
	lanes := make(bson.A, entity.NumLanes)
	radicals := make(bson.A, entity.NumLanes)
	for lane := range lanes {
		lanes[lane] = f.Lattice.Speeds(lane)
		radicals[lane] = []int{}
	}
	f.Lattice.Each(func(lane, pos int, v entity.Vehicle) bool {
		if v.Profile == entity.ProfileRadical {
			radicals[lane] = append(radicals[lane].([]int), pos)
		}
		return true
	})
	return bson.D{
		{Key: "step", Value: f.Step},
		{Key: "length", Value: f.Lattice.Length()},
		{Key: "empty", Value: lattice.Empty},
		{Key: "lanes", Value: lanes},
		{Key: "radical", Value: radicals},
		{Key: "stats", Value: bson.D{
			{Key: "vehicles", Value: f.Stats.Vehicles},
			{Key: "lane_changes", Value: f.Stats.LaneChanges},
			{Key: "slow_downs", Value: f.Stats.SlowDowns},
			{Key: "collisions", Value: f.Stats.Collisions},
			{Key: "mean_speed", Value: f.Stats.MeanSpeed()},
		}},
	}
}

func (w *MongoWriter) Write(f Frame) error {
	w.buffer = append(w.buffer, stepDocument(f))
	if len(w.buffer) >= w.batchSize {
		return w.flush()
	}
	return nil
}

func (w *MongoWriter) flush() error {
	if len(w.buffer) == 0 {
		return nil
	}
	res, err := w.col.InsertMany(context.Background(), w.buffer)
	if err != nil {
		return fmt.Errorf("output: insert %d steps to mongo: %w", len(w.buffer), err)
	}
	log.Debugf("%d steps written to mongo", len(res.InsertedIDs))
	w.buffer = w.buffer[:0]
	return nil
}

// Close 写入剩余的文档并断开连接
func (w *MongoWriter) Close() error {
	err := w.flush()
	if dErr := w.client.Disconnect(context.Background()); dErr != nil {
		log.Warnf("mongo disconnect err: %v", dErr)
	}
	return err
}
