package output

import (
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/vehicle"
	"go.mongodb.org/mongo-driver/bson"
)

func testFrame(step int32, rows ...string) Frame {
	l := lattice.Parse(rows, entity.ProfileOther)
	stats := vehicle.StepStats{Step: step}
	l.Each(func(_, _ int, v entity.Vehicle) bool {
		stats.Vehicles++
		stats.SpeedSum += v.Speed
		return true
	})
	return Frame{Step: step, Lattice: l, Stats: stats}
}

func TestHistory(t *testing.T) {
	h := NewHistory(2)
	require.NoError(t, h.Write(testFrame(1, "1...", "..2.")))
	require.NoError(t, h.Write(testFrame(2, ".1..", "...3")))
	require.NoError(t, h.Write(testFrame(3, "..2.", "3...")))
	require.NoError(t, h.Close())

	assert.Equal(t, 2, h.Len())
	rows := h.Rows()
	assert.Equal(t, int32(2), rows[0].Step)
	assert.Equal(t, int32(3), rows[1].Step)
	assert.Equal(t, [][]int{{-1, 1, -1, -1}, {-1, -1, 2, -1}}, h.Lane(entity.LANE0))
	assert.Equal(t, "...3\n3...\n", h.Render(entity.LANE1))
}

func TestMeasure(t *testing.T) {
	f := testFrame(1, "1.3.......", "......2...")
	f.Stats.LaneChanges = 1
	f.Stats.SlowDowns = 2
	m := Measure(f)
	assert.InDelta(t, 3.0/20, m.Density, 1e-12)
	assert.InDelta(t, 0.2, m.LaneDensities[entity.LANE0], 1e-12)
	assert.InDelta(t, 0.1, m.LaneDensities[entity.LANE1], 1e-12)
	assert.InDelta(t, 2.0, m.MeanSpeed, 1e-12)
	assert.InDelta(t, 6.0/20, m.Flow, 1e-12)
	assert.InDelta(t, 1.0/3, m.LaneChangeRate, 1e-12)
	assert.InDelta(t, 2.0/3, m.SlowDownRate, 1e-12)

	empty := Measure(testFrame(1, "....", "...."))
	assert.Zero(t, empty.MeanSpeed)
	assert.Zero(t, empty.LaneChangeRate)
}

func TestStatisticsWarmup(t *testing.T) {
	s := NewStatistics(1)
	assert.Equal(t, Summary{}, s.Summary())

	f := testFrame(1, "5...", "....")
	f.Stats.Collisions = 7
	require.NoError(t, s.Write(f))
	assert.Zero(t, s.Summary().Samples)

	f = testFrame(2, "2...", "....")
	f.Stats.Collisions = 1
	require.NoError(t, s.Write(f))
	require.NoError(t, s.Write(testFrame(3, "4...", "4...")))
	require.NoError(t, s.Close())

	sum := s.Summary()
	assert.Equal(t, 2, sum.Samples)
	assert.InDelta(t, 3.0, sum.MeanSpeed, 1e-12)
	assert.InDelta(t, (1.0/8+2.0/8)/2, sum.Density, 1e-12)
	assert.InDelta(t, (2.0/8+8.0/8)/2, sum.Flow, 1e-12)
	assert.Equal(t, 1, sum.Collisions)
}

type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(Frame) error {
	w.writes++
	return errors.New("boom")
}

func (w *failingWriter) Close() error {
	return nil
}

func TestMulti(t *testing.T) {
	h := NewHistory(4)
	fw := &failingWriter{}
	w := Multi(fw, h)
	err := w.Write(testFrame(1, "1...", "...."))
	assert.Error(t, err)
	assert.Equal(t, 1, fw.writes)
	assert.Equal(t, 1, h.Len())
	assert.NoError(t, w.Close())
}

func TestStepDocument(t *testing.T) {
	f := testFrame(4, "1.3.", "..2.")
	f.Lattice.Put(entity.LANE1, 3, entity.Vehicle{Speed: 0, Profile: entity.ProfileRadical})
	d := stepDocument(f)
	m := d.Map()
	assert.Equal(t, int32(4), m["step"])
	assert.Equal(t, 4, m["length"])
	lanes := m["lanes"].(bson.A)
	assert.Equal(t, []int{1, -1, 3, -1}, lanes[entity.LANE0])
	assert.Equal(t, []int{-1, -1, 2, 0}, lanes[entity.LANE1])
	radicals := m["radical"].(bson.A)
	assert.Equal(t, []int{}, radicals[entity.LANE0])
	assert.Equal(t, []int{3}, radicals[entity.LANE1])

	_, err := bson.Marshal(d)
	assert.NoError(t, err)
}

func TestMongoWriterBuffers(t *testing.T) {
	w := &MongoWriter{batchSize: 10}
	require.NoError(t, w.Write(testFrame(1, "1...", "....")))
	require.NoError(t, w.Write(testFrame(2, ".1..", "....")))
	assert.Equal(t, []int32{1, 2}, pendingSteps(w))
}

// pendingSteps 缓冲区中尚未写入的步数
func pendingSteps(w *MongoWriter) []int32 {
	return lo.Map(w.buffer, func(d any, _ int) int32 {
		return d.(bson.D)[0].Value.(int32)
	})
}
