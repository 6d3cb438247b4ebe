package lattice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
)

func TestLatticeInit(t *testing.T) {
	l := lattice.New(8)
	assert.Equal(t, 8, l.Length())
	assert.Equal(t, 0, l.Total())
	for lane := 0; lane < entity.NumLanes; lane++ {
		assert.Equal(t, 0, l.Count(lane))
		for _, v := range l.Speeds(lane) {
			assert.Equal(t, lattice.Empty, v)
		}
	}
	assert.Panics(t, func() { lattice.New(0) })
}

func TestLatticePutRemove(t *testing.T) {
	l := lattice.New(5)
	v := entity.Vehicle{Speed: 3, Profile: entity.ProfileRadical}

	_, replaced := l.Put(0, 2, v)
	assert.False(t, replaced)
	assert.Equal(t, 1, l.Count(0))

	// 环形下标
	got, ok := l.Get(0, 7)
	require.True(t, ok)
	assert.Equal(t, v, got)
	assert.True(t, l.Occupied(0, -3))

	prev, replaced := l.Put(0, 2, entity.Vehicle{Speed: 1})
	assert.True(t, replaced)
	assert.Equal(t, v, prev)
	assert.Equal(t, 1, l.Count(0), "overwrite must not change the count")
	assert.Equal(t, 1, l.Total())
}

func TestLatticeEachOrder(t *testing.T) {
	l := lattice.Parse([]string{
		".3..1",
		"2...4",
	}, entity.ProfileOther)
	type cell struct{ lane, pos, speed int }
	var visited []cell
	l.Each(func(lane, pos int, v entity.Vehicle) bool {
		visited = append(visited, cell{lane, pos, v.Speed})
		return true
	})
	assert.Equal(t, []cell{{0, 1, 3}, {0, 4, 1}, {1, 0, 2}, {1, 4, 4}}, visited)

	n := 0
	l.Each(func(int, int, entity.Vehicle) bool {
		n++
		return n < 2
	})
	assert.Equal(t, 2, n)
}

func TestLatticeCloneIsIndependent(t *testing.T) {
	l := lattice.Parse([]string{"1....", "....2"}, entity.ProfileOther)
	c := l.Clone()
	assert.True(t, l.Equal(c))

	c.Put(0, 3, entity.Vehicle{Speed: 5})
	assert.False(t, l.Equal(c))
	assert.False(t, l.Occupied(0, 3))
	assert.Equal(t, 2, l.Total())
	assert.Equal(t, 3, c.Total())
}

func TestLatticeStringRoundTrip(t *testing.T) {
	rows := []string{"..3.0.", "5....1"}
	l := lattice.Parse(rows, entity.ProfileOther)
	assert.Equal(t, rows[0]+"\n"+rows[1], l.String())
	assert.Equal(t, []int{5, -1, -1, -1, -1, 1}, l.Speeds(1))
	assert.Panics(t, func() { lattice.Parse([]string{"..", "..."}, entity.ProfileOther) })
	assert.Panics(t, func() { lattice.Parse([]string{".x", ".."}, entity.ProfileOther) })
}
