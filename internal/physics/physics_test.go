package physics

import (
	"math"
	"sort"
	"testing"
)

func TestDistance(t *testing.T) {
	if d := Distance(0, 0, 3, 4); math.Abs(d-5) > 1e-9 {
		t.Errorf("expected distance 5, got %f", d)
	}
	if d := DistanceSquared(1, 1, 4, 5); d != 25 {
		t.Errorf("expected squared distance 25, got %f", d)
	}
}

func TestCirclesOverlapIsStrict(t *testing.T) {
	if !CirclesOverlap(0, 0, 10, 15, 0, 10) {
		t.Error("circles 15 apart with radii 10+10 should overlap")
	}
	if CirclesOverlap(0, 0, 10, 20, 0, 10) {
		t.Error("touching circles should not count as overlapping")
	}
	if CirclesOverlap(0, 0, 2, 100, 100, 40) {
		t.Error("distant circles should not overlap")
	}
}

type disc struct{ x, y, r float64 }

func (d disc) GetPosition() (float64, float64) { return d.x, d.y }
func (d disc) GetRadius() float64              { return d.r }

func TestOverlap(t *testing.T) {
	if !Overlap(disc{0, 0, 2}, disc{30, 0, 40}) {
		t.Error("projectile inside asteroid radius should overlap")
	}
}

func collect(g *SpatialGrid, x, y float64) []int {
	var got []int
	g.QueryAround(x, y, func(i int) bool {
		got = append(got, i)
		return false
	})
	sort.Ints(got)
	return got
}

func TestSpatialGridNeighborhood(t *testing.T) {
	g := NewSpatialGrid(800, 600, 50)
	g.Insert(10, 10, 0)
	g.Insert(60, 10, 1)
	g.Insert(400, 300, 2)
	g.Insert(790, 10, 3)

	got := collect(g, 20, 20)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("expected items [0 1] near origin, got %v", got)
	}

	// A bounded grid does not see across the right edge.
	for _, idx := range got {
		if idx == 3 {
			t.Error("bounded grid should not wrap neighborhoods")
		}
	}
}

func TestSpatialGridClampsOutsidePositions(t *testing.T) {
	g := NewSpatialGrid(800, 600, 50)
	g.Insert(-35, 300, 0)  // asteroid hovering past the left edge
	g.Insert(835, 300, 1) // and past the right edge

	if got := collect(g, 1, 300); len(got) != 1 || got[0] != 0 {
		t.Errorf("expected left item to be found from x=1, got %v", got)
	}
	if got := collect(g, 799, 300); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected right item to be found from x=799, got %v", got)
	}
}

func TestSpatialGridEarlyStopAndClear(t *testing.T) {
	g := NewSpatialGrid(100, 100, 50)
	g.Insert(10, 10, 0)
	g.Insert(12, 12, 1)

	calls := 0
	g.QueryAround(10, 10, func(int) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Errorf("expected iteration to stop after first hit, got %d calls", calls)
	}

	g.Clear()
	if got := collect(g, 10, 10); len(got) != 0 {
		t.Errorf("expected empty grid after Clear, got %v", got)
	}
}
