package server

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestShipStore_CreateAtOrigin(t *testing.T) {
	s := NewShipStore(DefaultStep)
	ship := s.Create()

	assert.NotEmpty(t, ship.ID)
	assert.Equal(t, 0.0, ship.X)
	assert.Equal(t, 0.0, ship.Y)
	assert.Equal(t, []Ship{ship}, s.Snapshot())
}

func TestShipStore_CreateKeepsJoinOrder(t *testing.T) {
	s := NewShipStore(DefaultStep)
	a := s.Create()
	b := s.Create()
	c := s.Create()

	ids := make([]string, 0, 3)
	for _, ship := range s.Snapshot() {
		ids = append(ids, ship.ID)
	}
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids)
}

func TestShipStore_IDsNeverReused(t *testing.T) {
	s := NewShipStore(DefaultStep)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ship := s.Create()
		require.False(t, seen[ship.ID], "id %s reused", ship.ID)
		seen[ship.ID] = true
		s.Remove(ship.ID)
	}
	assert.Equal(t, 0, s.Len())
}

func TestShipStore_ApplyMove(t *testing.T) {
	tests := []struct {
		name  string
		dir   Direction
		wantX float64
		wantY float64
	}{
		{name: "forward increases y", dir: Forward, wantX: 0, wantY: 0.01},
		{name: "backward decreases y", dir: Backward, wantX: 0, wantY: -0.01},
		{name: "right increases x", dir: Right, wantX: 0.01, wantY: 0},
		{name: "left decreases x", dir: Left, wantX: -0.01, wantY: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShipStore(DefaultStep)
			ship := s.Create()

			require.True(t, s.ApplyMove(ship.ID, tt.dir))

			got := s.Snapshot()[0]
			assert.Equal(t, tt.wantX, got.X)
			assert.Equal(t, tt.wantY, got.Y)
		})
	}
}

func TestShipStore_ApplyMoveUnknownIDIsNoop(t *testing.T) {
	s := NewShipStore(DefaultStep)
	ship := s.Create()
	before := s.Snapshot()

	assert.False(t, s.ApplyMove("missing", Forward))
	assert.Equal(t, before, s.Snapshot())

	s.Remove(ship.ID)
	assert.False(t, s.ApplyMove(ship.ID, Forward))
	assert.Empty(t, s.Snapshot())
}

func TestShipStore_ApplyMoveInvalidDirection(t *testing.T) {
	s := NewShipStore(DefaultStep)
	ship := s.Create()

	assert.False(t, s.ApplyMove(ship.ID, Direction(7)))
	assert.Equal(t, Ship{ID: ship.ID}, s.Snapshot()[0])
}

func TestShipStore_RemoveIdempotent(t *testing.T) {
	s := NewShipStore(DefaultStep)
	a := s.Create()
	b := s.Create()

	s.Remove(a.ID)
	s.Remove(a.ID)
	s.Remove("never-existed")

	assert.Equal(t, []Ship{b}, s.Snapshot())
}

func TestShipStore_SnapshotIsCopy(t *testing.T) {
	s := NewShipStore(DefaultStep)
	ship := s.Create()

	snap := s.Snapshot()
	snap[0].X = 42
	s.ApplyMove(ship.ID, Right)

	assert.Equal(t, 42.0, snap[0].X)
	assert.Equal(t, 0.01, s.Snapshot()[0].X)
}

func TestShipStore_SetStep(t *testing.T) {
	s := NewShipStore(0)
	assert.Equal(t, DefaultStep, s.Step())

	assert.False(t, s.SetStep(0))
	assert.False(t, s.SetStep(-1))
	require.True(t, s.SetStep(0.5))

	ship := s.Create()
	s.ApplyMove(ship.ID, Forward)
	assert.Equal(t, 0.5, s.Snapshot()[0].Y)
}

func TestShipStore_ConcurrentSnapshotsAreConsistent(t *testing.T) {
	s := NewShipStore(DefaultStep)
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				ship := s.Create()
				s.ApplyMove(ship.ID, Direction(i%4))
				s.Remove(ship.ID)
			}
		}()
	}

	errs := make(chan error, 1)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			seen := make(map[string]bool)
			for _, ship := range s.Snapshot() {
				if ship.ID == "" || seen[ship.ID] {
					select {
					case errs <- fmt.Errorf("inconsistent snapshot entry %+v", ship):
					default:
					}
					return
				}
				seen[ship.ID] = true
			}
		}
	}()

	wg.Wait()
	close(stop)

	select {
	case err := <-errs:
		t.Fatal(err)
	default:
	}
	assert.Equal(t, 0, s.Len())
}

func TestShipStore_UniqueIdentityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewShipStore(DefaultStep)
		var live []string

		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 60).Draw(rt, "ops")
		for i, op := range ops {
			switch op {
			case 0:
				live = append(live, s.Create().ID)
			case 1:
				if len(live) == 0 {
					s.Remove("missing")
					continue
				}
				idx := rapid.IntRange(0, len(live)-1).Draw(rt, fmt.Sprintf("leave-%d", i))
				s.Remove(live[idx])
				live = append(live[:idx], live[idx+1:]...)
			case 2:
				dir := Direction(rapid.IntRange(0, 3).Draw(rt, fmt.Sprintf("dir-%d", i)))
				id := "missing"
				if len(live) > 0 {
					id = live[rapid.IntRange(0, len(live)-1).Draw(rt, fmt.Sprintf("mover-%d", i))]
				}
				s.ApplyMove(id, dir)
			}

			seen := make(map[string]bool)
			for _, ship := range s.Snapshot() {
				if seen[ship.ID] {
					rt.Fatalf("duplicate ship id %s", ship.ID)
				}
				seen[ship.ID] = true
			}
			if len(seen) != len(live) {
				rt.Fatalf("store has %d ships, want %d", len(seen), len(live))
			}
		}
	})
}

func TestShipStore_MoveAffectsOneAxisProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewShipStore(DefaultStep)
		ship := s.Create()
		dirs := rapid.SliceOf(rapid.IntRange(0, 3)).Draw(rt, "dirs")

		for _, d := range dirs {
			before := s.Snapshot()[0]
			s.ApplyMove(ship.ID, Direction(d))
			after := s.Snapshot()[0]

			switch Direction(d) {
			case Forward, Backward:
				if after.X != before.X || after.Y == before.Y {
					rt.Fatalf("%s changed wrong axis: %+v -> %+v", Direction(d), before, after)
				}
			case Right, Left:
				if after.Y != before.Y || after.X == before.X {
					rt.Fatalf("%s changed wrong axis: %+v -> %+v", Direction(d), before, after)
				}
			}
		}
	})
}
