package sim

import (
	"time"

	"github.com/stevenvo780/duetsim/internal/entity"
	"github.com/stevenvo780/duetsim/internal/entropy"
)

// Walker is the stand-in host mover: a bounded random walk that drifts
// the companions together while they are social and apart while they
// explore. An embedding host replaces this by writing positions
// directly.
type Walker struct {
	rng entropy.Source
}

// Walk area bounds and speeds, in world units.
const (
	walkAreaSize  = 1000.0
	walkSpeed     = 40.0 // units per second
	approachSpeed = 60.0
)

// NewWalker creates a walker over the given randomness source.
func NewWalker(rng entropy.Source) *Walker {
	return &Walker{rng: rng}
}

// Move advances both positions by dt.
func (w *Walker) Move(a, b *entity.Entity, dt time.Duration) {
	sec := dt.Seconds()
	w.moveOne(a, b, sec)
	w.moveOne(b, a, sec)
}

func (w *Walker) moveOne(e, other *entity.Entity, sec float64) {
	if e.Dead {
		return
	}

	switch {
	case e.Activity.IsSocial():
		// Seek the companion.
		dx := other.Position.X - e.Position.X
		dy := other.Position.Y - e.Position.Y
		dist := e.Position.DistanceTo(other.Position)
		if dist > 40 {
			e.Position.X += dx / dist * approachSpeed * sec
			e.Position.Y += dy / dist * approachSpeed * sec
		}
	case e.Activity.IsRestful():
		// Stay put.
	default:
		e.Position.X += (w.rng.Float64()*2 - 1) * walkSpeed * sec
		e.Position.Y += (w.rng.Float64()*2 - 1) * walkSpeed * sec
	}

	e.Position.X = clampCoord(e.Position.X)
	e.Position.Y = clampCoord(e.Position.Y)
}

func clampCoord(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > walkAreaSize {
		return walkAreaSize
	}
	return v
}
