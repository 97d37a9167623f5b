package shape

import (
	"math"
	"math/rand"

	"github.com/san-kum/handcloud/internal/dynamo"
)

const (
	// BandWidth is the number of particles per latitude band of the sphere parametrization.
	BandWidth = 100

	SphereRadius = 7.0
	CoreRadius   = 5.0
	CoreFraction = 0.6

	HeartScale    = 0.4
	HeartTurns    = 10.0
	HeartJitter   = 2.0
	RingMinRadius = 7.0
	RingSpread    = 3.0
	RingFlatten   = 0.2
	RingTurns     = 50.0
	BurstMinSpeed = 5.0
	BurstSpread   = 5.0
	BurstTurns    = 100.0
	BurstWaves    = 10.0
)

// Generator computes template targets for a cloud of n particles.
// It is not safe for concurrent use; the random source is shared across calls.
type Generator struct {
	n   int
	rng *rand.Rand
}

// NewGenerator returns a generator for n particles drawing jitter from rng.
// n below 1 is treated as 1 so the angle formulas never divide by zero.
func NewGenerator(n int, rng *rand.Rand) *Generator {
	if n < 1 {
		n = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Generator{n: n, rng: rng}
}

func (g *Generator) Len() int { return g.n }

// Target returns the point particle index should move toward under template t.
func (g *Generator) Target(index int, t Template) dynamo.Vec3 {
	n := float64(g.n)
	turn := float64(index) / n * 2 * math.Pi
	u := float64(index%BandWidth) / BandWidth * 2 * math.Pi
	v := float64(index/BandWidth) / (n / BandWidth) * math.Pi

	switch t {
	case Heart:
		a := turn * HeartTurns
		s := math.Sin(a)
		x := 16 * s * s * s
		y := 13*math.Cos(a) - 5*math.Cos(2*a) - 2*math.Cos(3*a) - math.Cos(4*a)
		return dynamo.Vec3{
			X: x * HeartScale,
			Y: y * HeartScale,
			Z: (g.rng.Float64() - 0.5) * HeartJitter,
		}

	case Saturn:
		if float64(index) < n*CoreFraction {
			return onSphere(CoreRadius, u, v)
		}
		r := RingMinRadius + g.rng.Float64()*RingSpread
		a := turn * RingTurns
		return dynamo.Vec3{
			X: r * math.Cos(a),
			Y: r * math.Sin(a) * RingFlatten,
			Z: r * math.Sin(a),
		}

	case Fireworks:
		speed := BurstMinSpeed + g.rng.Float64()*BurstSpread
		a := turn * BurstTurns
		return dynamo.Vec3{
			X: math.Cos(a) * speed,
			Y: math.Sin(a) * speed,
			Z: math.Sin(u*BurstWaves) * speed,
		}

	default:
		return onSphere(SphereRadius, u, v)
	}
}

func onSphere(r, u, v float64) dynamo.Vec3 {
	return dynamo.Vec3{
		X: r * math.Sin(v) * math.Cos(u),
		Y: r * math.Sin(v) * math.Sin(u),
		Z: r * math.Cos(v),
	}
}
