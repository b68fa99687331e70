// Package layout assigns 2D positions to graph models. The force-directed
// engine runs an attractive/repulsive relaxation either for a bounded number
// of iterations or as a continuously stepping background task (see Runner).
// Geographic models are not laid out here: the engine only hands over
// validated coordinate pairs and leaves projection to the map view.
package layout

import (
	"context"
	"math"
	"math/rand"

	"github.com/johnymontana/dgraph-client-app-sub001/graph"
)

// Relaxation parameter defaults and bounds.
const (
	DefaultGravity      = 1.0
	DefaultScalingRatio = 2.0
	DefaultSlowDown     = 10.0
	DefaultIterations   = 100
	MaxIterationsLimit  = 10000

	// initialSpread is the side of the square unpositioned nodes are
	// seeded into.
	initialSpread = 1000.0

	// minDistance avoids force explosions between coincident nodes.
	minDistance = 0.01
)

// Config holds force-directed relaxation parameters.
type Config struct {
	// Gravity pulls nodes toward the origin so disconnected components
	// stay on screen.
	Gravity float64 `json:"gravity"`
	// ScalingRatio scales repulsion between node pairs.
	ScalingRatio float64 `json:"scaling_ratio"`
	// SlowDown damps per-step displacement.
	SlowDown float64 `json:"slow_down"`
	// LinLogMode uses logarithmic attraction, which tightens clusters.
	LinLogMode bool `json:"lin_log_mode"`
	// StrongGravity makes gravity independent of distance to the origin.
	StrongGravity bool `json:"strong_gravity"`
	// Seed fixes the random placement of unpositioned nodes. Zero means
	// a random seed; the layout is then not reproducible, by design.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultConfig returns the default relaxation parameters.
func DefaultConfig() Config {
	return Config{
		Gravity:      DefaultGravity,
		ScalingRatio: DefaultScalingRatio,
		SlowDown:     DefaultSlowDown,
	}
}

// withDefaults fills zero-valued parameters.
func (c Config) withDefaults() Config {
	if c.Gravity <= 0 {
		c.Gravity = DefaultGravity
	}
	if c.ScalingRatio <= 0 {
		c.ScalingRatio = DefaultScalingRatio
	}
	if c.SlowDown <= 0 {
		c.SlowDown = DefaultSlowDown
	}
	return c
}

// Engine computes force-directed layouts over a graph model. An Engine is
// not safe for concurrent use; the Runner serializes access to it.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// NewEngine creates a layout engine with the given parameters.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Run performs a bounded one-shot relaxation: seed missing positions, then
// iterate. The context is checked every iteration so a torn-down view can
// abandon an expensive layout.
func (e *Engine) Run(ctx context.Context, m *graph.Model, iterations int) error {
	if m == nil || len(m.Nodes) == 0 {
		return nil
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if iterations > MaxIterationsLimit {
		iterations = MaxIterationsLimit
	}

	e.seedPositions(m)
	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e.step(m)
	}
	return nil
}

// Step performs a single relaxation step, seeding missing positions first.
// This is the unit of work the continuous Runner schedules per tick.
func (e *Engine) Step(m *graph.Model) {
	if m == nil || len(m.Nodes) == 0 {
		return
	}
	e.seedPositions(m)
	e.step(m)
}

// seedPositions places nodes without coordinates uniformly at random.
func (e *Engine) seedPositions(m *graph.Model) {
	for _, node := range m.Nodes {
		if node.Position == nil {
			node.Position = &graph.Position{
				X: (e.rng.Float64() - 0.5) * initialSpread,
				Y: (e.rng.Float64() - 0.5) * initialSpread,
			}
		}
	}
}

// step runs one attraction/repulsion/gravity pass and applies the damped
// displacements.
func (e *Engine) step(m *graph.Model) {
	ids := make([]string, 0, len(m.Nodes))
	for id := range m.Nodes {
		ids = append(ids, id)
	}

	degree := make(map[string]int, len(ids))
	for _, edge := range m.Edges {
		degree[edge.Source]++
		degree[edge.Target]++
	}

	dx := make(map[string]float64, len(ids))
	dy := make(map[string]float64, len(ids))

	// Pairwise repulsion, weighted by node degree.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a := m.Nodes[ids[i]]
			b := m.Nodes[ids[j]]
			vx := a.Position.X - b.Position.X
			vy := a.Position.Y - b.Position.Y
			dist := math.Hypot(vx, vy)
			if dist < minDistance {
				dist = minDistance
			}
			mass := float64((degree[ids[i]] + 1) * (degree[ids[j]] + 1))
			f := e.cfg.ScalingRatio * mass / dist
			ux, uy := vx/dist, vy/dist
			dx[ids[i]] += ux * f
			dy[ids[i]] += uy * f
			dx[ids[j]] -= ux * f
			dy[ids[j]] -= uy * f
		}
	}

	// Attraction along edges.
	for _, edge := range m.Edges {
		a := m.Nodes[edge.Source]
		b := m.Nodes[edge.Target]
		if a == nil || b == nil {
			continue
		}
		vx := a.Position.X - b.Position.X
		vy := a.Position.Y - b.Position.Y
		dist := math.Hypot(vx, vy)
		if dist < minDistance {
			continue
		}
		f := dist
		if e.cfg.LinLogMode {
			f = math.Log1p(dist)
		}
		ux, uy := vx/dist, vy/dist
		dx[edge.Source] -= ux * f
		dy[edge.Source] -= uy * f
		dx[edge.Target] += ux * f
		dy[edge.Target] += uy * f
	}

	// Gravity toward the origin.
	for _, id := range ids {
		node := m.Nodes[id]
		dist := math.Hypot(node.Position.X, node.Position.Y)
		if dist < minDistance {
			continue
		}
		mass := float64(degree[id] + 1)
		var f float64
		if e.cfg.StrongGravity {
			f = e.cfg.Gravity * mass
		} else {
			f = e.cfg.Gravity * mass / dist
		}
		dx[id] -= node.Position.X / dist * f
		dy[id] -= node.Position.Y / dist * f
	}

	// Apply damped displacement.
	for _, id := range ids {
		node := m.Nodes[id]
		node.Position.X += dx[id] / e.cfg.SlowDown
		node.Position.Y += dy[id] / e.cfg.SlowDown
	}
}
