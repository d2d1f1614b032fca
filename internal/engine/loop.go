package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Engine drives the simulation loop. Wall-clock frames are converted to
// game time through the speed multiplier, so economy ticks, persistence
// flushes and caravan travel all stretch together when speed changes.
type Engine struct {
	Sim      *Simulation
	Interval time.Duration // frame interval (default 100ms)

	mu      sync.Mutex
	speed   float64
	running bool
	stop    chan struct{}
}

// NewEngine creates an engine at normal speed.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Sim:      sim,
		Interval: 100 * time.Millisecond,
		speed:    1.0,
		stop:     make(chan struct{}),
	}
}

// Speed returns the current game-speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the game-speed multiplier. 0 pauses. Takes effect on the
// next frame; in-flight accumulator progress is preserved, not reset.
func (e *Engine) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
	slog.Info("game speed changed", "speed", speed)
}

// Run blocks, stepping the simulation until Stop is called. Frame deltas
// are measured rather than assumed, so a slow frame is not lost time.
func (e *Engine) Run() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	slog.Info("simulation engine started", "interval", e.Interval)
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-e.stop:
			slog.Info("simulation engine stopped", "game_time", e.Sim.GameTime.Round(time.Second))
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			speed := e.Speed()
			if speed <= 0 {
				continue // paused: wall time passes, game time does not
			}

			gameDt := time.Duration(float64(dt) * speed)
			e.Sim.Mu.Lock()
			e.Sim.Advance(gameDt)
			e.Sim.Mu.Unlock()
		}
	}
}

// Stop halts the loop. Safe to call once.
func (e *Engine) Stop() {
	close(e.stop)
}
