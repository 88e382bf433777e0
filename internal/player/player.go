// Package player drives the candlestick animation as an explicit
// timer-based state machine. Each client connection owns one Player; the
// underlying table is shared read-only.
package player

import (
	"context"
	"sync"
	"time"

	"candleboard/internal/chart"
	"candleboard/internal/domain/series"
	"candleboard/internal/metrics"
	"candleboard/pkg/errors"
	"candleboard/pkg/logger"
)

// State is the animation lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Sink receives each frame the player emits. It is called outside the
// player lock and must not block for long; a slow sink delays ticks.
type Sink func(*chart.Frame)

// Player steps a cursor through table prefixes on a fixed interval.
// Transitions: Idle -> Playing on Start, Playing -> Paused on Pause,
// any -> Idle on Stop (cursor reset) or on reaching the final frame.
// A Stop or Pause takes effect at the next tick boundary, never mid-frame.
type Player struct {
	table    series.Table
	interval time.Duration
	sink     Sink
	log      *logger.Logger

	mu     sync.Mutex
	state  State
	cursor int
	gen    int // invalidates a running tick loop after Stop/Pause
}

// New creates a player positioned at the first animated frame.
func New(table series.Table, interval time.Duration, sink Sink) *Player {
	return &Player{
		table:    table,
		interval: interval,
		sink:     sink,
		log:      logger.Get().With("component", "player"),
		state:    StateIdle,
		cursor:   chart.MinPrefixFor(table),
	}
}

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cursor returns the current prefix length.
func (p *Player) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Start begins or resumes playback. Starting an already playing player
// is a no-op. Playback runs until paused, stopped, cancelled, or the
// final frame is reached.
func (p *Player) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StatePlaying {
		return
	}
	if p.cursor >= p.table.Len() {
		// Restart from the beginning after a completed run.
		p.cursor = chart.MinPrefixFor(p.table)
	}
	p.state = StatePlaying
	p.gen++

	go p.run(ctx, p.gen)
}

// Pause holds the cursor in place. Takes effect at the next tick.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePlaying {
		return
	}
	p.state = StatePaused
	p.gen++
}

// Stop halts playback and resets the cursor to the first frame.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateIdle
	p.cursor = chart.MinPrefixFor(p.table)
	p.gen++
}

// Step advances one frame while not playing and returns it.
func (p *Player) Step() (*chart.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StatePlaying {
		return nil, errors.Wrap(errors.ErrInvalidInput, "cannot step while playing")
	}
	if p.cursor >= p.table.Len() {
		return nil, errors.Wrap(errors.ErrInvalidInput, "already at final frame")
	}

	p.cursor++
	return p.buildLocked()
}

// Seek positions the cursor at prefix length i and returns that frame.
// Seeking pauses a playing animation.
func (p *Player) Seek(i int) (*chart.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame, err := chart.Build(p.table, i)
	if err != nil {
		return nil, err
	}

	if p.state == StatePlaying {
		p.state = StatePaused
		p.gen++
	}
	p.cursor = i
	metrics.AnimationFrames.Inc()
	return frame, nil
}

// Current returns the frame at the current cursor without advancing.
func (p *Player) Current() (*chart.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buildLocked()
}

// run is the tick loop for one playback generation. It exits as soon as
// its generation is invalidated, the context ends, or playback completes.
func (p *Player) run(ctx context.Context, gen int) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Stop()
			return
		case <-ticker.C:
			frame, ok := p.tick(gen)
			if frame != nil && p.sink != nil {
				p.sink(frame)
			}
			if !ok {
				return
			}
		}
	}
}

// tick advances one frame. It returns the emitted frame (nil if the
// generation is stale) and whether the loop should keep running.
func (p *Player) tick(gen int) (*chart.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen || p.state != StatePlaying {
		return nil, false
	}

	if p.cursor >= p.table.Len() {
		p.state = StateIdle
		p.log.Debugw("Animation complete", "frames", p.table.Len())
		return nil, false
	}

	p.cursor++
	frame, err := p.buildLocked()
	if err != nil {
		// Only reachable if the table shrank underneath us, which the
		// read-only contract rules out.
		p.log.Errorw("Frame build failed", "cursor", p.cursor, "error", err)
		p.state = StateIdle
		return nil, false
	}

	done := p.cursor >= p.table.Len()
	if done {
		p.state = StateIdle
	}
	return frame, !done
}

func (p *Player) buildLocked() (*chart.Frame, error) {
	frame, err := chart.Build(p.table, p.cursor)
	if err != nil {
		return nil, err
	}
	metrics.AnimationFrames.Inc()
	return frame, nil
}
