package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ruslanjabari/video-to-ascii/frame"
	"github.com/ruslanjabari/video-to-ascii/render"
	"github.com/ruslanjabari/video-to-ascii/video"
)

// State is the playback lifecycle of one stream.
type State int

const (
	Idle State = iota
	Priming
	Playing
	Draining
	Closed
)

// Source yields decoded frames in order.
type Source interface {
	ReadFrame() (*frame.Frame, error)
	Close() error
}

// Sink receives rendered output. Implementations decide the preamble,
// the completion message and the per-row line ending.
type Sink interface {
	Preamble() []byte
	WriteFrame(data []byte) error
	Complete() []byte
	LineEnding() render.LineEnding
}

// Clock paces frame emission. Now and Sleep are swappable so pacing is
// testable without real time.
type Clock struct {
	Interval time.Duration
	Now      func() time.Time
	Sleep    func(time.Duration)
}

func NewClock(fps float64) *Clock {
	if fps <= 0 {
		fps = 30
	}
	return &Clock{
		Interval: time.Duration(float64(time.Second) / fps),
		Now:      time.Now,
		Sleep:    time.Sleep,
	}
}

// Wait sleeps the remainder of the frame interval and returns the slept
// duration. A slow render shortens the sleep to zero; frames are never
// dropped to catch up.
func (c *Clock) Wait(frameStart time.Time) time.Duration {
	remaining := c.Interval - c.Now().Sub(frameStart)
	if remaining < 0 {
		remaining = 0
	}
	c.Sleep(remaining)
	return remaining
}

// Scheduler drives one playback stream: read, render, write, pace.
type Scheduler struct {
	strategy *render.Strategy
	dims     func() render.Dimensions
	clock    *Clock
	state    State
}

// NewScheduler builds a scheduler around a strategy instance it now owns
// exclusively. dims is re-read every frame so a terminal resize takes
// effect on the next frame boundary.
func NewScheduler(strategy *render.Strategy, dims func() render.Dimensions, clock *Clock) *Scheduler {
	return &Scheduler{strategy: strategy, dims: dims, clock: clock, state: Idle}
}

func (s *Scheduler) State() State {
	return s.state
}

// Run plays the source to the sink until exhaustion, a sink failure or
// cancellation. The source is always closed on return.
func (s *Scheduler) Run(ctx context.Context, src Source, sink Sink) error {
	defer src.Close()
	defer func() { s.state = Closed }()

	s.state = Priming
	if preamble := sink.Preamble(); len(preamble) > 0 {
		if err := sink.WriteFrame(preamble); err != nil {
			return fmt.Errorf("sending preamble: %w", err)
		}
	}

	s.state = Playing
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		frameStart := s.clock.Now()

		f, err := src.ReadFrame()
		if errors.Is(err, video.ErrSourceExhausted) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}

		dims := s.dims()
		resized := s.strategy.Resize(f, dims)
		out := render.Compose(resized, dims, s.strategy, sink.LineEnding())
		if err := sink.WriteFrame([]byte(out)); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}

		s.clock.Wait(frameStart)
	}

	s.state = Draining
	if done := sink.Complete(); len(done) > 0 {
		if err := sink.WriteFrame(done); err != nil {
			return fmt.Errorf("sending completion: %w", err)
		}
	}
	return nil
}
