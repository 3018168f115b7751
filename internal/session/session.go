// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package session drives a feedback pipeline without a terminal UI. Events
// are processed one at a time on the goroutine that calls Next; timers and
// network requests run elsewhere and only post their completion back.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alvinbaena/pwd-register/internal/feedback"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/thinhdanggroup/executor"
)

// ErrClosed is returned by Next once the session has been closed.
var ErrClosed = errors.New("session closed")

type Options struct {
	Clock    clock.Clock
	Workers  int
	Pipeline feedback.Config
	Logger   zerolog.Logger
}

type Session struct {
	pipeline *feedback.Pipeline
	svc      feedback.Service
	clock    clock.Clock
	log      zerolog.Logger

	events chan feedback.Event
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	// only touched by the goroutine calling Next
	timers map[feedback.Event]*clock.Timer

	pool      *executor.Executor
	stat      *status
	closeOnce sync.Once
}

func New(svc feedback.Service, opts Options) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Workers < 2 {
		// analysis and registration must be able to wait on the network at the same time
		opts.Workers = 2
	}

	pool, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     4 * opts.Workers,
		NumWorkers:    opts.Workers,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		pipeline: feedback.New(opts.Pipeline, opts.Logger),
		svc:      svc,
		clock:    opts.Clock,
		log:      opts.Logger,
		events:   make(chan feedback.Event, 256),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[feedback.Event]*clock.Timer),
		pool:     pool,
		stat:     newStatus(),
	}, nil
}

// Post queues an event. It is safe to call from any goroutine.
func (s *Session) Post(ev feedback.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Next waits for one event, applies it and starts the work it requires.
func (s *Session) Next(ctx context.Context) (feedback.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrClosed
	case ev := <-s.events:
		s.handle(ev)
		return ev, nil
	}
}

// RunUntil processes events until stop returns true for one of them.
func (s *Session) RunUntil(ctx context.Context, stop func(feedback.Event) bool) error {
	for {
		ev, err := s.Next(ctx)
		if err != nil {
			return err
		}
		if stop(ev) {
			return nil
		}
	}
}

// Run processes events until ctx is done or the session is closed.
func (s *Session) Run(ctx context.Context) error {
	err := s.RunUntil(ctx, func(feedback.Event) bool { return false })
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

// State must be called from the goroutine calling Next.
func (s *Session) State() feedback.State {
	return s.pipeline.State()
}

func (s *Session) Stats() feedback.Stats {
	return s.pipeline.Stats()
}

// Close stops pending timers, aborts requests in flight and waits for the
// workers to return.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.done)
		for ev, t := range s.timers {
			t.Stop()
			delete(s.timers, ev)
		}
		s.pool.Wait()
		s.pool.Close()
		s.stat.Done(s.log, s.pipeline.Stats())
	})
}

func (s *Session) handle(ev feedback.Event) {
	switch ev.(type) {
	case feedback.DebounceElapsed, feedback.NotificationExpired:
		delete(s.timers, ev)
	}

	for _, eff := range s.pipeline.Dispatch(ev) {
		s.execute(eff)
	}
}

func (s *Session) execute(eff feedback.Effect) {
	switch e := eff.(type) {
	case feedback.ArmTimer:
		fire := e.Fire
		s.timers[fire] = s.clock.AfterFunc(e.After, func() { s.Post(fire) })

	case feedback.CancelTimer:
		if t, ok := s.timers[e.Fire]; ok {
			t.Stop()
			delete(s.timers, e.Fire)
		}

	case feedback.RequestAnalysis:
		if err := s.pool.Publish(s.analyze, e.Seq, e.Password); err != nil {
			s.Post(feedback.AnalysisCompleted{Seq: e.Seq, Err: err})
		}

	case feedback.RequestRegistration:
		if err := s.pool.Publish(s.register, e.Username, e.Password); err != nil {
			s.Post(feedback.RegistrationCompleted{Err: err})
		}

	default:
		s.log.Warn().Msgf("unknown effect %T", eff)
	}
}

func (s *Session) analyze(seq uint64, password string) {
	start := time.Now()
	done := feedback.RequestAnalysis{Seq: seq, Password: password}.Perform(s.ctx, s.svc)
	if ev := done.(feedback.AnalysisCompleted); ev.Err == nil && ev.Result.Cached {
		s.stat.CacheHit()
	} else {
		s.stat.RequestComplete(time.Since(start), ev.Err, false)
	}
	s.Post(done)
}

func (s *Session) register(username, password string) {
	start := time.Now()
	done := feedback.RequestRegistration{Username: username, Password: password}.Perform(s.ctx, s.svc)
	s.stat.RequestComplete(time.Since(start), done.(feedback.RegistrationCompleted).Err, true)
	s.Post(done)
}
