// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package session

import (
	"sync/atomic"
	"time"

	"github.com/alvinbaena/pwd-register/internal/feedback"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// status counts network round trips. Workers update it concurrently.
type status struct {
	start            time.Time
	roundTrips       uint64
	roundTripMillis  uint64
	analysisFailures uint64
	registerFailures uint64
	cacheHits        uint64
}

func newStatus() *status {
	return &status{start: time.Now()}
}

func (s *status) RequestComplete(elapsed time.Duration, err error, registration bool) {
	atomic.AddUint64(&s.roundTrips, 1)
	atomic.AddUint64(&s.roundTripMillis, uint64(elapsed.Milliseconds()))
	if err == nil {
		return
	}
	if registration {
		atomic.AddUint64(&s.registerFailures, 1)
	} else {
		atomic.AddUint64(&s.analysisFailures, 1)
	}
}

// CacheHit records an analysis answered without a network round trip.
func (s *status) CacheHit() {
	atomic.AddUint64(&s.cacheHits, 1)
}

func (s *status) CacheHits() uint64 {
	return atomic.LoadUint64(&s.cacheHits)
}

func (s *status) RoundTrips() uint64 {
	return atomic.LoadUint64(&s.roundTrips)
}

// Done logs a summary of the session.
func (s *status) Done(log zerolog.Logger, stats feedback.Stats) {
	trips := atomic.LoadUint64(&s.roundTrips)
	var average float64
	if trips > 0 {
		average = float64(atomic.LoadUint64(&s.roundTripMillis)) / float64(trips)
	}

	p := message.NewPrinter(language.English)
	log.Info().Msgf("session finished after %v", time.Since(s.start).Round(time.Millisecond))
	log.Debug().Msgf("made %s requests, %s answered from cache. Average response time %.2f ms",
		p.Sprintf("%d", trips), p.Sprintf("%d", atomic.LoadUint64(&s.cacheHits)), average)
	log.Debug().Msgf("analyses issued: %s, applied: %s, stale: %s, failed: %s",
		p.Sprintf("%d", stats.Issued), p.Sprintf("%d", stats.Applied),
		p.Sprintf("%d", stats.Stale), p.Sprintf("%d", stats.Failed))
	log.Debug().Msgf("registration attempts: %s, transport failures: %s",
		p.Sprintf("%d", stats.Registrations), p.Sprintf("%d", atomic.LoadUint64(&s.registerFailures)))
}
