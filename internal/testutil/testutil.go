// Package testutil holds fixtures shared by package tests: fixed clocks,
// scripted randomness and stub upstream servers.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// FixedNow is the clock most tests run against: mid-May, so a year-to-date
// chart has five points.
var FixedNow = time.Date(2025, time.May, 14, 9, 30, 0, 0, time.UTC)

func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// ScriptedRand replays the given values in order, wrapping around.
type ScriptedRand struct {
	mu     sync.Mutex
	Floats []float64
	Ints   []int
	fi, ii int
}

func (s *ScriptedRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}

func (s *ScriptedRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := s.Ints[s.ii%len(s.Ints)]
	s.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Upstream is a stub provider endpoint that counts hits and records the
// headers of the last request.
type Upstream struct {
	*httptest.Server
	hits       atomic.Int32
	mu         sync.Mutex
	lastHeader http.Header
}

func (u *Upstream) Hits() int { return int(u.hits.Load()) }

func (u *Upstream) LastHeader() http.Header {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastHeader.Clone()
}

// NewUpstream serves body with the given status and content type.
func NewUpstream(t *testing.T, status int, contentType, body string) *Upstream {
	t.Helper()
	return NewUpstreamFunc(t, func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func NewUpstreamFunc(t *testing.T, h http.HandlerFunc) *Upstream {
	t.Helper()
	u := &Upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		u.mu.Lock()
		u.lastHeader = r.Header.Clone()
		u.mu.Unlock()
		h(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

// NewSlowUpstream answers only after delay or when the client goes away.
func NewSlowUpstream(t *testing.T, delay time.Duration) *Upstream {
	t.Helper()
	return NewUpstreamFunc(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	})
}

// DeadURL returns the address of a server that has already been shut down.
func DeadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}
