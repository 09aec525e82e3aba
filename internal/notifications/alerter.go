package notifications

import (
	"sync"
	"time"

	"github.com/kjannette/tariff-monitor/internal/models"
)

// Messenger is the part of Sender the Alerter needs.
type Messenger interface {
	Send(a Alert)
}

// Alerter watches envelope statuses per endpoint and sends a message only
// when an endpoint switches between live and fallback data. The first
// observation of an endpoint alerts only if it is already degraded.
type Alerter struct {
	out Messenger
	now func() time.Time

	mu   sync.Mutex
	last map[string]models.Status
	wg   sync.WaitGroup
}

func NewAlerter(out Messenger) *Alerter {
	return &Alerter{out: out, now: time.Now, last: make(map[string]models.Status)}
}

func (a *Alerter) Observe(endpoint string, status models.Status) {
	a.mu.Lock()
	prev, seen := a.last[endpoint]
	a.last[endpoint] = status
	a.mu.Unlock()

	var msg string
	switch {
	case status == models.StatusFallback && (!seen || prev != models.StatusFallback):
		msg = "no upstream source answered, serving fallback data"
	case status == models.StatusSuccess && seen && prev == models.StatusFallback:
		msg = "live source data is back"
	default:
		return
	}

	a.wg.Add(1)
	go func(al Alert) {
		defer a.wg.Done()
		a.out.Send(al)
	}(Alert{Endpoint: endpoint, Status: status, Message: msg, At: a.now().UTC()})
}

// Status reports the last status seen for endpoint.
func (a *Alerter) Status(endpoint string) (models.Status, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.last[endpoint]
	return s, ok
}

// Wait blocks until in-flight messages are delivered.
func (a *Alerter) Wait() {
	a.wg.Wait()
}
