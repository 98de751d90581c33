package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lab-portal/backend/internal/models"
)

// DefaultPollInterval is the fixed telemetry re-fetch interval.
const DefaultPollInterval = 20 * time.Second

// Source is anything that can produce a telemetry snapshot.
type Source interface {
	Stats(ctx context.Context, file string) (*models.ServerTelemetry, error)
}

// Snapshot is one poll result with its derived liveness flag.
type Snapshot struct {
	Telemetry *models.ServerTelemetry `json:"telemetry,omitempty"`
	Online    bool                    `json:"online"`
	FetchedAt time.Time               `json:"fetchedAt"`
	Err       error                   `json:"-"`
}

// Poller re-fetches telemetry on a fixed interval. A failed tick is
// logged and the next tick re-issues the same request; there is no
// other retry policy. Late responses from a superseded tick are
// discarded via a generation counter so they can never overwrite a
// newer snapshot.
type Poller struct {
	source    Source
	file      string
	agentZone *time.Location
	interval  time.Duration

	mu         sync.RWMutex
	generation uint64
	latest     Snapshot
	subs       map[chan Snapshot]struct{}
}

// NewPoller creates a poller for one monitored server. interval <= 0
// falls back to DefaultPollInterval.
func NewPoller(source Source, file string, agentZone *time.Location, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		source:    source,
		file:      file,
		agentZone: agentZone,
		interval:  interval,
		subs:      make(map[chan Snapshot]struct{}),
	}
}

// Run polls until ctx is cancelled. The first fetch happens
// immediately, then on every tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	telemetry, err := p.source.Stats(fetchCtx, p.file)
	now := time.Now()

	snap := Snapshot{FetchedAt: now, Err: err}
	if err != nil {
		log.Printf("telemetry poll failed: %v", err)
	} else {
		snap.Telemetry = telemetry
		snap.Online = IsOnline(telemetry.LastUpdated, p.agentZone, now)
	}

	p.publish(gen, snap)
}

// publish installs the snapshot unless a newer generation already did.
func (p *Poller) publish(gen uint64, snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen < p.generation {
		return
	}
	p.latest = snap

	for ch := range p.subs {
		select {
		case ch <- snap:
		default: // slow subscriber, drop rather than block the loop
		}
	}
}

// Latest returns the most recent snapshot. ok is false before the
// first poll completes.
func (p *Poller) Latest() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, !p.latest.FetchedAt.IsZero()
}

// Subscribe registers a channel receiving every future snapshot.
// The returned func unsubscribes; it is safe to call more than once.
func (p *Poller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, ch)
			p.mu.Unlock()
		})
	}
}
