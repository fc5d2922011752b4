// Package monitoring reports the progress of long training runs.
package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Progress counts finished episodes and periodically logs throughput and
// goroutine usage
type Progress struct {
	mu             sync.RWMutex
	started        time.Time
	episodes       map[string]int
	steps          int
	decided        int
	baseline       int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	logger         zerolog.Logger
}

// Metrics is a point-in-time view of a run
type Metrics struct {
	Episodes          map[string]int `json:"episodes"`
	Steps             int            `json:"steps"`
	Decided           int            `json:"decided"`
	EpisodesPerSecond float64        `json:"episodes_per_second"`
	Goroutines        int            `json:"goroutines"`
	GoroutinePeak     int            `json:"goroutine_peak"`
}

// NewProgress creates a monitor that logs every interval once started
func NewProgress(interval time.Duration, logger zerolog.Logger) *Progress {
	baseline := runtime.NumGoroutine()
	return &Progress{
		started:        time.Now(),
		episodes:       make(map[string]int),
		baseline:       baseline,
		peak:           baseline,
		checkInterval:  interval,
		alertThreshold: 1000,
		logger:         logger.With().Str("component", "Progress").Logger(),
	}
}

// EpisodeDone records one finished episode of the given mode
func (p *Progress) EpisodeDone(mode string, steps int, hasWinner bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.episodes[mode]++
	p.steps += steps
	if hasWinner {
		p.decided++
	}
}

// Start logs metrics until ctx is done. A non-positive interval disables it.
func (p *Progress) Start(ctx context.Context) {
	if p.checkInterval <= 0 {
		return
	}
	p.logger.Info().
		Int("baseline_goroutines", p.baseline).
		Dur("interval", p.checkInterval).
		Msg("Started progress monitoring")

	go func() {
		ticker := time.NewTicker(p.checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.report()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *Progress) report() {
	m := p.Snapshot()
	event := p.logger.Info()
	if m.Goroutines > p.alertThreshold {
		event = p.logger.Warn().Int("threshold", p.alertThreshold)
	}
	event.
		Interface("episodes", m.Episodes).
		Int("steps", m.Steps).
		Int("decided", m.Decided).
		Float64("episodes_per_second", m.EpisodesPerSecond).
		Int("goroutines", m.Goroutines).
		Int("goroutine_peak", m.GoroutinePeak).
		Msg("Training progress")
}

// Snapshot samples the goroutine count and returns the current metrics
func (p *Progress) Snapshot() Metrics {
	current := runtime.NumGoroutine()

	p.mu.Lock()
	defer p.mu.Unlock()
	if current > p.peak {
		p.peak = current
	}

	total := 0
	episodes := make(map[string]int, len(p.episodes))
	for mode, n := range p.episodes {
		episodes[mode] = n
		total += n
	}

	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(total) / elapsed
	}
	return Metrics{
		Episodes:          episodes,
		Steps:             p.steps,
		Decided:           p.decided,
		EpisodesPerSecond: rate,
		Goroutines:        current,
		GoroutinePeak:     p.peak,
	}
}
