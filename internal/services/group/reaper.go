package group

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/groupforge/keystone/internal/models"
)

// defaultReapInterval is how often the reaper sweeps when unconfigured
const defaultReapInterval = time.Minute

// ReaperConfig contains configuration for the expiry reaper
type ReaperConfig struct {
	// Service is the group service whose sessions are swept
	Service Service

	// Interval between sweeps
	Interval time.Duration

	// Logger is the structured logger for sweep events
	Logger zerolog.Logger

	// OnRetired is called after a sweep with the sessions it retired,
	// outside any session lock, so the transport layer can clean up
	// rendered messages. Optional.
	OnRetired func(retired []*models.Session)
}

// Reaper periodically retires sessions past their deadline
type Reaper struct {
	service   Service
	interval  time.Duration
	logger    zerolog.Logger
	onRetired func([]*models.Session)

	stop chan struct{}
	done chan struct{}
}

// NewReaper creates a new expiry reaper
func NewReaper(cfg *ReaperConfig) (*Reaper, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Service == nil {
		return nil, GroupError("service cannot be nil")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultReapInterval
	}

	return &Reaper{
		service:   cfg.Service,
		interval:  interval,
		logger:    cfg.Logger,
		onRetired: cfg.OnRetired,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Start launches the sweep loop
func (r *Reaper) Start() {
	go r.run()
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish
func (r *Reaper) Stop() {
	close(r.stop)
	<-r.done
}

func (r *Reaper) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Reaper) sweep() {
	out, err := r.service.SweepExpired(context.Background(), &SweepExpiredInput{})
	if err != nil {
		r.logger.Error().Err(err).Msg("expiry sweep failed")
		return
	}

	if len(out.Retired) > 0 && r.onRetired != nil {
		r.onRetired(out.Retired)
	}
}
