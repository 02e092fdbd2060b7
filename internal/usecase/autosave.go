package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAutosaveDelay = 750 * time.Millisecond
	autosaveFlushTimeout = 5 * time.Second
)

// Autosaver is the single debounced consumer of session edit events.
// Bursts of edits collapse into one save once the session has been quiet for delay.
type Autosaver struct {
	delay  time.Duration
	save   func(ctx context.Context) error
	events chan struct{}
	logger *zap.Logger
}

// NewAutosaver creates an autosaver that calls save after delay of inactivity
func NewAutosaver(delay time.Duration, save func(ctx context.Context) error, logger *zap.Logger) *Autosaver {
	if delay <= 0 {
		delay = defaultAutosaveDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autosaver{
		delay:  delay,
		save:   save,
		events: make(chan struct{}, 1),
		logger: logger,
	}
}

// Notify records an edit. It never blocks; edits arriving while one is
// already queued are merged into it.
func (a *Autosaver) Notify() {
	select {
	case a.events <- struct{}{}:
	default:
	}
}

// Run consumes edit events until ctx is cancelled. A save still pending at
// cancellation is flushed before Run returns.
func (a *Autosaver) Run(ctx context.Context) {
	timer := time.NewTimer(a.delay)
	timer.Stop()
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			if pending {
				flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), autosaveFlushTimeout)
				a.runSave(flushCtx)
				cancel()
			}
			return
		case <-a.events:
			pending = true
			timer.Reset(a.delay)
		case <-timer.C:
			pending = false
			a.runSave(ctx)
		}
	}
}

func (a *Autosaver) runSave(ctx context.Context) {
	if err := a.save(ctx); err != nil {
		a.logger.Warn("autosave failed", zap.Error(err))
	}
}
