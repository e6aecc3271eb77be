package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Purger is a store that can drop its expired sessions in bulk.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Janitor periodically purges expired sessions so abandoned session files
// do not pile up on disk.
type Janitor struct {
	store    Purger
	interval time.Duration
	logger   *slog.Logger
	done     chan struct{}
	wg       sync.WaitGroup
	start    sync.Once
	stop     sync.Once
}

func NewJanitor(store Purger, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. Calling it twice is harmless.
func (j *Janitor) Start() {
	j.start.Do(func() {
		j.logger.Info("starting session janitor", slog.Duration("interval", j.interval))
		j.wg.Add(1)
		go j.loop()
	})
}

// Stop ends the loop and waits for an in-flight purge to finish.
func (j *Janitor) Stop() {
	j.stop.Do(func() {
		close(j.done)
		j.wg.Wait()
	})
}

func (j *Janitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), j.interval)
			n, err := j.store.Purge(ctx)
			cancel()
			if err != nil {
				j.logger.Error("purging sessions", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				j.logger.Info("purged expired sessions", slog.Int("count", n))
			}
		}
	}
}
