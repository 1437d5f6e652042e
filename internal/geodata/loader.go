package geodata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/metrics"
)

// Loader populates a Dataset from prioritized sources and keeps it fresh.
// A refresh cycle walks the sources in order and installs the first complete
// result; on total failure the previous snapshot stays in place, or the
// embedded fallback is installed if nothing was ever loaded.
type Loader struct {
	dataset         *Dataset
	sources         []Source
	interval        time.Duration
	fallbackEnabled bool
	limiter         *rate.Limiter
	mu              sync.Mutex
	running         bool
}

// NewLoader creates a loader. Sources may be empty; the fallback then carries
// the whole load.
func NewLoader(dataset *Dataset, sources []Source, interval time.Duration, fallbackEnabled bool) *Loader {
	return &Loader{
		dataset:         dataset,
		sources:         sources,
		interval:        interval,
		fallbackEnabled: fallbackEnabled,
		// One fetch burst per source per cycle keeps retry storms off remote hosts.
		limiter: rate.NewLimiter(rate.Every(10*time.Second), len(sources)+1),
	}
}

// Run performs the initial load and then refreshes on the configured interval
// until the context is cancelled.
func (l *Loader) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("loader already running")
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	if err := l.LoadOnce(ctx); err != nil {
		logger.Error("Initial dataset load failed", "error", err)
	}

	if l.interval <= 0 || len(l.sources) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Dataset loader stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := l.refresh(ctx); err != nil {
				// Keep serving the previous snapshot.
				logger.Warn("Dataset refresh failed, keeping current snapshot", "error", err)
			}
		}
	}
}

// LoadOnce attempts one full load, degrading to the embedded fallback when
// every source fails and the fallback is enabled.
func (l *Loader) LoadOnce(ctx context.Context) error {
	if err := l.refresh(ctx); err == nil {
		return nil
	} else if !l.fallbackEnabled {
		l.dataset.MarkDegraded()
		return err
	}

	regions, err := LoadFallback()
	if err != nil {
		l.dataset.MarkDegraded()
		return fmt.Errorf("fallback load: %w", err)
	}
	l.dataset.Swap(&Snapshot{
		Regions:  regions,
		Source:   "embedded",
		Fallback: true,
		LoadedAt: time.Now().UTC(),
	})
	metrics.RecordDatasetLoad("embedded", "fallback", 0)
	metrics.SetRegionsLoaded(len(regions))
	logger.Warn("All dataset sources failed, using embedded fallback", "regions", len(regions))
	return nil
}

func (l *Loader) refresh(ctx context.Context) error {
	if len(l.sources) == 0 {
		return fmt.Errorf("no dataset sources configured")
	}

	var lastErr error
	for _, src := range l.sources {
		if err := l.limiter.Wait(ctx); err != nil {
			return err
		}

		start := time.Now()
		regions, err := src.Fetch(ctx)
		if err != nil {
			metrics.RecordDatasetLoad(src.Name(), "error", time.Since(start))
			logger.Warn("Dataset source failed", "source", src.Name(), "error", err)
			lastErr = err
			continue
		}

		l.dataset.Swap(&Snapshot{
			Regions:  regions,
			Source:   src.Name(),
			LoadedAt: time.Now().UTC(),
		})
		metrics.RecordDatasetLoad(src.Name(), "success", time.Since(start))
		metrics.SetRegionsLoaded(len(regions))
		logger.Info("Dataset loaded",
			"source", src.Name(),
			"regions", len(regions),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}
	return lastErr
}
