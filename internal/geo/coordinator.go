package geo

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TomasB/geodb/internal/data"
	"github.com/TomasB/geodb/internal/metrics"
)

// Resource names used in logs and metrics.
const (
	ResourceCountries = "countries"
	ResourceCountryDB = "country_db"
	ResourceCityDB    = "city_db"
	ResourceASNDB     = "asn_db"
)

// Sources builds fresh dataset sub-resources.  Every call returns a new
// value; a returned value is never modified afterwards.
type Sources interface {
	Countries(ctx context.Context) (data.Countries, error)
	CountryIndex(ctx context.Context) (data.CountryIndex, error)
	CityIndex(ctx context.Context) (data.CityIndex, error)
	ASNIndex(ctx context.Context) (data.ASNIndex, error)
}

// CoordinatorConfig is the configuration for a Coordinator.
type CoordinatorConfig struct {
	// Logger is used for logging refresh outcomes.  It must not be nil.
	Logger *slog.Logger
	// Dataset receives the rebuilt snapshots.  It must not be nil.
	Dataset *Dataset
	// Gate is opened after the first build attempt.  It must not be nil.
	Gate *Gate
	// Sources builds the sub-resources.  It must not be nil.
	Sources Sources
	// Metrics may be nil.
	Metrics *metrics.Instrumentation
}

// Coordinator consumes refresh signals and publishes rebuilt snapshots.  It
// is the only writer of its Dataset.
type Coordinator struct {
	logger  *slog.Logger
	dataset *Dataset
	gate    *Gate
	sources Sources
	metrics *metrics.Instrumentation

	// initialized is only accessed from the goroutine calling Handle.
	initialized bool
}

// NewCoordinator returns a new Coordinator.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	return &Coordinator{
		logger:  cfg.Logger,
		dataset: cfg.Dataset,
		gate:    cfg.Gate,
		sources: cfg.Sources,
		metrics: cfg.Metrics,
	}
}

// Run handles signals one at a time, in order, until ctx is done or signals
// is closed.
func (c *Coordinator) Run(ctx context.Context, signals <-chan RefreshSignal) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				c.logger.InfoContext(ctx, "refresh signal channel closed")
				return nil
			}
			c.Handle(ctx, sig)
		}
	}
}

// Handle processes one refresh signal.  The first signal always triggers a
// build, whatever its kind; afterwards only SignalChanged does.  Handle must
// not be called concurrently.
func (c *Coordinator) Handle(ctx context.Context, sig RefreshSignal) {
	c.metrics.ObserveSignal(sig.Kind.String())

	switch sig.Kind {
	case SignalChanged:
		c.logger.InfoContext(ctx, "dataset changed upstream")
	case SignalUnchanged:
		c.logger.DebugContext(ctx, "dataset unchanged upstream")
	default:
		c.logger.ErrorContext(ctx, "dataset sync failed", "signal", sig.Kind.String(), "error", sig.Err)
	}

	if !c.initialized || sig.Kind == SignalChanged {
		c.rebuild(ctx)
	}

	if !c.initialized {
		c.initialized = true
		c.gate.Open()
		c.metrics.SetReady()
		c.logger.InfoContext(ctx, "dataset ready")
	}
}

// rebuild builds every sub-resource concurrently and publishes a snapshot
// that replaces the ones that succeeded.
func (c *Coordinator) rebuild(ctx context.Context) {
	start := time.Now()

	var r resources
	g := &errgroup.Group{}
	g.Go(func() error {
		v, err := c.sources.Countries(ctx)
		if c.observe(ctx, ResourceCountries, err) {
			r.countries = v
		}
		return nil
	})
	g.Go(func() error {
		v, err := c.sources.CountryIndex(ctx)
		if c.observe(ctx, ResourceCountryDB, err) {
			r.countryIndex = v
		}
		return nil
	})
	g.Go(func() error {
		v, err := c.sources.CityIndex(ctx)
		if c.observe(ctx, ResourceCityDB, err) {
			r.cityIndex = v
		}
		return nil
	})
	g.Go(func() error {
		v, err := c.sources.ASNIndex(ctx)
		if c.observe(ctx, ResourceASNDB, err) {
			r.asnIndex = v
		}
		return nil
	})
	// The goroutines never fail; errors are reported per resource.
	_ = g.Wait()

	next := c.dataset.Snapshot().derive(r)
	c.dataset.publish(next)

	duration := time.Since(start)
	c.metrics.ObserveRefresh(next.Generation, duration)
	c.logger.InfoContext(ctx, "snapshot published",
		"generation", next.Generation,
		"duration_ms", duration.Milliseconds(),
	)
}

// observe logs and records the outcome of one sub-resource build.  It
// reports whether the build succeeded.
func (c *Coordinator) observe(ctx context.Context, resource string, err error) (ok bool) {
	c.metrics.ObserveResourceRefresh(resource, err)
	if err != nil {
		err = newError(KindRefreshSubResourceFailed, resource, err)
		c.logger.ErrorContext(ctx, "keeping previous sub-resource", "resource", resource, "error", err)
		return false
	}

	c.logger.DebugContext(ctx, "sub-resource rebuilt", "resource", resource)
	return true
}
