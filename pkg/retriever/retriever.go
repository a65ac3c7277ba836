// Package retriever runs one sequential fetch cycle: it resolves the
// satellite lists, makes sure the session is valid and downloads the
// latest element sets for every list into the output sink.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dronir/ILRS-TLE/pkg/catalog"
	"github.com/dronir/ILRS-TLE/pkg/query"
	"github.com/dronir/ILRS-TLE/pkg/sink"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for fetch cycles.
var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tle_cycles_total",
		Help: "Fetch cycles by result",
	}, []string{"result"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tle_cycle_duration_seconds",
		Help:    "Duration of fetch cycles in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})

	lastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tle_cycle_last_success_timestamp_seconds",
		Help: "Unix time of the last successful fetch cycle",
	})

	listFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tle_list_fetches_total",
		Help: "Per-list fetch outcomes",
	}, []string{"list", "result"})
)

// ErrNoSession is returned by New when no session is configured.
var ErrNoSession = errors.New("session is required")

// Session is the authenticated access the retriever needs. It is
// implemented by *session.Manager.
type Session interface {
	EnsureAuthenticated(ctx context.Context) error
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Config holds the retriever configuration.
type Config struct {
	// Session authenticates and performs the batch requests
	Session Session

	// Builder renders batch query URLs
	Builder query.Builder

	// Sink receives one record per list
	Sink sink.Sink

	// Format is the requested element-set format (e.g. "3le")
	Format string

	// Catalogs maps list names to the sources that resolve them
	Catalogs map[string]catalog.Source
}

// Retriever drives fetch cycles. It is not safe for concurrent use.
type Retriever struct {
	session  Session
	builder  query.Builder
	sink     sink.Sink
	format   string
	catalogs map[string]catalog.Source
	lists    Lists
	state    State
	logger   zerolog.Logger
}

// New creates a retriever with no lists.
func New(cfg Config) (*Retriever, error) {
	if cfg.Session == nil {
		return nil, ErrNoSession
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if cfg.Builder.BaseURL == "" {
		cfg.Builder = query.NewBuilder("")
	}
	if cfg.Format == "" {
		cfg.Format = query.DefaultFormat
	}

	return &Retriever{
		session:  cfg.Session,
		builder:  cfg.Builder,
		sink:     cfg.Sink,
		format:   cfg.Format,
		catalogs: cfg.Catalogs,
		lists:    make(Lists),
		state:    StateIdle,
		logger:   log.With().Str("component", "retriever").Logger(),
	}, nil
}

// SetList stores the normalized numbers under name, replacing any
// previous list with that name.
func (r *Retriever) SetList(name string, numbers []int) {
	r.lists[name] = NewSatelliteList(numbers)
}

// Lists returns a copy of the configured lists.
func (r *Retriever) Lists() Lists {
	out := make(Lists, len(r.lists))
	for name, l := range r.lists {
		numbers := make([]int, len(l.Numbers))
		copy(numbers, l.Numbers)
		out[name] = SatelliteList{Numbers: numbers}
	}
	return out
}

// State returns the current cycle state.
func (r *Retriever) State() State {
	return r.state
}

// ResolveIdentifiers fetches every catalog-backed list from its source.
// The first unavailable catalog aborts resolution.
func (r *Retriever) ResolveIdentifiers(ctx context.Context) error {
	for _, name := range sortedKeys(r.catalogs) {
		ids, err := r.catalogs[name].FetchActiveIdentifiers(ctx)
		if err != nil {
			r.state = StateFailed
			r.logger.Error().Err(err).Str("list", name).Msg("Could not resolve catalog numbers")
			return fmt.Errorf("resolve list %q: %w", name, err)
		}
		r.SetList(name, ids)
		r.logger.Debug().Str("list", name).Int("count", len(r.lists[name].Numbers)).Msg("List resolved")
	}

	r.state = StateListsResolved
	return nil
}

// Run performs one fetch cycle over every list. It stops at the first
// failure; records of lists processed before the failure stay written.
func (r *Retriever) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		cycleDuration.Observe(time.Since(start).Seconds())
	}()

	r.logger.Info().Int("lists", len(r.lists)).Msg("Downloading data")

	if err := r.session.EnsureAuthenticated(ctx); err != nil {
		return r.fail(fmt.Errorf("ensure authenticated: %w", err))
	}
	r.state = StateAuthenticated

	written, skipped := 0, 0
	for _, name := range r.lists.Names() {
		list := r.lists[name]
		if list.Empty() {
			r.logger.Debug().Str("list", name).Msg("Skipping empty list")
			listFetchesTotal.WithLabelValues(name, "skipped").Inc()
			skipped++
			continue
		}

		r.state = StateFetching
		if err := r.fetchList(ctx, name, list); err != nil {
			listFetchesTotal.WithLabelValues(name, "failed").Inc()
			return r.fail(err)
		}
		listFetchesTotal.WithLabelValues(name, "written").Inc()
		written++
	}

	r.state = StateDone
	cyclesTotal.WithLabelValues("success").Inc()
	lastSuccess.SetToCurrentTime()
	r.logger.Info().
		Int("written", written).
		Int("skipped", skipped).
		Dur("duration", time.Since(start)).
		Msg("Fetch cycle complete")

	return nil
}

// FetchAll resolves the catalog-backed lists and runs one cycle. A
// catalog failure aborts before any authentication is attempted.
func (r *Retriever) FetchAll(ctx context.Context) error {
	if err := r.ResolveIdentifiers(ctx); err != nil {
		cyclesTotal.WithLabelValues("failed").Inc()
		return err
	}
	return r.Run(ctx)
}

func (r *Retriever) fetchList(ctx context.Context, name string, list SatelliteList) error {
	queryURL, err := r.builder.Build(name, list.Numbers, r.format)
	if err != nil {
		return fmt.Errorf("build query for list %q: %w", name, err)
	}

	r.logger.Debug().Str("list", name).Int("count", len(list.Numbers)).Msg("Requesting elements")

	body, err := r.session.Get(ctx, queryURL)
	if err != nil {
		r.logger.Error().Err(err).Str("list", name).Msg("Element request failed")
		return fmt.Errorf("fetch list %q: %w", name, err)
	}

	r.logger.Debug().Str("list", name).Int("bytes", len(body)).Msg("Saving elements")

	if err := r.sink.Write(ctx, name, sink.NormalizeLineEndings(body)); err != nil {
		r.logger.Error().Err(err).Str("list", name).Msg("Saving elements failed")
		return fmt.Errorf("write list %q: %w", name, err)
	}
	return nil
}

func (r *Retriever) fail(err error) error {
	r.state = StateFailed
	cyclesTotal.WithLabelValues("failed").Inc()
	r.logger.Error().Err(err).Msg("Fetch cycle failed")
	return err
}

func sortedKeys(m map[string]catalog.Source) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
