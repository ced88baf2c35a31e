// Package importer triggers the repository's asynchronous bulk file
// importer and polls its status endpoint until the importer is idle.
//
// The importer runs at most one job at a time. That invariant is
// enforced best-effort on the client side only, by waiting for idle
// status around the trigger call; two independent clients triggering
// concurrently can still race, and the server offers this client no
// lock to prevent it.
package importer

import (
	"context"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mkarlsen/nuxeo-repo-client/pkg/client"
)

// Prometheus metrics for importer operations.
var (
	importRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nuxeo_import_runs_total",
		Help: "Total import jobs triggered",
	})

	importStatusPollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nuxeo_import_status_polls_total",
		Help: "Total importer status polls",
	})

	importWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nuxeo_import_wait_seconds",
		Help:    "Time spent waiting for the importer to go idle",
		Buckets: []float64{1, 5, 20, 60, 300, 1800, 7200},
	})
)

// statusIdleBody is the literal status body the server returns when no
// import is running. Anything else means a job is in flight.
const statusIdleBody = "Not Running"

// DefaultPollInterval is the pause between status polls while an
// import is running.
const DefaultPollInterval = 20 * time.Second

// Status is the importer's observable state.
type Status string

const (
	// StatusRunning means an import job is in flight.
	StatusRunning Status = "Running"

	// StatusNotRunning means the importer is idle.
	StatusNotRunning Status = "NotRunning"
)

// ImportRequest describes one folder import. All four fields are
// required; Validate rejects the request before any network call.
type ImportRequest struct {
	// LeafType is the document type created for each imported file.
	LeafType string

	// InputPath is the server-side filesystem path to import from.
	InputPath string

	// TargetPath is the repository path to import into.
	TargetPath string

	// FolderishType is the document type created for each directory.
	FolderishType string
}

// Validate checks that all required fields are present.
func (r ImportRequest) Validate() error {
	var missing []string
	if r.LeafType == "" {
		missing = append(missing, "leafType")
	}
	if r.InputPath == "" {
		missing = append(missing, "inputPath")
	}
	if r.TargetPath == "" {
		missing = append(missing, "targetPath")
	}
	if r.FolderishType == "" {
		missing = append(missing, "folderishType")
	}
	if len(missing) > 0 {
		return &InvalidRequestError{Missing: missing}
	}
	return nil
}

// params returns the trigger call's query parameters.
func (r ImportRequest) params() url.Values {
	p := url.Values{}
	p.Set("leafType", r.LeafType)
	p.Set("inputPath", r.InputPath)
	p.Set("targetPath", r.TargetPath)
	p.Set("folderishType", r.FolderishType)
	return p
}

// Importer drives the bulk import API.
type Importer struct {
	client       *client.Client
	pollInterval time.Duration
	logger       zerolog.Logger
}

// New creates an importer with the default poll interval.
func New(c *client.Client) *Importer {
	return &Importer{
		client:       c,
		pollInterval: DefaultPollInterval,
		logger:       log.With().Str("component", "importer").Logger(),
	}
}

// SetPollInterval overrides the pause between status polls. Values
// <= 0 are ignored.
func (i *Importer) SetPollInterval(d time.Duration) {
	if d > 0 {
		i.pollInterval = d
	}
}

// Status polls the importer once. The server answers with a literal
// text body; only an exact "Not Running" counts as idle.
func (i *Importer) Status(ctx context.Context) (Status, error) {
	body, err := i.client.GetText(ctx, i.client.ImporterPath("status"), nil)
	if err != nil {
		return "", err
	}
	importStatusPollsTotal.Inc()

	if body == statusIdleBody {
		return StatusNotRunning, nil
	}
	return StatusRunning, nil
}

// AwaitIdle polls the status endpoint until the importer reports idle.
// The wait is unbounded: a job that never finishes blocks until ctx is
// cancelled, which is the only way to bound it from outside. A status
// poll that fails aborts the wait immediately.
func (i *Importer) AwaitIdle(ctx context.Context) error {
	start := time.Now()
	defer func() {
		importWaitSeconds.Observe(time.Since(start).Seconds())
	}()

	for polls := 1; ; polls++ {
		status, err := i.Status(ctx)
		if err != nil {
			return err
		}
		if status == StatusNotRunning {
			if polls > 1 {
				i.logger.Info().
					Int("polls", polls).
					Dur("waited", time.Since(start)).
					Msg("Importer idle")
			}
			return nil
		}

		i.logger.Info().
			Int("polls", polls).
			Dur("interval", i.pollInterval).
			Msg("Import still running")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(i.pollInterval):
		}
	}
}

// Run validates req and triggers an import job.
//
// With wait true, Run first blocks until the importer is idle (only
// one job may run at a time), triggers the job, then blocks again
// until the triggered job has finished. With wait false it returns
// right after the trigger call with no status guarantee at all; the
// job may not even have started yet.
func (i *Importer) Run(ctx context.Context, req ImportRequest, wait bool) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if wait {
		if err := i.AwaitIdle(ctx); err != nil {
			return err
		}
	}

	body, err := i.client.GetText(ctx, i.client.ImporterPath("run"), req.params())
	if err != nil {
		return err
	}
	importRunsTotal.Inc()

	i.logger.Info().
		Str("input_path", req.InputPath).
		Str("target_path", req.TargetPath).
		Str("response", body).
		Msg("Import triggered")

	if wait {
		return i.AwaitIdle(ctx)
	}
	return nil
}

// Log fetches a tail of the importer's server-side log.
func (i *Importer) Log(ctx context.Context) (string, error) {
	return i.client.GetText(ctx, i.client.ImporterPath("log"), nil)
}

// ActivateLog turns on the importer's server-side logging.
func (i *Importer) ActivateLog(ctx context.Context) (string, error) {
	return i.client.GetText(ctx, i.client.ImporterPath("logActivate"), nil)
}
