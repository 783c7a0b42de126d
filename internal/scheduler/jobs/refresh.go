package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
	"github.com/RudolfTheOne/ThetaTracker/internal/userconfig"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// RefreshJobName identifies the refresh job for manual triggers.
const RefreshJobName = "screener_refresh"

// CycleSink receives each completed cycle. Sinks are advisory: a
// failing sink is logged and the others still run.
type CycleSink interface {
	Name() string
	PublishCycle(ctx context.Context, cycle *screener.CycleResult) error
}

// RefreshJob runs one screening cycle per tick: snapshot the user
// settings, run the pipeline, publish the result to every sink.
type RefreshJob struct {
	pipeline *screener.Pipeline
	cfg      *userconfig.Config
	results  *screener.ResultStore
	sinks    []CycleSink
	interval time.Duration
	logger   *logger.Logger
}

// NewRefreshJob creates the refresh job.
func NewRefreshJob(
	pipeline *screener.Pipeline,
	cfg *userconfig.Config,
	results *screener.ResultStore,
	sinks []CycleSink,
	interval time.Duration,
	log *logger.Logger,
) *RefreshJob {
	return &RefreshJob{
		pipeline: pipeline,
		cfg:      cfg,
		results:  results,
		sinks:    sinks,
		interval: interval,
		logger:   log.WithField("module", "refresh_job"),
	}
}

// Name implements scheduler.Job.
func (j *RefreshJob) Name() string {
	return RefreshJobName
}

// Schedule implements scheduler.Job.
func (j *RefreshJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.interval)
}

// Run executes one cycle. The pipeline serializes overlapping runs
// itself, so a forced refresh during a scheduled one simply queues.
func (j *RefreshJob) Run(ctx context.Context) error {
	snapshot := j.cfg.Snapshot(time.Now(), "")
	cycle := j.pipeline.RunCycle(ctx, snapshot)

	j.results.Set(cycle)

	for _, sink := range j.sinks {
		if err := sink.PublishCycle(ctx, cycle); err != nil {
			j.logger.WithError(err).WithField("sink", sink.Name()).Warn("Cycle sink failed")
		}
	}

	return nil
}
