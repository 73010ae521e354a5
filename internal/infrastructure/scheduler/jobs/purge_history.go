// Package jobs contains the scheduled maintenance jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PURGE HISTORY JOB
// Generation log entries are only kept for debugging; they carry no
// state the engine reads back. This job trims rows older than the
// retention window. Raw outcome records are append-only ledger input
// and are never deleted, consumed or not.
// ══════════════════════════════════════════════════════════════════════════════

// GenerationHistoryStore deletes generation log rows older than a cutoff.
type GenerationHistoryStore interface {
	DeleteLoggedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeHistoryJob removes aged rows from the generation log.
type PurgeHistoryJob struct {
	genLog    GenerationHistoryStore
	retention time.Duration
	logger    *slog.Logger
}

// NewPurgeHistoryJob creates the job. retention must be positive.
func NewPurgeHistoryJob(
	genLog GenerationHistoryStore,
	retention time.Duration,
	logger *slog.Logger,
) *PurgeHistoryJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurgeHistoryJob{
		genLog:    genLog,
		retention: retention,
		logger:    logger,
	}
}

// Name implements scheduler.Job.
func (j *PurgeHistoryJob) Name() string { return "purge_history" }

// Run implements scheduler.Job.
func (j *PurgeHistoryJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.retention)

	logs, err := j.genLog.DeleteLoggedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge generation log: %w", err)
	}

	if logs > 0 {
		j.logger.Info("purged history",
			"generation_logs", logs,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return nil
}
