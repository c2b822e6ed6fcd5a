package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuboski/watchlistarr/config"
	"github.com/kasuboski/watchlistarr/pkg/arr"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/kasuboski/watchlistarr/pkg/syncerr"
	"github.com/kasuboski/watchlistarr/pkg/watchlist"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultSpacing is the minimum gap between two entries of one pass
const DefaultSpacing = 100 * time.Millisecond

// Engine reconciles watchlist snapshots against the configured targets.
// It keeps no state between passes.
type Engine struct {
	reader  WatchlistReader
	targets Targets
	spacing time.Duration
	removal config.Delete
	now     func() time.Time
}

// NewEngine creates an engine. A negative spacing uses DefaultSpacing, zero disables throttling.
func NewEngine(reader WatchlistReader, targets Targets, spacing time.Duration, removal config.Delete) *Engine {
	if spacing < 0 {
		spacing = DefaultSpacing
	}

	return &Engine{
		reader:  reader,
		targets: targets,
		spacing: spacing,
		removal: removal,
		now:     time.Now,
	}
}

// Targets returns the targets passes are routed to
func (e *Engine) Targets() Targets {
	return e.targets
}

// Sync reads the watchlist and reconciles it. Only a failed read is returned as an error;
// per entry failures are recorded in the report.
func (e *Engine) Sync(ctx context.Context, includeCollaborators bool) (Report, error) {
	entries, err := e.reader.Read(ctx, includeCollaborators)
	if err != nil {
		return Report{}, err
	}

	return e.Reconcile(ctx, entries, e.targets), nil
}

// Ping reads the primary watchlist to surface an expired token early. The entries are discarded.
func (e *Engine) Ping(ctx context.Context) (int, error) {
	log := logger.FromCtx(ctx)

	entries, err := e.reader.Read(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("watchlist token check failed: %w", err)
	}

	log.Infow("watchlist token is valid", zap.Int("entries", len(entries)))
	return len(entries), nil
}

// Prune would remove titles that left the watchlist from the managers.
// TODO: define which library titles are eligible for removal before deleting anything.
func (e *Engine) Prune(ctx context.Context) error {
	log := logger.FromCtx(ctx)
	log.Infow("removal sync is not implemented, nothing removed",
		zap.Bool("movie", e.removal.Movie),
		zap.Bool("ended_show", e.removal.EndedShow),
		zap.Bool("continuing_show", e.removal.ContinuingShow),
		zap.Bool("delete_files", e.removal.DeleteFiles))
	return nil
}

// Reconcile feeds entries to the target for their kind in order, one at a time.
// Every entry reaches a terminal outcome; a failure never stops the pass.
func (e *Engine) Reconcile(ctx context.Context, entries []watchlist.Entry, targets Targets) Report {
	runID := uuid.NewString()
	log := logger.FromCtx(ctx).With(zap.String("run_id", runID))
	ctx = logger.WithCtx(ctx, log)

	report := Report{
		RunID:     runID,
		StartedAt: e.now(),
		Outcomes:  make([]Outcome, 0, len(entries)),
	}

	limit := rate.Inf
	if e.spacing > 0 {
		limit = rate.Every(e.spacing)
	}
	limiter := rate.NewLimiter(limit, 1)

	log.Debugw("reconciling watchlist", zap.Int("entries", len(entries)))
	for _, entry := range entries {
		target := targets.For(entry.Kind)
		if target == nil {
			log.Infow("no manager configured for kind, skipping",
				zap.String("title", entry.Title),
				zap.String("kind", string(entry.Kind)))
			report.Outcomes = append(report.Outcomes, Outcome{Entry: entry, Status: StatusSkipped})
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			report.Outcomes = append(report.Outcomes, failed(entry, target, fmt.Errorf("throttle: %w", err)))
			continue
		}

		report.Outcomes = append(report.Outcomes, e.reconcileOne(ctx, entry, target))
	}

	report.FinishedAt = e.now()

	counts := report.Counts()
	log.Infow("reconciliation finished",
		zap.Int("added", counts[StatusAdded]),
		zap.Int("already_exists", counts[StatusAlreadyExists]),
		zap.Int("skipped", counts[StatusSkipped]),
		zap.Int("failed", counts[StatusFailed]),
		zap.Duration("duration", report.Duration()))

	return report
}

func (e *Engine) reconcileOne(ctx context.Context, entry watchlist.Entry, target Target) (outcome Outcome) {
	log := logger.FromCtx(ctx).With(
		zap.String("manager", target.Name()),
		zap.String("title", entry.Title),
		zap.String("entry_id", entry.ID))

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("panic while adding entry", zap.Any("panic", r))
			outcome = failed(entry, target, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err := target.Add(ctx, entry)
	if err != nil {
		kind := syncerr.KindOf(err)
		fields := []any{zap.String("reason", string(kind)), zap.Error(err)}
		if body := syncerr.Response(err); len(body) > 0 {
			fields = append(fields, zap.ByteString("response", body))
		}
		log.Errorw("failed to add entry", fields...)
		return failed(entry, target, err)
	}

	status := StatusAdded
	if res.Status == arr.AlreadyExists {
		status = StatusAlreadyExists
	}

	return Outcome{Entry: entry, Status: status, Manager: target.Name()}
}

func failed(entry watchlist.Entry, target Target, err error) Outcome {
	return Outcome{
		Entry:   entry,
		Status:  StatusFailed,
		Manager: target.Name(),
		Reason:  syncerr.KindOf(err),
		Error:   err.Error(),
	}
}
