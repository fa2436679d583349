// Package orchestrator drives one automation session per approved job:
// adapter selection, session lifetime, field filling, and the outcome
// transition back into the store.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobagent/internal/job"
	"jobagent/internal/platform"
	"jobagent/internal/profile"
	"jobagent/internal/store"
	"jobagent/internal/utils"
)

const (
	defaultTimeout    = 120 * time.Second
	defaultFieldDelay = 500 * time.Millisecond

	reasonTimeout   = "timeout"
	reasonCancelled = "cancelled"
)

// Config tunes a single orchestrator instance.
type Config struct {
	// Timeout is the hard per-job budget after which the session is
	// forcibly released and the job fails with reason "timeout".
	Timeout time.Duration
	// FieldDelay paces consecutive field fills; it doubles as the
	// cancellation point between steps.
	FieldDelay time.Duration
}

// Orchestrator executes jobs strictly sequentially: browser automation is
// stateful and non-reentrant, so a process-wide gate admits one session
// at a time. Store reads and scoring may run concurrently with it.
type Orchestrator struct {
	store    *store.Store
	registry *platform.Registry
	profile  *profile.Profile
	logger   *zap.Logger

	timeout    time.Duration
	fieldDelay time.Duration

	sessionGate sync.Mutex
}

// New wires an orchestrator. Zero config fields fall back to defaults.
func New(st *store.Store, registry *platform.Registry, prof *profile.Profile, logger *zap.Logger, cfg Config) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FieldDelay < 0 {
		cfg.FieldDelay = defaultFieldDelay
	}

	return &Orchestrator{
		store:      st,
		registry:   registry,
		profile:    prof,
		logger:     logger,
		timeout:    cfg.Timeout,
		fieldDelay: cfg.FieldDelay,
	}
}

// Process runs a single automation attempt for the job. Store errors
// (NotFound, InvalidTransition) surface to the caller; automation
// failures are absorbed into the record's last_error and a "failed"
// transition, so a batch of jobs can be driven in a loop without per-job
// error handling.
func (o *Orchestrator) Process(ctx context.Context, jobID string) (*job.ApplicationRecord, error) {
	rec, err := o.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch rec.State {
	case job.StateApplying:
		// Already approved; continue.
	case job.StateFound:
		rec, err = o.store.Transition(ctx, jobID, job.StateApplying, "approved for automation")
	case job.StateFailed:
		rec, err = o.store.Transition(ctx, jobID, job.StateApplying, "retrying after failure")
	default:
		return nil, &job.InvalidTransitionError{JobID: jobID, From: rec.State, To: job.StateApplying}
	}
	if err != nil {
		return nil, err
	}

	o.sessionGate.Lock()
	defer o.sessionGate.Unlock()

	adapter := o.registry.Select(rec.SourceURL)
	o.logger.Info("adapter selected",
		zap.String("job_id", jobID),
		zap.String("adapter", adapter.Name()),
		zap.String("url", rec.SourceURL),
	)

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	outcome, runErr := o.runSession(runCtx, adapter, rec)
	if runErr != nil {
		return o.fail(ctx, jobID, runCtx, runErr)
	}

	switch outcome {
	case platform.OutcomeSubmitted:
		rec, err = o.store.Transition(ctx, jobID, job.StateApplied,
			fmt.Sprintf("application submitted via %s adapter (%s policy)", adapter.Name(), adapter.Policy()))
	case platform.OutcomeAwaitingConfirmation:
		rec, err = o.store.Annotate(ctx, jobID, "form filled; waiting for manual submit confirmation")
	case platform.OutcomeManualRequired:
		rec, err = o.store.Annotate(ctx, jobID,
			fmt.Sprintf("manual completion required (%s adapter)", adapter.Name()))
	default:
		return o.fail(ctx, jobID, runCtx, fmt.Errorf("adapter reported unknown outcome %q", outcome))
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("automation attempt finished",
		zap.String("job_id", jobID),
		zap.String("outcome", string(outcome)),
		zap.String("state", string(rec.State)),
	)
	return rec, nil
}

// runSession owns the session lifetime: every exit path releases it.
func (o *Orchestrator) runSession(ctx context.Context, adapter platform.Adapter, rec *job.ApplicationRecord) (platform.Outcome, error) {
	session, err := adapter.Open(ctx, rec.SourceURL)
	if err != nil {
		return "", fmt.Errorf("open application: %w", err)
	}
	defer session.Close()

	o.logger.Debug("session opened",
		zap.String("job_id", rec.JobID),
		zap.String("session_id", session.ID),
	)

	for _, field := range o.profile.Fields() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		err := adapter.Fill(ctx, session, field.Key, field.Value)
		if errors.Is(err, platform.ErrUnknownField) {
			o.logger.Debug("field not supported by adapter",
				zap.String("adapter", adapter.Name()),
				zap.String("field", field.Key),
			)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("fill field %s: %w", field.Key, err)
		}

		if err := utils.WaitFor(ctx, o.fieldDelay); err != nil {
			return "", err
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return adapter.Submit(ctx, session)
}

// fail absorbs an automation error into the record. The failure-path store
// writes run on a context detached from the (possibly expired) run budget.
func (o *Orchestrator) fail(ctx context.Context, jobID string, runCtx context.Context, cause error) (*job.ApplicationRecord, error) {
	writeCtx := context.WithoutCancel(ctx)

	reason := failureReason(runCtx, cause)
	o.logger.Warn("automation attempt failed",
		zap.String("job_id", jobID),
		zap.String("reason", reason),
		zap.Error(cause),
	)

	if err := o.store.SetLastError(writeCtx, jobID, cause.Error()); err != nil {
		return nil, err
	}

	rec, err := o.store.Transition(writeCtx, jobID, job.StateFailed, reason)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func failureReason(runCtx context.Context, cause error) string {
	switch {
	case errors.Is(cause, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return reasonTimeout
	case errors.Is(cause, context.Canceled):
		return reasonCancelled
	default:
		return "automation failure"
	}
}
