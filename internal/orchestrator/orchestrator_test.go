package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobagent/internal/job"
	"jobagent/internal/platform"
	"jobagent/internal/profile"
	"jobagent/internal/store"
)

// scriptedAdapter drives orchestrator tests without a browser.
type scriptedAdapter struct {
	name    string
	policy  platform.SubmitPolicy
	openErr error
	fillErr error
	// blockFills makes every Fill wait for context cancellation.
	blockFills bool
	outcome    platform.Outcome

	session *platform.Session
	filled  []string
}

func (a *scriptedAdapter) Name() string { return a.name }

func (a *scriptedAdapter) Detect(string) bool { return true }

func (a *scriptedAdapter) Policy() platform.SubmitPolicy { return a.policy }

func (a *scriptedAdapter) Open(_ context.Context, rawURL string) (*platform.Session, error) {
	if a.openErr != nil {
		return nil, a.openErr
	}
	a.session = platform.NewDetachedSession(rawURL)
	return a.session, nil
}

func (a *scriptedAdapter) Fill(ctx context.Context, _ *platform.Session, key, _ string) error {
	if a.blockFills {
		<-ctx.Done()
		return ctx.Err()
	}
	if a.fillErr != nil {
		return a.fillErr
	}
	a.filled = append(a.filled, key)
	return nil
}

func (a *scriptedAdapter) Submit(context.Context, *platform.Session) (platform.Outcome, error) {
	if a.outcome == "" {
		return platform.OutcomeSubmitted, nil
	}
	return a.outcome, nil
}

func newFixture(t *testing.T, adapter platform.Adapter, cfg Config) (*Orchestrator, *store.Store, string) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sj := job.ScoredJob{
		Listing: job.Listing{
			ID:        job.ListingID("https://example.com/apply/1", "Go Developer", "Acme"),
			Title:     "Go Developer",
			Company:   "Acme",
			SourceURL: "https://example.com/apply/1",
		},
		Score:         0.7,
		MatchedSkills: []string{"go"},
		ScoredAt:      time.Now().UTC(),
	}
	_, err = st.UpsertScored(context.Background(), sj)
	require.NoError(t, err)

	registry := platform.NewRegistry(platform.NewGeneric(nil))
	if adapter != nil {
		registry.Register(adapter)
	}

	prof := profile.FromMap(map[string]string{
		"email":      "testy@example.com",
		"first_name": "Testy",
	})

	return New(st, registry, prof, zap.NewNop(), cfg), st, sj.ID
}

func TestProcessSubmitsAndTransitionsToApplied(t *testing.T) {
	adapter := &scriptedAdapter{name: "scripted", policy: platform.SubmitAuto}
	o, _, jobID := newFixture(t, adapter, Config{})

	rec, err := o.Process(context.Background(), jobID)
	require.NoError(t, err)

	assert.Equal(t, job.StateApplied, rec.State)
	assert.Equal(t, rec.State, rec.History[len(rec.History)-1].State)
	assert.Equal(t, []string{"email", "first_name"}, adapter.filled, "fields fill in deterministic order")
	require.NotNil(t, adapter.session)
	assert.True(t, adapter.session.Closed(), "session must be released")
}

func TestProcessHumanConfirmStaysApplying(t *testing.T) {
	adapter := &scriptedAdapter{
		name:    "scripted",
		policy:  platform.SubmitHumanConfirm,
		outcome: platform.OutcomeAwaitingConfirmation,
	}
	o, _, jobID := newFixture(t, adapter, Config{})

	rec, err := o.Process(context.Background(), jobID)
	require.NoError(t, err)

	assert.Equal(t, job.StateApplying, rec.State)
	last := rec.History[len(rec.History)-1]
	assert.Equal(t, job.StateApplying, last.State)
	assert.Contains(t, last.Reason, "manual submit confirmation")
}

func TestProcessAbsorbsAdapterFailure(t *testing.T) {
	adapter := &scriptedAdapter{
		name:    "scripted",
		policy:  platform.SubmitAuto,
		fillErr: errors.New("element not interactable"),
	}
	o, _, jobID := newFixture(t, adapter, Config{})

	rec, err := o.Process(context.Background(), jobID)
	require.NoError(t, err, "automation failures must not escape Process")

	assert.Equal(t, job.StateFailed, rec.State)
	assert.Contains(t, rec.LastError, "element not interactable")
	require.NotNil(t, adapter.session)
	assert.True(t, adapter.session.Closed())
}

func TestProcessTimeoutFailsAndReleasesSession(t *testing.T) {
	adapter := &scriptedAdapter{name: "scripted", policy: platform.SubmitAuto, blockFills: true}
	o, _, jobID := newFixture(t, adapter, Config{Timeout: 50 * time.Millisecond})

	rec, err := o.Process(context.Background(), jobID)
	require.NoError(t, err)

	assert.Equal(t, job.StateFailed, rec.State)
	assert.Equal(t, "timeout", rec.History[len(rec.History)-1].Reason)
	require.NotNil(t, adapter.session)
	assert.True(t, adapter.session.Closed(), "timed-out session must be force released")
}

func TestProcessCancellationFailsWithReason(t *testing.T) {
	adapter := &scriptedAdapter{name: "scripted", policy: platform.SubmitAuto, blockFills: true}
	o, _, jobID := newFixture(t, adapter, Config{Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	rec, err := o.Process(ctx, jobID)
	require.NoError(t, err)

	assert.Equal(t, job.StateFailed, rec.State)
	assert.Equal(t, "cancelled", rec.History[len(rec.History)-1].Reason)
	require.NotNil(t, adapter.session)
	assert.True(t, adapter.session.Closed())
}

func TestProcessGenericFallbackNeverApplies(t *testing.T) {
	o, _, jobID := newFixture(t, nil, Config{})

	rec, err := o.Process(context.Background(), jobID)
	require.NoError(t, err)

	assert.Equal(t, job.StateApplying, rec.State, "generic adapter must not claim success")
	last := rec.History[len(rec.History)-1]
	assert.Contains(t, last.Reason, "manual completion required")
}

func TestProcessRetriesFailedJob(t *testing.T) {
	adapter := &scriptedAdapter{name: "scripted", policy: platform.SubmitAuto}
	o, st, jobID := newFixture(t, adapter, Config{})
	ctx := context.Background()

	_, err := st.Transition(ctx, jobID, job.StateApplying, "approved")
	require.NoError(t, err)
	_, err = st.Transition(ctx, jobID, job.StateFailed, "first attempt broke")
	require.NoError(t, err)

	rec, err := o.Process(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StateApplied, rec.State)
}

func TestProcessSurfacesStoreErrors(t *testing.T) {
	adapter := &scriptedAdapter{name: "scripted", policy: platform.SubmitAuto}
	o, st, jobID := newFixture(t, adapter, Config{})
	ctx := context.Background()

	_, err := o.Process(ctx, "missing")
	var notFound *job.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = st.Transition(ctx, jobID, job.StateRejected, "not interested")
	require.NoError(t, err)

	_, err = o.Process(ctx, jobID)
	var invalid *job.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestProcessOpenFailureAbsorbed(t *testing.T) {
	adapter := &scriptedAdapter{
		name:    "scripted",
		policy:  platform.SubmitAuto,
		openErr: errors.New("navigation failure"),
	}
	o, _, jobID := newFixture(t, adapter, Config{})

	rec, err := o.Process(context.Background(), jobID)
	require.NoError(t, err)

	assert.Equal(t, job.StateFailed, rec.State)
	assert.Contains(t, rec.LastError, "navigation failure")
}
