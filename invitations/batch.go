package invitations

import (
	"context"
	"log/slog"
	"time"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// DefaultItemDelay is the courtesy pause between entries. It is separate
// from, and smaller than, the request pipeline's reactive backoff; its only
// purpose is staying under the remote service's implicit rate limits.
const DefaultItemDelay = 500 * time.Millisecond

// Entry is one tester to provision.
type Entry struct {
	Email     interfaces.Email
	FirstName string
	LastName  string
}

// TesterInviter provisions a single tester. Implemented by
// appstore.Provisioner.
type TesterInviter interface {
	Invite(ctx context.Context, email interfaces.Email, firstName, lastName, appID string) interfaces.InvitationOutcome
}

// BatchResult is the terminal state of one batch run.
type BatchResult struct {
	Outcomes []interfaces.InvitationOutcome
	Progress Snapshot
}

// Orchestrator drives the provisioner over a list of entries, strictly in
// input order with no parallelism.
type Orchestrator struct {
	inviter   TesterInviter
	itemDelay time.Duration
	log       *slog.Logger

	// sleep is replaced in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator. itemDelay <= 0 selects
// DefaultItemDelay.
func NewOrchestrator(inviter TesterInviter, itemDelay time.Duration, log *slog.Logger) *Orchestrator {
	if itemDelay <= 0 {
		itemDelay = DefaultItemDelay
	}
	return &Orchestrator{
		inviter:   inviter,
		itemDelay: itemDelay,
		log:       log,
		sleep:     sleepContext,
	}
}

// Run processes all entries against the given app. Outcomes preserve input
// order: outcome[i] corresponds to entries[i]. A failing entry is captured
// in its outcome and does not abort the batch. Cancellation is honored
// between entries; an in-flight request completes or times out naturally so
// remote state never ends up ambiguous.
func (o *Orchestrator) Run(ctx context.Context, entries []Entry, appID string) (*BatchResult, error) {
	progress := NewProgress(len(entries))
	outcomes := make([]interfaces.InvitationOutcome, 0, len(entries))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			o.log.Warn("Batch aborted",
				slog.Int("processed", progress.Processed()),
				slog.Int("remaining", len(entries)-i))
			return &BatchResult{Outcomes: outcomes, Progress: progress.Snapshot()}, err
		}

		o.log.Info("Processing tester",
			slog.Int("index", i+1),
			slog.Int("total", len(entries)),
			slog.String("email", entry.Email.String()))

		outcome := o.inviter.Invite(ctx, entry.Email, entry.FirstName, entry.LastName, appID)
		outcomes = append(outcomes, outcome)
		o.record(progress, outcome)

		if i < len(entries)-1 {
			if err := o.sleep(ctx, o.itemDelay); err != nil {
				return &BatchResult{Outcomes: outcomes, Progress: progress.Snapshot()}, err
			}
		}
	}

	snapshot := progress.Snapshot()
	o.log.Info("Batch complete",
		slog.Int("total", snapshot.Total),
		slog.Int("succeeded", snapshot.Succeeded),
		slog.Int("warned", snapshot.Warned),
		slog.Int("failed", snapshot.Failed))
	return &BatchResult{Outcomes: outcomes, Progress: snapshot}, nil
}

// record increments processed plus exactly one of succeeded/warned/failed.
func (o *Orchestrator) record(progress *Progress, outcome interfaces.InvitationOutcome) {
	progress.processed.Inc()
	switch outcome.Status {
	case interfaces.OutcomeInvited:
		progress.succeeded.Inc()
	case interfaces.OutcomePendingBuild, interfaces.OutcomeAlreadyAssociated:
		progress.warned.Inc()
	default:
		progress.failed.Inc()
	}
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
