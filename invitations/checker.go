package invitations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/willsigmon/LeavnOfficial/appstore"
	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// BuildStatus is the observed readiness of the latest build.
type BuildStatus struct {
	Build          interfaces.Build `json:"build"`
	IsReady        bool             `json:"is_ready"`
	ProcessingTime time.Duration    `json:"processing_time"`
	LastChecked    time.Time        `json:"last_checked"`
}

// InvitationStatus is the reconciled state of one address.
type InvitationStatus struct {
	Email       interfaces.Email         `json:"email"`
	TesterID    string                   `json:"tester_id,omitempty"`
	Status      interfaces.OutcomeStatus `json:"status"`
	LastChecked time.Time                `json:"last_checked"`
	Detail      string                   `json:"detail,omitempty"`
}

// StatusChecker answers reconciliation queries against the remote system:
// build readiness and which addresses are actually invited. Remote state is
// eventually consistent, so answers are observations, not guarantees.
type StatusChecker struct {
	client   *appstore.Client
	resolver *appstore.Resolver
	log      *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewStatusChecker creates a checker on top of the given client.
func NewStatusChecker(client *appstore.Client, log *slog.Logger) *StatusChecker {
	return &StatusChecker{
		client:   client,
		resolver: appstore.NewResolver(client, log),
		log:      log,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// CheckBuild reports the readiness of the app's latest build.
func (sc *StatusChecker) CheckBuild(ctx context.Context, appID string) (*BuildStatus, error) {
	build, err := sc.resolver.LatestBuild(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to check build status: %w", err)
	}

	now := sc.now()
	status := &BuildStatus{
		Build:          *build,
		IsReady:        build.ProcessingState.Ready(),
		ProcessingTime: now.Sub(build.UploadedDate),
		LastChecked:    now,
	}

	if status.IsReady {
		sc.log.Info("Build is ready for testing",
			slog.String("version", build.Version),
			slog.String("buildNumber", build.BuildNumber))
	} else {
		sc.log.Info("Build is not ready yet",
			slog.String("version", build.Version),
			slog.String("state", string(build.ProcessingState)),
			slog.Duration("processingTime", status.ProcessingTime))
	}
	return status, nil
}

// WaitForBuildReady polls until the latest build is ready, the timeout
// elapses, or the context is cancelled. The final observed status is
// returned in all three cases.
func (sc *StatusChecker) WaitForBuildReady(ctx context.Context, appID string, timeout, interval time.Duration) (*BuildStatus, error) {
	deadline := sc.now().Add(timeout)

	for {
		status, err := sc.CheckBuild(ctx, appID)
		if err != nil {
			return nil, err
		}
		if status.IsReady {
			return status, nil
		}
		if !sc.now().Add(interval).Before(deadline) {
			sc.log.Warn("Timed out waiting for build",
				slog.String("state", string(status.Build.ProcessingState)))
			return status, nil
		}

		sc.log.Info("Still processing, checking again",
			slog.Duration("interval", interval),
			slog.Duration("remaining", deadline.Sub(sc.now())))
		if err := sc.sleep(ctx, interval); err != nil {
			return status, err
		}
	}
}

// CheckInvitations reconciles each address against remote state: invited
// (tester exists and is on the app), already_associated (tester exists but
// is not on the app), not_found (no tester), or error.
func (sc *StatusChecker) CheckInvitations(ctx context.Context, emails []interfaces.Email, appID string) []InvitationStatus {
	statuses := make([]InvitationStatus, 0, len(emails))

	for i, email := range emails {
		status := InvitationStatus{Email: email, LastChecked: sc.now()}

		tester, err := sc.client.LookupTester(ctx, email)
		switch {
		case err != nil:
			status.Status = interfaces.OutcomeError
			status.Detail = err.Error()
		case tester == nil:
			status.Status = interfaces.OutcomeNotFound
		default:
			status.TesterID = tester.ID
			onApp, err := sc.testerOnApp(ctx, tester.ID, appID)
			switch {
			case err != nil:
				status.Status = interfaces.OutcomeError
				status.Detail = err.Error()
			case onApp:
				status.Status = interfaces.OutcomeInvited
			default:
				status.Status = interfaces.OutcomeExistsNotInvited
				status.Detail = "tester exists but is not associated to the app"
			}
		}
		statuses = append(statuses, status)

		if i < len(emails)-1 {
			if err := sc.sleep(ctx, 100*time.Millisecond); err != nil {
				break
			}
		}
	}

	return statuses
}

func (sc *StatusChecker) testerOnApp(ctx context.Context, testerID, appID string) (bool, error) {
	appIDs, err := sc.client.TesterApps(ctx, testerID)
	if err != nil {
		return false, err
	}
	for _, id := range appIDs {
		if id == appID {
			return true, nil
		}
	}
	return false, nil
}
