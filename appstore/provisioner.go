package appstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// Provisioner drives the idempotent invite workflow for a single tester:
// find-or-create, associate to app, associate to the latest ready build.
type Provisioner struct {
	client   *Client
	resolver *Resolver
	log      *slog.Logger
}

// NewProvisioner creates a provisioner on top of the given client.
func NewProvisioner(client *Client, log *slog.Logger) *Provisioner {
	return &Provisioner{
		client:   client,
		resolver: NewResolver(client, log),
		log:      log,
	}
}

// Invite provisions one tester against the given app. Failures are captured
// in the returned outcome rather than aborting the caller; running Invite
// twice for the same tester never fails on duplication alone.
func (p *Provisioner) Invite(ctx context.Context, email interfaces.Email, firstName, lastName, appID string) interfaces.InvitationOutcome {
	outcome := interfaces.InvitationOutcome{Email: email}

	tester, err := p.client.LookupTester(ctx, email)
	if err != nil {
		return p.failed(outcome, "lookup tester", err)
	}

	if tester == nil {
		p.log.Info("Creating new beta tester", slog.String("email", email.String()))
		tester, err = p.client.CreateTester(ctx, email, firstName, lastName)
		if err != nil {
			return p.failed(outcome, "create tester", err)
		}
	} else {
		p.log.Info("Tester already exists, associating to app",
			slog.String("email", email.String()),
			slog.String("testerID", tester.ID))
	}
	outcome.TesterID = tester.ID

	if err := p.client.AddTesterToApp(ctx, tester.ID, appID); err != nil {
		return p.failed(outcome, "associate tester to app", err)
	}

	build, err := p.resolver.LatestBuild(ctx, appID)
	if err != nil {
		if IsNotFound(err) {
			outcome.Status = interfaces.OutcomeNotFound
			outcome.Detail = fmt.Sprintf("no build available for app %s: %v", appID, err)
			return outcome
		}
		return p.failed(outcome, "resolve latest build", err)
	}
	outcome.BuildID = build.ID
	outcome.BuildVersion = build.Version

	if !build.ProcessingState.Ready() {
		// Tester is on the app but cannot join a build yet. Incomplete,
		// not failed.
		p.log.Warn("Latest build is not ready, tester will join once processing completes",
			slog.String("email", email.String()),
			slog.String("buildVersion", build.Version),
			slog.String("state", string(build.ProcessingState)))
		outcome.Status = interfaces.OutcomePendingBuild
		outcome.Detail = fmt.Sprintf("build %s is %s", build.Version, build.ProcessingState)
		return outcome
	}

	if err := p.client.AddTesterToBuild(ctx, tester.ID, build.ID); err != nil {
		return p.failed(outcome, "associate tester to build", err)
	}

	p.log.Info("Successfully invited tester",
		slog.String("email", email.String()),
		slog.String("testerID", tester.ID),
		slog.String("buildVersion", build.Version))
	outcome.Status = interfaces.OutcomeInvited
	return outcome
}

func (p *Provisioner) failed(outcome interfaces.InvitationOutcome, step string, err error) interfaces.InvitationOutcome {
	p.log.Error("Failed to provision tester",
		slog.String("email", outcome.Email.String()),
		slog.String("step", step),
		"err", err)
	outcome.Status = interfaces.OutcomeError
	outcome.Detail = fmt.Sprintf("%s for %s: %v", step, outcome.Email, err)
	return outcome
}
