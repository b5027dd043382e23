package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/willsigmon/LeavnOfficial/appstore"
	"github.com/willsigmon/LeavnOfficial/cmd/flags"
	"github.com/willsigmon/LeavnOfficial/interfaces"
	"github.com/willsigmon/LeavnOfficial/invitations"
	"github.com/willsigmon/LeavnOfficial/storage"
)

var flagEmail = &cli.StringSliceFlag{
	Name:  "email",
	Usage: "tester email address, repeatable",
}
var flagEmailFile = &cli.StringFlag{
	Name:  "email-file",
	Usage: "path to a file with one tester email per line; blank lines and # comments are skipped",
}
var flagFirstName = &cli.StringFlag{
	Name:  "first-name",
	Value: "TestFlight",
	Usage: "first name for newly created testers",
}
var flagLastName = &cli.StringFlag{
	Name:  "last-name",
	Value: "Tester",
	Usage: "last name for newly created testers",
}
var flagItemDelay = &cli.DurationFlag{
	Name:  "item-delay",
	Value: invitations.DefaultItemDelay,
	Usage: "delay between testers in a batch",
}
var flagDryRun = &cli.BoolFlag{
	Name:  "dry-run",
	Usage: "validate the email list and print the plan without calling the API",
}
var flagReportOut = &cli.StringSliceFlag{
	Name:  "report-out",
	Usage: "report sink URI (file://, s3://, ipfs://), repeatable",
}
var flagWait = &cli.BoolFlag{
	Name:  "wait",
	Usage: "poll until the latest build finishes processing",
}
var flagWaitTimeout = &cli.DurationFlag{
	Name:  "wait-timeout",
	Value: 30 * time.Minute,
	Usage: "give up waiting for the build after this long",
}
var flagPollInterval = &cli.DurationFlag{
	Name:  "poll-interval",
	Value: 30 * time.Second,
	Usage: "interval between build status polls",
}

func main() {
	app := &cli.App{
		Name:  "testflight",
		Usage: "provision TestFlight beta testers via the App Store Connect API",
		Flags: append([]cli.Flag{flags.LogServiceFlagFn("testflight")}, flags.CommonFlags...),
		Commands: []*cli.Command{
			{
				Name:  "invite",
				Usage: "invite a batch of testers to the app's latest build",
				Flags: []cli.Flag{
					flagEmail,
					flagEmailFile,
					flagFirstName,
					flagLastName,
					flagItemDelay,
					flagDryRun,
					flagReportOut,
				},
				Action: runInvite,
			},
			{
				Name:  "check-build",
				Usage: "report the processing state of the app's latest build",
				Flags: []cli.Flag{
					flagWait,
					flagWaitTimeout,
					flagPollInterval,
				},
				Action: runCheckBuild,
			},
			{
				Name:  "status",
				Usage: "check invitation status for a list of testers and generate a report",
				Flags: []cli.Flag{
					flagEmail,
					flagEmailFile,
					flagReportOut,
				},
				Action: runStatus,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// tool bundles the API client and the resolved app for command actions.
type tool struct {
	log      *slog.Logger
	client   *appstore.Client
	resolver *appstore.Resolver
	app      *interfaces.App
}

func newTool(cCtx *cli.Context) (*tool, error) {
	logger := flags.SetupLogger(cCtx)
	ctx := cCtx.Context

	var source appstore.CredentialSource
	if vaultAddr := cCtx.String(flags.VaultAddrFlag.Name); vaultAddr != "" {
		vaultSource, err := appstore.NewVaultCredentialSource(
			vaultAddr,
			cCtx.String(flags.VaultTokenFlag.Name),
			cCtx.String(flags.VaultMountFlag.Name),
			cCtx.String(flags.VaultSecretPathFlag.Name),
			logger)
		if err != nil {
			return nil, err
		}
		source = vaultSource
	} else {
		source = appstore.DirCredentialSource(cCtx.String(flags.CredentialsDirFlag.Name))
	}

	creds, err := source.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	client, err := appstore.NewClient(&appstore.ClientConfig{
		BaseURL:     cCtx.String(flags.APIBaseURLFlag.Name),
		Credentials: creds,
		Log:         logger,
	})
	if err != nil {
		return nil, err
	}

	resolver := appstore.NewResolver(client, logger)
	bundleID := interfaces.BundleID(cCtx.String(flags.BundleIDFlag.Name))
	app, err := resolver.AppByBundleID(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("could not resolve app for bundle ID %s: %w", bundleID, err)
	}

	logger.Info("Resolved app",
		slog.String("bundle_id", string(bundleID)),
		slog.String("app_id", app.ID),
		slog.String("name", app.Name))

	return &tool{
		log:      logger,
		client:   client,
		resolver: resolver,
		app:      app,
	}, nil
}

// gatherEmails merges the --email flags and the --email-file contents and
// validates them. Invalid entries are logged and skipped.
func gatherEmails(cCtx *cli.Context, logger *slog.Logger) ([]interfaces.Email, error) {
	raw := cCtx.StringSlice(flagEmail.Name)

	if path := cCtx.String(flagEmailFile.Name); path != "" {
		fromFile, err := invitations.ReadEmailList(path)
		if err != nil {
			return nil, fmt.Errorf("could not read email file: %w", err)
		}
		raw = append(raw, fromFile...)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("no emails provided, use --email or --email-file")
	}

	result := invitations.ValidateEmails(raw)
	for _, invalid := range result.Invalid {
		logger.Warn("Skipping invalid email", slog.String("email", invalid))
	}
	if len(result.Valid) == 0 {
		return nil, fmt.Errorf("no valid emails remain after validation")
	}

	return result.Valid, nil
}

func runInvite(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	if cCtx.Bool(flagDryRun.Name) {
		return runDryRun(cCtx, logger)
	}

	t, err := newTool(cCtx)
	if err != nil {
		return err
	}
	ctx := cCtx.Context

	emails, err := gatherEmails(cCtx, t.log)
	if err != nil {
		return err
	}

	firstName := cCtx.String(flagFirstName.Name)
	lastName := cCtx.String(flagLastName.Name)
	entries := make([]invitations.Entry, 0, len(emails))
	for _, email := range emails {
		entries = append(entries, invitations.Entry{
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
		})
	}

	provisioner := appstore.NewProvisioner(t.client, t.log)
	orchestrator := invitations.NewOrchestrator(provisioner, cCtx.Duration(flagItemDelay.Name), t.log)

	result, runErr := orchestrator.Run(ctx, entries, t.app.ID)
	if result == nil {
		return runErr
	}

	checker := invitations.NewStatusChecker(t.client, t.log)
	build, buildErr := checker.CheckBuild(ctx, t.app.ID)
	if buildErr != nil {
		t.log.Warn("Could not fetch build status for report", "err", buildErr)
	}

	reporter := invitations.NewReporter(t.log)
	statuses := invitations.StatusesFromOutcomes(result.Outcomes, time.Now())
	report := reporter.Generate(build, statuses, &result.Progress)

	if err := emitReport(ctx, cCtx, t.log, report); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if failed := result.Progress.Failed; failed > 0 {
		return fmt.Errorf("%d of %d invitations failed", failed, result.Progress.Total)
	}
	return nil
}

func runDryRun(cCtx *cli.Context, logger *slog.Logger) error {
	emails, err := gatherEmails(cCtx, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Dry run: would invite %d testers to bundle %s\n",
		len(emails), cCtx.String(flags.BundleIDFlag.Name))
	for _, email := range emails {
		fmt.Printf("  %s\n", email)
	}
	return nil
}

func runCheckBuild(cCtx *cli.Context) error {
	t, err := newTool(cCtx)
	if err != nil {
		return err
	}
	ctx := cCtx.Context

	checker := invitations.NewStatusChecker(t.client, t.log)

	var build *invitations.BuildStatus
	if cCtx.Bool(flagWait.Name) {
		build, err = checker.WaitForBuildReady(ctx,
			t.app.ID,
			cCtx.Duration(flagWaitTimeout.Name),
			cCtx.Duration(flagPollInterval.Name))
	} else {
		build, err = checker.CheckBuild(ctx, t.app.ID)
	}
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(build, "", "  ")
	if err != nil {
		return fmt.Errorf("could not serialize build status: %w", err)
	}
	fmt.Println(string(encoded))

	if !build.IsReady {
		return fmt.Errorf("build %s is not ready: %s", build.Build.Version, build.Build.ProcessingState)
	}
	return nil
}

func runStatus(cCtx *cli.Context) error {
	t, err := newTool(cCtx)
	if err != nil {
		return err
	}
	ctx := cCtx.Context

	emails, err := gatherEmails(cCtx, t.log)
	if err != nil {
		return err
	}

	checker := invitations.NewStatusChecker(t.client, t.log)
	statuses := checker.CheckInvitations(ctx, emails, t.app.ID)

	build, buildErr := checker.CheckBuild(ctx, t.app.ID)
	if buildErr != nil {
		t.log.Warn("Could not fetch build status for report", "err", buildErr)
	}

	reporter := invitations.NewReporter(t.log)
	report := reporter.Generate(build, statuses, nil)

	return emitReport(ctx, cCtx, t.log, report)
}

// emitReport prints the human-readable report and, when --report-out sinks
// are configured, stores the JSON form to every sink.
func emitReport(ctx context.Context, cCtx *cli.Context, logger *slog.Logger, report *invitations.Report) error {
	if err := report.WriteText(os.Stdout); err != nil {
		return err
	}

	locations := cCtx.StringSlice(flagReportOut.Name)
	if len(locations) == 0 {
		return nil
	}

	sinkLocations := make([]interfaces.SinkLocation, 0, len(locations))
	for _, location := range locations {
		sinkLocations = append(sinkLocations, interfaces.SinkLocation(location))
	}

	factory := storage.NewSinkFactory(logger)
	sink, err := factory.CreateMultiSink(sinkLocations)
	if err != nil {
		return err
	}

	data, err := report.JSON()
	if err != nil {
		return fmt.Errorf("could not serialize report: %w", err)
	}

	name := fmt.Sprintf("invitation_report_%s.json", report.Metadata.GeneratedAt.Format("20060102_150405"))
	location, err := sink.Store(ctx, name, data)
	if err != nil {
		return fmt.Errorf("could not store report: %w", err)
	}

	logger.Info("Stored invitation report",
		slog.String("name", name),
		slog.String("location", location))
	return nil
}
