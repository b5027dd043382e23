package invitations

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// ReportVersion identifies the report schema.
const ReportVersion = "1.0.0"

// ReportMetadata describes when and by what the report was generated.
type ReportMetadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	ReportVersion string    `json:"report_version"`
	GeneratedBy   string    `json:"generated_by"`
}

// BuildInformation is the report's build block.
type BuildInformation struct {
	BuildID         string    `json:"build_id"`
	Version         string    `json:"version"`
	BuildNumber     string    `json:"build_number"`
	ProcessingState string    `json:"processing_state"`
	UploadedDate    time.Time `json:"uploaded_date"`
	ProcessingTime  string    `json:"processing_time,omitempty"`
	IsReady         bool      `json:"is_ready"`
	LastChecked     time.Time `json:"last_checked"`
}

// InvitationSummary is the report's aggregate block.
type InvitationSummary struct {
	TotalChecked        int     `json:"total_checked"`
	SuccessfullyInvited int     `json:"successfully_invited"`
	PendingBuild        int     `json:"pending_build"`
	NotInvited          int     `json:"not_invited"`
	ExistsNotInvited    int     `json:"exists_but_not_invited"`
	Errors              int     `json:"errors"`
	SuccessRate         float64 `json:"success_rate"`
}

// TesterDetail identifies one tester in a detailed result list.
type TesterDetail struct {
	Email       interfaces.Email `json:"email"`
	TesterID    string           `json:"tester_id,omitempty"`
	Detail      string           `json:"detail,omitempty"`
	LastChecked time.Time        `json:"last_checked"`
}

// DetailedResults holds the per-category tester lists.
type DetailedResults struct {
	Invited          []TesterDetail `json:"invited_testers"`
	PendingBuild     []TesterDetail `json:"pending_build_testers"`
	NotInvited       []TesterDetail `json:"not_invited_testers"`
	ExistsNotInvited []TesterDetail `json:"exists_not_invited_testers"`
	Errors           []TesterDetail `json:"error_testers"`
}

// Report is the structured output of an invitation run or status check.
// Field names are stable; the JSON form round-trips losslessly.
type Report struct {
	Metadata        ReportMetadata     `json:"report_metadata"`
	Build           *BuildInformation  `json:"build_information,omitempty"`
	Summary         *InvitationSummary `json:"invitation_summary,omitempty"`
	Details         *DetailedResults   `json:"detailed_results,omitempty"`
	Batch           *Snapshot          `json:"batch_progress,omitempty"`
	Recommendations []string           `json:"recommendations"`
}

// Reporter generates reports from outcomes and status checks.
type Reporter struct {
	log *slog.Logger
	now func() time.Time
}

// NewReporter creates a reporter.
func NewReporter(log *slog.Logger) *Reporter {
	return &Reporter{log: log, now: time.Now}
}

// StatusesFromOutcomes converts batch outcomes into invitation statuses for
// reporting. Outcome order is preserved.
func StatusesFromOutcomes(outcomes []interfaces.InvitationOutcome, checkedAt time.Time) []InvitationStatus {
	statuses := make([]InvitationStatus, 0, len(outcomes))
	for _, outcome := range outcomes {
		statuses = append(statuses, InvitationStatus{
			Email:       outcome.Email,
			TesterID:    outcome.TesterID,
			Status:      outcome.Status,
			Detail:      outcome.Detail,
			LastChecked: checkedAt,
		})
	}
	return statuses
}

// Generate builds a report from an optional build status, per-tester
// invitation statuses, and an optional batch progress snapshot.
func (r *Reporter) Generate(build *BuildStatus, statuses []InvitationStatus, batch *Snapshot) *Report {
	report := &Report{
		Metadata: ReportMetadata{
			GeneratedAt:   r.now(),
			ReportVersion: ReportVersion,
			GeneratedBy:   "testflight",
		},
		Batch:           batch,
		Recommendations: []string{},
	}

	if build != nil {
		report.Build = &BuildInformation{
			BuildID:         build.Build.ID,
			Version:         build.Build.Version,
			BuildNumber:     build.Build.BuildNumber,
			ProcessingState: string(build.Build.ProcessingState),
			UploadedDate:    build.Build.UploadedDate,
			ProcessingTime:  formatDuration(build.ProcessingTime),
			IsReady:         build.IsReady,
			LastChecked:     build.LastChecked,
		}
	}

	if len(statuses) > 0 {
		details := &DetailedResults{
			Invited:          []TesterDetail{},
			PendingBuild:     []TesterDetail{},
			NotInvited:       []TesterDetail{},
			ExistsNotInvited: []TesterDetail{},
			Errors:           []TesterDetail{},
		}
		for _, status := range statuses {
			detail := TesterDetail{
				Email:       status.Email,
				TesterID:    status.TesterID,
				Detail:      status.Detail,
				LastChecked: status.LastChecked,
			}
			switch status.Status {
			case interfaces.OutcomeInvited, interfaces.OutcomeAlreadyAssociated:
				details.Invited = append(details.Invited, detail)
			case interfaces.OutcomePendingBuild:
				details.PendingBuild = append(details.PendingBuild, detail)
			case interfaces.OutcomeNotFound:
				details.NotInvited = append(details.NotInvited, detail)
			case interfaces.OutcomeExistsNotInvited:
				details.ExistsNotInvited = append(details.ExistsNotInvited, detail)
			default:
				details.Errors = append(details.Errors, detail)
			}
		}

		summary := &InvitationSummary{
			TotalChecked:        len(statuses),
			SuccessfullyInvited: len(details.Invited),
			PendingBuild:        len(details.PendingBuild),
			NotInvited:          len(details.NotInvited),
			ExistsNotInvited:    len(details.ExistsNotInvited),
			Errors:              len(details.Errors),
			SuccessRate:         float64(len(details.Invited)) / float64(len(statuses)) * 100,
		}

		report.Summary = summary
		report.Details = details
		report.Recommendations = recommendations(summary)
	}

	r.log.Info("Generated invitation report",
		slog.Int("statuses", len(statuses)),
		slog.Int("recommendations", len(report.Recommendations)))
	return report
}

// recommendations derives the actionable follow-ups from the summary.
func recommendations(summary *InvitationSummary) []string {
	recs := []string{}
	if summary.Errors > 0 {
		recs = append(recs, fmt.Sprintf("Retry %d failed invitations", summary.Errors))
	}
	if summary.ExistsNotInvited > 0 {
		recs = append(recs, fmt.Sprintf("Add %d existing testers to the app", summary.ExistsNotInvited))
	}
	if summary.PendingBuild > 0 {
		recs = append(recs, fmt.Sprintf("%d testers are associated but waiting for the build to finish processing", summary.PendingBuild))
	}
	if summary.NotInvited > 0 {
		recs = append(recs, fmt.Sprintf("Send invitations to %d new testers", summary.NotInvited))
	}
	return recs
}

// JSON serializes the report in its machine-readable form.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ParseReport decodes a report from its JSON form.
func ParseReport(data []byte) (*Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// WriteText renders the human-readable form of the report.
func (r *Report) WriteText(w io.Writer) error {
	var err error
	write := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	write("TESTFLIGHT INVITATION REPORT\n")
	write("==================================================\n\n")
	write("Generated: %s\n", r.Metadata.GeneratedAt.Format(time.RFC3339))
	write("Version: %s\n\n", r.Metadata.ReportVersion)

	if r.Build != nil {
		write("BUILD INFORMATION\n")
		write("--------------------\n")
		write("Version: %s (%s)\n", r.Build.Version, r.Build.BuildNumber)
		write("Status: %s\n", r.Build.ProcessingState)
		write("Ready: %t\n", r.Build.IsReady)
		if r.Build.ProcessingTime != "" {
			write("Processing Time: %s\n", r.Build.ProcessingTime)
		}
		write("\n")
	}

	if r.Summary != nil {
		write("INVITATION SUMMARY\n")
		write("--------------------\n")
		write("Total Checked: %d\n", r.Summary.TotalChecked)
		write("Successfully Invited: %d\n", r.Summary.SuccessfullyInvited)
		write("Pending Build: %d\n", r.Summary.PendingBuild)
		write("Not Invited: %d\n", r.Summary.NotInvited)
		write("Exists Not Invited: %d\n", r.Summary.ExistsNotInvited)
		write("Errors: %d\n", r.Summary.Errors)
		write("Success Rate: %.1f%%\n\n", r.Summary.SuccessRate)
	}

	if r.Details != nil && len(r.Details.Errors) > 0 {
		write("FAILED ENTRIES\n")
		write("--------------------\n")
		for _, tester := range r.Details.Errors {
			write("- %s: %s\n", tester.Email, tester.Detail)
		}
		write("\n")
	}

	if len(r.Recommendations) > 0 {
		write("RECOMMENDATIONS\n")
		write("--------------------\n")
		for _, rec := range r.Recommendations {
			write("- %s\n", rec)
		}
	}
	return err
}

// formatDuration renders a duration as hours/minutes/seconds.
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
