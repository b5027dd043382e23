package invitations

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

func sampleStatuses(checkedAt time.Time) []InvitationStatus {
	return []InvitationStatus{
		{Email: "a@example.com", TesterID: "t-1", Status: interfaces.OutcomeInvited, LastChecked: checkedAt},
		{Email: "b@example.com", TesterID: "t-2", Status: interfaces.OutcomeInvited, LastChecked: checkedAt},
		{Email: "c@example.com", TesterID: "t-3", Status: interfaces.OutcomePendingBuild, Detail: "build 2.0.0 is PROCESSING", LastChecked: checkedAt},
		{Email: "d@example.com", Status: interfaces.OutcomeNotFound, LastChecked: checkedAt},
		{Email: "e@example.com", TesterID: "t-5", Status: interfaces.OutcomeExistsNotInvited, Detail: "tester exists but is not associated to the app", LastChecked: checkedAt},
		{Email: "f@example.com", Status: interfaces.OutcomeError, Detail: "lookup tester for f@example.com: boom", LastChecked: checkedAt},
	}
}

func TestReporterGenerate(t *testing.T) {
	reporter := NewReporter(discardLogger())
	generated := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	reporter.now = func() time.Time { return generated }

	checked := generated.Add(-time.Minute)
	build := &BuildStatus{
		Build: interfaces.Build{
			ID:              "build-1",
			Version:         "2.0.0",
			BuildNumber:     "77",
			ProcessingState: interfaces.BuildReadyForBetaTesting,
			UploadedDate:    generated.Add(-90 * time.Minute),
		},
		IsReady:        true,
		ProcessingTime: 90 * time.Minute,
		LastChecked:    checked,
	}

	report := reporter.Generate(build, sampleStatuses(checked), nil)

	assert.Equal(t, generated, report.Metadata.GeneratedAt)
	assert.Equal(t, ReportVersion, report.Metadata.ReportVersion)

	require.NotNil(t, report.Build)
	assert.Equal(t, "2.0.0", report.Build.Version)
	assert.True(t, report.Build.IsReady)
	assert.Equal(t, "1h 30m 0s", report.Build.ProcessingTime)

	require.NotNil(t, report.Summary)
	assert.Equal(t, 6, report.Summary.TotalChecked)
	assert.Equal(t, 2, report.Summary.SuccessfullyInvited)
	assert.Equal(t, 1, report.Summary.PendingBuild)
	assert.Equal(t, 1, report.Summary.NotInvited)
	assert.Equal(t, 1, report.Summary.ExistsNotInvited)
	assert.Equal(t, 1, report.Summary.Errors)
	assert.InDelta(t, 33.33, report.Summary.SuccessRate, 0.01)

	require.NotNil(t, report.Details)
	assert.Len(t, report.Details.Invited, 2)
	assert.Len(t, report.Details.PendingBuild, 1)
	assert.Len(t, report.Details.NotInvited, 1)
	assert.Len(t, report.Details.ExistsNotInvited, 1)
	assert.Len(t, report.Details.Errors, 1)
	assert.Equal(t, interfaces.Email("f@example.com"), report.Details.Errors[0].Email)

	// One recommendation per non-empty category needing action
	assert.Len(t, report.Recommendations, 4)
}

func TestReportJSONRoundTrip(t *testing.T) {
	reporter := NewReporter(discardLogger())
	checked := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	report := reporter.Generate(nil, sampleStatuses(checked), &Snapshot{
		Total: 6, Processed: 6, Succeeded: 2, Warned: 2, Failed: 2,
		Started: checked,
	})

	data, err := report.JSON()
	require.NoError(t, err)

	// Stable field names in the serialized form
	text := string(data)
	assert.Contains(t, text, `"report_metadata"`)
	assert.Contains(t, text, `"invitation_summary"`)
	assert.Contains(t, text, `"detailed_results"`)
	assert.Contains(t, text, `"success_rate"`)
	assert.Contains(t, text, `"exists_but_not_invited"`)

	parsed, err := ParseReport(data)
	require.NoError(t, err)

	assert.Equal(t, report.Summary, parsed.Summary)
	assert.Equal(t, report.Batch, parsed.Batch)
	assert.Equal(t, len(report.Details.Invited), len(parsed.Details.Invited))
	assert.Equal(t, report.Recommendations, parsed.Recommendations)
}

func TestParseReportRejectsGarbage(t *testing.T) {
	_, err := ParseReport([]byte("{not json"))
	require.Error(t, err)
}

func TestReportWriteText(t *testing.T) {
	reporter := NewReporter(discardLogger())
	checked := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	build := &BuildStatus{
		Build: interfaces.Build{
			Version:         "2.0.0",
			BuildNumber:     "77",
			ProcessingState: interfaces.BuildProcessing,
		},
		IsReady:     false,
		LastChecked: checked,
	}
	report := reporter.Generate(build, sampleStatuses(checked), nil)

	var sb strings.Builder
	require.NoError(t, report.WriteText(&sb))
	text := sb.String()

	assert.Contains(t, text, "TESTFLIGHT INVITATION REPORT")
	assert.Contains(t, text, "BUILD INFORMATION")
	assert.Contains(t, text, "2.0.0 (77)")
	assert.Contains(t, text, "INVITATION SUMMARY")
	assert.Contains(t, text, "Total Checked: 6")
	assert.Contains(t, text, "FAILED ENTRIES")
	assert.Contains(t, text, "f@example.com")
	assert.Contains(t, text, "RECOMMENDATIONS")
}

func TestStatusesFromOutcomes(t *testing.T) {
	checked := time.Now()
	outcomes := []interfaces.InvitationOutcome{
		{Email: "a@example.com", TesterID: "t-1", Status: interfaces.OutcomeInvited},
		{Email: "b@example.com", Status: interfaces.OutcomeError, Detail: "boom"},
	}

	statuses := StatusesFromOutcomes(outcomes, checked)
	require.Len(t, statuses, 2)
	assert.Equal(t, interfaces.Email("a@example.com"), statuses[0].Email)
	assert.Equal(t, "t-1", statuses[0].TesterID)
	assert.Equal(t, interfaces.OutcomeInvited, statuses[0].Status)
	assert.Equal(t, checked, statuses[0].LastChecked)
	assert.Equal(t, "boom", statuses[1].Detail)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "2m 5s", formatDuration(125*time.Second))
	assert.Equal(t, "1h 30m 0s", formatDuration(90*time.Minute))
	assert.Equal(t, "0s", formatDuration(-time.Second))
}
