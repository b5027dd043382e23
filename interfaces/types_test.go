package interfaces

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	email, err := NewEmail("  Tester.One+beta@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, Email("tester.one+beta@example.com"), email)

	for _, bad := range []string{"", "   ", "plainstring", "missing@domain", "@example.com", "two@@example.com"} {
		_, err := NewEmail(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestProcessingStateReady(t *testing.T) {
	assert.True(t, BuildProcessingComplete.Ready())
	assert.True(t, BuildReadyForBetaTesting.Ready())

	for _, state := range []ProcessingState{BuildUploading, BuildProcessing, BuildFailed, BuildInvalid, "SOMETHING_NEW"} {
		assert.False(t, state.Ready(), "state %s must not be ready", state)
	}
}

func TestInvitationOutcomeJSONFields(t *testing.T) {
	outcome := InvitationOutcome{
		Email:        "a@example.com",
		TesterID:     "t-1",
		Status:       OutcomeInvited,
		BuildID:      "build-1",
		BuildVersion: "2.0.0",
	}

	data, err := json.Marshal(outcome)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "a@example.com", fields["email"])
	assert.Equal(t, "invited", fields["status"])
	assert.Equal(t, "build-1", fields["build_id"])
}
