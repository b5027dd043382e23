package interfaces

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Email is a tester email address. It is the unique key identifying a
// tester across the remote system.
type Email string

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NewEmail validates and normalizes an email address.
func NewEmail(raw string) (Email, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return Email(""), errors.New("empty email address")
	}
	if !emailRegex.MatchString(clean) {
		return Email(""), fmt.Errorf("invalid email address: %s", clean)
	}
	return Email(strings.ToLower(clean)), nil
}

// String returns the address as a string.
func (e Email) String() string {
	return string(e)
}

// Validate checks the address format.
func (e Email) Validate() error {
	_, err := NewEmail(string(e))
	return err
}

// BundleID is an application bundle identifier, e.g. "com.leavn.app".
type BundleID string

// String returns the bundle identifier as a string.
func (b BundleID) String() string {
	return string(b)
}

// ProcessingState is the remote system's lifecycle label for an uploaded
// build. It is externally owned; the engine only observes it.
type ProcessingState string

// Known build processing states.
const (
	BuildUploading           ProcessingState = "UPLOADING"
	BuildProcessing          ProcessingState = "PROCESSING"
	BuildProcessingComplete  ProcessingState = "PROCESSING_COMPLETE"
	BuildReadyForBetaTesting ProcessingState = "READY_FOR_BETA_TESTING"
	BuildFailed              ProcessingState = "FAILED"
	BuildInvalid             ProcessingState = "INVALID"
)

// Ready reports whether a build in this state can receive testers.
func (s ProcessingState) Ready() bool {
	return s == BuildProcessingComplete || s == BuildReadyForBetaTesting
}

// App is a remote application resource resolved from a bundle identifier.
type App struct {
	ID       string
	BundleID BundleID
	Name     string
}

// Build is a remote build resource.
type Build struct {
	ID              string
	Version         string
	BuildNumber     string
	ProcessingState ProcessingState
	UploadedDate    time.Time
}

// Tester is a remote beta tester record. ID is empty until the remote
// system assigns one; afterwards it is immutable.
type Tester struct {
	ID        string
	Email     Email
	FirstName string
	LastName  string
}

// OutcomeStatus classifies the terminal result of provisioning one tester.
type OutcomeStatus string

const (
	// OutcomeInvited means app and build association both succeeded or
	// already existed.
	OutcomeInvited OutcomeStatus = "invited"

	// OutcomePendingBuild means the tester is associated to the app but the
	// latest build is not yet ready to receive testers. Incomplete, not
	// failed.
	OutcomePendingBuild OutcomeStatus = "pending_build"

	// OutcomeAlreadyAssociated means the tester already existed and was
	// already associated to the app. An idempotent success.
	OutcomeAlreadyAssociated OutcomeStatus = "already_associated"

	// OutcomeExistsNotInvited means the tester account exists but has no
	// association with the app yet. Reported by status checks, never by
	// provisioning.
	OutcomeExistsNotInvited OutcomeStatus = "exists_not_invited"

	// OutcomeNotFound means a required remote resource was missing.
	OutcomeNotFound OutcomeStatus = "not_found"

	// OutcomeError means a non-idempotent failure at the create or
	// associate steps.
	OutcomeError OutcomeStatus = "error"
)

// InvitationOutcome is the immutable per-tester result of one batch run.
type InvitationOutcome struct {
	Email        Email         `json:"email"`
	TesterID     string        `json:"tester_id,omitempty"`
	Status       OutcomeStatus `json:"status"`
	BuildID      string        `json:"build_id,omitempty"`
	BuildVersion string        `json:"build_version,omitempty"`
	Detail       string        `json:"detail,omitempty"`
}
