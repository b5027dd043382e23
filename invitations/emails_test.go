package invitations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

func TestReadEmailList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.txt")
	content := `# beta wave 3
alice@example.com

bob@example.com
# inactive
not-an-email-line
carol@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	emails, err := ReadEmailList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "carol@example.com"}, emails)
}

func TestReadEmailListMissingFile(t *testing.T) {
	_, err := ReadEmailList(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestValidateEmails(t *testing.T) {
	result := ValidateEmails([]string{
		"  Alice@Example.COM ",
		"bob@example.com",
		"broken@@example.com",
		"alice@example.com", // duplicate after normalization
		"",
		"carol@example.com",
	})

	assert.Equal(t, []interfaces.Email{
		"alice@example.com",
		"bob@example.com",
		"carol@example.com",
	}, result.Valid)
	assert.Equal(t, []string{"broken@@example.com", ""}, result.Invalid)
}

func TestValidateEmailsPreservesFirstOccurrenceOrder(t *testing.T) {
	result := ValidateEmails([]string{
		"z@example.com",
		"a@example.com",
		"Z@example.com",
	})
	assert.Equal(t, []interfaces.Email{"z@example.com", "a@example.com"}, result.Valid)
}
