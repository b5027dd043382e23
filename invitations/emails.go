package invitations

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// ReadEmailList reads email addresses from a file, one per line. Blank
// lines and comments are skipped; lines without an '@' are rejected.
func ReadEmailList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open email list: %w", err)
	}
	defer f.Close()

	var emails []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "@") {
			continue
		}
		emails = append(emails, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read email list: %w", err)
	}
	return emails, nil
}

// ValidationResult splits candidate addresses into valid (deduplicated,
// normalized) and invalid lists.
type ValidationResult struct {
	Valid   []interfaces.Email `json:"valid"`
	Invalid []string           `json:"invalid"`
}

// ValidateEmails performs the dry-run validation pass: format check,
// normalization, and duplicate removal. Input order of first occurrence is
// preserved.
func ValidateEmails(raw []string) ValidationResult {
	result := ValidationResult{}
	seen := make(map[interfaces.Email]bool)

	for _, candidate := range raw {
		email, err := interfaces.NewEmail(candidate)
		if err != nil {
			result.Invalid = append(result.Invalid, strings.TrimSpace(candidate))
			continue
		}
		if seen[email] {
			continue
		}
		seen[email] = true
		result.Valid = append(result.Valid, email)
	}
	return result
}
