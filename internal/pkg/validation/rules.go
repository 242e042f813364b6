package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation rule patterns
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Session date and time as sent by the clients
	DatePattern = `^\d{4}-\d{2}-\d{2}$`
	TimePattern = `^\d{2}:\d{2}$`

	PasswordMinLength = 8
	// bcrypt only accepts up to 72 bytes
	PasswordMaxBytes = 72

	NameMinLength = 1
	NameMaxLength = 100

	MessageMaxLength     = 2000
	DescriptionMaxLength = 2000
)

// AcademicSuffixes are the email endings accepted without a whitelist entry.
var AcademicSuffixes = []string{
	".edu", ".ac.uk", ".edu.au", ".ac.ca", ".edu.br",
	".de", ".fr", ".jp", ".cn", ".in", ".ac.nz",
}

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
	Date  *regexp.Regexp
	Time  *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	Date:  regexp.MustCompile(DatePattern),
	Time:  regexp.MustCompile(TimePattern),
}

// IsAcademicEmail reports whether email is well formed and belongs to an
// academic suffix or to one of the extra institutional domains.
func IsAcademicEmail(email string, extraDomains []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if !CompiledPatterns.Email.MatchString(email) {
		return false
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	for _, suffix := range AcademicSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return true
		}
	}

	for _, allowed := range extraDomains {
		allowed = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(allowed)), "@")
		if allowed == "" {
			continue
		}
		if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
			return true
		}
	}

	return false
}

// StringValidation is a small builder for string checks. Lengths count runes.
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	n := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && n < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}
