package deployservice

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidDomain is reported for names that are not a plain DNS hostname.
var ErrInvalidDomain = errors.New("invalid domain name")

// hostnamePattern accepts dot-separated DNS labels of letters, digits and
// inner hyphens. Anything else, including "..", slashes and NUL bytes, is
// rejected before the domain is used as a path segment.
var hostnamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)

// NormalizeDomain trims surrounding space and lower-cases the name.
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// ValidateDomain reports ErrInvalidDomain unless domain is a plain hostname.
func ValidateDomain(domain string) error {
	if len(domain) == 0 || len(domain) > 253 {
		return ErrInvalidDomain
	}
	if !hostnamePattern.MatchString(domain) {
		return ErrInvalidDomain
	}
	return nil
}
