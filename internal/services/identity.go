package services

import "strings"

// NormalizeIdentity derives the deduplication key for a submission. A
// non-empty email wins and is case-folded; otherwise the display name is
// used as typed (trimmed, case preserved). Both empty is a hard failure:
// neither the status oracle nor the coordinator can proceed without an
// identity.
func NormalizeIdentity(email, name string) (string, error) {
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		return e, nil
	}
	if n := strings.TrimSpace(name); n != "" {
		return n, nil
	}
	return "", ErrMissingIdentity
}
