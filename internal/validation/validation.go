package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Group names double as S3 prefixes and table key segments, so keep them to a
// safe charset and reject the "#" key separator outright.
var groupRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

func NormalizeGroup(group string) string {
	return strings.ToLower(strings.TrimSpace(group))
}

func ValidateGroup(group string) bool {
	return groupRe.MatchString(NormalizeGroup(group))
}

func ValidateUserID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// ValidateObjectKey guards favorite-image writes: non-empty, bounded, and no
// path traversal.
func ValidateObjectKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > 1024 {
		return false
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return false
	}
	return true
}
