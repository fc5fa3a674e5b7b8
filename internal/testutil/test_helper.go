package testutil

import (
	"testing"
	"time"

	"github.com/jtk5aw/random-image-site/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// Date parses a calendar date, failing the test on bad input.
func (h *TestHelper) Date(s string) time.Time {
	h.t.Helper()
	date, err := models.ParseDate(s)
	if err != nil {
		h.t.Fatalf("bad test date %q: %v", s, err)
	}
	return date
}

// CreateImageRecord creates an image record with default values.
func (h *TestHelper) CreateImageRecord(group, date, objectKey string) *models.ImageRecord {
	if group == "" {
		group = "discord"
	}
	if objectKey == "" {
		objectKey = "discord/discord_test.jpg"
	}

	return &models.ImageRecord{
		Group:               group,
		Date:                date,
		ObjectKey:           objectKey,
		GetRecents:          false,
		DaysUntilGetRecents: 3,
	}
}

// PoolKeys builds object keys in the pool layout for the given names.
func (h *TestHelper) PoolKeys(group string, names ...string) []string {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, group+"/"+group+"_"+name+".jpg")
	}
	return keys
}
