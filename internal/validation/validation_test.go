package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateGroup(t *testing.T) {
	tests := []struct {
		group string
		want  bool
	}{
		{"discord", true},
		{"Discord", true}, // normalized to lowercase
		{"  discord  ", true},
		{"group-2_test", true},
		{"a", true},
		{"", false},
		{"-leading", false},
		{"has space", false},
		{"group#date", false},
		{strings.Repeat("a", 64), true},
		{strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		if got := ValidateGroup(tt.group); got != tt.want {
			t.Errorf("ValidateGroup(%q) = %v, want %v", tt.group, got, tt.want)
		}
	}
}

func TestNormalizeGroup(t *testing.T) {
	if got := NormalizeGroup("  Discord "); got != "discord" {
		t.Errorf("NormalizeGroup = %q, want %q", got, "discord")
	}
}

func TestValidateUserID(t *testing.T) {
	if !ValidateUserID(uuid.NewString()) {
		t.Error("a fresh uuid should validate")
	}
	for _, id := range []string{"", "not-a-uuid", "12345"} {
		if ValidateUserID(id) {
			t.Errorf("ValidateUserID(%q) should be false", id)
		}
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"discord/discord_abc.jpg", true},
		{"", false},
		{"   ", false},
		{"/absolute.jpg", false},
		{"discord/../secrets", false},
		{strings.Repeat("a", 1025), false},
	}

	for _, tt := range tests {
		if got := ValidateObjectKey(tt.key); got != tt.want {
			t.Errorf("ValidateObjectKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
