package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"relative path", "/tasks", "/tasks"},
		{"relative path with query", "/tasks?sort=progress", "/tasks?sort=progress"},
		{"empty falls back", "", "/auth/success"},
		{"absolute url rejected", "https://evil.example/phish", "/auth/success"},
		{"scheme-relative rejected", "//evil.example/phish", "/auth/success"},
		{"bare host rejected", "evil.example", "/auth/success"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, safeOrigin(tc.origin))
		})
	}
}
