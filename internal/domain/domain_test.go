package domain

import (
	"testing"

	"SiteJSON_Frontend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare domain", "example.com", "example.com", false},
		{"uppercase scheme and www", "HTTPS://WWW.Example.com/path?x=1", "example.com", false},
		{"http scheme", "http://acme.io", "acme.io", false},
		{"leading www only", "www.acme.io", "acme.io", false},
		{"path stripped", "acme.io/pricing/enterprise", "acme.io", false},
		{"surrounding whitespace", "  spam.example  ", "spam.example", false},
		{"subdomain preserved", "app.dashboard.example.com", "app.dashboard.example.com", false},
		{"query after slash", "example.com/?q=1", "example.com", false},
		{"no dot", "not a domain", "", true},
		{"empty", "", "", true},
		{"scheme only", "https://", "", true},
		{"www only", "www.", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, models.ErrInvalidDomain)
				assert.Empty(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://WWW.Example.com/path?x=1",
		"acme.io",
		"  http://spam.example/x  ",
		"sub.domain.example.org",
	}

	for _, input := range inputs {
		once, err := Normalize(input)
		require.NoError(t, err, "input %q", input)

		twice, err := Normalize(once)
		require.NoError(t, err, "normalized %q", once)
		assert.Equal(t, once, twice, "Normalize must be idempotent for %q", input)
	}
}
