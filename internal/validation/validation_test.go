package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Simple", "Acme", false},
		{"With Spaces", "Acme Corp", false},
		{"Unicode", "Café Løvens", false},
		{"Blank", "   ", true},
		{"Too Long", strings.Repeat("a", MaxNameLength+1), true},
		{"Max Length", strings.Repeat("a", MaxNameLength), false},
		{"Control Char", "Ac\x00me", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid", "a@x.com", false},
		{"Plus Tag", "ops+alerts@acme.io", false},
		{"Empty", "", true},
		{"No At", "acme.io", true},
		{"No TLD", "a@x", true},
		{"Too Long", strings.Repeat("a", 250) + "@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidatePassword("p"))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", MaxPasswordBytes)))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword(strings.Repeat("x", MaxPasswordBytes+1)))
}

func TestValidateMediaURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Https", "https://cdn.example.com/a.png", false},
		{"Http", "http://cdn.example.com/a.png", false},
		{"Empty", "", true},
		{"Relative", "/a.png", true},
		{"Other Scheme", "ftp://cdn.example.com/a.png", true},
		{"Too Long", "https://cdn.example.com/" + strings.Repeat("a", MaxMediaURLLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateDescription("hello"))
	assert.Error(t, ValidateDescription(" \n\t"))
	assert.Error(t, ValidateDescription(strings.Repeat("é", MaxDescriptionLength+1)))
	assert.NoError(t, ValidateDescription(strings.Repeat("é", MaxDescriptionLength)))
}
