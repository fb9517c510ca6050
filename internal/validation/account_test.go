package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Sup3r$ecretPass", ""},
		{"too short", "Ab1!", "at least 12"},
		{"too long", "Aa1!" + strings.Repeat("x", 130), "must not exceed"},
		{"no upper", "sup3r$ecretpass", "uppercase"},
		{"no lower", "SUP3R$ECRETPASS", "lowercase"},
		{"no digit", "Super$ecretPass", "digit"},
		{"no special", "Sup3rSecretPass", "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateUsername("chai_aur-code"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 31)))
	assert.Error(t, ValidateUsername("Upper"))
	assert.Error(t, ValidateUsername("has space"))
	assert.Error(t, ValidateUsername("_edge"))
	assert.Error(t, ValidateUsername("edge-"))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hitesh", NormalizeUsername("  Hitesh "))
	assert.Equal(t, "a@b.io", NormalizeEmail("A@B.io "))
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateEmail("viewer@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.io"))
}

func TestValidateFullName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateFullName("Ada Lovelace"))
	assert.Error(t, ValidateFullName("   "))
	assert.Error(t, ValidateFullName(strings.Repeat("n", 101)))
}
