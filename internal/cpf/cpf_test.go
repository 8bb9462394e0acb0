package cpf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"bare digits", "12345678901", true},
		{"formatted", "123.456.789-01", true},
		{"mixed separators", "123 456 789 01", true},
		{"checksum is not verified", "00000000000", true},
		{"too short", "1234567890", false},
		{"too long", "123456789012", false},
		{"empty", "", false},
		{"letters only", "abcdefghijk", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "12345678901", Normalize("123.456.789-01"))
	assert.Equal(t, "12345678901", Normalize("12345678901"))
	assert.Equal(t, "", Normalize("abc-"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "123.456.789-01", Format("12345678901"))
	assert.Equal(t, "123.456.789-01", Format("123.456.789-01"))

	// Строки неверной длины возвращаются без изменений
	assert.Equal(t, "1234567890", Format("1234567890"))
	assert.Equal(t, "", Format(""))
}
