package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.cl", true},
		{"no-at-sign.example.com", false},
		{"user@", false},
		{"@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidateEmail(tt.email), tt.email)
	}
}

func TestValidateRUT(t *testing.T) {
	tests := []struct {
		rut   string
		valid bool
	}{
		{"12345678-5", true},
		{"12.345.678-5", true},
		{"11111111-1", true},
		{"7775777-5", true},
		{"20347878-K", true},
		{"20347878-k", true},
		{"7775777-K", false},
		{"12345678-9", false},
		{"12345678", false},
		{"abc", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidateRUT(tt.rut), tt.rut)
	}
}

func TestFormatRUT(t *testing.T) {
	assert.Equal(t, "12345678-5", FormatRUT("12.345.678-5"))
	assert.Equal(t, "20347878-K", FormatRUT("20347878-k"))
	assert.Equal(t, "12345678-5", FormatRUT("12345678-5"))
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+56912345678", "+56912345678"},
		{"56912345678", "+56912345678"},
		{"912345678", "+56912345678"},
		{"9 1234 5678", "+56912345678"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPhone(tt.in), tt.in)
	}
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "María José Pérez", FormatName("maría josé pérez"))
	assert.Equal(t, "Ana-Luisa Soto", FormatName("ana-luisa SOTO"))
}
