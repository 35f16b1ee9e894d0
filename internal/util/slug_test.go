package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Laptop", "laptop"},
		{"Gaming  Laptop 2024", "gaming-laptop-2024"},
		{"  spaced out  ", "spaced-out"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestCalculate(t *testing.T) {
	from, limit := Calculate(0, 0)
	assert.Equal(t, 0, from)
	assert.Equal(t, DefaultPageSize, limit)

	from, limit = Calculate(3, 20)
	assert.Equal(t, 40, from)
	assert.Equal(t, 20, limit)

	_, limit = Calculate(1, 1000)
	assert.Equal(t, DefaultPageSize, limit)
}
