package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ClampPageSize(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"negative falls back to default", -5, DefaultPageSize},
		{"zero falls back to default", 0, DefaultPageSize},
		{"in range is kept", 42, 42},
		{"max is kept", MaxPageSize, MaxPageSize},
		{"above max is capped", MaxPageSize + 1, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampPageSize(tt.in))
		})
	}
}

func Test_ClampPageSizeMax(t *testing.T) {
	assert.Equal(t, 5, ClampPageSizeMax(7, 5))
	assert.Equal(t, 3, ClampPageSizeMax(3, 5))
	assert.Equal(t, DefaultPageSize, ClampPageSizeMax(0, 5))
}
