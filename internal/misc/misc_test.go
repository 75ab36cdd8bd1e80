package misc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxMin(t *testing.T) {
	assert.Equal(t, 30, Max(30, 10))
	assert.Equal(t, 40, Max(30, 40))
	assert.Equal(t, int64(-1), Min(int64(-1), 0))
}

func TestStringLimit(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{s: "Whole Milk", n: -1, want: ""},
		{s: "Whole Milk", n: 2, want: "Wh"},
		{s: "Whole Milk", n: 20, want: "Whole Milk"},
		{s: "Whole Milk", n: 8, want: "Whole..."},
		{s: "Café au lait", n: 7, want: "Café..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StringLimit(tt.s, tt.n), "StringLimit(%q, %d)", tt.s, tt.n)
	}
}

func TestBytesLimitDoesNotClobberInput(t *testing.T) {
	in := []byte("0123456789")
	got := BytesLimit(in, 6)
	assert.Equal(t, "012...", string(got))
	assert.Equal(t, "0123456789", string(in))
}
