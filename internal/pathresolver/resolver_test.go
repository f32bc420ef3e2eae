package pathresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegments(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"/", nil},
		{"/a", []string{"a"}},
		{"a/b/c", []string{"a", "b", "c"}},
		{"/a//b/", []string{"a", "b"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Segments(c.path), "path=%q", c.path)
	}
}
