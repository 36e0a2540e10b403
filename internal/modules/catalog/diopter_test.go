package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDiopter(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"  ":     "",
		"-1":     "-1.00",
		"-1.0":   "-1.00",
		"1.5":    "+1.50",
		"+0.25":  "+0.25",
		"0":      "0.00",
		"-0.00":  "0.00",
		" -2.75": "-2.75",
		"PL":     "PL",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDiopter(in), "input %q", in)
	}
}
