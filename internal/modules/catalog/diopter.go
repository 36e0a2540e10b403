package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeDiopter canonicalises a sphere or cylinder value so that option
// matching is an exact string comparison: "-1" and "-1.0" both become "-1.00",
// "1.5" becomes "+1.50" and any zero becomes "0.00". Empty stays empty and
// values that do not parse are returned trimmed.
func NormalizeDiopter(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if v == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%+.2f", v)
}
