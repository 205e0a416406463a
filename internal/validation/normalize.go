package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NormalizeSKU uppercases s and drops every character outside [A-Z0-9_-].
func NormalizeSKU(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, strings.ToUpper(s))
}

// NormalizeBarcode keeps only the ASCII digits of s.
func NormalizeBarcode(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// stringify renders a decoded JSON scalar so that identifiers sent as numbers
// (a barcode of 123456789012, say) normalize the same way as their string form.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}
