package validation

import (
	"slices"
	"strings"
)

// Issue codes.
const (
	CodeRequired      = "required"
	CodeInvalidType   = "invalid_type"
	CodeInvalidFormat = "invalid_format"
	CodeInvalidEnum   = "invalid_enum"
	CodeOutOfRange    = "out_of_range"
	CodeTooSmall      = "too_small"
	CodeInvalidSize   = "invalid_size"
	CodeDuplicateSKU  = "duplicate_sku"
)

// Issue is a single rule violation tied to the field that caused it.
// Path holds field names and, inside variants, the decimal index of the variant.
type Issue struct {
	Path    []string `json:"path"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

// String renders the issue as "variants.0.size: message".
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return strings.Join(i.Path, ".") + ": " + i.Message
}

// Issues is the ordered list of every violation found in one validation.
type Issues []Issue

func (is Issues) Error() string {
	parts := make([]string, 0, len(is))
	for _, i := range is {
		parts = append(parts, i.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Find returns the first issue at the given path.
func (is Issues) Find(path ...string) (Issue, bool) {
	for _, i := range is {
		if slices.Equal(i.Path, path) {
			return i, true
		}
	}
	return Issue{}, false
}

// Codes counts issues per code.
func (is Issues) Codes() map[string]int {
	out := make(map[string]int)
	for _, i := range is {
		out[i.Code]++
	}
	return out
}

func (is *Issues) add(path []string, code, message string) {
	*is = append(*is, Issue{Path: slices.Clone(path), Code: code, Message: message})
}

func join(prefix []string, elems ...string) []string {
	out := make([]string, 0, len(prefix)+len(elems))
	out = append(out, prefix...)
	return append(out, elems...)
}
