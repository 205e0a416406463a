package validation

import (
	"slices"

	"github.com/mahammedjunedattar/cloth-invent/internal/models"
)

// SizeChart maps each gender to the sizes its variants may use. It is never mutated.
var SizeChart = map[models.Gender][]string{
	models.GenderLadies: {"XXS", "XS", "S", "M", "L", "XL", "XXL", "Plus Size"},
	models.GenderGents:  {"XS", "S", "M", "L", "XL", "XXL", "XXXL"},
}

// SizesFor returns a copy of the size chart for g, or nil for an unknown gender.
func SizesFor(g models.Gender) []string {
	return slices.Clone(SizeChart[g])
}

// ValidSize reports whether size belongs to the chart of g.
func ValidSize(g models.Gender, size string) bool {
	return slices.Contains(SizeChart[g], size)
}
