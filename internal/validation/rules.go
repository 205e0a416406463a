package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// format is a named regular expression registered as a validator tag.
type format struct {
	pattern *regexp.Regexp
	expect  string
}

var formats = map[string]format{
	"hex_color": {
		pattern: regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`),
		expect:  "a hex color like #FFF or #FFFFFF",
	},
	"sku_format": {
		pattern: regexp.MustCompile(`^[A-Z0-9_-]+$`),
		expect:  "uppercase letters, digits, '_' or '-'",
	},
	"barcode_format": {
		pattern: regexp.MustCompile(`^[0-9]{12,14}$`),
		expect:  "12 to 14 digits",
	},
	"material_format": {
		pattern: regexp.MustCompile(`^\s*\d+%\s*[A-Za-z ]+(?:,\s*\d+%\s*[A-Za-z ]+)*\s*$`),
		expect:  `a composition like "95% Cotton" or "80% Wool, 20% Nylon"`,
	},
}

// fieldRule binds a raw key to a validator tag. Tags are evaluated left to
// right and only the first failing one is reported for the field.
type fieldRule struct {
	Key string
	Tag string
}

var itemRules = []fieldRule{
	{Key: "name", Tag: "required,min=2,max=100"},
	{Key: "gender", Tag: "required,oneof=LADIES GENTS"},
	{Key: "category", Tag: "required"},
	{Key: "material", Tag: "required,material_format"},
	{Key: "storeId", Tag: "required"},
	{Key: "createdBy", Tag: "required"},
}

var variantRules = []fieldRule{
	{Key: "size", Tag: "required"},
	{Key: "color", Tag: "required,hex_color"},
	{Key: "sku", Tag: "required,sku_format"},
	{Key: "barcode", Tag: "required,barcode_format"},
}

func newRuleEngine() *validator.Validate {
	v := validator.New()
	for tag, f := range formats {
		re := f.pattern
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("validation: register %s: %v", tag, err))
		}
	}
	return v
}

// describe turns the first failed tag into an issue code and message.
func describe(key string, err error) (code, message string) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return CodeInvalidType, fmt.Sprintf("%s is invalid", key)
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return CodeRequired, fmt.Sprintf("%s is required", key)
	case "min":
		return CodeOutOfRange, fmt.Sprintf("%s must be at least %s characters", key, fe.Param())
	case "max":
		return CodeOutOfRange, fmt.Sprintf("%s must be at most %s characters", key, fe.Param())
	case "oneof":
		return CodeInvalidEnum, fmt.Sprintf("%s must be one of %s, received %q",
			key, strings.ReplaceAll(fe.Param(), " ", " | "), fe.Value())
	}
	if f, ok := formats[fe.Tag()]; ok {
		return CodeInvalidFormat, fmt.Sprintf("%s must be %s", key, f.expect)
	}
	return CodeInvalidType, fmt.Sprintf("%s failed %s", key, fe.Tag())
}
