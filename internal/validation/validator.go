// Package validation turns raw, loosely typed item submissions into normalized
// models.Item values, or reports every rule they break.
//
// A Validator performs no I/O and keeps no mutable state, so a single instance
// can be shared by all request handlers. SKU uniqueness is only checked within
// the submitted variants; uniqueness against stored items belongs to the
// storage layer.
package validation

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mahammedjunedattar/cloth-invent/internal/models"
)

// ErrNilInput is returned when Validate is called without a record. It is a
// caller bug, not a validation failure.
var ErrNilInput = errors.New("validation: nil input")

// Validator checks item submissions against the field rules and size charts.
type Validator struct {
	rules *validator.Validate
	now   func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the clock used for defaulted timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New builds a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		rules: newRuleEngine(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var std = New()

// Validate runs the package default Validator.
func Validate(raw map[string]any) (*models.Item, error) {
	return std.Validate(raw)
}

// Validate returns the normalized item, or an Issues error listing every
// violation. raw is never modified.
func (v *Validator) Validate(raw map[string]any) (*models.Item, error) {
	if raw == nil {
		return nil, ErrNilInput
	}

	var issues Issues
	item := &models.Item{}

	fields := make(map[string]string, len(itemRules))
	for _, r := range itemRules {
		s, _ := v.checkString(raw[r.Key], r.Key, r.Tag, []string{r.Key}, &issues)
		fields[r.Key] = s
	}
	item.Name = fields["name"]
	item.Gender = models.Gender(fields["gender"])
	item.Category = fields["category"]
	item.Material = fields["material"]
	item.StoreID = fields["storeId"]
	item.CreatedBy = fields["createdBy"]

	rawVariants, err := variantList(raw["variants"])
	if err != nil {
		issues.add([]string{"variants"}, CodeInvalidType, err.Error())
	} else if len(rawVariants) == 0 {
		issues.add([]string{"variants"}, CodeTooSmall, "at least one variant required")
	}

	// Per-variant structure first, then the cross-field rules, so that every
	// structural issue precedes the size and duplicate issues in the output.
	item.Variants = make([]models.Variant, len(rawVariants))
	sizeOK := make([]bool, len(rawVariants))
	skuOK := make([]bool, len(rawVariants))
	for i, rv := range rawVariants {
		path := []string{"variants", strconv.Itoa(i)}
		m, ok := rv.(map[string]any)
		if !ok {
			issues.add(path, CodeInvalidType, fmt.Sprintf("expected object, received %s", typeName(rv)))
			continue
		}
		item.Variants[i], sizeOK[i], skuOK[i] = v.variant(m, path, &issues)
	}

	if _, known := SizeChart[item.Gender]; known {
		for i := range item.Variants {
			if sizeOK[i] {
				v.checkSize(item.Gender, item.Variants[i].Size, []string{"variants", strconv.Itoa(i), "size"}, &issues)
			}
		}
	}

	seen := make(map[string]struct{}, len(item.Variants))
	for i := range item.Variants {
		if !skuOK[i] {
			continue
		}
		sku := item.Variants[i].SKU
		if _, dup := seen[sku]; dup {
			issues.add([]string{"variants", strconv.Itoa(i), "sku"}, CodeDuplicateSKU, "Duplicate SKU")
		}
		seen[sku] = struct{}{}
	}

	now := v.now()
	item.CreatedAt = v.timestamp(raw, "createdAt", now, &issues)
	item.UpdatedAt = v.timestamp(raw, "updatedAt", now, &issues)
	if d, present := raw["deletedAt"]; present && d != nil {
		t, err := toTime(d)
		if err != nil {
			issues.add([]string{"deletedAt"}, CodeInvalidType, "deletedAt must be a date or null")
		} else {
			item.DeletedAt = &t
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return item, nil
}

// ValidateVariant checks a single variant, including its size against the
// chart for gender. Issue paths are relative to the variant.
func (v *Validator) ValidateVariant(gender models.Gender, raw map[string]any) (*models.Variant, error) {
	if raw == nil {
		return nil, ErrNilInput
	}
	var issues Issues
	variant, sizeOK, _ := v.variant(raw, nil, &issues)
	if sizeOK {
		v.checkSize(gender, variant.Size, []string{"size"}, &issues)
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return &variant, nil
}

// variant normalizes and checks one raw variant. It reports whether size and
// sku passed their structural rules, which gates the cross-field checks.
func (v *Validator) variant(raw map[string]any, path []string, issues *Issues) (out models.Variant, sizeOK, skuOK bool) {
	normalized := map[string]any{
		"size":    raw["size"],
		"color":   raw["color"],
		"sku":     NormalizeSKU(stringify(raw["sku"])),
		"barcode": NormalizeBarcode(stringify(raw["barcode"])),
	}

	ok := make(map[string]bool, len(variantRules))
	for _, r := range variantRules {
		var s string
		s, ok[r.Key] = v.checkString(normalized[r.Key], r.Key, r.Tag, join(path, r.Key), issues)
		switch r.Key {
		case "size":
			out.Size = s
		case "color":
			out.Color = s
		case "sku":
			out.SKU = s
		case "barcode":
			out.Barcode = s
		}
	}

	out.Quantity = quantity(raw["quantity"], join(path, "quantity"), issues)
	out.Price = price(raw["price"], join(path, "price"), issues)
	out.Measurements = measurements(raw["measurements"], join(path, "measurements"), issues)

	return out, ok["size"], ok["sku"]
}

func (v *Validator) checkString(val any, key, tag string, path []string, issues *Issues) (string, bool) {
	s, isString := val.(string)
	if val != nil && !isString {
		issues.add(path, CodeInvalidType, fmt.Sprintf("%s must be a string, received %s", key, typeName(val)))
		return "", false
	}
	if err := v.rules.Var(s, tag); err != nil {
		code, msg := describe(key, err)
		issues.add(path, code, msg)
		return s, false
	}
	return s, true
}

func (v *Validator) checkSize(g models.Gender, size string, path []string, issues *Issues) {
	if !ValidSize(g, size) {
		issues.add(path, CodeInvalidSize, fmt.Sprintf("Invalid size %q for %s items", size, g))
	}
}

func (v *Validator) timestamp(raw map[string]any, key string, now time.Time, issues *Issues) time.Time {
	val, present := raw[key]
	if !present || val == nil {
		return now
	}
	t, err := toTime(val)
	if err != nil {
		issues.add([]string{key}, CodeInvalidType, fmt.Sprintf("%s must be a date", key))
		return now
	}
	return t
}

func variantList(val any) ([]any, error) {
	switch t := val.(type) {
	case nil:
		return nil, nil
	case []any:
		return t, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("variants must be an array, received %s", typeName(val))
	}
}

func quantity(val any, path []string, issues *Issues) int64 {
	if isBlank(val) {
		issues.add(path, CodeRequired, "quantity is required")
		return 0
	}
	d, err := toDecimal(val)
	if err != nil {
		issues.add(path, CodeInvalidType, fmt.Sprintf("quantity must be a number, received %s", typeName(val)))
		return 0
	}
	if !d.IsInteger() {
		issues.add(path, CodeInvalidType, fmt.Sprintf("quantity must be a whole number, received %s", d))
		return 0
	}
	if d.IsNegative() {
		issues.add(path, CodeOutOfRange, "quantity must be greater than or equal to 0")
		return 0
	}
	if !d.BigInt().IsInt64() {
		issues.add(path, CodeOutOfRange, "quantity is too large")
		return 0
	}
	return d.IntPart()
}

func price(val any, path []string, issues *Issues) decimal.Decimal {
	if isBlank(val) {
		issues.add(path, CodeRequired, "price is required")
		return decimal.Zero
	}
	d, err := toDecimal(val)
	if err != nil {
		issues.add(path, CodeInvalidType, fmt.Sprintf("price must be a number, received %s", typeName(val)))
		return decimal.Zero
	}
	if !d.IsPositive() {
		issues.add(path, CodeOutOfRange, "price must be greater than 0")
		return decimal.Zero
	}
	return d
}

func measurements(val any, path []string, issues *Issues) map[string]float64 {
	if val == nil {
		return nil
	}
	m, ok := val.(map[string]any)
	if !ok {
		issues.add(path, CodeInvalidType, fmt.Sprintf("measurements must be an object, received %s", typeName(val)))
		return nil
	}
	out := make(map[string]float64, len(m))
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		d, err := toDecimal(m[name])
		if err != nil {
			issues.add(join(path, name), CodeInvalidType, fmt.Sprintf("%s must be a number", name))
			continue
		}
		out[name] = d.InexactFloat64()
	}
	return out
}
