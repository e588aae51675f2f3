// Package form parses and formats user-info field values. Each field type
// has its own codec; the set of types is closed and lookups for an unknown
// type fail instead of falling back to text.
package form

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// DateLayout is the wire and storage layout of date fields.
const DateLayout = "2006-01-02"

// ErrInvalidValue is returned when a raw value does not parse under a codec.
var ErrInvalidValue = errors.New("invalid field value")

// ErrUnknownType is returned by CodecFor for types outside domain.FieldTypes.
var ErrUnknownType = errors.New("unknown field type")

// Codec converts a field value between its stored form (JSON-compatible
// Go value) and its text form (CSV cells, default values, query strings).
type Codec interface {
	// Parse converts raw text into the stored value. Empty text yields nil
	// for every type except checkbox, where it yields false.
	Parse(raw string, options []string) (any, error)
	// Format renders a stored value as text.
	Format(v any) string
}

var codecs = map[domain.FieldType]Codec{
	domain.FieldText:     textCodec{},
	domain.FieldNumber:   numberCodec{},
	domain.FieldCheckbox: checkboxCodec{},
	domain.FieldRadio:    choiceCodec{},
	domain.FieldSelect:   choiceCodec{},
	domain.FieldDate:     dateCodec{},
}

// CodecFor returns the codec for t.
func CodecFor(t domain.FieldType) (Codec, error) {
	c, ok := codecs[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return c, nil
}

// ParseType converts s into a FieldType.
func ParseType(s string) (domain.FieldType, bool) {
	t := domain.FieldType(strings.ToLower(strings.TrimSpace(s)))
	_, ok := codecs[t]
	return t, ok
}

// InferType picks the type whose stored form matches v. It is used for
// values whose input item is not part of the current schema.
func InferType(v any) domain.FieldType {
	switch v.(type) {
	case bool:
		return domain.FieldCheckbox
	case float64, float32, int, int32, int64:
		return domain.FieldNumber
	default:
		return domain.FieldText
	}
}

// Format renders v with the codec for t, falling back to the inferred type
// when t is unknown.
func Format(t domain.FieldType, v any) string {
	c, err := CodecFor(t)
	if err != nil {
		c = codecs[InferType(v)]
	}
	return c.Format(v)
}

// ---- text ------------------------------------------------------------------

type textCodec struct{}

func (textCodec) Parse(raw string, _ []string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	return raw, nil
}

func (textCodec) Format(v any) string {
	return formatAny(v)
}

// ---- number ----------------------------------------------------------------

type numberCodec struct{}

func (numberCodec) Parse(raw string, _ []string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
	}
	return f, nil
}

func (numberCodec) Format(v any) string {
	return formatAny(v)
}

// ---- checkbox --------------------------------------------------------------

type checkboxCodec struct{}

func (checkboxCodec) Parse(raw string, _ []string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "on":
		return true, nil
	case "false", "0", "off", "":
		return false, nil
	}
	return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, raw)
}

func (checkboxCodec) Format(v any) string {
	switch b := v.(type) {
	case bool:
		return strconv.FormatBool(b)
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return strconv.FormatBool(parsed)
		}
	}
	return "false"
}

// ---- radio / select --------------------------------------------------------

type choiceCodec struct{}

func (choiceCodec) Parse(raw string, options []string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	if len(options) > 0 && !slices.Contains(options, raw) {
		return nil, fmt.Errorf("%w: %q is not one of %s", ErrInvalidValue, raw, strings.Join(options, ", "))
	}
	return raw, nil
}

func (choiceCodec) Format(v any) string {
	return formatAny(v)
}

// ---- date ------------------------------------------------------------------

type dateCodec struct{}

func (dateCodec) Parse(raw string, _ []string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if _, err := time.Parse(DateLayout, raw); err != nil {
		return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidValue, raw)
	}
	return raw, nil
}

func (dateCodec) Format(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(DateLayout)
	}
	return formatAny(v)
}

// formatAny stringifies JSON-compatible values. Whole floats print without
// a fractional part so 120 round-trips as "120", not "120.000000".
func formatAny(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	default:
		return fmt.Sprint(x)
	}
}
