package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldType is the closed set of input field variants a form can render.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldSelect   FieldType = "select"
	FieldDate     FieldType = "date"
)

// FieldTypes lists every FieldType.
var FieldTypes = []FieldType{FieldText, FieldNumber, FieldCheckbox, FieldRadio, FieldSelect, FieldDate}

// HasOptions reports whether the variant picks from a fixed option list.
func (t FieldType) HasOptions() bool {
	return t == FieldRadio || t == FieldSelect
}

// InputGroup is an ordered section of the user-info form.
type InputGroup struct {
	ID        uuid.UUID
	Name      string
	SortOrder int
	Items     []InputItem
	CreatedAt time.Time
}

// InputItem is one typed field within an InputGroup.
// DefaultValue is stored in its string form and parsed with the field's codec.
type InputItem struct {
	ID           uuid.UUID
	GroupID      uuid.UUID
	Label        string
	Type         FieldType
	Required     bool
	DefaultValue string
	Options      []string
	SortOrder    int
	CreatedAt    time.Time
}
