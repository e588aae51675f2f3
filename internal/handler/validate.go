package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// validator wraps go-playground/validator so error messages use the JSON
// field names clients actually send.
type validator struct {
	v *playground.Validate
}

func newValidator() *validator {
	v := playground.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &validator{v: v}
}

// Struct validates s and renders every failed field as one sentence,
// e.g. "name is required; item_type must be one of: character weapon summon".
func (v *validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+" "+friendlyMessage(fe))
	}
	slices.Sort(msgs)
	return errors.New(strings.Join(msgs, "; "))
}

func friendlyMessage(e playground.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "min":
		return "must be at least " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}

// decode reads a JSON body into dst and validates it. On failure it writes
// a 422 and returns false; the caller just returns.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
			return false
		}
		s.badRequest(w, r, "request body must be valid JSON")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.badRequest(w, r, err.Error())
		return false
	}
	return true
}
