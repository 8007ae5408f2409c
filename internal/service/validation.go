package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"reservationform/internal/entities"

	"github.com/go-playground/validator/v10"
)

// reservationTimeLayouts are the accepted encodings of a reservation time, the first being what a
// datetime-local input posts.
var reservationTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// FieldErrors maps a draft field's JSON name to its validation message.
type FieldErrors map[string]string

// Fields returns the failing field names in a stable order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidationError is returned by Submit when the draft fails validation.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, name := range e.Fields.Fields() {
		msgs = append(msgs, e.Fields[name])
	}
	return "invalid reservation: " + strings.Join(msgs, "; ")
}

type ReservationValidator struct {
	validate *validator.Validate
}

func NewReservationValidator() *ReservationValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("datetime_local", func(fl validator.FieldLevel) bool {
		_, ok := ParseReservationTime(fl.Field().String())
		return ok
	})
	return &ReservationValidator{validate: v}
}

// Validate checks the whole draft and returns nil when it can be submitted.
func (v *ReservationValidator) Validate(draft entities.ReservationDraft) FieldErrors {
	err := v.validate.Struct(draft)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required field", fe.Field())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s",
			fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "datetime_local":
		return fmt.Sprintf("%s must be a valid date", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// ParseReservationTime parses a reservation time in any accepted layout.
func ParseReservationTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range reservationTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
