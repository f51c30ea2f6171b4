package validation

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"drobeo/internal/models"
)

// Errors accumulates field errors so a request can report every problem at once.
type Errors struct {
	fields []models.FieldError
}

// Add records a failed field.
func (v *Errors) Add(field, message string) {
	v.fields = append(v.fields, models.FieldError{Field: field, Message: message})
}

// Check records message for field when ok is false.
func (v *Errors) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// AddErr records err for field when it is non-nil.
func (v *Errors) AddErr(field string, err error) {
	if err != nil {
		v.Add(field, err.Error())
	}
}

// Empty reports whether no field failed.
func (v *Errors) Empty() bool {
	return len(v.fields) == 0
}

// Err returns a VALIDATION_ERROR carrying every recorded field, or nil.
func (v *Errors) Err() error {
	if v.Empty() {
		return nil
	}
	return models.NewFieldValidationError(v.fields...)
}

// ServerAssigned collects the fields clients are never allowed to set on create.
// Embed it in create payloads so their presence can be rejected.
type ServerAssigned struct {
	ID        *uint      `json:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	TimesWorn *int       `json:"times_worn,omitempty"`
	LastWorn  *time.Time `json:"last_worn,omitempty"`
}

// Reject records an error for each server-assigned field the caller supplied.
func (s ServerAssigned) Reject(v *Errors) {
	const msg = "is assigned by the server"
	v.Check(s.ID == nil, "id", msg)
	v.Check(s.CreatedAt == nil, "created_at", msg)
	v.Check(s.TimesWorn == nil, "times_worn", msg)
	v.Check(s.LastWorn == nil, "last_worn", msg)
}

// Name checks a required display name of at most max characters.
func Name(v *Errors, field, value string, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 {
		v.Add(field, "is required")
		return
	}
	v.Check(n <= max, field, "is too long")
}

// Optional checks an optional free-text value of at most max characters.
func Optional(v *Errors, field, value string, max int) {
	v.Check(utf8.RuneCountInString(value) <= max, field, "is too long")
}

func Season(v *Errors, field string, s models.Season) {
	v.Check(s.Valid(), field, "must be one of spring, summer, fall, winter, all")
}

func Occasion(v *Errors, field string, o models.Occasion) {
	v.Check(o.Valid(), field, "must be one of work, casual, formal, party, workout, date, travel")
}

func Weather(v *Errors, field string, w models.Weather) {
	v.Check(w.Valid(), field, "must be one of sunny, cloudy, rainy, snowy, hot, cold, mild")
}

// OptionalOccasion accepts the empty value.
func OptionalOccasion(v *Errors, field string, o models.Occasion) {
	if o != "" {
		Occasion(v, field, o)
	}
}

// OptionalWeather accepts the empty value.
func OptionalWeather(v *Errors, field string, w models.Weather) {
	if w != "" {
		Weather(v, field, w)
	}
}

// Range checks lo <= n <= hi.
func Range(v *Errors, field string, n, lo, hi int) {
	v.Check(n >= lo && n <= hi, field, "is out of range")
}

// NonNegative checks an optional amount.
func NonNegative(v *Errors, field string, n *int) {
	if n != nil {
		v.Check(*n >= 0, field, "must not be negative")
	}
}

// URL accepts an empty value, an http(s) URL, a data URL or a server-relative path.
func URL(v *Errors, field, raw string) {
	if raw == "" || strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "/") {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.Add(field, "must be an http(s) URL")
	}
}
