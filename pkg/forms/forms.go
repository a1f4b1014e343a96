// Package forms is the schema engine for application forms: schedule
// evaluation, field mutation and submission validation. Everything here
// is pure; persistence happens in the portal service.
package forms

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emeraldsmp/portal/pkg/models"
)

var (
	ErrFormNotFound    = errors.New("form not found")
	ErrFieldNotFound   = errors.New("field not found")
	ErrProtectedForm   = errors.New("the default form cannot be deleted")
	ErrDuplicateFormID = errors.New("a form with this name already exists")
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a stable identifier from a display name.
func Slugify(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// New creates an empty enabled form named after the slug of name.
func New(name, description string) models.AppForm {
	return models.AppForm{
		ID:          Slugify(name),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Enabled:     true,
		Status:      models.FormOpen,
		Schedule:    models.Schedule{Timezone: "UTC"},
		Fields:      []models.AppField{},
	}
}

// EvaluateSchedules applies every form's schedule against now. A passed
// open date forces the form open (unless it is already ending_soon) and
// is cleared so it cannot retrigger; a passed close date closes the form
// and is cleared likewise. It reports whether anything changed so the
// caller knows to persist.
func EvaluateSchedules(fs []models.AppForm, now time.Time) bool {
	changed := false
	for i := range fs {
		f := &fs[i]

		if f.Schedule.OpenDate != nil && !f.Schedule.OpenDate.After(now) {
			if f.Status != models.FormOpen && f.Status != models.FormEndingSoon {
				f.Status = models.FormOpen
			}
			f.Schedule.OpenDate = nil
			changed = true
		}

		if f.Schedule.CloseDate != nil && !f.Schedule.CloseDate.After(now) {
			if f.Status != models.FormClosed {
				f.Status = models.FormClosed
			}
			f.Schedule.CloseDate = nil
			changed = true
		}
	}
	return changed
}

// Find returns a pointer into fs for the given form id.
func Find(fs []models.AppForm, id string) (*models.AppForm, error) {
	for i := range fs {
		if fs[i].ID == id {
			return &fs[i], nil
		}
	}
	return nil, ErrFormNotFound
}

// Delete removes the form with the given id. The protected default form
// is never deletable, so a submission path always exists.
func Delete(fs []models.AppForm, id string) ([]models.AppForm, error) {
	if id == models.ProtectedFormID {
		return fs, ErrProtectedForm
	}
	for i := range fs {
		if fs[i].ID == id {
			return append(fs[:i], fs[i+1:]...), nil
		}
	}
	return fs, ErrFormNotFound
}

// AddField appends a new field derived from the label.
func AddField(f *models.AppForm, label string, typ models.FieldType, placeholder string, required bool, options []string) models.AppField {
	field := models.AppField{
		ID:          Slugify(label),
		Label:       strings.TrimSpace(label),
		Type:        typ,
		Placeholder: placeholder,
		Required:    required,
		Enabled:     true,
	}
	if typ == models.FieldSelect {
		field.Options = options
	}
	f.Fields = append(f.Fields, field)
	return field
}

// UpdateField merges the given field over the existing one with the same id.
func UpdateField(f *models.AppForm, field models.AppField) error {
	for i := range f.Fields {
		if f.Fields[i].ID == field.ID {
			f.Fields[i] = field
			return nil
		}
	}
	return ErrFieldNotFound
}

// DeleteField removes the field with the given id.
func DeleteField(f *models.AppForm, fieldID string) error {
	for i := range f.Fields {
		if f.Fields[i].ID == fieldID {
			f.Fields = append(f.Fields[:i], f.Fields[i+1:]...)
			return nil
		}
	}
	return ErrFieldNotFound
}

// MoveField swaps the field with its neighbor in the given direction
// ("up" or "down"), clamped at both ends.
func MoveField(f *models.AppForm, fieldID, direction string) error {
	idx := -1
	for i := range f.Fields {
		if f.Fields[i].ID == fieldID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrFieldNotFound
	}

	swap := idx
	switch direction {
	case "up":
		if idx > 0 {
			swap = idx - 1
		}
	case "down":
		if idx < len(f.Fields)-1 {
			swap = idx + 1
		}
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}

	f.Fields[idx], f.Fields[swap] = f.Fields[swap], f.Fields[idx]
	return nil
}

// ValidationError lists the labels of required fields missing from a
// submission.
type ValidationError struct {
	MissingLabels []string
}

func (e *ValidationError) Error() string {
	return "please fill in all required fields: " + strings.Join(e.MissingLabels, ", ")
}

// ValidateSubmission checks responses against the form's enabled
// required fields and returns a ValidationError naming every missing
// field's label.
func ValidateSubmission(f *models.AppForm, responses map[string]string) error {
	var missing []string
	for _, field := range f.Fields {
		if field.Enabled && field.Required && strings.TrimSpace(responses[field.ID]) == "" {
			missing = append(missing, field.Label)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{MissingLabels: missing}
	}
	return nil
}
