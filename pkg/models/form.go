package models

import "time"

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
)

type FormStatus string

const (
	FormOpen       FormStatus = "open"
	FormClosed     FormStatus = "closed"
	FormComingSoon FormStatus = "coming_soon"
	FormEndingSoon FormStatus = "ending_soon"
)

// AppField is one question within a form. Options only apply to select fields.
type AppField struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Enabled     bool      `json:"enabled"`
	Options     []string  `json:"options,omitempty"`
}

// Schedule holds the optional open/close triggers for a form. Dates are
// cleared once consumed so a manual status change cannot retrigger them.
type Schedule struct {
	OpenDate  *time.Time `json:"open_date,omitempty"`
	CloseDate *time.Time `json:"close_date,omitempty"`
	Timezone  string     `json:"timezone,omitempty"`
}

// AppForm is a submission template: an ordered field list plus the
// enablement, status and scheduling window that gate submissions.
type AppForm struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Enabled     bool       `json:"enabled"`
	Status      FormStatus `json:"status"`
	Schedule    Schedule   `json:"schedule"`
	Fields      []AppField `json:"fields"`
}

// AcceptsSubmissions reports whether the form is currently submittable.
func (f *AppForm) AcceptsSubmissions() bool {
	return f.Enabled && (f.Status == FormOpen || f.Status == FormEndingSoon)
}
