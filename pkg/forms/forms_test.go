package forms

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emeraldsmp/portal/pkg/models"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Member Application": "member-application",
		"  Builder App!  ":   "builder-app",
		"Season 4 -- Signup": "season-4-signup",
		"ALL CAPS":           "all-caps",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func datePtr(t time.Time) *time.Time { return &t }

func TestEvaluateSchedulesOpens(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fs := []models.AppForm{{
		ID:      "f",
		Status:  models.FormClosed,
		Enabled: true,
		Schedule: models.Schedule{
			OpenDate: datePtr(now.Add(-time.Hour)),
		},
	}}

	if !EvaluateSchedules(fs, now) {
		t.Fatal("expected a change")
	}
	if fs[0].Status != models.FormOpen {
		t.Errorf("status = %s, want open", fs[0].Status)
	}
	if fs[0].Schedule.OpenDate != nil {
		t.Error("open date must be cleared after firing")
	}
}

func TestEvaluateSchedulesKeepsEndingSoon(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fs := []models.AppForm{{
		ID:     "f",
		Status: models.FormEndingSoon,
		Schedule: models.Schedule{
			OpenDate: datePtr(now.Add(-time.Minute)),
		},
	}}

	EvaluateSchedules(fs, now)
	if fs[0].Status != models.FormEndingSoon {
		t.Errorf("an open trigger must not downgrade ending_soon, got %s", fs[0].Status)
	}
	if fs[0].Schedule.OpenDate != nil {
		t.Error("the date is still consumed")
	}
}

func TestEvaluateSchedulesCloses(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fs := []models.AppForm{{
		ID:     "f",
		Status: models.FormOpen,
		Schedule: models.Schedule{
			CloseDate: datePtr(now),
		},
	}}

	if !EvaluateSchedules(fs, now) {
		t.Fatal("a close date equal to now fires")
	}
	if fs[0].Status != models.FormClosed {
		t.Errorf("status = %s, want closed", fs[0].Status)
	}
	if fs[0].Schedule.CloseDate != nil {
		t.Error("close date must be cleared after firing")
	}
}

func TestEvaluateSchedulesFutureDatesUntouched(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fs := []models.AppForm{{
		ID:     "f",
		Status: models.FormClosed,
		Schedule: models.Schedule{
			OpenDate: datePtr(now.Add(time.Hour)),
		},
	}}

	if EvaluateSchedules(fs, now) {
		t.Fatal("future dates must not fire")
	}
	if fs[0].Status != models.FormClosed || fs[0].Schedule.OpenDate == nil {
		t.Error("nothing should change before the date passes")
	}
}

func TestDeleteProtectedForm(t *testing.T) {
	fs := models.DefaultAppForms()
	if _, err := Delete(fs, models.ProtectedFormID); !errors.Is(err, ErrProtectedForm) {
		t.Fatalf("expected ErrProtectedForm, got %v", err)
	}

	remaining, err := Delete(fs, "staff-app")
	if err != nil {
		t.Fatalf("deleting a normal form: %v", err)
	}
	if _, err := Find(remaining, "staff-app"); !errors.Is(err, ErrFormNotFound) {
		t.Error("staff-app should be gone")
	}
	if _, err := Find(remaining, models.ProtectedFormID); err != nil {
		t.Error("protected form must survive")
	}
}

func TestMoveFieldClamped(t *testing.T) {
	f := &models.AppForm{Fields: []models.AppField{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}}

	if err := MoveField(f, "a", "up"); err != nil {
		t.Fatalf("move up at top: %v", err)
	}
	if f.Fields[0].ID != "a" {
		t.Error("moving the first field up is a no-op")
	}

	if err := MoveField(f, "b", "down"); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if f.Fields[1].ID != "c" || f.Fields[2].ID != "b" {
		t.Errorf("expected [a c b], got %v", f.Fields)
	}

	if err := MoveField(f, "b", "down"); err != nil {
		t.Fatalf("move down at bottom: %v", err)
	}
	if f.Fields[2].ID != "b" {
		t.Error("moving the last field down is a no-op")
	}

	if err := MoveField(f, "missing", "up"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}
	if err := MoveField(f, "a", "sideways"); err == nil {
		t.Error("unknown direction must error")
	}
}

func TestValidateSubmissionNamesMissingLabels(t *testing.T) {
	f := &models.AppForm{Fields: []models.AppField{
		{ID: "username", Label: "Minecraft Username", Required: true, Enabled: true},
		{ID: "age", Label: "Age", Required: true, Enabled: true},
		{ID: "disabled", Label: "Hidden", Required: true, Enabled: false},
		{ID: "optional", Label: "Optional", Required: false, Enabled: true},
	}}

	err := ValidateSubmission(f, map[string]string{"age": "  "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.MissingLabels) != 2 {
		t.Fatalf("expected 2 missing labels, got %v", verr.MissingLabels)
	}
	if !strings.Contains(verr.Error(), "Minecraft Username") || !strings.Contains(verr.Error(), "Age") {
		t.Errorf("message should name the fields, got %q", verr.Error())
	}

	if err := ValidateSubmission(f, map[string]string{
		"username": "Steve",
		"age":      "19",
	}); err != nil {
		t.Errorf("complete submission should pass: %v", err)
	}
}

func TestAddFieldOptionsOnlyForSelect(t *testing.T) {
	f := &models.AppForm{}
	field := AddField(f, "Time Zone", models.FieldSelect, "", true, []string{"UTC"})
	if len(field.Options) != 1 {
		t.Error("select fields keep their options")
	}

	field = AddField(f, "Why join?", models.FieldTextarea, "", true, []string{"junk"})
	if field.Options != nil {
		t.Error("non-select fields must drop options")
	}
}
