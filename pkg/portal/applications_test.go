package portal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/emeraldsmp/portal/pkg/forms"
	"github.com/emeraldsmp/portal/pkg/models"
)

func memberAppResponses() map[string]string {
	return map[string]string{
		"username":   "Steve",
		"discord":    "steve#0001",
		"age":        "19",
		"timezone":   "UTC+00:00 to UTC+03:00 (Europe/Africa)",
		"why":        "I like building",
		"experience": "Two seasons elsewhere",
	}
}

func banAppealResponses() map[string]string {
	return map[string]string{
		"username":      "Steve",
		"ban-reason":    "griefing",
		"appeal-reason": "it was a misunderstanding",
		"learned":       "to ask first",
	}
}

func TestSubmitRecordsEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "applicant", models.RoleUser)

	entry, err := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if entry.Status != models.AppPending {
		t.Errorf("new entries start pending, got %s", entry.Status)
	}
	if entry.Username != "Steve" {
		t.Errorf("username comes from the username response, got %q", entry.Username)
	}
	if entry.FormName != "Member Application" {
		t.Errorf("form name is denormalized onto the entry, got %q", entry.FormName)
	}
	if !entry.SubmittedAt.Equal(testTime) {
		t.Error("submission time must be stamped")
	}

	mine, err := svc.UserApplications(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != entry.ID {
		t.Error("the entry must be listed for its submitter")
	}
}

func TestSubmitUsernameFallsBackToDisplayName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "applicant", models.RoleUser)

	// a form without a username field falls back to the display name
	admin := seedUser(t, svc, "the-admin", models.RoleAdmin)
	form, err := svc.CreateForm(ctx, admin, "Builder Application", "show us your builds")
	if err != nil {
		t.Fatal(err)
	}

	entry, err := svc.Submit(ctx, user, form.ID, map[string]string{})
	if err != nil {
		t.Fatalf("submit to empty form: %v", err)
	}
	if entry.Username != user.DisplayName {
		t.Errorf("username = %q, want display name %q", entry.Username, user.DisplayName)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "applicant", models.RoleUser)

	responses := memberAppResponses()
	delete(responses, "why")
	delete(responses, "age")

	_, err := svc.Submit(ctx, user, models.ProtectedFormID, responses)
	var verr *forms.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.MissingLabels) != 2 {
		t.Errorf("expected both missing fields named, got %v", verr.MissingLabels)
	}
}

func TestSubmitClosedForm(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "applicant", models.RoleUser)

	settings, _ := svc.store.Settings.Get(ctx)
	for i := range settings.AppForms {
		if settings.AppForms[i].ID == models.ProtectedFormID {
			settings.AppForms[i].Status = models.FormClosed
		}
	}
	svc.store.Settings.Save(ctx, settings)

	if _, err := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses()); !errors.Is(err, ErrFormClosed) {
		t.Errorf("expected ErrFormClosed, got %v", err)
	}
}

func TestSubmitEndingSoonStillAccepts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "applicant", models.RoleUser)

	settings, _ := svc.store.Settings.Get(ctx)
	for i := range settings.AppForms {
		if settings.AppForms[i].ID == models.ProtectedFormID {
			settings.AppForms[i].Status = models.FormEndingSoon
		}
	}
	svc.store.Settings.Save(ctx, settings)

	if _, err := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses()); err != nil {
		t.Errorf("ending_soon must accept submissions: %v", err)
	}
}

func TestBannedUserRestrictedToAppeals(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	banned := seedUser(t, svc, "banned-user", models.RoleUser)
	banned.Status = models.UserBanned
	svc.store.Users.Update(ctx, banned)
	banned, _ = svc.GetUser(ctx, banned.ID)

	if _, err := svc.Submit(ctx, banned, models.ProtectedFormID, memberAppResponses()); !errors.Is(err, ErrBannedRestricted) {
		t.Errorf("expected ErrBannedRestricted, got %v", err)
	}
	if _, err := svc.Submit(ctx, banned, models.BanAppealFormID, banAppealResponses()); err != nil {
		t.Errorf("ban appeal must be allowed: %v", err)
	}
}

func TestSubmissionLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "applicant", models.RoleUser)

	for i := 0; i < 3; i++ {
		responses := memberAppResponses()
		responses["username"] = fmt.Sprintf("Steve%d", i)
		if _, err := svc.Submit(ctx, user, models.ProtectedFormID, responses); err != nil {
			t.Fatalf("submission %d: %v", i, err)
		}
	}

	if _, err := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses()); !errors.Is(err, ErrApplicationLimit) {
		t.Errorf("expected ErrApplicationLimit after 3 submissions, got %v", err)
	}

	// ban appeals do not count against the cap
	if _, err := svc.Submit(ctx, user, models.BanAppealFormID, banAppealResponses()); err != nil {
		t.Errorf("appeal past the cap: %v", err)
	}
}

func TestReviewStampsTime(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, svc, "applicant", models.RoleUser)
	manager := seedUser(t, svc, "the-manager", models.RoleManager)

	entry, err := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses())
	if err != nil {
		t.Fatal(err)
	}
	if entry.ReviewedAt != nil {
		t.Fatal("fresh entries carry no review time")
	}

	status := models.AppApproved
	notes := "solid application"
	updated, err := svc.UpdateApplication(ctx, manager, entry.ID, ReviewUpdate{
		Status: &status,
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if updated.Status != models.AppApproved || updated.Notes != notes {
		t.Error("review fields must persist")
	}
	if updated.ReviewedAt == nil || !updated.ReviewedAt.Equal(testTime) {
		t.Error("a status change stamps the review time")
	}

	// notes alone do not stamp a review time
	entry2, _ := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses())
	onlyNotes := "checking references"
	updated2, err := svc.UpdateApplication(ctx, manager, entry2.ID, ReviewUpdate{Notes: &onlyNotes})
	if err != nil {
		t.Fatal(err)
	}
	if updated2.ReviewedAt != nil {
		t.Error("notes-only updates leave ReviewedAt unset")
	}

	bogus := models.ApplicationStatus("archived")
	if _, err := svc.UpdateApplication(ctx, manager, entry.ID, ReviewUpdate{Status: &bogus}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown status must be rejected, got %v", err)
	}
}

func TestReviewRequiresManagerRank(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, svc, "applicant", models.RoleUser)
	staff := seedUser(t, svc, "the-staff", models.RoleStaff)

	entry, _ := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses())

	status := models.AppApproved
	if _, err := svc.UpdateApplication(ctx, staff, entry.ID, ReviewUpdate{Status: &status}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("staff rank cannot review, got %v", err)
	}
	if _, err := svc.Applications(ctx, staff); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("staff rank cannot list all entries, got %v", err)
	}
}

func TestDeleteApplicationExact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, svc, "applicant", models.RoleUser)
	manager := seedUser(t, svc, "the-manager", models.RoleManager)

	first, _ := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses())
	second, _ := svc.Submit(ctx, user, models.BanAppealFormID, banAppealResponses())

	if err := svc.DeleteApplication(ctx, manager, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, _ := svc.Applications(ctx, manager)
	if len(remaining) != 1 || remaining[0].ID != second.ID {
		t.Errorf("exactly the deleted entry must go, remaining %v", remaining)
	}

	if err := svc.DeleteApplication(ctx, manager, first.ID); !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("double delete, got %v", err)
	}
}

func TestBulkDeleteSkipsMissing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, svc, "applicant", models.RoleUser)
	manager := seedUser(t, svc, "the-manager", models.RoleManager)

	a, _ := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses())
	b, _ := svc.Submit(ctx, user, models.BanAppealFormID, banAppealResponses())

	if err := svc.DeleteApplications(ctx, manager, []string{a.ID, "no-such-id", b.ID}); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}

	remaining, _ := svc.Applications(ctx, manager)
	if len(remaining) != 0 {
		t.Errorf("expected empty list, got %d entries", len(remaining))
	}
}

func TestStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, svc, "applicant", models.RoleUser)
	manager := seedUser(t, svc, "the-manager", models.RoleManager)

	// raise the cap so the seed data fits
	settings, _ := svc.store.Settings.Get(ctx)
	settings.MaxApplicationsPerUser = 10
	svc.store.Settings.Save(ctx, settings)

	statuses := []models.ApplicationStatus{
		models.AppApproved, models.AppApproved, models.AppRejected, models.AppUnderReview,
	}
	for i, st := range statuses {
		responses := memberAppResponses()
		responses["username"] = fmt.Sprintf("u%d", i)
		entry, err := svc.Submit(ctx, user, models.ProtectedFormID, responses)
		if err != nil {
			t.Fatal(err)
		}
		s := st
		if _, err := svc.UpdateApplication(ctx, manager, entry.ID, ReviewUpdate{Status: &s}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses()); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.Stats(ctx, manager)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 5 || stats.Approved != 2 || stats.Rejected != 1 || stats.UnderReview != 1 || stats.Pending != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestApplicationsNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, svc, "applicant", models.RoleUser)
	manager := seedUser(t, svc, "the-manager", models.RoleManager)

	first, _ := svc.Submit(ctx, user, models.ProtectedFormID, memberAppResponses())
	second, _ := svc.Submit(ctx, user, models.BanAppealFormID, banAppealResponses())

	entries, err := svc.Applications(ctx, manager)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Error("listing must be newest first")
	}
}
