package portal

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/emeraldsmp/portal/pkg/forms"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/store"
)

// Submit validates and records one submission against one form. Banned
// users may only submit ban appeals; everyone else is capped by the
// per-user submission limit (appeals exempt).
func (s *Service) Submit(ctx context.Context, user *models.UserAccount, formID string, responses map[string]string) (*models.ApplicationEntry, error) {
	if user == nil {
		return nil, ErrPermissionDenied
	}
	if user.Banned() && formID != models.BanAppealFormID {
		return nil, ErrBannedRestricted
	}

	available, err := s.Forms(ctx)
	if err != nil {
		return nil, err
	}
	form, err := forms.Find(available, formID)
	if err != nil {
		return nil, err
	}
	if !form.AcceptsSubmissions() {
		return nil, ErrFormClosed
	}

	if err := forms.ValidateSubmission(form, responses); err != nil {
		return nil, err
	}

	if formID != models.BanAppealFormID {
		settings, err := s.store.Settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		existing, err := s.store.Applications.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		count := 0
		for _, e := range existing {
			if e.FormID != models.BanAppealFormID {
				count++
			}
		}
		if count >= settings.MaxApplicationsPerUser {
			return nil, ErrApplicationLimit
		}
	}

	username := responses["username"]
	if username == "" {
		username = user.DisplayName
	}

	if responses == nil {
		responses = map[string]string{}
	}

	entry := &models.ApplicationEntry{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		FormID:      form.ID,
		FormName:    form.Name,
		Username:    username,
		Responses:   responses,
		Status:      models.AppPending,
		SubmittedAt: s.now(),
	}
	if err := s.store.Applications.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Applications lists every entry, newest first, for reviewers.
func (s *Service) Applications(ctx context.Context, actor *models.UserAccount) ([]models.ApplicationEntry, error) {
	if err := s.authorize(ctx, actor, models.PermManageApplications); err != nil {
		return nil, err
	}
	return s.store.Applications.List(ctx)
}

// UserApplications lists the caller's own submissions.
func (s *Service) UserApplications(ctx context.Context, user *models.UserAccount) ([]models.ApplicationEntry, error) {
	if user == nil {
		return nil, ErrPermissionDenied
	}
	return s.store.Applications.ListByUser(ctx, user.ID)
}

// GetApplication loads one entry, visible to its submitter and to reviewers.
func (s *Service) GetApplication(ctx context.Context, actor *models.UserAccount, id string) (*models.ApplicationEntry, error) {
	entry, err := s.store.Applications.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if actor == nil {
		return nil, ErrPermissionDenied
	}
	if entry.UserID != actor.ID && s.authorize(ctx, actor, models.PermManageApplications) != nil {
		return nil, ErrPermissionDenied
	}
	return entry, nil
}

var validStatuses = map[models.ApplicationStatus]bool{
	models.AppPending:     true,
	models.AppUnderReview: true,
	models.AppApproved:    true,
	models.AppRejected:    true,
}

// ReviewUpdate mutates an entry's review state. All status transitions
// are permitted in both directions; a status change stamps the review
// time. Notes and the admin-visible message are set independently.
type ReviewUpdate struct {
	Status       *models.ApplicationStatus
	Notes        *string
	AdminMessage *string
}

func (s *Service) UpdateApplication(ctx context.Context, actor *models.UserAccount, id string, upd ReviewUpdate) (*models.ApplicationEntry, error) {
	if err := s.authorize(ctx, actor, models.PermManageApplications); err != nil {
		return nil, err
	}

	entry, err := s.store.Applications.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if upd.Status != nil {
		if !validStatuses[*upd.Status] {
			return nil, ErrInvalidTransition
		}
		entry.Status = *upd.Status
		now := s.now()
		entry.ReviewedAt = &now
	}
	if upd.Notes != nil {
		entry.Notes = *upd.Notes
	}
	if upd.AdminMessage != nil {
		entry.AdminMessage = *upd.AdminMessage
	}

	if err := s.store.Applications.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteApplication removes exactly one entry. No soft delete, no audit
// trail beyond whatever notes the reviewers kept elsewhere.
func (s *Service) DeleteApplication(ctx context.Context, actor *models.UserAccount, id string) error {
	if err := s.authorize(ctx, actor, models.PermManageApplications); err != nil {
		return err
	}
	if err := s.store.Applications.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrApplicationNotFound
		}
		return err
	}
	// the thread is meaningless without its application
	return s.store.Chats.Delete(ctx, id)
}

// DeleteApplications is the bulk form; missing ids are skipped.
func (s *Service) DeleteApplications(ctx context.Context, actor *models.UserAccount, ids []string) error {
	if err := s.authorize(ctx, actor, models.PermManageApplications); err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.store.Applications.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := s.store.Chats.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns per-status counts for the admin overview.
func (s *Service) Stats(ctx context.Context, actor *models.UserAccount) (*models.Stats, error) {
	if err := s.authorize(ctx, actor, models.PermAccessAdmin); err != nil {
		return nil, err
	}

	entries, err := s.store.Applications.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case models.AppPending:
			stats.Pending++
		case models.AppApproved:
			stats.Approved++
		case models.AppRejected:
			stats.Rejected++
		case models.AppUnderReview:
			stats.UnderReview++
		}
	}
	return stats, nil
}
