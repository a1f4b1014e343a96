package portal

import (
	"context"

	"github.com/emeraldsmp/portal/pkg/forms"
	"github.com/emeraldsmp/portal/pkg/logger"
	"github.com/emeraldsmp/portal/pkg/models"
)

// Forms returns the current form set with schedules evaluated. A
// schedule that fired is persisted immediately so the triggering date
// is cleared for every subsequent reader.
func (s *Service) Forms(ctx context.Context) ([]models.AppForm, error) {
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if forms.EvaluateSchedules(settings.AppForms, s.now()) {
		if err := s.store.Settings.Save(ctx, settings); err != nil {
			return nil, err
		}
	}
	return settings.AppForms, nil
}

// TickSchedules is the background counterpart of the read-time
// evaluation, so a schedule fires even when nobody is browsing.
func (s *Service) TickSchedules(ctx context.Context) error {
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return err
	}
	if !forms.EvaluateSchedules(settings.AppForms, s.now()) {
		return nil
	}
	logger.Info("form schedule fired, persisting updated statuses")
	return s.store.Settings.Save(ctx, settings)
}

// SaveForms replaces the whole form set.
func (s *Service) SaveForms(ctx context.Context, actor *models.UserAccount, fs []models.AppForm) error {
	if err := s.authorize(ctx, actor, models.PermManageForms); err != nil {
		return err
	}
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return err
	}
	settings.AppForms = fs
	return s.store.Settings.Save(ctx, settings)
}

// CreateForm adds an empty form. The id is a slug of the name, so two
// forms with colliding names are rejected.
func (s *Service) CreateForm(ctx context.Context, actor *models.UserAccount, name, description string) (*models.AppForm, error) {
	if err := s.authorize(ctx, actor, models.PermManageForms); err != nil {
		return nil, err
	}
	if forms.Slugify(name) == "" {
		return nil, ErrNameRequired
	}
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	form := forms.New(name, description)
	if _, err := forms.Find(settings.AppForms, form.ID); err == nil {
		return nil, forms.ErrDuplicateFormID
	}

	settings.AppForms = append(settings.AppForms, form)
	if err := s.store.Settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return &form, nil
}

// UpdateForm merges the given form over the stored one with the same id.
func (s *Service) UpdateForm(ctx context.Context, actor *models.UserAccount, form models.AppForm) error {
	if err := s.authorize(ctx, actor, models.PermManageForms); err != nil {
		return err
	}
	return s.mutateForm(ctx, form.ID, func(f *models.AppForm) error {
		*f = form
		return nil
	})
}

// DeleteForm removes a form. The protected default form stays.
func (s *Service) DeleteForm(ctx context.Context, actor *models.UserAccount, id string) error {
	if err := s.authorize(ctx, actor, models.PermManageForms); err != nil {
		return err
	}
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return err
	}
	remaining, err := forms.Delete(settings.AppForms, id)
	if err != nil {
		return err
	}
	settings.AppForms = remaining
	return s.store.Settings.Save(ctx, settings)
}

// AddField appends a field to a form.
func (s *Service) AddField(ctx context.Context, actor *models.UserAccount, formID string, label string, typ models.FieldType, placeholder string, required bool, options []string) (*models.AppField, error) {
	if err := s.authorize(ctx, actor, models.PermManageForms); err != nil {
		return nil, err
	}
	var added models.AppField
	err := s.mutateForm(ctx, formID, func(f *models.AppForm) error {
		added = forms.AddField(f, label, typ, placeholder, required, options)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateField replaces a field wholesale.
func (s *Service) UpdateField(ctx context.Context, actor *models.UserAccount, formID string, field models.AppField) error {
	if err := s.authorize(ctx, actor, models.PermManageForms); err != nil {
		return err
	}
	return s.mutateForm(ctx, formID, func(f *models.AppForm) error {
		return forms.UpdateField(f, field)
	})
}

// DeleteField removes one field from a form.
func (s *Service) DeleteField(ctx context.Context, actor *models.UserAccount, formID, fieldID string) error {
	if err := s.authorize(ctx, actor, models.PermManageForms); err != nil {
		return err
	}
	return s.mutateForm(ctx, formID, func(f *models.AppForm) error {
		return forms.DeleteField(f, fieldID)
	})
}

// MoveField reorders a field one position up or down.
func (s *Service) MoveField(ctx context.Context, actor *models.UserAccount, formID, fieldID, direction string) error {
	if err := s.authorize(ctx, actor, models.PermManageForms); err != nil {
		return err
	}
	return s.mutateForm(ctx, formID, func(f *models.AppForm) error {
		return forms.MoveField(f, fieldID, direction)
	})
}

// mutateForm loads settings, applies fn to the named form and persists.
func (s *Service) mutateForm(ctx context.Context, formID string, fn func(*models.AppForm) error) error {
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return err
	}
	form, err := forms.Find(settings.AppForms, formID)
	if err != nil {
		return err
	}
	if err := fn(form); err != nil {
		return err
	}
	return s.store.Settings.Save(ctx, settings)
}
