package routes

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/emeraldsmp/portal/pkg/auth"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/portal"
)

type FormRoutes struct {
	Service    *portal.Service
	Middleware *auth.Middleware
	Cache      SiteInvalidator
}

func (fr FormRoutes) Routes() chi.Router {
	r := chi.NewRouter()

	// form definitions are public so the submission page can render
	r.Get("/", fr.List)

	r.Group(func(r chi.Router) {
		r.Use(fr.Middleware.Authenticated)
		r.Post("/", fr.Create)
		r.Put("/", fr.SaveAll)
		r.Put("/{id}", fr.Update)
		r.Patch("/{id}", fr.Update)
		r.Delete("/{id}", fr.Delete)
		r.Post("/{id}/fields", fr.AddField)
		r.Put("/{id}/fields/{fieldID}", fr.UpdateField)
		r.Delete("/{id}/fields/{fieldID}", fr.DeleteField)
		r.Post("/{id}/fields/{fieldID}/move", fr.MoveField)
	})

	return r
}

func (fr FormRoutes) List(w http.ResponseWriter, r *http.Request) {
	fs, err := fr.Service.Forms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

type CreateFormPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (fr FormRoutes) Create(w http.ResponseWriter, r *http.Request) {
	var pl CreateFormPayload
	if !decode(w, r, &pl) {
		return
	}

	form, err := fr.Service.CreateForm(r.Context(), auth.User(r.Context()), pl.Name, pl.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, fr.Cache)
	writeJSON(w, http.StatusCreated, form)
}

func (fr FormRoutes) SaveAll(w http.ResponseWriter, r *http.Request) {
	var fs []models.AppForm
	if !decode(w, r, &fs) {
		return
	}

	if err := fr.Service.SaveForms(r.Context(), auth.User(r.Context()), fs); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, fr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

func (fr FormRoutes) Update(w http.ResponseWriter, r *http.Request) {
	var form models.AppForm
	if !decode(w, r, &form) {
		return
	}
	form.ID = chi.URLParam(r, "id")

	if err := fr.Service.UpdateForm(r.Context(), auth.User(r.Context()), form); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, fr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

func (fr FormRoutes) Delete(w http.ResponseWriter, r *http.Request) {
	if err := fr.Service.DeleteForm(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, fr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

type AddFieldPayload struct {
	Label       string           `json:"label"`
	Type        models.FieldType `json:"type"`
	Placeholder string           `json:"placeholder"`
	Required    bool             `json:"required"`
	Options     []string         `json:"options"`
}

func (fr FormRoutes) AddField(w http.ResponseWriter, r *http.Request) {
	var pl AddFieldPayload
	if !decode(w, r, &pl) {
		return
	}

	field, err := fr.Service.AddField(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), pl.Label, pl.Type, pl.Placeholder, pl.Required, pl.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, fr.Cache)
	writeJSON(w, http.StatusCreated, field)
}

func (fr FormRoutes) UpdateField(w http.ResponseWriter, r *http.Request) {
	var field models.AppField
	if !decode(w, r, &field) {
		return
	}
	field.ID = chi.URLParam(r, "fieldID")

	if err := fr.Service.UpdateField(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), field); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, fr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

func (fr FormRoutes) DeleteField(w http.ResponseWriter, r *http.Request) {
	if err := fr.Service.DeleteField(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "fieldID")); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, fr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

type MoveFieldPayload struct {
	Direction string `json:"direction"`
}

func (fr FormRoutes) MoveField(w http.ResponseWriter, r *http.Request) {
	var pl MoveFieldPayload
	if !decode(w, r, &pl) {
		return
	}

	if err := fr.Service.MoveField(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "fieldID"), pl.Direction); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, fr.Cache)
	w.WriteHeader(http.StatusNoContent)
}
