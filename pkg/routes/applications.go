package routes

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/emeraldsmp/portal/pkg/auth"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/portal"
)

type ApplicationRoutes struct {
	Service    *portal.Service
	Middleware *auth.Middleware
}

func (ar ApplicationRoutes) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(ar.Middleware.Authenticated)

	r.Get("/", ar.List)
	r.Post("/", ar.Submit)
	r.Get("/mine", ar.Mine)
	r.Get("/stats", ar.Stats)
	r.Post("/bulk-delete", ar.BulkDelete)
	r.Get("/{id}", ar.Get)
	r.Patch("/{id}", ar.Update)
	r.Delete("/{id}", ar.Delete)

	r.Get("/{id}/chat", ar.Chat)
	r.Post("/{id}/chat/messages", ar.SendMessage)
	r.Post("/{id}/chat/status", ar.SetChatStatus)
	r.Patch("/{id}/chat/status", ar.SetChatStatus)
	r.Delete("/{id}/chat", ar.DeleteChat)

	return r
}

func (ar ApplicationRoutes) List(w http.ResponseWriter, r *http.Request) {
	entries, err := ar.Service.Applications(r.Context(), auth.User(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type SubmitPayload struct {
	FormID    string            `json:"form_id"`
	Responses map[string]string `json:"responses"`
}

func (ar ApplicationRoutes) Submit(w http.ResponseWriter, r *http.Request) {
	var pl SubmitPayload
	if !decode(w, r, &pl) {
		return
	}

	entry, err := ar.Service.Submit(r.Context(), auth.User(r.Context()), pl.FormID, pl.Responses)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (ar ApplicationRoutes) Mine(w http.ResponseWriter, r *http.Request) {
	entries, err := ar.Service.UserApplications(r.Context(), auth.User(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (ar ApplicationRoutes) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := ar.Service.Stats(r.Context(), auth.User(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (ar ApplicationRoutes) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := ar.Service.GetApplication(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type ReviewPayload struct {
	Status       *models.ApplicationStatus `json:"status"`
	Notes        *string                   `json:"notes"`
	AdminMessage *string                   `json:"admin_message"`
}

func (ar ApplicationRoutes) Update(w http.ResponseWriter, r *http.Request) {
	var pl ReviewPayload
	if !decode(w, r, &pl) {
		return
	}

	entry, err := ar.Service.UpdateApplication(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), portal.ReviewUpdate{
		Status:       pl.Status,
		Notes:        pl.Notes,
		AdminMessage: pl.AdminMessage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (ar ApplicationRoutes) Delete(w http.ResponseWriter, r *http.Request) {
	if err := ar.Service.DeleteApplication(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type BulkDeletePayload struct {
	IDs []string `json:"ids"`
}

func (ar ApplicationRoutes) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var pl BulkDeletePayload
	if !decode(w, r, &pl) {
		return
	}

	if err := ar.Service.DeleteApplications(r.Context(), auth.User(r.Context()), pl.IDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ar ApplicationRoutes) Chat(w http.ResponseWriter, r *http.Request) {
	chat, err := ar.Service.Chat(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

type SendMessagePayload struct {
	Text string `json:"text"`
}

func (ar ApplicationRoutes) SendMessage(w http.ResponseWriter, r *http.Request) {
	var pl SendMessagePayload
	if !decode(w, r, &pl) {
		return
	}

	chat, err := ar.Service.SendMessage(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), pl.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

type ChatStatusPayload struct {
	Status models.ChatStatus `json:"status"`
}

func (ar ApplicationRoutes) SetChatStatus(w http.ResponseWriter, r *http.Request) {
	var pl ChatStatusPayload
	if !decode(w, r, &pl) {
		return
	}

	chat, err := ar.Service.SetChatStatus(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), pl.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (ar ApplicationRoutes) DeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := ar.Service.DeleteChat(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
