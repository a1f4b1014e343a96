package routes

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/emeraldsmp/portal/pkg/auth"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/portal"
)

type UserRoutes struct {
	Service    *portal.Service
	Middleware *auth.Middleware
}

func (ur UserRoutes) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(ur.Middleware.Authenticated)

	r.Get("/@me", ur.GetSelf)
	r.Get("/", ur.List)
	r.Post("/", ur.Create)
	r.Patch("/{id}", ur.Update)
	r.Patch("/{id}/role", ur.UpdateRole)
	r.Patch("/{id}/password", ur.UpdatePassword)
	r.Post("/{id}/member-id", ur.AssignMemberID)
	r.Delete("/{id}", ur.Delete)

	return r
}

func (ur UserRoutes) GetSelf(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.User(r.Context()))
}

func (ur UserRoutes) List(w http.ResponseWriter, r *http.Request) {
	users, err := ur.Service.Users(r.Context(), auth.User(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type CreateUserPayload struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

func (ur UserRoutes) Create(w http.ResponseWriter, r *http.Request) {
	var pl CreateUserPayload
	if !decode(w, r, &pl) {
		return
	}

	user, err := ur.Service.CreateUser(r.Context(), auth.User(r.Context()), portal.CreateUserInput{
		DisplayName: pl.DisplayName,
		Email:       pl.Email,
		Password:    pl.Password,
		Role:        pl.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type UpdateUserPayload struct {
	DisplayName *string            `json:"display_name"`
	Email       *string            `json:"email"`
	Status      *models.UserStatus `json:"status"`
}

func (ur UserRoutes) Update(w http.ResponseWriter, r *http.Request) {
	var pl UpdateUserPayload
	if !decode(w, r, &pl) {
		return
	}

	err := ur.Service.UpdateUserInfo(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), portal.UserUpdate{
		DisplayName: pl.DisplayName,
		Email:       pl.Email,
		Status:      pl.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type UpdateRolePayload struct {
	Role string `json:"role"`
}

func (ur UserRoutes) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var pl UpdateRolePayload
	if !decode(w, r, &pl) {
		return
	}

	err := ur.Service.UpdateUserRole(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), pl.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type UpdatePasswordPayload struct {
	Password string `json:"password"`
}

func (ur UserRoutes) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var pl UpdatePasswordPayload
	if !decode(w, r, &pl) {
		return
	}

	err := ur.Service.UpdateUserPassword(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"), pl.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type MemberIDPayload struct {
	MemberID string `json:"member_id"`
}

func (ur UserRoutes) AssignMemberID(w http.ResponseWriter, r *http.Request) {
	memberID, err := ur.Service.AssignMemberID(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MemberIDPayload{MemberID: memberID})
}

func (ur UserRoutes) Delete(w http.ResponseWriter, r *http.Request) {
	err := ur.Service.DeleteUser(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
