// Package routes exposes the portal service over chi-mounted HTTP
// resources. Each resource is a struct with its dependencies injected
// and a Routes() method returning its subrouter.
package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emeraldsmp/portal/pkg/forms"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/portal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// writeError maps service errors onto status codes and the shared
// error payload shape.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var validation *forms.ValidationError

	switch {
	case errors.Is(err, portal.ErrInvalidCredentials),
		errors.Is(err, models.ErrProviderUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrProviderError):
		status = http.StatusBadGateway
	case errors.Is(err, portal.ErrPermissionDenied),
		errors.Is(err, portal.ErrChatAccessDenied),
		errors.Is(err, portal.ErrBannedRestricted),
		errors.Is(err, portal.ErrRegistrationClosed),
		errors.Is(err, portal.ErrLoginDisabled),
		errors.Is(err, portal.ErrOwnerImmutable),
		errors.Is(err, portal.ErrOwnerAssignment),
		errors.Is(err, portal.ErrAdminAssignment),
		errors.Is(err, portal.ErrAdminCeiling),
		errors.Is(err, portal.ErrOwnerUndeletable),
		errors.Is(err, portal.ErrOwnerProtected):
		status = http.StatusForbidden
	case errors.Is(err, portal.ErrUserNotFound),
		errors.Is(err, portal.ErrApplicationNotFound),
		errors.Is(err, forms.ErrFormNotFound),
		errors.Is(err, forms.ErrFieldNotFound):
		status = http.StatusNotFound
	case errors.Is(err, portal.ErrEmailExists),
		errors.Is(err, forms.ErrDuplicateFormID):
		status = http.StatusConflict
	case errors.Is(err, portal.ErrPasswordTooShort),
		errors.Is(err, portal.ErrNameRequired),
		errors.Is(err, portal.ErrUnknownRole),
		errors.Is(err, portal.ErrInvalidTransition),
		errors.Is(err, portal.ErrFormClosed),
		errors.Is(err, portal.ErrApplicationLimit),
		errors.Is(err, portal.ErrChatClosed),
		errors.Is(err, portal.ErrBuiltinRole),
		errors.Is(err, forms.ErrProtectedForm),
		errors.As(err, &validation):
		status = http.StatusBadRequest
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(models.CreateError(err.Error()))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}
