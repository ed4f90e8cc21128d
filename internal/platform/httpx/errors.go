package httpx

import (
	"errors"
	"net/http"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// RespondError maps domain error kinds onto stable status codes. Conflicts
// and validation failures both surface as 400; anything unrecognised
// collapses to a generic 500 without leaking store internals.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "invalid email or password")
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
