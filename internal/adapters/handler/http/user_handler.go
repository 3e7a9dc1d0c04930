package http

import (
	"errors"
	"net/http"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// GetMe godoc
// @Summary      Returns the signed-in account
// @Tags         users
// @Success      200
// @Failure      401
// @Failure      404
// @Router       /api/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context(), identityFromContext(r.Context()))
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Unauthorized: missing user context")
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to fetch user: "+err.Error())
	default:
		writeJSON(w, http.StatusOK, user)
	}
}
