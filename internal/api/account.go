package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/auth"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/uploads"
)

// AccountHandler serves login, password reset and the caller's settings.
type AccountHandler struct {
	svc   *auth.Service
	files *uploads.Store
}

// Login handles POST /api/login.
//
//	@Summary		Exchange credentials for a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	errResponse
//	@Router			/login [post]
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "login", err)
		return
	}
	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: u})
}

// Verify handles GET /api/auth/verify.
func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, "verify", err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: true, User: u})
}

// RequestPasswordReset handles POST /api/auth/request-password-reset.
// Unknown addresses are answered with 404.
func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "request reset", err)
		return
	}
	if req.Email == "" {
		writeError(w, "request reset", apperr.Invalid("email", "cannot be blank"))
		return
	}
	err := h.svc.RequestPasswordReset(r.Context(), req.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("no account with that email address"))
		return
	}
	if err != nil {
		writeError(w, "request reset", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "password reset email sent"})
}

// VerifyResetToken handles GET /api/auth/verify-reset-token?token=.
func (h *AccountHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.VerifyResetToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, "verify reset token", err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: ok})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "reset password", err)
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, "reset password", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "password has been reset"})
}

// Settings handles GET /api/user/settings.
func (h *AccountHandler) Settings(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateSettings handles PUT /api/user/settings, JSON or multipart with an
// "avatar" file.
func (h *AccountHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var upd auth.SettingsUpdate
	f, err := decodeBody(w, r, &upd, "avatar", uploads.Avatar)
	if err != nil {
		writeError(w, "update settings", err)
		return
	}
	var saved string
	if f != nil {
		if saved, err = h.files.Save(f); err != nil {
			writeError(w, "update settings", err)
			return
		}
		upd.Avatar = &saved
	}

	u, replaced, err := h.svc.UpdateSettings(r.Context(), claimsFrom(r.Context()).UserID, upd)
	if err != nil {
		h.remove(saved)
		writeError(w, "update settings", err)
		return
	}
	if replaced != "" && replaced != saved {
		h.remove(replaced)
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateTheme handles PUT /api/user/theme.
func (h *AccountHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update theme", err)
		return
	}
	u, err := h.svc.UpdateTheme(r.Context(), claimsFrom(r.Context()).UserID, req.Theme, req.Cursor)
	if err != nil {
		writeError(w, "update theme", err)
		return
	}
	writeJSON(w, http.StatusOK, u.Settings)
}

// ChangePassword handles PUT /api/user/password.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "change password", err)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), claimsFrom(r.Context()).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, "change password", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "password updated"})
}

// ResetTemplate handles GET /api/email-templates/password-reset.
func (h *AccountHandler) ResetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.PasswordResetTemplate(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, "get template", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateResetTemplate handles PUT /api/email-templates/password-reset.
func (h *AccountHandler) UpdateResetTemplate(w http.ResponseWriter, r *http.Request) {
	var t models.EmailTemplate
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, "update template", err)
		return
	}
	out, err := h.svc.UpdatePasswordResetTemplate(r.Context(), claimsFrom(r.Context()).UserID, t)
	if err != nil {
		writeError(w, "update template", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AccountHandler) remove(webPath string) {
	if webPath == "" {
		return
	}
	if err := h.files.Remove(webPath); err != nil {
		slog.Warn("remove upload failed", slog.String("path", webPath), slog.String("error", err.Error()))
	}
}
