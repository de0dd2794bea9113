package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
)

// MessageHandler serves the contact form and the admin inbox.
type MessageHandler struct {
	svc *portfolio.Messages
}

// Contact handles POST /api/contact.
//
//	@Summary		Submit the contact form (mail first, then store)
//	@Tags			messages
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MessageRequest	true	"Message"
//	@Success		201		{object}	models.Message
//	@Failure		400		{object}	errResponse
//	@Failure		429		{object}	errResponse
//	@Router			/contact [post]
func (h *MessageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var in portfolio.MessagePatch
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, "contact", err)
		return
	}
	m, err := h.svc.Contact(r.Context(), in)
	if err != nil {
		writeError(w, "contact", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Create handles POST /api/messages. The message is stored before the
// notification is sent.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in portfolio.MessagePatch
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, "create message", err)
		return
	}
	m, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, "create message", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// List handles GET /api/messages.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, "list messages", err)
		return
	}
	writeTagged(w, r, items)
}

// UnreadCount handles GET /api/messages/unread-count.
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.UnreadCount(r.Context())
	if err != nil {
		writeError(w, "unread count", err)
		return
	}
	writeJSON(w, http.StatusOK, UnreadCountResponse{Count: n})
}

// ArchiveYears handles GET /api/messages/archive.
func (h *MessageHandler) ArchiveYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.ArchiveYears(r.Context())
	if err != nil {
		writeError(w, "archive years", err)
		return
	}
	writeJSON(w, http.StatusOK, ArchiveYearsResponse{Years: years})
}

// Archive handles GET /api/messages/archive/{year}.
func (h *MessageHandler) Archive(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1970 || year > 9999 {
		writeError(w, "archive", apperr.Invalid("year", "must be a four digit year"))
		return
	}
	items, err := h.svc.Archive(r.Context(), year)
	if err != nil {
		writeError(w, "archive", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/messages/{id}.
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get message", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// MarkRead handles PUT /api/messages/{id}/read.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "mark read", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /api/messages/{id}.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, "delete message", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "message deleted", "id": id})
}

// SiteHandler serves the stats counters and the personal info document.
type SiteHandler struct {
	stats    *portfolio.Stats
	personal *portfolio.PersonalInfo
}

// Stats handles GET /api/stats.
func (h *SiteHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Get(r.Context())
	if err != nil {
		writeError(w, "get stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Increment handles POST /api/stats/{counter}.
func (h *SiteHandler) Increment(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Increment(r.Context(), chi.URLParam(r, "counter"))
	if err != nil {
		writeError(w, "increment stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// PersonalInfo handles GET /api/personal-info.
func (h *SiteHandler) PersonalInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.personal.Get(r.Context())
	if err != nil {
		writeError(w, "get personal info", err)
		return
	}
	writeTagged(w, r, info)
}

// ReplacePersonalInfo handles PUT /api/personal-info.
func (h *SiteHandler) ReplacePersonalInfo(w http.ResponseWriter, r *http.Request) {
	var info models.PersonalInfo
	if err := decodeJSON(w, r, &info); err != nil {
		writeError(w, "replace personal info", err)
		return
	}
	out, err := h.personal.Replace(r.Context(), info)
	if err != nil {
		writeError(w, "replace personal info", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
