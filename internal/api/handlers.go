package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/uploads"
)

// collection is the service surface shared by the content resources.
type collection[T portfolio.Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, p portfolio.Patch[T]) (T, error)
	UpdateIfMatch(ctx context.Context, id, etag string, p portfolio.Patch[T]) (T, T, error)
	Delete(ctx context.Context, id string) (T, error)
}

// attachment describes the optional file carried by a resource.
type attachment[T any, P any] struct {
	field  string
	policy uploads.Policy
	set    func(p *P, webPath string)
	get    func(rec T) string
}

// resourceHandler serves CRUD routes for one content collection.
type resourceHandler[T portfolio.Entity, P portfolio.Patch[T]] struct {
	name  string
	svc   collection[T]
	files *uploads.Store
	file  *attachment[T, P]
}

// List handles GET /{resource}. The response carries an ETag and honours
// If-None-Match.
func (h *resourceHandler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, "list "+h.name, err)
		return
	}
	writeTagged(w, r, items)
}

// Get handles GET /{resource}/{id}.
func (h *resourceHandler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get "+h.name, err)
		return
	}
	if tag, err := portfolio.ETag(rec); err == nil {
		w.Header().Set("ETag", tag)
	}
	writeJSON(w, http.StatusOK, rec)
}

// Create handles POST /{resource}, JSON or multipart.
func (h *resourceHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	var p P
	saved, err := h.decode(w, r, &p)
	if err != nil {
		writeError(w, "create "+h.name, err)
		return
	}
	rec, err := h.svc.Create(r.Context(), p)
	if err != nil {
		h.discard(saved)
		writeError(w, "create "+h.name, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Update handles PUT /{resource}/{id}. An If-Match header makes the update
// conditional on the record's current ETag.
func (h *resourceHandler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p P
	saved, err := h.decode(w, r, &p)
	if err != nil {
		writeError(w, "update "+h.name, err)
		return
	}
	rec, prev, err := h.svc.UpdateIfMatch(r.Context(), id, r.Header.Get("If-Match"), p)
	if err != nil {
		h.discard(saved)
		writeError(w, "update "+h.name, err)
		return
	}
	if saved != "" {
		if old := h.file.get(prev); old != "" && old != saved {
			h.discard(old)
		}
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /{resource}/{id}.
func (h *resourceHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, "delete "+h.name, err)
		return
	}
	if h.file != nil {
		h.discard(h.file.get(rec))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": h.name + " deleted", "id": id})
}

// decode reads the request into p. For resources with an attachment the
// file is validated before anything is written, then saved and its web path
// set on p. It returns the saved path, if any.
func (h *resourceHandler[T, P]) decode(w http.ResponseWriter, r *http.Request, p *P) (string, error) {
	if h.file == nil {
		return "", decodeJSON(w, r, p)
	}
	f, err := decodeBody(w, r, p, h.file.field, h.file.policy)
	if err != nil || f == nil {
		return "", err
	}
	webPath, err := h.files.Save(f)
	if err != nil {
		return "", err
	}
	h.file.set(p, webPath)
	return webPath, nil
}

func (h *resourceHandler[T, P]) discard(webPath string) {
	if webPath == "" || h.files == nil {
		return
	}
	if err := h.files.Remove(webPath); err != nil {
		slog.Warn("remove upload failed",
			slog.String("path", webPath),
			slog.String("error", err.Error()),
		)
	}
}

// writeTagged writes v as JSON with a strong ETag, answering 304 when the
// client already holds the same representation.
func writeTagged(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, "encode", err)
		return
	}
	tag := checksum.ETag(data)
	w.Header().Set("ETag", tag)
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}
