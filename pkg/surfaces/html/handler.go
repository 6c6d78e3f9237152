package html

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-prefs/pkg/form"
	"github.com/goliatone/go-prefs/pkg/snapshot"
)

// Handler serves a settings form over HTTP. Requests are serialised because
// the registry and surface are single-threaded.
type Handler struct {
	mu       sync.Mutex
	sync     *form.Sync
	surface  *Surface
	readonly bool
	logger   *slog.Logger

	pending error
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// ReadOnly serves the table without inputs and rejects submissions.
func ReadOnly() HandlerOption {
	return func(h *Handler) {
		h.readonly = true
	}
}

// NewHandler wires fs to surface. When fs runs in auto-save mode, pass
// Handler.AutoSaveError to form.WithAutoSaveErrorHandler so rejected
// submissions reach the client.
func NewHandler(fs *form.Sync, surface *Surface, opts ...HandlerOption) *Handler {
	h := &Handler{sync: fs, surface: surface, logger: surface.logger}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// AutoSaveError records the first auto-save failure of the submission being
// served.
func (h *Handler) AutoSaveError(err error) {
	if h.pending == nil {
		h.pending = err
	}
}

// Register mounts the settings routes on r under path.
func (h *Handler) Register(r *mux.Router, path string) {
	path = "/" + strings.Trim(path, "/")
	r.HandleFunc(path, h.ServeForm).Methods(http.MethodGet)
	r.HandleFunc(path, h.ServeSubmit).Methods(http.MethodPost)
	r.HandleFunc(path+"/snapshot", h.ServeSnapshot).Methods(http.MethodGet)
	r.HandleFunc(path+"/reset", h.ServeReset).Methods(http.MethodPost)
}

// ServeForm renders the current registry values.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sync.Render(h.surface, h.readonly); err != nil {
		h.fail(w, "render settings", err)
		return
	}
	h.writeSurface(w, http.StatusOK)
}

// ServeSubmit applies a form submission. Valid submissions redirect back to
// the form; invalid ones re-render the submitted values with the offending
// field focused and status 422.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	if h.readonly {
		http.Error(w, "settings are read-only", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Start from the committed values so only submitted edits count as
	// changes.
	if err := h.sync.Render(h.surface, false); err != nil {
		h.fail(w, "render settings", err)
		return
	}

	h.pending = nil
	changed := h.surface.Submit(r.PostForm)
	err := h.pending
	if !h.sync.AutoSave() {
		err = h.sync.ReadAll(h.surface)
	}
	h.pending = nil

	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		h.surface.SetMessage(verr.Error())
		h.writeSurface(w, http.StatusUnprocessableEntity)
	case err != nil:
		h.fail(w, "save settings", err)
	default:
		h.logger.Info("settings saved", "changed", changed)
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
	}
}

// ServeSnapshot returns the current snapshot as JSON, or YAML with
// ?format=yaml.
func (h *Handler) ServeSnapshot(w http.ResponseWriter, r *http.Request) {
	format := snapshot.FormatJSON
	contentType := "application/json"
	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		format = snapshot.FormatYAML
		contentType = "application/yaml"
	}

	h.mu.Lock()
	data, err := h.sync.Registry().ToSnapshot().Encode(format)
	h.mu.Unlock()
	if err != nil {
		h.fail(w, "encode snapshot", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// ServeReset restores every default and redirects to the form.
func (h *Handler) ServeReset(w http.ResponseWriter, r *http.Request) {
	if h.readonly {
		http.Error(w, "settings are read-only", http.StatusMethodNotAllowed)
		return
	}
	h.mu.Lock()
	h.sync.Registry().ResetToDefault()
	h.mu.Unlock()

	target := strings.TrimSuffix(r.URL.Path, "/reset")
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) writeSurface(w http.ResponseWriter, status int) {
	markup, err := h.surface.Render()
	if err != nil {
		h.fail(w, "render settings surface", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(markup))
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
