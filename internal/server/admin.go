package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/toolsuite/pagebuilder/internal/editor"
	"github.com/toolsuite/pagebuilder/internal/history"
	"github.com/toolsuite/pagebuilder/internal/view"
)

// maxRequestBodySize limits incoming request bodies (1MB).
const maxRequestBodySize = 1 << 20

// AdminHandler exposes the editor's operations to the dashboard frontend.
// Every route delegates to the state machine; this layer only parses paths
// and shapes responses.
type AdminHandler struct {
	ed    *editor.Editor
	ctrl  *view.ListController
	store *history.Store // may be nil
}

// NewAdminHandler creates the admin API surface.
func NewAdminHandler(ed *editor.Editor, ctrl *view.ListController, store *history.Store) *AdminHandler {
	return &AdminHandler{ed: ed, ctrl: ctrl, store: store}
}

// ServeHTTP routes admin requests.
// Paths: /admin/sections, /admin/sections/{id}/{action}, /admin/history.
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/admin/")

	switch {
	case path == "sections" && r.Method == http.MethodGet:
		h.handleRows(w, r)
	case path == "sections/reload" && r.Method == http.MethodPost:
		h.respond(w, r, "reload", h.ed.Load(r.Context()))
	case path == "sections/save-all" && r.Method == http.MethodPost:
		h.respond(w, r, "save-all", h.ed.SaveAll(r.Context()))
	case path == "history" && r.Method == http.MethodGet:
		h.handleHistory(w, r)
	case strings.HasPrefix(path, "sections/"):
		h.handleSectionAction(w, r, strings.TrimPrefix(path, "sections/"))
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *AdminHandler) handleRows(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"page_key": h.ed.PageKey(),
		"loading":  h.ed.IsLoading(),
		"pending":  h.ed.PendingCount(),
		"rows":     h.ctrl.Rows(),
	})
}

func (h *AdminHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, "history store disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	entries, err := h.store.Recent(r.Context(), h.ed.PageKey(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleSectionAction dispatches /admin/sections/{id}/{action}.
func (h *AdminHandler) handleSectionAction(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.SplitN(rest, "/", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid section id")
		return
	}
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "data" && r.Method == http.MethodPut:
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		h.ed.SetFieldData(id, data)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case action == "data" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"data": h.ed.LiveData(id)})
	case action == "save" && r.Method == http.MethodPost:
		h.respond(w, r, "save", h.ed.SaveOne(r.Context(), id))
	case action == "discard" && r.Method == http.MethodPost:
		h.ed.DiscardChanges(id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case action == "toggle" && r.Method == http.MethodPost:
		h.respond(w, r, "toggle", h.ed.ToggleVisibility(r.Context(), id))
	case action == "duplicate" && r.Method == http.MethodPost:
		h.respond(w, r, "duplicate", h.ed.Duplicate(r.Context(), id))
	case action == "delete" && r.Method == http.MethodPost:
		h.ctrl.RequestDelete(id)
		h.respond(w, r, "delete", h.ctrl.ConfirmDelete(r.Context()))
	case action == "move" && r.Method == http.MethodPost:
		dir := editor.Direction(r.URL.Query().Get("direction"))
		if dir != editor.MoveUp && dir != editor.MoveDown {
			writeError(w, http.StatusBadRequest, "direction must be up or down")
			return
		}
		h.respond(w, r, "move", h.ed.MoveSection(r.Context(), id, dir))
	case action == "expand" && r.Method == http.MethodPost:
		h.ctrl.ToggleExpand(id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "expanded": h.ctrl.ExpandedID()})
	default:
		writeError(w, http.StatusNotFound, "unknown action")
	}
}

// respond reports a settled operation outcome. The state machine has already
// surfaced the failure through the notification channel; this only mirrors
// it to the caller.
func (h *AdminHandler) respond(w http.ResponseWriter, _ *http.Request, op string, err error) {
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "operation": op, "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "operation": op})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[Server] error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Printf("[Server] error encoding error response: %v", err)
	}
}
