package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/mmuslimabdulj/goat-collab/internal/auth"
	"github.com/mmuslimabdulj/goat-collab/internal/delivery/ws"
	"github.com/mmuslimabdulj/goat-collab/internal/domain"
	"github.com/mmuslimabdulj/goat-collab/internal/usecase"
	"github.com/mmuslimabdulj/goat-collab/internal/view"
)

// isOriginAllowed checks if the origin is in the allowed list
func isOriginAllowed(origin string, allowed []string) bool {
	// Empty origin is allowed (same-origin requests, non-browser clients)
	if origin == "" {
		return true
	}
	return lo.Contains(allowed, "*") || lo.Contains(allowed, origin)
}

// Dependencies are the services the handlers expose over HTTP
type Dependencies struct {
	Rooms         *ws.RoomManager
	Admission     *usecase.Admission
	Events        ws.EventHandler
	Collaborators *usecase.Collaborators
	Projects      *usecase.Projects
	Verifier      usecase.TokenVerifier
}

// Options configures the handlers
type Options struct {
	AllowedOrigins []string
	Client         ws.ClientOptions
	GeneratorName  string

	// BaseContext is the parent of every connection's context
	BaseContext context.Context
}

type Handler struct {
	deps     Dependencies
	opts     Options
	upgrader websocket.Upgrader
	started  time.Time
	log      *slog.Logger
}

func NewHandler(deps Dependencies, opts Options, log *slog.Logger) *Handler {
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	h := &Handler{
		deps:    deps,
		opts:    opts,
		started: time.Now(),
		log:     log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return isOriginAllowed(r.Header.Get("Origin"), h.opts.AllowedOrigins)
		},
	}
	return h
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the status matching err. Only user-safe text is exposed.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := usecase.StatusCode(err)
	resp := errorResponse{Error: http.StatusText(status), Message: "Request failed"}

	var admissionErr *usecase.AdmissionError
	var eventErr *usecase.EventError
	switch {
	case errors.As(err, &admissionErr):
		resp.Error = string(admissionErr.Code)
		resp.Message = admissionMessage(admissionErr.Code)
	case errors.As(err, &eventErr):
		resp.Message = eventErr.Text
	case errors.Is(err, auth.ErrMissingCredential), errors.Is(err, auth.ErrInvalidCredential):
		status = http.StatusUnauthorized
		resp.Error = http.StatusText(status)
		resp.Message = "Authentication required"
	case status == http.StatusInternalServerError:
		h.log.Error("Request failed", "error", err)
	default:
		resp.Message = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}

func admissionMessage(code usecase.AdmissionCode) string {
	switch code {
	case usecase.CodeMissingCredential:
		return "Authentication error: token required"
	case usecase.CodeInvalidCredential:
		return "Authentication error: invalid token"
	default:
		return "Invalid projectId"
	}
}

// authenticate resolves the caller of a REST request
func (h *Handler) authenticate(r *http.Request) (domain.User, error) {
	credential := auth.CredentialFromRequest(r)
	if credential == "" {
		return domain.User{}, auth.ErrMissingCredential
	}
	return h.deps.Verifier.Verify(credential)
}

// HandleStatus serves the status page
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	stats := h.deps.Rooms.Stats()
	rows := make([]view.RoomRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, view.RoomRow{ProjectID: s.ID, Participants: s.Participants})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	component := view.Status(view.StatusData{
		Rooms:     rows,
		Generator: h.opts.GeneratorName,
		Started:   h.started,
		Now:       time.Now(),
	})
	if err := component.Render(r.Context(), w); err != nil {
		h.log.Error("Render status page", "error", err)
	}
}

// HandleGetProject returns a project with its collaborators and file tree
func (h *Handler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	details, err := h.deps.Projects.Get(r.Context(), r.PathValue("id"), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": details})
}

// HandleAddCollaborator adds a collaborator by email and announces it to the live room
func (h *Handler) HandleAddCollaborator(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req domain.AddCollaboratorPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Bad Request", Message: "Invalid request"})
		return
	}

	added, err := h.deps.Collaborators.Add(r.Context(), r.PathValue("id"), user, req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Collaborator added successfully",
		"user":    added,
	})
}

// HandleWebSocket admits the caller into the project room and upgrades
// HTTP to WebSocket. Refused connections never get upgraded.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	credential := auth.CredentialFromRequest(r)
	projectID := r.URL.Query().Get("projectId")

	participant, err := h.deps.Admission.Admit(r.Context(), credential, projectID)
	if err != nil {
		h.log.Debug("Connection refused", "project_id", projectID, "error", err)
		h.writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already answered with an HTTP error
		h.log.Debug("Upgrade failed", "project_id", projectID, "error", err)
		return
	}

	client := ws.NewClient(participant, conn, h.deps.Rooms, h.deps.Events, h.opts.Client, h.log)
	if _, err := h.deps.Rooms.Join(client); err != nil {
		h.log.Error("Join room", "project_id", projectID, "error", err)
		conn.Close()
		return
	}

	// Start read/write pumps in goroutines
	go client.WritePump()
	go client.ReadPump(h.opts.BaseContext)
}
