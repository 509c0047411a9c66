package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/teamgrid/teamgrid/internal/domain"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

// WorkspaceHandler handles HTTP requests for workspace lifecycle operations.
// Creation and reactivation drive the schema provisioner; everything else is
// registry work in the shared schema.
type WorkspaceHandler struct {
	repo        domain.WorkspaceRepository
	provisioner domain.SchemaProvisioner
	rootDomain  string
	logger      logger.Logger
}

// NewWorkspaceHandler creates a new workspace handler. rootDomain is the
// public apex used to build workspace URLs; empty disables the url field.
func NewWorkspaceHandler(
	repo domain.WorkspaceRepository,
	provisioner domain.SchemaProvisioner,
	rootDomain string,
	logger logger.Logger,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		repo:        repo,
		provisioner: provisioner,
		rootDomain:  rootDomain,
		logger:      logger,
	}
}

func (h *WorkspaceHandler) workspacePayload(workspace *domain.Workspace) map[string]interface{} {
	payload := map[string]interface{}{"workspace": workspace}
	if h.rootDomain != "" {
		payload["url"] = fmt.Sprintf("https://%s.%s", workspace.Slug, h.rootDomain)
	}
	return payload
}

type createWorkspaceRequest struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type workspaceIDRequest struct {
	ID string `json:"id"`
}

// RegisterRoutes registers all workspace RPC-style routes
func (h *WorkspaceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/workspaces.create", h.handleCreate)
	mux.HandleFunc("/api/workspaces.list", h.handleList)
	mux.HandleFunc("/api/workspaces.get", h.handleGet)
	mux.HandleFunc("/api/workspaces.activate", h.handleActivate)
	mux.HandleFunc("/api/workspaces.deactivate", h.handleDeactivate)
	mux.HandleFunc("/api/workspaces.delete", h.handleDelete)
}

// handleCreate registers the workspace and provisions its schema. The
// registry row is written first so a provisioning crash leaves a row whose
// schema gets lazily rebuilt, never an orphan schema without a row.
func (h *WorkspaceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	workspace := &domain.Workspace{
		ID:   uuid.New().String(),
		Slug: req.Slug,
		Name: req.Name,
	}

	if err := h.repo.Create(r.Context(), workspace); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.provisioner.CreateTenantSchema(r.Context(), workspace.Slug); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, h.workspacePayload(workspace))
}

func (h *WorkspaceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspaces, err := h.repo.List(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"workspaces": workspaces})
}

func (h *WorkspaceHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())
	if workspace == nil {
		writeDomainError(w, h.logger, domain.ErrMissingTenant)
		return
	}

	WriteJSON(w, http.StatusOK, h.workspacePayload(workspace))
}

// handleActivate reactivates a workspace. If its schema was reaped by data
// retention while deactivated, provisioning rebuilds it empty; a schema that
// survived is left untouched.
func (h *WorkspaceHandler) handleActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req workspaceIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	workspace, err := h.repo.GetByID(r.Context(), req.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.repo.SetActive(r.Context(), workspace.ID, true); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.provisioner.EnsureTenantSchema(r.Context(), workspace.Slug); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

func (h *WorkspaceHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req workspaceIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetActive(r.Context(), req.ID, false); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// handleDelete soft-deletes the registry row and tears down the schema.
// The drop is irreversible; deactivation and export confirmation are the
// caller's responsibility before reaching this point.
func (h *WorkspaceHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req workspaceIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	workspace, err := h.repo.GetByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			WriteJSONError(w, "workspace not found", http.StatusNotFound)
			return
		}
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.repo.Delete(r.Context(), workspace.ID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.provisioner.DropTenantSchema(r.Context(), workspace.Slug); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
