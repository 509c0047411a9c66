package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/teamgrid/teamgrid/internal/domain"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

// ChannelHandler handles HTTP requests for channels and membership. All
// operations run against the workspace resolved by the tenant middleware.
type ChannelHandler struct {
	channelRepo domain.ChannelRepository
	memberRepo  domain.MemberRepository
	logger      logger.Logger
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(
	channelRepo domain.ChannelRepository,
	memberRepo domain.MemberRepository,
	logger logger.Logger,
) *ChannelHandler {
	return &ChannelHandler{
		channelRepo: channelRepo,
		memberRepo:  memberRepo,
		logger:      logger,
	}
}

type createChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	CreatedBy   string `json:"created_by"`
}

type channelMemberRequest struct {
	ChannelID string `json:"channel_id"`
	MemberID  string `json:"member_id"`
}

type addMemberRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// RegisterRoutes registers all channel RPC-style routes
func (h *ChannelHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/channels.create", h.handleCreate)
	mux.HandleFunc("/api/channels.list", h.handleList)
	mux.HandleFunc("/api/channels.addMember", h.handleAddMember)
	mux.HandleFunc("/api/channels.removeMember", h.handleRemoveMember)
	mux.HandleFunc("/api/channels.members", h.handleMembers)
	mux.HandleFunc("/api/members.add", h.handleAddWorkspaceMember)
	mux.HandleFunc("/api/members.list", h.handleListWorkspaceMembers)
}

func (h *ChannelHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req createChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	channel := &domain.Channel{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   req.CreatedBy,
	}

	if err := h.channelRepo.Create(r.Context(), workspace, channel); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{"channel": channel})
}

func (h *ChannelHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	channels, err := h.channelRepo.List(r.Context(), workspace)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"channels": channels})
}

func (h *ChannelHandler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req channelMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.channelRepo.AddMember(r.Context(), workspace, req.ChannelID, req.MemberID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (h *ChannelHandler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req channelMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.channelRepo.RemoveMember(r.Context(), workspace, req.ChannelID, req.MemberID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *ChannelHandler) handleMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())
	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		WriteJSONError(w, "channel_id is required", http.StatusBadRequest)
		return
	}

	members, err := h.channelRepo.ListMembers(r.Context(), workspace, channelID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

func (h *ChannelHandler) handleAddWorkspaceMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role := domain.MemberRole(req.Role)
	if role == "" {
		role = domain.MemberRoleMember
	}

	member := &domain.Member{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Role:        role,
		IsActive:    true,
	}

	if err := h.memberRepo.Add(r.Context(), workspace, member); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{"member": member})
}

func (h *ChannelHandler) handleListWorkspaceMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	members, err := h.memberRepo.List(r.Context(), workspace)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}
