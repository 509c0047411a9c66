package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/teamgrid/teamgrid/internal/domain"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

// MessageHandler handles HTTP requests for messages, files and reactions.
type MessageHandler struct {
	messageRepo  domain.MessageRepository
	fileRepo     domain.FileRepository
	reactionRepo domain.ReactionRepository
	logger       logger.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	messageRepo domain.MessageRepository,
	fileRepo domain.FileRepository,
	reactionRepo domain.ReactionRepository,
	logger logger.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageRepo:  messageRepo,
		fileRepo:     fileRepo,
		reactionRepo: reactionRepo,
		logger:       logger,
	}
}

type sendMessageRequest struct {
	ChannelID string  `json:"channel_id"`
	MemberID  string  `json:"member_id"`
	Content   string  `json:"content"`
	Type      string  `json:"type"`
	ThreadID  *string `json:"thread_id,omitempty"`
}

type editMessageRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type messageIDRequest struct {
	ID string `json:"id"`
}

type reactRequest struct {
	MessageID string `json:"message_id"`
	MemberID  string `json:"member_id"`
	Emoji     string `json:"emoji"`
}

type attachFileRequest struct {
	ChannelID  string `json:"channel_id"`
	MemberID   string `json:"member_id"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
	StorageKey string `json:"storage_key"`
}

// RegisterRoutes registers all message RPC-style routes
func (h *MessageHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/messages.send", h.handleSend)
	mux.HandleFunc("/api/messages.list", h.handleList)
	mux.HandleFunc("/api/messages.edit", h.handleEdit)
	mux.HandleFunc("/api/messages.delete", h.handleDelete)
	mux.HandleFunc("/api/messages.thread", h.handleThread)
	mux.HandleFunc("/api/messages.react", h.handleReact)
	mux.HandleFunc("/api/messages.reactions", h.handleReactions)
	mux.HandleFunc("/api/files.attach", h.handleAttachFile)
	mux.HandleFunc("/api/files.list", h.handleListFiles)
}

func (h *MessageHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	messageType := domain.MessageType(req.Type)
	if messageType == "" {
		messageType = domain.MessageTypeText
	}

	message := &domain.Message{
		ID:        uuid.New().String(),
		ChannelID: req.ChannelID,
		MemberID:  req.MemberID,
		Content:   req.Content,
		Type:      messageType,
		ThreadID:  req.ThreadID,
	}

	if err := h.messageRepo.Create(r.Context(), workspace, message); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{"message": message})
}

func (h *MessageHandler) handleList(w http.ResponseWriter, r *http.Request) {
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

	var cursor *domain.MessageCursor
	if cursorID := r.URL.Query().Get("cursor_id"); cursorID != "" {
		cursorAt, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("cursor_at"))
		if err != nil {
			WriteJSONError(w, "invalid cursor_at", http.StatusBadRequest)
			return
		}
		cursor = &domain.MessageCursor{CreatedAt: cursorAt, ID: cursorID}
	}

	messages, err := h.messageRepo.ListByChannel(r.Context(), workspace, channelID, cursor, 0)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

func (h *MessageHandler) handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req editMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.messageRepo.Update(r.Context(), workspace, req.ID, req.Content); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "edited"})
}

func (h *MessageHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req messageIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.messageRepo.Delete(r.Context(), workspace, req.ID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *MessageHandler) handleThread(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	threadID := r.URL.Query().Get("thread_id")
	if threadID == "" {
		WriteJSONError(w, "thread_id is required", http.StatusBadRequest)
		return
	}

	messages, err := h.messageRepo.ListThread(r.Context(), workspace, threadID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

func (h *MessageHandler) handleReact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reaction := &domain.Reaction{
		ID:        uuid.New().String(),
		MessageID: req.MessageID,
		MemberID:  req.MemberID,
		Emoji:     req.Emoji,
	}

	added, err := h.reactionRepo.Toggle(r.Context(), workspace, reaction)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"reacted": added})
}

func (h *MessageHandler) handleReactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	messageID := r.URL.Query().Get("message_id")
	if messageID == "" {
		WriteJSONError(w, "message_id is required", http.StatusBadRequest)
		return
	}

	reactions, err := h.reactionRepo.ListByMessage(r.Context(), workspace, messageID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"reactions": reactions})
}

func (h *MessageHandler) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspace := domain.WorkspaceFromContext(r.Context())

	var req attachFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	file := &domain.File{
		ID:         uuid.New().String(),
		ChannelID:  req.ChannelID,
		MemberID:   req.MemberID,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		MimeType:   req.MimeType,
		StorageKey: req.StorageKey,
	}

	if err := h.fileRepo.Create(r.Context(), workspace, file); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{"file": file})
}

func (h *MessageHandler) handleListFiles(w http.ResponseWriter, r *http.Request) {
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

	files, err := h.fileRepo.ListByChannel(r.Context(), workspace, channelID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}
