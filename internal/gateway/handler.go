package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/af-corp/voicechat-gateway/internal/config"
	"github.com/af-corp/voicechat-gateway/internal/conversation"
	"github.com/af-corp/voicechat-gateway/internal/httputil"
	"github.com/af-corp/voicechat-gateway/internal/provider"
	"github.com/af-corp/voicechat-gateway/internal/security"
	"github.com/af-corp/voicechat-gateway/internal/telemetry"
)

// Handler holds dependencies for the gateway HTTP handlers.
type Handler struct {
	store       *conversation.Store
	client      provider.Client
	validator   func() *security.Validator
	providerCfg func() config.ProviderConfig
	chatCfg     func() config.ChatConfig
	metrics     *telemetry.Metrics
	version     string
}

func NewHandler(store *conversation.Store, client provider.Client, validator func() *security.Validator, providerCfg func() config.ProviderConfig, chatCfg func() config.ChatConfig, metrics *telemetry.Metrics, version string) *Handler {
	return &Handler{
		store:       store,
		client:      client,
		validator:   validator,
		providerCfg: providerCfg,
		chatCfg:     chatCfg,
		metrics:     metrics,
		version:     version,
	}
}

// Health handles GET /
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Message:   "Voice Chat API is running",
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// Transcribe handles POST /transcribe
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	reqID := httputil.RequestIDFrom(r)

	if h.providerCfg().APIKey == "" {
		httputil.WriteKind(w, reqID, httputil.KindConfig, "OpenAI API key not configured")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.rejectValidation(w, reqID, "upload", httputil.New(httputil.KindValidation, "Audio file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read upload", "request_id", reqID, "error", err)
		httputil.WriteKind(w, reqID, httputil.KindInternal, "Failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		h.rejectValidation(w, reqID, "upload", httputil.New(httputil.KindValidation, "Empty audio file"))
		return
	}

	if err := h.validator().ValidateUpload(data, header.Filename); err != nil {
		h.rejectValidation(w, reqID, "upload", err)
		return
	}

	// The upload lives in a scoped temp file for the duration of the
	// provider call and is removed on every exit path.
	tmp, err := os.CreateTemp("", "voicechat-*.wav")
	if err != nil {
		slog.Error("failed to create temp file", "request_id", reqID, "error", err)
		httputil.WriteKind(w, reqID, httputil.KindInternal, "Failed to process uploaded file")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		slog.Error("failed to write temp file", "request_id", reqID, "error", err)
		httputil.WriteKind(w, reqID, httputil.KindInternal, "Failed to process uploaded file")
		return
	}
	if err := tmp.Close(); err != nil {
		slog.Error("failed to close temp file", "request_id", reqID, "error", err)
		httputil.WriteKind(w, reqID, httputil.KindInternal, "Failed to process uploaded file")
		return
	}

	audio, err := os.Open(tmpPath)
	if err != nil {
		slog.Error("failed to reopen temp file", "request_id", reqID, "error", err)
		httputil.WriteKind(w, reqID, httputil.KindInternal, "Failed to process uploaded file")
		return
	}
	defer audio.Close()

	start := time.Now()
	transcript, err := h.client.Transcribe(r.Context(), audio, header.Filename)
	h.recordProviderCall("transcribe", err, time.Since(start))
	if err != nil {
		h.writeProviderError(w, reqID, "transcribe", err)
		return
	}

	slog.Info("transcription completed",
		"request_id", reqID,
		"filename", header.Filename,
		"size_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// An empty transcript is a valid provider result, passed through as-is.
	httputil.WriteJSON(w, http.StatusOK, transcribeResponse{Transcript: transcript})
}

// Chat handles POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	reqID := httputil.RequestIDFrom(r)

	if h.providerCfg().APIKey == "" {
		httputil.WriteKind(w, reqID, httputil.KindConfig, "OpenAI API key not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rejectValidation(w, reqID, "body", httputil.New(httputil.KindValidation, "Invalid JSON body"))
		return
	}

	sanitized, err := h.validator().ValidateMessage(req.Message)
	if err != nil {
		h.rejectValidation(w, reqID, "message", err)
		return
	}

	convID := req.ConversationID
	if convID == "" {
		convID = conversation.DefaultID
	}

	chatCfg := h.chatCfg()
	recent := h.store.Recent(convID, chatCfg.ContextEntries)

	messages := make([]provider.Message, 0, len(recent)+2)
	messages = append(messages, provider.Message{Role: "system", Content: chatCfg.SystemPrompt})
	for _, entry := range recent {
		messages = append(messages, provider.Message{Role: string(entry.Role), Content: entry.Content})
	}
	messages = append(messages, provider.Message{Role: "user", Content: sanitized})

	start := time.Now()
	reply, err := h.client.Complete(r.Context(), messages)
	h.recordProviderCall("complete", err, time.Since(start))
	if err != nil {
		h.writeProviderError(w, reqID, "chat", err)
		return
	}

	// An empty completion is substituted, not surfaced as a failure.
	if strings.TrimSpace(reply) == "" {
		reply = chatCfg.FallbackReply
	}

	h.store.AppendExchange(convID, sanitized, reply)

	slog.Info("chat completed",
		"request_id", reqID,
		"conversation_id", convID,
		"context_entries", len(recent),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, chatResponse{Response: reply})
}

// ClearConversation handles POST /chat/clear
func (h *Handler) ClearConversation(w http.ResponseWriter, r *http.Request) {
	convID := r.FormValue("conversationId")
	if convID == "" {
		convID = conversation.DefaultID
	}

	h.store.Clear(convID)

	slog.Info("conversation cleared",
		"request_id", httputil.RequestIDFrom(r),
		"conversation_id", convID,
	)

	httputil.WriteJSON(w, http.StatusOK, clearResponse{
		Message:        "Conversation cleared",
		ConversationID: convID,
	})
}

func (h *Handler) rejectValidation(w http.ResponseWriter, reqID, check string, err error) {
	slog.Warn("request rejected by validation",
		"request_id", reqID,
		"check", check,
		"error", err,
	)
	if h.metrics != nil {
		h.metrics.RecordValidationReject(check)
	}
	httputil.WriteError(w, reqID, err)
}

// writeProviderError classifies an upstream failure and answers with the
// matching error kind. The raw upstream detail is logged, never returned.
func (h *Handler) writeProviderError(w http.ResponseWriter, reqID, operation string, err error) {
	var perr *provider.Error
	if errors.As(err, &perr) {
		slog.Error("provider request failed",
			"request_id", reqID,
			"operation", operation,
			"status", perr.StatusCode,
			"detail", perr.Message,
		)
		switch perr.StatusCode {
		case http.StatusUnauthorized:
			httputil.WriteKind(w, reqID, httputil.KindAuthentication, "Invalid OpenAI API key")
		case http.StatusTooManyRequests:
			httputil.WriteKind(w, reqID, httputil.KindRateLimit, "Rate limit exceeded. Please try again later.")
		default:
			httputil.WriteKind(w, reqID, httputil.KindService, "AI service is temporarily unavailable. Please try again.")
		}
		return
	}

	slog.Error("provider request failed",
		"request_id", reqID,
		"operation", operation,
		"error", err,
	)
	if errors.Is(err, context.DeadlineExceeded) {
		httputil.WriteKind(w, reqID, httputil.KindService, "The AI service took too long to respond. Please try again.")
		return
	}
	httputil.WriteKind(w, reqID, httputil.KindService, "AI service is temporarily unavailable. Please try again.")
}

func (h *Handler) recordProviderCall(operation string, err error, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	h.metrics.RecordProviderCall(operation, outcome, float64(elapsed.Milliseconds()))
}

type healthResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type clearResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}
