package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/chatrelay/internal/middleware"
	"github.com/hitoshi/chatrelay/internal/model"
	"github.com/hitoshi/chatrelay/internal/transcript"
)

// TranscriptServiceInterface はチャットハンドラーが必要とする履歴サービスインターフェース。
type TranscriptServiceInterface interface {
	Append(ctx context.Context, userID int64, message, sender string) (*model.ChatTurn, error)
	ListFor(ctx context.Context, userID int64) ([]model.ChatTurn, error)
}

// RelayClientInterface はAI中継クライアントのインターフェース。
type RelayClientInterface interface {
	Relay(ctx context.Context, userID int64, payload map[string]any) ([]byte, error)
}

// ChatMetrics はチャットイベントのメトリクス記録に必要なインターフェース。
type ChatMetrics interface {
	RecordTurnSaved()
}

// ChatHandler はチャット履歴とAI中継のHTTPハンドラー。
type ChatHandler struct {
	transcripts TranscriptServiceInterface
	relay       RelayClientInterface
	metrics     ChatMetrics // nil可
}

// NewChatHandler はChatHandlerを生成する。
func NewChatHandler(transcripts TranscriptServiceInterface, relay RelayClientInterface, metrics ChatMetrics) *ChatHandler {
	return &ChatHandler{
		transcripts: transcripts,
		relay:       relay,
		metrics:     metrics,
	}
}

// historyItem は履歴レスポンスの1要素。
type historyItem struct {
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// saveMessageRequest はチャット保存リクエストのボディ。
type saveMessageRequest struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// History は現在のユーザーのチャット履歴をtimestamp昇順で返す。
// GET /history
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, middleware.AuthRedirectPath, http.StatusFound)
		return
	}

	turns, err := h.transcripts.ListFor(r.Context(), id.UserID)
	if err != nil {
		slog.Error("failed to load chat history",
			slog.Int64("user_id", id.UserID),
			slog.String("error", err.Error()),
		)
		writeAPIError(w, model.NewInternalError("Failed to load chat history."))
		return
	}

	items := make([]historyItem, 0, len(turns))
	for _, turn := range turns {
		items = append(items, historyItem{
			Message:   turn.Message,
			Sender:    turn.Sender,
			Timestamp: turn.Timestamp,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": items})
}

// SaveMessage はチャット発言を1件保存する。
// POST /save_message
func (h *ChatHandler) SaveMessage(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, middleware.AuthRedirectPath, http.StatusFound)
		return
	}

	var req saveMessageRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if _, err := h.transcripts.Append(r.Context(), id.UserID, req.Message, req.Sender); err != nil {
		if errors.Is(err, transcript.ErrInvalidTurn) {
			writeAPIError(w, model.NewInvalidMessageError())
			return
		}
		slog.Error("failed to save message",
			slog.Int64("user_id", id.UserID),
			slog.String("error", err.Error()),
		)
		writeAPIError(w, model.NewInternalError("Failed to save message."))
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTurnSaved()
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// RelayTurn は任意のAIターンペイロードを外部バックエンドに中継する。
// セッション由来のuserIdが常に注入され、クライアントの自称は上書きされる。
// 成功時は外部レスポンスのJSONボディをそのまま返す。
// 失敗の分類はログにのみ残り、ユーザーには常に一般メッセージを返す。
// この操作自体は履歴への書き込みを行わない（保存は/save_messageの責務）。
// POST /get
func (h *ChatHandler) RelayTurn(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, middleware.AuthRedirectPath, http.StatusFound)
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, &model.APIError{
			Code:     model.ErrCodeInvalidMessage,
			Message:  "Invalid request body.",
			Category: "validation",
			Status:   http.StatusBadRequest,
		})
		return
	}

	body, err := h.relay.Relay(r.Context(), id.UserID, payload)
	if err != nil {
		// 分類済みの詳細はrelay側でログに残っている。
		writeAPIError(w, model.NewBackendError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
