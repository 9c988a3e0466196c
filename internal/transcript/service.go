// Package transcript はユーザーごとのチャット履歴の保存と再生を提供する。
package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/chatrelay/internal/model"
	"github.com/hitoshi/chatrelay/internal/repository"
)

// ErrInvalidTurn はmessageまたはsenderが空の保存要求を表す。
// 書き込み前に検証され、ストアには一切触れない。
var ErrInvalidTurn = errors.New("message and sender are required")

// Service はチャット履歴に関するビジネスロジックを提供する。
type Service struct {
	chatRepo repository.ChatRepository
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(chatRepo repository.ChatRepository) *Service {
	return &Service{
		chatRepo: chatRepo,
		now:      time.Now,
	}
}

// Append は発言を1件追記する。
// senderの検証は空文字チェックのみで、値そのものは制約しない。
// クライアントや外部バックエンドが与えた文字列をそのまま往復させる。
func (s *Service) Append(ctx context.Context, userID int64, message, sender string) (*model.ChatTurn, error) {
	if message == "" || sender == "" {
		return nil, ErrInvalidTurn
	}

	turn := &model.ChatTurn{
		UserID:    userID,
		Message:   message,
		Sender:    sender,
		Timestamp: s.now(),
	}

	if err := s.chatRepo.Append(ctx, turn); err != nil {
		return nil, fmt.Errorf("failed to save chat turn: %w", err)
	}

	return turn, nil
}

// ListFor は指定ユーザーの履歴をtimestamp昇順で返す。
// 履歴が無い場合は空スライス（エラーではない）。
func (s *Service) ListFor(ctx context.Context, userID int64) ([]model.ChatTurn, error) {
	turns, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return turns, nil
}
