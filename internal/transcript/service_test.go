package transcript

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/chatrelay/internal/model"
)

// --- モック ---

type mockChatRepo struct {
	appendFn     func(ctx context.Context, turn *model.ChatTurn) error
	listByUserFn func(ctx context.Context, userID int64) ([]model.ChatTurn, error)
}

func (m *mockChatRepo) Append(ctx context.Context, turn *model.ChatTurn) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, turn)
	}
	return nil
}
func (m *mockChatRepo) ListByUser(ctx context.Context, userID int64) ([]model.ChatTurn, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []model.ChatTurn{}, nil
}

// --- テスト ---

// TestAppend_Success は発言が現在時刻付きで保存されることを検証する。
func TestAppend_Success(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var saved *model.ChatTurn
	repo := &mockChatRepo{
		appendFn: func(ctx context.Context, turn *model.ChatTurn) error {
			saved = turn
			return nil
		},
	}
	svc := NewService(repo)
	svc.now = func() time.Time { return fixed }

	turn, err := svc.Append(context.Background(), 7, "hello", model.SenderUser)
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected turn to be persisted")
	}
	if turn.UserID != 7 {
		t.Errorf("UserID = %d, want 7", turn.UserID)
	}
	if turn.Message != "hello" {
		t.Errorf("Message = %q, want %q", turn.Message, "hello")
	}
	if turn.Sender != "user" {
		t.Errorf("Sender = %q, want %q", turn.Sender, "user")
	}
	if !turn.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", turn.Timestamp, fixed)
	}
}

// TestAppend_FreeFormSender はsenderが既知の値に限定されないことを検証する。
func TestAppend_FreeFormSender(t *testing.T) {
	var saved *model.ChatTurn
	repo := &mockChatRepo{
		appendFn: func(ctx context.Context, turn *model.ChatTurn) error {
			saved = turn
			return nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Append(context.Background(), 7, "hi", "assistant-v2")
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if saved.Sender != "assistant-v2" {
		t.Errorf("Sender = %q, want %q", saved.Sender, "assistant-v2")
	}
}

// TestAppend_InvalidTurn は空のmessage/senderが保存前に拒否されることを検証する。
func TestAppend_InvalidTurn(t *testing.T) {
	tests := []struct {
		name    string
		message string
		sender  string
	}{
		{"empty message", "", "user"},
		{"empty sender", "hello", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appendCalled := false
			repo := &mockChatRepo{
				appendFn: func(ctx context.Context, turn *model.ChatTurn) error {
					appendCalled = true
					return nil
				},
			}
			svc := NewService(repo)

			_, err := svc.Append(context.Background(), 7, tt.message, tt.sender)
			if !errors.Is(err, ErrInvalidTurn) {
				t.Errorf("err = %v, want ErrInvalidTurn", err)
			}
			if appendCalled {
				t.Error("Append should not touch the store for invalid input")
			}
		})
	}
}

// TestListFor_ReturnsTurns は履歴がそのまま返されることを検証する。
func TestListFor_ReturnsTurns(t *testing.T) {
	want := []model.ChatTurn{
		{ID: 1, UserID: 7, Message: "hi", Sender: "user"},
		{ID: 2, UserID: 7, Message: "hello", Sender: "bot"},
	}
	repo := &mockChatRepo{
		listByUserFn: func(ctx context.Context, userID int64) ([]model.ChatTurn, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want 7", userID)
			}
			return want, nil
		},
	}
	svc := NewService(repo)

	got, err := svc.ListFor(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListFor returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Message != "hi" || got[1].Message != "hello" {
		t.Errorf("unexpected history order: %+v", got)
	}
}

// TestListFor_Empty は履歴なしが空スライスになることを検証する。
func TestListFor_Empty(t *testing.T) {
	svc := NewService(&mockChatRepo{})

	got, err := svc.ListFor(context.Background(), 99)
	if err != nil {
		t.Fatalf("ListFor returned error: %v", err)
	}
	if got == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
