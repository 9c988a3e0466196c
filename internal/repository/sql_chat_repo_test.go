package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/chatrelay/internal/model"
)

// TestSQLChatRepo_AppendAndList は追記した発言がtimestamp昇順で
// 再生されることを検証する。
func TestSQLChatRepo_AppendAndList(t *testing.T) {
	db := newTestDB(t)
	user := mustCreateUser(t, db, "alice@example.com")
	repo := NewSQLChatRepo(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)

	// 意図的に時系列と逆順で追記する
	turns := []*model.ChatTurn{
		{UserID: user.ID, Message: "third", Sender: "bot", Timestamp: base.Add(2 * time.Second)},
		{UserID: user.ID, Message: "first", Sender: "user", Timestamp: base},
		{UserID: user.ID, Message: "second", Sender: "user", Timestamp: base.Add(time.Second)},
	}
	for _, turn := range turns {
		if err := repo.Append(ctx, turn); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
		if turn.ID == 0 {
			t.Error("expected non-zero turn ID after Append")
		}
	}

	got, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if got[i].Message != want {
			t.Errorf("got[%d].Message = %q, want %q", i, got[i].Message, want)
		}
	}
}

// TestSQLChatRepo_SameTimestampOrder は同時刻の発言が挿入順で
// 安定することを検証する。
func TestSQLChatRepo_SameTimestampOrder(t *testing.T) {
	db := newTestDB(t)
	user := mustCreateUser(t, db, "alice@example.com")
	repo := NewSQLChatRepo(db)
	ctx := context.Background()

	ts := time.Now().UTC().Truncate(time.Second)
	for _, msg := range []string{"a", "b", "c"} {
		turn := &model.ChatTurn{UserID: user.ID, Message: msg, Sender: "user", Timestamp: ts}
		if err := repo.Append(ctx, turn); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	got, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Message != "a" || got[1].Message != "b" || got[2].Message != "c" {
		t.Errorf("unexpected order: %q, %q, %q", got[0].Message, got[1].Message, got[2].Message)
	}
}

// TestSQLChatRepo_UserIsolation は他ユーザーの発言が混入しないことを検証する。
func TestSQLChatRepo_UserIsolation(t *testing.T) {
	db := newTestDB(t)
	alice := mustCreateUser(t, db, "alice@example.com")
	bob := mustCreateUser(t, db, "bob@example.com")
	repo := NewSQLChatRepo(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	if err := repo.Append(ctx, &model.ChatTurn{UserID: alice.ID, Message: "from alice", Sender: "user", Timestamp: now}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if err := repo.Append(ctx, &model.ChatTurn{UserID: bob.ID, Message: "from bob", Sender: "user", Timestamp: now}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	got, err := repo.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Message != "from alice" {
		t.Errorf("Message = %q, want %q", got[0].Message, "from alice")
	}
}

// TestSQLChatRepo_ListByUser_Empty は履歴なしが空スライスになることを検証する。
func TestSQLChatRepo_ListByUser_Empty(t *testing.T) {
	db := newTestDB(t)
	user := mustCreateUser(t, db, "alice@example.com")
	repo := NewSQLChatRepo(db)

	got, err := repo.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if got == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

// TestSQLChatRepo_SenderRoundTrip はsenderの値が加工されずに往復することを検証する。
func TestSQLChatRepo_SenderRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := mustCreateUser(t, db, "alice@example.com")
	repo := NewSQLChatRepo(db)
	ctx := context.Background()

	turn := &model.ChatTurn{
		UserID:    user.ID,
		Message:   "hi",
		Sender:    "assistant-v2",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.Append(ctx, turn); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	got, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Sender != "assistant-v2" {
		t.Errorf("Sender = %q, want %q", got[0].Sender, "assistant-v2")
	}
}
