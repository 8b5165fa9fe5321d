package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cropwise/models"
)

func TestSendAndAwaitReplySuccess(t *testing.T) {
	thread := NewThread("crop-1")

	reply, err := thread.SendAndAwaitReply(context.Background(), "how much water does wheat need?", func(ctx context.Context, text string) (string, error) {
		return "About 500mm per season.", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Role != models.RoleAssistant {
		t.Errorf("expected assistant reply, got %s", reply.Role)
	}

	messages := thread.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages after settled send, got %d", len(messages))
	}
	if messages[0].Role != models.RoleUser || messages[1].Role != models.RoleAssistant {
		t.Errorf("expected user then assistant, got %s then %s", messages[0].Role, messages[1].Role)
	}
}

func TestSendAndAwaitReplyFailureAppendsFallback(t *testing.T) {
	thread := NewThread("crop-1")

	reply, err := thread.SendAndAwaitReply(context.Background(), "hello", func(ctx context.Context, text string) (string, error) {
		return "", errors.New("connection refused")
	})
	if err == nil {
		t.Fatal("expected transport error to be surfaced")
	}

	// The thread must never end with a trailing unanswered user message.
	messages := thread.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages after failed send, got %d", len(messages))
	}
	if reply.Role != models.RoleAssistant {
		t.Errorf("expected a synthesized assistant fallback, got role %s", reply.Role)
	}
	if reply.Text == "" {
		t.Error("fallback message must carry text")
	}
}

func TestSendAndAwaitReplyRejectsConcurrentSend(t *testing.T) {
	thread := NewThread("crop-1")

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		thread.SendAndAwaitReply(context.Background(), "first", func(ctx context.Context, text string) (string, error) {
			close(started)
			<-release
			return "ok", nil
		})
	}()

	<-started
	_, err := thread.SendAndAwaitReply(context.Background(), "second", func(ctx context.Context, text string) (string, error) {
		return "should not run", nil
	})
	if err != ErrSendInFlight {
		t.Errorf("expected ErrSendInFlight, got %v", err)
	}

	close(release)
	wg.Wait()

	// Only the first send's pair should be in the log.
	if got := thread.Len(); got != 2 {
		t.Errorf("expected 2 messages, got %d", got)
	}
}

func TestMessagesOrderedByTimestampWithInsertionTiebreak(t *testing.T) {
	thread := NewThread("crop-1")
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	thread.AppendAt(models.RoleUser, "later", base.Add(time.Minute))
	thread.AppendAt(models.RoleUser, "earlier", base)
	thread.AppendAt(models.RoleAssistant, "earlier-reply", base)

	messages := thread.Messages()
	if messages[0].Text != "earlier" || messages[1].Text != "earlier-reply" || messages[2].Text != "later" {
		t.Errorf("unexpected order: %q, %q, %q", messages[0].Text, messages[1].Text, messages[2].Text)
	}
}
