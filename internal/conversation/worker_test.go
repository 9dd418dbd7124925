package conversation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"litman/internal/logging"
	"litman/internal/services"
	"litman/internal/services/llm"
	"litman/internal/stage"
)

func testOptions() Options {
	return Options{Timeout: 60 * time.Second, MaxTokens: 4096, Temperature: 0, TargetLanguage: "Chinese"}
}

type stubCompleter struct {
	reply string
	err   error
	calls int
	last  llm.Request
}

func (s *stubCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.calls++
	s.last = req
	return s.reply, s.err
}

func TestChatRequestCarriesContent(t *testing.T) {
	client := &stubCompleter{reply: "The method is a transformer."}
	svc := NewService(client, testOptions(), logging.NewNop())

	out := svc.Worker(ModeChat, "paper body", "What is the method?").Run(context.Background(), stage.NewToken())
	if out.Status != stage.StatusSucceeded {
		t.Fatalf("expected success, got %s", out)
	}
	payload := out.Payload.(stage.ConversationPayload)
	if payload.Tag != "chat" || payload.Reply != "The method is a transformer." {
		t.Fatalf("unexpected payload %+v", payload)
	}
	msgs := client.last.Messages
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[0].Content != "paper body" || msgs[1].Content != "What is the method?" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if client.last.MaxTokens != 4096 || client.last.Temperature != 0 || client.last.Timeout != 60*time.Second {
		t.Fatalf("unexpected request settings %+v", client.last)
	}
}

func TestTranslationOmitsContent(t *testing.T) {
	client := &stubCompleter{reply: "translated"}
	svc := NewService(client, testOptions(), logging.NewNop())

	out := svc.Worker(ModeTranslate, "paper body", "A passage.").Run(context.Background(), stage.NewToken())
	if out.Payload.(stage.ConversationPayload).Tag != "translation" {
		t.Fatalf("unexpected payload %+v", out.Payload)
	}
	for _, msg := range client.last.Messages {
		if strings.Contains(msg.Content, "paper body") {
			t.Fatalf("translation must not include document content: %+v", client.last.Messages)
		}
	}
	if client.last.Messages[0].Content != translationSystemPrompt {
		t.Fatalf("expected translation system prompt, got %q", client.last.Messages[0].Content)
	}
	if !strings.Contains(client.last.Messages[1].Content, "A passage.") {
		t.Fatalf("passage missing from user message %+v", client.last.Messages[1])
	}
}

func TestFailureClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   services.ErrorKind
		wantPrefix string
	}{
		{
			name:       "timeout",
			err:        fmt.Errorf("%w: no response within 60s", services.ErrNetworkTimeout),
			wantKind:   services.KindNetworkTimeout,
			wantPrefix: "request timed out, check network connection",
		},
		{
			name:       "http",
			err:        &llm.StatusError{StatusCode: 401, Body: "invalid api key"},
			wantKind:   services.KindHTTPError,
			wantPrefix: "api request failed: invalid api key",
		},
		{
			name:       "rate limited",
			err:        &llm.StatusError{StatusCode: 429, Body: "slow down"},
			wantKind:   services.KindRateLimited,
			wantPrefix: "api request failed: slow down",
		},
		{
			name:       "malformed",
			err:        fmt.Errorf("%w: empty choices", services.ErrMalformedResponse),
			wantKind:   services.KindUnexpected,
			wantPrefix: "unexpected error: ",
		},
		{
			name:       "transport",
			err:        &llm.TransportError{Err: errors.New("connection refused")},
			wantKind:   services.KindUnexpected,
			wantPrefix: "unexpected error: transport: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubCompleter{err: tt.err}
			svc := NewService(client, testOptions(), logging.NewNop())
			out := svc.Worker(ModeChat, "c", "q").Run(context.Background(), stage.NewToken())
			if out.Status != stage.StatusFailed {
				t.Fatalf("expected failure, got %s", out)
			}
			if out.Failure.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", out.Failure.Kind, tt.wantKind)
			}
			if !strings.HasPrefix(out.Failure.Message, tt.wantPrefix) {
				t.Fatalf("message = %q, want prefix %q", out.Failure.Message, tt.wantPrefix)
			}
			if client.calls != 1 {
				t.Fatalf("expected exactly one attempt, got %d", client.calls)
			}
		})
	}
}

func TestTimeoutAgainstSlowServer(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client := llm.NewClient(llm.Config{APIKey: "test", BaseURL: server.URL, Model: "m"})
	opts := testOptions()
	opts.Timeout = 50 * time.Millisecond
	svc := NewService(client, opts, logging.NewNop())

	out := svc.Worker(ModeChat, "c", "q").Run(context.Background(), stage.NewToken())
	if out.Status != stage.StatusFailed || out.Failure.Message != "request timed out, check network connection" {
		t.Fatalf("expected timeout failure, got %+v", out)
	}
}

func TestCancelledBeforeAttempt(t *testing.T) {
	client := &stubCompleter{reply: "unused"}
	svc := NewService(client, testOptions(), logging.NewNop())
	token := stage.NewToken()
	token.Cancel()

	out := svc.Worker(ModeChat, "c", "q").Run(context.Background(), token)
	if out.Status != stage.StatusCancelled || out.Attempts != 0 || client.calls != 0 {
		t.Fatalf("expected Cancelled(0) without calls, got %+v calls=%d", out, client.calls)
	}
}

func TestModeTags(t *testing.T) {
	if ModeChat.RequestTag() != "chat" || ModeTranslate.RequestTag() != "translation-request" {
		t.Fatal("unexpected request tags")
	}
}
