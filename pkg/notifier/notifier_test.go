package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"signal-desk/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleChat_Notify(t *testing.T) {
	var got googleChatPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/spaces/abc/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"spaces/abc/messages/1"}`))
	}))
	defer srv.Close()

	chat := NewGoogleChat(srv.URL+"/v1/spaces/abc/messages", time.Second, 0)
	err := chat.Notify(context.Background(), Message{Title: "BUY NEM", Text: "qty 10"})
	require.NoError(t, err)
	assert.Equal(t, "*BUY NEM*\nqty 10", got.Text)
}

func TestGoogleChat_NotifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()

	chat := NewGoogleChat(srv.URL, time.Second, 0)
	err := chat.Notify(context.Background(), Message{Text: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestPushover_Notify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		priority int
		wantPrio string
		wantErr  bool
	}{
		{
			name:     "accepted with default priority",
			response: `{"status":1,"request":"647d2300-702c-4b38-8b2f-d56326ae460b"}`,
			priority: PriorityNormal,
			wantPrio: "0",
		},
		{
			name:     "accepted with explicit priority",
			response: `{"status":1,"request":"x"}`,
			priority: PriorityHigh,
			wantPrio: "1",
		},
		{
			name:     "rejected",
			response: `{"user":"invalid","errors":["user identifier is invalid"],"status":0}`,
			wantPrio: "0",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/1/messages.json", r.URL.Path)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "app-token", r.PostForm.Get("token"))
				assert.Equal(t, "user-key", r.PostForm.Get("user"))
				assert.Equal(t, "sold 5 NEM", r.PostForm.Get("message"))
				assert.Equal(t, "Trade", r.PostForm.Get("title"))
				assert.Equal(t, tt.wantPrio, r.PostForm.Get("priority"))
				w.Header().Set("Content-Type", "application/json")
				if tt.wantErr {
					w.WriteHeader(http.StatusBadRequest)
				}
				_, _ = w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			p := NewPushover(srv.URL, "app-token", "user-key", 0, time.Second, 0)
			err := p.Notify(context.Background(), Message{Title: "Trade", Text: "sold 5 NEM", Priority: tt.priority})
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRejected)
				assert.Contains(t, err.Error(), "user identifier is invalid")
				return
			}
			require.NoError(t, err)
		})
	}
}

type fakeSender struct {
	chatID int64
	text   string
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, message string, opts ...interface{}) error {
	f.chatID = chatID
	f.text = message
	return nil
}

func TestTelegram_Notify(t *testing.T) {
	sender := &fakeSender{}
	tg := NewTelegram(sender, 42)

	require.NoError(t, tg.Notify(context.Background(), Message{Title: "Signal", Text: "NEM BUY"}))
	assert.Equal(t, int64(42), sender.chatID)
	assert.Equal(t, "Signal\nNEM BUY", sender.text)
}

type recordingNotifier struct {
	name string
	err  error
	mu   sync.Mutex
	msgs []Message
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestDispatcher(t *testing.T) {
	ok := &recordingNotifier{name: "ok"}
	failing := &recordingNotifier{name: "failing", err: errors.New("boom")}
	d := NewDispatcher(logger.Nop(), time.Second, ok, failing)

	assert.Equal(t, []string{"ok", "failing"}, d.Channels())

	t.Run("send joins errors but reaches every channel", func(t *testing.T) {
		err := d.Send(context.Background(), Message{Text: "sync"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.Equal(t, 1, ok.count())
		assert.Equal(t, 1, failing.count())
	})

	t.Run("dispatch is fire and forget", func(t *testing.T) {
		d.Dispatch(Message{Text: "async"})
		d.Alert("Error Alert", "db down")
		d.Wait()
		assert.Equal(t, 3, ok.count())
		assert.Equal(t, 3, failing.count())
		high := 0
		for _, m := range ok.msgs {
			if m.Priority == PriorityHigh {
				high++
			}
		}
		assert.Equal(t, 1, high)
	})

	t.Run("no notifiers is a no-op", func(t *testing.T) {
		empty := NewDispatcher(logger.Nop(), 0)
		empty.Dispatch(Message{Text: "nobody"})
		empty.Wait()
		assert.NoError(t, empty.Send(context.Background(), Message{Text: "nobody"}))
	})
}
