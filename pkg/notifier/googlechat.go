package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"signal-desk/pkg/httpclient"
)

type googleChatPayload struct {
	Text string `json:"text"`
}

// GoogleChat posts messages to an incoming webhook of a Google Chat space.
type GoogleChat struct {
	webhookURL string
	httpClient httpclient.HTTPClient
}

func NewGoogleChat(webhookURL string, timeout time.Duration, retryCount int) *GoogleChat {
	return &GoogleChat{
		webhookURL: webhookURL,
		httpClient: httpclient.New("", timeout, httpclient.WithRetry(retryCount)),
	}
}

func (g *GoogleChat) Name() string {
	return "google_chat"
}

func (g *GoogleChat) Notify(ctx context.Context, msg Message) error {
	text := msg.Text
	if msg.Title != "" {
		text = fmt.Sprintf("*%s*\n%s", msg.Title, msg.Text)
	}

	resp, err := g.httpClient.Post(ctx, g.webhookURL, googleChatPayload{Text: text}, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to post google chat message: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: google chat status %d: %s", ErrRejected, resp.StatusCode, string(resp.Body))
	}
	return nil
}
