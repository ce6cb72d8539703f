package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"signal-desk/pkg/httpclient"

	"github.com/tidwall/gjson"
)

// Pushover sends push notifications through the Pushover messages API.
type Pushover struct {
	token           string
	user            string
	defaultPriority int
	httpClient      httpclient.HTTPClient
}

func NewPushover(baseURL, token, user string, defaultPriority int, timeout time.Duration, retryCount int) *Pushover {
	return &Pushover{
		token:           token,
		user:            user,
		defaultPriority: defaultPriority,
		httpClient:      httpclient.New(baseURL, timeout, httpclient.WithRetry(retryCount)),
	}
}

func (p *Pushover) Name() string {
	return "pushover"
}

func (p *Pushover) Notify(ctx context.Context, msg Message) error {
	priority := msg.Priority
	if priority == PriorityNormal {
		priority = p.defaultPriority
	}

	form := map[string]string{
		"token":    p.token,
		"user":     p.user,
		"message":  msg.Text,
		"priority": strconv.Itoa(priority),
	}
	if msg.Title != "" {
		form["title"] = msg.Title
	}

	resp, err := p.httpClient.PostForm(ctx, "/1/messages.json", form, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to post pushover message: %w", err)
	}

	// Pushover answers {"status":1,"request":"..."} on success, status 0 plus errors otherwise.
	body := gjson.ParseBytes(resp.Body)
	if body.Get("status").Int() != 1 {
		return fmt.Errorf("%w: pushover status %d: %s", ErrRejected, resp.StatusCode, body.Get("errors").String())
	}
	return nil
}
