// Package notifier sends short text messages to chat and push services.
package notifier

import (
	"context"
	"errors"
)

var ErrRejected = errors.New("notification rejected")

const (
	PriorityLow    = -1
	PriorityNormal = 0
	PriorityHigh   = 1
)

type Message struct {
	Title    string
	Text     string
	Priority int
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
	Name() string
}
