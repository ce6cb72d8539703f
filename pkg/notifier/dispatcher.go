package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"signal-desk/pkg/logger"
	"signal-desk/pkg/metrics"
	"signal-desk/pkg/utils"
)

// Dispatcher fans a message out to every configured notifier.
type Dispatcher struct {
	notifiers []Notifier
	log       *logger.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewDispatcher(log *logger.Logger, timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		notifiers: notifiers,
		log:       log,
		timeout:   timeout,
	}
}

// Channels returns the names of the configured notifiers.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}

// Send delivers msg to every notifier and returns the joined errors.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			metrics.NotificationsTotal.WithLabelValues(n.Name(), "failed").Inc()
			d.log.WarnContext(ctx, "Failed to send notification",
				logger.StringField("channel", n.Name()),
				logger.StringField("title", msg.Title),
				logger.ErrorField(err),
			)
			errs = append(errs, err)
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(n.Name(), "sent").Inc()
	}
	return errors.Join(errs...)
}

// Dispatch sends msg in the background. Delivery is best effort: failures are
// logged and counted, never returned.
func (d *Dispatcher) Dispatch(msg Message) {
	if len(d.notifiers) == 0 {
		return
	}
	d.wg.Add(1)
	utils.GoSafe(func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_ = d.Send(ctx, msg)
	})
}

// Alert implements logger.AlertSink.
func (d *Dispatcher) Alert(title, text string) {
	d.Dispatch(Message{Title: title, Text: text, Priority: PriorityHigh})
}

// Wait blocks until every in-flight Dispatch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
