package logger

import (
	"fmt"
	"sort"
	"strings"

	"signal-desk/pkg/common"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AlertSink receives log entries that were tagged for alerting.
type AlertSink interface {
	Alert(title, text string)
}

type AlertCore struct {
	core     zapcore.Core
	sink     AlertSink
	minLevel zapcore.Level
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		core:     a.core.With(fields),
		sink:     a.sink,
		minLevel: a.minLevel,
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	shouldSend := false
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			shouldSend = true
			break
		}
	}
	if entry.Level >= a.minLevel && shouldSend && a.sink != nil {
		a.sink.Alert(fmt.Sprintf("%s Alert", entry.Level.CapitalString()), formatAlert(entry, fields))
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func formatAlert(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Message: %s\n", entry.Message))
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("• %s: %v\n", k, enc.Fields[k]))
	}
	sb.WriteString(fmt.Sprintf("Time: %s", entry.Time.Format("2006-01-02 15:04:05")))
	return sb.String()
}

// WithAlert returns a logger whose entries tagged with the alert field are also
// forwarded to sink when they are at or above minLevel.
func (l *Logger) WithAlert(sink AlertSink, minLevel zapcore.Level) *Logger {
	wrapped := l.Logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &AlertCore{core: core, sink: sink, minLevel: minLevel}
	}))
	return &Logger{wrapped}
}
