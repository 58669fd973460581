package notifications

import (
	"github.com/rs/zerolog"

	"github.com/b0bbywan/go-usbwatch/history"
	"github.com/b0bbywan/go-usbwatch/logger"
)

// LogSink writes each notification as a log line.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{log: logger.WithComponent("notifications")}
}

func (l *LogSink) NotifyInfo(identity string, status history.Status) {
	l.log.Info().Str("identity", identity).Stringer("status", status).Msg(InfoMessage(identity, status))
}

func (l *LogSink) NotifyProblem(identity string) {
	l.log.Warn().Str("identity", identity).Msg(ProblemMessage(identity))
}
