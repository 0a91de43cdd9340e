package session

import "github.com/charmbracelet/log"

// LogObserver is the default non-noop Observer: it emits every sent and
// received line to a structured log sink, satisfying spec §6's "verbose
// flag that ... emits each sent and received line to a log sink" without
// the caller having to write one. Firmware errors, malformed resend
// directives included, log louder since they indicate the firmware and
// host disagree about the stream; a well-formed resend directive is logged
// only as a received line.
type LogObserver struct {
	NoopObserver
	Logger *log.Logger
}

// NewLogObserver returns a LogObserver writing through logger. If logger
// is nil, log.Default() is used.
func NewLogObserver(logger *log.Logger) *LogObserver {
	if logger == nil {
		logger = log.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) OnSend(line string) { o.Logger.Debug("sent", "line", line) }
func (o *LogObserver) OnRecv(line string) { o.Logger.Debug("recv", "line", line) }
func (o *LogObserver) OnTemp(line string) { o.Logger.Info("temperature", "line", line) }
func (o *LogObserver) OnError(line string) { o.Logger.Warn("firmware error", "line", line) }
func (o *LogObserver) OnOnline()           { o.Logger.Info("printer online") }
func (o *LogObserver) OnStart()            { o.Logger.Info("print started") }
func (o *LogObserver) OnEnd()              { o.Logger.Info("print ended") }
