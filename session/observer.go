package session

// Observer lets a supervisor watch protocol events without being on the
// critical path of the handshake. All methods are optional in spirit:
// embed NoopObserver to get no-op defaults and override only what you
// need. Callbacks run on the Receiver or Sender goroutine directly; they
// must not block indefinitely and must not call back into the Session's
// blocking methods (Send, SendNow, Pause, ...).
type Observer interface {
	// OnSend fires once per whole line written to the transport, after
	// the write succeeds: numbered, checksummed, raw or resent alike.
	OnSend(line string)

	// OnRecv fires once per whole line read from the transport, before
	// it is otherwise interpreted.
	OnRecv(line string)

	// OnTemp fires on every "ok" response that also contains "T:",
	// with the complete line.
	OnTemp(line string)

	// OnError fires on every line beginning with "Error".
	OnError(line string)

	// OnOnline fires once, on the online transition (first "start" or "ok").
	OnOnline()

	// OnStart fires once per Sender run, before its first iteration.
	OnStart()

	// OnEnd fires once per Sender run, after it exits.
	OnEnd()
}

// NoopObserver implements Observer with no-ops. Embed it in a partial
// observer to avoid implementing methods you don't care about.
type NoopObserver struct{}

func (NoopObserver) OnSend(string) {}
func (NoopObserver) OnRecv(string) {}
func (NoopObserver) OnTemp(string) {}
func (NoopObserver) OnError(string) {}
func (NoopObserver) OnOnline()     {}
func (NoopObserver) OnStart()      {}
func (NoopObserver) OnEnd()        {}
