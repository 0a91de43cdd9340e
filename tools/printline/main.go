// Command printline streams a G-code file to 3D-printer firmware over a
// serial connection, handling the line-numbering/checksum/resend
// handshake so the host never outruns the firmware.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/robodone/printline/gcodefile"
	"github.com/robodone/printline/pkg/config"
	"github.com/robodone/printline/session"
	"github.com/robodone/printline/transport"
)

var (
	configPath = flag.String("config", "printline.yaml", "path to a YAML config file")
	port       = flag.String("port", "", "serial device, e.g. /dev/ttyUSB0 (overrides config)")
	baud       = flag.Int("baud", 0, "baud rate (overrides config)")
	gcodePath  = flag.String("gcode", "", "G-code file to print")
	native     = flag.Bool("native", false, "use the raw termios backend instead of go.bug.st/serial (linux only)")
	verbose    = flag.Bool("verbose", false, "log every sent and received line")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		failf("load config: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.Port == "" {
		failf("no serial port given: pass --port or set \"port\" in %s", *configPath)
	}

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})
	if lvl, err := charmlog.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	t, err := openTransport(cfg, *native)
	if err != nil {
		failf("open %s: %v", cfg.Port, err)
	}

	sess := session.NewSession(session.NewLogObserver(logger))
	sess.Connect(t)
	defer sess.Disconnect()

	waitOnline(sess, cfg.ConnectTimeout(), logger)

	if *gcodePath == "" {
		logger.Info("connected, no --gcode given, exiting")
		return
	}

	lines, err := gcodefile.Load(*gcodePath)
	if err != nil {
		failf("load %s: %v", *gcodePath, err)
	}
	if !sess.StartPrint(lines) {
		failf("could not start print (already printing, not connected, or firmware never came online)")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			logger.Warn("interrupted, pausing")
			sess.Pause()
			return
		case <-ticker.C:
			sent, total := sess.Progress()
			logger.Infof("progress: %d/%d", sent, total)
			if !sess.Printing() {
				logger.Info("print complete")
				return
			}
		}
	}
}

func openTransport(cfg *config.Config, useNative bool) (transport.Transport, error) {
	if useNative {
		return openNativeLinux(cfg)
	}
	return transport.OpenSerial(cfg.Port, cfg.Baud, cfg.ConnectTimeout())
}

func waitOnline(sess *session.Session, timeout time.Duration, logger *charmlog.Logger) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if sess.Online() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	logger.Warn("firmware did not announce itself within the connect timeout, continuing anyway")
}

func failf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
	os.Exit(1)
}
