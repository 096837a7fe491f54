// Package notify renders engine events outside the terminal UI: the
// terminal bell, desktop notifications and an optional alarm sound.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/stefanpenner/tempo/pkg/engine"
)

const appName = "tempo"

// Bell rings the terminal bell on w for audible events.
func Bell(w io.Writer) engine.SinkFunc {
	return func(_ context.Context, ev engine.Event) error {
		if !ev.Sound {
			return nil
		}
		if _, err := io.WriteString(w, "\a"); err != nil {
			return fmt.Errorf("ringing bell: %w", err)
		}
		return nil
	}
}

// Desktop is an engine.Sink that shells out to the platform notifier.
// Tools that are not installed are skipped.
type Desktop struct {
	Sound  string  // alarm file; empty plays nothing
	Volume float64 // 0..1

	goos     string
	lookPath func(string) (string, error)
	start    func(ctx context.Context, name string, args ...string) error
	logger   *zap.Logger
}

// NewDesktop creates a Desktop sink for the current platform.
func NewDesktop(logger *zap.Logger) *Desktop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Desktop{
		Volume:   1,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    startDetached,
		logger:   logger,
	}
}

// Notify implements engine.Sink.
func (d *Desktop) Notify(ctx context.Context, ev engine.Event) error {
	var errs []error
	for _, argv := range d.commands(ev) {
		if _, err := d.lookPath(argv[0]); err != nil {
			d.logger.Debug("notifier not installed", zap.String("tool", argv[0]))
			continue
		}
		if err := d.start(ctx, argv[0], argv[1:]...); err != nil {
			errs = append(errs, fmt.Errorf("running %s: %w", argv[0], err))
		}
	}
	return errors.Join(errs...)
}

// commands returns the argv lists to run for ev.
func (d *Desktop) commands(ev engine.Event) [][]string {
	var out [][]string
	if ev.Desktop || ev.Kind == engine.EventLock {
		switch d.goos {
		case "darwin":
			script := fmt.Sprintf("display notification %s with title %s",
				appleScriptString(ev.Message), appleScriptString(appName))
			out = append(out, []string{"osascript", "-e", script})
		case "linux", "freebsd", "openbsd":
			out = append(out, []string{"notify-send", "-a", appName, "-u", urgency(ev.Severity), appName, ev.Message})
		}
	}
	if ev.Sound && d.Sound != "" {
		switch d.goos {
		case "darwin":
			out = append(out, []string{"afplay", "-v", strconv.FormatFloat(d.Volume, 'f', 2, 64), d.Sound})
		case "linux", "freebsd", "openbsd":
			out = append(out, []string{"paplay", "--volume=" + strconv.Itoa(int(d.Volume*65536)), d.Sound})
		}
	}
	return out
}

func urgency(s engine.Severity) string {
	switch s {
	case engine.SeverityWarning:
		return "critical"
	case engine.SeverityInfo, engine.SeveritySuccess:
		return "normal"
	default:
		return "normal"
	}
}

func appleScriptString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// startDetached starts the command without waiting, reaping it in the background.
func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// Multi fans an event out to every sink. Every sink sees the event even
// when an earlier one fails.
type Multi []engine.Sink

// Notify implements engine.Sink.
func (m Multi) Notify(ctx context.Context, ev engine.Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
