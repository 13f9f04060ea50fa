// Package boot decides at power-up whether to start the installed
// application or to stay resident for maintenance.
//
// The decision reads the configuration record, samples the attach-detect
// voltage and checks the application's vector table:
//
//	attached (volts >= threshold)  -> resident
//	vector stack pointer not SRAM  -> resident
//	otherwise                      -> boot marker, teardown, jump
//
// While resident the loader waits for the trigger byte on the link and then
// serves a small text menu for calibration edits, firmware updates and
// launching the application.
package boot

import (
	"context"
	"fmt"

	"github.com/moffa90/go-gaugeboot/clock"
	"github.com/moffa90/go-gaugeboot/config"
	"github.com/moffa90/go-gaugeboot/fifo"
	"github.com/moffa90/go-gaugeboot/flash"
	"github.com/moffa90/go-gaugeboot/link"
)

// Outcome is how Run ended.
type Outcome int

const (
	// OutcomeStopped means the context was cancelled while resident
	OutcomeStopped Outcome = iota

	// OutcomeJumped means control was handed to the application
	OutcomeJumped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStopped:
		return "stopped"
	case OutcomeJumped:
		return "jumped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Hardware groups the collaborators the loader runs on.
type Hardware struct {
	// Link carries menu output and protocol replies
	Link link.Link

	// Input is the FIFO filled by the link's receive path
	Input *fifo.Buffer

	Flash    flash.Device
	Identity config.Identity
	Analog   AnalogInput
	Machine  Machine

	// Clock measures the trigger wait; clock.System() when nil
	Clock clock.Clock
}

// Loader runs the boot decision and the resident loop.
type Loader struct {
	hw     Hardware
	config Config
	store  *config.Store
	layout flash.Layout
}

// New creates a Loader.
//
// Example:
//
//	l := boot.New(boot.Hardware{
//	    Link: stream, Input: buf, Flash: mem,
//	    Identity: id, Analog: boot.FixedVolts(5), Machine: &boot.Recorder{},
//	}, boot.WithLogger(logger))
//	outcome, err := l.Run(ctx)
func New(hw Hardware, opts ...Option) *Loader {
	if hw.Link == nil || hw.Input == nil || hw.Flash == nil ||
		hw.Identity == nil || hw.Analog == nil || hw.Machine == nil {
		panic("hardware is incomplete")
	}
	if hw.Clock == nil {
		hw.Clock = clock.System()
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	layout := hw.Flash.Layout()
	var storeOpts []config.Option
	if cfg.Logger != nil {
		storeOpts = append(storeOpts, config.WithLogger(cfg.Logger))
	}

	return &Loader{
		hw:     hw,
		config: cfg,
		store:  config.NewStore(hw.Flash, layout.ConfigBase, hw.Identity, storeOpts...),
		layout: layout,
	}
}

// Store returns the configuration store the loader uses.
func (l *Loader) Store() *config.Store { return l.store }

// Run makes the boot decision. It returns OutcomeJumped once the jump has
// been issued (on hardware it never returns), or OutcomeStopped when ctx is
// cancelled while resident.
func (l *Loader) Run(ctx context.Context) (Outcome, error) {
	rec, err := l.store.Read()
	if err != nil {
		// A broken config page must not prevent reflashing.
		l.logError("config read failed, using defaults", "error", err)
		rec = config.Defaults(l.hw.Identity.UniqueID())
	}

	if l.attached() {
		l.logInfo("maintenance cable attached, staying resident")
		return l.resident(ctx, rec)
	}

	vec, err := flash.ReadVector(l.hw.Flash, l.layout.AppBase)
	if err != nil {
		l.logError("vector read failed", "error", err)
		return l.resident(ctx, rec)
	}
	if !vec.Valid() {
		l.logInfo("no valid application", "stack_pointer", fmt.Sprintf("0x%08X", vec.StackPointer))
		return l.resident(ctx, rec)
	}

	l.jump(rec, vec)
	return OutcomeJumped, nil
}

func (l *Loader) attached() bool {
	volts, err := l.hw.Analog.ReadVolts()
	if err != nil {
		l.logError("attach detect failed", "error", err)
		return true
	}
	l.logDebug("attach detect", "volts", volts)
	return volts >= l.config.AttachThreshold
}

// jump stores the boot marker and performs the teardown sequence.
func (l *Loader) jump(rec *config.Record, vec flash.Vector) {
	if err := l.store.MarkBoot(rec); err != nil {
		l.logError("boot marker not stored", "error", err)
	}

	l.logInfo("starting application",
		"stack_pointer", fmt.Sprintf("0x%08X", vec.StackPointer),
		"entry", fmt.Sprintf("0x%08X", vec.ResetHandler),
	)

	m := l.hw.Machine
	m.DisableInterrupts()
	m.DeinitPeripherals()
	m.ClearInterrupts()
	m.ResetSysTick()
	m.EnableInterrupts()
	m.SetStackPointer(vec.StackPointer)
	m.Jump(vec.ResetHandler)
}

// resident waits for the trigger and serves the menu.
func (l *Loader) resident(ctx context.Context, rec *config.Record) (Outcome, error) {
	if n := l.hw.Input.Discard(); n > 0 {
		l.logDebug("discarded stale input", "bytes", n)
	}
	l.send(fmt.Sprintf(bannerFormat, rec.IDString(), rec.VersionString()))

	start := l.hw.Clock.Millis()
	for {
		if ctx.Err() != nil {
			return OutcomeStopped, nil
		}

		b, ok := l.poll()
		if !ok {
			if clock.Since(l.hw.Clock, start) >= l.config.BootWait {
				l.logDebug("no trigger received, still waiting")
				start = l.hw.Clock.Millis()
			}
			continue
		}
		if b != l.config.Trigger {
			continue
		}

		l.logInfo("menu opened")
		launched, err := l.menu(ctx, rec)
		if err != nil {
			return OutcomeStopped, err
		}
		if launched {
			return OutcomeJumped, nil
		}
		start = l.hw.Clock.Millis()
	}
}

// poll waits at most one poll interval for an input byte.
func (l *Loader) poll() (byte, bool) {
	if err := l.hw.Input.WaitFor(1, l.config.PollInterval); err != nil {
		return 0, false
	}
	b, err := l.hw.Input.Get()
	return b, err == nil
}

// readKey blocks until a byte arrives or ctx is done.
func (l *Loader) readKey(ctx context.Context) (byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if b, ok := l.poll(); ok {
			return b, nil
		}
	}
}

func (l *Loader) send(s string) {
	if err := l.hw.Link.SendString(s); err != nil {
		l.logError("link write failed", "error", err)
	}
}

// logDebug logs a debug message if a logger is configured.
func (l *Loader) logDebug(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (l *Loader) logInfo(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (l *Loader) logError(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Error(msg, keysAndValues...)
	}
}
