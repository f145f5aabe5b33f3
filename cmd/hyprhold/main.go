package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/Danondso/hyprhold/internal/action"
	"github.com/Danondso/hyprhold/internal/bus"
	"github.com/Danondso/hyprhold/internal/chime"
	"github.com/Danondso/hyprhold/internal/clipboard"
	"github.com/Danondso/hyprhold/internal/config"
	"github.com/Danondso/hyprhold/internal/event"
	"github.com/Danondso/hyprhold/internal/ipc"
	"github.com/Danondso/hyprhold/internal/tui"
)

type options struct {
	configPath string
	debug      bool
	monitor    bool
	device     string
	force      bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	flagSet := pflag.NewFlagSet("hyprhold", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", config.DefaultPath(), "path to config file")
	flagSet.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flagSet.BoolVar(&opts.monitor, "monitor", false, "show the live event monitor")
	flagSet.StringVar(&opts.device, "device", "", `read keys from an evdev device ("auto" or /dev/input/eventN) instead of compositor keypress events`)
	flagSet.BoolVar(&opts.force, "force", false, "let init overwrite an existing config")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hyprhold [flags] [check|init]\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) > 0 && rest[0] == "init" {
		return runInit(os.Stdout, opts.configPath, opts.force)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.device != "" {
		cfg.Input.Device = opts.device
	}

	if len(rest) > 0 {
		if rest[0] == "check" {
			return runCheck(os.Stdout, opts.configPath, cfg)
		}
		return fmt.Errorf("unknown command %q", rest[0])
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Set up debug logger
	var dbg *log.Logger
	if opts.debug {
		dbg = log.New(os.Stderr, "[DEBUG] ", log.Ltime|log.Lmicroseconds)
	} else {
		dbg = log.New(io.Discard, "", 0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chimePlayer, err := chime.New(cfg.Chime.Start, cfg.Chime.Stop, cfg.Chime.Enabled, dbg)
	if err != nil {
		return fmt.Errorf("create chime player: %w", err)
	}

	runner := action.NewRunner(ctx, dbg)
	defer runner.Close()

	b := bus.New(bus.WithLogger(dbg))
	if err := bindHolds(b, cfg, runner, chimePlayer, dbg); err != nil {
		return err
	}
	dbg.Printf("bus: %d holds bound", len(cfg.Holds))
	if len(cfg.Holds) == 0 {
		dbg.Printf("bus: no holds in %s, run 'hyprhold init' to write one", opts.configPath)
	}

	if opts.monitor {
		return runMonitor(ctx, b, cfg, dbg, opts.debug)
	}
	return runHeadless(ctx, b, cfg, dbg)
}

// socketPath resolves the event socket, preferring config overrides over
// the environment.
func socketPath(cfg *config.Config) (string, error) {
	return ipc.SocketPathFromEnv(cfg.Socket.RuntimeDir, cfg.Socket.Signature)
}

// openSource opens the configured input: an evdev keyboard when a device is
// set, otherwise the compositor socket. It returns a display name.
func openSource(ctx context.Context, cfg *config.Config, dbg *log.Logger) (io.ReadCloser, string, error) {
	if cfg.Input.Device != "" {
		return openDevice(cfg.Input.Device, dbg)
	}
	path, err := socketPath(cfg)
	if err != nil {
		return nil, "", err
	}
	conn, err := ipc.Dial(ctx, path)
	if err != nil {
		return nil, "", err
	}
	dbg.Printf("socket: connected to %s", path)
	return conn, path, nil
}

func runHeadless(ctx context.Context, b *bus.Bus, cfg *config.Config, dbg *log.Logger) error {
	if cfg.Input.Device == "" {
		path, err := socketPath(cfg)
		if err != nil {
			return err
		}
		return b.Serve(ctx, path)
	}
	src, _, err := openSource(ctx, cfg, dbg)
	if err != nil {
		return err
	}
	return b.ServeConn(ctx, src)
}

func runMonitor(ctx context.Context, b *bus.Bus, cfg *config.Config, dbg *log.Logger, debug bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, name, err := openSource(ctx, cfg, dbg)
	if err != nil {
		return err
	}

	model := tui.NewModel(cfg, b, clipboard.Copy, dbg, debug)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// When debug is enabled, redirect logger output into the TUI debug panel
	if debug {
		dbg.SetOutput(tui.NewLogWriter(p))
	}

	b.OnAny(func(e event.Event) {
		p.Send(tui.NewEventMsg(e, time.Now()))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Send(tui.ConnectedMsg{Source: name})
		err := b.ServeConn(ctx, src)
		p.Send(tui.DisconnectedMsg{Err: err})
	}()

	_, err = p.Run()
	cancel()
	<-done
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runInit writes a starter config holding the default which-key hold.
func runInit(w io.Writer, path string, force bool) error {
	if path == "" {
		return errors.New("no config path: set --config")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	cfg.Holds = []config.HoldConfig{config.DefaultHold()}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(w, "wrote %s\n", path)
	return nil
}

// runCheck validates the config and prints what hyprhold would do.
func runCheck(w io.Writer, path string, cfg *config.Config) error {
	fmt.Fprintf(w, "config: %s\n", path)

	if cfg.Input.Device != "" {
		fmt.Fprintf(w, "input:  evdev %s\n", cfg.Input.Device)
	} else if sock, err := socketPath(cfg); err != nil {
		fmt.Fprintf(w, "socket: unresolved (%v)\n", err)
	} else {
		fmt.Fprintf(w, "socket: %s\n", sock)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(cfg.Holds) == 0 {
		fmt.Fprintln(w, "holds:  none configured")
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKEYS\tCODES\tKEYBOARD\tTHRESHOLD\tFLAGS")
	for _, h := range cfg.Holds {
		codes, err := holdCodes(h)
		if err != nil {
			return fmt.Errorf("hold %q: %w", h.ID, err)
		}
		keyboard := h.Keyboard
		if keyboard == "" {
			keyboard = "any"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			h.ID,
			strings.Join(h.Keys, ","),
			joinInts(codes),
			keyboard,
			h.Threshold(),
			holdFlags(h))
	}
	return tw.Flush()
}

func holdFlags(h config.HoldConfig) string {
	var flags []string
	if h.ExtendOnOtherKeys {
		flags = append(flags, "extend")
	}
	if h.OnlyWithoutSubmap {
		flags = append(flags, "no-submap")
	}
	if h.Chime {
		flags = append(flags, "chime")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}
