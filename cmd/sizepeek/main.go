package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/sizepeek/internal/config"
	"github.com/1broseidon/sizepeek/internal/ipc"
	"github.com/1broseidon/sizepeek/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "attach":
		os.Exit(runAttach(os.Args[2:]))
	case "start":
		os.Exit(runSize("start", os.Args[2:]))
	case "update":
		os.Exit(runSize("update", os.Args[2:]))
	case "stop":
		os.Exit(runSimple("stop", os.Args[2:], "Hide the preview.", func(c *ipc.Client) error { return c.Stop() }))
	case "apply":
		os.Exit(runSimple("apply", os.Args[2:], "Resize the host window to the previewed size.", func(c *ipc.Client) error { return c.Apply() }))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "renderer":
		os.Exit(runKind("renderer", "outline|thumbnail|simulated|simplified", os.Args[2:], func(c *ipc.Client, v string) error { return c.SetRenderer(v) }))
	case "indicator":
		os.Exit(runKind("indicator", "none|pixels|pixels-percent|percent", os.Args[2:], func(c *ipc.Client, v string) error { return c.SetIndicator(v) }))
	case "strategy":
		os.Exit(runKind("strategy", "adjacent|center|snap|smart", os.Args[2:], func(c *ipc.Client, v string) error { return c.SetStrategy(v) }))
	case "save":
		os.Exit(runSimple("save", os.Args[2:], "Persist the current renderer and indicator to the config file.", func(c *ipc.Client) error { return c.SaveSettings() }))
	case "reload":
		os.Exit(runSimple("reload", os.Args[2:], "Reload the daemon configuration.", func(c *ipc.Client) error { return c.Reload() }))
	case "adjust":
		os.Exit(runAdjust(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sizepeek <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the sizepeek daemon (foreground)")
	fmt.Fprintln(w, "  attach [WINDOW]     Attach the preview to a window (default: focused)")
	fmt.Fprintln(w, "  start W H           Show a preview of the window at W x H")
	fmt.Fprintln(w, "  update W H          Move the preview to W x H")
	fmt.Fprintln(w, "  stop                Hide the preview")
	fmt.Fprintln(w, "  apply               Resize the window to the previewed size")
	fmt.Fprintln(w, "  adjust              Interactively resize the focused window")
	fmt.Fprintln(w, "  status              Show daemon and preview status")
	fmt.Fprintln(w, "  monitors            List monitors")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  renderer KIND       Set the renderer (outline, thumbnail, simulated, simplified)")
	fmt.Fprintln(w, "  indicator KIND      Set the size label (none, pixels, pixels-percent, percent)")
	fmt.Fprintln(w, "  strategy KIND       Set the placement strategy (adjacent, center, snap, smart)")
	fmt.Fprintln(w, "  save                Persist renderer and indicator")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config edit         Edit settings interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'sizepeek <command> --help' for command-specific options.")
}

func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sizepeek %s\n", usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags returns -1 when parsing succeeded, otherwise the exit code.
func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	return -1
}

func parseWindowID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	return uint32(v), nil
}

func runAttach(args []string) int {
	fs := newFlagSet("attach", "attach [WINDOW]", "Attach the preview to WINDOW (decimal or 0x hex), or to the focused window.")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	var windowID uint32
	if fs.NArg() == 1 {
		id, err := parseWindowID(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		windowID = id
	}

	data, err := ipc.NewClient().Attach(windowID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("attached 0x%x %q %dx%d+%d+%d\n", data.WindowID, data.Title, data.Width, data.Height, data.X, data.Y)
	return 0
}

func runSize(name string, args []string) int {
	fs := newFlagSet(name, name+" [--json] WIDTH HEIGHT", "Preview the host window at WIDTH x HEIGHT.")
	jsonOut := fs.Bool("json", false, "Print the reply as JSON")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	width, errW := strconv.Atoi(fs.Arg(0))
	height, errH := strconv.Atoi(fs.Arg(1))
	if errW != nil || errH != nil {
		fmt.Fprintf(os.Stderr, "%s: width and height must be integers\n", name)
		return 2
	}

	client := ipc.NewClient()
	var (
		data *ipc.PreviewData
		err  error
	)
	if name == "start" {
		data, err = client.Start(width, height)
	} else {
		data, err = client.Update(width, height)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		return printJSON(data)
	}
	if data.Placement != nil {
		fmt.Printf("preview %dx%d at %d,%d\n", data.Width, data.Height, data.Placement.X, data.Placement.Y)
	}
	return 0
}

func runSimple(name string, args []string, description string, call func(*ipc.Client) error) int {
	fs := newFlagSet(name, name, description)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	if err := call(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runKind(name, values string, args []string, call func(*ipc.Client, string) error) int {
	fs := newFlagSet(name, name+" "+values, "Switch the daemon's "+name+".")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	if err := call(ipc.NewClient(), fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "status [--json]", "Show daemon and preview status via IPC.")
	jsonOut := fs.Bool("json", false, "Print status as JSON")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}

	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	if status.HostWindow != 0 {
		fmt.Printf("host_window:    0x%x\n", status.HostWindow)
	}
	fmt.Println()
	fmt.Print(status.Report)
	return 0
}

func runMonitors(args []string) int {
	fs := newFlagSet("monitors", "monitors [--json]", "List monitors with bounds, work area and DPI scale.")
	jsonOut := fs.Bool("json", false, "Print monitors as JSON")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(data)
	}

	color := term.IsTerminal(int(os.Stdout.Fd()))
	for _, m := range data.Monitors {
		name := m.ID
		if m.Primary {
			name += "*"
		}
		if color {
			name = "\x1b[1m" + name + "\x1b[0m"
		}
		b, wa := m.Bounds, m.WorkArea
		fmt.Printf("%s  %dx%d+%d+%d  work %dx%d+%d+%d  scale %.2f\n",
			name, b.Width, b.Height, b.X, b.Y, wa.Width, wa.Height, wa.X, wa.Y, m.Scale)
	}
	return 0
}

func runAdjust(args []string) int {
	fs := newFlagSet("adjust", "adjust [--window ID] [--step N]", "Interactively preview sizes for a window; Enter applies, q quits.")
	window := fs.String("window", "", "Window id (default: focused window)")
	step := fs.Int("step", tui.DefaultStep, "Pixels per arrow key press")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	var windowID uint32
	if *window != "" {
		id, err := parseWindowID(*window)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		windowID = id
	}

	if err := tui.New(ipc.NewClient(), windowID, *step).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  sizepeek config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  sizepeek config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  sizepeek config explain [--path PATH] <yaml.path>")
		fmt.Fprintln(os.Stderr, "  sizepeek config edit [--path PATH]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/sizepeek/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/sizepeek/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config with includes merged (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if *printDefaults && *printEffective {
			fmt.Fprintln(os.Stderr, "--effective and --defaults cannot be combined")
			return 2
		}
		if err := printConfig(os.Stdout, *path, *printDefaults); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/sizepeek/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/sizepeek/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := tui.RunSettings(res, ipc.NewClient()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// printConfig writes the effective config of path as YAML, or the built-in
// defaults when defaults is set.
func printConfig(w io.Writer, path string, defaults bool) error {
	cfg := config.DefaultConfig()
	if !defaults {
		res, err := loadConfig(path)
		if err != nil {
			return err
		}
		cfg = res.Config
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// loadConfig loads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
