package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/layout"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "do":
		os.Exit(runDo(os.Args[2:]))
	case "rebalance":
		os.Exit(runRebalance(os.Args[2:]))
	case "save":
		os.Exit(runSave(os.Args[2:]))
	case "restore":
		os.Exit(runRestore(os.Args[2:]))
	case "layouts":
		os.Exit(runLayouts(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version":
		fmt.Printf("zonetile %s\n", version)
		os.Exit(0)
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
	fmt.Fprintln(w, "Usage: zonetile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the zonetile daemon (foreground)")
	fmt.Fprintln(w, "  status              Show the current layout")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  do                  Perform a layout action (move, focus, swap)")
	fmt.Fprintln(w, "  rebalance           Redistribute windows evenly across regions")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  save [name]         Save the current layout")
	fmt.Fprintln(w, "  restore [name]      Restore a saved layout")
	fmt.Fprintln(w, "  layouts             List saved layouts")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  reload              Reload the daemon's configuration")
	fmt.Fprintln(w, "  config show         Print the effective configuration")
	fmt.Fprintln(w, "  config init         Write a default config file")
	fmt.Fprintln(w, "  config path         Print the config file location")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp                 Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Print the version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'zonetile <command> --help' for command-specific options.")
}

func rectString(r geometry.Rect) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show every display, its regions, and the windows in each region.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output the layout as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.Status()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		printStatusTable(status)
	} else {
		printStatusPlain(status)
	}
	return 0
}

func printStatusTable(status *layout.Status) {
	for _, d := range status.Displays {
		if d.Name != "" {
			fmt.Printf("display %d (%s)  %s\n", d.ID, d.Name, rectString(d.Box))
		} else {
			fmt.Printf("display %d  %s\n", d.ID, rectString(d.Box))
		}
		for _, r := range d.Regions {
			axis := "horizontal"
			if r.Vertical {
				axis = "vertical"
			}
			marker := ""
			if r.Default {
				marker = "  (default)"
			}
			fmt.Printf("  %s  %s  %s%s\n", r.Name, axis, rectString(r.Box), marker)
			for i, w := range r.Windows {
				focused := " "
				if w.ID == status.Focused {
					focused = "*"
				}
				fmt.Printf("   %s[%d] %-10d %-16s %-30s %s\n",
					focused, i, w.ID, w.AppID, w.Title, rectString(w.Box))
			}
		}
	}
	if status.Focused != 0 {
		fmt.Printf("focused: %d\n", status.Focused)
	}
	if status.Dragging != 0 {
		fmt.Printf("dragging: %d\n", status.Dragging)
	}
}

func printStatusPlain(status *layout.Status) {
	for _, d := range status.Displays {
		for _, r := range d.Regions {
			for i, w := range r.Windows {
				fmt.Printf("display=%d region=%s index=%d window=%d app=%q title=%q x=%d y=%d width=%d height=%d\n",
					d.ID, r.Name, i, w.ID, w.AppID, w.Title,
					w.Box.X, w.Box.Y, w.Box.Width, w.Box.Height)
			}
		}
	}
	fmt.Printf("focused=%d\n", status.Focused)
	if status.Dragging != 0 {
		fmt.Printf("dragging=%d\n", status.Dragging)
	}
}

func runDo(args []string) int {
	fs := flag.NewFlagSet("do", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile do [--window id] <action> <direction>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Perform a directional layout action.")
		fmt.Fprintln(os.Stderr, "  action:    move, focus or swap")
		fmt.Fprintln(os.Stderr, "  direction: north, south, east or west")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	window := fs.Uint("window", 0, "Target window id (default: the focused window)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "do requires <action> and <direction>")
		fs.Usage()
		return 2
	}

	action, direction := fs.Arg(0), fs.Arg(1)
	if _, err := layout.ParseAction(action); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if _, err := layout.ParseDirection(direction); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	client := ipc.NewClient()
	if err := client.Do(action, direction, uint32(*window)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runRebalance(args []string) int {
	fs := flag.NewFlagSet("rebalance", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile rebalance")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Redistribute windows evenly across each display's regions.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "rebalance takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Rebalance(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSave(args []string) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile save [name]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Save the current region membership under a name (default: 'default').")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "save takes at most one argument")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.SaveLayout(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runRestore(args []string) int {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile restore [name]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Restore a saved layout (default: 'default'). Windows that no longer")
		fmt.Fprintln(os.Stderr, "exist are dropped; new windows are adopted into default regions.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "restore takes at most one argument")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.RestoreLayout(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runLayouts(args []string) int {
	fs := flag.NewFlagSet("layouts", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile layouts")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the names of all saved layouts.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "layouts takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	layouts, err := client.ListLayouts()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, name := range layouts {
		fmt.Println(name)
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the running daemon to reload its configuration file.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  zonetile config show [--path PATH]")
	fmt.Fprintln(w, "  zonetile config init")
	fmt.Fprintln(w, "  zonetile config path")
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "show":
		fs := flag.NewFlagSet("show", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/zonetile/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		var cfg *config.Config
		var err error
		if *path == "" {
			cfg, err = config.Load()
		} else {
			cfg, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "init":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "config already exists at %s\n", path)
			return 1
		}
		if err := config.DefaultConfig().Save(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("wrote %s\n", path)
		return 0

	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage(os.Stderr)
		return 2
	}
}
