package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/zonetile/internal/actionlog"
	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/daemon"
	"github.com/1broseidon/zonetile/internal/hotkeys"
	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/layout"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/state"
)

func slogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the zonetile daemon in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	cfgPath := fs.String("config", "", "Config file path (default: ~/.config/zonetile/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	// Load configuration
	var cfg *config.Config
	var err error
	watchPath := *cfgPath
	if watchPath == "" {
		watchPath, err = config.DefaultConfigPath()
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(watchPath)
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (margin: %dpx, display rules: %d)", cfg.Margin, len(cfg.Displays))

	// Connect to display server
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	// Layout snapshot store
	stateDir, err := state.DefaultDir()
	if err != nil {
		log.Fatalf("Failed to resolve state directory: %v", err)
	}
	store := state.NewFileStore(stateDir)

	// Action log
	actions, err := actionlog.NewLogger(actionlog.DefaultConfig(cfg.LogLevel))
	if err != nil {
		log.Printf("Warning: action log disabled: %v", err)
		actions = nil
	}

	// Layout manager
	manager := layout.New(backend, cfg)
	manager.OnAction = func(ev layout.ActionEvent) {
		daemon.LogAction(actions, ev)
	}

	var snap *state.Snapshot
	if cfg.AutoRestore {
		snap = daemon.AutoRestoreSnapshot(store, slogger)
	}
	if err := manager.Init(snap); err != nil {
		log.Fatalf("Failed to initialize layout: %v", err)
	}
	log.Println("zonetile daemon started successfully")

	// Start IPC server
	reloadChan := make(chan struct{}, 1)
	ipcServer, err := ipc.NewServer(cfg, *cfgPath, manager, store, actions, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// Bind hotkeys. Bindings hold until restart; reload does not re-grab.
	hotkeyHandler := hotkeys.NewHandler(backend, manager, hotkeys.Callbacks{
		Rebalance: func() {
			manager.Rebalance()
			actions.Log(actionlog.ActionRebalance, 0, nil)
		},
		SaveLayout: func() {
			s := manager.Snapshot()
			data, err := s.Encode()
			if err != nil {
				log.Printf("Save hotkey: %v", err)
				return
			}
			if err := store.Set(state.DefaultKey, data); err != nil {
				log.Printf("Save hotkey: %v", err)
				return
			}
			if err := store.Set(state.LastKey, data); err != nil {
				log.Printf("Save hotkey: %v", err)
			}
			actions.Log(actionlog.ActionSave, 0, map[string]interface{}{"layout": state.DefaultKey})
		},
		RestoreLayout: func() {
			data, err := store.Get(state.DefaultKey)
			if err != nil {
				log.Printf("Restore hotkey: %v", err)
				return
			}
			s, err := state.DecodeSnapshot(data)
			if err != nil {
				log.Printf("Restore hotkey: %v", err)
				return
			}
			if err := manager.Restore(s); err != nil {
				log.Printf("Restore hotkey: %v", err)
				return
			}
			actions.Log(actionlog.ActionRestore, 0, map[string]interface{}{"layout": state.DefaultKey})
		},
	})
	if err := hotkeyHandler.Bind(cfg.Hotkeys); err != nil {
		log.Printf("Warning: hotkeys disabled: %v", err)
	}

	// Subscribe to host window events
	if err := backend.WatchEvents(func(ev platform.Event) {
		switch ev.Kind {
		case platform.WindowOpened:
			manager.WindowOpened(ev.Window)
		case platform.WindowClosed:
			manager.WindowClosed(ev.Window)
		case platform.WindowFocused:
			manager.WindowFocused(ev.Window)
		case platform.DragSample:
			manager.OnDragSample(ev.Window, ev.Point)
		case platform.DisplaysChanged:
			manager.DisplaysChanged()
		}
	}); err != nil {
		log.Fatalf("Failed to subscribe to window events: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic drift reconciliation
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   slogger,
	}, manager, backend.Windows)
	go reconciler.Run(ctx)

	// Watch the config file for edits
	fileChanged := make(chan struct{}, 1)
	watcher, err := daemon.NewWatcher(watchPath, fileChanged, slogger)
	if err != nil {
		log.Printf("Warning: config watcher disabled: %v", err)
	} else {
		go watcher.Run(ctx)
	}

	applyReload := func() {
		var newCfg *config.Config
		var err error
		if *cfgPath != "" {
			newCfg, err = config.LoadFromPath(*cfgPath)
		} else {
			newCfg, err = config.Load()
		}
		if err != nil {
			log.Printf("Config reload failed: %v", err)
			return
		}
		if err := manager.ApplyConfig(newCfg); err != nil {
			log.Printf("Config reload failed: %v", err)
			return
		}
		ipcServer.UpdateConfig(newCfg)
		actions.Log(actionlog.ActionReload, 0, nil)
		log.Println("Config reloaded successfully")
	}

	// Handle signals, file edits and IPC-driven reloads
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					applyReload()

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down zonetile daemon...")
					s := manager.Snapshot()
					if data, err := s.Encode(); err == nil {
						if err := store.Set(state.LastKey, data); err != nil {
							log.Printf("Failed to save last layout: %v", err)
						}
					}
					cancel()
					ipcServer.Stop()
					actions.Close()
					os.Exit(0)
				}

			case <-fileChanged:
				log.Println("Config file changed, reloading...")
				applyReload()

			case <-reloadChan:
				// Reload arrived over IPC; the server already applied it.
				log.Println("Config reloaded via IPC")
			}
		}
	}()

	// Start event loop (blocking)
	log.Println("Entering event loop...")
	backend.EventLoop()
	return 0
}
