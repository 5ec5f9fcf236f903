package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/appshell/internal/config"
	"github.com/1broseidon/appshell/internal/daemon"
	"github.com/1broseidon/appshell/internal/ipc"
	"github.com/1broseidon/appshell/internal/lifecycle"
	"github.com/1broseidon/appshell/internal/placement"
	"github.com/1broseidon/appshell/internal/platform"
	"github.com/1broseidon/appshell/internal/windows"
	"github.com/1broseidon/appshell/internal/windowstate"
)

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (title: %q, debounce: %s)", cfg.Product.Title, cfg.SaveDebounce())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	// Connect to display server
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	statePath, err := cfg.StateFile()
	if err != nil {
		log.Fatalf("Failed to resolve state file: %v", err)
	}
	store := windowstate.NewStore(statePath)

	manager := windows.NewManager(backend, store, placement.NewPolicy(cfg.Product.Title), windows.Options{
		Title:      cfg.Product.Title,
		DefaultURL: cfg.Product.DefaultURL,
		SaveQuiet:  cfg.SaveDebounce(),
	}, logger)

	daemonCtx, daemonCancel := context.WithCancel(context.Background())
	defer daemonCancel()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.ReconcileInterval(),
		Logger:   logger,
	}, manager)

	registry := lifecycle.NewRegistry()
	registry.Register(lifecycle.Contribution{
		Name: "main-window",
		OnReady: func(context.Context, platform.ReadyInfo) error {
			_, err := manager.CreateWindow("")
			return err
		},
	})
	registry.Register(lifecycle.Contribution{
		Name: "reconciler",
		OnReady: func(context.Context, platform.ReadyInfo) error {
			go reconciler.Run(daemonCtx)
			return nil
		},
		OnQuit: func(context.Context) error {
			daemonCancel()
			return nil
		},
	})

	// The IPC server and menu come up in the ready phase, once the display
	// reports the environment. The server is constructed up front so its
	// socket path failure aborts startup early.
	reloadChan := make(chan struct{}, 1)
	var orch *lifecycle.Orchestrator
	var ipcServer *ipc.Server
	setup := func(info platform.ReadyInfo) error {
		logger.Info("platform ready", "backend", info.Backend, "display", info.Display, "displays", len(info.Displays))
		if err := ipcServer.Start(); err != nil {
			return err
		}
		if err := backend.SetMenu(windows.DefaultMenu()); err != nil {
			logger.Warn("failed to install application menu", "error", err)
		}
		return nil
	}

	orch = lifecycle.NewOrchestrator(registry, setup, logger)
	ipcServer, err = ipc.NewServer(manager, backend, orch.Gate(), reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	defer ipcServer.Stop()

	applyConfig := func(newCfg *config.Config) {
		manager.UpdateOptions(windows.Options{
			Title:      newCfg.Product.Title,
			DefaultURL: newCfg.Product.DefaultURL,
			SaveQuiet:  newCfg.SaveDebounce(),
		})
		manager.Broadcast("config-reloaded", "")
		logger.Info("configuration applied", "title", newCfg.Product.Title)
	}

	// Watch the config file so edits take effect without a restart.
	configPath, err := config.DefaultConfigPath()
	if err == nil {
		watcher, werr := config.NewWatcher(configPath, applyConfig, logger)
		if werr != nil {
			logger.Warn("config watcher unavailable", "error", werr)
		} else {
			go watcher.Run(daemonCtx)
		}
	}

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					applyConfig(newCfg)

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down appshell daemon...")
					orch.Quit(context.Background())
					ipcServer.Stop()
					backend.Disconnect()
					os.Exit(0)
				}

			case <-reloadChan:
				newCfg, err := config.Load()
				if err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				applyConfig(newCfg)
			}
		}
	}()

	orch.Start(daemonCtx, backend)

	log.Println("appshell daemon started successfully")

	// Blocks processing X events; the ready signal fires from here.
	backend.EventLoop()
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
