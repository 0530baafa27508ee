package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/systray"
	"go.uber.org/zap"

	"trayping/internal/config"
	"trayping/internal/controller"
	apperrors "trayping/internal/errors"
	"trayping/internal/indicator"
	"trayping/internal/inhibit"
	"trayping/internal/instance"
	"trayping/internal/logger"
	"trayping/internal/monitor"
	"trayping/internal/notify"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "optional yaml file overriding the built-in settings")
		debug      = flag.Bool("debug", false, "log at debug level and echo logs to stdout")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	log, err := newLogger(cfg, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	guard := instance.NewGuard(cfg.LockName)
	if held, code := lockInstance(guard, log); !held {
		return code
	}

	icons, player, err := loadAssets(cfg)
	if err != nil {
		log.Error("startup failed",
			zap.String("code", apperrors.CodeOf(err)),
			zap.Bool("fatal", apperrors.IsStartupFatal(err)),
			zap.Error(err),
		)
		_ = guard.Release()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ctrl *controller.Controller
	onReady := func() {
		surface := indicator.NewSystraySurface(cfg.Tooltip)
		ctrl = controller.New(controller.Options{
			Target:            cfg.Probe.Target,
			Title:             cfg.Tooltip,
			ProbeInterval:     cfg.ProbeInterval(),
			HeartbeatInterval: cfg.HeartbeatInterval(),
		}, controller.Deps{
			Prober:    monitor.NewProber(cfg.Probe.Method, cfg.ProbeTimeout()),
			Player:    player,
			Display:   indicator.New(surface, icons, log),
			Guard:     guard,
			Notifier:  notify.New(cfg.NotifyOnChange),
			Inhibitor: newInhibitor(cfg, log),
			Log:       log,
		})
		ctrl.Start(ctx)

		go surface.Serve(ctx, ctrl)
		go func() {
			select {
			case <-ctx.Done():
				ctrl.Exit()
			case <-ctrl.Done():
			}
		}()
	}
	onExit := func() {
		_ = guard.Release()
	}

	systray.Run(onReady, onExit)
	player.Close()
	log.Info("tray closed")
	return 0
}

// lockInstance takes the single-instance lock. When it returns false the
// process exits with code: 0 if another instance owns the lock, 1 if the
// lock could not be taken at all.
func lockInstance(guard *instance.Guard, log *zap.Logger) (bool, int) {
	held, err := guard.Acquire()
	if err != nil {
		log.Error("acquire instance lock", zap.String("path", guard.Path()), zap.Error(err))
		return false, 1
	}
	if !held {
		log.Debug("another instance is already running", zap.String("lock", guard.Path()))
		return false, 0
	}
	return true, 0
}

func newLogger(cfg config.Config, debug bool) (*zap.Logger, error) {
	return logger.New(logConfig(cfg, debug))
}

// logConfig maps the log settings onto the logger, filling in the default
// file location when none is configured.
func logConfig(cfg config.Config, debug bool) logger.Config {
	logCfg := logger.Config{
		Level:      cfg.Log.Level,
		OutputPath: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   true,
		Console:    debug,
	}
	if logCfg.OutputPath == "" {
		logCfg.OutputPath = logger.DefaultConfig().OutputPath
	}
	if debug {
		logCfg.Level = "debug"
	}
	return logCfg
}

func newInhibitor(cfg config.Config, log *zap.Logger) inhibit.Inhibitor {
	if !cfg.InhibitIdle {
		return inhibit.Nop{}
	}
	return inhibit.New(log)
}
