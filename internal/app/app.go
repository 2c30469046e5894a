// Package app wires the bot together: configuration, logging, the record
// store, the Telegram adapter, the reconciliation tracker, the notifier,
// the media relay, and the nightly maintenance job.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"peekbot/internal/config"
	"peekbot/internal/media"
	"peekbot/internal/notifier"
	"peekbot/internal/runtime/supervisor"
	"peekbot/internal/storage"
	"peekbot/internal/tracker"
	"peekbot/internal/transport/telegram"
	logx "peekbot/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	store   storage.Store
	adapter *telegram.Adapter
	cron    *cron.Cron
	sup     *supervisor.Supervisor
}

func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(loggingConfig(cfg))
	mgr.SetLogger(log.With(logx.String("component", "config")))

	store, err := openStore(cfg, log)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	adapter, err := openAdapter(cfg, log)
	if err != nil {
		_ = store.Close()
		_ = logSvc.Close()
		return nil, err
	}

	notif := notifier.New(notifierConfig(cfg), adapter, log.With(logx.String("component", "notifier")))
	tr := tracker.New(store, notif, log.With(logx.String("component", "tracker")))
	adapter.SetHandler(tr)
	adapter.SetRelay(media.NewRelay(adapter, adapter, log.With(logx.String("component", "media"))))

	a := &App{
		cfgMgr:  mgr,
		logSvc:  logSvc,
		log:     log,
		store:   store,
		adapter: adapter,
		cron:    cron.New(),
	}
	if err := a.scheduleMaintenance(cfg); err != nil {
		_ = store.Close()
		_ = logSvc.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, a.log.With(logx.String("component", "supervisor")))

	if err := a.adapter.Start(a.sup.Context()); err != nil {
		return err
	}
	a.sup.GoRestart("config-watch", a.cfgMgr.Watch)
	a.sup.Go("config-apply", a.applyConfigUpdates)
	a.cron.Start()

	// Best-effort; a no-op outside systemd.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	a.log.Info("peekbot started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	cronDone := a.cron.Stop()
	select {
	case <-cronDone.Done():
	case <-ctx.Done():
	}

	var err error
	if a.sup != nil {
		err = a.sup.Stop(ctx)
	}
	a.adapter.Stop()
	if cerr := a.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	a.log.Info("peekbot stopped")
	_ = a.logSvc.Close()
	return err
}

// applyConfigUpdates consumes hot-reloaded configs. Only the settings that
// are safe to swap at runtime are applied; token/storage changes need a
// restart and are called out in the log.
func (a *App) applyConfigUpdates(ctx context.Context) error {
	updates := a.cfgMgr.Subscribe(1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-updates:
			if !ok {
				return nil
			}
			a.logSvc.Apply(loggingConfig(cfg))
			a.log.Info("runtime settings applied",
				logx.String("level", cfg.LogLevel()),
				logx.String("note", "telegram/storage changes take effect on restart"))
		}
	}
}

func (a *App) scheduleMaintenance(cfg *config.Config) error {
	spec := config.DefaultSchedule
	if cfg.Maintenance != nil && cfg.Maintenance.Schedule != "" {
		spec = cfg.Maintenance.Schedule
	}
	log := a.log.With(logx.String("component", "maintenance"))
	_, err := a.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if err := a.store.Maintain(ctx); err != nil {
			log.Warn("store maintenance failed", logx.Err(err))
			return
		}
		snap, err := a.store.Stats(ctx)
		if err != nil {
			log.Warn("store stats failed", logx.Err(err))
			return
		}
		log.Info("store maintained",
			logx.Int("peers", snap.Peers),
			logx.Int("messages", snap.Messages),
			logx.Int("malformed", snap.Malformed))
	})
	if err != nil {
		return fmt.Errorf("maintenance.schedule %q: %w", spec, err)
	}
	return nil
}

func openStore(cfg *config.Config, log logx.Logger) (storage.Store, error) {
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, time.Second)
	if err != nil {
		return nil, err
	}
	return storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, log.With(logx.String("component", "storage")))
}

func openAdapter(cfg *config.Config, log logx.Logger) (*telegram.Adapter, error) {
	poll, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	return telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		OwnerChatID: cfg.Telegram.OwnerChatID,
		PollTimeout: poll,
	}, log.With(logx.String("component", "telegram")))
}

func loggingConfig(cfg *config.Config) logx.Config {
	out := logx.Config{Level: "info", Console: true}
	if cfg.Logging == nil {
		return out
	}
	if cfg.Logging.Level != "" {
		out.Level = cfg.Logging.Level
	}
	if cfg.Logging.File.Enabled {
		out.File = logx.FileConfig{Enabled: true, Path: cfg.Logging.File.Path}
		out.Console = cfg.Logging.Console
	}
	return out
}

func notifierConfig(cfg *config.Config) notifier.Config {
	out := notifier.Config{OwnerChatID: cfg.Telegram.OwnerChatID}
	if cfg.Notifier != nil {
		out.RatePerSec = cfg.Notifier.RatePerSec
	}
	return out
}
