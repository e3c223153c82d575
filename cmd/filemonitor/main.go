package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/aleister1102/filemonitor/internal/datastore"
	"github.com/aleister1102/filemonitor/internal/logger"
	"github.com/aleister1102/filemonitor/internal/metrics"
	"github.com/aleister1102/filemonitor/internal/monitor"
	"github.com/aleister1102/filemonitor/internal/notifier"
	"github.com/rs/zerolog"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	appFlags, helpShown, err := ParseFlags(args)
	if helpShown {
		return 0
	}
	if err != nil {
		return 1
	}
	if appFlags.Version {
		fmt.Println("filemonitor", version)
		return 0
	}

	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("component", "Main").Logger()

	gCfg, err := config.LoadGlobalConfig(config.LoadOptions{
		ConfigPath: appFlags.ConfigFile,
		EnvFile:    appFlags.EnvFile,
	}, bootLogger)
	if err != nil {
		bootLogger.Error().Err(err).Msg("Could not load configuration")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appFlags.DiscoverChatID {
		return discoverChatID(ctx, gCfg.NotificationConfig, bootLogger)
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		bootLogger.Error().Err(err).Msg("Configuration validation failed")
		return 1
	}
	if err := gCfg.EnsureDirectories(bootLogger); err != nil {
		bootLogger.Error().Err(err).Msg("Could not create working directories")
		return 1
	}

	appLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		bootLogger.Error().Err(err).Msg("Could not initialize logger")
		return 1
	}
	defer appLogger.Close()
	zLogger := *appLogger.GetZerolog()
	zLogger.Info().Str("version", version).Str("log_file", appLogger.FilePath()).Msg("File monitor starting")

	svcOpts := monitor.ServiceOptions{
		Config:  gCfg,
		LogFile: appLogger.FilePath(),
	}

	var history *datastore.DownloadHistory
	if gCfg.StorageConfig.HistoryDBPath != "" {
		history, err = datastore.NewDownloadHistory(gCfg.StorageConfig.HistoryDBPath, zLogger)
		if err != nil {
			zLogger.Error().Err(err).Msg("Could not open download history")
			return 1
		}
		defer history.Close()
		svcOpts.Recorder = history
	}

	if gCfg.StorageConfig.Mirror.Enabled() {
		mirror, err := datastore.NewObjectMirror(gCfg.StorageConfig.Mirror, zLogger)
		if err != nil {
			zLogger.Error().Err(err).Msg("Could not initialize object mirror")
			return 1
		}
		svcOpts.Mirror = mirror
	}

	telegram, err := notifier.NewTelegramNotifier(gCfg.NotificationConfig, nil, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Could not initialize Telegram notifier")
		return 1
	}
	svcOpts.Notifier = notifier.NewNotificationHelper(telegram, gCfg.NotificationConfig, zLogger)

	var collector *metrics.Collector
	if gCfg.MetricsConfig.ListenAddr != "" {
		collector = metrics.NewCollector()
		svcOpts.Observer = collector
	}
	svcOpts.OnReport = metrics.ReportHook(collector, zLogger)

	service, err := monitor.NewMonitoringService(svcOpts, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Could not initialize monitoring service")
		return 1
	}
	zLogger = zLogger.With().Str("run_id", service.RunID()).Logger()

	serverDone := make(chan struct{})
	if collector == nil {
		close(serverDone)
	} else {
		serverOpts := metrics.ServerOptions{
			ListenAddr: gCfg.MetricsConfig.ListenAddr,
			Collector:  collector,
			Stats:      service.Stats,
			Indices:    service.Indices,
		}
		if history != nil {
			serverOpts.History = history
		}
		server, err := metrics.NewServer(serverOpts, zLogger)
		if err != nil {
			zLogger.Error().Err(err).Msg("Could not initialize metrics server")
			return 1
		}
		go func() {
			defer close(serverDone)
			if err := server.Start(ctx); err != nil {
				zLogger.Error().Err(err).Msg("Metrics server stopped with error")
			}
		}()
	}

	code := runService(ctx, service, appFlags.Once, zLogger)
	stop()
	<-serverDone
	return code
}

func runService(ctx context.Context, service *monitor.MonitoringService, once bool, zLogger zerolog.Logger) int {
	if once {
		summary, err := service.RunOnce(ctx)
		if err != nil {
			zLogger.Error().Err(err).Msg("Check cycle failed")
			return 1
		}
		zLogger.Info().
			Int("checked", summary.Checked).
			Int("downloaded", summary.Downloaded).
			Int("errors", summary.Errors).
			Msg("Single cycle completed")
		return 0
	}

	if err := service.Run(ctx); err != nil {
		zLogger.Error().Err(err).Msg("Monitoring service stopped with error")
		return 1
	}
	zLogger.Info().Msg("File monitor stopped")
	return 0
}

// discoverChatID prints the chats that recently messaged the bot, so the
// operator can fill in CHAT_ID.
func discoverChatID(ctx context.Context, cfg config.NotificationConfig, logger zerolog.Logger) int {
	telegram, err := notifier.NewTelegramNotifier(cfg, nil, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Could not initialize Telegram notifier")
		return 1
	}

	chats, err := telegram.RecentChats(ctx)
	if err != nil {
		if errors.Is(err, errorwrapper.ErrNotFound) {
			fmt.Println("No chats found. Send a message to the bot and try again.")
			return 1
		}
		logger.Error().Err(err).Msg("Could not fetch bot updates")
		return 1
	}

	for _, chat := range chats {
		name := chat.Username
		if name == "" {
			name = chat.Title
		}
		fmt.Printf("chat_id=%d type=%s name=%s\n", chat.ID, chat.Type, name)
	}
	return 0
}
