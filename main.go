package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moments: %v\n", err)
		os.Exit(1)
	}

	defaultLogger = initLogger(cfg.Logging)
	defer defaultLogger.Close()

	if err := cfg.validate(); err != nil {
		logError("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		logError("open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logInfo("store opened", "path", cfg.DBPath)

	bot := newBot(cfg, store)
	engine := newEngine(store, bot, cfg)
	bot.engine = engine
	scheduler := newReminderScheduler(store, newDispatcher(bot), cfg)

	if err := bot.registerCommands(); err != nil {
		logWarn("register commands failed", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.ListenAddr != "" {
		srv := healthServer(cfg.ListenAddr, store)
		go func() {
			logInfo("health server listening", "addr", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logError("health server", "error", err)
			}
		}()
		defer srv.Close()
	}

	scheduler.Start(ctx)
	engine.StartSweeper(ctx)
	go bot.pollLoop(ctx)

	logInfo("moments bot running",
		"checkInterval", cfg.Reminders.checkIntervalOrDefault().String(),
		"conversationTimeout", cfg.Conversation.timeoutOrDefault().String())

	<-ctx.Done()
	logInfo("shutting down")
	scheduler.Stop()
}
