// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"horde-image-client/internal/config"
	"horde-image-client/internal/domain/ports/adapter"
	"horde-image-client/internal/domain/ports/repository"
	hordeapi "horde-image-client/internal/infra/adapters/horde"
	"horde-image-client/internal/infra/adapters/notify"
	pg "horde-image-client/internal/infra/db/postgres"
	"horde-image-client/internal/infra/logging"
	"horde-image-client/internal/infra/metrics"
	red "horde-image-client/internal/infra/redis"
	"horde-image-client/internal/infra/sched"
	"horde-image-client/internal/infra/web"
	"horde-image-client/internal/infra/worker"
	"horde-image-client/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	optionsRepo := red.NewOptionsRepo(redisClient)
	jobRepo := red.NewJobRepo(redisClient)

	var historyRepo repository.HistoryRepository
	var tm repository.TransactionManager
	var historyUC usecase.HistoryUseCase
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		historyRepo = pg.NewHistoryRepo(pool)
		tm = pg.NewTxManager(pool)
		historyUC = usecase.NewHistoryUseCase(historyRepo)
	} else {
		logger.Warn().Msg("database.url not set; generation history disabled")
	}

	// ---- Horde API ----
	horde := hordeapi.NewClient(&cfg.Horde)
	if user, err := horde.CurrentUser(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not look up horde user; continuing anonymously")
	} else {
		logger.Info().Str("username", user.Username).Float64("kudos", user.Kudos).Msg("horde user")
	}

	// ---- Notifiers ----
	notifiers := []adapter.Notifier{notify.NewConsoleNotifier(logger)}
	if cfg.Notify.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	pool := worker.NewPool(cfg.Notify.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	results := usecase.NewResultSlot()
	defer results.Release()
	optionsUC := usecase.NewOptionsUseCase(optionsRepo, logger)
	submitUC := usecase.NewSubmitUseCase(jobRepo, horde, results, logger)
	materializeUC := usecase.NewMaterializeUseCase(horde, jobRepo, optionsRepo, historyRepo, tm, results, logger)

	// ---- Polling loop ----
	poller := sched.NewPollWorker(
		cfg.Horde.PollInterval, cfg.Horde.FetchAttempts,
		jobRepo, horde, materializeUC.Materialize, notifiers, pool, logger,
	)
	go func() { _ = poller.Run(ctx) }()

	// ---- Control API ----
	auth := web.NewAuthManager(cfg.Web.JWTSecret, cfg.Web.SessionTTL)
	srv := web.NewServer(optionsUC, submitUC, historyUC, results, poller, horde, auth, cfg.Web.AccessKey, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Web.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("control api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	_ = server.Shutdown(context.Background())
}
