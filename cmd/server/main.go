package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/config"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/infra"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/router"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Logger estruturado — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao carregar config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao conectar no postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao conectar no redis")
	}

	// Pool de goroutines para as tarefas assíncronas (recibo em PDF, alerta
	// de estoque mínimo). Os handlers são montados aqui, na composition
	// root, onde toda a infraestrutura está disponível.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	alertaWorker := worker.NewAlertaEstoqueWorker(mailer, smtpCB, rdb, cfg.AlertaEmailTo)
	reciboWorker := worker.NewReciboWorker(rdb, cfg.PDFStoragePath)

	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Handler{
		worker.QueueAlertaEstoque: alertaWorker.Process,
		worker.QueueRecibo:        reciboWorker.Process,
	})

	r := router.New(cfg, db, rdb, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shutdown gracioso em SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("StockPro escutando em :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("erro no servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("encerrando servidor…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("shutdown forçado")
	}
	log.Info().Msg("servidor finalizado")
}
