package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unitedbank/internal/config"
	"unitedbank/internal/db"
	"unitedbank/internal/handlers"
	"unitedbank/internal/notify"
	"unitedbank/internal/services"
	"unitedbank/internal/settlement"
	"unitedbank/internal/store"
	"unitedbank/internal/websocket"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect database")
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	transactions := store.NewTransactionStore(database)
	externals := store.NewExternalTransferStore(database)
	requests := store.NewTransferRequestStore(database)
	billers := store.NewBillerStore(database)
	payments := store.NewBillPaymentStore(database)
	cards := store.NewCardStore(database)
	settings := store.NewSettingsStore(database)
	actions := store.NewActionStore(database)
	adjustments := store.NewAdjustmentStore(database)
	txRunner := db.NewTxRunner(database)

	hub := websocket.NewHub()
	mailer := notify.NewMailer(&cfg, logger)
	gate := services.NewApprovalGate(settings, logger)
	transferService := services.NewTransferService(txRunner, accounts, transactions, gate, hub, logger)
	externalService := services.NewExternalService(txRunner, accounts, transactions, externals, requests, users, hub, mailer, logger)
	billService := services.NewBillService(txRunner, accounts, transactions, billers, payments, hub, logger)
	adminService := services.NewAdminService(txRunner, accounts, transactions, adjustments, actions, settings, hub, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker := settlement.NewWorker(externals, logger, cfg.SettlementHold)
	if _, err := worker.Start(workerCtx, cfg.SettlementSchedule); err != nil {
		logger.WithError(err).Fatal("failed to start settlement worker")
	}

	handler := handlers.New(txRunner, cfg, users, accounts, transactions, externals, requests, billers, payments, cards, settings, actions, transferService, externalService, billService, adminService, hub, logger)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("banking API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	stopWorker()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("shutdown error")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
