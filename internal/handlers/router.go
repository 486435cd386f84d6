package handlers

import (
	"net/http"

	"unitedbank/internal/auth"
	"unitedbank/internal/config"
	"unitedbank/internal/db"
	"unitedbank/internal/middleware"
	"unitedbank/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	txRunner  db.TxRunner
	cfg       config.Config
	users     UserStore
	accounts  AccountStore
	txs       TransactionStore
	externals ExternalTransferStore
	requests  TransferRequestStore
	billers   BillerStore
	payments  BillPaymentStore
	cards     CardStore
	settings  SettingsStore
	actions   ActionStore
	transfers TransferService
	external  ExternalService
	bills     BillService
	admin     AdminService
	hub       *websocket.Hub
	logger    *logrus.Logger
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, txs TransactionStore, externals ExternalTransferStore, requests TransferRequestStore, billers BillerStore, payments BillPaymentStore, cards CardStore, settings SettingsStore, actions ActionStore, transfers TransferService, external ExternalService, bills BillService, admin AdminService, hub *websocket.Hub, logger *logrus.Logger) *Handler {
	return &Handler{
		txRunner:  txRunner,
		cfg:       cfg,
		users:     users,
		accounts:  accounts,
		txs:       txs,
		externals: externals,
		requests:  requests,
		billers:   billers,
		payments:  payments,
		cards:     cards,
		settings:  settings,
		actions:   actions,
		transfers: transfers,
		external:  external,
		bills:     bills,
		admin:     admin,
		hub:       hub,
		logger:    logger,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/{id}", h.GetAccount)
		r.Get("/{id}/transactions", h.AccountTransactions)
		r.Post("/{id}/close", h.CloseAccount)
	})

	router.Route("/transactions", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListTransactions)
		r.Post("/transfer", h.Transfer)
	})

	router.Route("/external-transfers", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListExternalTransfers)
		r.Post("/send-to-user", h.SendToUser)
		r.Post("/send-to-bank", h.SendToBank)
		r.Post("/request-money", h.RequestMoney)
		r.Get("/requests", h.ListTransferRequests)
		r.Post("/requests/{id}/pay", h.PayTransferRequest)
		r.Post("/requests/{id}/decline", h.DeclineTransferRequest)
	})

	router.Route("/bills", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/billers", h.ListBillers)
		r.Post("/billers", h.CreateBiller)
		r.Post("/pay", h.PayBill)
		r.Get("/payments", h.ListBillPayments)
	})

	router.Route("/cards", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListCards)
		r.Post("/", h.RequestCard)
		r.Patch("/{id}/status", h.UpdateCardStatus)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Use(middleware.RequireAdmin)
		r.Get("/approvals", h.ListPendingApprovals)
		r.Post("/approvals/{id}/approve", h.ApproveTransaction)
		r.Post("/approvals/{id}/reject", h.RejectTransaction)
		r.Post("/adjust-balance", h.AdjustBalance)
		r.Get("/settings", h.GetApprovalSettings)
		r.Put("/settings", h.UpdateApprovalSettings)
		r.Get("/actions", h.ListAdminActions)
	})

	router.Get("/ws/balances", h.WSBalances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}

func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(authHeader) > len(prefix) && authHeader[:len(prefix)] == prefix {
			token = authHeader[len(prefix):]
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
