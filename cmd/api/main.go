// Payables is a supplier payables ledger: it tracks orders, the debts
// they open and the payments that settle them, keeping every derived
// balance consistent with the underlying payment history.
//
// @title       Payables API
// @version     1.0
// @description Supplier payables ledger reconciliation engine
// @BasePath    /api/v1
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/dcontreras/payables/docs"
	"github.com/dcontreras/payables/internal/config"
	"github.com/dcontreras/payables/internal/debt"
	"github.com/dcontreras/payables/internal/files"
	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/order"
	"github.com/dcontreras/payables/internal/payment"
	"github.com/dcontreras/payables/internal/store/postgres"
	"github.com/dcontreras/payables/internal/supplier"
	"github.com/dcontreras/payables/pkg/logger"
	mw "github.com/dcontreras/payables/pkg/middleware"
)

func main() {
	// Load .env file if present; real environment wins otherwise.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New("payables", cfg.LogLevel, cfg.LogFormat)

	st, err := postgres.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer st.Close()

	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	log.Info().Msg("connected to database")

	receipts, err := files.NewDisk(cfg.ReceiptDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init receipt storage")
	}

	calc := ledger.NewCalculator()

	// Feature services and handlers
	supplierService := supplier.NewService(st, calc)
	supplierHandler := supplier.NewHandler(supplierService)

	orderService := order.NewService(st, calc)
	orderHandler := order.NewHandler(orderService)

	debtService := debt.NewService(st, calc)
	debtHandler := debt.NewHandler(debtService)

	paymentService := payment.NewService(st, calc, receipts, log)
	paymentHandler := payment.NewHandler(paymentService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Actor"},
	}))
	r.Use(mw.RequestLogger(log))
	r.Use(mw.ActorMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/suppliers", supplierHandler.Routes())
		r.Mount("/orders", orderHandler.Routes())
		r.Mount("/debts", debtHandler.Routes())
		r.Mount("/payments", paymentHandler.Routes())
	})

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
