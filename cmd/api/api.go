package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"

	"github.com/patrick-gordon/umbra-registers/internal/queue"
	"github.com/patrick-gordon/umbra-registers/internal/ratelimiter"
	"github.com/patrick-gordon/umbra-registers/internal/service"
	"github.com/patrick-gordon/umbra-registers/internal/worker"
)

type application struct {
	config      config
	logger      *zap.SugaredLogger
	rateLimiter ratelimiter.Limiter
	registers   *service.RegisterService
	broker      queue.Broker
	hostWorker  *worker.HostEventWorker
}

type config struct {
	addr        string
	env         string
	rateLimiter ratelimiter.Config
	bridge      bridgeConfig
	rabbitMQ    rabbitMQConfig
	standalone  bool
}

type bridgeConfig struct {
	BaseURL string
	Timeout time.Duration
}

type rabbitMQConfig struct {
	Enabled       bool
	URL           string
	MaxRetries    int
	RetryDelay    time.Duration
	PrefetchCount int
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Get("/state", app.getStateHandler)
		r.Post("/host/messages", app.hostMessageHandler)
		r.Post("/view", app.setViewHandler)
		r.Post("/close", app.closeHandler)
		r.Delete("/bridge-error", app.clearBridgeErrorHandler)
		r.Post("/interactions/open", app.openInteractionHandler)
		r.Get("/interactions", app.listInteractionsHandler)

		r.Route("/stores", func(r chi.Router) {
			r.Post("/", app.createStoreHandler)
			r.Delete("/{store_id}", app.deleteStoreHandler)
			r.Post("/{store_id}/select", app.selectStoreHandler)
			r.Get("/{store_id}/stats", app.getStoreStatsHandler)
		})

		r.Route("/registers", func(r chi.Router) {
			r.Post("/", app.createRegisterHandler)
			r.Delete("/{register_id}", app.deleteRegisterHandler)
			r.Post("/{register_id}/select", app.selectRegisterHandler)
			r.Post("/{register_id}/upgrade", app.upgradeRegisterHandler)
			r.Get("/{register_id}/items", app.getCustomerItemsHandler)
			r.Get("/{register_id}/combos", app.getCombosHandler)
			r.Get("/{register_id}/discounts", app.getSessionDiscountsHandler)
			r.Get("/{register_id}/stats", app.getRegisterStatsHandler)
			r.Get("/{register_id}/flags", app.getAbuseFlagsHandler)

			r.Route("/{register_id}/tray", func(r chi.Router) {
				r.Post("/items", app.addTrayItemHandler)
				r.Post("/combos", app.addTrayComboHandler)
				r.Post("/lines/{line_id}/decrease", app.decreaseTrayLineHandler)
				r.Delete("/lines/{line_id}", app.removeTrayLineHandler)
			})

			r.Route("/{register_id}/session", func(r chi.Router) {
				r.Post("/discounts/{discount_id}/toggle", app.toggleSessionDiscountHandler)
				r.Post("/ring-up", app.ringUpHandler)
				r.Post("/confirm", app.confirmCustomerActionsHandler)
				r.Post("/pay", app.customerPayHandler)
				r.Post("/steal", app.customerStealHandler)
				r.Post("/tap", app.minigameTapHandler)
				r.Post("/clear", app.clearTransactionHandler)
				r.Delete("/receipt", app.dismissReceiptHandler)
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/items", app.getManagerItemsHandler)
			r.Post("/items", app.createMenuItemHandler)
			r.Patch("/items/{item_id}", app.updateMenuItemHandler)
			r.Delete("/items/{item_id}", app.deleteMenuItemHandler)

			r.Post("/discounts", app.createDiscountHandler)
			r.Patch("/discounts/{discount_id}", app.updateDiscountHandler)
			r.Post("/discounts/{discount_id}/items/{item_id}/toggle", app.toggleDiscountItemHandler)
			r.Delete("/discounts/{discount_id}", app.deleteDiscountHandler)

			r.Post("/combos", app.createComboHandler)
			r.Delete("/combos/{combo_id}", app.deleteComboHandler)
		})

		r.Get("/stats", app.getGlobalStatsHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// workers
	if app.hostWorker != nil {
		if err := app.hostWorker.Start(); err != nil {
			return fmt.Errorf("failed to start host event worker: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		if app.hostWorker != nil {
			app.hostWorker.Stop()
		}

		if app.broker != nil {
			if err := app.broker.Close(); err != nil {
				app.logger.Errorw("error closing RabbitMQ", "error", err)
			} else {
				app.logger.Info("RabbitMQ connection closed gracefully")
			}
		}

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server have started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
