package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/config"
	"github.com/georgemunganga/lensworks-backend/internal/database"
	"github.com/georgemunganga/lensworks-backend/internal/events"
	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/georgemunganga/lensworks-backend/internal/logging"
	"github.com/georgemunganga/lensworks-backend/internal/modules/auth"
	"github.com/georgemunganga/lensworks-backend/internal/modules/catalog"
	"github.com/georgemunganga/lensworks-backend/internal/modules/inventory"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/order"
	"github.com/georgemunganga/lensworks-backend/internal/modules/pricing"
	"github.com/georgemunganga/lensworks-backend/internal/modules/printing"
	"github.com/georgemunganga/lensworks-backend/internal/modules/purchase"
	"github.com/georgemunganga/lensworks-backend/internal/modules/returns"
	"github.com/georgemunganga/lensworks-backend/internal/modules/staff"
	"github.com/georgemunganga/lensworks-backend/internal/modules/store"
	"github.com/georgemunganga/lensworks-backend/internal/modules/taxinvoice"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "lensworks",
		Usage: "lens wholesale order and ledger API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file"},
			&cli.StringFlag{Name: "log-level", Usage: "override LENS_LOG_LEVEL"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "override LENS_APP_PORT"},
				},
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply embedded schema migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "down", Usage: "roll back one migration"},
				},
				Action: runMigrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("lensworks exited")
	}
}

func setup(c *cli.Context) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if port := c.String("port"); port != "" {
		cfg.Port = port
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout), nil
}

func runMigrate(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	db, err := database.Open(c.Context, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	return database.Migrate(db.DB, c.Bool("down"), logger)
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	httpx.Setup(logger, cfg.DefaultLanguage)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database")

	var publisher events.Publisher = events.LogPublisher{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		logger.WithFields(log.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("publishing events to kafka")
	}

	router := newRouter(db, cfg, logger, loc, publisher)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", srv.Addr).Info("lensworks API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRouter(db *sqlx.DB, cfg *config.Config, logger *log.Logger, loc *time.Location, publisher events.Publisher) http.Handler {
	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(actor.Middleware([]byte(cfg.JWTSecret)))
	router.Use(logging.Middleware(logger, actor.FromRequest))

	// ── Identity ────────────────────────────────────────────
	staffRepo := staff.NewPostgresRepository(db)
	staff.NewHandler(staff.NewService(staffRepo)).RegisterRoutes(router)
	authService := auth.NewService(staffRepo, []byte(cfg.JWTSecret), cfg.TokenTTL, logger)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Stores & ledger ─────────────────────────────────────
	store.NewHandler(store.NewService(store.NewPostgresRepository(db), publisher, logger)).RegisterRoutes(router)
	ledger.NewHandler(ledger.NewService(ledger.NewPostgresRepository(db), loc)).RegisterRoutes(router)

	// ── Catalog, pricing & inventory ────────────────────────
	catalog.NewHandler(catalog.NewService(catalog.NewPostgresRepository(db), logger)).RegisterRoutes(router)
	pricingService := pricing.NewService(pricing.NewPostgresRepository(db), logger)
	pricing.NewHandler(pricingService).RegisterRoutes(router)
	inventory.NewHandler(inventory.NewService(inventory.NewPostgresRepository(db), logger)).RegisterRoutes(router)

	// ── Orders, returns & purchases ─────────────────────────
	orderService := order.NewService(order.NewPostgresRepository(db), pricingService, logger, order.Options{Publisher: publisher, Location: loc})
	order.NewHandler(orderService).RegisterRoutes(router)
	returns.NewHandler(returns.NewService(returns.NewPostgresRepository(db), logger, returns.Options{Publisher: publisher, Location: loc})).RegisterRoutes(router)
	purchase.NewHandler(purchase.NewService(purchase.NewPostgresRepository(db), logger, purchase.Options{Publisher: publisher, Location: loc})).RegisterRoutes(router)

	// ── Tax invoices ────────────────────────────────────────
	supplier := taxinvoice.Party{
		BizNo:   cfg.Supplier.BizNo,
		Name:    cfg.Supplier.Name,
		CEOName: cfg.Supplier.CEOName,
		Address: cfg.Supplier.Address,
		BizType: cfg.Supplier.BizType,
		BizItem: cfg.Supplier.BizItem,
	}
	taxinvoice.NewHandler(taxinvoice.NewService(taxinvoice.NewPostgresRepository(db), logger, taxinvoice.Options{
		Supplier:  supplier,
		Publisher: publisher,
		Location:  loc,
	})).RegisterRoutes(router)

	// ── Printing ────────────────────────────────────────────
	printer := printing.NewClient(cfg.PrintServerURL, cfg.PrintTimeout, logger)
	printing.NewHandler(printing.NewService(orderService, printer, logger)).RegisterRoutes(router)

	return router
}
