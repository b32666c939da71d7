package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/costumerent/costume-market/internal/blob"
	"github.com/costumerent/costume-market/internal/config"
	"github.com/costumerent/costume-market/internal/database"
	"github.com/costumerent/costume-market/internal/handler"
	"github.com/costumerent/costume-market/internal/logger"
	"github.com/costumerent/costume-market/internal/middleware"
	"github.com/costumerent/costume-market/internal/queue"
	"github.com/costumerent/costume-market/internal/repository"
	"github.com/costumerent/costume-market/internal/router"
	"github.com/costumerent/costume-market/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		zl.Warn("redis unreachable, rate limiting and response cache disabled", zap.String("addr", cfg.Redis.Address()))
	} else {
		defer rdb.Close()
	}

	blobs, err := blob.NewLocal(cfg.Upload.Root, cfg.Upload.BaseURL, cfg.Upload.PublicPrefix)
	if err != nil {
		return err
	}

	var events service.EventPublisher = queue.Discard{}
	if cfg.Queue.Enabled {
		events = queue.NewPublisher(cfg.Queue.URL, zl)
		if cfg.Queue.ConsumerEnabled {
			go func() {
				if err := queue.StartReservationConsumer(ctx, cfg.Queue.URL, cfg.Queue.LogDir, zl); err != nil && !errors.Is(err, context.Canceled) {
					zl.Error("reservation consumer", zap.Error(err))
				}
			}()
		}
	}

	costumes := repository.NewCostumeRepo(db)
	reservations := repository.NewReservationRepo(db)
	listing := service.NewListingService(costumes, zl)
	query := service.NewQueryService(costumes, zl)
	engine := service.NewReservationService(costumes, reservations, blobs, events, service.ReservationOptions{
		RejectOverlap: cfg.Reservation.RejectOverlap,
		IDDocMaxBytes: cfg.Upload.IDDocMaxBytes,
	}, zl)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zl))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("8M"))
	// identity documents live next to images but are never served
	e.Static(cfg.Upload.PublicPrefix+"/costumes", filepath.Join(blobs.Root(), "costumes"))

	router.RegisterRoutes(e, db)
	router.RegisterAPI(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), zl),
		Costumes:     handler.NewCostumeHandler(listing, query, engine),
		Reservations: handler.NewReservationHandler(engine),
		Uploads:      handler.NewUploadHandler(blobs, cfg.Upload.ImageMaxBytes, zl),
	}, router.Middleware{
		RateLimit:  middleware.NewTokenBucket(cfg.RateLimit, rdb, zl),
		Cache:      middleware.NewRedisCache(cfg.Cache, rdb, zl),
		PurgeCache: middleware.PurgeCache(cfg.Cache, rdb, zl),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
