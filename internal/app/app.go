package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/autopay"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/config"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/handlers"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/pg"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/realtime"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/repo"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/repo/memstore"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/orderservice"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg       *config.Config
	api       *handlers.Handlers
	srv       *service.Services
	repo      *repo.Repositories
	hub       *realtime.Hub
	scheduler *autopay.Scheduler
	sweep     *autopay.Sweep

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	var tx orderservice.TXManager
	switch cfg.Storage {
	case "memory":
		store := memstore.New()
		a.repo = repo.NewMemory(store)
		tx = store
		zap.L().Warn("running on in-memory storage, data will not survive a restart")
	default:
		pool, err := getPgxpool(ctx, cfg)
		if err != nil {
			zap.L().Error("build pgx pool failed: ", zap.Error(err))
			return fmt.Errorf("can't build pgx pool: %w", err)
		}
		if err := pg.RunMigrations(pool); err != nil {
			zap.L().Error("migrations failed: ", zap.Error(err))
			return fmt.Errorf("can't run migrations: %w", err)
		}
		a.repo = repo.New(pg.New(pool))
		tx = pg.NewTXManager(pool)
	}

	a.cfg = cfg
	a.hub = realtime.NewHub()
	a.scheduler = autopay.NewScheduler()
	a.srv = service.New(cfg, a.repo, tx, a.scheduler, a.hub)

	jwt := pkgauth.NewJWTService(cfg.JWTSecret)
	a.api = handlers.New(a.srv, a.hub, jwt)

	a.sweep, err = autopay.NewSweep(a.srv.Orders, cfg.SweepInterval)
	if err != nil {
		return fmt.Errorf("can't build payout sweep: %w", err)
	}

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startPayoutSweep(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startPayoutSweep(ctx context.Context) {
	a.sweep.Start()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		a.sweep.Stop()
		a.scheduler.Stop()
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
