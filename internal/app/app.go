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

	"github.com/kwachanet/hotspot/internal/config"
	"github.com/kwachanet/hotspot/internal/gateway"
	"github.com/kwachanet/hotspot/internal/handlers"
	"github.com/kwachanet/hotspot/internal/notify"
	"github.com/kwachanet/hotspot/internal/pg"
	"github.com/kwachanet/hotspot/internal/repo"
	"github.com/kwachanet/hotspot/internal/service"
	"github.com/kwachanet/hotspot/internal/settlement"
	pkgauth "github.com/kwachanet/hotspot/pkg/auth"
	"github.com/kwachanet/hotspot/pkg/clients"
	"github.com/kwachanet/hotspot/pkg/codes"
	"github.com/kwachanet/hotspot/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg    *config.Config
	api    *handlers.Handlers
	srv    *service.Services
	repo   *repo.Repositories
	engine *settlement.Engine

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
	pkgauth.SetSecret(cfg.JWTSecret)

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)
	conn := pg.New(pool)

	a.cfg = cfg
	a.repo = repo.New(conn, txManager)

	dispatcher := newDispatcher(cfg)
	a.engine = settlement.New(cfg, a.repo.PaymentRepo, a.repo.VoucherRepo, a.repo.SessionRepo,
		gateway.Providers(nil), dispatcher)

	a.srv = service.New(a.repo, a.engine, dispatcher, codes.NewGenerator(0))
	a.api = handlers.New(a.srv, cfg.CORSOrigin)

	if err := a.srv.AdminService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("can't seed admin user: %w", err)
	}

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startSettlementEngine(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func newDispatcher(cfg *config.Config) notify.Dispatcher {
	if cfg.SMSGatewayURL == "" {
		zap.L().Warn("SMS gateway not configured, notifications will only be logged")
		return &notify.LogDispatcher{}
	}
	return notify.NewSMSDispatcher(cfg.SMSGatewayURL, cfg.SMSSenderID, clients.NewHTTPClient())
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
		if err := server.ListenAndServe(); err != nil {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startSettlementEngine(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.engine.Start(ctx)
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
