package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/auth"
	"github.com/wichananm65/football-storefront/internal/cart"
	"github.com/wichananm65/football-storefront/internal/category"
	"github.com/wichananm65/football-storefront/internal/config"
	"github.com/wichananm65/football-storefront/internal/interface/http/handler"
	"github.com/wichananm65/football-storefront/internal/interface/http/router"
	"github.com/wichananm65/football-storefront/internal/interface/presenter"
	"github.com/wichananm65/football-storefront/internal/logging"
	"github.com/wichananm65/football-storefront/internal/page"
	"github.com/wichananm65/football-storefront/internal/product"
	"github.com/wichananm65/football-storefront/internal/storefront"
	"github.com/wichananm65/football-storefront/internal/token"
)

const purgeInterval = 10 * time.Minute

// Server is the storefront web application with its session backend.
type Server struct {
	App *fiber.App

	cfg     config.Config
	logger  *zap.Logger
	closers []func() error
}

// New wires every component from cfg. Session backends that need a
// connection are dialled here; Close releases them.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	logger = logging.OrNop(logger)
	s := &Server{cfg: cfg, logger: logger}

	signer := token.NewSigner(cfg.SessionSecret, cfg.SessionTTL)
	if cfg.SessionSecret == "" {
		logger.Warn("JWT_SECRET is not set, using a random key; sessions will not survive a restart")
	}
	provider, err := s.tokenProvider(ctx, signer)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger.Named("api"))
	products := product.NewService(product.NewAPIRepository(client), product.NewCatalog(), logger)
	categories := category.NewService(category.NewAPIRepository(client), logger)
	carts := cart.NewService(cart.NewAPIRepository(client), logger, cart.WithIdleTTL(cfg.SessionTTL))
	authService := auth.NewService(client, cfg.LoginEndpoint, carts.Forget, logger)

	app := fiber.New(fiber.Config{AppName: "football-storefront"})
	app.Use(recover.New())
	app.Use(logging.Middleware(logger))
	app.Use(page.SecureCookies(cfg.SecureCookies))
	setupCORS(app)
	app.Static("/static", cfg.StaticDir)

	router.Register(app, handler.NewCartHandler(carts, provider, presenter.NewCartPresenter()))
	storefront.NewHandler(storefront.NewLoader(categories, products, carts, logger), products, provider, logger).RegisterPublicRoutes(app)
	auth.NewHandler(authService, provider, logger).RegisterPublicRoutes(app)
	cartHandler := cart.NewHandler(carts, provider, logger)
	cartHandler.RegisterPublicRoutes(app)

	app.Use("/cart", auth.Guard(signer))
	cartHandler.RegisterProtectedRoutes(app)

	s.App = app
	return s, nil
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
}

func (s *Server) tokenProvider(ctx context.Context, signer *token.Signer) (token.Provider, error) {
	secure := s.cfg.SecureCookies
	switch s.cfg.SessionBackend {
	case config.BackendCookie:
		return token.NewCookieProvider(signer, secure), nil
	case config.BackendMemory:
		return token.NewSessionProvider(signer, token.NewInMemoryRepository(), secure, s.logger), nil
	case config.BackendPostgres:
		repo, err := s.openPostgres(ctx)
		if err != nil {
			return nil, err
		}
		return token.NewSessionProvider(signer, repo, secure, s.logger), nil
	case config.BackendRedis:
		opts, err := redis.ParseURL(s.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		s.closers = append(s.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return token.NewSessionProvider(signer, token.NewRedisRepository(rdb), secure, s.logger), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", s.cfg.SessionBackend)
	}
}

func (s *Server) openPostgres(ctx context.Context) (*token.PostgresRepository, error) {
	db, err := sql.Open("pgx", s.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, db.Close)
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	repo := token.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("create session table: %w", err)
	}

	purgeCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.purgeLoop(purgeCtx, repo)
	}()
	// stop the purge loop before the database closes
	s.closers = append([]func() error{func() error { cancel(); <-done; return nil }}, s.closers...)
	return repo, nil
}

func (s *Server) purgeLoop(ctx context.Context, repo *token.PostgresRepository) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.Purge(ctx)
			if err != nil {
				s.logger.Warn("purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Debug("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}

// Listen serves until the app is shut down.
func (s *Server) Listen() error {
	s.logger.Info("starting storefront", zap.String("addr", s.cfg.Addr), zap.String("api", s.cfg.APIBaseURL),
		zap.String("sessions", s.cfg.SessionBackend))
	return s.App.Listen(s.cfg.Addr)
}

// Close shuts the app down and releases the session backend.
func (s *Server) Close() error {
	var errs []error
	if s.App != nil {
		errs = append(errs, s.App.Shutdown())
	}
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.closers = nil
	return errors.Join(errs...)
}
