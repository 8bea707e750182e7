package http

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	adminusers "logistica/frontend/adminUsers"
	"logistica/frontend/allocation"
	"logistica/frontend/conference"
	"logistica/frontend/labels"
	loginflow "logistica/frontend/login"
	"logistica/frontend/products"
	"logistica/frontend/schedules"
	sessioncontext "logistica/frontend/shared/context"
	"logistica/frontend/shared/nav"
	"logistica/infrastructure/audit"
	"logistica/infrastructure/cache"
	"logistica/infrastructure/config"
	"logistica/infrastructure/jsonstore"
	"logistica/infrastructure/rbac"
	sessioncookie "logistica/infrastructure/session"
	"logistica/infrastructure/sqlite"
	"logistica/models"
)

//go:embed assets/*
var assets embed.FS

const defaultShutdownTimeout = 5 * time.Second

// Services are the domain services behind the /app routes.
type Services struct {
	Products   *products.Service
	Schedules  *schedules.Service
	Conference *conference.Service
	Allocation *allocation.Service
	Labels     *labels.Service
	Users      *adminusers.Service
}

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	Config       config.Config
	DB           *sqlite.DB
	Store        *jsonstore.Store
	SessionCache *cache.UserSessionCache
	UserCache    *cache.UserCache
	Rbac         *rbac.Rbac
	Audit        *audit.Service
	Services     Services
}

// NewServer builds the services on top of db and store and wires every route.
func NewServer(cfg config.Config, db *sqlite.DB, store *jsonstore.Store, sessionCache *cache.UserSessionCache, userCache *cache.UserCache) *Server {
	auditSvc := audit.NewService(db)
	productSvc := products.NewService(store, auditSvc)
	grid := allocation.Grid{Buildings: cfg.Rua08.Buildings, Levels: cfg.Rua08.Levels}

	s := &Server{
		Addr:         cfg.Server.Address,
		router:       chi.NewRouter(),
		Config:       cfg,
		DB:           db,
		Store:        store,
		SessionCache: sessionCache,
		UserCache:    userCache,
		Rbac:         rbac.New(cache.NewResourceCache()),
		Audit:        auditSvc,
		Services: Services{
			Products:   productSvc,
			Schedules:  schedules.NewService(store, auditSvc),
			Conference: conference.NewService(store, productSvc, auditSvc),
			Allocation: allocation.NewService(store, grid, auditSvc),
			Labels:     labels.NewService(store, grid),
			Users:      adminusers.NewService(db, auditSvc, sessionCache, userCache, cfg.Admin.Username),
		},
		server: &http.Server{
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		session, ok := s.resolveSession(r.Context(), sessionCookie.Value)
		if !ok || session.Expired() {
			http.SetCookie(w, sessioncookie.Clear(s.secure()))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, nav.Home(session), http.StatusSeeOther)
	})

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		slog.Error("assets subfs init failed; serving fallback fs", slog.Any("err", err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterLoginRoutes()

	s.router.Route("/app", func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		s.RegisterProductRoutes(r)
		s.RegisterScheduleRoutes(r)
		s.RegisterConferenceRoutes(r)
		s.RegisterAllocationRoutes(r)
		s.RegisterReportRoutes(r)
		s.RegisterAdminRoutes(r)
		s.RegisterAccountRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AuthenticateMiddleware loads the session and applies permission checks.
// Signed-in users without the module get 403, anonymous users go to /login.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		sessionToken := sessionCookie.Value
		session, ok := s.resolveSession(r.Context(), sessionToken)
		if !ok {
			slog.Warn("session not found", slog.String("method", r.Method), slog.String("path", r.URL.Path))
			http.SetCookie(w, sessioncookie.Clear(s.secure()))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if session.Expired() {
			http.SetCookie(w, sessioncookie.Clear(s.secure()))
			s.SessionCache.DeleteSessionBySessionToken(sessionToken)
			if err := loginflow.DeleteSessionByToken(r.Context(), s.DB, sessionToken); err != nil {
				slog.Error("cannot delete session from DB", slog.String("session_id", sessionToken), slog.Any("err", err))
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if !s.Rbac.Allowed(session, r.URL.Path, r.Method) {
			slog.Warn("access denied",
				slog.String("username", session.User.Username),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			http.Error(w, "acesso negado", http.StatusForbidden)
			return
		}

		ctx := sessioncontext.NewContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveSession(ctx context.Context, token string) (session models.Session, ok bool) {
	if cached, found := s.SessionCache.FindSessionBySessionToken(token); found {
		return cached, true
	}

	dbSession, err := loginflow.LoadSessionByToken(ctx, s.DB, token)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("load session from db failed", slog.String("session_id", token), slog.Any("err", err))
		}
		return session, false
	}

	s.SessionCache.AddSession(dbSession)
	s.UserCache.Add(dbSession.User)
	return dbSession, true
}

func (s *Server) secure() bool {
	return s.Config.IsProduction()
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.Config.Server.ShutdownTimeout > 0 {
		return s.Config.Server.ShutdownTimeout
	}
	return defaultShutdownTimeout
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("err", err))
		}
	}()
	slog.Info("http server listening", slog.String("addr", s.ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	s.ln = nil
	return nil
}
