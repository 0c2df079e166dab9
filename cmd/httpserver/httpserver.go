// Package httpserver manages server creation and api routing.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/admindelivery"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/sessiondelivery"
	"github.com/go-petr/pet-ledger/internal/sessionservice"
	"github.com/go-petr/pet-ledger/internal/transferdelivery"
	"github.com/go-petr/pet-ledger/internal/transferservice"
	"github.com/go-petr/pet-ledger/internal/userdelivery"
	"github.com/go-petr/pet-ledger/internal/userservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Server holds the backend, handlers router and configuration.
type Server struct {
	Backend *Backend
	Engine  *gin.Engine
	Config  configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(backend *Backend, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	tokenMaker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	opts := []transferservice.Option{
		transferservice.WithStoreTimeout(config.StoreTimeout),
		transferservice.WithRetry(config.LookupRetries, config.RetryBaseDelay),
	}
	if backend.Settler != nil {
		opts = append(opts, transferservice.WithSettler(backend.Settler))
	}

	accountService := accountservice.New(backend.Accounts, config.DefaultCurrency)
	userService := userservice.New(backend.Users, accountService)
	transferService := transferservice.New(backend.Transfers, backend.Accounts, opts...)

	sessionService, err := sessionservice.New(backend.Sessions, config, tokenMaker)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	userHandler := userdelivery.NewHandler(userService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	adminHandler := admindelivery.NewHandler(config.StoreBackend, backend)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := web.RegisterValidators(v); err != nil {
			return nil, errors.New("cannot register validators")
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/auth/signup", userHandler.Create)
	engine.POST("/auth/signin", userHandler.Login)
	engine.POST("/auth/refresh", sessionHandler.Renew)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/auth/logout", sessionHandler.Logout)

	authRoutes.GET("/accounts/me", accountHandler.Get)
	authRoutes.POST("/accounts/topup", accountHandler.TopUp)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.GET("/transfers", transferHandler.List)
	authRoutes.GET("/transfers/:reference", transferHandler.Get)

	adminRoutes := engine.Group("/admin").Use(middleware.AuthMiddleware(tokenMaker), middleware.RequireRole(domain.RoleAdmin))

	adminRoutes.GET("/dashboard", adminHandler.Dashboard)
	adminRoutes.POST("/accounts/:number/deactivate", accountHandler.Deactivate)

	server := &Server{
		Backend: backend,
		Engine:  engine,
		Config:  config,
	}

	return server, nil
}
