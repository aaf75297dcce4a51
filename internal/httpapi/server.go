package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fitmatlabs/campus-arena/internal/session"
	"github.com/fitmatlabs/campus-arena/internal/tallycache"
	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsContextKey = "auth_claims"

// Dependencies carries the wired services for the facade.
type Dependencies struct {
	Logger   *zap.Logger
	Identity *campus.IdentityService
	Betting  *campus.BettingService
	Voting   *campus.VotingService
	Store    campus.Store
	Sessions *session.Manager
	Tallies  *tallycache.Cache
	Metrics  http.Handler
}

// Server is the JSON HTTP facade over the campus services.
type Server struct {
	cfg      Config
	logger   *zap.Logger
	identity *campus.IdentityService
	betting  *campus.BettingService
	voting   *campus.VotingService
	store    campus.Store
	sessions *session.Manager
	tallies  *tallycache.Cache
	metrics  http.Handler
}

// New validates config and wires a Server.
func New(cfg Config, deps Dependencies) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Identity == nil || deps.Betting == nil || deps.Voting == nil {
		return nil, fmt.Errorf("missing service dependency")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("missing store dependency")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("missing session manager dependency")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		identity: deps.Identity,
		betting:  deps.Betting,
		voting:   deps.Voting,
		store:    deps.Store,
		sessions: deps.Sessions,
		tallies:  deps.Tallies,
		metrics:  deps.Metrics,
	}, nil
}

// Run serves until the context is canceled, then shuts down gracefully.
func (server *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    server.cfg.ListenAddr,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("http api listening", zap.String("addr", server.cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			server.logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Router assembles the gin engine with all routes and middleware.
func (server *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if server.metrics != nil {
		router.GET("/metrics", gin.WrapH(server.metrics))
	}

	api := router.Group("/api")
	api.POST("/auth/signup", server.handleSignup)
	api.POST("/auth/login", server.handleLogin)

	authed := api.Group("")
	authed.Use(server.sessions.GinMiddleware(claimsContextKey))

	authed.GET("/session", server.handleSession)
	authed.POST("/auth/logout", server.handleLogout)

	authed.GET("/events", server.handleListEvents)
	authed.GET("/events/:id", server.handleGetEvent)

	authed.POST("/bets", server.handlePlaceBet)
	authed.GET("/bets", server.handleListBets)
	authed.GET("/bets/summary", server.handleBetSummary)

	authed.GET("/elections", server.handleListElections)
	authed.POST("/elections/:id/votes", server.handleCastVote)
	authed.GET("/elections/:id/tally", server.handleTally)

	admin := authed.Group("/admin")
	admin.Use(server.requireAdmin())
	admin.GET("/stats", server.handleAdminStats)
	admin.GET("/users", server.handleAdminListUsers)
	admin.PUT("/events/:id", server.handleAdminUpdateEvent)
	admin.POST("/elections", server.handleAdminCreateElection)
	admin.PUT("/elections/:id/status", server.handleAdminSetElectionStatus)

	return router
}

func (server *Server) requireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims := getClaims(ctx)
		if claims == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
			return
		}
		if claims.Role != campus.RoleAdmin.String() {
			ctx.AbortWithStatusJSON(http.StatusForbidden, errorResponse("forbidden", "admin role required"))
			return
		}
		ctx.Next()
	}
}

func getClaims(ctx *gin.Context) *session.Claims {
	claimsValue, ok := ctx.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := claimsValue.(*session.Claims)
	return claims
}

// currentUserID resolves the authenticated user id, replying 401 itself
// when the session is missing.
func (server *Server) currentUserID(ctx *gin.Context) (campus.UserID, bool) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return campus.UserID{}, false
	}
	userID, err := campus.NewUserID(claims.UserID())
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return campus.UserID{}, false
	}
	return userID, true
}

func (server *Server) setSessionCookie(ctx *gin.Context, user campus.User) error {
	token, _, err := server.sessions.Issue(user.ID.String(), user.Email.String(), user.Role.String())
	if err != nil {
		return err
	}
	ctx.SetCookie(
		server.sessions.CookieName(),
		token,
		int(server.sessions.TTL().Seconds()),
		"/",
		"",
		server.cfg.SecureCookies,
		true,
	)
	return nil
}

func (server *Server) clearSessionCookie(ctx *gin.Context) {
	ctx.SetCookie(server.sessions.CookieName(), "", -1, "/", "", server.cfg.SecureCookies, true)
}
