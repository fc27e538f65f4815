package api

import (
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/david/grantwise/internal/ai"
	"github.com/david/grantwise/internal/auth"
	"github.com/david/grantwise/internal/billing"
	"github.com/david/grantwise/internal/db"
	"github.com/david/grantwise/internal/grants"
	"github.com/david/grantwise/internal/guidelines"
)

// Rate limit windows mirror a 15-minute budget: 100 requests overall, 10
// proposal generations.
const rateLimitWindow = 15 * time.Minute

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool

	Generator *ai.Generator
	Embedder  ai.Embedder
	Grants    *grants.Client
	Matcher   *grants.Matcher
	Fetcher   *guidelines.Fetcher

	Now func() time.Time
}

func NewServer(pool *pgxpool.Pool) (*Server, error) {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Every(rateLimitWindow / 100),
			Burst:     100,
			ExpiresIn: rateLimitWindow,
		}),
	}))

	aiClient, err := ai.NewClientFromEnv()
	if err != nil {
		return nil, err
	}

	grantsClient := grants.NewClient()

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Echo:        e,
		Generator:   ai.NewGenerator(aiClient),
		Embedder:    aiClient,
		Grants:      grantsClient,
		Matcher:     grants.NewMatcher(grantsClient),
		Fetcher:     guidelines.NewFetcher(),
		Now:         time.Now,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")

	// Public
	api.GET("/plans", s.handleListPlans)
	api.POST("/guidelines/parse", s.handleParseGuidelines)
	api.POST("/guidelines/parse-pdf", s.handleParseGuidelinesPDF)
	api.POST("/guidelines/fetch", s.handleFetchGuidelines)
	api.POST("/proposals/check", s.handleCheckCompliance)
	api.GET("/grants/search", s.handleSearchGrants)
	api.GET("/grants/:id", s.handleGetGrant)
	api.POST("/grants/match", s.handleMatchGrants)

	// Auth
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected proposal routes; generation gets its own tighter limiter.
	proposals := api.Group("/proposals")
	proposals.Use(auth.Middleware)
	proposals.POST("/generate", s.handleGenerateProposal, middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Every(rateLimitWindow / 10),
			Burst:     10,
			ExpiresIn: rateLimitWindow,
		}),
	}))
	proposals.POST("/voice", s.handleAnalyzeVoice)
	proposals.GET("", s.handleListProposals)
	proposals.GET("/:id", s.handleGetProposal)
	proposals.DELETE("/:id", s.handleDeleteProposal)
	proposals.POST("/:id/refine", s.handleRefineProposal)
	proposals.POST("/:id/check", s.handleCheckStoredCompliance)
	proposals.GET("/:id/similar", s.handleSimilarProposals)
	proposals.GET("/:id/export", s.handleExportProposal)

	// Protected account routes
	account := api.Group("/account")
	account.Use(auth.Middleware)
	account.GET("", s.handleGetAccount)
	account.POST("/plan", s.handleChangePlan)

	// Saved grants
	saved := api.Group("/saved/grants")
	saved.Use(auth.Middleware)
	saved.POST("", s.handleSaveGrant)
	saved.DELETE("/:id", s.handleUnsaveGrant)
	saved.GET("", s.handleListSavedGrants)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, billing.Plans())
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

// validateFetchURL rejects URLs that would let a caller probe internal
// addresses through the guidelines fetcher.
func validateFetchURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid URL scheme")
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "URL host is required")
	}
	if host == "localhost" || host == "127.0.0.1" || host == "::1" || strings.HasSuffix(host, ".local") {
		return echo.NewHTTPError(http.StatusForbidden, "Internal network access forbidden")
	}

	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to resolve URL host")
	}
	for _, ip := range ips {
		if isPrivateOrSpecialIP(ip) {
			return echo.NewHTTPError(http.StatusForbidden, "Internal network access forbidden")
		}
	}
	return nil
}

func isPrivateOrSpecialIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsMulticast() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		if ip4[0] == 100 && ip4[1]&0xC0 == 64 {
			return true
		}
		if ip4[0] == 169 && ip4[1] == 254 {
			return true
		}
	}

	return false
}
