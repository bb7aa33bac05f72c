package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"recipebox/internal/common/pagination"
	seccfg "recipebox/internal/config"
	pgRepo "recipebox/internal/infra/adapter/persistence/postgres"
	"recipebox/internal/infra/db"
	"recipebox/internal/resilience/circuitbreaker"
	"recipebox/pkg/config"
	"recipebox/pkg/ratelimit"
	"recipebox/pkg/security/addrguard"
	"recipebox/pkg/security/csp"

	"recipebox/internal/infra/aiparse"
	"recipebox/internal/infra/embedding"
	"recipebox/internal/infra/extract"
	"recipebox/internal/infra/feed"
	"recipebox/internal/infra/fetcher"
	"recipebox/internal/infra/renderer"

	aiUC "recipebox/internal/usecase/ai"
	"recipebox/internal/usecase/feedimport"
	"recipebox/internal/usecase/importer"
	recUC "recipebox/internal/usecase/recipe"

	hhttp "recipebox/internal/handler/http"
	hauth "recipebox/internal/handler/http/auth"
	"recipebox/internal/handler/http/middleware"
	hrecipe "recipebox/internal/handler/http/recipe"
	"recipebox/internal/handler/http/requestid"
	"recipebox/internal/observability/tracing"
	authservice "recipebox/internal/service/auth"

	_ "recipebox/docs" // swagger docs
)

// @title           RecipeBox API
// @version         1.0
// @description     URL からレシピを安全に取り込むレシピ管理システムの REST API
// @description     レシピの検索・管理と、SSRF 対策済みのレシピインポート機能を提供します。

// @contact.name   API Support
// @contact.url    https://github.com/yujitsuchiya/recipebox
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT トークンによる認証。ヘッダーに "Bearer {token}" 形式で指定してください。

func main() {
	logger := initLogger()
	validateAdminCredentials(logger)
	validateViewerCredentials(logger)
	validateJWTSecret(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	serverComponents := setupServer(logger, database, version)

	runServer(logger, serverComponents, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// validateAdminCredentials validates the admin credentials at startup.
// This prevents the server from starting with empty or weak admin credentials.
func validateAdminCredentials(logger *slog.Logger) {
	if err := hauth.ValidateAdminCredentials(); err != nil {
		logger.Error("admin credentials validation failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// validateViewerCredentials validates the viewer credentials at startup.
// Unlike admin validation, this implements graceful degradation:
// if viewer credentials are misconfigured, the viewer role is disabled
// but the application continues to run in admin-only mode.
func validateViewerCredentials(logger *slog.Logger) {
	_ = hauth.ValidateViewerCredentials(logger)
}

// validateJWTSecret validates the JWT_SECRET environment variable for security requirements.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	// セキュリティ: 最小32文字（256ビット）を強制
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	// セキュリティ: よくある弱い秘密鍵を拒否
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler http.Handler

	// ImportLimiter is the per-caller import admission limiter; its idle
	// caller sweeper is started by runServer.
	ImportLimiter *ratelimit.Limiter
	SweepInterval time.Duration

	// AuthLimiter and IPLimiter protect the token endpoint and the whole
	// surface respectively. Both carry their own sweepers.
	AuthLimiter *middleware.RateLimiter
	IPLimiter   *hhttp.RateLimiter
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	recipes := pgRepo.NewRecipeRepo(database)
	embeddings := pgRepo.NewRecipeEmbeddingRepo(database)
	recipeSvc := recUC.Service{Repo: recipes}

	// Load import admission settings (per-caller sliding window)
	rateLimitSettings, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Error("failed to load rate limit configuration", slog.Any("error", err))
		os.Exit(1)
	}

	limiterCfg := rateLimitSettings.Config
	limiterCfg.Metrics = ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	importLimiter := ratelimit.New(limiterCfg)

	logger.Info("import admission limiter initialized",
		slog.Int("limit", limiterCfg.Limit),
		slog.Duration("window", limiterCfg.Window),
		slog.Int("max_callers", limiterCfg.MaxCallers))

	// Guarded outbound fetcher: every hostname is resolved and classified
	// before a connection is opened, on the first request and on every
	// redirect hop.
	guard := addrguard.NewGuard(nil)
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load fetcher configuration", slog.Any("error", err))
		os.Exit(1)
	}
	safeFetcher := fetcher.New(guard, fetchCfg)

	extractor := extract.NewExtractor()

	// Render fallback is optional; an empty endpoint disables it and the
	// import pipeline degrades to static extraction.
	renderCfg, err := renderer.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load renderer configuration", slog.Any("error", err))
		os.Exit(1)
	}
	var renderClient *renderer.Client
	if renderCfg.Endpoint != "" {
		renderClient = renderer.NewClient(renderCfg)
		logger.Info("render fallback enabled", slog.String("endpoint", renderCfg.Endpoint))
	} else {
		logger.Info("render fallback disabled")
	}

	aiParseCfg := aiparse.LoadConfigFromEnv()
	aiParser, err := aiparse.New(aiParseCfg)
	if err != nil {
		logger.Error("failed to initialize AI parser", slog.Any("error", err))
		os.Exit(1)
	}
	if aiParser != nil {
		logger.Info("AI parse fallback enabled", slog.String("provider", aiParseCfg.Provider))
	}

	embCfg := embedding.LoadConfigFromEnv()
	embProvider, err := embedding.New(embCfg)
	if err != nil {
		logger.Error("failed to initialize embedding provider", slog.Any("error", err))
		os.Exit(1)
	}
	hook := aiUC.NewEmbeddingHook(embProvider, embeddings, embCfg.Enabled)

	var rend importer.Renderer
	if renderClient != nil {
		rend = renderClient
	}

	importerSvc := importer.NewService(
		importLimiter,
		safeFetcher,
		extractor,
		rend,
		aiParser,
		recipes,
		hook,
		importer.Config{
			MaxBodySize:       fetchCfg.MaxBodySize,
			AIFallbackEnabled: aiParser != nil,
		},
	)

	feedSvc := feedimport.NewService(safeFetcher, feed.NewParser(), importerSvc, feedimport.LoadConfigFromEnv())
	similarSvc := aiUC.NewService(recipes, embeddings, embCfg.Enabled)

	// Load trusted proxy configuration for IP extraction
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Create appropriate IPExtractor based on configuration
	var ipExtractor middleware.IPExtractor
	if proxyConfig.Enabled {
		ipExtractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		ipExtractor = &middleware.RemoteAddrExtractor{}
		logger.Info("rate limiting: using RemoteAddr (secure mode, proxy headers ignored)")
	}

	// CSP configuration is shared between the middleware and the health
	// handler's status report.
	cspConfig, err := config.LoadCSPConfig()
	if err != nil {
		logger.Error("failed to load CSP configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Global per-IP rate limit over the whole surface
	ipLimit := config.GetEnvInt("IP_RATELIMIT_LIMIT", 300)
	ipWindow := config.GetEnvDuration("IP_RATELIMIT_WINDOW", 1*time.Minute)
	ipLimiter := hhttp.NewRateLimiter(ipLimit, ipWindow, ipExtractor)
	logger.Info("IP rate limiting initialized",
		slog.Int("limit", ipLimit),
		slog.Duration("window", ipWindow))

	rootMux, authLimiter := setupRoutes(routeDeps{
		Database:      database,
		Version:       version,
		RecipeSvc:     recipeSvc,
		ImporterSvc:   importerSvc,
		FeedSvc:       feedSvc,
		SimilarSvc:    similarSvc,
		EmbProvider:   embProvider,
		ImportLimiter: importLimiter,
		RenderClient:  renderClient,
		CSPConfig:     cspConfig,
		IPExtractor:   ipExtractor,
		Logger:        logger,
	})
	handler := applyMiddleware(logger, rootMux, ipLimiter, cspConfig)

	return &ServerComponents{
		Handler:       handler,
		ImportLimiter: importLimiter,
		SweepInterval: rateLimitSettings.SweepInterval,
		AuthLimiter:   authLimiter,
		IPLimiter:     ipLimiter,
	}
}

// routeDeps bundles everything setupRoutes needs.
type routeDeps struct {
	Database      *sql.DB
	Version       string
	RecipeSvc     recUC.Service
	ImporterSvc   *importer.Service
	FeedSvc       *feedimport.Service
	SimilarSvc    *aiUC.Service
	EmbProvider   aiUC.EmbeddingProvider
	ImportLimiter *ratelimit.Limiter
	RenderClient  *renderer.Client
	CSPConfig     *config.CSPConfig
	IPExtractor   middleware.IPExtractor
	Logger        *slog.Logger
}

// setupRoutes registers all HTTP routes (public and protected).
func setupRoutes(deps routeDeps) (*http.ServeMux, *middleware.RateLimiter) {
	// レート制限: 認証エンドポイントは1分間に5リクエストまで
	authRateLimiter := middleware.NewRateLimiter(5, 1*time.Minute, deps.IPExtractor)

	// Auth policy comes from config/security.yaml when present; built-in
	// defaults keep the server usable without one.
	minPasswordLength := 12
	weakPasswords := []string{"password", "123456", "admin", "test", "secret"}
	publicEndpoints := []string{"/auth/token", "/health", "/ready", "/live", "/metrics", "/swagger/", "/ai/health", "/ai/ready"}

	secPath := config.GetEnvString("SECURITY_CONFIG_PATH", "config/security.yaml")
	if secCfg, err := seccfg.LoadSecurityConfig(secPath); err != nil {
		deps.Logger.Warn("security config not loaded, using built-in defaults",
			slog.String("path", secPath),
			slog.Any("error", err))
	} else {
		minPasswordLength = secCfg.GetMinPasswordLength()
		if wp := secCfg.GetWeakPasswords(); len(wp) > 0 {
			weakPasswords = wp
		}
		if eps := secCfg.GetPublicEndpoints(); len(eps) > 0 {
			publicEndpoints = eps
		}
	}

	authProvider := hauth.NewMultiUserAuthProvider(minPasswordLength, weakPasswords)
	authService := authservice.NewAuthService(authProvider, publicEndpoints)

	publicMux := http.NewServeMux()
	publicMux.Handle("/auth/token", authRateLimiter.Middleware(hauth.TokenHandler(authService)))

	// ヘルスチェックエンドポイント（認証不要）
	var renderPinger hhttp.RenderPinger
	if deps.RenderClient != nil {
		renderPinger = deps.RenderClient
	}
	publicMux.Handle("/health", &hhttp.HealthHandler{
		DB:            deps.Database,
		Version:       deps.Version,
		DBBreaker:     circuitbreaker.NewDBCircuitBreaker(deps.Database),
		Limiter:       deps.ImportLimiter,
		Renderer:      renderPinger,
		CSPEnabled:    deps.CSPConfig.Enabled,
		CSPReportOnly: deps.CSPConfig.ReportOnly,
	})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: deps.Database})
	publicMux.Handle("/live", &hhttp.LiveHandler{})
	publicMux.Handle("/metrics", hhttp.MetricsHandler())

	// Embedding backend health (認証不要)
	if hc, ok := deps.EmbProvider.(aiUC.HealthChecker); ok {
		aiHealth := hhttp.NewAIHealthHandler(hc)
		publicMux.HandleFunc("/ai/health", aiHealth.Health)
		publicMux.HandleFunc("/ai/ready", aiHealth.Ready)
	}

	// Swagger UI（認証不要）
	publicMux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Load pagination configuration
	paginationCfg := pagination.LoadFromEnv()

	// Recipe routes carry their own auth wrapping per route.
	privateMux := http.NewServeMux()
	hrecipe.Register(privateMux, &deps.RecipeSvc, deps.ImporterSvc, deps.FeedSvc, deps.SimilarSvc, paginationCfg, deps.Logger)

	rootMux := http.NewServeMux()
	rootMux.Handle("/auth/token", publicMux)
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/ai/", publicMux)
	rootMux.Handle("/swagger/", publicMux)
	rootMux.Handle("/", privateMux)

	// Return auth rate limiter for sweeper management
	return rootMux, authRateLimiter
}

// applyMiddleware wraps the handler with middleware chain.
// Middleware order: CORS → Request ID → IP Rate Limit → Recovery → Logging → Body Limit → CSP → Tracing → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler, ipLimiter *hhttp.RateLimiter, cspConfig *config.CSPConfig) http.Handler {
	// Load CORS configuration from environment variables
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}

	corsConfig.Logger = logger

	// Log CORS startup configuration
	logger.Info("CORS enabled",
		slog.Int("allowed_origins_count", len(corsConfig.AllowedOrigins)),
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Any("allowed_headers", corsConfig.AllowedHeaders),
		slog.Int("max_age", corsConfig.MaxAge))

	// Create CSP middleware
	var cspMiddleware func(http.Handler) http.Handler
	if cspConfig.Enabled {
		cspMW := middleware.NewCSPMiddleware(middleware.CSPMiddlewareConfig{
			Enabled:       true,
			DefaultPolicy: csp.StrictPolicy(),
			PathPolicies: map[string]csp.Policy{
				"/swagger/": csp.SwaggerUIPolicy(),
			},
			ReportOnly: cspConfig.ReportOnly,
		})
		cspMiddleware = cspMW.Middleware()
		logger.Info("CSP enabled",
			slog.Bool("report_only", cspConfig.ReportOnly))
	} else {
		// No-op middleware if CSP is disabled
		cspMiddleware = func(next http.Handler) http.Handler {
			return next
		}
		logger.Warn("CSP is disabled")
	}

	// Build middleware chain
	// Recommended order:
	// 1. CORS (handles preflight requests early)
	// 2. Request ID (generates unique ID for request tracking)
	// 3. IP Rate Limiting (check rate limit before expensive operations)
	// 4. Recovery (catch panics)
	// 5. Logging (log all requests)
	// 6. Body Size Limit (prevent DoS)
	// 7. CSP (set security headers)
	// 8. Tracing (OTel span per request)
	// 9. Metrics (record request metrics)
	// 10. Authentication (in routes layer)
	// 11. Import admission limiting (in the import use case, after auth)

	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)
	middlewareChain = cspMiddleware(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain) // 1MB limit
	middlewareChain = hhttp.InputValidation()(middlewareChain)
	// Request deadline must exceed the worst-case import (fetch + render)
	requestTimeout := config.GetEnvDuration("REQUEST_TIMEOUT", 60*time.Second)
	middlewareChain = hhttp.Timeout(requestTimeout)(middlewareChain)
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)

	if ipLimiter != nil {
		middlewareChain = ipLimiter.Limit(middlewareChain)
	}

	middlewareChain = requestid.Middleware(middlewareChain)
	middlewareChain = middleware.CORS(*corsConfig)(middlewareChain)

	return middlewareChain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	// Create a context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start idle-caller sweepers so limiter memory stays bounded
	if components.ImportLimiter != nil {
		components.ImportLimiter.StartSweeper(ctx, components.SweepInterval)
		logger.Info("import limiter sweeper started",
			slog.Duration("interval", components.SweepInterval))
	}
	if components.AuthLimiter != nil {
		components.AuthLimiter.StartSweeper(ctx, components.SweepInterval)
	}
	if components.IPLimiter != nil {
		components.IPLimiter.StartSweeper(ctx, components.SweepInterval)
	}

	// Recompute SLO gauges once a minute from observed traffic
	hhttp.StartSLOUpdater(ctx, 1*time.Minute)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Cancel background goroutines (limiter sweepers)
	cancel()
	logger.Debug("background sweeper goroutines cancelled")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
