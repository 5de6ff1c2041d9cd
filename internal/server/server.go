// Package server 쿼리 생성기와 스키마 소스를 HTTP API 로 노출
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"chatdb/internal/config"
	"chatdb/internal/db"
	"chatdb/internal/observe"
	"chatdb/internal/query"
	"chatdb/internal/schema"
)

// Dependencies 라우터에 주입할 의존성
type Dependencies struct {
	Config        config.ServerConfig
	DefaultSource string
	Generator     *query.Generator
	Registry      *db.Registry
	Logger        *slog.Logger
	Metrics       *observe.Metrics
}

// Server HTTP API 서버
type Server struct {
	cfg           config.ServerConfig
	defaultSource string
	generator     *query.Generator
	registry      *db.Registry
	parser        *schema.Parser
	logger        *slog.Logger
	metrics       *observe.Metrics
	handler       http.Handler
}

// New 라우터 구성
func New(deps Dependencies) *Server {
	s := &Server{
		cfg:           deps.Config,
		defaultSource: deps.DefaultSource,
		generator:     deps.Generator,
		registry:      deps.Registry,
		parser:        schema.NewParser(),
		logger:        observe.OrDiscard(deps.Logger),
		metrics:       deps.Metrics,
	}
	if s.metrics == nil {
		s.metrics = observe.NewMetrics()
	}
	if s.generator == nil {
		s.generator = query.NewGenerator(nil, query.WithLogger(s.logger), query.WithMetrics(s.metrics))
	}
	if s.registry == nil {
		s.registry = db.NewRegistry()
	}
	s.handler = s.routes()
	return s
}

// Handler 구성된 http.Handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	router := gin.New()

	router.Use(gin.Recovery(), requestID(), accessLog(s.logger), metrics(s.metrics))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/", s.handleWelcome)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := router.Group("/api/v1")
	if s.cfg.RequestTimeout > 0 {
		v1.Use(timeout(s.cfg.RequestTimeout))
	}
	if s.cfg.RateLimit > 0 {
		v1.Use(newIPLimiter(s.cfg.RateLimit, s.cfg.RateBurst).middleware())
	}
	{
		v1.GET("/health", s.handleHealth)
		v1.GET("/constructs", s.handleConstructs)

		sources := v1.Group("/sources")
		{
			sources.GET("", s.handleSources)
			sources.GET("/:source/tables", s.handleTables)
			sources.GET("/:source/tables/:table", s.handleTable)
		}

		v1.POST("/schema/parse", s.handleParseSchema)
		v1.POST("/nl-query", s.handleNLQuery)
		v1.POST("/sample-queries", s.handleSampleQueries)
	}

	return router
}

// Run 서버 시작, ctx 가 끝나면 정상 종료
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("서버 시작", slog.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("서버 종료 중")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
