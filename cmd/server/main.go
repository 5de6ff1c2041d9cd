package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"chatdb/internal/config"
	"chatdb/internal/db"
	"chatdb/internal/observe"
	"chatdb/internal/query"
	"chatdb/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("chatdb-server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "설정 파일 경로 (기본: ./chatdb.yaml)")
	config.BindFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgFile, flags)
	if err != nil {
		return err
	}

	logger := observe.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(logger)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	fmt.Println(`
╔═══════════════════════════════════════════════════════════╗
║                    🚀 ChatDB Server                       ║
╚═══════════════════════════════════════════════════════════╝`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := db.NewRegistry()
	defer registry.Close()

	connectCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	err = registry.Connect(connectCtx, cfg.Sources, cfg.SchemaCacheTTL)
	cancel()
	if err != nil {
		return fmt.Errorf("스키마 소스 연결 실패: %w", err)
	}
	for _, name := range registry.Names() {
		logger.Info("스키마 소스 연결됨", slog.String("source", name))
	}

	metrics := observe.NewMetrics()
	gen := query.NewGenerator(nil,
		query.WithLogger(logger),
		query.WithMetrics(metrics),
		query.WithSeed(cfg.Seed),
	)

	srv := server.New(server.Dependencies{
		Config:        cfg.Server,
		DefaultSource: cfg.DefaultSource,
		Generator:     gen,
		Registry:      registry,
		Logger:        logger,
		Metrics:       metrics,
	})

	fmt.Printf("🌐 서버 시작: http://localhost%s\n", cfg.Server.Addr)
	return srv.Run(ctx)
}
