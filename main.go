package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"orbitarena/config"
	"orbitarena/server"
)

const shutdownTimeout = 10 * time.Second

// OrbitArena 入口：加载配置，启动 HTTP + WebSocket 服务，单个全局房间
func main() {
	var configPath, addr string
	flag.StringVar(&configPath, "config", "", "path to YAML configuration file (optional)")
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (overrides server.addr)")
	flag.Parse()

	// .env 只是补充环境变量，不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := server.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	hub := server.NewHub(cfg, sugar.Named("hub"))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/metrics", hub.HandleMetrics)
	mux.HandleFunc("/admin/config", hub.HandleAdminConfig)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		sugar.Infow("OrbitArena listening", "addr", cfg.Server.Addr, "step", cfg.Room.Step)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("listen", "error", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	sugar.Infow("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Errorw("http shutdown", "error", err)
	}
	// 已升级的连接不受 Shutdown 管理，需要单独关闭
	if err := hub.Close(ctx); err != nil {
		sugar.Errorw("hub shutdown", "error", err, "connections", hub.ConnectionCount())
	}
	sugar.Infow("shutdown complete", "players", hub.Room().PlayerCount())
}
