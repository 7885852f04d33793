package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/BaSui01/imagegate/api/handlers"
	"github.com/BaSui01/imagegate/config"
	"github.com/BaSui01/imagegate/internal/metrics"
	"github.com/BaSui01/imagegate/internal/server"
	"github.com/BaSui01/imagegate/internal/telemetry"
	"github.com/BaSui01/imagegate/llm/image"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 组装图像 Provider、处理器与 API / Metrics 两个监听器
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Providers

	// metricsNamespace Prometheus 指标前缀
	metricsNamespace string

	httpManager    *server.Manager
	metricsManager *server.Manager

	healthHandler *handlers.HealthHandler
	imageHandler  *handlers.ImageHandler

	metricsCollector *metrics.Collector
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger, otelProviders *telemetry.Providers) *Server {
	return &Server{
		cfg:              cfg,
		logger:           logger,
		telemetry:        otelProviders,
		metricsNamespace: "imagegate",
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 绑定两个端口并开始服务（非阻塞）
func (s *Server) Start() error {
	handler := s.Handler()

	s.httpManager = server.NewManager(handler, server.Config{
		Name:            "api",
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		_ = s.httpManager.Shutdown(context.Background())
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("all servers started",
		zap.String("http_addr", s.httpManager.Addr()),
		zap.String("metrics_addr", s.metricsManager.Addr()),
	)
	return nil
}

// Handler 构建带完整中间件链的 API 路由，首次调用时初始化处理器
func (s *Server) Handler() http.Handler {
	if s.imageHandler == nil {
		s.initHandlers()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))
	mux.HandleFunc("/api/generate", s.imageHandler.HandleGenerate)
	mux.HandleFunc("/api/edit", s.imageHandler.HandleEdit)

	return Chain(mux,
		Recovery(s.logger),
		RequestID(),
		CORS(),
		SecurityHeaders(),
		OTelTracing(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
	)
}

// initHandlers 按配置构造 Provider → Adapter → Handler
func (s *Server) initHandlers() {
	s.metricsCollector = metrics.NewCollector(s.metricsNamespace, s.logger)
	s.healthHandler = handlers.NewHealthHandler(s.logger)

	imgCfg := s.cfg.Image
	if imgCfg.APIKey == "" {
		s.logger.Warn("image api key not configured, provider calls will be rejected upstream")
	}

	provider := image.NewOpenAIProvider(image.OpenAIConfig{
		APIKey:  imgCfg.APIKey,
		BaseURL: imgCfg.BaseURL,
		Model:   imgCfg.Model,
		Timeout: imgCfg.Timeout,
	}, s.logger)

	adapter := image.NewAdapter(provider, s.logger,
		image.WithModel(imgCfg.Model),
		image.WithRecorder(s.metricsCollector),
	)

	opts := []handlers.ImageHandlerOption{
		handlers.WithDefaultSize(imgCfg.DefaultSize),
		handlers.WithMaxUploadBytes(s.cfg.Server.MaxUploadBytes),
	}
	if imgCfg.StrictSize {
		opts = append(opts, handlers.WithAllowedSizes(adapter.SupportedSizes()))
	}
	s.imageHandler = handlers.NewImageHandler(adapter, s.logger, opts...)

	s.logger.Info("handlers initialized",
		zap.String("provider", provider.Name()),
		zap.String("model", imgCfg.Model),
		zap.String("default_size", imgCfg.DefaultSize),
		zap.Bool("strict_size", imgCfg.StrictSize),
	)
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s.metricsManager = server.NewManager(mux, server.Config{
		Name:            "metrics",
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	return s.metricsManager.Start()
}

// =============================================================================
// 🛑 运行与关闭
// =============================================================================

// Run 阻塞直到 ctx 取消或任一监听器异常退出，然后并发关闭两个监听器并刷新遥测
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.httpManager.Run(gctx) })
	g.Go(func() error { return s.metricsManager.Run(gctx) })

	err := g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if terr := s.telemetry.Shutdown(flushCtx); terr != nil {
		s.logger.Warn("telemetry shutdown error", zap.Error(terr))
	}

	if err != nil {
		return err
	}
	s.logger.Info("graceful shutdown completed")
	return nil
}
