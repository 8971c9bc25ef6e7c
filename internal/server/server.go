package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	auditdomain "github.com/brightframelabs/portal/internal/audit/domain"
	"github.com/brightframelabs/portal/internal/config"
	"github.com/brightframelabs/portal/internal/observability"
	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	DB       *gorm.DB
	Metrics  *observability.Metrics
	Ingest   paymentdomain.IngestService
	Orders   paymentdomain.OrderService
	Payments paymentdomain.Repository
	Logs     auditdomain.Repository
}

type Server struct {
	log      *zap.Logger
	cfg      config.Config
	db       *gorm.DB
	metrics  *observability.Metrics
	ingest   paymentdomain.IngestService
	orders   paymentdomain.OrderService
	payments paymentdomain.Repository
	logs     auditdomain.Repository
	engine   *gin.Engine
}

func NewServer(p Params) *Server {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		log:      p.Log.Named("server"),
		cfg:      p.Cfg,
		db:       p.DB,
		metrics:  p.Metrics,
		ingest:   p.Ingest,
		orders:   p.Orders,
		payments: p.Payments,
		logs:     p.Logs,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	s.engine.POST("/webhooks/:provider", s.HandleProviderWebhook)

	api := s.engine.Group("/api")
	{
		api.POST("/payments/orders", s.CreatePaymentOrder)
		admin := api.Group("/admin")
		{
			admin.GET("/payments", s.ListPayments)
			admin.GET("/webhook-logs", s.ListWebhookLogs)
		}
	}
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
