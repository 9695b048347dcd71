package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/opencitizen/notifstore/internal/config"
	contentdomain "github.com/opencitizen/notifstore/internal/content/domain"
	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
	demandtypedomain "github.com/opencitizen/notifstore/internal/demandtype/domain"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
	"github.com/opencitizen/notifstore/internal/ingest"
	statusdomain "github.com/opencitizen/notifstore/internal/status/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(
		NewEngine,
		NewServer,
	),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	engineIngest  *ingest.Engine
	demandSvc     demanddomain.Service
	eventSvc      eventdomain.Service
	statusSvc     statusdomain.Service
	demandTypeSvc demandtypedomain.Service
	contentStore  contentdomain.Store
	log           *zap.Logger
}

type ServerParams struct {
	fx.In

	Engine        *gin.Engine
	Ingest        *ingest.Engine
	DemandSvc     demanddomain.Service
	EventSvc      eventdomain.Service
	StatusSvc     statusdomain.Service
	DemandTypeSvc demandtypedomain.Service
	ContentStore  contentdomain.Store
	Log           *zap.Logger
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Engine,
		engineIngest:  p.Ingest,
		demandSvc:     p.DemandSvc,
		eventSvc:      p.EventSvc,
		statusSvc:     p.StatusSvc,
		demandTypeSvc: p.DemandTypeSvc,
		contentStore:  p.ContentStore,
		log:           p.Log.Named("server"),
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api/v1")

	api.POST("/notifications", s.PostNotification)
	api.GET("/notifications", s.ListNotifications)
	api.POST("/notifications/events", s.PostNotificationEvent)

	api.GET("/demands", s.ListDemands)
	api.GET("/demands/:demandTypeId/:demandId", s.GetDemand)
	api.DELETE("/demands/:demandTypeId/:demandId", s.DeleteDemand)

	api.GET("/statuses", s.ListStatuses)
	api.POST("/statuses", s.CreateStatus)
	api.PUT("/statuses/:id", s.UpdateStatus)
	api.DELETE("/statuses/:id", s.DeleteStatus)
	api.GET("/genericstatuses", s.ListGenericStatuses)

	api.GET("/events", s.ListEvents)
	api.DELETE("/events", s.DeleteEvents)

	api.GET("/demandtypes", s.ListDemandTypes)
	api.GET("/demandtypes/:typeId", s.GetDemandType)
	api.POST("/demandtypes", s.CreateDemandType)
	api.PUT("/demandtypes/:id", s.UpdateDemandType)
	api.DELETE("/demandtypes/:id", s.DeleteDemandType)

	api.POST("/admin/contents/reencode", s.ReencodeContents)
}
