package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/airreservations/config"
	"github.com/Domenick1991/airreservations/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	shutdownTimeout = 5 * time.Second
	healthTimeout   = 2 * time.Second
	swaggerDocURL   = "/swagger/reservations.swagger.json"
)

// Pinger is a dependency whose reachability is reported by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Router   *gin.Engine
	Gatherer prometheus.Gatherer
	// Checks are pinged by /healthz and drive the gRPC serving status.
	Checks map[string]Pinger
	Logger *zap.SugaredLogger
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is cancelled or
// a server fails, then shuts both down.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	s := newServers(cfg, deps)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Logger.Infow("grpc server listening", "address", cfg.GRPC.Address)
		return s.grpcServer.Serve(lis)
	})
	g.Go(func() error {
		deps.Logger.Infow("http server listening", "address", cfg.HTTP.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deps.Logger.Infow("shutting down servers")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newServers(cfg *config.Config, deps Deps) *Servers {
	healthSrv := health.NewServer()
	grpcSrv := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	mountOps(cfg, deps, healthSrv)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           withCORS(cfg.HTTP.AllowedOrigins, deps.Router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
		health:     healthSrv,
	}
}

// mountOps adds the health, metrics and docs endpoints next to the API.
func mountOps(cfg *config.Config, deps Deps, healthSrv *health.Server) {
	router := deps.Router
	router.GET("/healthz", healthHandler(deps.Checks, healthSrv))

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerDocURL))))
	}
}

func healthHandler(checks map[string]Pinger, healthSrv *health.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		if status == http.StatusOK {
			healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		} else {
			healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
	}
}

func withCORS(origins []string, next http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
