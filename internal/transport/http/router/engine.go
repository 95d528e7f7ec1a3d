package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"arena-social/internal/core/auth"
	"arena-social/internal/core/server"
	mdw "arena-social/internal/transport/http/middleware"
	resp "arena-social/internal/transport/http/response"
)

type Limits struct {
	RPS          float64
	Burst        int
	PerIPRPS     float64
	PerIPBurst   int
	Concurrency  int64
	MaxBodyBytes int64
	Timeout      time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.PerIPRPS <= 0 {
		l.PerIPRPS = 20
	}
	if l.PerIPBurst <= 0 {
		l.PerIPBurst = 40
	}
	if l.Concurrency <= 0 {
		l.Concurrency = 300
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	return l
}

type Deps struct {
	Log          *zap.Logger
	JWT          *auth.JWTer
	Modules      *Registry
	Limits       Limits
	Mode         string
	AllowOrigins []string
	// Health reports readiness of the backing stores; nil means always healthy.
	Health func(ctx context.Context) error
}

// newEngine assembles the shared middleware chain plus /health and /metrics.
func newEngine(d Deps, namespace string) *gin.Engine {
	lim := d.Limits.withDefaults()
	r := server.NewRouter(d.Log, server.Options{
		Name:         namespace,
		Mode:         d.Mode,
		AllowOrigins: d.AllowOrigins,
		Recovery:     mdw.RecoveryJSON,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := mdw.NewHTTPMetrics(reg, namespace)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.Timeout),
		metrics.Handler(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				resp.Abort(c, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return r
}
