// Package health 健康检查
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paydash/pkg/queue"
	"paydash/pkg/response"
)

// Pinger 可做连通性检查的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc 函数适配为 Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthController 健康检查控制器
type HealthController struct {
	checks  map[string]Pinger
	metrics *queue.QueueMetrics
}

// NewHealthController metrics 可以为空
func NewHealthController(checks map[string]Pinger, metrics *queue.QueueMetrics) *HealthController {
	return &HealthController{checks: checks, metrics: metrics}
}

// Show GET /healthz
func (hc *HealthController) Show(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	code := http.StatusOK
	checks := make(map[string]string, len(hc.checks))
	for name, p := range hc.checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = "down"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	body := gin.H{"checks": checks}
	if hc.metrics != nil {
		body["replay_queue"] = hc.metrics.Snapshot()
	}
	if code == http.StatusOK {
		body["status"] = response.Success
	} else {
		body["status"] = response.Error
	}
	response.Relay(c, code, body)
}
