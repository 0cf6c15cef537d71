package worker

import (
	"net/http"
	"time"

	"github.com/ignite/travel-crm/internal/pkg/httputil"
)

// StatusHandler reports worker health. A nil evaluator means auto-evaluation
// is disabled, which is still healthy.
//
//	GET /health
func StatusHandler(e *ABTestEvaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if e == nil {
			httputil.OK(w, map[string]any{"status": "ok", "abtest_evaluator": "disabled"})
			return
		}

		healthy := e.IsHealthy()
		status := map[string]any{
			"status":           "ok",
			"abtest_evaluator": "enabled",
			"healthy":          healthy,
		}
		if last := e.LastRunAt(); !last.IsZero() {
			status["last_run_at"] = last.UTC().Format(time.RFC3339)
		}
		code := http.StatusOK
		if !healthy {
			status["status"] = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		httputil.JSON(w, code, status)
	}
}
