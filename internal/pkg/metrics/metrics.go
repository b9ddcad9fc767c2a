package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kiosk404/warp/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wrp_queries_total",
		Help: "Total number of processed queries",
	}, []string{"path"}) // path: direct, tools, error

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wrp_query_duration_seconds",
		Help:    "End-to-end query latency in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	providerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wrp_provider_calls_total",
		Help: "Total number of backend chat calls",
	}, []string{"provider", "status"}) // status: ok or a failure reason

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wrp_provider_latency_seconds",
		Help:    "Backend chat call latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"provider"})

	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wrp_tool_calls_total",
		Help: "Total number of tool invocations",
	}, []string{"server", "tool", "status"}) // status: ok, tool_error, failed

	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wrp_tool_latency_seconds",
		Help:    "Tool invocation latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"server"})

	connectedServers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wrp_connected_servers",
		Help: "Number of tool servers currently connected",
	})
)

func RecordQuery(path string, d time.Duration) {
	queriesTotal.WithLabelValues(path).Inc()
	queryDuration.Observe(d.Seconds())
}

func RecordProviderCall(provider, status string, d time.Duration) {
	providerCalls.WithLabelValues(provider, status).Inc()
	providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

func RecordToolCall(server, tool, status string, d time.Duration) {
	toolCalls.WithLabelValues(server, tool, status).Inc()
	toolLatency.WithLabelValues(server).Observe(d.Seconds())
}

func ServerConnected() { connectedServers.Inc() }

func ServerDisconnected() { connectedServers.Dec() }

// Serve exposes /metrics on addr until ctx is done. An empty addr disables
// the endpoint.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Metrics] serving /metrics on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
