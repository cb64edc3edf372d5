package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/platform/envutil"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
	apiInflight    *Gauge
	drinksLogged   *CounterVec
	drinksRejected *CounterVec
	lotsRestored   *CounterVec
	cacheRefresh   *HistogramVec
	cacheEntries   *Gauge
	sseClients     *Gauge
	busPublish     *CounterVec
	dbStats        *GaugeVec
	redisUp        *Gauge
	redisPing      *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second)
}

// Init returns the process metrics registry, or nil when metrics are off.
// Every method is nil-safe.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("pintlog_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"pintlog_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:    NewGauge("pintlog_api_inflight_requests", "In-flight API requests."),
		drinksLogged:   NewCounterVec("pintlog_drinks_logged_total", "Drinks logged by source.", []string{"source"}),
		drinksRejected: NewCounterVec("pintlog_drinks_rejected_total", "Drinks rejected by reason.", []string{"reason"}),
		lotsRestored:   NewCounterVec("pintlog_lot_restores_total", "Purchase lot restores after a drink delete by outcome.", []string{"outcome"}),
		cacheRefresh: NewHistogramVec(
			"pintlog_entry_cache_refresh_seconds",
			"Entry cache refetch duration by status.",
			[]string{"status"},
			[]float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		cacheEntries: NewGauge("pintlog_entry_cache_entries", "Entries held by the entry cache."),
		sseClients:   NewGauge("pintlog_sse_clients", "Connected SSE clients on this instance."),
		busPublish:   NewCounterVec("pintlog_realtime_publish_total", "Realtime bus publishes by event/status.", []string{"event", "status"}),
		dbStats:      NewGaugeVec("pintlog_db_stats", "Database pool stats.", []string{"metric"}),
		redisUp:      NewGauge("pintlog_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing:    NewGauge("pintlog_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.drinksLogged, m.drinksRejected, m.lotsRestored,
		m.cacheRefresh, m.cacheEntries, m.sseClients, m.busPublish,
		m.dbStats, m.redisUp, m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveDrinkLogged counts a stored drink; source is "lot" or "manual".
func (m *Metrics) ObserveDrinkLogged(source string) {
	if m == nil {
		return
	}
	m.drinksLogged.Inc(source)
}

func (m *Metrics) ObserveDrinkRejected(reason string) {
	if m == nil {
		return
	}
	m.drinksRejected.Inc(reason)
}

func (m *Metrics) ObserveLotRestore(outcome string) {
	if m == nil {
		return
	}
	m.lotsRestored.Inc(outcome)
}

func (m *Metrics) ObserveCacheRefresh(entries int, err error, dur time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	} else {
		m.cacheEntries.Set(float64(entries))
	}
	m.cacheRefresh.Observe(dur.Seconds(), status)
}

func (m *Metrics) SSEClientConnected() {
	if m == nil {
		return
	}
	m.sseClients.Inc()
}

func (m *Metrics) SSEClientDisconnected() {
	if m == nil {
		return
	}
	m.sseClients.Dec()
}

func (m *Metrics) ObservePublish(event string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.busPublish.Inc(event, status)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	interval := scrapeInterval()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
