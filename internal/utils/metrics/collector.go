// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Collector управляет набором метрик на собственном реестре
type Collector struct {
	registry *prometheus.Registry
	metrics  sync.Map

	namesLock sync.RWMutex
	names     map[solana.PublicKey]string
}

// NewCollector создает новый экземпляр коллектора метрик
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		names:    make(map[solana.PublicKey]string),
	}
	for metricType, metric := range newMetrics() {
		c.metrics.Store(metricType, metric)
		c.registry.MustRegister(metric)
	}
	return c
}

// Registry exposes the collector's registry, e.g. for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// NameProgram makes instruction metrics for id use name as the label.
func (c *Collector) NameProgram(id solana.PublicKey, name string) {
	c.namesLock.Lock()
	defer c.namesLock.Unlock()
	c.names[id] = name
}

func (c *Collector) programLabel(id solana.PublicKey) string {
	c.namesLock.RLock()
	defer c.namesLock.RUnlock()
	if name, ok := c.names[id]; ok {
		return name
	}
	return id.String()
}

func (c *Collector) counterVec(t MetricType) *prometheus.CounterVec {
	m, _ := c.metrics.Load(t)
	vec, _ := m.(*prometheus.CounterVec)
	return vec
}

func (c *Collector) counter(t MetricType) prometheus.Counter {
	m, _ := c.metrics.Load(t)
	counter, _ := m.(prometheus.Counter)
	return counter
}

func (c *Collector) histogram(t MetricType) prometheus.Histogram {
	m, _ := c.metrics.Load(t)
	h, _ := m.(prometheus.Histogram)
	return h
}

// ObserveTransaction records one executed transaction.
func (c *Collector) ObserveTransaction(status string, computeUnits uint64, duration time.Duration) {
	c.counterVec(TransactionCounterType).WithLabelValues(status).Inc()
	c.histogram(ComputeUnitsType).Observe(float64(computeUnits))
	c.histogram(TransactionDurationType).Observe(duration.Seconds())
}

// ObserveInstruction counts a top-level instruction for its program.
func (c *Collector) ObserveInstruction(programID solana.PublicKey) {
	c.counterVec(InstructionCounterType).WithLabelValues(c.programLabel(programID)).Inc()
}

// RecordFee adds a fee paid into the treasury.
func (c *Collector) RecordFee(lamports uint64) {
	c.counter(FeesCollectedType).Add(float64(lamports))
}

// RecordLaunch counts a finished launch task.
func (c *Collector) RecordLaunch(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	c.counterVec(LaunchCounterType).WithLabelValues(status).Inc()
}

// Reset сбрасывает все векторные метрики (полезно для тестирования)
func (c *Collector) Reset() {
	c.metrics.Range(func(_, value interface{}) bool {
		if m, ok := value.(*prometheus.CounterVec); ok {
			m.Reset()
		}
		return true
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
