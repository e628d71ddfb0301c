package process

import (
	"sync"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/iconoclast/childprocess/logger"
	"github.com/iconoclast/childprocess/observability"
)

const instrumentationName = "github.com/iconoclast/childprocess/process"

var (
	metricsOnce sync.Once
	metrics     *observability.ProcessMetrics
)

// processMetrics returns the package instruments. They are created on the
// global meter provider, which forwards to whatever provider the
// application installs later.
func processMetrics() *observability.ProcessMetrics {
	metricsOnce.Do(func() {
		m, err := observability.NewProcessMetrics(observability.Meter(instrumentationName))
		if err != nil {
			logger.Get("process").Warn("metrics disabled", logger.ErrorFields("create_instruments", err))
			m, _ = observability.NewProcessMetrics(noop.NewMeterProvider().Meter(instrumentationName))
		}
		metrics = m
	})
	return metrics
}
