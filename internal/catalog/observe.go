package catalog

import (
	"time"

	"github.com/mrlokans/aroundegypt/internal/metrics"
)

const (
	sourceOnline  = "online"
	sourceOffline = "offline"
)

func observe(op, source string, kind Kind, start time.Time) {
	outcome := "success"
	if kind != "" {
		outcome = string(kind)
	}
	metrics.OperationsTotal.WithLabelValues(op, source, outcome).Inc()
	metrics.OperationDuration.WithLabelValues(op, source).Observe(time.Since(start).Seconds())
}
