package metrics

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// InstrumentedRunner decorates a DBRunner with statement metrics.
type InstrumentedRunner struct {
	next      neopersist.DBRunner
	collector *Collector
}

// NewInstrumentedRunner wraps next.
func NewInstrumentedRunner(next neopersist.DBRunner, collector *Collector) *InstrumentedRunner {
	return &InstrumentedRunner{next: next, collector: collector}
}

// Run implements neopersist.DBRunner.
func (r *InstrumentedRunner) Run(ctx context.Context, query string, params map[string]interface{}) (*neo4j.EagerResult, error) {
	op := operationOf(query)
	start := time.Now()
	result, err := r.next.Run(ctx, query, params)
	r.collector.DBDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	r.collector.DBStatements.WithLabelValues(op, status).Inc()
	return result, err
}
