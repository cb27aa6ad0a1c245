package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/joshua-takyi/gatepass/internal/services"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)
)

// counter falls back to a no-op instrument so a broken meter provider never
// blocks a booking.
func counter(name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit("{booking}"))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}
