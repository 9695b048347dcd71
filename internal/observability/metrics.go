package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	notificationsIngested metric.Int64Counter
	eventsRecorded        metric.Int64Counter
	eventsPurged          metric.Int64Counter
	contentsReencoded     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.OtelEnabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.OtelExporterProtocol, cfg.OtelExporterEndpoint)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.OtelExporterEndpoint),
			zap.String("protocol", cfg.OtelExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "notifstore"
	}
	meter := provider.Meter(name)

	notificationsIngested, err := meter.Int64Counter("notifstore_notifications_ingested_total")
	if err != nil {
		return nil, err
	}
	eventsRecorded, err := meter.Int64Counter("notifstore_events_recorded_total")
	if err != nil {
		return nil, err
	}
	eventsPurged, err := meter.Int64Counter("notifstore_events_purged_total")
	if err != nil {
		return nil, err
	}
	contentsReencoded, err := meter.Int64Counter("notifstore_contents_reencoded_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		notificationsIngested: notificationsIngested,
		eventsRecorded:        eventsRecorded,
		eventsPurged:          eventsPurged,
		contentsReencoded:     contentsReencoded,
	}, nil
}

// RecordIngest increments notification ingest counts per terminal outcome.
func (m *Metrics) RecordIngest(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.notificationsIngested.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEvent increments audit event counts.
func (m *Metrics) RecordEvent(ctx context.Context, eventType, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("event_type", strings.TrimSpace(eventType)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.eventsRecorded.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPurge adds the number of audit events removed by a purge sweep.
func (m *Metrics) RecordPurge(ctx context.Context, deleted int64) {
	if m == nil || deleted <= 0 {
		return
	}
	m.eventsPurged.Add(ctx, deleted)
}

// RecordReencode adds the number of content rows rewritten by a re-encode.
func (m *Metrics) RecordReencode(ctx context.Context, rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.contentsReencoded.Add(ctx, rows)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome":    {},
	"event_type": {},
	"status":     {},
	"channel":    {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
