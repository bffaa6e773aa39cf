package metrics

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
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	donationsCreated  metric.Int64Counter
	donationAmount    metric.Float64Counter
	quoteRequests     metric.Int64Counter
	checkDropTriggers metric.Int64Counter
	feedSubscribers   metric.Int64UpDownCounter
	outboxDispatched  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
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
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "storefront"
	}
	meter := provider.Meter(name)

	donationsCreated, err := meter.Int64Counter("storefront_donations_created_total")
	if err != nil {
		return nil, err
	}
	donationAmount, err := meter.Float64Counter("storefront_donation_amount_total")
	if err != nil {
		return nil, err
	}
	quoteRequests, err := meter.Int64Counter("storefront_quote_requests_total")
	if err != nil {
		return nil, err
	}
	checkDropTriggers, err := meter.Int64Counter("storefront_checkdrop_triggers_total")
	if err != nil {
		return nil, err
	}
	feedSubscribers, err := meter.Int64UpDownCounter("storefront_feed_subscribers")
	if err != nil {
		return nil, err
	}
	outboxDispatched, err := meter.Int64Counter("storefront_outbox_dispatched_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		donationsCreated:  donationsCreated,
		donationAmount:    donationAmount,
		quoteRequests:     quoteRequests,
		checkDropTriggers: checkDropTriggers,
		feedSubscribers:   feedSubscribers,
		outboxDispatched:  outboxDispatched,
	}, nil
}

// RecordDonation counts a created donation and its amount by cause.
func (m *Metrics) RecordDonation(ctx context.Context, cause string, amount float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("cause", strings.TrimSpace(cause)))
	m.donationsCreated.Add(ctx, 1, attrs)
	m.donationAmount.Add(ctx, amount, attrs)
}

// RecordQuoteRequest counts a quote invocation by mode and terminal status.
func (m *Metrics) RecordQuoteRequest(ctx context.Context, mode, status string) {
	if m == nil {
		return
	}
	m.quoteRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", strings.TrimSpace(mode)),
		attribute.String("status", strings.TrimSpace(status)),
	))
}

// RecordCheckDrop counts an automation trigger evaluation that matched.
func (m *Metrics) RecordCheckDrop(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.checkDropTriggers.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", strings.TrimSpace(outcome)),
	))
}

// FeedSubscriberChange tracks live feed subscriber counts.
func (m *Metrics) FeedSubscriberChange(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.feedSubscribers.Add(ctx, delta)
}

// RecordOutboxDispatch counts processed outbox rows by event type and result.
func (m *Metrics) RecordOutboxDispatch(ctx context.Context, eventType, result string) {
	if m == nil {
		return
	}
	m.outboxDispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", strings.TrimSpace(eventType)),
		attribute.String("result", strings.TrimSpace(result)),
	))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp metrics protocol %q", protocol)
	}
}
