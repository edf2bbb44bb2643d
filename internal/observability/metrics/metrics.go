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
	authorizeDecisions metric.Int64Counter
	counterConflicts   metric.Int64Counter
	ledgerResets       metric.Int64Counter
	matchTransitions   metric.Int64Counter
	catalogRefreshes   metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "hireloop"
	}
	meter := provider.Meter(name)

	authorizeDecisions, err := meter.Int64Counter("hireloop_authorize_decisions_total")
	if err != nil {
		return nil, err
	}
	counterConflicts, err := meter.Int64Counter("hireloop_counter_conflicts_total")
	if err != nil {
		return nil, err
	}
	ledgerResets, err := meter.Int64Counter("hireloop_ledger_resets_total")
	if err != nil {
		return nil, err
	}
	matchTransitions, err := meter.Int64Counter("hireloop_match_transitions_total")
	if err != nil {
		return nil, err
	}
	catalogRefreshes, err := meter.Int64Counter("hireloop_catalog_refreshes_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("hireloop_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		authorizeDecisions: authorizeDecisions,
		counterConflicts:   counterConflicts,
		ledgerResets:       ledgerResets,
		matchTransitions:   matchTransitions,
		catalogRefreshes:   catalogRefreshes,
		rateLimitDenied:    rateLimitDenied,
	}, nil
}

// RecordDecision counts an authorize outcome by action and reason.
func (m *Metrics) RecordDecision(ctx context.Context, action, outcome, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("action", strings.TrimSpace(action)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.authorizeDecisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCounterConflict counts a version-conflicted ledger update.
func (m *Metrics) RecordCounterConflict(ctx context.Context, action string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("action", strings.TrimSpace(action)))
	m.counterConflicts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLedgerReset counts a monthly counter reset, lazy or swept.
func (m *Metrics) RecordLedgerReset(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.ledgerResets.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMatchTransition counts a match status transition.
func (m *Metrics) RecordMatchTransition(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("from", strings.TrimSpace(from)),
		attribute.String("to", strings.TrimSpace(to)),
	)
	m.matchTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCatalogRefresh counts a plan catalog refresh by outcome.
func (m *Metrics) RecordCatalogRefresh(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.catalogRefreshes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied counts a rate limited request.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"action":   {},
	"outcome":  {},
	"reason":   {},
	"source":   {},
	"from":     {},
	"to":       {},
	"endpoint": {},
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
