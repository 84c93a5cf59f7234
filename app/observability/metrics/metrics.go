package metrics

import (
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	PostalLookupsTotal          metric.Int64Counter
	PostalLookupErrorsTotal     metric.Int64Counter
	GeocodeRequestsTotal        metric.Int64Counter
	GeocodeCacheHitsTotal       metric.Int64Counter
	GeocodeFallbacksTotal       metric.Int64Counter
	GeocodeDurationSeconds      metric.Float64Histogram
	HouseholdRegistrationsTotal metric.Int64Counter
	NeighborhoodMergesTotal     metric.Int64Counter
	DbQueryErrorsTotal          metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitProviders wires the global tracer provider and a Prometheus-backed
// meter provider, and serves /metrics on the given port.
func InitProviders(prometheusPort string) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("HouseholdRegistryAPI"),
		)),
	)
	otel.SetTracerProvider(tp)

	exporter, err := prometheus.New()
	if err != nil {
		log.Fatal(err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":"+prometheusPort, nil))
	}()
}

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("HouseholdRegistryAPI")
		var err error
		m := &AppMetrics{}

		m.PostalLookupsTotal, err = meter.Int64Counter(
			"postal_lookups_total",
			metric.WithDescription("Total number of postal code lookups issued"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create postal_lookups_total: %v", err)
		}

		m.PostalLookupErrorsTotal, err = meter.Int64Counter(
			"postal_lookup_errors_total",
			metric.WithDescription("Postal lookups degraded by provider errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create postal_lookup_errors_total: %v", err)
		}

		m.GeocodeRequestsTotal, err = meter.Int64Counter(
			"geocode_requests_total",
			metric.WithDescription("Outbound geocoding provider requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_requests_total: %v", err)
		}

		m.GeocodeCacheHitsTotal, err = meter.Int64Counter(
			"geocode_cache_hits_total",
			metric.WithDescription("Geocoding lookups served from the local cache"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_cache_hits_total: %v", err)
		}

		m.GeocodeFallbacksTotal, err = meter.Int64Counter(
			"geocode_fallbacks_total",
			metric.WithDescription("Geocoding lookups that required the normalized fallback query"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_fallbacks_total: %v", err)
		}

		m.GeocodeDurationSeconds, err = meter.Float64Histogram(
			"geocode_duration_seconds",
			metric.WithDescription("Duration of geocoding resolutions in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_duration_seconds: %v", err)
		}

		m.HouseholdRegistrationsTotal, err = meter.Int64Counter(
			"household_registrations_total",
			metric.WithDescription("Households registered through the resolution pipeline"),
			metric.WithUnit("{household}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create household_registrations_total: %v", err)
		}

		m.NeighborhoodMergesTotal, err = meter.Int64Counter(
			"neighborhood_merges_total",
			metric.WithDescription("Duplicate neighborhoods removed by merge operations"),
			metric.WithUnit("{neighborhood}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create neighborhood_merges_total: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
