package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dejobratic/orderwatch/internal/orders/app/commands"
	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/metrics"
)

type stubHandler struct {
	order *domain.Order
	err   error
}

func (s stubHandler) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*domain.Order, error) {
	return s.order, s.err
}

func setupObservability(t *testing.T) (*tracetest.InMemoryExporter, *sdkmetric.ManualReader, *metrics.Metrics) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metrics.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return exporter, reader, m
}

func createdCount(t *testing.T, reader *sdkmetric.ManualReader, status string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "orders_created_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				if v, ok := dp.Attributes.Value("status"); ok && v.AsString() == status {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func TestObservableCommandHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("records span and success metric", func(t *testing.T) {
		exporter, reader, m := setupObservability(t)
		order := &domain.Order{ID: "o-1", TenantID: "tenant-1", Status: domain.StatusPending, TotalCents: 900}
		handler := commands.NewObservableCommandHandler(stubHandler{order: order}, logger, m)

		got, err := handler.Handle(context.Background(), validCommand())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != "o-1" {
			t.Errorf("expected order o-1, got %s", got.ID)
		}

		spans := exporter.GetSpans()
		if len(spans) != 1 || spans[0].Name != "CreateOrderCommand.Handle" {
			t.Fatalf("expected one CreateOrderCommand.Handle span, got %+v", spans)
		}
		if spans[0].Status.Code != codes.Ok {
			t.Errorf("expected span status Ok, got %v", spans[0].Status.Code)
		}
		if createdCount(t, reader, "success") != 1 {
			t.Error("expected one successful creation recorded")
		}
	})

	t.Run("records error span when nothing was written", func(t *testing.T) {
		exporter, reader, m := setupObservability(t)
		handler := commands.NewObservableCommandHandler(stubHandler{err: errors.New("boom")}, logger, m)

		if _, err := handler.Handle(context.Background(), validCommand()); err == nil {
			t.Fatal("expected error, got nil")
		}

		spans := exporter.GetSpans()
		if len(spans) != 1 || spans[0].Status.Code != codes.Error {
			t.Fatalf("expected one error span, got %+v", spans)
		}
		if createdCount(t, reader, "error") != 1 {
			t.Error("expected one failed creation recorded")
		}
	})

	t.Run("counts committed order when only the event failed", func(t *testing.T) {
		_, reader, m := setupObservability(t)
		order := &domain.Order{ID: "o-2", TenantID: "tenant-1"}
		handler := commands.NewObservableCommandHandler(stubHandler{order: order, err: errors.New("kafka down")}, logger, m)

		got, err := handler.Handle(context.Background(), validCommand())
		if err == nil || got == nil {
			t.Fatalf("expected order and error, got %v, %v", got, err)
		}
		if createdCount(t, reader, "success") != 1 {
			t.Error("expected committed order to be counted as created")
		}
	})
}
