package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sequoia/pkg/expressions"
	"github.com/Ramsey-B/sequoia/pkg/kafka"
	"github.com/Ramsey-B/sequoia/pkg/models"
)

func testLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func failureEvent(t *testing.T) *kafka.DomainEvent {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"batch_id": "TOYOTA_202403A001",
		"part_sku": "90919-01191",
	})
	require.NoError(t, err)

	return &kafka.DomainEvent{
		EventID:     "evt-1",
		EventType:   EventFailureReported,
		AggregateID: "TOYOTA_202403A001",
		Data:        data,
	}
}

func TestShouldEmit_NoFilter(t *testing.T) {
	e := NewEmitter(nil, expressions.NewEvaluator(), "", testLogger())

	assert.True(t, e.shouldEmit(context.Background(), failureEvent(t)))
}

func TestShouldEmit_EventTypeFilter(t *testing.T) {
	e := NewEmitter(nil, expressions.NewEvaluator(), "event_type == 'failure_reported'", testLogger())

	assert.True(t, e.shouldEmit(context.Background(), failureEvent(t)))

	vendorEvent := &kafka.DomainEvent{
		EventID:     "evt-2",
		EventType:   EventVendorRegistered,
		AggregateID: "V-DENSO-09",
	}
	assert.False(t, e.shouldEmit(context.Background(), vendorEvent))
}

func TestShouldEmit_DataFieldFilter(t *testing.T) {
	// A bare field reference keeps events where the field is present
	e := NewEmitter(nil, expressions.NewEvaluator(), "data.part_sku", testLogger())

	assert.True(t, e.shouldEmit(context.Background(), failureEvent(t)))

	noData := &kafka.DomainEvent{
		EventID:     "evt-3",
		EventType:   EventSlotBooked,
		AggregateID: "SC-NAGOYA-01",
	}
	assert.False(t, e.shouldEmit(context.Background(), noData))
}

func TestShouldEmit_EvaluationFailureFailsOpen(t *testing.T) {
	// abs() of a string fails at evaluation time; the event still goes out
	e := NewEmitter(nil, expressions.NewEvaluator(), "abs(event_type)", testLogger())

	assert.True(t, e.shouldEmit(context.Background(), failureEvent(t)))
}

func TestEmit_NilProducerDisablesEmission(t *testing.T) {
	e := NewEmitter(nil, expressions.NewEvaluator(), "", testLogger())
	ctx := context.Background()

	err := e.EmitVendorRegistered(ctx, &models.Vendor{VendorID: "V-1", Name: "Vendor"})
	assert.NoError(t, err)

	err = e.EmitFailureReported(ctx, "BATCH-1", "SKU-1")
	assert.NoError(t, err)

	err = e.EmitSlotBooked(ctx, "SC-1", models.Booking{BookingID: "BK-1"})
	assert.NoError(t, err)
}
