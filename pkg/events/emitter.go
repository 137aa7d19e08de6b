// Package events handles event emission for supply-chain lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sequoia/pkg/expressions"
	"github.com/Ramsey-B/sequoia/pkg/kafka"
	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/google/uuid"
)

// Event types emitted by the admin service
const (
	EventVendorRegistered = "vendor_registered"
	EventBatchCreated     = "batch_created"
	EventFailureReported  = "failure_reported"
	EventCenterRegistered = "center_registered"
	EventSlotBooked       = "slot_booked"
)

// Emitter publishes domain events, optionally filtered by a JMESPath
// expression evaluated against each event document. Emission is best
// effort; callers log and move on when it fails. A nil producer disables
// emission entirely.
type Emitter struct {
	producer  *kafka.Producer
	evaluator *expressions.Evaluator
	filter    string
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter. filterExpression may be empty,
// which emits everything.
func NewEmitter(producer *kafka.Producer, evaluator *expressions.Evaluator, filterExpression string, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer:  producer,
		evaluator: evaluator,
		filter:    filterExpression,
		logger:    logger,
	}
}

// EmitVendorRegistered emits a vendor_registered event
func (e *Emitter) EmitVendorRegistered(ctx context.Context, vendor *models.Vendor) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitVendorRegistered")
	defer span.End()

	return e.emit(ctx, EventVendorRegistered, vendor.VendorID, vendor)
}

// EmitBatchCreated emits a batch_created event
func (e *Emitter) EmitBatchCreated(ctx context.Context, batch *models.BatchAllocation) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBatchCreated")
	defer span.End()

	return e.emit(ctx, EventBatchCreated, batch.BatchAllocationID, batch)
}

// EmitFailureReported emits a failure_reported event
func (e *Emitter) EmitFailureReported(ctx context.Context, batchID, partSKU string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitFailureReported")
	defer span.End()

	payload := map[string]any{
		"batch_id": batchID,
		"part_sku": partSKU,
	}

	return e.emit(ctx, EventFailureReported, batchID, payload)
}

// EmitCenterRegistered emits a center_registered event
func (e *Emitter) EmitCenterRegistered(ctx context.Context, center *models.ServiceCenter) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCenterRegistered")
	defer span.End()

	return e.emit(ctx, EventCenterRegistered, center.CenterID, center)
}

// EmitSlotBooked emits a slot_booked event
func (e *Emitter) EmitSlotBooked(ctx context.Context, centerID string, booking models.Booking) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitSlotBooked")
	defer span.End()

	payload := map[string]any{
		"center_id": centerID,
		"booking":   booking,
	}

	return e.emit(ctx, EventSlotBooked, centerID, payload)
}

func (e *Emitter) emit(ctx context.Context, eventType, aggregateID string, payload any) error {
	if e.producer == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to encode event payload")
		return err
	}

	event := &kafka.DomainEvent{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Data:        data,
	}

	if !e.shouldEmit(ctx, event) {
		e.logger.WithContext(ctx).WithFields(map[string]any{
			"event_type":   eventType,
			"aggregate_id": aggregateID,
		}).Debug("Event filtered out")
		return nil
	}

	if err := e.producer.PublishDomainEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
		}).Error("Failed to emit event")
		return err
	}

	return nil
}

// shouldEmit runs the configured filter against the event document. The
// expression is validated at startup; a runtime evaluation failure logs a
// warning and lets the event through rather than dropping it.
func (e *Emitter) shouldEmit(ctx context.Context, event *kafka.DomainEvent) bool {
	if e.filter == "" {
		return true
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return true
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return true
	}

	keep, err := e.evaluator.EvaluateBool(e.filter, doc)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"expression": e.filter,
		}).Warn("Event filter evaluation failed")
		return true
	}

	return keep
}
