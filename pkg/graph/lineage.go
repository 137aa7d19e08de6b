package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sequoia/pkg/metrics"
	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// LineageService maintains the supply lineage graph: Vendor nodes supply
// Batch nodes, Batch nodes contain Part nodes. The graph is a best-effort
// mirror of Postgres and is rebuildable from it; callers log write errors
// and move on.
type LineageService struct {
	client *Client
	logger ectologger.Logger
}

// NewLineageService creates a new lineage service
func NewLineageService(client *Client, logger ectologger.Logger) *LineageService {
	return &LineageService{
		client: client,
		logger: logger,
	}
}

// RecordVendor creates or updates a vendor node
func (s *LineageService) RecordVendor(ctx context.Context, vendor *models.Vendor) error {
	ctx, span := tracing.StartSpan(ctx, "graph.LineageService.RecordVendor")
	defer span.End()

	cypher := `
		MERGE (v:Vendor {vendor_id: $vendor_id})
		SET v.name = $name, v.category = $category
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"vendor_id": vendor.VendorID,
			"name":      vendor.Name,
			"category":  vendor.Category,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		metrics.RecordGraphWrite("record_vendor", "error")
		s.logger.WithContext(ctx).WithError(err).Error("Failed to record vendor in graph")
		return fmt.Errorf("failed to record vendor in graph: %w", err)
	}

	metrics.RecordGraphWrite("record_vendor", "success")
	return nil
}

// RecordBatch mirrors a batch and its manifest into the graph. Part nodes
// are keyed by SKU and shared across batches; quantity and failure counts
// live on the CONTAINS edge.
func (s *LineageService) RecordBatch(ctx context.Context, batch *models.BatchAllocation) error {
	ctx, span := tracing.StartSpan(ctx, "graph.LineageService.RecordBatch")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_allocation_id": batch.BatchAllocationID,
	})

	parts := make([]map[string]any, len(batch.PartsManifest))
	for i, p := range batch.PartsManifest {
		parts[i] = map[string]any{
			"sku":      p.PartSKU,
			"name":     p.PartName,
			"quantity": p.Quantity,
		}
	}

	batchCypher := `
		MERGE (b:Batch {batch_id: $batch_id})
		SET b.company_name = $company_name
		WITH b
		UNWIND $parts AS part
		MERGE (p:Part {sku: part.sku})
		SET p.name = part.name
		MERGE (b)-[r:CONTAINS]->(p)
		ON CREATE SET r.failures = 0
		SET r.quantity = part.quantity
	`

	suppliedCypher := `
		MATCH (b:Batch {batch_id: $batch_id})
		MERGE (v:Vendor {vendor_id: $vendor_id})
		MERGE (v)-[:SUPPLIED]->(b)
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, batchCypher, map[string]any{
			"batch_id":     batch.BatchAllocationID,
			"company_name": batch.CompanyName,
			"parts":        parts,
		})
		if err != nil {
			return nil, err
		}

		if batch.VendorID != nil && *batch.VendorID != "" {
			_, err = tx.Run(ctx, suppliedCypher, map[string]any{
				"batch_id":  batch.BatchAllocationID,
				"vendor_id": *batch.VendorID,
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err != nil {
		metrics.RecordGraphWrite("record_batch", "error")
		log.WithError(err).Error("Failed to record batch in graph")
		return fmt.Errorf("failed to record batch in graph: %w", err)
	}

	metrics.RecordGraphWrite("record_batch", "success")
	log.Debug("Recorded batch lineage in graph")
	return nil
}

// RecordFailure increments the failure count on the CONTAINS edge for the
// given batch and SKU. Missing edges are a no-op; Postgres already decided
// the report was valid.
func (s *LineageService) RecordFailure(ctx context.Context, batchID, partSKU string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.LineageService.RecordFailure")
	defer span.End()

	cypher := `
		MATCH (b:Batch {batch_id: $batch_id})-[r:CONTAINS]->(p:Part {sku: $sku})
		SET r.failures = coalesce(r.failures, 0) + 1
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"batch_id": batchID,
			"sku":      partSKU,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		metrics.RecordGraphWrite("record_failure", "error")
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_id": batchID,
			"part_sku": partSKU,
		}).Error("Failed to record failure in graph")
		return fmt.Errorf("failed to record failure in graph: %w", err)
	}

	metrics.RecordGraphWrite("record_failure", "success")
	return nil
}

// TracePart walks the lineage for a SKU: every batch edge that carried it
// and the vendor behind each batch. Unknown SKUs return an empty document.
func (s *LineageService) TracePart(ctx context.Context, partSKU string) (*models.PartTrace, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.LineageService.TracePart")
	defer span.End()

	cypher := `
		MATCH (b:Batch)-[r:CONTAINS]->(p:Part {sku: $sku})
		OPTIONAL MATCH (v:Vendor)-[:SUPPLIED]->(b)
		RETURN p.name AS part_name, b.batch_id AS batch_id,
			b.company_name AS company_name, v.vendor_id AS vendor_id,
			v.name AS vendor_name, r.quantity AS quantity,
			coalesce(r.failures, 0) AS failures
	`

	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"sku": partSKU})
		if err != nil {
			return nil, err
		}

		trace := &models.PartTrace{
			PartSKU: partSKU,
			Batches: make([]models.PartTraceBatch, 0),
		}

		for result.Next(ctx) {
			record := result.Record()
			get := func(key string) any {
				val, _ := record.Get(key)
				return val
			}

			trace.PartName = asString(get("part_name"))

			edge := models.PartTraceBatch{
				BatchID:     asString(get("batch_id")),
				CompanyName: asString(get("company_name")),
				VendorID:    asStringPtr(get("vendor_id")),
				VendorName:  asStringPtr(get("vendor_name")),
				Quantity:    asInt(get("quantity")),
				Failures:    asInt(get("failures")),
			}

			trace.Batches = append(trace.Batches, edge)
			trace.TotalQuantity += edge.Quantity
			trace.TotalFailures += edge.Failures
		}

		sort.Slice(trace.Batches, func(i, j int) bool {
			return trace.Batches[i].BatchID < trace.Batches[j].BatchID
		})

		return trace, nil
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"part_sku": partSKU,
		}).Error("Failed to trace part in graph")
		return nil, fmt.Errorf("failed to trace part in graph: %w", err)
	}

	return result.(*models.PartTrace), nil
}

// asString converts a neo4j record value to a string
func asString(val any) string {
	if val == nil {
		return ""
	}
	s, _ := val.(string)
	return s
}

func asStringPtr(val any) *string {
	if val == nil {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return nil
	}
	return &s
}

// asInt converts a neo4j record value to an int. The driver returns
// integers as int64.
func asInt(val any) int {
	if val == nil {
		return 0
	}
	n, _ := val.(int64)
	return int(n)
}
