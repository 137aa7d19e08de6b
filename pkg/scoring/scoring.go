package scoring

import (
	"math"

	"github.com/Ramsey-B/sequoia/pkg/models"
)

// Calculator rolls manifest quantities and failure counts up into the
// per-vendor durability report. It is a pure computation over whatever
// ledger state the caller hands it; storage reads stay in the repositories.
type Calculator struct{}

// NewCalculator creates a new Calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Analyze accumulates quantity and failures_logged across every manifest
// entry of the given batches and derives the durability score. Batches with
// empty manifests still count toward batches_analyzed.
func (c *Calculator) Analyze(vendorName string, batches []models.BatchAllocation) models.VendorAnalytics {
	totalSupplied := 0
	totalFailures := 0

	for _, batch := range batches {
		for _, part := range batch.PartsManifest {
			totalSupplied += part.Quantity
			totalFailures += part.FailuresLogged
		}
	}

	return models.VendorAnalytics{
		VendorName:                vendorName,
		CalculatedDurabilityScore: c.Score(totalSupplied, totalFailures),
		TotalPartsSupplied:        totalSupplied,
		TotalFailuresDetected:     totalFailures,
		BatchesAnalyzed:           len(batches),
	}
}

// Score is the survival rate of supplied units: the percentage of parts
// never reported as failed, rounded to 2 decimal places. A vendor with no
// supplied units scores 100.0. Failures can outnumber supplied units
// (duplicate reports); the score goes negative rather than clamping.
func (c *Calculator) Score(totalSupplied, totalFailures int) float64 {
	if totalSupplied == 0 {
		return 100.0
	}

	score := (float64(totalSupplied-totalFailures) / float64(totalSupplied)) * 100
	return Round2(score)
}

// Round2 rounds half away from zero to 2 decimal places
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
