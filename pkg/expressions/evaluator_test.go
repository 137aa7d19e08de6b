package expressions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_Evaluate(t *testing.T) {
	e := NewEvaluator()

	doc := map[string]any{
		"event_type":   "failure_reported",
		"aggregate_id": "TOYOTA_202403A001",
		"data": map[string]any{
			"part_sku": "90919-01191",
			"quantity": float64(100),
		},
	}

	t.Run("field lookup", func(t *testing.T) {
		result, err := e.Evaluate("event_type", doc)
		require.NoError(t, err)
		assert.Equal(t, "failure_reported", result)
	})

	t.Run("nested lookup", func(t *testing.T) {
		result, err := e.Evaluate("data.part_sku", doc)
		require.NoError(t, err)
		assert.Equal(t, "90919-01191", result)
	})

	t.Run("missing field is nil", func(t *testing.T) {
		result, err := e.Evaluate("data.missing", doc)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("invalid expression", func(t *testing.T) {
		_, err := e.Evaluate("data[", doc)
		assert.Error(t, err)
	})
}

func TestEvaluator_EvaluateBool(t *testing.T) {
	e := NewEvaluator()

	doc := map[string]any{
		"event_type": "failure_reported",
		"count":      float64(0),
		"tags":       []any{},
	}

	cases := []struct {
		name       string
		expression string
		expected   bool
	}{
		{"comparison true", "event_type == 'failure_reported'", true},
		{"comparison false", "event_type == 'batch_created'", false},
		{"missing field", "nope", false},
		{"zero number", "count", false},
		{"empty array", "tags", false},
		{"non-empty string", "event_type", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := e.EvaluateBool(tc.expression, doc)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestEvaluator_Validate(t *testing.T) {
	e := NewEvaluator()

	assert.NoError(t, e.Validate("event_type == 'batch_created'"))
	assert.Error(t, e.Validate("data["))
}

func TestEvaluator_CompileCacheReuse(t *testing.T) {
	e := NewEvaluator()

	_, err := e.Evaluate("event_type", map[string]any{"event_type": "a"})
	require.NoError(t, err)

	_, cached := e.cache.Load("event_type")
	assert.True(t, cached)
}
