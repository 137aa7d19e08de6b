package expressions

import (
	"fmt"
	"sync"

	"github.com/jmespath/go-jmespath"
)

// Evaluator evaluates JMESPath expressions against event payloads. Compiled
// expressions are cached because the emitter asks for the same filter on
// every event.
type Evaluator struct {
	cache sync.Map // expression -> *jmespath.JMESPath
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) Evaluate(expression string, data any) (any, error) {
	compiled, err := e.compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", expression, err)
	}

	result, err := compiled.Search(data)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression %q: %w", expression, err)
	}

	return result, nil
}

// EvaluateBool evaluates an expression and reduces the result to a truthy
// bool. nil is false, empty strings and zero numbers are false, empty slices
// and maps are false, anything else is true.
func (e *Evaluator) EvaluateBool(expression string, data any) (bool, error) {
	result, err := e.Evaluate(expression, data)
	if err != nil {
		return false, err
	}

	if result == nil {
		return false, nil
	}

	switch v := result.(type) {
	case bool:
		return v, nil
	case string:
		return v != "", nil
	case float64:
		return v != 0, nil
	case []any:
		return len(v) > 0, nil
	case map[string]any:
		return len(v) > 0, nil
	default:
		return true, nil
	}
}

// Validate checks that an expression parses without evaluating it.
func (e *Evaluator) Validate(expression string) error {
	_, err := e.compile(expression)
	return err
}

func (e *Evaluator) compile(expression string) (*jmespath.JMESPath, error) {
	if cached, ok := e.cache.Load(expression); ok {
		return cached.(*jmespath.JMESPath), nil
	}

	compiled, err := jmespath.Compile(expression)
	if err != nil {
		return nil, err
	}

	actual, _ := e.cache.LoadOrStore(expression, compiled)
	return actual.(*jmespath.JMESPath), nil
}
