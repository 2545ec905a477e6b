package rules

import (
	"strconv"
	"strings"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
)

// Engine evaluates achievement conditions against an event context map.
// It has no dependencies and never errors: a condition that cannot be
// evaluated (missing path, malformed definition, uncomparable values)
// simply fails.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate returns true only if every condition passes (logical AND).
// An empty condition list is a vacuous pass.
func (e *Engine) Evaluate(conditions []domain.Condition, ctxMap map[string]any) bool {
	for _, cond := range conditions {
		if !e.evaluateOne(cond, ctxMap) {
			return false
		}
	}

	return true
}

func (e *Engine) evaluateOne(cond domain.Condition, ctxMap map[string]any) bool {
	if cond.Field == "" || cond.Operator == "" || cond.Value == nil {
		return false
	}

	actual, ok := resolvePath(ctxMap, cond.Field)
	if !ok {
		// a rule cannot match on data the context does not carry
		return false
	}

	switch cond.Operator {
	case domain.OperatorIs:
		return looseEqual(actual, cond.Value)
	case domain.OperatorIsNot:
		return !looseEqual(actual, cond.Value)
	case domain.OperatorGreaterThan:
		a, aok := toFloat(actual)
		b, bok := toFloat(cond.Value)
		return aok && bok && a > b
	case domain.OperatorLessThan:
		a, aok := toFloat(actual)
		b, bok := toFloat(cond.Value)
		return aok && bok && a < b
	default:
		return false
	}
}

// resolvePath walks a dot path through nested maps. Any missing key at any
// depth resolves to (nil, false).
func resolvePath(ctxMap map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")

	var current any = ctxMap
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// looseEqual matches the source system's loose comparison: numeric values
// compare numerically regardless of representation ("42" matches 42),
// everything else falls back to string comparison.
func looseEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}

	return toString(a) == toString(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}
