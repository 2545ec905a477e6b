package rules

import (
	"testing"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
)

func testContext() map[string]any {
	return map[string]any{
		"user_snapshot": map[string]any{
			"economy": map[string]any{
				"lifetime_points": int64(400),
			},
			"engagement": map[string]any{
				"total_scans": int64(3),
			},
			"status": map[string]any{
				"rank_key": "member",
			},
		},
	}
}

func TestEvaluateEmptyConditionsIsVacuousPass(t *testing.T) {
	e := NewEngine()

	if !e.Evaluate(nil, testContext()) {
		t.Fatal("empty condition list must pass")
	}
	if !e.Evaluate([]domain.Condition{}, map[string]any{}) {
		t.Fatal("empty condition list must pass on empty context")
	}
}

func TestEvaluateMissingPathFailsWithoutError(t *testing.T) {
	e := NewEngine()

	conds := []domain.Condition{
		{Field: "user_snapshot.economy.nope", Operator: "is", Value: 1},
	}
	if e.Evaluate(conds, testContext()) {
		t.Fatal("missing leaf key must fail")
	}

	conds = []domain.Condition{
		{Field: "no_such.branch.at_all", Operator: ">", Value: 0},
	}
	if e.Evaluate(conds, testContext()) {
		t.Fatal("missing branch must fail")
	}
}

func TestEvaluateOperators(t *testing.T) {
	e := NewEngine()

	cases := []struct {
		name string
		cond domain.Condition
		want bool
	}{
		{"is numeric", domain.Condition{Field: "user_snapshot.engagement.total_scans", Operator: "is", Value: 3}, true},
		{"is loose numeric string", domain.Condition{Field: "user_snapshot.engagement.total_scans", Operator: "is", Value: "3"}, true},
		{"is string", domain.Condition{Field: "user_snapshot.status.rank_key", Operator: "is", Value: "member"}, true},
		{"is mismatch", domain.Condition{Field: "user_snapshot.status.rank_key", Operator: "is", Value: "gold"}, false},
		{"is_not", domain.Condition{Field: "user_snapshot.status.rank_key", Operator: "is_not", Value: "gold"}, true},
		{"gt true", domain.Condition{Field: "user_snapshot.economy.lifetime_points", Operator: ">", Value: 399}, true},
		{"gt false", domain.Condition{Field: "user_snapshot.economy.lifetime_points", Operator: ">", Value: 400}, false},
		{"lt coerces string", domain.Condition{Field: "user_snapshot.economy.lifetime_points", Operator: "<", Value: "500"}, true},
		{"unknown operator", domain.Condition{Field: "user_snapshot.economy.lifetime_points", Operator: ">=", Value: 1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Evaluate([]domain.Condition{tc.cond}, testContext())
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateMalformedConditionFailsSafe(t *testing.T) {
	e := NewEngine()

	cases := []domain.Condition{
		{Operator: "is", Value: 1},                                    // no field
		{Field: "user_snapshot.status.rank_key", Value: "member"},     // no operator
		{Field: "user_snapshot.status.rank_key", Operator: "is"},      // no value
	}

	for _, cond := range cases {
		if e.Evaluate([]domain.Condition{cond}, testContext()) {
			t.Fatalf("malformed condition %+v must fail, not pass", cond)
		}
	}
}

func TestEvaluateAllMustPass(t *testing.T) {
	e := NewEngine()

	conds := []domain.Condition{
		{Field: "user_snapshot.status.rank_key", Operator: "is", Value: "member"},
		{Field: "user_snapshot.economy.lifetime_points", Operator: ">", Value: 10000},
	}
	if e.Evaluate(conds, testContext()) {
		t.Fatal("one failing condition must fail the whole set")
	}
}
