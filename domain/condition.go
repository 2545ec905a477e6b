package domain

// Condition is one boolean check inside an achievement definition.
// Field is a dot path into the event context map ("user_snapshot.economy.lifetime_points").
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

const (
	OperatorIs          = "is"
	OperatorIsNot       = "is_not"
	OperatorGreaterThan = ">"
	OperatorLessThan    = "<"
)
