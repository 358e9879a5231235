package rules

// RollFunc resolves a dice expression to its scalar. Expressions without a single
// value are reported as errors.
type RollFunc func(expression string) (float64, error)
