package domain

// RiskScorer is the pluggable fraud oracle. It is pure: same snapshot,
// same verdict. Invoked exactly once per order, at payment completion.
type RiskScorer interface {
	Score(snapshot OrderSnapshot) (score float64, decision RiskDecision)
}
