package riskgate

import (
	"github.com/crestline-media/fulfillment-service/internal/domain"
)

// ThresholdScorer is the default risk oracle. The heuristic itself is a
// placeholder; anything implementing domain.RiskScorer can be wired in
// its place at construction.
type ThresholdScorer struct {
	ConfirmAboveMinor int64
	HoldAboveMinor    int64
}

func NewThresholdScorer(confirmAboveMinor, holdAboveMinor int64) *ThresholdScorer {
	return &ThresholdScorer{
		ConfirmAboveMinor: confirmAboveMinor,
		HoldAboveMinor:    holdAboveMinor,
	}
}

func (s *ThresholdScorer) Score(snapshot domain.OrderSnapshot) (float64, domain.RiskDecision) {
	score := float64(snapshot.AmountMinor) / 100.0
	if snapshot.CustomerEmail == "" {
		score *= 2
	}

	switch {
	case s.HoldAboveMinor > 0 && snapshot.AmountMinor > s.HoldAboveMinor:
		return score, domain.DecisionManualHold
	case s.ConfirmAboveMinor > 0 && snapshot.AmountMinor > s.ConfirmAboveMinor && snapshot.CustomerEmail != "":
		return score, domain.DecisionEmailConfirm
	case s.ConfirmAboveMinor > 0 && snapshot.AmountMinor > s.ConfirmAboveMinor:
		// No address to confirm against; an operator has to look.
		return score, domain.DecisionManualHold
	}
	return score, domain.DecisionAllow
}
