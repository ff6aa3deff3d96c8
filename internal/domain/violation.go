package domain

// ViolationKind identifies a trading rule breach. Violations are
// penalized in the reward signal but never abort an episode.
type ViolationKind string

const (
	// ViolationSettlement is an attempted sell of unsettled shares (T+2.5 rule).
	ViolationSettlement ViolationKind = "settlement"

	// ViolationVaR is a breach of the value-at-risk limit.
	ViolationVaR ViolationKind = "var"
)
