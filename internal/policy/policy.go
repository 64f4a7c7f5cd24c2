// Package policy computes what kind of resolution and how much evidence an
// event needs from its pool size and configured verification sources. All
// functions are pure and deterministic over already-validated numeric input.
package policy

import "github.com/doomlife/settlement-service/internal/domain"

const (
	multiSigPoolThreshold = 10_000

	flatMinimumDisputeStake = 50
	disputeStakeThreshold   = 10_000

	flatEscalationCost      = 200
	escalationCostThreshold = 50_000
)

// DetermineResolutionType picks the resolution path. Any API source makes the
// event automatically resolvable regardless of pool size; large pools without
// one require multiple independent approvals.
func DetermineResolutionType(event *domain.Event, sources []*domain.VerificationSource) domain.ResolutionType {
	for _, source := range sources {
		if source.SourceType == domain.SourceAPI {
			return domain.ResolutionAutomatic
		}
	}
	if event.TotalPool() > multiSigPoolThreshold {
		return domain.ResolutionMultiSig
	}
	return domain.ResolutionOracle
}

// EvidenceRequirement returns how many evidence items a proposal needs before
// it may enter the dispute window.
func EvidenceRequirement(totalPool int64) int {
	switch {
	case totalPool < 1_000:
		return 0
	case totalPool < 10_000:
		return 1
	case totalPool < 100_000:
		return 2
	default:
		return 3
	}
}

// MinimumDisputeStake is flat until the pool exceeds 10,000, then 0.5% of the
// pool with the flat amount as a floor.
func MinimumDisputeStake(totalPool int64) int64 {
	if totalPool <= disputeStakeThreshold {
		return flatMinimumDisputeStake
	}
	stake := totalPool * 5 / 1000
	if stake < flatMinimumDisputeStake {
		return flatMinimumDisputeStake
	}
	return stake
}

// EscalationCost is flat until the pool exceeds 50,000, then 1% of the pool
// with the flat amount as a floor.
func EscalationCost(totalPool int64) int64 {
	if totalPool <= escalationCostThreshold {
		return flatEscalationCost
	}
	cost := totalPool / 100
	if cost < flatEscalationCost {
		return flatEscalationCost
	}
	return cost
}
