// Package payout implements the pari-mutuel calculator: winners split the
// losing pool in proportion to their stake share. Pure functions, callable
// without a queue or store.
package payout

import (
	"math/big"

	"github.com/doomlife/settlement-service/internal/domain"
)

const basisPointDenominator = 10_000

// ComputePayouts returns each bet's payout keyed by bet id. Losing bets map
// to 0. For each winner:
//
//	share  = amount * losingPool / winningPool   (floor)
//	fee    = share * feeBasisPoints / 10000      (floor, taken from winnings only)
//	payout = amount + share - fee
//
// The intermediate products are widened so large pools cannot overflow.
// Truncation remainders plus the fee are the platform retention.
//
// Edge cases: an empty winning pool means no winners exist and the whole pool
// is retained (empty map, no division); an empty total pool is a no-op.
func ComputePayouts(bets []*domain.Bet, outcome domain.Outcome, totalDoomStake, totalLifeStake int64, feeBasisPoints int) map[string]int64 {
	payouts := make(map[string]int64, len(bets))

	totalPool := totalDoomStake + totalLifeStake
	if totalPool == 0 {
		return payouts
	}

	winningPool := totalDoomStake
	losingPool := totalLifeStake
	if outcome == domain.OutcomeLife {
		winningPool, losingPool = losingPool, winningPool
	}

	if winningPool == 0 {
		return payouts
	}

	for _, bet := range bets {
		if !bet.IsWinner(outcome) {
			payouts[bet.ID] = 0
			continue
		}
		payouts[bet.ID] = winnerPayout(bet.Amount, winningPool, losingPool, feeBasisPoints)
	}

	return payouts
}

// WinnerPayout computes a single winning bet's payout. Exposed for the
// dispute-window status read model and for odds previews.
func WinnerPayout(amount, winningPool, losingPool int64, feeBasisPoints int) int64 {
	if winningPool == 0 {
		return 0
	}
	return winnerPayout(amount, winningPool, losingPool, feeBasisPoints)
}

func winnerPayout(amount, winningPool, losingPool int64, feeBasisPoints int) int64 {
	share := new(big.Int).Mul(big.NewInt(amount), big.NewInt(losingPool))
	share.Quo(share, big.NewInt(winningPool))

	fee := new(big.Int).Mul(share, big.NewInt(int64(feeBasisPoints)))
	fee.Quo(fee, big.NewInt(basisPointDenominator))

	total := new(big.Int).Sub(share, fee)
	total.Add(total, big.NewInt(amount))
	return total.Int64()
}

// PlatformFee returns the fee withheld from one winner's share of the losing
// pool.
func PlatformFee(amount, winningPool, losingPool int64, feeBasisPoints int) int64 {
	if winningPool == 0 {
		return 0
	}
	share := new(big.Int).Mul(big.NewInt(amount), big.NewInt(losingPool))
	share.Quo(share, big.NewInt(winningPool))

	fee := new(big.Int).Mul(share, big.NewInt(int64(feeBasisPoints)))
	fee.Quo(fee, big.NewInt(basisPointDenominator))
	return fee.Int64()
}
