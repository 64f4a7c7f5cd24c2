package usecase

import (
	"errors"
	"log/slog"
	"time"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type BetUsecase interface {
	PlaceBet(input *PlaceBetInput) (*domain.Bet, error)
	GetBetByEventUser(eventID, userID string) (*domain.Bet, error)
}

type PlaceBetInput struct {
	EventID string
	UserID  string
	Outcome domain.Outcome
	Amount  int64
}

type DefaultBetUsecase struct {
	betRepo   domain.BetRepository
	eventRepo domain.EventRepository
	ledger    domain.LedgerRepository
	statsRepo domain.StatsRepository
	auditSink domain.AuditSink

	now func() time.Time
}

func NewDefaultBetUsecase(
	betRepo domain.BetRepository,
	eventRepo domain.EventRepository,
	ledger domain.LedgerRepository,
	statsRepo domain.StatsRepository,
	auditSink domain.AuditSink) *DefaultBetUsecase {

	return &DefaultBetUsecase{
		betRepo:   betRepo,
		eventRepo: eventRepo,
		ledger:    ledger,
		statsRepo: statsRepo,
		auditSink: auditSink,
		now:       time.Now,
	}
}

// PlaceBet escrows the stake and grows the outcome pool. One bet per user per
// event; the stake is debited before the bet record exists, so a failed write
// is compensated with a credit.
func (uc *DefaultBetUsecase) PlaceBet(input *PlaceBetInput) (*domain.Bet, error) {
	if input.Amount <= 0 {
		return nil, status.Error(codes.InvalidArgument, domain.ErrInvalidAmount.Error())
	}

	event, err := uc.eventRepo.GetEventByID(input.EventID)
	if err != nil {
		return nil, status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}
	if !event.IsBettingOpen(uc.now()) {
		return nil, status.Error(codes.FailedPrecondition, domain.ErrBettingClosed.Error())
	}

	if _, err := uc.betRepo.GetBetByEventUser(input.EventID, input.UserID); err == nil {
		return nil, status.Error(codes.AlreadyExists, domain.ErrBetExists.Error())
	} else if !errors.Is(err, domain.ErrBetNotFound) {
		return nil, status.Error(codes.Internal, err.Error())
	}

	if err := uc.ledger.Debit(input.UserID, input.Outcome, input.Amount); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, status.Error(codes.FailedPrecondition, domain.ErrInsufficientBalance.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	bet := &domain.Bet{
		ID:       uuid.NewString(),
		EventID:  input.EventID,
		UserID:   input.UserID,
		Outcome:  input.Outcome,
		Amount:   input.Amount,
		PlacedAt: uc.now(),
	}
	if err := uc.betRepo.CreateBet(bet); err != nil {
		uc.compensateDebit(input)
		return nil, status.Error(codes.Internal, err.Error())
	}
	if err := uc.eventRepo.AddStake(input.EventID, input.Outcome, input.Amount); err != nil {
		// The bet record exists but its stake never reached the pool. Unwind
		// both sides so the pool totals keep matching the sum of bets.
		if delErr := uc.betRepo.DeleteBet(bet.ID); delErr != nil {
			slog.Error("failed to delete bet after stake write failure",
				"bet_id", bet.ID, "event_id", input.EventID, "error", delErr.Error())
		}
		uc.compensateDebit(input)
		if errors.Is(err, domain.ErrEventNotActive) {
			return nil, status.Error(codes.FailedPrecondition, domain.ErrBettingClosed.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	if err := uc.statsRepo.RecordBetPlaced(bet.UserID, bet.Amount, bet.PlacedAt); err != nil {
		slog.Error("failed to record bet stats", "bet_id", bet.ID, "error", err.Error())
	}

	uc.auditSink.Record("bet.placed", map[string]any{
		"bet_id":   bet.ID,
		"event_id": bet.EventID,
		"user_id":  bet.UserID,
		"outcome":  string(bet.Outcome),
		"amount":   bet.Amount,
	})
	return bet, nil
}

func (uc *DefaultBetUsecase) GetBetByEventUser(eventID, userID string) (*domain.Bet, error) {
	bet, err := uc.betRepo.GetBetByEventUser(eventID, userID)
	if err != nil {
		return nil, status.Error(codes.NotFound, domain.ErrBetNotFound.Error())
	}
	return bet, nil
}

func (uc *DefaultBetUsecase) compensateDebit(input *PlaceBetInput) {
	if err := uc.ledger.Credit(input.UserID, input.Outcome, input.Amount); err != nil {
		slog.Error("failed to return stake after bet write failure",
			"event_id", input.EventID, "user_id", input.UserID, "error", err.Error())
	}
}
