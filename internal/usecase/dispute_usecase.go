package usecase

import (
	"time"

	"github.com/doomlife/settlement-service/internal/config"
	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"github.com/doomlife/settlement-service/internal/infrastructure/metrics"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type DisputeUsecase interface {
	CreateDispute(input *CreateDisputeInput) (*domain.Dispute, error)
	ResolveDispute(input *ResolveDisputeInput) error
	EscalateDispute(disputeID, disputerID string) error
	GetDisputeByID(disputeID string) (*domain.Dispute, error)
	GetEventDisputes(eventID string) ([]*domain.Dispute, error)
}

type CreateDisputeInput struct {
	EventID     string
	DisputerID  string
	StakeAmount int64
	Reason      string
	Evidence    []string
}

type ResolveDisputeInput struct {
	DisputeID  string
	ReviewerID string
	Upheld     bool
	// Outcome is the event outcome the review decided, recorded on the
	// dispute for the audit trail.
	Outcome *domain.Outcome
}

type DefaultDisputeUsecase struct {
	disputeRepo domain.DisputeRepository
	eventRepo   domain.EventRepository
	ledger      domain.LedgerRepository
	publisher   *publisher.KafkaPublisher
	auditSink   domain.AuditSink
	metrics     *metrics.SettlementMetrics
	cfg         config.Settlement
	idGen       func() string

	now func() time.Time
}

func NewDefaultDisputeUsecase(
	disputeRepo domain.DisputeRepository,
	eventRepo domain.EventRepository,
	ledger domain.LedgerRepository,
	kafkaPublisher *publisher.KafkaPublisher,
	auditSink domain.AuditSink,
	settlementMetrics *metrics.SettlementMetrics,
	cfg config.Settlement,
	idGen func() string) *DefaultDisputeUsecase {

	return &DefaultDisputeUsecase{
		disputeRepo: disputeRepo,
		eventRepo:   eventRepo,
		ledger:      ledger,
		publisher:   kafkaPublisher,
		auditSink:   auditSink,
		metrics:     settlementMetrics,
		cfg:         cfg,
		idGen:       idGen,
		now:         time.Now,
	}
}

func (uc *DefaultDisputeUsecase) GetDisputeByID(disputeID string) (*domain.Dispute, error) {
	dispute, err := uc.disputeRepo.GetDisputeByID(disputeID)
	if err != nil {
		return nil, status.Error(codes.NotFound, domain.ErrDisputeNotFound.Error())
	}
	return dispute, nil
}

func (uc *DefaultDisputeUsecase) GetEventDisputes(eventID string) ([]*domain.Dispute, error) {
	disputes, err := uc.disputeRepo.GetEventDisputes(eventID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return disputes, nil
}
