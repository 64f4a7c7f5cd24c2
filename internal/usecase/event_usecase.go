package usecase

import (
	"log/slog"
	"time"

	"github.com/doomlife/settlement-service/internal/config"
	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"github.com/doomlife/settlement-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type EventUsecase interface {
	CreateEvent(input *CreateEventInput) (*domain.Event, error)
	GetEventByID(eventID string) (*domain.Event, error)
	GetOdds(eventID string) (doom, life int64, err error)

	ProposeOutcome(eventID, proposerID string, outcome domain.Outcome) error
	CancelEvent(eventID string) error
	GetWindowStatus(eventID, userID string) (*WindowStatus, error)

	SubmitEvidence(input *SubmitEvidenceInput) error
	AddVerificationSource(input *AddSourceInput) error
	ApproveResolution(eventID, approverID string) error
}

type CreateEventInput struct {
	CreatorID          string
	Title              string
	Description        string
	BettingDeadline    time.Time
	EventDeadline      time.Time
	ResolutionDeadline time.Time
}

type SubmitEvidenceInput struct {
	EventID     string
	URL         string
	Description string
	SubmittedBy string
}

type AddSourceInput struct {
	EventID    string
	SourceType domain.SourceType
	URL        string
	IsPrimary  bool
}

type DefaultEventUsecase struct {
	eventRepo    domain.EventRepository
	betRepo      domain.BetRepository
	disputeRepo  domain.DisputeRepository
	evidenceRepo domain.EvidenceRepository
	ledger       domain.LedgerRepository
	statsRepo    domain.StatsRepository
	queue        domain.JobQueue
	publisher    *publisher.KafkaPublisher
	auditSink    domain.AuditSink
	metrics      *metrics.SettlementMetrics
	cfg          config.Settlement

	now func() time.Time
}

func NewDefaultEventUsecase(
	eventRepo domain.EventRepository,
	betRepo domain.BetRepository,
	disputeRepo domain.DisputeRepository,
	evidenceRepo domain.EvidenceRepository,
	ledger domain.LedgerRepository,
	statsRepo domain.StatsRepository,
	queue domain.JobQueue,
	kafkaPublisher *publisher.KafkaPublisher,
	auditSink domain.AuditSink,
	settlementMetrics *metrics.SettlementMetrics,
	cfg config.Settlement) *DefaultEventUsecase {

	return &DefaultEventUsecase{
		eventRepo:    eventRepo,
		betRepo:      betRepo,
		disputeRepo:  disputeRepo,
		evidenceRepo: evidenceRepo,
		ledger:       ledger,
		statsRepo:    statsRepo,
		queue:        queue,
		publisher:    kafkaPublisher,
		auditSink:    auditSink,
		metrics:      settlementMetrics,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (uc *DefaultEventUsecase) CreateEvent(input *CreateEventInput) (*domain.Event, error) {
	now := uc.now()
	if !input.BettingDeadline.After(now) ||
		!input.EventDeadline.After(input.BettingDeadline) ||
		!input.ResolutionDeadline.After(input.EventDeadline) {
		return nil, status.Error(codes.InvalidArgument, domain.ErrInvalidDeadline.Error())
	}

	event := &domain.Event{
		ID:                 uuid.NewString(),
		CreatorID:          input.CreatorID,
		Title:              input.Title,
		Description:        input.Description,
		Status:             domain.EventActive,
		BettingDeadline:    input.BettingDeadline,
		EventDeadline:      input.EventDeadline,
		ResolutionDeadline: input.ResolutionDeadline,
		CreatedAt:          now,
	}
	if err := uc.eventRepo.CreateEvent(event); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	if err := uc.statsRepo.RecordEventCreated(event.CreatorID); err != nil {
		slog.Error("failed to record creator stats", "event_id", event.ID, "error", err.Error())
	}

	uc.auditSink.Record("event.created", map[string]any{
		"event_id":   event.ID,
		"creator_id": event.CreatorID,
	})
	return event, nil
}

func (uc *DefaultEventUsecase) GetEventByID(eventID string) (*domain.Event, error) {
	event, err := uc.eventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}
	return event, nil
}

func (uc *DefaultEventUsecase) GetOdds(eventID string) (int64, int64, error) {
	event, err := uc.eventRepo.GetEventByID(eventID)
	if err != nil {
		return 0, 0, status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}
	return event.DoomOdds(), event.LifeOdds(), nil
}

func (uc *DefaultEventUsecase) SubmitEvidence(input *SubmitEvidenceInput) error {
	event, err := uc.eventRepo.GetEventByID(input.EventID)
	if err != nil {
		return status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}
	if event.IsTerminal() {
		return status.Error(codes.FailedPrecondition, domain.ErrEventNotActive.Error())
	}
	evidence := &domain.ResolutionEvidence{
		ID:          uuid.NewString(),
		EventID:     input.EventID,
		URL:         input.URL,
		Description: input.Description,
		SubmittedBy: input.SubmittedBy,
		CreatedAt:   uc.now(),
	}
	if err := uc.evidenceRepo.AddEvidence(evidence); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return nil
}

func (uc *DefaultEventUsecase) AddVerificationSource(input *AddSourceInput) error {
	if _, err := uc.eventRepo.GetEventByID(input.EventID); err != nil {
		return status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}
	source := &domain.VerificationSource{
		ID:         uuid.NewString(),
		EventID:    input.EventID,
		SourceType: input.SourceType,
		URL:        input.URL,
		IsPrimary:  input.IsPrimary,
		CreatedAt:  uc.now(),
	}
	if err := uc.evidenceRepo.AddSource(source); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return nil
}

// ApproveResolution records one approver's signature for a multi-sig event.
// Approvals are gate inputs for ProposeOutcome, not transitions themselves.
func (uc *DefaultEventUsecase) ApproveResolution(eventID, approverID string) error {
	event, err := uc.eventRepo.GetEventByID(eventID)
	if err != nil {
		return status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}
	if event.IsTerminal() {
		return status.Error(codes.FailedPrecondition, domain.ErrEventNotActive.Error())
	}
	approval := &domain.ResolutionApproval{
		ID:         uuid.NewString(),
		EventID:    eventID,
		ApproverID: approverID,
		CreatedAt:  uc.now(),
	}
	if err := uc.evidenceRepo.AddApproval(approval); err != nil {
		// Unique (event, approver) index makes double-approval a conflict.
		return status.Error(codes.AlreadyExists, "approver already signed this event")
	}
	uc.auditSink.Record("event.resolution_approved", map[string]any{
		"event_id":    eventID,
		"approver_id": approverID,
	})
	return nil
}
