package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/doomlife/settlement-service/internal/config"
	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"github.com/doomlife/settlement-service/internal/infrastructure/metrics"
)

// Shared across the package: promauto panics on duplicate registration.
var testMetrics = metrics.NewSettlementMetrics()

// testPublisher points at nothing; publish goroutines fail and log, which is
// exactly the production behavior on a broker outage.
var testPublisher = publisher.NewKafkaPublisher([]string{"127.0.0.1:1"}, "test-events")

func testSettlementConfig() config.Settlement {
	return config.Settlement{
		FeeBasisPoints:    200,
		DisputeWindow:     24 * time.Hour,
		PayoutBatchSize:   100,
		MultiSigApprovals: 2,
	}
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event

	// addStakeErr makes AddStake fail, simulating a pool write that dies
	// after the bet row landed.
	addStakeErr error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		clone := *e
		repo.events[e.ID] = &clone
	}
	return repo
}

func (r *fakeEventRepo) CreateEvent(event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) GetEventByID(eventID string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) AddStake(eventID string, outcome domain.Outcome, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addStakeErr != nil {
		return r.addStakeErr
	}
	event, ok := r.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if outcome == domain.OutcomeDoom {
		event.TotalDoomStake += amount
	} else {
		event.TotalLifeStake += amount
	}
	return nil
}

func (r *fakeEventRepo) SetProposedOutcome(eventID string, outcome domain.Outcome, proposedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	if event.Status != domain.EventActive || event.ProposedOutcome != nil {
		return false, nil
	}
	event.ProposedOutcome = &outcome
	event.ProposedAt = &proposedAt
	return true, nil
}

func (r *fakeEventRepo) ClearProposedOutcome(eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	if event.ProposedOutcome == nil {
		return false, nil
	}
	event.ProposedOutcome = nil
	event.ProposedAt = nil
	return true, nil
}

func (r *fakeEventRepo) MarkResolved(eventID string, status domain.EventStatus, resolvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	if event.Status != domain.EventActive {
		return false, nil
	}
	event.Status = status
	event.ResolvedAt = &resolvedAt
	return true, nil
}

func (r *fakeEventRepo) MarkCancelled(eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	if event.Status != domain.EventActive {
		return false, nil
	}
	event.Status = domain.EventCancelled
	return true, nil
}

func (r *fakeEventRepo) FindFinalizable(windowCutoff time.Time) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Event
	for _, event := range r.events {
		if event.Status != domain.EventActive || event.ProposedAt == nil {
			continue
		}
		if event.ProposedAt.After(windowCutoff) {
			continue
		}
		clone := *event
		out = append(out, &clone)
	}
	return out, nil
}

type fakeBetRepo struct {
	mu   sync.Mutex
	bets map[string]*domain.Bet
}

func newFakeBetRepo(bets ...*domain.Bet) *fakeBetRepo {
	repo := &fakeBetRepo{bets: make(map[string]*domain.Bet)}
	for _, b := range bets {
		clone := *b
		repo.bets[b.ID] = &clone
	}
	return repo
}

func (r *fakeBetRepo) CreateBet(bet *domain.Bet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bets {
		if existing.EventID == bet.EventID && existing.UserID == bet.UserID {
			return domain.ErrBetExists
		}
	}
	clone := *bet
	r.bets[bet.ID] = &clone
	return nil
}

func (r *fakeBetRepo) GetBetByID(betID string) (*domain.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bet, ok := r.bets[betID]
	if !ok {
		return nil, domain.ErrBetNotFound
	}
	clone := *bet
	return &clone, nil
}

func (r *fakeBetRepo) GetBetByEventUser(eventID, userID string) (*domain.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bet := range r.bets {
		if bet.EventID == eventID && bet.UserID == userID {
			clone := *bet
			return &clone, nil
		}
	}
	return nil, domain.ErrBetNotFound
}

func (r *fakeBetRepo) GetBetsByEventID(eventID string) ([]*domain.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Bet
	for _, bet := range r.bets {
		if bet.EventID == eventID {
			clone := *bet
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeBetRepo) DeleteBet(betID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bets, betID)
	return nil
}

func (r *fakeBetRepo) SetPayout(betID string, payout int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bet, ok := r.bets[betID]
	if !ok || bet.Payout != nil {
		return false, nil
	}
	bet.Payout = &payout
	return true, nil
}

func (r *fakeBetRepo) CreditPayout(betID string) (bool, *domain.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bet, ok := r.bets[betID]
	if !ok {
		return false, nil, domain.ErrBetNotFound
	}
	if bet.Claimed || bet.Payout == nil || *bet.Payout <= 0 {
		clone := *bet
		return false, &clone, nil
	}
	bet.Claimed = true
	clone := *bet
	return true, &clone, nil
}

func (r *fakeBetRepo) RefundBet(betID string) (bool, *domain.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bet, ok := r.bets[betID]
	if !ok {
		return false, nil, domain.ErrBetNotFound
	}
	if bet.Refunded || bet.Claimed {
		clone := *bet
		return false, &clone, nil
	}
	bet.Refunded = true
	clone := *bet
	return true, &clone, nil
}

type fakeDisputeRepo struct {
	mu       sync.Mutex
	disputes map[string]*domain.Dispute
}

func newFakeDisputeRepo(disputes ...*domain.Dispute) *fakeDisputeRepo {
	repo := &fakeDisputeRepo{disputes: make(map[string]*domain.Dispute)}
	for _, d := range disputes {
		clone := *d
		repo.disputes[d.ID] = &clone
	}
	return repo
}

func (r *fakeDisputeRepo) CreateDispute(dispute *domain.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *dispute
	r.disputes[dispute.ID] = &clone
	return nil
}

func (r *fakeDisputeRepo) GetDisputeByID(disputeID string) (*domain.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dispute, ok := r.disputes[disputeID]
	if !ok {
		return nil, domain.ErrDisputeNotFound
	}
	clone := *dispute
	return &clone, nil
}

func (r *fakeDisputeRepo) GetOpenDisputeByEventUser(eventID, userID string) (*domain.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dispute := range r.disputes {
		if dispute.EventID == eventID && dispute.DisputerID == userID && dispute.IsOpen() {
			clone := *dispute
			return &clone, nil
		}
	}
	return nil, domain.ErrDisputeNotFound
}

func (r *fakeDisputeRepo) GetEventDisputes(eventID string) ([]*domain.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Dispute
	for _, dispute := range r.disputes {
		if dispute.EventID == eventID {
			clone := *dispute
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeDisputeRepo) CountOpenDisputes(eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, dispute := range r.disputes {
		if dispute.EventID == eventID && dispute.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (r *fakeDisputeRepo) CountEscalatedDisputes(eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, dispute := range r.disputes {
		if dispute.EventID == eventID && dispute.Escalated && dispute.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (r *fakeDisputeRepo) ResolveDispute(disputeID string, status domain.DisputeStatus, outcome *domain.Outcome, resolvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dispute, ok := r.disputes[disputeID]
	if !ok {
		return false, domain.ErrDisputeNotFound
	}
	if !dispute.IsOpen() {
		return false, nil
	}
	dispute.Status = status
	dispute.Outcome = outcome
	dispute.ResolvedAt = &resolvedAt
	return true, nil
}

func (r *fakeDisputeRepo) MarkEscalated(disputeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dispute, ok := r.disputes[disputeID]
	if !ok {
		return false, domain.ErrDisputeNotFound
	}
	if dispute.Status != domain.DisputeRejected || dispute.Escalated {
		return false, nil
	}
	dispute.Status = domain.DisputeUnderReview
	dispute.Escalated = true
	return true, nil
}

type fakeEvidenceRepo struct {
	mu        sync.Mutex
	evidence  map[string][]*domain.ResolutionEvidence
	sources   map[string][]*domain.VerificationSource
	approvals map[string][]*domain.ResolutionApproval
}

func newFakeEvidenceRepo() *fakeEvidenceRepo {
	return &fakeEvidenceRepo{
		evidence:  make(map[string][]*domain.ResolutionEvidence),
		sources:   make(map[string][]*domain.VerificationSource),
		approvals: make(map[string][]*domain.ResolutionApproval),
	}
}

func (r *fakeEvidenceRepo) AddEvidence(evidence *domain.ResolutionEvidence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evidence[evidence.EventID] = append(r.evidence[evidence.EventID], evidence)
	return nil
}

func (r *fakeEvidenceRepo) CountEvidence(eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.evidence[eventID])), nil
}

func (r *fakeEvidenceRepo) ListEvidence(eventID string) ([]*domain.ResolutionEvidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evidence[eventID], nil
}

func (r *fakeEvidenceRepo) AddSource(source *domain.VerificationSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.EventID] = append(r.sources[source.EventID], source)
	return nil
}

func (r *fakeEvidenceRepo) ListSources(eventID string) ([]*domain.VerificationSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sources[eventID], nil
}

func (r *fakeEvidenceRepo) AddApproval(approval *domain.ResolutionApproval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.approvals[approval.EventID] {
		if existing.ApproverID == approval.ApproverID {
			return fmt.Errorf("duplicate approval")
		}
	}
	r.approvals[approval.EventID] = append(r.approvals[approval.EventID], approval)
	return nil
}

func (r *fakeEvidenceRepo) CountApprovals(eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.approvals[eventID])), nil
}

type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]int64)}
}

func ledgerKey(userID string, token domain.Outcome) string {
	return userID + "/" + string(token)
}

func (l *fakeLedger) Credit(userID string, token domain.Outcome, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[ledgerKey(userID, token)] += amount
	return nil
}

func (l *fakeLedger) Debit(userID string, token domain.Outcome, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(userID, token)
	if l.balances[key] < amount {
		return domain.ErrInsufficientBalance
	}
	l.balances[key] -= amount
	return nil
}

func (l *fakeLedger) GetBalance(userID string, token domain.Outcome) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[ledgerKey(userID, token)], nil
}

type fakeStatsRepo struct {
	mu    sync.Mutex
	stats map[string]*domain.UserStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[string]*domain.UserStats)}
}

func (r *fakeStatsRepo) forUser(userID string) *domain.UserStats {
	stats, ok := r.stats[userID]
	if !ok {
		stats = &domain.UserStats{UserID: userID}
		r.stats[userID] = stats
	}
	return stats
}

func (r *fakeStatsRepo) RecordBetPlaced(userID string, amount int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forUser(userID).RecordBet(amount, at)
	return nil
}

func (r *fakeStatsRepo) RecordWin(userID string, wagered, won int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forUser(userID).RecordWin(wagered, won)
	return nil
}

func (r *fakeStatsRepo) RecordLoss(userID string, wagered int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forUser(userID).RecordLoss(wagered)
	return nil
}

func (r *fakeStatsRepo) RecordEventCreated(creatorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forUser(creatorID).EventsCreated++
	return nil
}

func (r *fakeStatsRepo) GetUserStats(userID string) (*domain.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *r.forUser(userID)
	return &clone, nil
}

type enqueuedJob struct {
	kind    domain.JobKind
	payload any
	opts    *domain.EnqueueOptions
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []enqueuedJob
}

func (q *fakeQueue) Enqueue(kind domain.JobKind, payload any, opts *domain.EnqueueOptions) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, enqueuedJob{kind: kind, payload: payload, opts: opts})
	return nil
}

func (q *fakeQueue) byKind(kind domain.JobKind) []enqueuedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []enqueuedJob
	for _, job := range q.jobs {
		if job.kind == kind {
			out = append(out, job)
		}
	}
	return out
}

type fakeAuditSink struct {
	mu     sync.Mutex
	events []string
}

func (s *fakeAuditSink) Record(event string, details map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *fakeAuditSink) has(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e == event {
			return true
		}
	}
	return false
}
