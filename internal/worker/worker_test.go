package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/doomlife/settlement-service/internal/config"
	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"github.com/doomlife/settlement-service/internal/infrastructure/metrics"
)

// Shared across the package: promauto panics on duplicate registration.
var testMetrics = metrics.NewSettlementMetrics()

var testPublisher = publisher.NewKafkaPublisher([]string{"127.0.0.1:1"}, "test-events")

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() config.Settlement {
	return config.Settlement{
		FeeBasisPoints:      200,
		DisputeWindow:       24 * time.Hour,
		PayoutBatchSize:     100,
		WindowSweepInterval: 30 * time.Second,
	}
}

func envelope(kind domain.JobKind, payload any) *domain.JobEnvelope {
	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return &domain.JobEnvelope{
		ID:         "job-1",
		Kind:       kind,
		Payload:    body,
		EnqueuedAt: fixedNow,
	}
}

type memEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
}

func newMemEventRepo(events ...*domain.Event) *memEventRepo {
	repo := &memEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		clone := *e
		repo.events[e.ID] = &clone
	}
	return repo
}

func (r *memEventRepo) CreateEvent(event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *memEventRepo) GetEventByID(eventID string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *memEventRepo) AddStake(eventID string, outcome domain.Outcome, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *memEventRepo) SetProposedOutcome(eventID string, outcome domain.Outcome, proposedAt time.Time) (bool, error) {
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

func (r *memEventRepo) ClearProposedOutcome(eventID string) (bool, error) {
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

func (r *memEventRepo) MarkResolved(eventID string, status domain.EventStatus, resolvedAt time.Time) (bool, error) {
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

func (r *memEventRepo) MarkCancelled(eventID string) (bool, error) {
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

func (r *memEventRepo) FindFinalizable(windowCutoff time.Time) ([]*domain.Event, error) {
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

// memBetRepo mirrors the SQL repository's credit semantics: claiming or
// refunding a bet moves tokens into the shared ledger, so tests can assert
// conservation across the whole pipeline.
type memBetRepo struct {
	mu     sync.Mutex
	bets   map[string]*domain.Bet
	ledger *memLedger
}

func newMemBetRepo(ledger *memLedger, bets ...*domain.Bet) *memBetRepo {
	repo := &memBetRepo{bets: make(map[string]*domain.Bet), ledger: ledger}
	for _, b := range bets {
		clone := *b
		repo.bets[b.ID] = &clone
	}
	return repo
}

func (r *memBetRepo) CreateBet(bet *domain.Bet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *bet
	r.bets[bet.ID] = &clone
	return nil
}

func (r *memBetRepo) GetBetByID(betID string) (*domain.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bet, ok := r.bets[betID]
	if !ok {
		return nil, domain.ErrBetNotFound
	}
	clone := *bet
	return &clone, nil
}

func (r *memBetRepo) GetBetByEventUser(eventID, userID string) (*domain.Bet, error) {
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

func (r *memBetRepo) GetBetsByEventID(eventID string) ([]*domain.Bet, error) {
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

func (r *memBetRepo) DeleteBet(betID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bets, betID)
	return nil
}

func (r *memBetRepo) SetPayout(betID string, payout int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bet, ok := r.bets[betID]
	if !ok || bet.Payout != nil {
		return false, nil
	}
	bet.Payout = &payout
	return true, nil
}

func (r *memBetRepo) CreditPayout(betID string) (bool, *domain.Bet, error) {
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
	// Stake back in its own token, winnings in the losing side's token.
	r.ledger.Credit(bet.UserID, bet.Outcome, bet.Amount)
	if winnings := *bet.Payout - bet.Amount; winnings > 0 {
		r.ledger.Credit(bet.UserID, domain.Opposite(bet.Outcome), winnings)
	}
	clone := *bet
	return true, &clone, nil
}

func (r *memBetRepo) RefundBet(betID string) (bool, *domain.Bet, error) {
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
	r.ledger.Credit(bet.UserID, bet.Outcome, bet.Amount)
	clone := *bet
	return true, &clone, nil
}

type memDisputeRepo struct {
	mu       sync.Mutex
	disputes map[string]*domain.Dispute
}

func newMemDisputeRepo(disputes ...*domain.Dispute) *memDisputeRepo {
	repo := &memDisputeRepo{disputes: make(map[string]*domain.Dispute)}
	for _, d := range disputes {
		clone := *d
		repo.disputes[d.ID] = &clone
	}
	return repo
}

func (r *memDisputeRepo) CreateDispute(dispute *domain.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *dispute
	r.disputes[dispute.ID] = &clone
	return nil
}

func (r *memDisputeRepo) GetDisputeByID(disputeID string) (*domain.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dispute, ok := r.disputes[disputeID]
	if !ok {
		return nil, domain.ErrDisputeNotFound
	}
	clone := *dispute
	return &clone, nil
}

func (r *memDisputeRepo) GetOpenDisputeByEventUser(eventID, userID string) (*domain.Dispute, error) {
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

func (r *memDisputeRepo) GetEventDisputes(eventID string) ([]*domain.Dispute, error) {
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

func (r *memDisputeRepo) CountOpenDisputes(eventID string) (int64, error) {
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

func (r *memDisputeRepo) CountEscalatedDisputes(eventID string) (int64, error) {
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

func (r *memDisputeRepo) ResolveDispute(disputeID string, status domain.DisputeStatus, outcome *domain.Outcome, resolvedAt time.Time) (bool, error) {
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

func (r *memDisputeRepo) MarkEscalated(disputeID string) (bool, error) {
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

type memLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newMemLedger() *memLedger {
	return &memLedger{balances: make(map[string]int64)}
}

func (l *memLedger) Credit(userID string, token domain.Outcome, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID+"/"+string(token)] += amount
	return nil
}

func (l *memLedger) Debit(userID string, token domain.Outcome, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := userID + "/" + string(token)
	if l.balances[key] < amount {
		return domain.ErrInsufficientBalance
	}
	l.balances[key] -= amount
	return nil
}

func (l *memLedger) GetBalance(userID string, token domain.Outcome) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID+"/"+string(token)], nil
}

type memStatsRepo struct {
	mu    sync.Mutex
	stats map[string]*domain.UserStats
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{stats: make(map[string]*domain.UserStats)}
}

func (r *memStatsRepo) forUser(userID string) *domain.UserStats {
	stats, ok := r.stats[userID]
	if !ok {
		stats = &domain.UserStats{UserID: userID}
		r.stats[userID] = stats
	}
	return stats
}

func (r *memStatsRepo) RecordBetPlaced(userID string, amount int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forUser(userID).RecordBet(amount, at)
	return nil
}

func (r *memStatsRepo) RecordWin(userID string, wagered, won int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forUser(userID).RecordWin(wagered, won)
	return nil
}

func (r *memStatsRepo) RecordLoss(userID string, wagered int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forUser(userID).RecordLoss(wagered)
	return nil
}

func (r *memStatsRepo) RecordEventCreated(creatorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forUser(creatorID).EventsCreated++
	return nil
}

func (r *memStatsRepo) GetUserStats(userID string) (*domain.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *r.forUser(userID)
	return &clone, nil
}

type recordedJob struct {
	kind    domain.JobKind
	payload any
	opts    *domain.EnqueueOptions
}

type memQueue struct {
	mu   sync.Mutex
	jobs []recordedJob
}

func (q *memQueue) Enqueue(kind domain.JobKind, payload any, opts *domain.EnqueueOptions) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, recordedJob{kind: kind, payload: payload, opts: opts})
	return nil
}

func (q *memQueue) byKind(kind domain.JobKind) []recordedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []recordedJob
	for _, job := range q.jobs {
		if job.kind == kind {
			out = append(out, job)
		}
	}
	return out
}

type memAuditSink struct{}

func (memAuditSink) Record(event string, details map[string]any) {}

type notification struct {
	kind    string
	userID  string
	eventID string
	amount  int64
}

type memNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *memNotifier) NotifyPayout(userID, eventID string, token domain.Outcome, amount int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "payout", userID: userID, eventID: eventID, amount: amount})
}

func (n *memNotifier) NotifyRefund(userID, eventID string, token domain.Outcome, amount int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "refund", userID: userID, eventID: eventID, amount: amount})
}

type settlerFixture struct {
	settler     *Settler
	eventRepo   *memEventRepo
	betRepo     *memBetRepo
	disputeRepo *memDisputeRepo
	ledger      *memLedger
	statsRepo   *memStatsRepo
	queue       *memQueue
	notifier    *memNotifier
}

func newSettlerFixture(events []*domain.Event, bets ...*domain.Bet) *settlerFixture {
	ledger := newMemLedger()
	f := &settlerFixture{
		eventRepo:   newMemEventRepo(events...),
		betRepo:     newMemBetRepo(ledger, bets...),
		disputeRepo: newMemDisputeRepo(),
		ledger:      ledger,
		statsRepo:   newMemStatsRepo(),
		queue:       &memQueue{},
		notifier:    &memNotifier{},
	}
	f.settler = NewSettler(
		f.eventRepo, f.betRepo, f.disputeRepo, f.ledger, f.statsRepo, f.queue,
		testPublisher, memAuditSink{}, f.notifier, testMetrics,
		testConfig(), slog.Default(),
	)
	f.settler.now = func() time.Time { return fixedNow }
	return f
}

func makeBets(eventID string, outcome domain.Outcome, count int, amount int64) []*domain.Bet {
	bets := make([]*domain.Bet, count)
	for i := range bets {
		bets[i] = &domain.Bet{
			ID:      fmt.Sprintf("%s-%s-bet-%d", eventID, outcome, i),
			EventID: eventID,
			UserID:  fmt.Sprintf("%s-user-%d", outcome, i),
			Outcome: outcome,
			Amount:  amount,
		}
	}
	return bets
}
