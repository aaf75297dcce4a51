package campus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// BettingService validates and records wagers against events.
type BettingService struct {
	store  Store
	nowFn  func() int64
	idFn   func() string
	logger OperationLogger
}

// BettingOption configures a BettingService instance.
type BettingOption func(*BettingService)

// WithBettingOperationLogger wires a logger receiving every operation.
func WithBettingOperationLogger(logger OperationLogger) BettingOption {
	return func(service *BettingService) {
		service.logger = logger
	}
}

// WithBettingIDGenerator overrides bet id generation (tests).
func WithBettingIDGenerator(idFn func() string) BettingOption {
	return func(service *BettingService) {
		service.idFn = idFn
	}
}

// NewBettingService wires a BettingService.
func NewBettingService(store Store, now func() int64, options ...BettingOption) (*BettingService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &BettingService{store: store, nowFn: now, idFn: uuid.NewString}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// PlaceBet records a pending wager and debits the stake in one transaction.
// The payout is precomputed as floor(stake x odds[selection]) and never
// changes afterwards: no settlement flow exists.
func (service *BettingService) PlaceBet(ctx context.Context, userID UserID, eventID EventID, selection Selection, stake Stake, idempotencyKey IdempotencyKey, metadata MetadataJSON) (Bet, error) {
	var placed Bet
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		user, err := transactionStore.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if stake.Int64() > user.Balance {
			return ErrInsufficientBalance
		}
		event, err := transactionStore.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.Status == EventStatusFinished {
			return ErrEventClosed
		}
		betID, err := NewBetID(betIDPrefix + service.idFn())
		if err != nil {
			return err
		}
		bet := Bet{
			ID:             betID,
			UserID:         user.ID,
			MatchID:        event.ID,
			Selection:      selection,
			Stake:          stake,
			Payout:         PotentialPayout(stake, event.Odds, selection),
			Status:         BetStatusPending,
			IdempotencyKey: idempotencyKey,
			Metadata:       metadata,
			PlacedUnixUTC:  service.nowFn(),
		}
		if err := transactionStore.InsertBet(ctx, bet); err != nil {
			return err
		}
		if err := transactionStore.DebitBalance(ctx, user.ID, stake); err != nil {
			return err
		}
		placed = bet
		return nil
	})
	emitOperation(ctx, service.logger, OperationLog{
		Operation:      operationPlaceBet,
		UserID:         userID,
		SubjectID:      eventID.String(),
		Amount:         stake.Int64(),
		IdempotencyKey: idempotencyKey,
		Metadata:       metadata,
		Error:          operationError,
	})
	if operationError != nil {
		return Bet{}, operationError
	}
	return placed, nil
}

// Bets lists the user's wagers, newest first.
func (service *BettingService) Bets(ctx context.Context, userID UserID) ([]Bet, error) {
	return service.store.ListBetsByUser(ctx, userID)
}

// Summary derives the dashboard figures from the user's bet history.
// Win rate is won over all bets, as a percentage.
func (service *BettingService) Summary(ctx context.Context, userID UserID) (BetSummary, error) {
	bets, err := service.store.ListBetsByUser(ctx, userID)
	if err != nil {
		return BetSummary{}, err
	}
	summary := BetSummary{}
	for _, bet := range bets {
		summary.TotalBets++
		summary.TotalStaked += bet.Stake.Int64()
		switch bet.Status {
		case BetStatusPending:
			summary.PendingBets++
		case BetStatusWon:
			summary.WonBets++
		}
	}
	if summary.TotalBets > 0 {
		summary.WinRatePercent = float64(summary.WonBets) / float64(summary.TotalBets) * 100
	}
	return summary, nil
}

// Events lists every event, soonest start first.
func (service *BettingService) Events(ctx context.Context) ([]Event, error) {
	return service.store.ListEvents(ctx)
}

// Event returns a single event.
func (service *BettingService) Event(ctx context.Context, eventID EventID) (Event, error) {
	return service.store.GetEvent(ctx, eventID)
}
