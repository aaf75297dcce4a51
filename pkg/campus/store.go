package campus

import "context"

// UserStore is the typed accessor for the users collection.
type UserStore interface {
	GetUser(ctx context.Context, userID UserID) (User, error)
	GetUserByEmail(ctx context.Context, email Email) (User, error)
	CreateUser(ctx context.Context, user User) error
	// DebitBalance decrements the balance only when it still covers the
	// stake (compare-and-swap); otherwise ErrInsufficientBalance.
	DebitBalance(ctx context.Context, userID UserID, stake Stake) error
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// EventStore is the typed accessor for the events collection.
type EventStore interface {
	GetEvent(ctx context.Context, eventID EventID) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpsertEvent(ctx context.Context, event Event) error
}

// BetStore is the typed accessor for the append-only bets collection.
type BetStore interface {
	InsertBet(ctx context.Context, bet Bet) error
	ListBetsByUser(ctx context.Context, userID UserID) ([]Bet, error)
	CountBets(ctx context.Context) (int64, error)
	CountBetsByStatus(ctx context.Context, status BetStatus) (int64, error)
	SumStakes(ctx context.Context) (int64, error)
}

// ElectionStore is the typed accessor for the elections collection.
type ElectionStore interface {
	GetElection(ctx context.Context, electionID ElectionID) (Election, error)
	ListElections(ctx context.Context) ([]Election, error)
	UpsertElection(ctx context.Context, election Election) error
	SetElectionStatus(ctx context.Context, electionID ElectionID, status ElectionStatus) error
}

// VoteStore is the typed accessor for the append-only votes collection.
type VoteStore interface {
	HasVote(ctx context.Context, electionID ElectionID, userID UserID) (bool, error)
	InsertVote(ctx context.Context, vote Vote) error
	CountVotesByCandidate(ctx context.Context, electionID ElectionID) (map[string]int64, error)
}

// Store is the persistence contract used by the campus services. WithTx
// runs fn against a transactional view; every mutating operation executes
// its full read-check-write sequence inside one transaction.
type Store interface {
	UserStore
	EventStore
	BetStore
	ElectionStore
	VoteStore
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
}
