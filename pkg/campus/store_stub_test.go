package campus

import (
	"context"
	"testing"
)

// stubStore is an in-memory Store with per-call error injection. WithTx
// applies mutations directly; tests for failure paths assert errors, not
// intermediate state.
type stubStore struct {
	users     map[string]User
	events    map[string]Event
	bets      []Bet
	elections map[string]Election
	votes     []Vote

	getUserError        error
	getUserByEmailError error
	createUserError     error
	debitBalanceError   error
	listUsersError      error
	getEventError       error
	listEventsError     error
	upsertEventError    error
	insertBetError      error
	listBetsError       error
	getElectionError    error
	listElectionsError  error
	hasVoteError        error
	insertVoteError     error
	countVotesError     error
	withTxError         error
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	return &stubStore{
		users:     map[string]User{},
		events:    map[string]Event{},
		elections: map[string]Election{},
	}
}

func (store *stubStore) GetUser(_ context.Context, userID UserID) (User, error) {
	if store.getUserError != nil {
		return User{}, store.getUserError
	}
	user, ok := store.users[userID.String()]
	if !ok {
		return User{}, ErrUnknownUser
	}
	return user, nil
}

func (store *stubStore) GetUserByEmail(_ context.Context, email Email) (User, error) {
	if store.getUserByEmailError != nil {
		return User{}, store.getUserByEmailError
	}
	for _, user := range store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrUnknownUser
}

func (store *stubStore) CreateUser(_ context.Context, user User) error {
	if store.createUserError != nil {
		return store.createUserError
	}
	for _, existing := range store.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	store.users[user.ID.String()] = user
	return nil
}

func (store *stubStore) DebitBalance(_ context.Context, userID UserID, stake Stake) error {
	if store.debitBalanceError != nil {
		return store.debitBalanceError
	}
	user, ok := store.users[userID.String()]
	if !ok {
		return ErrUnknownUser
	}
	if user.Balance < stake.Int64() {
		return ErrInsufficientBalance
	}
	user.Balance -= stake.Int64()
	store.users[userID.String()] = user
	return nil
}

func (store *stubStore) ListUsers(_ context.Context) ([]User, error) {
	if store.listUsersError != nil {
		return nil, store.listUsersError
	}
	users := make([]User, 0, len(store.users))
	for _, user := range store.users {
		users = append(users, user)
	}
	return users, nil
}

func (store *stubStore) CountUsers(_ context.Context) (int64, error) {
	return int64(len(store.users)), nil
}

func (store *stubStore) GetEvent(_ context.Context, eventID EventID) (Event, error) {
	if store.getEventError != nil {
		return Event{}, store.getEventError
	}
	event, ok := store.events[eventID.String()]
	if !ok {
		return Event{}, ErrUnknownEvent
	}
	return event, nil
}

func (store *stubStore) ListEvents(_ context.Context) ([]Event, error) {
	if store.listEventsError != nil {
		return nil, store.listEventsError
	}
	events := make([]Event, 0, len(store.events))
	for _, event := range store.events {
		events = append(events, event)
	}
	return events, nil
}

func (store *stubStore) UpsertEvent(_ context.Context, event Event) error {
	if store.upsertEventError != nil {
		return store.upsertEventError
	}
	store.events[event.ID.String()] = event
	return nil
}

func (store *stubStore) InsertBet(_ context.Context, bet Bet) error {
	if store.insertBetError != nil {
		return store.insertBetError
	}
	for _, existing := range store.bets {
		if existing.UserID == bet.UserID && existing.IdempotencyKey == bet.IdempotencyKey {
			return ErrDuplicateIdempotencyKey
		}
	}
	store.bets = append(store.bets, bet)
	return nil
}

func (store *stubStore) ListBetsByUser(_ context.Context, userID UserID) ([]Bet, error) {
	if store.listBetsError != nil {
		return nil, store.listBetsError
	}
	bets := make([]Bet, 0)
	for _, bet := range store.bets {
		if bet.UserID == userID {
			bets = append(bets, bet)
		}
	}
	return bets, nil
}

func (store *stubStore) CountBets(_ context.Context) (int64, error) {
	return int64(len(store.bets)), nil
}

func (store *stubStore) CountBetsByStatus(_ context.Context, status BetStatus) (int64, error) {
	var count int64
	for _, bet := range store.bets {
		if bet.Status == status {
			count++
		}
	}
	return count, nil
}

func (store *stubStore) SumStakes(_ context.Context) (int64, error) {
	var total int64
	for _, bet := range store.bets {
		total += bet.Stake.Int64()
	}
	return total, nil
}

func (store *stubStore) GetElection(_ context.Context, electionID ElectionID) (Election, error) {
	if store.getElectionError != nil {
		return Election{}, store.getElectionError
	}
	election, ok := store.elections[electionID.String()]
	if !ok {
		return Election{}, ErrUnknownElection
	}
	return election, nil
}

func (store *stubStore) ListElections(_ context.Context) ([]Election, error) {
	if store.listElectionsError != nil {
		return nil, store.listElectionsError
	}
	elections := make([]Election, 0, len(store.elections))
	for _, election := range store.elections {
		elections = append(elections, election)
	}
	return elections, nil
}

func (store *stubStore) UpsertElection(_ context.Context, election Election) error {
	store.elections[election.ID.String()] = election
	return nil
}

func (store *stubStore) SetElectionStatus(_ context.Context, electionID ElectionID, status ElectionStatus) error {
	election, ok := store.elections[electionID.String()]
	if !ok {
		return ErrUnknownElection
	}
	election.Status = status
	store.elections[electionID.String()] = election
	return nil
}

func (store *stubStore) HasVote(_ context.Context, electionID ElectionID, userID UserID) (bool, error) {
	if store.hasVoteError != nil {
		return false, store.hasVoteError
	}
	for _, vote := range store.votes {
		if vote.ElectionID == electionID && vote.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (store *stubStore) InsertVote(_ context.Context, vote Vote) error {
	if store.insertVoteError != nil {
		return store.insertVoteError
	}
	for _, existing := range store.votes {
		if existing.ElectionID == vote.ElectionID && existing.UserID == vote.UserID {
			return ErrAlreadyVoted
		}
	}
	store.votes = append(store.votes, vote)
	return nil
}

func (store *stubStore) CountVotesByCandidate(_ context.Context, electionID ElectionID) (map[string]int64, error) {
	if store.countVotesError != nil {
		return nil, store.countVotesError
	}
	counts := map[string]int64{}
	for _, vote := range store.votes {
		if vote.ElectionID == electionID {
			counts[vote.CandidateID.String()]++
		}
	}
	return counts, nil
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	if store.withTxError != nil {
		return store.withTxError
	}
	return fn(ctx, store)
}

func mustUserID(test *testing.T, raw string) UserID {
	test.Helper()
	userID, err := NewUserID(raw)
	if err != nil {
		test.Fatalf("user id %q: %v", raw, err)
	}
	return userID
}

func mustEventID(test *testing.T, raw string) EventID {
	test.Helper()
	eventID, err := NewEventID(raw)
	if err != nil {
		test.Fatalf("event id %q: %v", raw, err)
	}
	return eventID
}

func mustElectionID(test *testing.T, raw string) ElectionID {
	test.Helper()
	electionID, err := NewElectionID(raw)
	if err != nil {
		test.Fatalf("election id %q: %v", raw, err)
	}
	return electionID
}

func mustCandidateID(test *testing.T, raw string) CandidateID {
	test.Helper()
	candidateID, err := NewCandidateID(raw)
	if err != nil {
		test.Fatalf("candidate id %q: %v", raw, err)
	}
	return candidateID
}

func mustEmail(test *testing.T, raw string) Email {
	test.Helper()
	email, err := NewEmail(raw)
	if err != nil {
		test.Fatalf("email %q: %v", raw, err)
	}
	return email
}

func mustStake(test *testing.T, raw int64) Stake {
	test.Helper()
	stake, err := NewStake(raw)
	if err != nil {
		test.Fatalf("stake %d: %v", raw, err)
	}
	return stake
}

func mustIdempotencyKey(test *testing.T, raw string) IdempotencyKey {
	test.Helper()
	key, err := NewIdempotencyKey(raw)
	if err != nil {
		test.Fatalf("idempotency key %q: %v", raw, err)
	}
	return key
}

func mustMetadata(test *testing.T, raw string) MetadataJSON {
	test.Helper()
	metadata, err := NewMetadataJSON(raw)
	if err != nil {
		test.Fatalf("metadata %q: %v", raw, err)
	}
	return metadata
}

func mustOdds(test *testing.T, home float64, draw float64, away float64) Odds {
	test.Helper()
	odds, err := NewOdds(home, draw, away)
	if err != nil {
		test.Fatalf("odds %v/%v/%v: %v", home, draw, away, err)
	}
	return odds
}

func seedStubUser(test *testing.T, store *stubStore, id string, email string, balance int64) User {
	test.Helper()
	user := User{
		ID:       mustUserID(test, id),
		Name:     "Test Student",
		Email:    mustEmail(test, email),
		Role:     RoleStudent,
		Balance:  balance,
		Age:      18,
		Verified: true,
	}
	store.users[user.ID.String()] = user
	return user
}

func seedStubEvent(test *testing.T, store *stubStore, id string, status EventStatus, odds Odds) Event {
	test.Helper()
	event := Event{
		ID:         mustEventID(test, id),
		Tournament: "Campus Premier League",
		HomeTeam:   "Falcons",
		AwayTeam:   "Titans",
		Status:     status,
		Odds:       odds,
	}
	store.events[event.ID.String()] = event
	return event
}

func seedStubElection(test *testing.T, store *stubStore, id string, status ElectionStatus, candidateIDs ...string) Election {
	test.Helper()
	candidates := make([]Candidate, 0, len(candidateIDs))
	for index, candidateID := range candidateIDs {
		candidates = append(candidates, Candidate{
			ID:         mustCandidateID(test, candidateID),
			Name:       "Candidate " + candidateID,
			ColorIndex: index,
		})
	}
	election := Election{
		ID:          mustElectionID(test, id),
		Title:       "Student Council President",
		Candidates:  candidates,
		Status:      status,
		Eligibility: "all_students",
	}
	store.elections[election.ID.String()] = election
	return election
}
