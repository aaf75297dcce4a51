package campus

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// UserID identifies a registered student or administrator.
type UserID struct {
	value string
}

// EventID identifies a sporting event.
type EventID struct {
	value string
}

// BetID identifies a placed bet (the "ticket id").
type BetID struct {
	value string
}

// ElectionID identifies a student election.
type ElectionID struct {
	value string
}

// CandidateID identifies a candidate within one election.
type CandidateID struct {
	value string
}

// VoteID identifies a cast vote.
type VoteID struct {
	value string
}

// IdempotencyKey scopes duplicate detection for bet placement.
type IdempotencyKey struct {
	value string
}

// MetadataJSON stores arbitrary request metadata.
type MetadataJSON struct {
	value string
}

// Email is a normalized (lowercased) e-mail address.
type Email struct {
	value string
}

// Stake is a positive, whole number of campus tokens wagered on a bet.
type Stake int64

// NewUserID validates and normalizes a user id.
func NewUserID(raw string) (UserID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return UserID{}, fmt.Errorf("%w: empty value", ErrInvalidUserID)
	}
	return UserID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id UserID) String() string {
	return id.value
}

// NewEventID validates and normalizes an event id.
func NewEventID(raw string) (EventID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EventID{}, fmt.Errorf("%w: empty value", ErrInvalidEventID)
	}
	return EventID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id EventID) String() string {
	return id.value
}

// NewBetID validates and normalizes a bet id.
func NewBetID(raw string) (BetID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return BetID{}, fmt.Errorf("%w: empty value", ErrInvalidBetID)
	}
	return BetID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id BetID) String() string {
	return id.value
}

// NewElectionID validates and normalizes an election id.
func NewElectionID(raw string) (ElectionID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ElectionID{}, fmt.Errorf("%w: empty value", ErrInvalidElectionID)
	}
	return ElectionID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id ElectionID) String() string {
	return id.value
}

// NewCandidateID validates and normalizes a candidate id.
func NewCandidateID(raw string) (CandidateID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CandidateID{}, fmt.Errorf("%w: empty value", ErrInvalidCandidateID)
	}
	return CandidateID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id CandidateID) String() string {
	return id.value
}

// NewVoteID validates and normalizes a vote id.
func NewVoteID(raw string) (VoteID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return VoteID{}, fmt.Errorf("%w: empty value", ErrInvalidVoteID)
	}
	return VoteID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id VoteID) String() string {
	return id.value
}

// NewIdempotencyKey validates and normalizes an idempotency key.
func NewIdempotencyKey(raw string) (IdempotencyKey, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return IdempotencyKey{}, fmt.Errorf("%w: empty value", ErrInvalidIdempotencyKey)
	}
	return IdempotencyKey{value: trimmed}, nil
}

// String returns the normalized key.
func (key IdempotencyKey) String() string {
	return key.value
}

// NewMetadataJSON validates metadata (defaulting to "{}" for empty inputs).
func NewMetadataJSON(raw string) (MetadataJSON, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		normalized = "{}"
	}
	if !json.Valid([]byte(normalized)) {
		return MetadataJSON{}, fmt.Errorf("%w: must be valid json", ErrInvalidMetadataJSON)
	}
	return MetadataJSON{value: normalized}, nil
}

// String returns the normalized JSON blob.
func (metadata MetadataJSON) String() string {
	return metadata.value
}

// NewEmail validates and lowercases an e-mail address.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	atIndex := strings.Index(normalized, "@")
	if atIndex <= 0 || atIndex == len(normalized)-1 {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	return Email{value: normalized}, nil
}

// String returns the normalized address.
func (email Email) String() string {
	return email.value
}

// Domain returns the part after the "@".
func (email Email) Domain() string {
	atIndex := strings.Index(email.value, "@")
	return email.value[atIndex+1:]
}

// NewStake validates a stake and ensures it is strictly positive.
func NewStake(raw int64) (Stake, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidStake)
	}
	return Stake(raw), nil
}

// Int64 returns the stake in tokens.
func (stake Stake) Int64() int64 {
	return int64(stake)
}

// Role separates students from administrators.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a stored role value.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
}

// String returns the role value.
func (role Role) String() string {
	return string(role)
}

// Selection is the side of an event a bet is placed on.
type Selection string

const (
	SelectionHome Selection = "home"
	SelectionDraw Selection = "draw"
	SelectionAway Selection = "away"
)

// ParseSelection validates a bet selection.
func ParseSelection(raw string) (Selection, error) {
	switch Selection(raw) {
	case SelectionHome, SelectionDraw, SelectionAway:
		return Selection(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSelection, raw)
}

// String returns the selection value.
func (selection Selection) String() string {
	return string(selection)
}

// EventStatus defines the event lifecycle. Transitions are driven by
// administrative action, not by this package.
type EventStatus string

const (
	EventStatusUpcoming EventStatus = "upcoming"
	EventStatusLive     EventStatus = "live"
	EventStatusFinished EventStatus = "finished"
)

// ParseEventStatus validates a stored event status.
func ParseEventStatus(raw string) (EventStatus, error) {
	switch EventStatus(raw) {
	case EventStatusUpcoming, EventStatusLive, EventStatusFinished:
		return EventStatus(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEventStatus, raw)
}

// String returns the status value.
func (status EventStatus) String() string {
	return string(status)
}

// BetStatus defines the bet lifecycle. Bets stay pending: no settlement
// flow exists in this system.
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusVoided  BetStatus = "voided"
)

// ParseBetStatus validates a stored bet status.
func ParseBetStatus(raw string) (BetStatus, error) {
	switch BetStatus(raw) {
	case BetStatusPending, BetStatusWon, BetStatusLost, BetStatusVoided:
		return BetStatus(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBetStatus, raw)
}

// String returns the status value.
func (status BetStatus) String() string {
	return string(status)
}

// ElectionStatus defines the election lifecycle: upcoming, active, closed.
type ElectionStatus string

const (
	ElectionStatusUpcoming ElectionStatus = "upcoming"
	ElectionStatusActive   ElectionStatus = "active"
	ElectionStatusClosed   ElectionStatus = "closed"
)

// ParseElectionStatus validates a stored election status.
func ParseElectionStatus(raw string) (ElectionStatus, error) {
	switch ElectionStatus(raw) {
	case ElectionStatusUpcoming, ElectionStatusActive, ElectionStatusClosed:
		return ElectionStatus(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidElectionStatus, raw)
}

// String returns the status value.
func (status ElectionStatus) String() string {
	return string(status)
}

// Odds carry the decimal price for each selection of an event.
type Odds struct {
	Home float64
	Draw float64
	Away float64
}

// NewOdds validates that every price is strictly positive.
func NewOdds(home float64, draw float64, away float64) (Odds, error) {
	for _, price := range []float64{home, draw, away} {
		if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return Odds{}, fmt.Errorf("%w: prices must be positive finite numbers", ErrInvalidOdds)
		}
	}
	return Odds{Home: home, Draw: draw, Away: away}, nil
}

// For returns the price quoted for a selection.
func (odds Odds) For(selection Selection) float64 {
	switch selection {
	case SelectionDraw:
		return odds.Draw
	case SelectionAway:
		return odds.Away
	default:
		return odds.Home
	}
}

// Score is the running or final score of an event.
type Score struct {
	Home int
	Away int
}

// User is a flat account record. Balance is whole tokens.
type User struct {
	ID             UserID
	Name           string
	Email          Email
	StudentID      string
	Role           Role
	Balance        int64
	Age            int
	Verified       bool
	CreatedUnixUTC int64
}

// Event is a sporting event open for betting.
type Event struct {
	ID             EventID
	Tournament     string
	HomeTeam       string
	AwayTeam       string
	StartAtUnixUTC int64
	Status         EventStatus
	Odds           Odds
	Score          *Score
}

// Bet is an immutable wager record. Payout is precomputed at placement.
type Bet struct {
	ID             BetID
	UserID         UserID
	MatchID        EventID
	Selection      Selection
	Stake          Stake
	Payout         int64
	Status         BetStatus
	IdempotencyKey IdempotencyKey
	Metadata       MetadataJSON
	PlacedUnixUTC  int64
}

// Candidate runs in exactly one election.
type Candidate struct {
	ID         CandidateID
	Name       string
	Manifesto  string
	Photo      string
	ColorIndex int
}

// Election groups an ordered list of candidates.
type Election struct {
	ID             ElectionID
	Title          string
	Candidates     []Candidate
	StartAtUnixUTC int64
	EndAtUnixUTC   int64
	Status         ElectionStatus
	Eligibility    string
}

// Candidate returns the candidate with the given id, if it runs here.
func (election Election) Candidate(candidateID CandidateID) (Candidate, bool) {
	for _, candidate := range election.Candidates {
		if candidate.ID == candidateID {
			return candidate, true
		}
	}
	return Candidate{}, false
}

// Vote is an immutable ballot record: one per (user, election).
type Vote struct {
	ID           VoteID
	ElectionID   ElectionID
	UserID       UserID
	CandidateID  CandidateID
	VotedUnixUTC int64
}

// TallyLine is the count and share for one candidate.
type TallyLine struct {
	CandidateID CandidateID
	Name        string
	Count       int64
	Percentage  float64
}

// Tally is the vote distribution of an election, in candidate order.
// Every candidate appears, zero counts included.
type Tally struct {
	ElectionID ElectionID
	TotalVotes int64
	Lines      []TallyLine
}

// BetSummary carries the dashboard's derived betting figures for one user.
type BetSummary struct {
	TotalBets      int64
	PendingBets    int64
	WonBets        int64
	TotalStaked    int64
	WinRatePercent float64
}

// PotentialPayout computes floor(stake x price) for a selection.
func PotentialPayout(stake Stake, odds Odds, selection Selection) int64 {
	return int64(math.Floor(float64(stake.Int64()) * odds.For(selection)))
}
