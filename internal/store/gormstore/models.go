package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User mirrors the users table.
type User struct {
	UserID    string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null;uniqueIndex:uniq_users_email"`
	StudentID string    `gorm:"not null"`
	Role      string    `gorm:"not null"`
	Balance   int64     `gorm:"not null"`
	Age       int       `gorm:"not null"`
	Verified  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (User) TableName() string { return "users" }

func (user *User) BeforeCreate(tx *gorm.DB) error {
	if user.UserID == "" {
		user.UserID = "u_" + uuid.NewString()
	}
	return nil
}

// Event mirrors the events table. Odds are stored per selection; the score
// columns stay null until an administrator records one.
type Event struct {
	EventID    string    `gorm:"primaryKey"`
	Tournament string    `gorm:"not null"`
	HomeTeam   string    `gorm:"not null"`
	AwayTeam   string    `gorm:"not null"`
	StartAt    time.Time `gorm:"not null;index:idx_events_start"`
	Status     string    `gorm:"not null"`
	OddsHome   float64   `gorm:"not null"`
	OddsDraw   float64   `gorm:"not null"`
	OddsAway   float64   `gorm:"not null"`
	ScoreHome  *int      `gorm:""`
	ScoreAway  *int      `gorm:""`
}

func (Event) TableName() string { return "events" }

// Bet mirrors the append-only bets table.
type Bet struct {
	BetID          string         `gorm:"primaryKey"`
	UserID         string         `gorm:"not null;index:idx_bets_user_placed,priority:1;uniqueIndex:uniq_bets_user_idem,priority:1"`
	MatchID        string         `gorm:"not null"`
	Selection      string         `gorm:"not null"`
	Stake          int64          `gorm:"not null"`
	Payout         int64          `gorm:"not null"`
	Status         string         `gorm:"not null"`
	IdempotencyKey string         `gorm:"not null;uniqueIndex:uniq_bets_user_idem,priority:2"`
	Metadata       datatypes.JSON `gorm:"not null"`
	PlacedAt       time.Time      `gorm:"not null;index:idx_bets_user_placed,priority:2"`
}

func (Bet) TableName() string { return "bets" }

func (bet *Bet) BeforeCreate(tx *gorm.DB) error {
	if bet.BetID == "" {
		bet.BetID = "b_" + uuid.NewString()
	}
	return nil
}

// Election mirrors the elections table.
type Election struct {
	ElectionID  string    `gorm:"primaryKey"`
	Title       string    `gorm:"not null"`
	StartAt     time.Time `gorm:"not null"`
	EndAt       time.Time `gorm:"not null"`
	Status      string    `gorm:"not null"`
	Eligibility string    `gorm:"not null"`
}

func (Election) TableName() string { return "elections" }

// Candidate mirrors the candidates table. Position preserves ballot order.
type Candidate struct {
	ElectionID  string `gorm:"primaryKey"`
	CandidateID string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Manifesto   string `gorm:"not null"`
	Photo       string `gorm:"not null"`
	ColorIndex  int    `gorm:"not null"`
	Position    int    `gorm:"not null"`
}

func (Candidate) TableName() string { return "candidates" }

// Vote mirrors the append-only votes table. The unique index is the
// storage-level one-person-one-vote backstop.
type Vote struct {
	VoteID      string    `gorm:"primaryKey"`
	ElectionID  string    `gorm:"not null;uniqueIndex:uniq_votes_election_user,priority:1"`
	UserID      string    `gorm:"not null;uniqueIndex:uniq_votes_election_user,priority:2"`
	CandidateID string    `gorm:"not null;index:idx_votes_candidate"`
	VotedAt     time.Time `gorm:"not null"`
}

func (Vote) TableName() string { return "votes" }

func (vote *Vote) BeforeCreate(tx *gorm.DB) error {
	if vote.VoteID == "" {
		vote.VoteID = "v_" + uuid.NewString()
	}
	return nil
}
