package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/fitmatlabs/campus-arena/pkg/campus"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultMetadataJSON   = "{}"
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19
	errorOperationStore   = "store"
	errorSubjectUser      = "user"
	errorSubjectEvent     = "event"
	errorSubjectBet       = "bet"
	errorSubjectElection  = "election"
	errorSubjectVote      = "vote"
	errorCodeCreate       = "create"
	errorCodeCount        = "count"
	errorCodeDebit        = "debit"
	errorCodeDuplicate    = "duplicate"
	errorCodeGet          = "get"
	errorCodeInsert       = "insert"
	errorCodeInvalid      = "invalid"
	errorCodeList         = "list"
	errorCodeSum          = "sum"
	errorCodeTally        = "tally"
	errorCodeUpdateStatus = "update_status"
	errorCodeUpsert       = "upsert"
)

// Store implements campus.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema.
func (store *Store) Migrate() error {
	return store.db.AutoMigrate(&User{}, &Event{}, &Bet{}, &Election{}, &Candidate{}, &Vote{})
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore campus.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) GetUser(ctx context.Context, userID campus.UserID) (campus.User, error) {
	var model User
	err := store.db.WithContext(ctx).Where("user_id = ?", userID.String()).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return campus.User{}, wrapStoreError(errorSubjectUser, errorCodeGet, campus.ErrUnknownUser)
		}
		return campus.User{}, wrapStoreError(errorSubjectUser, errorCodeGet, err)
	}
	return mapUser(model)
}

func (store *Store) GetUserByEmail(ctx context.Context, email campus.Email) (campus.User, error) {
	var model User
	err := store.db.WithContext(ctx).Where("email = ?", email.String()).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return campus.User{}, wrapStoreError(errorSubjectUser, errorCodeGet, campus.ErrUnknownUser)
		}
		return campus.User{}, wrapStoreError(errorSubjectUser, errorCodeGet, err)
	}
	return mapUser(model)
}

func (store *Store) CreateUser(ctx context.Context, user campus.User) error {
	model := User{
		UserID:    user.ID.String(),
		Name:      user.Name,
		Email:     user.Email.String(),
		StudentID: user.StudentID,
		Role:      user.Role.String(),
		Balance:   user.Balance,
		Age:       user.Age,
		Verified:  user.Verified,
		CreatedAt: time.Unix(user.CreatedUnixUTC, 0).UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectUser, errorCodeDuplicate, campus.ErrEmailTaken)
	}
	if err != nil {
		return wrapStoreError(errorSubjectUser, errorCodeCreate, err)
	}
	return nil
}

// DebitBalance is a guarded decrement: the update only lands while the
// balance still covers the stake, so interleaved debits cannot overdraw.
func (store *Store) DebitBalance(ctx context.Context, userID campus.UserID, stake campus.Stake) error {
	result := store.db.WithContext(ctx).
		Model(&User{}).
		Where("user_id = ? AND balance >= ?", userID.String(), stake.Int64()).
		Update("balance", gorm.Expr("balance - ?", stake.Int64()))
	if result.Error != nil {
		return wrapStoreError(errorSubjectUser, errorCodeDebit, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectUser, errorCodeDebit, campus.ErrInsufficientBalance)
	}
	return nil
}

func (store *Store) ListUsers(ctx context.Context) ([]campus.User, error) {
	var rows []User
	err := store.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectUser, errorCodeList, err)
	}
	users := make([]campus.User, 0, len(rows))
	for _, row := range rows {
		user, err := mapUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (store *Store) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := store.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return 0, wrapStoreError(errorSubjectUser, errorCodeCount, err)
	}
	return total, nil
}

func (store *Store) GetEvent(ctx context.Context, eventID campus.EventID) (campus.Event, error) {
	var model Event
	err := store.db.WithContext(ctx).Where("event_id = ?", eventID.String()).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return campus.Event{}, wrapStoreError(errorSubjectEvent, errorCodeGet, campus.ErrUnknownEvent)
		}
		return campus.Event{}, wrapStoreError(errorSubjectEvent, errorCodeGet, err)
	}
	return mapEvent(model)
}

func (store *Store) ListEvents(ctx context.Context) ([]campus.Event, error) {
	var rows []Event
	err := store.db.WithContext(ctx).Order("start_at ASC").Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectEvent, errorCodeList, err)
	}
	events := make([]campus.Event, 0, len(rows))
	for _, row := range rows {
		event, err := mapEvent(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (store *Store) UpsertEvent(ctx context.Context, event campus.Event) error {
	model := eventModel(event)
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error
	if err != nil {
		return wrapStoreError(errorSubjectEvent, errorCodeUpsert, err)
	}
	return nil
}

func (store *Store) InsertBet(ctx context.Context, bet campus.Bet) error {
	model := Bet{
		BetID:          bet.ID.String(),
		UserID:         bet.UserID.String(),
		MatchID:        bet.MatchID.String(),
		Selection:      bet.Selection.String(),
		Stake:          bet.Stake.Int64(),
		Payout:         bet.Payout,
		Status:         bet.Status.String(),
		IdempotencyKey: bet.IdempotencyKey.String(),
		Metadata:       datatypesJSON(bet.Metadata.String()),
		PlacedAt:       time.Unix(bet.PlacedUnixUTC, 0).UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectBet, errorCodeDuplicate, campus.ErrDuplicateIdempotencyKey)
	}
	if err != nil {
		return wrapStoreError(errorSubjectBet, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) ListBetsByUser(ctx context.Context, userID campus.UserID) ([]campus.Bet, error) {
	var rows []Bet
	err := store.db.WithContext(ctx).
		Where("user_id = ?", userID.String()).
		Order("placed_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectBet, errorCodeList, err)
	}
	bets := make([]campus.Bet, 0, len(rows))
	for _, row := range rows {
		bet, err := mapBet(row)
		if err != nil {
			return nil, err
		}
		bets = append(bets, bet)
	}
	return bets, nil
}

func (store *Store) CountBets(ctx context.Context) (int64, error) {
	var total int64
	if err := store.db.WithContext(ctx).Model(&Bet{}).Count(&total).Error; err != nil {
		return 0, wrapStoreError(errorSubjectBet, errorCodeCount, err)
	}
	return total, nil
}

func (store *Store) CountBetsByStatus(ctx context.Context, status campus.BetStatus) (int64, error) {
	var total int64
	err := store.db.WithContext(ctx).
		Model(&Bet{}).
		Where("status = ?", status.String()).
		Count(&total).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectBet, errorCodeCount, err)
	}
	return total, nil
}

func (store *Store) SumStakes(ctx context.Context) (int64, error) {
	var sum sqlSum
	err := store.db.WithContext(ctx).
		Model(&Bet{}).
		Select("coalesce(sum(stake),0) as total").
		Scan(&sum).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectBet, errorCodeSum, err)
	}
	return sum.Total, nil
}

func (store *Store) GetElection(ctx context.Context, electionID campus.ElectionID) (campus.Election, error) {
	var model Election
	err := store.db.WithContext(ctx).Where("election_id = ?", electionID.String()).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return campus.Election{}, wrapStoreError(errorSubjectElection, errorCodeGet, campus.ErrUnknownElection)
		}
		return campus.Election{}, wrapStoreError(errorSubjectElection, errorCodeGet, err)
	}
	var candidateRows []Candidate
	err = store.db.WithContext(ctx).
		Where("election_id = ?", model.ElectionID).
		Order("position ASC").
		Find(&candidateRows).Error
	if err != nil {
		return campus.Election{}, wrapStoreError(errorSubjectElection, errorCodeGet, err)
	}
	return mapElection(model, candidateRows)
}

func (store *Store) ListElections(ctx context.Context) ([]campus.Election, error) {
	var rows []Election
	err := store.db.WithContext(ctx).Order("start_at ASC").Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectElection, errorCodeList, err)
	}
	elections := make([]campus.Election, 0, len(rows))
	for _, row := range rows {
		var candidateRows []Candidate
		err = store.db.WithContext(ctx).
			Where("election_id = ?", row.ElectionID).
			Order("position ASC").
			Find(&candidateRows).Error
		if err != nil {
			return nil, wrapStoreError(errorSubjectElection, errorCodeList, err)
		}
		election, err := mapElection(row, candidateRows)
		if err != nil {
			return nil, err
		}
		elections = append(elections, election)
	}
	return elections, nil
}

func (store *Store) UpsertElection(ctx context.Context, election campus.Election) error {
	model, candidateRows := electionModel(election)
	err := store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		if err := transaction.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
			return err
		}
		if err := transaction.Where("election_id = ?", model.ElectionID).Delete(&Candidate{}).Error; err != nil {
			return err
		}
		if len(candidateRows) == 0 {
			return nil
		}
		return transaction.Create(&candidateRows).Error
	})
	if err != nil {
		return wrapStoreError(errorSubjectElection, errorCodeUpsert, err)
	}
	return nil
}

func (store *Store) SetElectionStatus(ctx context.Context, electionID campus.ElectionID, status campus.ElectionStatus) error {
	result := store.db.WithContext(ctx).
		Model(&Election{}).
		Where("election_id = ?", electionID.String()).
		Update("status", status.String())
	if result.Error != nil {
		return wrapStoreError(errorSubjectElection, errorCodeUpdateStatus, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectElection, errorCodeUpdateStatus, campus.ErrUnknownElection)
	}
	return nil
}

func (store *Store) HasVote(ctx context.Context, electionID campus.ElectionID, userID campus.UserID) (bool, error) {
	var total int64
	err := store.db.WithContext(ctx).
		Model(&Vote{}).
		Where("election_id = ? AND user_id = ?", electionID.String(), userID.String()).
		Count(&total).Error
	if err != nil {
		return false, wrapStoreError(errorSubjectVote, errorCodeGet, err)
	}
	return total > 0, nil
}

func (store *Store) InsertVote(ctx context.Context, vote campus.Vote) error {
	model := Vote{
		VoteID:      vote.ID.String(),
		ElectionID:  vote.ElectionID.String(),
		UserID:      vote.UserID.String(),
		CandidateID: vote.CandidateID.String(),
		VotedAt:     time.Unix(vote.VotedUnixUTC, 0).UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectVote, errorCodeDuplicate, campus.ErrAlreadyVoted)
	}
	if err != nil {
		return wrapStoreError(errorSubjectVote, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) CountVotesByCandidate(ctx context.Context, electionID campus.ElectionID) (map[string]int64, error) {
	var rows []candidateCount
	err := store.db.WithContext(ctx).
		Model(&Vote{}).
		Select("candidate_id, count(*) as total").
		Where("election_id = ?", electionID.String()).
		Group("candidate_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectVote, errorCodeTally, err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CandidateID] = row.Total
	}
	return counts, nil
}

func wrapStoreError(subject string, code string, err error) error {
	return campus.WrapError(errorOperationStore, subject, code, err)
}

type sqlSum struct {
	Total int64
}

type candidateCount struct {
	CandidateID string
	Total       int64
}

func mapUser(model User) (campus.User, error) {
	userID, err := campus.NewUserID(model.UserID)
	if err != nil {
		return campus.User{}, wrapStoreError(errorSubjectUser, errorCodeInvalid, err)
	}
	email, err := campus.NewEmail(model.Email)
	if err != nil {
		return campus.User{}, wrapStoreError(errorSubjectUser, errorCodeInvalid, err)
	}
	role, err := campus.ParseRole(model.Role)
	if err != nil {
		return campus.User{}, wrapStoreError(errorSubjectUser, errorCodeInvalid, err)
	}
	return campus.User{
		ID:             userID,
		Name:           model.Name,
		Email:          email,
		StudentID:      model.StudentID,
		Role:           role,
		Balance:        model.Balance,
		Age:            model.Age,
		Verified:       model.Verified,
		CreatedUnixUTC: model.CreatedAt.Unix(),
	}, nil
}

func mapEvent(model Event) (campus.Event, error) {
	eventID, err := campus.NewEventID(model.EventID)
	if err != nil {
		return campus.Event{}, wrapStoreError(errorSubjectEvent, errorCodeInvalid, err)
	}
	status, err := campus.ParseEventStatus(model.Status)
	if err != nil {
		return campus.Event{}, wrapStoreError(errorSubjectEvent, errorCodeInvalid, err)
	}
	odds, err := campus.NewOdds(model.OddsHome, model.OddsDraw, model.OddsAway)
	if err != nil {
		return campus.Event{}, wrapStoreError(errorSubjectEvent, errorCodeInvalid, err)
	}
	var score *campus.Score
	if model.ScoreHome != nil && model.ScoreAway != nil {
		score = &campus.Score{Home: *model.ScoreHome, Away: *model.ScoreAway}
	}
	return campus.Event{
		ID:             eventID,
		Tournament:     model.Tournament,
		HomeTeam:       model.HomeTeam,
		AwayTeam:       model.AwayTeam,
		StartAtUnixUTC: model.StartAt.Unix(),
		Status:         status,
		Odds:           odds,
		Score:          score,
	}, nil
}

func eventModel(event campus.Event) Event {
	model := Event{
		EventID:    event.ID.String(),
		Tournament: event.Tournament,
		HomeTeam:   event.HomeTeam,
		AwayTeam:   event.AwayTeam,
		StartAt:    time.Unix(event.StartAtUnixUTC, 0).UTC(),
		Status:     event.Status.String(),
		OddsHome:   event.Odds.Home,
		OddsDraw:   event.Odds.Draw,
		OddsAway:   event.Odds.Away,
	}
	if event.Score != nil {
		home := event.Score.Home
		away := event.Score.Away
		model.ScoreHome = &home
		model.ScoreAway = &away
	}
	return model
}

func mapBet(model Bet) (campus.Bet, error) {
	betID, err := campus.NewBetID(model.BetID)
	if err != nil {
		return campus.Bet{}, wrapStoreError(errorSubjectBet, errorCodeInvalid, err)
	}
	userID, err := campus.NewUserID(model.UserID)
	if err != nil {
		return campus.Bet{}, wrapStoreError(errorSubjectBet, errorCodeInvalid, err)
	}
	matchID, err := campus.NewEventID(model.MatchID)
	if err != nil {
		return campus.Bet{}, wrapStoreError(errorSubjectBet, errorCodeInvalid, err)
	}
	selection, err := campus.ParseSelection(model.Selection)
	if err != nil {
		return campus.Bet{}, wrapStoreError(errorSubjectBet, errorCodeInvalid, err)
	}
	stake, err := campus.NewStake(model.Stake)
	if err != nil {
		return campus.Bet{}, wrapStoreError(errorSubjectBet, errorCodeInvalid, err)
	}
	status, err := campus.ParseBetStatus(model.Status)
	if err != nil {
		return campus.Bet{}, wrapStoreError(errorSubjectBet, errorCodeInvalid, err)
	}
	idempotencyKey, err := campus.NewIdempotencyKey(model.IdempotencyKey)
	if err != nil {
		return campus.Bet{}, wrapStoreError(errorSubjectBet, errorCodeInvalid, err)
	}
	metadata, err := campus.NewMetadataJSON(string(model.Metadata))
	if err != nil {
		return campus.Bet{}, wrapStoreError(errorSubjectBet, errorCodeInvalid, err)
	}
	return campus.Bet{
		ID:             betID,
		UserID:         userID,
		MatchID:        matchID,
		Selection:      selection,
		Stake:          stake,
		Payout:         model.Payout,
		Status:         status,
		IdempotencyKey: idempotencyKey,
		Metadata:       metadata,
		PlacedUnixUTC:  model.PlacedAt.Unix(),
	}, nil
}

func mapElection(model Election, candidateRows []Candidate) (campus.Election, error) {
	electionID, err := campus.NewElectionID(model.ElectionID)
	if err != nil {
		return campus.Election{}, wrapStoreError(errorSubjectElection, errorCodeInvalid, err)
	}
	status, err := campus.ParseElectionStatus(model.Status)
	if err != nil {
		return campus.Election{}, wrapStoreError(errorSubjectElection, errorCodeInvalid, err)
	}
	candidates := make([]campus.Candidate, 0, len(candidateRows))
	for _, row := range candidateRows {
		candidateID, err := campus.NewCandidateID(row.CandidateID)
		if err != nil {
			return campus.Election{}, wrapStoreError(errorSubjectElection, errorCodeInvalid, err)
		}
		candidates = append(candidates, campus.Candidate{
			ID:         candidateID,
			Name:       row.Name,
			Manifesto:  row.Manifesto,
			Photo:      row.Photo,
			ColorIndex: row.ColorIndex,
		})
	}
	return campus.Election{
		ID:             electionID,
		Title:          model.Title,
		Candidates:     candidates,
		StartAtUnixUTC: model.StartAt.Unix(),
		EndAtUnixUTC:   model.EndAt.Unix(),
		Status:         status,
		Eligibility:    model.Eligibility,
	}, nil
}

func electionModel(election campus.Election) (Election, []Candidate) {
	model := Election{
		ElectionID:  election.ID.String(),
		Title:       election.Title,
		StartAt:     time.Unix(election.StartAtUnixUTC, 0).UTC(),
		EndAt:       time.Unix(election.EndAtUnixUTC, 0).UTC(),
		Status:      election.Status.String(),
		Eligibility: election.Eligibility,
	}
	candidateRows := make([]Candidate, 0, len(election.Candidates))
	for position, candidate := range election.Candidates {
		candidateRows = append(candidateRows, Candidate{
			ElectionID:  model.ElectionID,
			CandidateID: candidate.ID.String(),
			Name:        candidate.Name,
			Manifesto:   candidate.Manifesto,
			Photo:       candidate.Photo,
			ColorIndex:  candidate.ColorIndex,
			Position:    position,
		})
	}
	return model, candidateRows
}

func datatypesJSON(raw string) datatypes.JSON {
	if raw == "" {
		return datatypes.JSON([]byte(defaultMetadataJSON))
	}
	return datatypes.JSON([]byte(raw))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
