package campus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// VotingService validates and records one ballot per (user, election).
type VotingService struct {
	store  Store
	nowFn  func() int64
	idFn   func() string
	logger OperationLogger
}

// VotingOption configures a VotingService instance.
type VotingOption func(*VotingService)

// WithVotingOperationLogger wires a logger receiving every operation.
func WithVotingOperationLogger(logger OperationLogger) VotingOption {
	return func(service *VotingService) {
		service.logger = logger
	}
}

// WithVotingIDGenerator overrides vote id generation (tests).
func WithVotingIDGenerator(idFn func() string) VotingOption {
	return func(service *VotingService) {
		service.idFn = idFn
	}
}

// NewVotingService wires a VotingService.
func NewVotingService(store Store, now func() int64, options ...VotingOption) (*VotingService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &VotingService{store: store, nowFn: now, idFn: uuid.NewString}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// CastVote appends a ballot after checking the election is active, the
// candidate runs in it, and the user has not voted yet. The vote-once rule
// is also a storage-level unique constraint, so a concurrent duplicate
// surfaces as ErrAlreadyVoted instead of a second ballot.
func (service *VotingService) CastVote(ctx context.Context, userID UserID, electionID ElectionID, candidateID CandidateID) (Vote, error) {
	var cast Vote
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		user, err := transactionStore.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		election, err := transactionStore.GetElection(ctx, electionID)
		if err != nil {
			return err
		}
		if election.Status != ElectionStatusActive {
			return ErrElectionNotActive
		}
		if _, runs := election.Candidate(candidateID); !runs {
			return ErrUnknownCandidate
		}
		voted, err := transactionStore.HasVote(ctx, election.ID, user.ID)
		if err != nil {
			return err
		}
		if voted {
			return ErrAlreadyVoted
		}
		voteID, err := NewVoteID(voteIDPrefix + service.idFn())
		if err != nil {
			return err
		}
		vote := Vote{
			ID:           voteID,
			ElectionID:   election.ID,
			UserID:       user.ID,
			CandidateID:  candidateID,
			VotedUnixUTC: service.nowFn(),
		}
		if err := transactionStore.InsertVote(ctx, vote); err != nil {
			return err
		}
		cast = vote
		return nil
	})
	emitOperation(ctx, service.logger, OperationLog{
		Operation: operationCastVote,
		UserID:    userID,
		SubjectID: electionID.String(),
		Error:     operationError,
	})
	if operationError != nil {
		return Vote{}, operationError
	}
	return cast, nil
}

// Tally counts ballots per candidate. Percentages are count over total
// as a percentage, all zero when nobody has voted yet.
func (service *VotingService) Tally(ctx context.Context, electionID ElectionID) (Tally, error) {
	election, err := service.store.GetElection(ctx, electionID)
	if err != nil {
		return Tally{}, err
	}
	counts, err := service.store.CountVotesByCandidate(ctx, election.ID)
	if err != nil {
		return Tally{}, err
	}
	tally := Tally{ElectionID: election.ID, Lines: make([]TallyLine, 0, len(election.Candidates))}
	for _, count := range counts {
		tally.TotalVotes += count
	}
	for _, candidate := range election.Candidates {
		line := TallyLine{
			CandidateID: candidate.ID,
			Name:        candidate.Name,
			Count:       counts[candidate.ID.String()],
		}
		if tally.TotalVotes > 0 {
			line.Percentage = float64(line.Count) / float64(tally.TotalVotes) * 100
		}
		tally.Lines = append(tally.Lines, line)
	}
	return tally, nil
}

// HasVoted reports whether the user already holds a ballot in the election.
func (service *VotingService) HasVoted(ctx context.Context, userID UserID, electionID ElectionID) (bool, error) {
	return service.store.HasVote(ctx, electionID, userID)
}

// Elections lists every election.
func (service *VotingService) Elections(ctx context.Context) ([]Election, error) {
	return service.store.ListElections(ctx)
}

// Election returns a single election with its candidates.
func (service *VotingService) Election(ctx context.Context, electionID ElectionID) (Election, error) {
	return service.store.GetElection(ctx, electionID)
}
