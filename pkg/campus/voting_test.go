package campus

import (
	"context"
	"errors"
	"testing"
)

const stubElectionIDValue = "e_001"

func newTestVotingService(test *testing.T, store *stubStore) *VotingService {
	test.Helper()
	service, err := NewVotingService(store, func() int64 { return 42 },
		WithVotingIDGenerator(func() string { return "fixed" }),
	)
	if err != nil {
		test.Fatalf("service init failed: %v", err)
	}
	return service
}

func TestCastVoteRecordsBallot(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	user := seedStubUser(test, store, stubUserIDValue, stubUserEmailValue, 1500)
	seedStubElection(test, store, stubElectionIDValue, ElectionStatusActive, "c1", "c2", "c3")
	service := newTestVotingService(test, store)

	vote, err := service.CastVote(context.Background(), user.ID, mustElectionID(test, stubElectionIDValue), mustCandidateID(test, "c2"))
	if err != nil {
		test.Fatalf("cast vote failed: %v", err)
	}
	if vote.ID.String() != "v_fixed" {
		test.Fatalf("expected vote id v_fixed, got %q", vote.ID.String())
	}
	if vote.CandidateID.String() != "c2" {
		test.Fatalf("expected candidate c2, got %q", vote.CandidateID.String())
	}
	if vote.VotedUnixUTC != 42 {
		test.Fatalf("expected vote time 42, got %d", vote.VotedUnixUTC)
	}
	if len(store.votes) != 1 {
		test.Fatalf("expected one stored vote, got %d", len(store.votes))
	}
}

func TestCastVoteRejectsSecondBallot(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	user := seedStubUser(test, store, stubUserIDValue, stubUserEmailValue, 1500)
	seedStubElection(test, store, stubElectionIDValue, ElectionStatusActive, "c1", "c2")
	service := newTestVotingService(test, store)

	electionID := mustElectionID(test, stubElectionIDValue)
	if _, err := service.CastVote(context.Background(), user.ID, electionID, mustCandidateID(test, "c1")); err != nil {
		test.Fatalf("first vote failed: %v", err)
	}
	_, err := service.CastVote(context.Background(), user.ID, electionID, mustCandidateID(test, "c2"))
	if !errors.Is(err, ErrAlreadyVoted) {
		test.Fatalf(errorMismatchFmt, ErrAlreadyVoted, err)
	}
	if len(store.votes) != 1 {
		test.Fatalf("expected one stored vote, got %d", len(store.votes))
	}
}

func TestCastVoteRejectsInactiveElection(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name   string
		status ElectionStatus
	}{
		{name: "closed", status: ElectionStatusClosed},
		{name: "upcoming", status: ElectionStatusUpcoming},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			user := seedStubUser(test, store, stubUserIDValue, stubUserEmailValue, 1500)
			seedStubElection(test, store, stubElectionIDValue, testCase.status, "c1")
			service := newTestVotingService(test, store)

			_, err := service.CastVote(context.Background(), user.ID, mustElectionID(test, stubElectionIDValue), mustCandidateID(test, "c1"))
			if !errors.Is(err, ErrElectionNotActive) {
				test.Fatalf(errorMismatchFmt, ErrElectionNotActive, err)
			}
		})
	}
}

func TestCastVoteRejectsUnknownCandidate(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	user := seedStubUser(test, store, stubUserIDValue, stubUserEmailValue, 1500)
	seedStubElection(test, store, stubElectionIDValue, ElectionStatusActive, "c1", "c2")
	service := newTestVotingService(test, store)

	_, err := service.CastVote(context.Background(), user.ID, mustElectionID(test, stubElectionIDValue), mustCandidateID(test, "c9"))
	if !errors.Is(err, ErrUnknownCandidate) {
		test.Fatalf(errorMismatchFmt, ErrUnknownCandidate, err)
	}
}

func TestCastVoteReturnsStoreErrors(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name      string
		configure func(store *stubStore)
		wantErr   error
	}{
		{
			name:      "user lookup error",
			configure: func(store *stubStore) { store.getUserError = errStoreFailure },
			wantErr:   errStoreFailure,
		},
		{
			name:      "election lookup error",
			configure: func(store *stubStore) { store.getElectionError = errStoreFailure },
			wantErr:   errStoreFailure,
		},
		{
			name:      "ballot check error",
			configure: func(store *stubStore) { store.hasVoteError = errStoreFailure },
			wantErr:   errStoreFailure,
		},
		{
			name:      "insert vote error",
			configure: func(store *stubStore) { store.insertVoteError = errStoreFailure },
			wantErr:   errStoreFailure,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			seedStubUser(test, store, stubUserIDValue, stubUserEmailValue, 1500)
			seedStubElection(test, store, stubElectionIDValue, ElectionStatusActive, "c1")
			testCase.configure(store)
			service := newTestVotingService(test, store)

			_, err := service.CastVote(context.Background(), mustUserID(test, stubUserIDValue), mustElectionID(test, stubElectionIDValue), mustCandidateID(test, "c1"))
			if !errors.Is(err, testCase.wantErr) {
				test.Fatalf(errorMismatchFmt, testCase.wantErr, err)
			}
		})
	}
}

func TestTallyCountsInCandidateOrder(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	election := seedStubElection(test, store, stubElectionIDValue, ElectionStatusActive, "c1", "c2", "c3")
	store.votes = []Vote{
		{ElectionID: election.ID, UserID: mustUserID(test, "u_a"), CandidateID: mustCandidateID(test, "c1")},
		{ElectionID: election.ID, UserID: mustUserID(test, "u_b"), CandidateID: mustCandidateID(test, "c1")},
		{ElectionID: election.ID, UserID: mustUserID(test, "u_c"), CandidateID: mustCandidateID(test, "c3")},
		{ElectionID: election.ID, UserID: mustUserID(test, "u_d"), CandidateID: mustCandidateID(test, "c1")},
	}
	service := newTestVotingService(test, store)

	tally, err := service.Tally(context.Background(), election.ID)
	if err != nil {
		test.Fatalf("tally failed: %v", err)
	}
	if tally.TotalVotes != 4 {
		test.Fatalf("expected 4 votes, got %d", tally.TotalVotes)
	}
	if len(tally.Lines) != 3 {
		test.Fatalf("expected three lines, got %d", len(tally.Lines))
	}
	if tally.Lines[0].CandidateID.String() != "c1" || tally.Lines[0].Count != 3 {
		test.Fatalf("unexpected first line: %+v", tally.Lines[0])
	}
	if tally.Lines[0].Percentage != 75 {
		test.Fatalf("expected 75 percent for c1, got %v", tally.Lines[0].Percentage)
	}
	if tally.Lines[1].Count != 0 || tally.Lines[1].Percentage != 0 {
		test.Fatalf("expected zero line for c2, got %+v", tally.Lines[1])
	}
	if tally.Lines[2].Count != 1 || tally.Lines[2].Percentage != 25 {
		test.Fatalf("unexpected third line: %+v", tally.Lines[2])
	}
}

func TestTallyEmptyElection(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	election := seedStubElection(test, store, stubElectionIDValue, ElectionStatusActive, "c1", "c2")
	service := newTestVotingService(test, store)

	tally, err := service.Tally(context.Background(), election.ID)
	if err != nil {
		test.Fatalf("tally failed: %v", err)
	}
	if tally.TotalVotes != 0 {
		test.Fatalf("expected zero votes, got %d", tally.TotalVotes)
	}
	for _, line := range tally.Lines {
		if line.Count != 0 || line.Percentage != 0 {
			test.Fatalf("expected zeroed line, got %+v", line)
		}
	}
}

func TestHasVoted(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	user := seedStubUser(test, store, stubUserIDValue, stubUserEmailValue, 1500)
	election := seedStubElection(test, store, stubElectionIDValue, ElectionStatusActive, "c1")
	store.votes = []Vote{{ElectionID: election.ID, UserID: user.ID, CandidateID: mustCandidateID(test, "c1")}}
	service := newTestVotingService(test, store)

	voted, err := service.HasVoted(context.Background(), user.ID, election.ID)
	if err != nil {
		test.Fatalf("has voted failed: %v", err)
	}
	if !voted {
		test.Fatalf("expected voted=true")
	}
	other, err := service.HasVoted(context.Background(), mustUserID(test, "u_other"), election.ID)
	if err != nil {
		test.Fatalf("has voted failed: %v", err)
	}
	if other {
		test.Fatalf("expected voted=false for another user")
	}
}
