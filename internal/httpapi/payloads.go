package httpapi

import (
	"errors"
	"net/http"

	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"studentId"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type placeBetRequest struct {
	EventID        string         `json:"eventId"`
	Selection      string         `json:"selection"`
	Stake          int64          `json:"stake"`
	IdempotencyKey string         `json:"idempotencyKey"`
	Metadata       map[string]any `json:"metadata"`
}

type castVoteRequest struct {
	CandidateID string `json:"candidateId"`
}

type updateEventRequest struct {
	Status string        `json:"status"`
	Score  *scorePayload `json:"score"`
	Odds   *oddsPayload  `json:"odds"`
}

type createElectionRequest struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Candidates  []createCandidatePayload `json:"candidates"`
	StartAt     int64                    `json:"startAt"`
	EndAt       int64                    `json:"endAt"`
	Status      string                   `json:"status"`
	Eligibility string                   `json:"eligibility"`
}

type createCandidatePayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Manifesto  string `json:"manifesto"`
	Photo      string `json:"photo"`
	ColorIndex int    `json:"colorIndex"`
}

type setElectionStatusRequest struct {
	Status string `json:"status"`
}

type userPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"studentId"`
	Role      string `json:"role"`
	Balance   int64  `json:"balance"`
	Age       int    `json:"age"`
	Verified  bool   `json:"verified"`
	CreatedAt int64  `json:"createdAt"`
}

type oddsPayload struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

type scorePayload struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type eventPayload struct {
	ID         string        `json:"id"`
	Tournament string        `json:"tournament"`
	HomeTeam   string        `json:"homeTeam"`
	AwayTeam   string        `json:"awayTeam"`
	StartAt    int64         `json:"startAt"`
	Status     string        `json:"status"`
	Odds       oddsPayload   `json:"odds"`
	Score      *scorePayload `json:"score,omitempty"`
}

type betPayload struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	MatchID   string `json:"matchId"`
	Selection string `json:"selection"`
	Stake     int64  `json:"stake"`
	Payout    int64  `json:"payout"`
	Status    string `json:"status"`
	PlacedAt  int64  `json:"placedAt"`
}

type betSummaryPayload struct {
	TotalBets      int64   `json:"totalBets"`
	PendingBets    int64   `json:"pendingBets"`
	WonBets        int64   `json:"wonBets"`
	TotalStaked    int64   `json:"totalStaked"`
	WinRatePercent float64 `json:"winRatePercent"`
}

type candidatePayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Manifesto  string `json:"manifesto"`
	Photo      string `json:"photo"`
	ColorIndex int    `json:"colorIndex"`
}

type electionPayload struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Candidates  []candidatePayload `json:"candidates"`
	StartAt     int64              `json:"startAt"`
	EndAt       int64              `json:"endAt"`
	Status      string             `json:"status"`
	Eligibility string             `json:"eligibility"`
	Voted       bool               `json:"voted"`
}

type tallyLinePayload struct {
	CandidateID string  `json:"candidateId"`
	Name        string  `json:"name"`
	Count       int64   `json:"count"`
	Percentage  float64 `json:"percentage"`
}

type tallyPayload struct {
	ElectionID string             `json:"electionId"`
	TotalVotes int64              `json:"totalVotes"`
	Results    []tallyLinePayload `json:"results"`
}

type statsPayload struct {
	Users           int64 `json:"users"`
	Events          int64 `json:"events"`
	LiveEvents      int64 `json:"liveEvents"`
	Bets            int64 `json:"bets"`
	PendingBets     int64 `json:"pendingBets"`
	StakedTokens    int64 `json:"stakedTokens"`
	Elections       int64 `json:"elections"`
	ActiveElections int64 `json:"activeElections"`
}

func mapUserPayload(user campus.User) userPayload {
	return userPayload{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email.String(),
		StudentID: user.StudentID,
		Role:      user.Role.String(),
		Balance:   user.Balance,
		Age:       user.Age,
		Verified:  user.Verified,
		CreatedAt: user.CreatedUnixUTC,
	}
}

func mapEventPayload(event campus.Event) eventPayload {
	payload := eventPayload{
		ID:         event.ID.String(),
		Tournament: event.Tournament,
		HomeTeam:   event.HomeTeam,
		AwayTeam:   event.AwayTeam,
		StartAt:    event.StartAtUnixUTC,
		Status:     event.Status.String(),
		Odds:       oddsPayload{Home: event.Odds.Home, Draw: event.Odds.Draw, Away: event.Odds.Away},
	}
	if event.Score != nil {
		payload.Score = &scorePayload{Home: event.Score.Home, Away: event.Score.Away}
	}
	return payload
}

func mapBetPayload(bet campus.Bet) betPayload {
	return betPayload{
		ID:        bet.ID.String(),
		UserID:    bet.UserID.String(),
		MatchID:   bet.MatchID.String(),
		Selection: bet.Selection.String(),
		Stake:     bet.Stake.Int64(),
		Payout:    bet.Payout,
		Status:    bet.Status.String(),
		PlacedAt:  bet.PlacedUnixUTC,
	}
}

func mapElectionPayload(election campus.Election, voted bool) electionPayload {
	candidates := make([]candidatePayload, 0, len(election.Candidates))
	for _, candidate := range election.Candidates {
		candidates = append(candidates, candidatePayload{
			ID:         candidate.ID.String(),
			Name:       candidate.Name,
			Manifesto:  candidate.Manifesto,
			Photo:      candidate.Photo,
			ColorIndex: candidate.ColorIndex,
		})
	}
	return electionPayload{
		ID:          election.ID.String(),
		Title:       election.Title,
		Candidates:  candidates,
		StartAt:     election.StartAtUnixUTC,
		EndAt:       election.EndAtUnixUTC,
		Status:      election.Status.String(),
		Eligibility: election.Eligibility,
		Voted:       voted,
	}
}

func mapTallyPayload(tally campus.Tally) tallyPayload {
	results := make([]tallyLinePayload, 0, len(tally.Lines))
	for _, line := range tally.Lines {
		results = append(results, tallyLinePayload{
			CandidateID: line.CandidateID.String(),
			Name:        line.Name,
			Count:       line.Count,
			Percentage:  line.Percentage,
		})
	}
	return tallyPayload{
		ElectionID: tally.ElectionID.String(),
		TotalVotes: tally.TotalVotes,
		Results:    results,
	}
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// respondDomainError maps the domain taxonomy onto HTTP statuses. Every
// domain failure is recoverable at this boundary; nothing is fatal.
func respondDomainError(ctx *gin.Context, err error) {
	status, code := statusForError(err)
	ctx.JSON(status, errorResponse(code, err.Error()))
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, campus.ErrInsufficientBalance):
		return http.StatusConflict, "insufficient_balance"
	case errors.Is(err, campus.ErrEventClosed):
		return http.StatusConflict, "event_closed"
	case errors.Is(err, campus.ErrAlreadyVoted):
		return http.StatusConflict, "already_voted"
	case errors.Is(err, campus.ErrElectionNotActive):
		return http.StatusConflict, "election_not_active"
	case errors.Is(err, campus.ErrDuplicateIdempotencyKey):
		return http.StatusConflict, "duplicate_request"
	case errors.Is(err, campus.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, campus.ErrUnknownUser),
		errors.Is(err, campus.ErrUnknownEvent),
		errors.Is(err, campus.ErrUnknownElection),
		errors.Is(err, campus.ErrUnknownCandidate):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, campus.ErrInvalidStake),
		errors.Is(err, campus.ErrInvalidSelection),
		errors.Is(err, campus.ErrInvalidEmail),
		errors.Is(err, campus.ErrInvalidName),
		errors.Is(err, campus.ErrInvalidOdds),
		errors.Is(err, campus.ErrInvalidUserID),
		errors.Is(err, campus.ErrInvalidEventID),
		errors.Is(err, campus.ErrInvalidElectionID),
		errors.Is(err, campus.ErrInvalidCandidateID),
		errors.Is(err, campus.ErrInvalidIdempotencyKey),
		errors.Is(err, campus.ErrInvalidMetadataJSON),
		errors.Is(err, campus.ErrInvalidEventStatus),
		errors.Is(err, campus.ErrInvalidElectionStatus):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
