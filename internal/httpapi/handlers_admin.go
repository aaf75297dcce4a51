package httpapi

import (
	"net/http"

	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"github.com/gin-gonic/gin"
)

func (server *Server) handleAdminStats(ctx *gin.Context) {
	requestCtx := ctx.Request.Context()

	users, err := server.store.CountUsers(requestCtx)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	events, err := server.store.ListEvents(requestCtx)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	var liveEvents int64
	for _, event := range events {
		if event.Status == campus.EventStatusLive {
			liveEvents++
		}
	}
	bets, err := server.store.CountBets(requestCtx)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	pendingBets, err := server.store.CountBetsByStatus(requestCtx, campus.BetStatusPending)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	stakedTokens, err := server.store.SumStakes(requestCtx)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	elections, err := server.store.ListElections(requestCtx)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	var activeElections int64
	for _, election := range elections {
		if election.Status == campus.ElectionStatusActive {
			activeElections++
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"stats": statsPayload{
		Users:           users,
		Events:          int64(len(events)),
		LiveEvents:      liveEvents,
		Bets:            bets,
		PendingBets:     pendingBets,
		StakedTokens:    stakedTokens,
		Elections:       int64(len(elections)),
		ActiveElections: activeElections,
	}})
}

func (server *Server) handleAdminListUsers(ctx *gin.Context) {
	users, err := server.store.ListUsers(ctx.Request.Context())
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	payloads := make([]userPayload, 0, len(users))
	for _, user := range users {
		payloads = append(payloads, mapUserPayload(user))
	}
	ctx.JSON(http.StatusOK, gin.H{"users": payloads})
}

// handleAdminUpdateEvent applies a partial update: absent fields keep
// their stored values.
func (server *Server) handleAdminUpdateEvent(ctx *gin.Context) {
	eventID, err := campus.NewEventID(ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	var request updateEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "malformed request body"))
		return
	}

	event, err := server.store.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if request.Status != "" {
		status, parseErr := campus.ParseEventStatus(request.Status)
		if parseErr != nil {
			respondDomainError(ctx, parseErr)
			return
		}
		event.Status = status
	}
	if request.Score != nil {
		event.Score = &campus.Score{Home: request.Score.Home, Away: request.Score.Away}
	}
	if request.Odds != nil {
		odds, oddsErr := campus.NewOdds(request.Odds.Home, request.Odds.Draw, request.Odds.Away)
		if oddsErr != nil {
			respondDomainError(ctx, oddsErr)
			return
		}
		event.Odds = odds
	}

	if err := server.store.UpsertEvent(ctx.Request.Context(), event); err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"event": mapEventPayload(event)})
}

func (server *Server) handleAdminCreateElection(ctx *gin.Context) {
	var request createElectionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "malformed request body"))
		return
	}

	electionID, err := campus.NewElectionID(request.ID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	status := campus.ElectionStatusUpcoming
	if request.Status != "" {
		status, err = campus.ParseElectionStatus(request.Status)
		if err != nil {
			respondDomainError(ctx, err)
			return
		}
	}
	if len(request.Candidates) == 0 {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "an election needs candidates"))
		return
	}

	candidates := make([]campus.Candidate, 0, len(request.Candidates))
	for _, entry := range request.Candidates {
		candidateID, candidateErr := campus.NewCandidateID(entry.ID)
		if candidateErr != nil {
			respondDomainError(ctx, candidateErr)
			return
		}
		candidates = append(candidates, campus.Candidate{
			ID:         candidateID,
			Name:       entry.Name,
			Manifesto:  entry.Manifesto,
			Photo:      entry.Photo,
			ColorIndex: entry.ColorIndex,
		})
	}

	election := campus.Election{
		ID:             electionID,
		Title:          request.Title,
		Candidates:     candidates,
		StartAtUnixUTC: request.StartAt,
		EndAtUnixUTC:   request.EndAt,
		Status:         status,
		Eligibility:    request.Eligibility,
	}
	if err := server.store.UpsertElection(ctx.Request.Context(), election); err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"election": mapElectionPayload(election, false)})
}

func (server *Server) handleAdminSetElectionStatus(ctx *gin.Context) {
	electionID, err := campus.NewElectionID(ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	var request setElectionStatusRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "malformed request body"))
		return
	}
	status, err := campus.ParseElectionStatus(request.Status)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if err := server.store.SetElectionStatus(ctx.Request.Context(), electionID, status); err != nil {
		respondDomainError(ctx, err)
		return
	}

	if server.tallies != nil {
		_ = server.tallies.Invalidate(ctx.Request.Context(), electionID.String())
	}

	ctx.JSON(http.StatusOK, gin.H{"status": status.String()})
}
