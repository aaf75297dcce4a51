package httpapi

import (
	"net/http"

	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (server *Server) handleListElections(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		return
	}
	elections, err := server.voting.Elections(ctx.Request.Context())
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	payloads := make([]electionPayload, 0, len(elections))
	for _, election := range elections {
		voted, votedErr := server.voting.HasVoted(ctx.Request.Context(), userID, election.ID)
		if votedErr != nil {
			respondDomainError(ctx, votedErr)
			return
		}
		payloads = append(payloads, mapElectionPayload(election, voted))
	}
	ctx.JSON(http.StatusOK, gin.H{"elections": payloads})
}

func (server *Server) handleCastVote(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		return
	}

	electionID, err := campus.NewElectionID(ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	var request castVoteRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "malformed request body"))
		return
	}
	candidateID, err := campus.NewCandidateID(request.CandidateID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	vote, err := server.voting.CastVote(ctx.Request.Context(), userID, electionID, candidateID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if server.tallies != nil {
		if err := server.tallies.Invalidate(ctx.Request.Context(), electionID.String()); err != nil {
			server.logger.Warn("invalidate tally cache", zap.String("election_id", electionID.String()), zap.Error(err))
		}
	}

	ctx.JSON(http.StatusCreated, gin.H{"vote": gin.H{
		"id":          vote.ID.String(),
		"electionId":  vote.ElectionID.String(),
		"candidateId": vote.CandidateID.String(),
		"votedAt":     vote.VotedUnixUTC,
	}})
}

func (server *Server) handleTally(ctx *gin.Context) {
	electionID, err := campus.NewElectionID(ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if server.tallies != nil {
		var cached tallyPayload
		hit, cacheErr := server.tallies.Get(ctx.Request.Context(), electionID.String(), &cached)
		if cacheErr != nil {
			server.logger.Warn("read tally cache", zap.String("election_id", electionID.String()), zap.Error(cacheErr))
		} else if hit {
			ctx.JSON(http.StatusOK, gin.H{"tally": cached})
			return
		}
	}

	tally, err := server.voting.Tally(ctx.Request.Context(), electionID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	payload := mapTallyPayload(tally)

	if server.tallies != nil {
		if err := server.tallies.Set(ctx.Request.Context(), electionID.String(), payload); err != nil {
			server.logger.Warn("write tally cache", zap.String("election_id", electionID.String()), zap.Error(err))
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"tally": payload})
}
