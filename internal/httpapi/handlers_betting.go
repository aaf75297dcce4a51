package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (server *Server) handleListEvents(ctx *gin.Context) {
	events, err := server.betting.Events(ctx.Request.Context())
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	payloads := make([]eventPayload, 0, len(events))
	for _, event := range events {
		payloads = append(payloads, mapEventPayload(event))
	}
	ctx.JSON(http.StatusOK, gin.H{"events": payloads})
}

func (server *Server) handleGetEvent(ctx *gin.Context) {
	eventID, err := campus.NewEventID(ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	event, err := server.betting.Event(ctx.Request.Context(), eventID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"event": mapEventPayload(event)})
}

func (server *Server) handlePlaceBet(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		return
	}

	var request placeBetRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "malformed request body"))
		return
	}

	eventID, err := campus.NewEventID(request.EventID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	selection, err := campus.ParseSelection(request.Selection)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	stake, err := campus.NewStake(request.Stake)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	// Clients that retry supply their own key; otherwise each attempt
	// is a distinct bet.
	rawKey := request.IdempotencyKey
	if rawKey == "" {
		rawKey = "bet:" + uuid.NewString()
	}
	idempotencyKey, err := campus.NewIdempotencyKey(rawKey)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	metadata := campus.MetadataJSON{}
	if len(request.Metadata) > 0 {
		encoded, marshalErr := json.Marshal(request.Metadata)
		if marshalErr != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "malformed metadata"))
			return
		}
		metadata, err = campus.NewMetadataJSON(string(encoded))
		if err != nil {
			respondDomainError(ctx, err)
			return
		}
	}

	bet, err := server.betting.PlaceBet(ctx.Request.Context(), userID, eventID, selection, stake, idempotencyKey, metadata)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"bet": mapBetPayload(bet)})
}

func (server *Server) handleListBets(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		return
	}
	bets, err := server.betting.Bets(ctx.Request.Context(), userID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	payloads := make([]betPayload, 0, len(bets))
	for _, bet := range bets {
		payloads = append(payloads, mapBetPayload(bet))
	}
	ctx.JSON(http.StatusOK, gin.H{"bets": payloads})
}

func (server *Server) handleBetSummary(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		return
	}
	summary, err := server.betting.Summary(ctx.Request.Context(), userID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"summary": betSummaryPayload{
		TotalBets:      summary.TotalBets,
		PendingBets:    summary.PendingBets,
		WonBets:        summary.WonBets,
		TotalStaked:    summary.TotalStaked,
		WinRatePercent: summary.WinRatePercent,
	}})
}
