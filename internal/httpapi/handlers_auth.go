package httpapi

import (
	"net/http"

	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (server *Server) handleSignup(ctx *gin.Context) {
	var request signupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "malformed request body"))
		return
	}

	email, err := campus.NewEmail(request.Email)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	user, err := server.identity.Register(ctx.Request.Context(), request.Name, email, request.StudentID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if err := server.setSessionCookie(ctx, user); err != nil {
		server.logger.Error("issue session token", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "could not start session"))
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"user": mapUserPayload(user)})
}

func (server *Server) handleLogin(ctx *gin.Context) {
	var request loginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", "malformed request body"))
		return
	}

	email, err := campus.NewEmail(request.Email)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("invalid_credentials", "no account for that email"))
		return
	}

	user, err := server.identity.Authenticate(ctx.Request.Context(), email)
	if err != nil {
		if statusCode, _ := statusForError(err); statusCode == http.StatusNotFound {
			ctx.JSON(http.StatusUnauthorized, errorResponse("invalid_credentials", "no account for that email"))
			return
		}
		respondDomainError(ctx, err)
		return
	}

	if err := server.setSessionCookie(ctx, user); err != nil {
		server.logger.Error("issue session token", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "could not start session"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": mapUserPayload(user)})
}

func (server *Server) handleSession(ctx *gin.Context) {
	userID, ok := server.currentUserID(ctx)
	if !ok {
		return
	}
	user, err := server.identity.User(ctx.Request.Context(), userID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": mapUserPayload(user)})
}

func (server *Server) handleLogout(ctx *gin.Context) {
	server.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
