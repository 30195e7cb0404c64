package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/auth"
	"github.com/parleyhq/parley/internal/domain"
	"github.com/parleyhq/parley/internal/meeting"
)

const identityKey = "user_id"

// MeetingHandlers exposes the lifecycle API consumed by the CRUD
// layer. Identity always arrives as an explicit bearer token; there is
// no ambient request state.
type MeetingHandlers struct {
	meetings *meeting.Service
}

func NewMeetingHandlers(meetings *meeting.Service) *MeetingHandlers {
	return &MeetingHandlers{meetings: meetings}
}

// AuthMiddleware resolves the bearer token once at the boundary and
// stores the caller's identity for handlers.
func AuthMiddleware(tokens auth.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			h := c.GetHeader("Authorization")
			token = strings.TrimPrefix(h, "Bearer ")
			if token == h {
				token = ""
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errBody("UNAUTHORIZED", "missing token"))
			return
		}
		uid, err := tokens.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenInvalid) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errBody("TOKEN_INVALID", "token invalid"))
				return
			}
			log.Error().Str("module", "adapters.http").Err(err).Msg("token resolve failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errBody("STORAGE_ERROR", "storage error"))
			return
		}
		c.Set(identityKey, uid)
		c.Next()
	}
}

func callerID(c *gin.Context) domain.UserID {
	return c.MustGet(identityKey).(domain.UserID)
}

func (h *MeetingHandlers) QuickStart(c *gin.Context) {
	room, err := h.meetings.QuickStart(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": room.ID, "name": room.Name})
}

type preJoinRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	Password string `json:"password"`
}

func (h *MeetingHandlers) PreJoin(c *gin.Context) {
	var req preJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("BAD_REQUEST", err.Error()))
		return
	}
	if err := h.meetings.PreJoin(c.Request.Context(), domain.RoomID(req.RoomID), callerID(c), req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type joinRequest struct {
	RoomID      string `json:"roomId" binding:"required"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (h *MeetingHandlers) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("BAD_REQUEST", err.Error()))
		return
	}
	roster, err := h.meetings.Join(c.Request.Context(), domain.RoomID(req.RoomID), callerID(c), req.Password, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": roster})
}

type leaveRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

func (h *MeetingHandlers) Leave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("BAD_REQUEST", err.Error()))
		return
	}
	if err := h.meetings.Leave(c.Request.Context(), domain.RoomID(req.RoomID), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type endRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

func (h *MeetingHandlers) End(c *gin.Context) {
	var req endRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("BAD_REQUEST", err.Error()))
		return
	}
	if err := h.meetings.End(c.Request.Context(), domain.RoomID(req.RoomID), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *MeetingHandlers) Current(c *gin.Context) {
	room, active, err := h.meetings.CurrentRoom(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !active {
		c.JSON(http.StatusOK, gin.H{"roomId": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": room})
}

func errBody(code, message string) gin.H {
	return gin.H{"code": code, "message": message}
}

// respondError maps the lifecycle error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, meeting.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, errBody("ROOM_NOT_FOUND", "room not found"))
	case errors.Is(err, meeting.ErrPasswordMismatch):
		c.JSON(http.StatusForbidden, errBody("PASSWORD_MISMATCH", "password mismatch"))
	case errors.Is(err, meeting.ErrForbidden):
		c.JSON(http.StatusForbidden, errBody("FORBIDDEN", "forbidden"))
	case errors.Is(err, meeting.ErrAlreadyInMeeting):
		c.JSON(http.StatusConflict, errBody("ALREADY_IN_MEETING", "already in a meeting"))
	case errors.Is(err, meeting.ErrNotConnected):
		c.JSON(http.StatusBadRequest, errBody("NOT_CONNECTED", "no live connection"))
	case errors.Is(err, domain.ErrDisplayNameEmpty), errors.Is(err, domain.ErrDisplayNameTooLong):
		c.JSON(http.StatusBadRequest, errBody("BAD_REQUEST", err.Error()))
	default:
		log.Error().Str("module", "adapters.http").Err(err).Msg("lifecycle operation failed")
		c.JSON(http.StatusInternalServerError, errBody("STORAGE_ERROR", "storage error"))
	}
}
