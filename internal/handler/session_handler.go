package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"physiotrack/backend/internal/announce"
	"physiotrack/backend/internal/middleware"
	"physiotrack/backend/internal/service"
)

const eventsKeepAlive = 25 * time.Second

type SessionHandler struct {
	sessionService *service.SessionService
	hub            *announce.Hub
}

type startRequest struct {
	Name       string                  `json:"name"`
	TemplateID string                  `json:"templateId"`
	Exercises  []service.ExerciseInput `json:"exercises"`
}

func NewSessionHandler(sessionService *service.SessionService, hub *announce.Hub) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, hub: hub}
}

func (h *SessionHandler) GetState(c *gin.Context) {
	state, apiErr := h.sessionService.GetState(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	state, apiErr := h.sessionService.Start(c.Request.Context(), middleware.UserID(c), service.StartInput{
		Name:       req.Name,
		TemplateID: req.TemplateID,
		Exercises:  req.Exercises,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) CompleteExercise(c *gin.Context) {
	state, apiErr := h.sessionService.CompleteExercise(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) Complete(c *gin.Context) {
	state, apiErr := h.sessionService.Complete(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	state, apiErr := h.sessionService.Cancel(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) GetHistory(c *gin.Context) {
	sessions, apiErr := h.sessionService.GetHistory(c.Request.Context(), middleware.UserID(c), queryInt(c, "limit", 50))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Events streams announcements for the caller's sessions until the client
// goes away.
func (h *SessionHandler) Events(c *gin.Context) {
	events, cancel := h.hub.Subscribe(middleware.UserID(c))
	defer cancel()

	keepAlive := time.NewTicker(eventsKeepAlive)
	defer keepAlive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"message": "listening"})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Kind), gin.H{
				"event":   event,
				"message": event.Message(),
			})
			return true
		}
	})
}
