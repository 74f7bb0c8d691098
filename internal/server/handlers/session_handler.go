package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/session"
)

// SessionHandler exposes login state to the dashboard front end.
type SessionHandler struct {
	session *session.Session
	logger  *zap.Logger
}

// NewSessionHandler constructs the HTTP handler adapter.
func NewSessionHandler(sess *session.Session, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{session: sess, logger: logger}
}

// Get returns the current session state.
func (h *SessionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Login authenticates with email and password.
func (h *SessionHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		badRequest(c, "email and password are required")
		return
	}

	if _, err := h.session.Login(c.Request.Context(), creds.Email, creds.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Register creates an account and logs it in.
func (h *SessionHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(c, "email and password are required")
		return
	}

	if _, err := h.session.Register(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, h.session.Snapshot())
}

// Logout always ends the local session.
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Validate confirms a stored token against the backend.
func (h *SessionHandler) Validate(c *gin.Context) {
	if err := h.session.Validate(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}
