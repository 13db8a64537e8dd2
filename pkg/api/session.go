package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/zentalk-session/pkg/network"
)

// StatusResponse describes the client and its session
type StatusResponse struct {
	ClientID    string `json:"client_id"`
	Online      bool   `json:"online"`
	Connection  string `json:"connection"`
	SignIn      string `json:"sign_in"`
	UserID      int64  `json:"user_id,omitempty"`
	Server      string `json:"server"`
	Fingerprint string `json:"token_fingerprint"`
	Encrypted   bool   `json:"encrypted"`
}

func (s *Server) handleStatus(c *gin.Context) {
	sess := s.client.Session()

	c.JSON(http.StatusOK, StatusResponse{
		ClientID:    s.client.ID(),
		Online:      s.client.IsOnline(),
		Connection:  s.client.ConnectionState().String(),
		SignIn:      s.client.SignInState().String(),
		UserID:      s.client.SessionUserID(),
		Server:      sess.Address(),
		Fingerprint: sess.Fingerprint(),
		Encrypted:   sess.HasKey(),
	})
}

func (s *Server) handleConnect(c *gin.Context) {
	if err := s.client.Connect(c.Request.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, network.ErrSessionInvalid) {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{
			Error:   "Connect failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{
		Success: true,
		Message: "connecting, sign-in in progress",
	})
}

func (s *Server) handleSignOut(c *gin.Context) {
	if err := s.client.SignOut(); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, network.ErrNotOnline):
			status = http.StatusConflict
		case errors.Is(err, network.ErrSessionInvalid), errors.Is(err, network.ErrPacketInUse):
			status = http.StatusGone
		}
		c.JSON(status, ErrorResponse{
			Error:   "Sign-out failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{
		Success: true,
		Message: "sign-out sent",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"online": s.client.IsOnline(),
	})
}
