package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/zentalk-session/pkg/storage"
)

// InboxMessage is one queued business frame
type InboxMessage struct {
	ID         int64  `json:"id"`
	Sign       int64  `json:"sign"`
	Type       uint16 `json:"type"`
	Payload    []byte `json:"payload"` // base64 in JSON
	ReceivedAt int64  `json:"received_at"`
}

// InboxResponse lists pending messages
type InboxResponse struct {
	Count    int             `json:"count"`
	Messages []*InboxMessage `json:"messages"`
}

func (s *Server) handleInbox(c *gin.Context) {
	if s.inbox == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Inbox disabled"})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid limit",
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = n
	}

	pending, err := s.inbox.Pending(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Inbox read failed", Message: err.Error()})
		return
	}
	count, err := s.inbox.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Inbox read failed", Message: err.Error()})
		return
	}

	resp := InboxResponse{Count: count, Messages: make([]*InboxMessage, 0, len(pending))}
	for _, m := range pending {
		resp.Messages = append(resp.Messages, &InboxMessage{
			ID:         m.ID,
			Sign:       m.Sign,
			Type:       m.Type,
			Payload:    m.Payload,
			ReceivedAt: m.ReceivedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAck(c *gin.Context) {
	if s.inbox == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Inbox disabled"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid id",
			Message: "id must be an integer",
		})
		return
	}

	if err := s.inbox.Ack(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Ack failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
