package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-convai/pkg/session"
)

// ToolInfo describes one advertised tool.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleListTools lists the dispatch table's tools. This is the same
// projection the model sees, so the two can never diverge.
func (s *Server) handleListTools(c *fiber.Ctx) error {
	specs := s.table.Specs()
	out := make([]ToolInfo, len(specs))
	for i, spec := range specs {
		out[i] = ToolInfo{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Parameters,
		}
	}
	return c.JSON(out)
}

// handleSessionCount reports the number of open sessions.
func (s *Server) handleSessionCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"active_sessions": s.sessions.Len()})
}

// handleSessionWS owns one client connection. The session's writer
// goroutine is the only writer on the conn; this loop only reads.
func (s *Server) handleSessionWS(c *websocket.Conn) {
	sess := s.sessions.Open(c)
	defer s.sessions.Close(sess.ID)

	s.logger.Info("client connected", "session_id", sess.ID)

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("client connection lost", "session_id", sess.ID, "error", err)
			} else {
				s.logger.Info("client disconnected", "session_id", sess.ID)
			}
			return
		}

		binary := messageType == websocket.BinaryMessage
		if err := sess.Dispatch(data, binary); err != nil {
			if errors.Is(err, session.ErrClosed) {
				return
			}
			s.logger.Error("dispatch failed", "session_id", sess.ID, "error", err)
		}
	}
}
