package api

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

const maxCommandLength = 500

// CommandRequest carries either a finalized transcript or an already classified action
type CommandRequest struct {
	Command string          `json:"command"`
	Action  json.RawMessage `json:"action,omitempty"`
}

// CommandHandler serves the voice/text command endpoint
type CommandHandler struct {
	interpreter interfaces.CommandInterpreter
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(interpreter interfaces.CommandInterpreter) *CommandHandler {
	return &CommandHandler{interpreter: interpreter}
}

// RegisterRoutes mounts the command endpoint
func (h *CommandHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/commands", h.handleCommand)
}

// handleCommand always answers 200 with a CommandResponse once the request is
// well formed; command failures travel in the success flag.
func (h *CommandHandler) handleCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	ctx := c.Request.Context()

	if len(req.Action) > 0 && string(req.Action) != "null" {
		Response.Success(c, h.interpreter.Execute(ctx, models.DecodeAction(req.Action)))
		return
	}

	command := strings.TrimSpace(req.Command)
	if command == "" {
		Response.ValidationError(c, "command", "Either command or action is required")
		return
	}
	if len(command) > maxCommandLength {
		Response.ValidationError(c, "command", "Command is too long")
		return
	}

	Response.Success(c, h.interpreter.Interpret(ctx, command))
}
