package server

import (
	"net/http"
	"strings"

	dispatchdomain "github.com/billfold/billfold/internal/dispatch/domain"
	statementdomain "github.com/billfold/billfold/internal/statement/domain"
	"github.com/gin-gonic/gin"
)

type sendStatementRequest struct {
	StatementID string `json:"statement_id"`
	Channel     string `json:"channel"`
	Force       bool   `json:"force"`
}

// SendStatementWhatsApp dispatches a statement message and marks the
// statement sent once delivery succeeds. The channel defaults to
// whatsapp but the endpoint accepts email and manual as well.
func (s *Server) SendStatementWhatsApp(c *gin.Context) {
	var req sendStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	channel := statementdomain.DeliveryChannel(strings.TrimSpace(req.Channel))
	if channel == "" {
		channel = statementdomain.DeliveryChannelWhatsApp
	}

	resp, err := s.dispatchSvc.Dispatch(c.Request.Context(), dispatchdomain.DispatchRequest{
		StatementID: strings.TrimSpace(req.StatementID),
		Channel:     channel,
		Force:       req.Force,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
