package server

import (
	"io"
	"net/http"
	"strings"

	dispatchservice "github.com/billfold/billfold/internal/dispatch/service"
	"github.com/billfold/billfold/internal/providers/pdf"
	statementdomain "github.com/billfold/billfold/internal/statement/domain"
	"github.com/billfold/billfold/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type generateStatementRequest struct {
	CustomerEmail string `json:"customerEmail"`
	FromDate      string `json:"fromDate"`
	ToDate        string `json:"toDate"`
}

func (s *Server) GenerateStatement(c *gin.Context) {
	var req generateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalDate(req.FromDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("fromDate", "invalid_from_date", "invalid fromDate"))
		return
	}
	to, err := parseOptionalDate(req.ToDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("toDate", "invalid_to_date", "invalid toDate"))
		return
	}

	resp, err := s.statementSvc.Generate(c.Request.Context(), statementdomain.GenerateStatementRequest{
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		From:          from,
		To:            to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createStatementRequest struct {
	CustomerID      string `json:"customer_id"`
	StatementNumber string `json:"statement_number"`
	FromDate        string `json:"from_date"`
	ToDate          string `json:"to_date"`
	Notes           string `json:"notes"`
}

func (s *Server) CreateStatement(c *gin.Context) {
	var req createStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalDate(req.FromDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("from_date", "invalid_from_date", "invalid from_date"))
		return
	}
	to, err := parseOptionalDate(req.ToDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("to_date", "invalid_to_date", "invalid to_date"))
		return
	}

	resp, err := s.statementSvc.Create(c.Request.Context(), statementdomain.CreateStatementRequest{
		CustomerID:      strings.TrimSpace(req.CustomerID),
		StatementNumber: strings.TrimSpace(req.StatementNumber),
		From:            from,
		To:              to,
		Notes:           strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statement":      resp,
		"statement_data": statementDataView(resp),
	})
}

func (s *Server) ListStatements(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customerId"`
		Status     string `form:"status"`
		FromDate   string `form:"fromDate"`
		ToDate     string `form:"toDate"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalDate(query.FromDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("fromDate", "invalid_from_date", "invalid fromDate"))
		return
	}
	to, err := parseOptionalDate(query.ToDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("toDate", "invalid_to_date", "invalid toDate"))
		return
	}

	resp, err := s.statementSvc.List(c.Request.Context(), statementdomain.ListStatementsRequest{
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
		From:       from,
		To:         to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetStatementByID(c *gin.Context) {
	resp, err := s.statementSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type patchStatementRequest struct {
	Action  string `json:"action"`
	SentVia string `json:"sent_via"`
	Force   bool   `json:"force"`
}

func (s *Server) PatchStatement(c *gin.Context) {
	var req patchStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.Action) != "mark_sent" {
		AbortWithError(c, newValidationError("action", "invalid_action", "unsupported action"))
		return
	}

	resp, err := s.statementSvc.MarkSent(c.Request.Context(), statementdomain.MarkSentRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		Channel: statementdomain.DeliveryChannel(strings.TrimSpace(req.SentVia)),
		Force:   req.Force,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetStatementPDF(c *gin.Context) {
	statement, err := s.statementSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.StatementData{
		BusinessName:       s.cfg.AppName,
		StatementNumber:    statement.StatementNumber,
		PeriodStart:        statement.PeriodStart.Format(dateOnlyLayout),
		PeriodEnd:          statement.PeriodEnd.Format(dateOnlyLayout),
		IssuedAt:           statement.CreatedAt.Format(dateOnlyLayout),
		TotalSales:         dispatchservice.FormatMoney(statement.TotalSales),
		TotalPayments:      dispatchservice.FormatMoney(statement.TotalPayments),
		OutstandingBalance: dispatchservice.FormatMoney(statement.OutstandingBalance),
		Notes:              statement.Notes,
	}
	if statement.Customer != nil {
		data.CustomerName = statement.Customer.Name
		data.CustomerEmail = statement.Customer.Email
		data.CustomerAddress = statement.Customer.Address
	}

	doc, err := s.pdfProvider.GenerateStatement(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="statement-`+statement.StatementNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

func statementDataView(statement statementdomain.CustomerStatement) gin.H {
	view := gin.H{
		"customer_id":         statement.CustomerID.String(),
		"period_start":        statement.PeriodStart.Format(dateOnlyLayout),
		"period_end":          statement.PeriodEnd.Format(dateOnlyLayout),
		"total_sales":         statement.TotalSales,
		"total_payments":      statement.TotalPayments,
		"outstanding_balance": statement.OutstandingBalance,
	}
	if statement.Customer != nil {
		view["customer_name"] = statement.Customer.Name
		view["customer_email"] = statement.Customer.Email
	}
	return view
}
