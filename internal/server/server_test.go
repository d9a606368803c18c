package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/billfold/billfold/internal/clock"
	"github.com/billfold/billfold/internal/config"
	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	customerrepo "github.com/billfold/billfold/internal/customer/repository"
	customerservice "github.com/billfold/billfold/internal/customer/service"
	dispatchservice "github.com/billfold/billfold/internal/dispatch/service"
	invoicedomain "github.com/billfold/billfold/internal/invoice/domain"
	invoicerepo "github.com/billfold/billfold/internal/invoice/repository"
	invoiceservice "github.com/billfold/billfold/internal/invoice/service"
	paymentdomain "github.com/billfold/billfold/internal/payment/domain"
	paymentrepo "github.com/billfold/billfold/internal/payment/repository"
	paymentservice "github.com/billfold/billfold/internal/payment/service"
	"github.com/billfold/billfold/internal/providers/email"
	"github.com/billfold/billfold/internal/providers/pdf"
	"github.com/billfold/billfold/internal/providers/whatsapp"
	statementdomain "github.com/billfold/billfold/internal/statement/domain"
	statementrepo "github.com/billfold/billfold/internal/statement/repository"
	statementservice "github.com/billfold/billfold/internal/statement/service"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serverFixture struct {
	server *Server
	node   *snowflake.Node
}

func setupServerTest(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
		&statementdomain.CustomerStatement{},
	))
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_customers_owner_email ON customers(owner_id, email)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_invoices_owner_number ON invoices(owner_id, invoice_number)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_customer_statements_owner_number ON customer_statements(owner_id, statement_number)")

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{AppName: "billfold", Environment: "test"}

	customerSvc := customerservice.New(customerservice.Params{
		DB: db, Log: log, GenID: node, Repo: customerrepo.Provide(),
	})
	paymentSvc := paymentservice.New(paymentservice.Params{
		DB: db, Log: log, GenID: node,
		Clock:        clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)),
		Repo:         paymentrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Repo: invoicerepo.Provide(),
	})
	statementSvc := statementservice.New(statementservice.Params{
		DB: db, Log: log, GenID: node,
		Clock:        clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)),
		Repo:         statementrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		PaymentRepo:  paymentrepo.Provide(),
		InvoiceRepo:  invoicerepo.Provide(),
	})
	dispatchSvc := dispatchservice.New(dispatchservice.Params{
		Config:     cfg,
		Log:        log,
		Statements: statementSvc,
		Email:      &email.NoOpProvider{},
		WhatsApp:   whatsapp.NewSimulated(log, cfg),
	})

	engine := NewEngine(log, nil)
	srv := NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		DB:           db,
		CustomerSvc:  customerSvc,
		PaymentSvc:   paymentSvc,
		InvoiceSvc:   invoiceSvc,
		StatementSvc: statementSvc,
		DispatchSvc:  dispatchSvc,
		PDFProvider:  pdf.New(),
	})

	return &serverFixture{server: srv, node: node}
}

func (f *serverFixture) do(t *testing.T, method, path, ownerID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ownerID != "" {
		req.Header.Set(HeaderOwner, ownerID)
	}

	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutes_RequireOwnerHeader(t *testing.T) {
	f := setupServerTest(t)

	rec := f.do(t, http.MethodGet, "/admin/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/admin/customers", "not-a-number", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	f := setupServerTest(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCustomerEndpoints(t *testing.T) {
	f := setupServerTest(t)
	owner := f.node.Generate().String()

	rec := f.do(t, http.MethodPost, "/admin/customers", owner, gin.H{
		"name":  "Acme Co",
		"email": "api-dup@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/admin/customers", owner, gin.H{
		"name":  "Acme Again",
		"email": "api-dup@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/admin/customers", owner, gin.H{
		"name":  "",
		"email": "valid@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/admin/customers", owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatementLifecycleOverHTTP(t *testing.T) {
	f := setupServerTest(t)
	owner := f.node.Generate().String()

	rec := f.do(t, http.MethodPost, "/admin/customers", owner, gin.H{
		"name":  "Acme Co",
		"email": "lifecycle@example.com",
		"phone": "+15550100",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var customerResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customerResp))
	require.NotEmpty(t, customerResp.Data.ID)

	// Preview is keyed by email and needs no persistence.
	rec = f.do(t, http.MethodPost, "/admin/customer-statements/generate", owner, gin.H{
		"customerEmail": "lifecycle@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var previewResp struct {
		Data struct {
			CustomerName string `json:"customer_name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &previewResp))
	assert.Equal(t, "Acme Co", previewResp.Data.CustomerName)

	// An email with no customer record still previews with a placeholder.
	rec = f.do(t, http.MethodPost, "/admin/customer-statements/generate", owner, gin.H{
		"customerEmail": "nobody-yet@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &previewResp))
	assert.Equal(t, "Unknown Customer", previewResp.Data.CustomerName)

	// Missing email is a validation error.
	rec = f.do(t, http.MethodPost, "/admin/customer-statements/generate", owner, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/admin/customer-statements", owner, gin.H{
		"customer_id":      customerResp.Data.ID,
		"statement_number": "ST-HTTP-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var createResp struct {
		Statement struct {
			ID string `json:"id"`
		} `json:"statement"`
		StatementData map[string]any `json:"statement_data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &createResp))
	require.NotEmpty(t, createResp.Statement.ID)
	assert.Contains(t, createResp.StatementData, "outstanding_balance")

	// Duplicate number conflicts.
	rec = f.do(t, http.MethodPost, "/admin/customer-statements", owner, gin.H{
		"customer_id":      customerResp.Data.ID,
		"statement_number": "ST-HTTP-1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown customer is a 404.
	rec = f.do(t, http.MethodPost, "/admin/customer-statements", owner, gin.H{
		"customer_id":      f.node.Generate().String(),
		"statement_number": "ST-HTTP-2",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	statementPath := fmt.Sprintf("/admin/customer-statements/%s", createResp.Statement.ID)

	rec = f.do(t, http.MethodPatch, statementPath, owner, gin.H{
		"action":   "mark_sent",
		"sent_via": "email",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Re-marking without force conflicts.
	rec = f.do(t, http.MethodPatch, statementPath, owner, gin.H{
		"action":   "mark_sent",
		"sent_via": "manual",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPatch, statementPath, owner, gin.H{
		"action":   "mark_sent",
		"sent_via": "manual",
		"force":    true,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another owner cannot read the statement.
	rec = f.do(t, http.MethodGet, statementPath, f.node.Generate().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWhatsAppDispatchOverHTTP(t *testing.T) {
	f := setupServerTest(t)
	owner := f.node.Generate().String()

	rec := f.do(t, http.MethodPost, "/admin/customers", owner, gin.H{
		"name":  "Acme Co",
		"email": "wa@example.com",
		"phone": "+15550100",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var customerResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customerResp))

	rec = f.do(t, http.MethodPost, "/admin/customer-statements", owner, gin.H{
		"customer_id":      customerResp.Data.ID,
		"statement_number": "ST-WA-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var createResp struct {
		Statement struct {
			ID string `json:"id"`
		} `json:"statement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &createResp))

	rec = f.do(t, http.MethodPost, "/admin/whatsapp/send-statement", owner, gin.H{
		"statement_id": createResp.Statement.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dispatchResp struct {
		Data struct {
			CorrelationID string `json:"correlation_id"`
			Statement     struct {
				Status  string `json:"status"`
				SentVia string `json:"sent_via"`
			} `json:"statement"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dispatchResp))
	assert.Contains(t, dispatchResp.Data.CorrelationID, "wa_")
	assert.Equal(t, "sent", dispatchResp.Data.Statement.Status)
	assert.Equal(t, "whatsapp", dispatchResp.Data.Statement.SentVia)
}
