package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billfold/billfold/internal/clock"
	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	customerrepo "github.com/billfold/billfold/internal/customer/repository"
	invoicedomain "github.com/billfold/billfold/internal/invoice/domain"
	invoicerepo "github.com/billfold/billfold/internal/invoice/repository"
	"github.com/billfold/billfold/internal/ownerctx"
	paymentdomain "github.com/billfold/billfold/internal/payment/domain"
	paymentrepo "github.com/billfold/billfold/internal/payment/repository"
	"github.com/billfold/billfold/internal/statement/domain"
	statementrepo "github.com/billfold/billfold/internal/statement/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupStatementTest(t *testing.T) (*gorm.DB, *snowflake.Node, *clock.FakeClock, domain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
		&domain.CustomerStatement{},
	))
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_customers_owner_email ON customers(owner_id, email)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_customer_statements_owner_number ON customer_statements(owner_id, statement_number)")

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fakeClock,
		Repo:         statementrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		PaymentRepo:  paymentrepo.Provide(),
		InvoiceRepo:  invoicerepo.Provide(),
	})

	return db, node, fakeClock, svc
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node, ownerID snowflake.ID, name, email string) customerdomain.Customer {
	t.Helper()
	customer := customerdomain.Customer{
		ID:        node.Generate(),
		OwnerID:   ownerID,
		Name:      name,
		Email:     email,
		Phone:     "+15550100",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, ownerID snowflake.ID, email string, total int64, issueDate time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&invoicedomain.Invoice{
		ID:            node.Generate(),
		OwnerID:       ownerID,
		InvoiceNumber: "INV-" + node.Generate().String(),
		ClientName:    "Client",
		ClientEmail:   email,
		IssueDate:     issueDate,
		DueDate:       issueDate.AddDate(0, 0, 30),
		Status:        invoicedomain.InvoiceStatusSent,
		TotalAmount:   total,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}).Error)
}

func seedPayment(t *testing.T, db *gorm.DB, node *snowflake.Node, ownerID, customerID snowflake.ID, amount int64, paymentDate time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&paymentdomain.Payment{
		ID:            node.Generate(),
		OwnerID:       ownerID,
		CustomerID:    customerID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		PaymentMethod: paymentdomain.MethodCash,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}).Error)
}

func TestGenerateStatement_DefaultWindow(t *testing.T) {
	db, node, _, svc := setupStatementTest(t)

	ownerID := node.Generate()
	customer := seedCustomer(t, db, node, ownerID, "Acme Co", "acme@example.com")
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	summary, err := svc.Generate(ctx, domain.GenerateStatementRequest{
		CustomerEmail: customer.Email,
	})
	require.NoError(t, err)

	wantEnd := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, wantEnd, summary.PeriodEnd)
	assert.Equal(t, wantEnd.Add(-90*24*time.Hour), summary.PeriodStart)
	assert.Equal(t, customer.ID, summary.CustomerID)
	assert.Equal(t, "Acme Co", summary.CustomerName)
	assert.Equal(t, customer.Phone, summary.CustomerPhone)
	assert.Zero(t, summary.TotalSales)
	assert.Zero(t, summary.TotalPayments)
	assert.Zero(t, summary.InvoiceCount)
	assert.Zero(t, summary.OutstandingBalance)
}

func TestGenerateStatement_AggregatesWithinRange(t *testing.T) {
	db, node, _, svc := setupStatementTest(t)

	ownerID := node.Generate()
	otherOwner := node.Generate()
	customer := seedCustomer(t, db, node, ownerID, "Acme Co", "acme-range@example.com")
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	// Inside the window.
	seedInvoice(t, db, node, ownerID, customer.Email, 10000, from.AddDate(0, 0, 3))
	seedInvoice(t, db, node, ownerID, customer.Email, 5000, to)
	seedPayment(t, db, node, ownerID, customer.ID, 4000, from)
	// Outside the window or owned by someone else, all ignored.
	seedInvoice(t, db, node, ownerID, customer.Email, 70000, from.AddDate(0, -2, 0))
	seedInvoice(t, db, node, otherOwner, customer.Email, 80000, from.AddDate(0, 0, 5))
	seedPayment(t, db, node, ownerID, customer.ID, 9000, to.AddDate(0, 1, 0))
	seedPayment(t, db, node, otherOwner, customer.ID, 9500, from.AddDate(0, 0, 1))

	summary, err := svc.Generate(ctx, domain.GenerateStatementRequest{
		CustomerEmail: customer.Email,
		From:          from,
		To:            to,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(15000), summary.TotalSales)
	assert.Equal(t, int64(2), summary.InvoiceCount)
	assert.Equal(t, int64(4000), summary.TotalPayments)
	assert.Equal(t, int64(1), summary.PaymentCount)
	assert.Equal(t, summary.TotalSales-summary.TotalPayments, summary.OutstandingBalance)
}

func TestGenerateStatement_UnknownCustomer(t *testing.T) {
	db, node, _, svc := setupStatementTest(t)

	ownerID := node.Generate()
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	// Payments recorded before the customer record exists carry the
	// zero-sentinel customer id and still count toward the preview.
	seedPayment(t, db, node, ownerID, 0, 6000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	// A matching invoice exists, but sales stay zero without a
	// resolved customer record.
	seedInvoice(t, db, node, ownerID, "nobody@example.com", 12000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	summary, err := svc.Generate(ctx, domain.GenerateStatementRequest{
		CustomerEmail: "nobody@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Unknown Customer", summary.CustomerName)
	assert.Equal(t, "nobody@example.com", summary.CustomerEmail)
	assert.Zero(t, summary.CustomerID)
	assert.Zero(t, summary.TotalSales)
	assert.Zero(t, summary.InvoiceCount)
	assert.Equal(t, int64(6000), summary.TotalPayments)
	assert.Equal(t, int64(1), summary.PaymentCount)
	assert.Equal(t, int64(-6000), summary.OutstandingBalance)
}

func TestGenerateStatement_MissingEmail(t *testing.T) {
	_, node, _, svc := setupStatementTest(t)

	ctx := ownerctx.WithOwnerID(context.Background(), node.Generate())
	_, err := svc.Generate(ctx, domain.GenerateStatementRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomerEmail)
}

type failingPaymentRepo struct {
	paymentdomain.Repository
}

func (failingPaymentRepo) SumForCustomer(context.Context, *gorm.DB, snowflake.ID, snowflake.ID, time.Time, time.Time) (int64, int64, error) {
	return 0, 0, errors.New("payments store offline")
}

type failingInvoiceRepo struct {
	invoicedomain.Repository
}

func (failingInvoiceRepo) SumForClientEmail(context.Context, *gorm.DB, snowflake.ID, string, time.Time, time.Time) (int64, int64, error) {
	return 0, 0, errors.New("invoice store offline")
}

func TestGenerateStatement_LookupFailuresDegradeToZero(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&customerdomain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)),
		Repo:         statementrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		PaymentRepo:  failingPaymentRepo{},
		InvoiceRepo:  failingInvoiceRepo{},
	})

	ownerID := node.Generate()
	customer := seedCustomer(t, db, node, ownerID, "Acme Co", "acme-degraded@example.com")
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	// Both aggregate stores erroring zeroes their contribution
	// instead of failing the preview.
	summary, err := svc.Generate(ctx, domain.GenerateStatementRequest{
		CustomerEmail: customer.Email,
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Co", summary.CustomerName)
	assert.Zero(t, summary.TotalSales)
	assert.Zero(t, summary.InvoiceCount)
	assert.Zero(t, summary.TotalPayments)
	assert.Zero(t, summary.PaymentCount)
	assert.Zero(t, summary.OutstandingBalance)
}

func TestGenerateStatement_InvalidRange(t *testing.T) {
	db, node, _, svc := setupStatementTest(t)

	ownerID := node.Generate()
	customer := seedCustomer(t, db, node, ownerID, "Acme Co", "acme-invalid@example.com")
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	_, err := svc.Generate(ctx, domain.GenerateStatementRequest{
		CustomerEmail: customer.Email,
		From:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestCreateStatement_DuplicateNumber(t *testing.T) {
	db, node, _, svc := setupStatementTest(t)

	ownerID := node.Generate()
	customer := seedCustomer(t, db, node, ownerID, "Acme Co", "acme-dup@example.com")
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	first, err := svc.Create(ctx, domain.CreateStatementRequest{
		CustomerID:      customer.ID.String(),
		StatementNumber: "ST-001",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatementStatusDraft, first.Status)

	_, err = svc.Create(ctx, domain.CreateStatementRequest{
		CustomerID:      customer.ID.String(),
		StatementNumber: "ST-001",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateNumber)

	// The first record stays intact.
	got, err := svc.GetByID(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, domain.StatementStatusDraft, got.Status)
}

func TestCreateStatement_MissingCustomer(t *testing.T) {
	_, node, _, svc := setupStatementTest(t)

	ctx := ownerctx.WithOwnerID(context.Background(), node.Generate())

	_, err := svc.Create(ctx, domain.CreateStatementRequest{
		CustomerID:      node.Generate().String(),
		StatementNumber: "ST-404",
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCreateStatement_SnapshotConsistency(t *testing.T) {
	db, node, _, svc := setupStatementTest(t)

	ownerID := node.Generate()
	customer := seedCustomer(t, db, node, ownerID, "Acme Co", "acme-snap@example.com")
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	seedPayment(t, db, node, ownerID, customer.ID, 2500, from.AddDate(0, 0, 10))

	created, err := svc.Create(ctx, domain.CreateStatementRequest{
		CustomerID:      customer.ID.String(),
		StatementNumber: "ST-SNAP",
		From:            from,
		To:              to,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), created.TotalPayments)

	// Activity after creation never mutates the stored snapshot.
	seedPayment(t, db, node, ownerID, customer.ID, 9999, from.AddDate(0, 0, 12))

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.TotalPayments)
	assert.Equal(t, created.OutstandingBalance, got.OutstandingBalance)
}

func TestMarkSent_Lifecycle(t *testing.T) {
	db, node, fakeClock, svc := setupStatementTest(t)

	ownerID := node.Generate()
	customer := seedCustomer(t, db, node, ownerID, "Acme Co", "acme-sent@example.com")
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	created, err := svc.Create(ctx, domain.CreateStatementRequest{
		CustomerID:      customer.ID.String(),
		StatementNumber: "ST-SENT",
	})
	require.NoError(t, err)
	assert.Nil(t, created.SentVia)
	assert.Nil(t, created.SentAt)

	sent, err := svc.MarkSent(ctx, domain.MarkSentRequest{
		ID:      created.ID.String(),
		Channel: domain.DeliveryChannelEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatementStatusSent, sent.Status)
	require.NotNil(t, sent.SentVia)
	assert.Equal(t, domain.DeliveryChannelEmail, *sent.SentVia)
	require.NotNil(t, sent.SentAt)
	assert.WithinDuration(t, fakeClock.Now(), sent.SentAt.UTC(), time.Second)

	// Re-marking without force is rejected.
	_, err = svc.MarkSent(ctx, domain.MarkSentRequest{
		ID:      created.ID.String(),
		Channel: domain.DeliveryChannelWhatsApp,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySent)

	// Force overwrites channel and timestamp.
	fakeClock.Advance(2 * time.Hour)
	resent, err := svc.MarkSent(ctx, domain.MarkSentRequest{
		ID:      created.ID.String(),
		Channel: domain.DeliveryChannelWhatsApp,
		Force:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, resent.SentVia)
	assert.Equal(t, domain.DeliveryChannelWhatsApp, *resent.SentVia)
	require.NotNil(t, resent.SentAt)
	assert.WithinDuration(t, fakeClock.Now(), resent.SentAt.UTC(), time.Second)
}

func TestMarkSent_NotFound(t *testing.T) {
	_, node, _, svc := setupStatementTest(t)

	ctx := ownerctx.WithOwnerID(context.Background(), node.Generate())
	_, err := svc.MarkSent(ctx, domain.MarkSentRequest{
		ID:      node.Generate().String(),
		Channel: domain.DeliveryChannelManual,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkSent_InvalidChannel(t *testing.T) {
	_, node, _, svc := setupStatementTest(t)

	ctx := ownerctx.WithOwnerID(context.Background(), node.Generate())
	_, err := svc.MarkSent(ctx, domain.MarkSentRequest{
		ID:      node.Generate().String(),
		Channel: "pigeon",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)
}

func TestListStatements_Filters(t *testing.T) {
	db, node, _, svc := setupStatementTest(t)

	ownerID := node.Generate()
	acme := seedCustomer(t, db, node, ownerID, "Acme Co", "acme-list@example.com")
	globex := seedCustomer(t, db, node, ownerID, "Globex", "globex-list@example.com")
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)

	first, err := svc.Create(ctx, domain.CreateStatementRequest{
		CustomerID:      acme.ID.String(),
		StatementNumber: "ST-L1",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateStatementRequest{
		CustomerID:      globex.ID.String(),
		StatementNumber: "ST-L2",
	})
	require.NoError(t, err)

	_, err = svc.MarkSent(ctx, domain.MarkSentRequest{
		ID:      first.ID.String(),
		Channel: domain.DeliveryChannelManual,
	})
	require.NoError(t, err)

	byCustomer, err := svc.List(ctx, domain.ListStatementsRequest{CustomerID: acme.ID.String()})
	require.NoError(t, err)
	require.Len(t, byCustomer.Statements, 1)
	assert.Equal(t, acme.ID, byCustomer.Statements[0].CustomerID)
	require.NotNil(t, byCustomer.Statements[0].Customer)
	assert.Equal(t, "Acme Co", byCustomer.Statements[0].Customer.Name)

	sentOnly, err := svc.List(ctx, domain.ListStatementsRequest{Status: "sent"})
	require.NoError(t, err)
	require.Len(t, sentOnly.Statements, 1)
	assert.Equal(t, first.ID, sentOnly.Statements[0].ID)

	// Another owner sees nothing.
	otherCtx := ownerctx.WithOwnerID(context.Background(), node.Generate())
	empty, err := svc.List(otherCtx, domain.ListStatementsRequest{})
	require.NoError(t, err)
	assert.Empty(t, empty.Statements)
}
