package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billfold/billfold/internal/clock"
	"github.com/billfold/billfold/internal/config"
	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	customerrepo "github.com/billfold/billfold/internal/customer/repository"
	"github.com/billfold/billfold/internal/dispatch/domain"
	invoicerepo "github.com/billfold/billfold/internal/invoice/repository"
	"github.com/billfold/billfold/internal/ownerctx"
	paymentrepo "github.com/billfold/billfold/internal/payment/repository"
	statementdomain "github.com/billfold/billfold/internal/statement/domain"
	statementrepo "github.com/billfold/billfold/internal/statement/repository"
	statementservice "github.com/billfold/billfold/internal/statement/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockEmailProvider struct {
	mock.Mock
}

func (m *mockEmailProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

type mockWhatsAppProvider struct {
	mock.Mock
}

func (m *mockWhatsAppProvider) Send(ctx context.Context, phone string, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

type dispatchFixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	statements statementdomain.Service
	email      *mockEmailProvider
	whatsapp   *mockWhatsAppProvider
	svc        domain.Service
}

func setupDispatchTest(t *testing.T) *dispatchFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&statementdomain.CustomerStatement{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	statements := statementservice.New(statementservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)),
		Repo:         statementrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		PaymentRepo:  paymentrepo.Provide(),
		InvoiceRepo:  invoicerepo.Provide(),
	})

	emailMock := &mockEmailProvider{}
	whatsappMock := &mockWhatsAppProvider{}

	svc := New(Params{
		Config:     config.Config{AppName: "billfold"},
		Log:        zap.NewNop(),
		Statements: statements,
		Email:      emailMock,
		WhatsApp:   whatsappMock,
	})

	return &dispatchFixture{
		db:         db,
		node:       node,
		statements: statements,
		email:      emailMock,
		whatsapp:   whatsappMock,
		svc:        svc,
	}
}

func (f *dispatchFixture) seedStatement(t *testing.T, ctx context.Context, ownerID snowflake.ID, phone string) statementdomain.CustomerStatement {
	t.Helper()

	customer := customerdomain.Customer{
		ID:        f.node.Generate(),
		OwnerID:   ownerID,
		Name:      "Acme Co",
		Email:     "acme-" + f.node.Generate().String() + "@example.com",
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&customer).Error)

	created, err := f.statements.Create(ctx, statementdomain.CreateStatementRequest{
		CustomerID:      customer.ID.String(),
		StatementNumber: "ST-" + f.node.Generate().String(),
	})
	require.NoError(t, err)
	return created
}

func TestDispatch_WhatsAppMarksSentAfterDelivery(t *testing.T) {
	f := setupDispatchTest(t)

	ownerID := f.node.Generate()
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)
	statement := f.seedStatement(t, ctx, ownerID, "+15550100")

	f.whatsapp.On("Send", mock.Anything, "+15550100", mock.Anything).Return("wa_1718445600000", nil)

	result, err := f.svc.Dispatch(ctx, domain.DispatchRequest{
		StatementID: statement.ID.String(),
		Channel:     statementdomain.DeliveryChannelWhatsApp,
	})
	require.NoError(t, err)
	assert.Equal(t, "wa_1718445600000", result.CorrelationID)
	assert.Equal(t, statementdomain.StatementStatusSent, result.Statement.Status)
	require.NotNil(t, result.Statement.SentVia)
	assert.Equal(t, statementdomain.DeliveryChannelWhatsApp, *result.Statement.SentVia)

	f.whatsapp.AssertExpectations(t)
}

func TestDispatch_FailedDeliveryLeavesDraft(t *testing.T) {
	f := setupDispatchTest(t)

	ownerID := f.node.Generate()
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)
	statement := f.seedStatement(t, ctx, ownerID, "+15550100")

	f.whatsapp.On("Send", mock.Anything, "+15550100", mock.Anything).Return("", errors.New("gateway timeout"))

	_, err := f.svc.Dispatch(ctx, domain.DispatchRequest{
		StatementID: statement.ID.String(),
		Channel:     statementdomain.DeliveryChannelWhatsApp,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDispatchFailed)

	// Delivery failed, so the statement must still be a draft.
	got, err := f.statements.GetByID(ctx, statement.ID.String())
	require.NoError(t, err)
	assert.Equal(t, statementdomain.StatementStatusDraft, got.Status)
	assert.Nil(t, got.SentVia)
	assert.Nil(t, got.SentAt)
}

func TestDispatch_EmailUsesCustomerAddress(t *testing.T) {
	f := setupDispatchTest(t)

	ownerID := f.node.Generate()
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)
	statement := f.seedStatement(t, ctx, ownerID, "")

	require.NotNil(t, statement.Customer)
	f.email.On("Send", mock.Anything, []string{statement.Customer.Email}, mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Dispatch(ctx, domain.DispatchRequest{
		StatementID: statement.ID.String(),
		Channel:     statementdomain.DeliveryChannelEmail,
	})
	require.NoError(t, err)
	assert.Empty(t, result.CorrelationID)
	assert.Equal(t, statementdomain.StatementStatusSent, result.Statement.Status)

	f.email.AssertExpectations(t)
}

func TestDispatch_MissingPhone(t *testing.T) {
	f := setupDispatchTest(t)

	ownerID := f.node.Generate()
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)
	statement := f.seedStatement(t, ctx, ownerID, "")

	_, err := f.svc.Dispatch(ctx, domain.DispatchRequest{
		StatementID: statement.ID.String(),
		Channel:     statementdomain.DeliveryChannelWhatsApp,
	})
	assert.ErrorIs(t, err, domain.ErrMissingPhone)
}

func TestDispatch_ManualNeedsNoProvider(t *testing.T) {
	f := setupDispatchTest(t)

	ownerID := f.node.Generate()
	ctx := ownerctx.WithOwnerID(context.Background(), ownerID)
	statement := f.seedStatement(t, ctx, ownerID, "")

	result, err := f.svc.Dispatch(ctx, domain.DispatchRequest{
		StatementID: statement.ID.String(),
		Channel:     statementdomain.DeliveryChannelManual,
	})
	require.NoError(t, err)
	assert.Equal(t, statementdomain.StatementStatusSent, result.Statement.Status)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "123.45", FormatMoney(12345))
	assert.Equal(t, "0.05", FormatMoney(5))
	assert.Equal(t, "-7.50", FormatMoney(-750))
	assert.Equal(t, "0.00", FormatMoney(0))
}
