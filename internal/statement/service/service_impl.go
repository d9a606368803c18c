package service

import (
	"context"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/clock"
	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	invoicedomain "github.com/billfold/billfold/internal/invoice/domain"
	"github.com/billfold/billfold/internal/ownerctx"
	paymentdomain "github.com/billfold/billfold/internal/payment/domain"
	"github.com/billfold/billfold/internal/statement/domain"
	"github.com/billfold/billfold/pkg/db"
	"github.com/billfold/billfold/pkg/db/pagination"
	"github.com/billfold/billfold/pkg/telemetry"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultStatementWindow is the lookback applied when a request does not
// pin its own period.
const defaultStatementWindow = 90 * 24 * time.Hour

// unknownCustomerName is reported when the customer record behind a
// statement request cannot be resolved.
const unknownCustomerName = "Unknown Customer"

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Metrics      *telemetry.Metrics `optional:"true"`
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	PaymentRepo  paymentdomain.Repository
	InvoiceRepo  invoicedomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	metrics      *telemetry.Metrics
	repo         domain.Repository
	customerRepo customerdomain.Repository
	paymentRepo  paymentdomain.Repository
	invoiceRepo  invoicedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("statement.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		metrics:      p.Metrics,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		paymentRepo:  p.PaymentRepo,
		invoiceRepo:  p.InvoiceRepo,
	}
}

// Generate computes a statement summary without persisting anything.
// The customer is looked up by email, so a preview works even before
// the customer record exists: a missing record degrades to a
// placeholder instead of failing, and lookup errors on either
// aggregate degrade that side of the balance to zero so one broken
// source cannot block the whole statement.
func (s *Service) Generate(ctx context.Context, req domain.GenerateStatementRequest) (domain.StatementSummary, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.StatementSummary{}, domain.ErrInvalidOwner
	}

	email := strings.TrimSpace(req.CustomerEmail)
	if email == "" {
		return domain.StatementSummary{}, domain.ErrInvalidCustomerEmail
	}

	from, to, err := s.resolvePeriod(req.From, req.To)
	if err != nil {
		return domain.StatementSummary{}, err
	}

	summary, degraded := s.compute(ctx, ownerID, email, from, to)

	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	s.metrics.ObserveStatementGenerated(outcome)

	return summary, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateStatementRequest) (domain.CustomerStatement, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.CustomerStatement{}, domain.ErrInvalidOwner
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.CustomerStatement{}, domain.ErrInvalidCustomerID
	}

	number := strings.TrimSpace(req.StatementNumber)
	if number == "" {
		return domain.CustomerStatement{}, domain.ErrInvalidStatementNumber
	}

	from, to, err := s.resolvePeriod(req.From, req.To)
	if err != nil {
		return domain.CustomerStatement{}, err
	}

	// A draft is a snapshot tied to a real customer; unlike Generate,
	// a missing record here is an error rather than a placeholder.
	customer, err := s.customerRepo.FindByID(ctx, s.db, ownerID, customerID)
	if err != nil {
		return domain.CustomerStatement{}, err
	}
	if customer == nil {
		return domain.CustomerStatement{}, domain.ErrCustomerNotFound
	}

	summary, _ := s.compute(ctx, ownerID, customer.Email, from, to)

	now := s.clock.Now().UTC()
	statement := domain.CustomerStatement{
		ID:                 s.genID.Generate(),
		OwnerID:            ownerID,
		CustomerID:         customerID,
		StatementNumber:    number,
		PeriodStart:        from,
		PeriodEnd:          to,
		TotalSales:         summary.TotalSales,
		TotalPayments:      summary.TotalPayments,
		OutstandingBalance: summary.OutstandingBalance,
		Status:             domain.StatementStatusDraft,
		Notes:              strings.TrimSpace(req.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, &statement); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.CustomerStatement{}, domain.ErrDuplicateNumber
		}
		return domain.CustomerStatement{}, err
	}

	s.metrics.ObserveStatementCreated()
	statement.Customer = customer

	return statement, nil
}

func (s *Service) List(ctx context.Context, req domain.ListStatementsRequest) (domain.ListStatementsResponse, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.ListStatementsResponse{}, domain.ErrInvalidOwner
	}

	filter := domain.ListStatementFilter{
		From: req.From,
		To:   req.To,
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil || customerID == 0 {
			return domain.ListStatementsResponse{}, domain.ErrInvalidCustomerID
		}
		filter.CustomerID = customerID
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.StatementStatus(raw)
		if status != domain.StatementStatusDraft && status != domain.StatementStatusSent {
			return domain.ListStatementsResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return domain.ListStatementsResponse{}, domain.ErrInvalidDateRange
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, ownerID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListStatementsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(statement *domain.CustomerStatement) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        statement.ID.String(),
			CreatedAt: statement.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	statements := make([]domain.CustomerStatement, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		statements = append(statements, *item)
	}
	s.attachCustomers(ctx, ownerID, statements)

	resp := domain.ListStatementsResponse{Statements: statements}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.CustomerStatement, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.CustomerStatement{}, domain.ErrInvalidOwner
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.CustomerStatement{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, ownerID, parsed)
	if err != nil {
		return domain.CustomerStatement{}, err
	}
	if item == nil {
		return domain.CustomerStatement{}, domain.ErrNotFound
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, ownerID, item.CustomerID)
	if err == nil && customer != nil {
		item.Customer = customer
	}

	return *item, nil
}

// MarkSent records delivery of a statement. By default only drafts can
// be marked; Force overwrites an earlier send instead of rejecting it.
func (s *Service) MarkSent(ctx context.Context, req domain.MarkSentRequest) (domain.CustomerStatement, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.CustomerStatement{}, domain.ErrInvalidOwner
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.CustomerStatement{}, domain.ErrInvalidID
	}
	if !domain.ValidChannel(req.Channel) {
		return domain.CustomerStatement{}, domain.ErrInvalidChannel
	}

	sentAt := s.clock.Now().UTC()
	affected, err := s.repo.MarkSent(ctx, s.db, ownerID, id, req.Channel, sentAt, !req.Force)
	if err != nil {
		return domain.CustomerStatement{}, err
	}
	if affected == 0 {
		existing, findErr := s.repo.FindByID(ctx, s.db, ownerID, id)
		if findErr != nil {
			return domain.CustomerStatement{}, findErr
		}
		if existing == nil {
			return domain.CustomerStatement{}, domain.ErrNotFound
		}
		return domain.CustomerStatement{}, domain.ErrAlreadySent
	}

	s.metrics.ObserveStatementSent(string(req.Channel))

	item, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return domain.CustomerStatement{}, err
	}
	if item == nil {
		return domain.CustomerStatement{}, domain.ErrNotFound
	}
	return *item, nil
}

// compute resolves the customer by email and runs both aggregates. It
// never fails: unresolvable lookups collapse to zero and the degraded
// flag reports whether any side did. When the customer record does not
// exist yet, payments are still summed against the zero-sentinel
// customer id and sales stay zero.
func (s *Service) compute(ctx context.Context, ownerID snowflake.ID, customerEmail string, from, to time.Time) (domain.StatementSummary, bool) {
	degraded := false
	resolved := false

	customerID := snowflake.ID(0)
	customerName := unknownCustomerName
	customerPhone := ""
	customerAddress := ""

	customer, err := s.customerRepo.FindByEmail(ctx, s.db, ownerID, customerEmail)
	switch {
	case err != nil:
		s.log.Warn("customer lookup failed, using placeholder",
			zap.String("customer_email", customerEmail),
			zap.Error(err))
		s.metrics.ObserveDegradedLookup("customer")
		degraded = true
	case customer == nil:
		s.metrics.ObserveDegradedLookup("customer")
		degraded = true
	default:
		resolved = true
		customerID = customer.ID
		customerName = customer.Name
		customerPhone = customer.Phone
		customerAddress = customer.Address
	}

	var totalPayments, paymentCount int64
	totalPayments, paymentCount, err = s.paymentRepo.SumForCustomer(ctx, s.db, ownerID, customerID, from, to)
	if err != nil {
		s.log.Warn("payments lookup failed, degrading to zero",
			zap.String("customer_email", customerEmail),
			zap.Error(err))
		s.metrics.ObserveDegradedLookup("payments")
		degraded = true
		totalPayments, paymentCount = 0, 0
	}

	var totalSales, invoiceCount int64
	if resolved {
		totalSales, invoiceCount, err = s.invoiceRepo.SumForClientEmail(ctx, s.db, ownerID, customerEmail, from, to)
		if err != nil {
			s.log.Warn("sales lookup failed, degrading to zero",
				zap.String("customer_email", customerEmail),
				zap.Error(err))
			s.metrics.ObserveDegradedLookup("invoices")
			degraded = true
			totalSales, invoiceCount = 0, 0
		}
	}

	return domain.StatementSummary{
		CustomerID:         customerID,
		CustomerName:       customerName,
		CustomerEmail:      customerEmail,
		CustomerPhone:      customerPhone,
		CustomerAddress:    customerAddress,
		PeriodStart:        from,
		PeriodEnd:          to,
		TotalSales:         totalSales,
		TotalPayments:      totalPayments,
		InvoiceCount:       invoiceCount,
		PaymentCount:       paymentCount,
		OutstandingBalance: totalSales - totalPayments,
	}, degraded
}

// resolvePeriod normalizes the requested window to date granularity,
// filling in the default lookback when either bound is missing.
func (s *Service) resolvePeriod(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = s.clock.Now()
	}
	if from.IsZero() {
		from = to.Add(-defaultStatementWindow)
	}
	from = truncateToDate(from)
	to = truncateToDate(to)
	if to.Before(from) {
		return time.Time{}, time.Time{}, domain.ErrInvalidDateRange
	}
	return from, to, nil
}

func (s *Service) attachCustomers(ctx context.Context, ownerID snowflake.ID, statements []domain.CustomerStatement) {
	if len(statements) == 0 {
		return
	}

	seen := make(map[snowflake.ID]struct{}, len(statements))
	ids := make([]snowflake.ID, 0, len(statements))
	for _, statement := range statements {
		if _, ok := seen[statement.CustomerID]; ok {
			continue
		}
		seen[statement.CustomerID] = struct{}{}
		ids = append(ids, statement.CustomerID)
	}

	customers, err := s.customerRepo.FindByIDs(ctx, s.db, ownerID, ids)
	if err != nil {
		s.log.Warn("customer batch lookup failed", zap.Error(err))
		return
	}

	byID := make(map[snowflake.ID]*customerdomain.Customer, len(customers))
	for _, customer := range customers {
		if customer != nil {
			byID[customer.ID] = customer
		}
	}
	for i := range statements {
		if customer, ok := byID[statements[i].CustomerID]; ok {
			statements[i].Customer = customer
		}
	}
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
