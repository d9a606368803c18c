package service

import (
	"context"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/clock"
	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	"github.com/billfold/billfold/internal/ownerctx"
	"github.com/billfold/billfold/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payment.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordPaymentRequest) (domain.Payment, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Payment{}, domain.ErrInvalidOwner
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Payment{}, domain.ErrInvalidCustomerID
	}

	if req.Amount < 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	if req.PaymentDate.IsZero() {
		return domain.Payment{}, domain.ErrInvalidDate
	}

	method := req.PaymentMethod
	if method == "" {
		method = domain.MethodCash
	}
	if !domain.ValidMethod(method) {
		return domain.Payment{}, domain.ErrInvalidMethod
	}

	var invoiceID *snowflake.ID
	if raw := strings.TrimSpace(req.InvoiceID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return domain.Payment{}, domain.ErrInvalidInvoiceID
		}
		invoiceID = &parsed
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, ownerID, customerID)
	if err != nil {
		return domain.Payment{}, err
	}
	if customer == nil {
		return domain.Payment{}, domain.ErrCustomerNotFound
	}

	now := s.clock.Now().UTC()
	payment := domain.Payment{
		ID:              s.genID.Generate(),
		OwnerID:         ownerID,
		InvoiceID:       invoiceID,
		CustomerID:      customerID,
		Amount:          req.Amount,
		PaymentDate:     truncateToDate(req.PaymentDate),
		PaymentMethod:   method,
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return domain.Payment{}, err
	}

	return payment, nil
}

func (s *Service) ListByCustomer(ctx context.Context, req domain.ListPaymentsRequest) ([]domain.Payment, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return nil, domain.ErrInvalidCustomerID
	}

	items, err := s.repo.ListByCustomer(ctx, s.db, ownerID, customerID)
	if err != nil {
		return nil, err
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}
	return payments, nil
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
