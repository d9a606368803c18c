package service

import (
	"context"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/invoice/domain"
	"github.com/billfold/billfold/internal/ownerctx"
	"github.com/billfold/billfold/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOwner
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return domain.Invoice{}, domain.ErrInvalidNumber
	}

	clientName := strings.TrimSpace(req.ClientName)
	clientEmail := strings.TrimSpace(req.ClientEmail)
	if clientName == "" || clientEmail == "" || !strings.Contains(clientEmail, "@") {
		return domain.Invoice{}, domain.ErrInvalidClient
	}

	if req.IssueDate.IsZero() || req.DueDate.IsZero() || req.DueDate.Before(req.IssueDate) {
		return domain.Invoice{}, domain.ErrInvalidDates
	}
	if len(req.Items) == 0 {
		return domain.Invoice{}, domain.ErrInvalidItems
	}
	if req.TaxAmount < 0 {
		return domain.Invoice{}, domain.ErrInvalidTax
	}

	now := time.Now().UTC()
	invoiceID := s.genID.Generate()

	var subtotal int64
	items := make([]domain.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		description := strings.TrimSpace(item.Description)
		if description == "" || item.Quantity <= 0 || item.UnitAmount < 0 {
			return domain.Invoice{}, domain.ErrInvalidItems
		}
		amount := item.Quantity * item.UnitAmount
		subtotal += amount
		items = append(items, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			OwnerID:     ownerID,
			InvoiceID:   invoiceID,
			Description: description,
			Quantity:    item.Quantity,
			UnitAmount:  item.UnitAmount,
			Amount:      amount,
			CreatedAt:   now,
		})
	}

	invoice := domain.Invoice{
		ID:             invoiceID,
		OwnerID:        ownerID,
		InvoiceNumber:  number,
		ClientName:     clientName,
		ClientEmail:    clientEmail,
		IssueDate:      truncateToDate(req.IssueDate),
		DueDate:        truncateToDate(req.DueDate),
		Status:         domain.InvoiceStatusDraft,
		SubtotalAmount: subtotal,
		TaxAmount:      req.TaxAmount,
		TotalAmount:    subtotal + req.TaxAmount,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice, items); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrNumberExists
		}
		return domain.Invoice{}, err
	}
	invoice.Items = items

	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.Invoice, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}

	filter := domain.ListInvoiceFilter{
		ClientEmail: strings.TrimSpace(req.ClientEmail),
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.InvoiceStatus(raw)
		if !domain.ValidStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	items, err := s.repo.List(ctx, s.db, ownerID, filter)
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoices, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOwner
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, ownerID, parsed)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateInvoiceStatusRequest) error {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.ErrInvalidOwner
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || parsed == 0 {
		return domain.ErrInvalidID
	}
	if !domain.ValidStatus(req.Status) {
		return domain.ErrInvalidStatus
	}

	affected, err := s.repo.UpdateStatus(ctx, s.db, ownerID, parsed, req.Status, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Stats(ctx context.Context) (domain.DashboardStats, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.DashboardStats{}, domain.ErrInvalidOwner
	}
	return s.repo.Stats(ctx, s.db, ownerID)
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
