package service

import (
	"context"
	"fmt"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/dispatch/domain"
	"github.com/billfold/billfold/internal/providers/email"
	"github.com/billfold/billfold/internal/providers/whatsapp"
	statementdomain "github.com/billfold/billfold/internal/statement/domain"
	"github.com/billfold/billfold/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config     config.Config
	Log        *zap.Logger
	Metrics    *telemetry.Metrics `optional:"true"`
	Statements statementdomain.Service
	Email      email.Provider
	WhatsApp   whatsapp.Provider
}

type Service struct {
	cfg        config.Config
	log        *zap.Logger
	metrics    *telemetry.Metrics
	statements statementdomain.Service
	email      email.Provider
	whatsapp   whatsapp.Provider
}

func New(p Params) domain.Service {
	return &Service{
		cfg:        p.Config,
		log:        p.Log.Named("dispatch.service"),
		metrics:    p.Metrics,
		statements: p.Statements,
		email:      p.Email,
		whatsapp:   p.WhatsApp,
	}
}

// Dispatch delivers the statement first and marks it sent only after
// delivery succeeds, so a failed send never leaves a statement
// recorded as sent.
func (s *Service) Dispatch(ctx context.Context, req domain.DispatchRequest) (domain.DispatchResult, error) {
	if !statementdomain.ValidChannel(req.Channel) {
		return domain.DispatchResult{}, statementdomain.ErrInvalidChannel
	}

	statement, err := s.statements.GetByID(ctx, req.StatementID)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	var correlationID string
	switch req.Channel {
	case statementdomain.DeliveryChannelEmail:
		err = s.deliverEmail(ctx, statement)
	case statementdomain.DeliveryChannelWhatsApp:
		correlationID, err = s.deliverWhatsApp(ctx, statement)
	case statementdomain.DeliveryChannelManual:
		// Delivered outside the system; nothing to send.
	}
	if err != nil {
		s.metrics.ObserveDispatch(string(req.Channel), "failed")
		s.log.Warn("statement dispatch failed",
			zap.String("statement_id", statement.ID.String()),
			zap.String("channel", string(req.Channel)),
			zap.Error(err))
		return domain.DispatchResult{}, err
	}

	updated, err := s.statements.MarkSent(ctx, statementdomain.MarkSentRequest{
		ID:      req.StatementID,
		Channel: req.Channel,
		Force:   req.Force,
	})
	if err != nil {
		return domain.DispatchResult{}, err
	}

	s.metrics.ObserveDispatch(string(req.Channel), "ok")

	return domain.DispatchResult{
		Statement:     updated,
		CorrelationID: correlationID,
	}, nil
}

func (s *Service) deliverEmail(ctx context.Context, statement statementdomain.CustomerStatement) error {
	if statement.Customer == nil || statement.Customer.Email == "" {
		return domain.ErrMissingEmail
	}

	data := email.StatementEmailData{
		BusinessName:       s.cfg.AppName,
		CustomerName:       statement.Customer.Name,
		StatementNumber:    statement.StatementNumber,
		PeriodStart:        statement.PeriodStart.Format("2006-01-02"),
		PeriodEnd:          statement.PeriodEnd.Format("2006-01-02"),
		TotalSales:         FormatMoney(statement.TotalSales),
		TotalPayments:      FormatMoney(statement.TotalPayments),
		OutstandingBalance: FormatMoney(statement.OutstandingBalance),
	}
	if err := email.SendStatement(ctx, s.email, statement.Customer.Email, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	return nil
}

func (s *Service) deliverWhatsApp(ctx context.Context, statement statementdomain.CustomerStatement) (string, error) {
	if statement.Customer == nil || statement.Customer.Phone == "" {
		return "", domain.ErrMissingPhone
	}

	message := fmt.Sprintf(
		"Hi %s, your statement %s from %s covers %s to %s. Outstanding balance: %s.",
		statement.Customer.Name,
		statement.StatementNumber,
		s.cfg.AppName,
		statement.PeriodStart.Format("2006-01-02"),
		statement.PeriodEnd.Format("2006-01-02"),
		FormatMoney(statement.OutstandingBalance),
	)

	correlationID, err := s.whatsapp.Send(ctx, statement.Customer.Phone, message)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	return correlationID, nil
}

// FormatMoney renders minor units as a decimal amount.
func FormatMoney(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
