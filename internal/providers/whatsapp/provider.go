package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrMissingPhone = errors.New("missing_phone_number")

// Provider delivers statement messages over WhatsApp. Send returns a
// correlation id for the dispatched message.
type Provider interface {
	Send(ctx context.Context, phone string, message string) (string, error)
}

// SimulatedProvider stands in for a WhatsApp Business API integration.
// It validates the request and logs the message instead of delivering
// it, and still hands back a correlation id so callers can treat it
// like the real thing.
type SimulatedProvider struct {
	log      *zap.Logger
	senderID string
}

func NewSimulated(log *zap.Logger, cfg config.Config) Provider {
	return &SimulatedProvider{
		log:      log.Named("providers.whatsapp"),
		senderID: cfg.WhatsApp.SenderID,
	}
}

var Module = fx.Module("providers.whatsapp",
	fx.Provide(NewSimulated),
)

func (p *SimulatedProvider) Send(ctx context.Context, phone string, message string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrMissingPhone
	}

	messageID := fmt.Sprintf("wa_%d", time.Now().UnixMilli())
	p.log.Info("simulated whatsapp delivery",
		zap.String("sender_id", p.senderID),
		zap.String("phone", phone),
		zap.String("message_id", messageID),
		zap.Int("message_length", len(message)),
	)

	return messageID, nil
}
