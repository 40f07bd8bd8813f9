// Package notify delivers low-stock alerts.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// LogNotifier writes alerts to the structured log
type LogNotifier struct{}

// NotifyLowStock logs a warning for the item
func (LogNotifier) NotifyLowStock(ctx context.Context, item models.InventoryItem) error {
	log.Warn().
		Str("item_id", item.ID).
		Str("name", item.Name).
		Int("stock", item.Stock).
		Int("reorder_level", item.ReorderLevel).
		Msg("Item at or below reorder level")
	return nil
}

// SendGridConfig configures the e-mail notifier
type SendGridConfig struct {
	APIKey string
	From   string
	To     string
	// Host overrides the SendGrid API host; empty means the public API
	Host string
}

// SendGridNotifier e-mails alerts through SendGrid. A client is built per
// send because sendgrid.Client keeps the request body on itself.
type SendGridNotifier struct {
	apiKey string
	host   string
	from   *mail.Email
	to     *mail.Email
}

// NewSendGridNotifier validates cfg and builds the notifier
func NewSendGridNotifier(cfg SendGridConfig) (*SendGridNotifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("sendgrid api key is empty")
	}
	if cfg.From == "" {
		return nil, errors.New("alert from address is empty")
	}
	if cfg.To == "" {
		return nil, errors.New("alert to address is empty")
	}

	return &SendGridNotifier{
		apiKey: cfg.APIKey,
		host:   cfg.Host,
		from:   mail.NewEmail("Inventory Assistant", cfg.From),
		to:     mail.NewEmail("", cfg.To),
	}, nil
}

// NotifyLowStock sends one e-mail for the item
func (n *SendGridNotifier) NotifyLowStock(ctx context.Context, item models.InventoryItem) error {
	subject := fmt.Sprintf("Low stock: %s", item.Name)
	body := alertBody(item)
	message := mail.NewSingleEmail(n.from, subject, n.to, body, "<pre>"+html.EscapeString(body)+"</pre>")

	request := sendgrid.GetRequest(n.apiKey, "/v3/mail/send", n.host)
	request.Method = "POST"
	client := &sendgrid.Client{Request: request}

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return models.NewSystemError(models.ErrorCodeNotificationFail, "sendgrid-notifier", "failed to send low-stock alert", err)
	}
	if response.StatusCode >= 400 {
		log.Error().Int("status", response.StatusCode).Str("body", response.Body).Msg("SendGrid rejected low-stock alert")
		return models.NewSystemError(models.ErrorCodeNotificationFail, "sendgrid-notifier",
			fmt.Sprintf("sendgrid send failed: status=%d", response.StatusCode), nil)
	}

	log.Info().Str("item_id", item.ID).Int("status", response.StatusCode).Msg("Sent low-stock alert")
	return nil
}

func alertBody(item models.InventoryItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is at %d units, at or below its reorder level of %d.\n", item.Name, item.Stock, item.ReorderLevel)
	if item.Supplier != "" {
		fmt.Fprintf(&b, "Supplier: %s\n", item.Supplier)
	}
	fmt.Fprintf(&b, "Item ID: %s\n", item.ID)
	return b.String()
}
