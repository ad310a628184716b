// Package notify sends transactional e-mails about orders.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v3"

	"wallapi/internal/i18n"
	"wallapi/internal/model"
)

// Notifier is told about order events. Implementations must not block checkout
// on delivery problems beyond the returned error.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *model.Order, lang string) error
}

// Noop discards notifications; used when mail is not configured.
type Noop struct{}

func (Noop) OrderPlaced(context.Context, *model.Order, string) error { return nil }

// emailSender is the part of the Resend client this package uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier delivers order mails through the Resend API.
type ResendNotifier struct {
	emails   emailSender
	from     string
	siteURL  string
	currency string
	catalog  *i18n.Catalog
}

// NewResend builds a Notifier from an API key; without a key or sender
// address it returns Noop.
func NewResend(apiKey, from, siteURL, currency string, catalog *i18n.Catalog) Notifier {
	if apiKey == "" || from == "" {
		return Noop{}
	}
	return &ResendNotifier{
		emails:   resend.NewClient(apiKey).Emails,
		from:     from,
		siteURL:  strings.TrimRight(siteURL, "/"),
		currency: currency,
		catalog:  catalog,
	}
}

// OrderPlaced mails the customer a localized confirmation with a tracking link.
func (n *ResendNotifier) OrderPlaced(ctx context.Context, o *model.Order, lang string) error {
	loc := n.catalog.Localizer(lang)
	trackURL := fmt.Sprintf("%s/siparis-takip?no=%s", n.siteURL, o.OrderNumber)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"></head><body style=\"font-family:Arial,Helvetica,sans-serif;color:#1f2937;\">")
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(loc.T("mail.order_greeting", "name", o.CustomerName)))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(loc.T("mail.order_body",
		"number", o.OrderNumber, "total", o.Total.StringFixed(2), "currency", n.currency)))
	b.WriteString(`<table cellpadding="6" style="border-collapse:collapse;">`)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>x%d</td><td style=\"text-align:right;\">%s</td></tr>",
			html.EscapeString(it.ProductName), it.Quantity, it.LineTotal.StringFixed(2))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, html.EscapeString(trackURL),
		html.EscapeString(loc.T("mail.order_track", "url", trackURL)))
	b.WriteString("</body></html>")

	_, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{o.CustomerEmail},
		Subject: loc.T("mail.order_subject", "number", o.OrderNumber),
		Html:    b.String(),
	})
	if err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	return nil
}
