package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapi/internal/i18n"
	"wallapi/internal/model"
)

type fakeSender struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeSender) SendWithContext(_ context.Context, p *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "em_1"}, nil
}

func testOrder() *model.Order {
	return &model.Order{
		OrderNumber:   "DK-20240501-ABC123",
		CustomerName:  "Ayşe <Yılmaz>",
		CustomerEmail: "ayse@example.com",
		Total:         decimal.RequireFromString("1049.9"),
		Items: []model.OrderItem{
			{ProductName: "Orman Desenli", Quantity: 2, LineTotal: decimal.RequireFromString("900")},
		},
	}
}

func TestNewResend_NoopWithoutKey(t *testing.T) {
	n := NewResend("", "shop@example.com", "https://example.com", "TRY", i18n.MustDefault())
	assert.IsType(t, Noop{}, n)
	assert.NoError(t, n.OrderPlaced(context.Background(), testOrder(), "tr"))
}

func TestResendNotifier_OrderPlaced(t *testing.T) {
	fake := &fakeSender{}
	n := &ResendNotifier{emails: fake, from: "Mağaza <shop@example.com>", siteURL: "https://example.com", currency: "TRY", catalog: i18n.MustDefault()}

	require.NoError(t, n.OrderPlaced(context.Background(), testOrder(), "tr"))

	require.NotNil(t, fake.got)
	assert.Equal(t, []string{"ayse@example.com"}, fake.got.To)
	assert.Equal(t, "Siparişiniz alındı: DK-20240501-ABC123", fake.got.Subject)
	assert.Contains(t, fake.got.Html, "1049.90 TRY")
	assert.Contains(t, fake.got.Html, "Ayşe &lt;Yılmaz&gt;")
	assert.Contains(t, fake.got.Html, "https://example.com/siparis-takip?no=DK-20240501-ABC123")

	require.NoError(t, n.OrderPlaced(context.Background(), testOrder(), "en"))
	assert.Equal(t, "Order received: DK-20240501-ABC123", fake.got.Subject)
}

func TestResendNotifier_Error(t *testing.T) {
	fake := &fakeSender{err: errors.New("rate limited")}
	n := &ResendNotifier{emails: fake, catalog: i18n.MustDefault()}

	err := n.OrderPlaced(context.Background(), testOrder(), "tr")
	assert.ErrorContains(t, err, "send order confirmation")
}
