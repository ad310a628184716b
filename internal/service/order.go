package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wallapi/internal/model"
	"wallapi/internal/notify"
	"wallapi/internal/repository"
)

// CartItem is one checkout line.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ShippingInput is an inline shipping address.
type ShippingInput struct {
	FullName    string  `json:"full_name"`
	Phone       string  `json:"phone"`
	City        string  `json:"city"`
	District    string  `json:"district"`
	AddressLine string  `json:"address_line"`
	PostalCode  *string `json:"postal_code"`
}

// CheckoutInput is the storefront order payload. Signed-in customers may
// reference a saved address instead of sending one inline.
type CheckoutInput struct {
	Items         []CartItem     `json:"items"`
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email"`
	CustomerPhone string         `json:"customer_phone"`
	AddressID     *string        `json:"address_id"`
	Shipping      *ShippingInput `json:"shipping"`
	PaymentMethod string         `json:"payment_method"`
	Note          *string        `json:"note"`
}

// OrderConfig holds checkout pricing.
type OrderConfig struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	// Location dates order numbers.
	Location *time.Location
}

// OrderService covers checkout, customer order history, public tracking and
// back-office status management.
type OrderService interface {
	// Checkout places an order. userID is nil for guest checkout.
	Checkout(ctx context.Context, userID *string, in CheckoutInput, lang string) (*model.Order, error)
	ListMine(ctx context.Context, userID string, limit, offset int) (*ListResult[model.Order], error)
	// GetMine returns ErrNotFound for orders of other users.
	GetMine(ctx context.Context, userID, id string) (*model.Order, error)
	// Track matches the order number and the customer e-mail case-insensitively.
	Track(ctx context.Context, number, email string) (*model.Order, error)
	List(ctx context.Context, status string, limit, offset int) (*ListResult[model.Order], error)
	Get(ctx context.Context, id string) (*model.Order, error)
	// UpdateStatus restocks the items when an order is cancelled.
	UpdateStatus(ctx context.Context, id, status string) (*model.Order, error)
}

const (
	maxItemQuantity   = 99
	maxCheckoutLines  = 50
	orderNumberPrefix = "DK"
	orderNumberChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	numberAttempts    = 3
)

type orderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	addresses repository.AddressRepository
	notifier  notify.Notifier
	cfg       OrderConfig
	log       *zap.Logger
	now       func() time.Time

	placed *prometheus.CounterVec
}

// NewOrderService registers the orders_placed_total counter on reg.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, addresses repository.AddressRepository,
	notifier notify.Notifier, cfg OrderConfig, log *zap.Logger, reg prometheus.Registerer) (OrderService, error) {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	placed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of orders placed, by payment method.",
		},
		[]string{"payment_method"},
	)
	if err := reg.Register(placed); err != nil {
		return nil, err
	}
	return &orderService{
		orders:    orders,
		products:  products,
		addresses: addresses,
		notifier:  notifier,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		placed:    placed,
	}, nil
}

func (s *orderService) Checkout(ctx context.Context, userID *string, in CheckoutInput, lang string) (*model.Order, error) {
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}
	o, err := s.contact(in)
	if err != nil {
		return nil, err
	}
	o.UserID = userID
	if o.Shipping, err = s.shipping(ctx, userID, in); err != nil {
		return nil, err
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	o.Subtotal = decimal.Zero
	for i, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.IsActive {
			return nil, invalid(fmt.Sprintf("items[%d].product_id", i), ReasonInvalid)
		}
		if p.Stock < l.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}
		pid := p.ID
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		o.Items = append(o.Items, model.OrderItem{
			ProductID:   &pid,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    l.Quantity,
			LineTotal:   lineTotal,
		})
		o.Subtotal = o.Subtotal.Add(lineTotal)
	}
	o.ShippingFee = s.shippingFee(o.Subtotal)
	o.Total = o.Subtotal.Add(o.ShippingFee)
	o.Status = model.OrderPending

	created, err := s.create(ctx, o)
	if err != nil {
		return nil, err
	}
	s.placed.WithLabelValues(created.PaymentMethod).Inc()
	s.log.Info("order_placed",
		zap.String("order_number", created.OrderNumber),
		zap.String("total", created.Total.StringFixed(2)),
		zap.Int("items", len(created.Items)))

	if err := s.notifier.OrderPlaced(ctx, created, lang); err != nil {
		s.log.Warn("order_notification_failed", zap.String("order_number", created.OrderNumber), zap.Error(err))
	}
	return created, nil
}

// create retries on order number collisions.
func (s *orderService) create(ctx context.Context, o *model.Order) (*model.Order, error) {
	for attempt := 1; ; attempt++ {
		number, err := s.orderNumber()
		if err != nil {
			return nil, err
		}
		o.OrderNumber = number
		created, err := s.orders.Create(ctx, o)
		switch {
		case err == nil:
			return created, nil
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, strings.TrimPrefix(err.Error(), repository.ErrInsufficientStock.Error()+": "))
		case errors.Is(err, repository.ErrDuplicate) && attempt < numberAttempts:
			continue
		default:
			return nil, fmt.Errorf("create order: %w", err)
		}
	}
}

func (s *orderService) shippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if s.cfg.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(s.cfg.FreeShippingThreshold) {
		return decimal.Zero
	}
	return s.cfg.ShippingFee
}

// orderNumber returns DK-YYYYMMDD-XXXXXX.
func (s *orderService) orderNumber() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberChars[int(b)%len(orderNumberChars)]
	}
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, s.now().In(s.cfg.Location).Format("20060102"), buf), nil
}

func mergeLines(items []CartItem) ([]CartItem, error) {
	if len(items) == 0 {
		return nil, invalid("items", ReasonRequired)
	}
	if len(items) > maxCheckoutLines {
		return nil, invalid("items", ReasonTooLong)
	}
	merged := make([]CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return nil, invalid(fmt.Sprintf("items[%d].product_id", i), ReasonRequired)
		}
		pid, err := uuid.Parse(strings.TrimSpace(it.ProductID))
		if err != nil {
			return nil, invalid(fmt.Sprintf("items[%d].product_id", i), ReasonInvalid)
		}
		id := pid.String()
		if it.Quantity < 1 {
			return nil, invalid(fmt.Sprintf("items[%d].quantity", i), ReasonOutOfRange)
		}
		if j, ok := index[id]; ok {
			merged[j].Quantity += it.Quantity
			if merged[j].Quantity > maxItemQuantity {
				return nil, invalid(fmt.Sprintf("items[%d].quantity", i), ReasonOutOfRange)
			}
			continue
		}
		if it.Quantity > maxItemQuantity {
			return nil, invalid(fmt.Sprintf("items[%d].quantity", i), ReasonOutOfRange)
		}
		index[id] = len(merged)
		merged = append(merged, CartItem{ProductID: id, Quantity: it.Quantity})
	}
	return merged, nil
}

func (s *orderService) contact(in CheckoutInput) (*model.Order, error) {
	name, err := requireText("customer_name", in.CustomerName, 120)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail("customer_email", in.CustomerEmail)
	if err != nil {
		return nil, err
	}
	phone, err := requireText("customer_phone", in.CustomerPhone, 30)
	if err != nil {
		return nil, err
	}
	if !model.ValidPaymentMethod(in.PaymentMethod) {
		return nil, invalid("payment_method", ReasonInvalid)
	}
	note := optionalText(in.Note)
	if note != nil && len([]rune(*note)) > 1000 {
		return nil, invalid("note", ReasonTooLong)
	}
	return &model.Order{
		CustomerName:  name,
		CustomerEmail: email,
		CustomerPhone: phone,
		PaymentMethod: in.PaymentMethod,
		Note:          note,
	}, nil
}

func (s *orderService) shipping(ctx context.Context, userID *string, in CheckoutInput) (model.ShippingAddress, error) {
	if addrID := optionalText(in.AddressID); addrID != nil {
		parsed, err := uuid.Parse(*addrID)
		if userID == nil || err != nil {
			return model.ShippingAddress{}, invalid("address_id", ReasonInvalid)
		}
		a, err := s.addresses.FindByID(ctx, *userID, parsed.String())
		if err != nil {
			if errors.Is(notFound(err), ErrNotFound) {
				return model.ShippingAddress{}, invalid("address_id", ReasonInvalid)
			}
			return model.ShippingAddress{}, err
		}
		return a.ToShipping(), nil
	}
	if in.Shipping == nil {
		return model.ShippingAddress{}, invalid("shipping", ReasonRequired)
	}
	return shippingFromInput("shipping.", *in.Shipping)
}

func shippingFromInput(prefix string, in ShippingInput) (model.ShippingAddress, error) {
	var (
		out model.ShippingAddress
		err error
	)
	if out.FullName, err = requireText(prefix+"full_name", in.FullName, 120); err != nil {
		return out, err
	}
	if out.Phone, err = requireText(prefix+"phone", in.Phone, 30); err != nil {
		return out, err
	}
	if out.City, err = requireText(prefix+"city", in.City, 80); err != nil {
		return out, err
	}
	if out.District, err = requireText(prefix+"district", in.District, 80); err != nil {
		return out, err
	}
	if out.AddressLine, err = requireText(prefix+"address_line", in.AddressLine, 500); err != nil {
		return out, err
	}
	out.PostalCode = optionalText(in.PostalCode)
	return out, nil
}

func (s *orderService) ListMine(ctx context.Context, userID string, limit, offset int) (*ListResult[model.Order], error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	pq := page(limit, offset, 20, 100)
	res, err := s.orders.ListByUser(ctx, userID, pq)
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Order]{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *orderService) GetMine(ctx context.Context, userID, id string) (*model.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *orderService) Track(ctx context.Context, number, email string) (*model.Order, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	email = strings.TrimSpace(email)
	if number == "" {
		return nil, invalid("order_number", ReasonRequired)
	}
	if email == "" {
		return nil, invalid("email", ReasonRequired)
	}
	o, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, notFound(err)
	}
	if !strings.EqualFold(o.CustomerEmail, email) {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, status string, limit, offset int) (*ListResult[model.Order], error) {
	if status != "" && !model.ValidOrderStatus(status) {
		return nil, invalid("status", ReasonInvalid)
	}
	pq := page(limit, offset, 20, 100)
	res, err := s.orders.List(ctx, status, pq)
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Order]{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id, status string) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, invalid("status", ReasonInvalid)
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(o.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, status)
	}
	err = s.orders.UpdateStatus(ctx, id, o.Status, status, status == model.OrderCancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, o.OrderNumber)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("order_status_changed",
		zap.String("order_number", o.OrderNumber),
		zap.String("from", o.Status),
		zap.String("to", status))
	return s.Get(ctx, id)
}
