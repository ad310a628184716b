package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// OrderPostgres is a PostgreSQL implementation of repository.OrderRepository.
type OrderPostgres struct {
	db *sql.DB
}

// NewOrderPostgres creates a new OrderPostgres repository.
func NewOrderPostgres(db *sql.DB) *OrderPostgres {
	return &OrderPostgres{db: db}
}

var _ repository.OrderRepository = (*OrderPostgres)(nil)

const orderColumns = `id, order_number, user_id, customer_name, customer_email, customer_phone,
		shipping_full_name, shipping_phone, shipping_city, shipping_district, shipping_address_line, shipping_postal_code,
		payment_method, status, subtotal, shipping_fee, total, note, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Shipping.FullName, &o.Shipping.Phone, &o.Shipping.City, &o.Shipping.District,
		&o.Shipping.AddressLine, &o.Shipping.PostalCode,
		&o.PaymentMethod, &o.Status, &o.Subtotal, &o.ShippingFee, &o.Total, &o.Note, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts the order, decrements stock for every line and inserts the
// lines in a single transaction.
func (r *OrderPostgres) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const qOrder = `
		INSERT INTO orders (order_number, user_id, customer_name, customer_email, customer_phone,
		                    shipping_full_name, shipping_phone, shipping_city, shipping_district,
		                    shipping_address_line, shipping_postal_code,
		                    payment_method, status, subtotal, shipping_fee, total, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + orderColumns
	out, err := scanOrder(tx.QueryRowContext(ctx, qOrder,
		o.OrderNumber, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.Shipping.FullName, o.Shipping.Phone, o.Shipping.City, o.Shipping.District,
		o.Shipping.AddressLine, o.Shipping.PostalCode,
		o.PaymentMethod, o.Status, o.Subtotal, o.ShippingFee, o.Total, o.Note,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}

	const qStock = `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`
	const qItem = `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	// Rows are locked in product id order so concurrent orders cannot deadlock.
	lines := slices.Clone(o.Items)
	slices.SortStableFunc(lines, func(a, b model.OrderItem) int {
		return strings.Compare(productKey(a), productKey(b))
	})

	out.Items = make([]model.OrderItem, 0, len(lines))
	for _, it := range lines {
		if it.ProductID != nil {
			res, err := tx.ExecContext(ctx, qStock, *it.ProductID, it.Quantity)
			if err != nil {
				return nil, err
			}
			if n, err := res.RowsAffected(); err != nil {
				return nil, err
			} else if n == 0 {
				return nil, fmt.Errorf("%w: %s", repository.ErrInsufficientStock, it.ProductName)
			}
		}

		it.OrderID = out.ID
		if err := tx.QueryRowContext(ctx, qItem,
			out.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, it.LineTotal,
		).Scan(&it.ID); err != nil {
			return nil, err
		}
		out.Items = append(out.Items, it)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID loads an order together with its items.
func (r *OrderPostgres) FindByID(ctx context.Context, id string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.findOne(ctx, q, id)
}

// FindByNumber loads an order by its public number.
func (r *OrderPostgres) FindByNumber(ctx context.Context, number string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return r.findOne(ctx, q, number)
}

func (r *OrderPostgres) findOne(ctx context.Context, q string, arg string) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, err
	}
	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderPostgres) items(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	const q = `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name, id
	`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByUser returns a customer's orders newest first. Items are not loaded.
func (r *OrderPostgres) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	const qCount = `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	const qList = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	return r.page(ctx, qCount, qList, userID, pq)
}

func (r *OrderPostgres) List(ctx context.Context, status string, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	const qCount = `SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`
	const qList = `SELECT ` + orderColumns + ` FROM orders WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	return r.page(ctx, qCount, qList, status, pq)
}

func (r *OrderPostgres) page(ctx context.Context, qCount, qList, arg string, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	pq = clampPage(pq)

	var total int
	if err := r.db.QueryRowContext(ctx, qCount, arg).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, qList, arg, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Order]{Items: items, Total: total}, nil
}

// UpdateStatus moves the order from one status to another and, when restock
// is true, returns every line's quantity to its product in the same
// transaction. The write only applies while the order is still in from.
func (r *OrderPostgres) UpdateStatus(ctx context.Context, id, from, to string, restock bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`, id, to, from)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	if restock {
		const q = `
			UPDATE products p
			SET stock = p.stock + oi.quantity, updated_at = now()
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id`
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func productKey(it model.OrderItem) string {
	if it.ProductID == nil {
		return ""
	}
	return *it.ProductID
}
