package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

const mysqlDupEntry = 1062

// MySQLAdapter backs the product store, the distribution journal and the
// user repository with one database. Quantity adjustments use a conditional
// UPDATE so two writers can never jointly overdraw stock even across
// processes.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Get(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, status, quantity, created_at, created_by
		FROM products WHERE id = ?`, productID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Status, &p.Quantity, &p.CreatedAt, &p.CreatedBy)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, storeErr("query product", err)
	}

	return &p, nil
}

func (m *MySQLAdapter) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, description, category, status, quantity, created_at, created_by
		FROM products ORDER BY created_at ASC`)
	if err != nil {
		return nil, storeErr("query products", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Status, &p.Quantity, &p.CreatedAt, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) Create(ctx context.Context, p domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, category, status, quantity, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Category, p.Status, p.Quantity, p.CreatedAt, p.CreatedBy,
	)
	if isDupEntry(err) {
		return domain.ErrDuplicateRecord
	}
	if err != nil {
		return storeErr("insert product", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateDetails(ctx context.Context, p domain.Product) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products SET name = ?, description = ?, category = ?, status = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Category, p.Status, p.ID,
	)
	if err != nil {
		return storeErr("update product", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, productID string) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, productID)
	if err != nil {
		return storeErr("delete product", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (m *MySQLAdapter) AdjustQuantity(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity + ?
		WHERE id = ? AND quantity + ? >= 0`,
		delta, productID, delta,
	)
	if err != nil {
		return nil, storeErr("adjust quantity", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either the product is missing or the adjustment would go negative.
		current, err := m.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			Requested: -delta,
			Available: current.Quantity,
		}
	}

	return m.Get(ctx, productID)
}

func (m *MySQLAdapter) Append(ctx context.Context, rec domain.DistributionRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO distributions
			(id, product_id, product_name, distributed_to, distributed_quantity,
			 description, created_at, created_by, created_by_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProductID, rec.ProductName, rec.DistributedTo, rec.DistributedQuantity,
		rec.Description, rec.CreatedAt, rec.CreatedBy, rec.CreatedByName,
	)
	if isDupEntry(err) {
		return domain.ErrDuplicateRecord
	}
	if err != nil {
		return storeErr("insert distribution", err)
	}
	return nil
}

func (m *MySQLAdapter) ListByProduct(ctx context.Context, productID string) ([]domain.DistributionRecord, error) {
	return m.listDistributions(ctx, `
		SELECT id, product_id, product_name, distributed_to, distributed_quantity,
		       description, created_at, created_by, created_by_name
		FROM distributions WHERE product_id = ? ORDER BY created_at ASC, id ASC`, productID)
}

func (m *MySQLAdapter) ListAll(ctx context.Context) ([]domain.DistributionRecord, error) {
	return m.listDistributions(ctx, `
		SELECT id, product_id, product_name, distributed_to, distributed_quantity,
		       description, created_at, created_by, created_by_name
		FROM distributions ORDER BY created_at ASC, id ASC`)
}

func (m *MySQLAdapter) listDistributions(ctx context.Context, query string, args ...any) ([]domain.DistributionRecord, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query distributions", err)
	}
	defer rows.Close()

	var records []domain.DistributionRecord
	for rows.Next() {
		var rec domain.DistributionRecord
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.ProductName, &rec.DistributedTo,
			&rec.DistributedQuantity, &rec.Description, &rec.CreatedAt, &rec.CreatedBy, &rec.CreatedByName); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (m *MySQLAdapter) CreateUser(ctx context.Context, u domain.User) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if isDupEntry(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return storeErr("insert user", err)
	}
	return nil
}

func (m *MySQLAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("query user", err)
	}

	return &u, nil
}

func (m *MySQLAdapter) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, storeErr("count users", err)
	}
	return n, nil
}

func isDupEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDupEntry
}

// storeErr surfaces connectivity failures as the recoverable
// store-unavailable condition instead of an opaque driver error. Refused and
// dropped connections arrive as net errors, not as driver.ErrBadConn.
func storeErr(op string, err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &ne):
		return fmt.Errorf("%s: %w", op, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
