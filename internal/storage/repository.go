package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budget/internal/core"
	"budget/internal/log"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLRepository implements Store on top of database/sql for SQLite and PostgreSQL.
type SQLRepository struct {
	conn *sql.DB
	db   *DB
}

var _ Store = (*SQLRepository)(nil)

// SQLiteDSN enables foreign keys and a busy timeout on every pooled connection.
func SQLiteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewSQLiteRepository opens (creating if needed) the database file and migrates it.
func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(DialectSQLite, SQLiteDSN(dbPath))
}

// NewPostgresRepository connects to dsn and migrates the schema.
func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	return open(DialectPostgres, dsn)
}

func open(dialect Dialect, dsn string) (*SQLRepository, error) {
	conn, err := sql.Open(driverName(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if dialect == DialectPostgres {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{
		conn: conn,
		db:   &DB{q: conn, dialect: dialect},
	}, nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.conn.PingContext(ctx)
}

func (r *SQLRepository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// inTx runs fn inside a transaction traced as a single span.
func (r *SQLRepository) inTx(ctx context.Context, name string, fn func(tx *DB) error) error {
	ctx, span := dbTracer.Start(ctx, "db.Tx "+name)
	defer span.End()

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&DB{q: tx, dialect: r.db.dialect}); err != nil {
		_ = tx.Rollback()
		span.RecordError(err)
		return err
	}
	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const categoryColumns = `id, owner_id, name, description, category_type, item_type, recurrency_type,
	effective_date, end_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c         core.Category
		desc      sql.NullString
		effective sql.Null[core.Date]
		end       sql.Null[core.Date]
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &desc, &c.CategoryType, &c.ItemType, &c.RecurrencyType,
		&effective, &end, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.Category{}, err
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	if effective.Valid {
		c.EffectiveDate = &effective.V
	}
	if end.Valid {
		c.EndDate = &end.V
	}
	return c, nil
}

func nullableDate(d *core.Date) any {
	if d == nil {
		return nil
	}
	return *d
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func (r *SQLRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (owner_id, name, name_key, description, category_type, item_type, recurrency_type,
			effective_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		c.OwnerID, c.Name, core.NameKey(c.Name), nullableString(c.Description), c.CategoryType, c.ItemType, c.RecurrencyType,
		nullableDate(c.EffectiveDate), nullableDate(c.EndDate), c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	).Scan(&c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", r.db.classify(err))
	}

	slog.DebugContext(ctx, "Category saved", "id", c.ID, "name", c.Name, "type", c.CategoryType)
	return c, nil
}

func (r *SQLRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLRepository) ListCategories(ctx context.Context, filter CategoryFilter) ([]core.Category, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != nil {
		where = append(where, "category_type = ?")
		args = append(args, *filter.Type)
	}
	if filter.NameContains != "" {
		where = append(where, `name_key LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(core.NameKey(filter.NameContains))+"%")
	}

	query := `SELECT ` + categoryColumns + ` FROM categories`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *SQLRepository) CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE name_key = ? AND id <> ?`,
		core.NameKey(name), excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET
			name = ?, name_key = ?, description = ?, category_type = ?, item_type = ?, recurrency_type = ?,
			effective_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, core.NameKey(c.Name), nullableString(c.Description), c.CategoryType, c.ItemType, c.RecurrencyType,
		nullableDate(c.EffectiveDate), nullableDate(c.EndDate), c.UpdatedAt.UTC(), c.ID,
	)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, r.db.classify(err))
	}
	if err := requireAffected(res); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (r *SQLRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.inTx(ctx, "delete_category", func(tx *DB) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM amounts WHERE category_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete amounts of category %d: %w", id, err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			removed = -1
			slog.WarnContext(ctx, "Could not count removed amounts", log.FieldCategoryID, id, log.FieldError, err)
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}

		slog.DebugContext(ctx, "Category deleted", log.FieldCategoryID, id, "amounts_removed", removed)
		return nil
	})
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards so the input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
