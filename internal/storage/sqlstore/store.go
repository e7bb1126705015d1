// Package sqlstore is the visit log repository on database/sql. MySQL is the
// production dialect; SQLite serves local runs and tests.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	// drivers register themselves with database/sql
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"picky/internal/domain"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

var _ domain.RestaurantRepository = (*Store)(nil)

// New wraps an open handle. driver selects the schema dialect.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver, now: func() time.Time { return time.Now().UTC() }}
}

// Open connects, pings and applies the schema. MySQL DSNs need parseTime=true.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s := New(db, driver)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if s.driver == DriverMySQL {
		stmts = mysqlSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Add(ctx context.Context, r domain.Restaurant) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now

	cols, err := encode(r)
	if err != nil {
		return "", err
	}
	args := append([]any{r.ID}, cols...)
	args = append(args, now, now)
	if _, err := s.db.ExecContext(ctx, insertRestaurantSQL, args...); err != nil {
		return "", fmt.Errorf("insert %q: %w", r.Name, err)
	}
	return r.ID, nil
}

func (s *Store) Update(ctx context.Context, id string, r domain.Restaurant) error {
	cols, err := encode(r)
	if err != nil {
		return err
	}
	args := append(cols, s.now(), id)
	res, err := s.db.ExecContext(ctx, updateRestaurantSQL, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// MySQL reports zero affected rows for no-op updates; tell those apart from misses.
	var one int
	if err := s.db.QueryRowContext(ctx, existsSQL, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("restaurant %s: %w", id, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context) ([]domain.Restaurant, error) {
	return s.query(ctx, selectAllSQL)
}

// GetByName matches case-insensitively and returns the oldest record on ties.
func (s *Store) GetByName(ctx context.Context, name string) (domain.Restaurant, error) {
	row := s.db.QueryRowContext(ctx, selectByNameSQL, nameKey(name))
	r, err := scanRestaurant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Restaurant{}, fmt.Errorf("restaurant %q: %w", name, domain.ErrNotFound)
		}
		return domain.Restaurant{}, err
	}
	return r, nil
}

// noLimit stands in for "all rows": neither dialect accepts LIMIT without a count.
const noLimit = math.MaxInt32

// rowLimit maps a non-positive limit to every row.
func rowLimit(limit int) int {
	if limit <= 0 {
		return noLimit
	}
	return limit
}

func (s *Store) GetRecent(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	return s.query(ctx, selectRecentSQL, rowLimit(limit))
}

func (s *Store) GetFavorites(ctx context.Context, minRating float64, limit int) ([]domain.Restaurant, error) {
	return s.query(ctx, selectFavoritesSQL, minRating, rowLimit(limit))
}

func (s *Store) GetWishlist(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	return s.query(ctx, selectWishlistSQL, true, rowLimit(limit))
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]domain.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nameKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
