package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/grocery-store/internal/config"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrStatusConflict    = errors.New("status changed concurrently")
)

const uniqueViolation = "23505"

type Repository struct {
	DB *sql.DB
}

// Repositories bundles every table-level repository over one pool.
type Repositories struct {
	Transactor   Transactor
	User         UserRepository
	Category     CategoryRepository
	Product      ProductRepository
	Cart         CartRepository
	Order        OrderRepository
	Payment      PaymentRepository
	Review       ReviewRepository
	Notification NotificationRepository
	Contact      ContactRepository
}

func New(cfg *config.Config) (*Repository, error) {
	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{DB: db}, nil
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Transactor:   NewTransactor(db),
		User:         NewUserRepo(db),
		Category:     NewCategoryRepo(db),
		Product:      NewProductRepo(db),
		Cart:         NewCartRepo(db),
		Order:        NewOrderRepo(db),
		Payment:      NewPaymentRepo(db),
		Review:       NewReviewRepo(db),
		Notification: NewNotificationRepo(db),
		Contact:      NewContactRepo(db),
	}
}

// RunMigrations applies the embedded schema. ErrNoChange is not an error.
func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (p *Repository) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

func (p *Repository) Close() error {
	return p.DB.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// expectOneRow maps an UPDATE/DELETE that touched nothing to ErrNotFound.
func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// expectTransition is expectOneRow for an UPDATE guarded on the current
// status. When nothing matched, existsQuery tells a missing row (ErrNotFound)
// from one whose status may not make the move (ErrStatusConflict).
func expectTransition(ctx context.Context, db Querier, result sql.Result, existsQuery string, args ...any) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected > 0 {
		return nil
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool
	if err := db.QueryRowContext(dbCtx, existsQuery, args...).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check row existence: %w", err)
	}

	if !exists {
		return ErrNotFound
	}

	return ErrStatusConflict
}
