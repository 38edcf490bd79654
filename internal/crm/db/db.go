// Package db is the gorm-backed storage layer for companies, contacts, deals
// and activities.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/crm/internal/crm/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is the set of storage operations the service layer depends on.
type Store interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	DeleteCompany(ctx context.Context, id string) error
	ListCompanies(ctx context.Context, filter models.CompanyFilter, opts models.ListOptions) (*models.Page[models.Company], error)
	CompanyExists(ctx context.Context, id string) (bool, error)

	CreateContact(ctx context.Context, contact *models.Contact) error
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	GetContactDetail(ctx context.Context, id string) (*models.ContactDetail, error)
	UpdateContact(ctx context.Context, update *models.ContactUpdate) error
	DeleteContact(ctx context.Context, id string) error
	ListContacts(ctx context.Context, filter models.ContactFilter, opts models.ListOptions) (*models.Page[models.Contact], error)
	ContactExists(ctx context.Context, id string) (bool, error)

	CreateDeal(ctx context.Context, deal *models.Deal) error
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	GetDealDetail(ctx context.Context, id string) (*models.DealDetail, error)
	UpdateDeal(ctx context.Context, update *models.DealUpdate) error
	DeleteDeal(ctx context.Context, id string) error
	ListDeals(ctx context.Context, filter models.DealFilter, opts models.ListOptions) (*models.Page[models.Deal], error)
	DealExists(ctx context.Context, id string) (bool, error)

	CreateActivity(ctx context.Context, activity *models.Activity) error
	GetActivity(ctx context.Context, id string) (*models.Activity, error)
	ListActivities(ctx context.Context, filter models.ActivityFilter, opts models.ListOptions) (*models.Page[models.Activity], error)

	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the SQLite database file, or ":memory:".
	Path string
	// ConnectTimeout bounds how long NewRepository keeps retrying the initial connection.
	ConnectTimeout time.Duration
}

func (cfg *Config) dialector() (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewRepository connects to the configured database, retrying with
// exponential backoff until cfg.ConnectTimeout elapses, and creates any
// missing tables.
func NewRepository(cfg *Config, logger *zap.Logger) (*Repository, error) {
	logger = logger.Named("db")
	if _, err := cfg.dialector(); err != nil {
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	if cfg.ConnectTimeout > 0 {
		policy.MaxElapsedTime = cfg.ConnectTimeout
	}

	var db *gorm.DB
	connect := func() error {
		dialector, err := cfg.dialector()
		if err != nil {
			return backoff.Permanent(err)
		}
		db, err = gorm.Open(dialector, newGormConfig())
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("database not ready, retrying",
			zap.Error(err),
			zap.Duration("wait", wait),
		)
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver != DriverPostgres {
		// SQLite allows a single writer; an in-memory database also lives
		// only as long as its one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("database ready", zap.String("driver", db.Dialector.Name()))
	return &Repository{db: db}, nil
}

func newGormConfig() *gorm.Config {
	return &gorm.Config{
		// References may dangle once their target is deleted.
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.Contact{},
		&models.Deal{},
		&models.Activity{},
	)
}

// WithTransaction runs fn against a repository bound to a single transaction.
func (r *Repository) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
