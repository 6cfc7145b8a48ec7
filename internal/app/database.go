package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/newrelic/go-agent/v3/integrations/nrpq" // Registers "nrpostgres" driver
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"zuru/internal/config"
	"zuru/internal/repository"
	"zuru/internal/repository/memory"
	mongostore "zuru/internal/repository/mongo"
	"zuru/internal/repository/postgres"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Repositories bundles the document store behind the configured driver.
type Repositories struct {
	Users        repository.UserRepository
	Bookings     repository.BookingRepository
	Payments     repository.PaymentRepository
	Destinations repository.DestinationRepository

	close func(ctx context.Context) error
}

// Close releases the underlying connection.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// NewRepositories connects to the store selected by cfg.Store.Driver and
// prepares its schema or indexes.
func NewRepositories(ctx context.Context, cfg *config.Config, nrApp *newrelic.Application, logger *zap.Logger) (*Repositories, error) {
	switch cfg.Store.Driver {
	case DriverPostgres:
		db, err := NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("connected to PostgreSQL", zap.String("db", cfg.Database.DBName))
		return &Repositories{
			Users:        postgres.NewUserRepository(db),
			Bookings:     postgres.NewBookingRepository(db),
			Payments:     postgres.NewPaymentRepository(db),
			Destinations: postgres.NewDestinationRepository(db),
			close:        func(context.Context) error { return db.Close() },
		}, nil

	case DriverMongo:
		client, err := NewMongoClient(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("connected to MongoDB", zap.String("db", cfg.Mongo.Database))
		return &Repositories{
			Users:        mongostore.NewUserRepository(db),
			Bookings:     mongostore.NewBookingRepository(db),
			Payments:     mongostore.NewPaymentRepository(db),
			Destinations: mongostore.NewDestinationRepository(db),
			close:        client.Disconnect,
		}, nil

	case DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return &Repositories{
			Users:        memory.NewUserRepository(),
			Bookings:     memory.NewBookingRepository(),
			Payments:     memory.NewPaymentRepository(),
			Destinations: memory.NewDestinationRepository(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewDatabase creates a new PostgreSQL connection pool.
// With an nrApp the instrumented "nrpostgres" driver traces every query.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig, nrApp *newrelic.Application) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	driverName := "postgres"
	if nrApp != nil {
		driverName = "nrpostgres"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with %s: %w", driverName, err)
	}

	// Connection pool.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewMongoClient connects to MongoDB and verifies the connection.
func NewMongoClient(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}
