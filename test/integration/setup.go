package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pizza-desk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing, including the
// change-notification trigger the feed listens on.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			order_number VARCHAR(50) NOT NULL UNIQUE,
			customer_name VARCHAR(255) NOT NULL,
			customer_email VARCHAR(255) NOT NULL,
			customer_phone VARCHAR(50) NOT NULL,
			company VARCHAR(255),
			delivery_street VARCHAR(255) NOT NULL DEFAULT '',
			delivery_city VARCHAR(100) NOT NULL DEFAULT '',
			delivery_state VARCHAR(100) NOT NULL DEFAULT '',
			delivery_country VARCHAR(100) NOT NULL DEFAULT '',
			delivery_postal_code VARCHAR(20) NOT NULL DEFAULT '',
			delivery_landmark VARCHAR(255) NOT NULL DEFAULT '',
			subtotal DECIMAL(10, 2) NOT NULL DEFAULT 0,
			tax_amount DECIMAL(10, 2) NOT NULL DEFAULT 0,
			delivery_fee DECIMAL(10, 2) NOT NULL DEFAULT 0,
			total_amount DECIMAL(10, 2) NOT NULL DEFAULT 0,
			order_status VARCHAR(30) NOT NULL DEFAULT 'pending',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			order_notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			estimated_delivery_time TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			item_type VARCHAR(50) NOT NULL DEFAULT 'pizza',
			item_id VARCHAR(50) NOT NULL,
			item_name VARCHAR(255) NOT NULL,
			description TEXT,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price DECIMAL(10, 2) NOT NULL DEFAULT 0,
			total_price DECIMAL(10, 2) NOT NULL DEFAULT 0,
			customizations JSONB
		);

		CREATE TABLE IF NOT EXISTS order_status_history (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			status VARCHAR(30) NOT NULL,
			note TEXT,
			created_by VARCHAR(100) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_order_status_history_order_id ON order_status_history(order_id);

		CREATE OR REPLACE FUNCTION notify_orders_changes() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('orders_changes', TG_OP);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS orders_notify ON orders;
		CREATE TRIGGER orders_notify
			AFTER INSERT OR UPDATE OR DELETE ON orders
			FOR EACH STATEMENT EXECUTE FUNCTION notify_orders_changes();
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedOrder inserts one order with a single line item and returns its id.
func SeedOrder(t *testing.T, pool *pgxpool.Pool, number string, status model.OrderStatus, total float64, createdAt time.Time) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	orderID := uuid.New()

	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, order_number, customer_name, customer_email, customer_phone,
		                    subtotal, total_amount, order_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $8, $8)
	`, orderID, number, "Test Customer", "test@example.com", "+15550100", total, status, createdAt)
	if err != nil {
		t.Fatalf("failed to seed order %s: %v", number, err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO order_items (id, order_id, item_id, item_name, quantity, unit_price, total_price, customizations)
		VALUES ($1, $2, 'PZ-01', 'Margherita', 1, $3, $3, '{"size": "large"}')
	`, uuid.New(), orderID, total)
	if err != nil {
		t.Fatalf("failed to seed order item for %s: %v", number, err)
	}

	return orderID
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_status_history", "order_items", "orders"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
