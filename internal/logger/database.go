package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"SiteJSON_Frontend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConnection implements DatabaseConnection using pgxpool
type PostgresConnection struct {
	pool *pgxpool.Pool
}

// NewPostgresConnection creates a new PostgreSQL connection using a connection string
func NewPostgresConnection(connectionString string) (DatabaseConnection, error) {
	return newPostgresConnection(connectionString)
}

// newPostgresConnection creates the concrete implementation
func newPostgresConnection(connectionString string) (*PostgresConnection, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	// Hosted databases silently drop idle connections; keep lifetimes bounded
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Disable statement caching to avoid "already exists" errors behind poolers
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.ConnConfig.StatementCacheCapacity = 0

	config.ConnConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		return d.DialContext(ctx, "tcp", addr)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	conn := &PostgresConnection{pool: pool}
	if err := conn.createTableIfNotExists(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create logs table: %w", err)
	}

	return conn, nil
}

// createTableIfNotExists creates the logs table if it doesn't exist
func (p *PostgresConnection) createTableIfNotExists() error {
	query := `
		CREATE TABLE IF NOT EXISTS application_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			timestamp TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			severity VARCHAR(10) CHECK (severity IN ('low', 'medium', 'high')),
			message TEXT NOT NULL,
			operation VARCHAR(100) NOT NULL,
			target_name VARCHAR(255),
			process_id UUID NOT NULL,
			process_type VARCHAR(20) NOT NULL CHECK (process_type IN ('request', 'internal')),
			client_ip INET,
			error_details TEXT,
			metadata JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_application_logs_timestamp ON application_logs(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_application_logs_severity ON application_logs(severity) WHERE severity IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_application_logs_operation ON application_logs(operation);
		CREATE INDEX IF NOT EXISTS idx_application_logs_target_name ON application_logs(target_name) WHERE target_name IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_application_logs_process_id ON application_logs(process_id);
	`

	_, err := p.pool.Exec(context.Background(), query)
	return err
}

// InsertLog inserts a log entry into the database
func (p *PostgresConnection) InsertLog(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO application_logs
		(id, timestamp, severity, message, operation, target_name, process_id, process_type, client_ip, error_details, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var clientIP interface{}
	if entry.ClientIP != "" {
		clientIP = entry.ClientIP
	}

	var targetName interface{}
	if entry.TargetName != "" {
		targetName = entry.TargetName
	}

	var errorDetails interface{}
	if entry.Error != "" {
		errorDetails = entry.Error
	}

	// Marshal metadata to a JSON string for proper JSONB encoding
	var metadata interface{}
	if len(entry.Metadata) > 0 {
		jsonBytes, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata to JSON: %w", err)
		}
		metadata = string(jsonBytes)
	}

	// Handle empty severity (for info/success logs)
	var severity interface{}
	if entry.Severity != "" {
		severity = string(entry.Severity)
	}

	_, err := p.pool.Exec(
		ctx, query,
		entry.ID,
		entry.Timestamp,
		severity,
		entry.Message,
		entry.Operation,
		targetName,
		entry.ProcessID,
		string(entry.ProcessType),
		clientIP,
		errorDetails,
		metadata,
	)

	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	return nil
}

// Ping checks if the database connection is alive
func (p *PostgresConnection) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection
func (p *PostgresConnection) Close() error {
	p.pool.Close()
	return nil
}
