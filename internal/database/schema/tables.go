package schema

// TableDefinitions contains all the SQL statements to create the database
// tables. delivery_logs keeps the raw enum as VARCHAR so the same string
// values serve persistence and transport.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id VARCHAR(64) PRIMARY KEY,
		target_url TEXT NOT NULL,
		secret_key TEXT,
		event_types JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	// payload holds the exact raw request bytes; storing them as TEXT rather
	// than JSONB prevents Postgres from normalizing the JSON, which would
	// break signature recomputation on the delivery path.
	`CREATE TABLE IF NOT EXISTS webhook_payloads (
		id VARCHAR(64) PRIMARY KEY,
		subscription_id VARCHAR(64) NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
		event_type VARCHAR(255),
		payload TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS delivery_logs (
		id BIGSERIAL PRIMARY KEY,
		webhook_id VARCHAR(64) NOT NULL REFERENCES webhook_payloads(id) ON DELETE CASCADE,
		subscription_id VARCHAR(64) NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
		attempt_number INT NOT NULL DEFAULT 1,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		status_code INT,
		error_details TEXT,
		attempt_timestamp TIMESTAMPTZ NOT NULL,
		next_attempt_at TIMESTAMPTZ
	)`,
}

// IndexDefinitions contains the SQL statements to create the indexes. The
// (status, next_attempt_at) index serves the worker's claim query.
var IndexDefinitions = []string{
	`CREATE INDEX IF NOT EXISTS idx_webhook_payloads_subscription_id ON webhook_payloads(subscription_id)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_logs_status_next_attempt ON delivery_logs(status, next_attempt_at)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_logs_webhook_id ON delivery_logs(webhook_id)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_logs_subscription_id ON delivery_logs(subscription_id)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_logs_attempt_timestamp ON delivery_logs(attempt_timestamp)`,
}
