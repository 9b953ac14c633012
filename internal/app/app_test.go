package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookrelay/hookrelay/config"
	"github.com/hookrelay/hookrelay/internal/database/schema"
	"github.com/hookrelay/hookrelay/pkg/cache"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Database: config.DatabaseConfig{URL: "postgres://localhost/hookrelay_test"},
		Delivery: config.DeliveryConfig{
			MaxRetryAttempts: 5,
			RetryIntervals:   []time.Duration{10 * time.Second},
			Timeout:          10 * time.Second,
			LogRetention:     72 * time.Hour,
		},
		Worker: config.WorkerConfig{
			BatchSize:    20,
			PollInterval: 5 * time.Second,
			ChunkSize:    20,
		},
		Environment: "test",
		LogLevel:    "error",
		Version:     config.VERSION,
	}
}

func newAppForTest(t *testing.T) (*App, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := cache.NewInMemoryCache(time.Minute)
	t.Cleanup(func() { _ = c.Stop() })

	a := NewApp(testConfig(),
		WithMockDB(db),
		WithCache(c),
		WithLogger(logger.NewTestLogger(t)),
	)
	return a, mock
}

func expectSchemaInit(mock sqlmock.Sqlmock) {
	for range schema.TableDefinitions {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for range schema.IndexDefinitions {
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestApp_Initialize(t *testing.T) {
	a, mock := newAppForTest(t)
	expectSchemaInit(mock)

	require.NoError(t, a.Initialize())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RoutesRegistered(t *testing.T) {
	a, mock := newAppForTest(t)
	expectSchemaInit(mock)
	require.NoError(t, a.Initialize())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.GetMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestApp_ShutdownWithoutStart(t *testing.T) {
	a, mock := newAppForTest(t)
	expectSchemaInit(mock)
	require.NoError(t, a.Initialize())

	mock.ExpectClose()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, a.Shutdown(ctx))
}
