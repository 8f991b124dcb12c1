package main

import (
	"context"
	"os"
	"testing"
	"time"

	"alcyxob/sales-reports/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func testConfig() config.Config {
	return config.Config{
		Server:  config.ServerConfig{Address: "127.0.0.1:0"},
		Storage: config.StorageConfig{Driver: "s3"},
		S3: config.S3Config{
			Region:          "us-east-1",
			AccessKeyID:     "test",
			SecretAccessKey: "test",
			BucketName:      "reports",
		},
	}
}

// countDisconnects swaps disconnectDB for a counting wrapper until the test ends.
func countDisconnects(t *testing.T) *int {
	t.Helper()
	calls := 0
	orig := disconnectDB
	disconnectDB = func(c *mongodriver.Client) error {
		calls++
		return orig(c)
	}
	t.Cleanup(func() { disconnectDB = orig })
	return &calls
}

func TestRun_UnknownStorageDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = "gcs"

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize file storage")
}

func TestRun_UnreachableDatabase(t *testing.T) {
	calls := countDisconnects(t)
	cfg := testConfig()
	cfg.Database = config.DatabaseConfig{
		Enabled: true,
		URI:     "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200",
		Name:    "reports",
	}

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to MongoDB")
	assert.Equal(t, 0, *calls, "no client to disconnect")
}

func TestRun_PrepareFailureDisconnects(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	calls := countDisconnects(t)
	cfg := testConfig()
	cfg.Database = config.DatabaseConfig{Enabled: true, URI: uri, Name: "invalid/db"}

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prepare database")
	assert.Equal(t, 1, *calls)
}

func TestRun_ListenFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Address = "not-an-address"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestRun_GracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig(), zap.NewNop()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
