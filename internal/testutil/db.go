// Package testutil provides helpers for integration tests that need a
// real MongoDB instance, plus fixtures and HTTP request builders for
// handler tests.
//
// SetupTestDB connects to a local MongoDB (TROVEHUB_TEST_MONGO_URI or
// mongodb://localhost:27017) and hands each test a freshly named
// database that is dropped on cleanup. Tests skip automatically when no
// server is reachable, so the suite stays runnable on machines without
// Mongo.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTestMongoURI = "mongodb://localhost:27017"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error

	dbSeq   int64
	dbSeqMu sync.Mutex
)

func testClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		uri := os.Getenv("TROVEHUB_TEST_MONGO_URI")
		if uri == "" {
			uri = defaultTestMongoURI
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			clientErr = err
			return
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			clientErr = err
			return
		}
		client = c
	})
	return client, clientErr
}

// SetupTestDB returns a fresh database for the test and registers a
// cleanup that drops it. The test is skipped when MongoDB is not
// reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	c, err := testClient()
	if err != nil {
		t.Skipf("mongodb not available: %v", err)
	}

	dbSeqMu.Lock()
	dbSeq++
	name := fmt.Sprintf("trovehub_test_%d_%d", time.Now().UnixNano(), dbSeq)
	dbSeqMu.Unlock()

	db := c.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("failed to drop test database %s: %v", name, err)
		}
	})

	return db
}

// TestContext returns a context with a generous timeout for test
// operations. Callers must defer the cancel func.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
