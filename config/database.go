package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	mongoClient *mongo.Client
	targetDB    *mongo.Database
)

// GetTargetDB returns the document store the application reads and writes.
// Nil until ConnectTargetWithRetry has succeeded.
func GetTargetDB() *mongo.Database {
	return targetDB
}

func init() {
	// Load env from .env
	godotenv.Load()
	// Do NOT block startup in init() waiting for the database.
	// The HTTP server must start listening quickly; callers connect from main().
}

// ConnectTargetWithRetry connects to MongoDB and sets the shared handle.
// Call this from main() AFTER the HTTP server is listening.
func ConnectTargetWithRetry() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "vouchers"
	}

	var attempt int
	for {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, readpref.Primary())
		}
		cancel()
		if err == nil {
			mongoClient = client
			targetDB = client.Database(dbName)
			log.Printf("connected to document store (attempt=%d)", attempt)
			return
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect document store (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

// DisconnectTarget releases the client. Used on shutdown.
func DisconnectTarget(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	err := mongoClient.Disconnect(ctx)
	mongoClient = nil
	targetDB = nil
	return err
}

// SourceDSN builds the legacy MySQL connection string from MYSQL_* env vars.
// parseTime is required so DATETIME columns scan into time.Time.
func SourceDSN() string {
	user := getEnv("MYSQL_USER", "root")
	password := os.Getenv("MYSQL_PASSWORD")
	host := getEnv("MYSQL_HOST", "localhost")
	port := getEnv("MYSQL_PORT", "3306")
	dbName := getEnv("MYSQL_DB", "legacy_vouchers")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		user,
		password,
		host,
		port,
		dbName,
	)
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func IntFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
