package audit

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "webhook_audit"

// Entry is one audited webhook interaction. ExpiresAt drives the TTL index,
// so old traffic ages out of the collection on its own.
type Entry struct {
	UserId      int64     `bson:"user_id"`
	Action      string    `bson:"action"`
	Fulfillment string    `bson:"fulfillment,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	ExpiresAt   time.Time `bson:"expires_at"`
}

// Log keeps a best-effort trail of webhook traffic in Mongo. A nil Log drops
// everything, which is how the service runs when MONGODB_URI is unset.
type Log struct {
	coll      *mongo.Collection
	retention time.Duration
}

// Connect opens the Mongo database named in MONGODB_URI and ensures the TTL
// index. Returns nil when no URI is configured.
func Connect(ctx context.Context) (*Log, error) {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Warn("MONGODB_URI not set, webhook audit disabled")
		return nil, nil
	}

	uri, err := url.Parse(mongoURI)
	if err != nil {
		return nil, err
	}
	dbName := strings.TrimPrefix(uri.Path, "/")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	coll := client.Database(dbName).Collection(collectionName)

	// TTL index: Mongo expires each document at its expires_at value.
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"expires_at": 1},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, err
	}

	return &Log{coll: coll, retention: 30 * 24 * time.Hour}, nil
}

// Record stores one webhook interaction. Failures are logged and dropped; the
// audit trail never blocks a chat reply.
func (l *Log) Record(ctx context.Context, userId int64, action, fulfillment string) {
	if l == nil {
		return
	}

	now := time.Now()
	entry := Entry{
		UserId:      userId,
		Action:      action,
		Fulfillment: fulfillment,
		CreatedAt:   now,
		ExpiresAt:   now.Add(l.retention),
	}

	if _, err := l.coll.InsertOne(ctx, entry); err != nil {
		log.Warnf("webhook audit insert failed: %v", err)
	}
}
