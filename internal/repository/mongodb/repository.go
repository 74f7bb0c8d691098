package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmdash/internal/domain/models"
)

const snapshotCollection = "dashboard_snapshots"

// Repository stores dashboard snapshots.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
	RecentSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects to uri and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return NewRepositoryFromClient(client, dbName), nil
}

// NewRepositoryFromClient wraps an already connected client.
func NewRepositoryFromClient(client *mongo.Client, dbName string) *MongoDBRepository {
	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: snapshotCollection,
	}
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveSnapshot inserts a snapshot.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error {
	if snapshot.TakenAt.IsZero() {
		return errors.New("snapshot has no timestamp")
	}
	if _, err := r.collection().InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert dashboard snapshot: %w", err)
	}
	return nil
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (r *MongoDBRepository) RecentSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "taken_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard snapshots: %w", err)
	}

	snapshots := []models.DashboardSnapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard snapshots: %w", err)
	}
	return snapshots, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
