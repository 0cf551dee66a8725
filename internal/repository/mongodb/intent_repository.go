package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tanush1852/stockwatch/internal/domain/models"
)

// IntentRepository is the durable transfer-intent log. Intents advance
// pending -> debited -> completed; pending intents that never reached the
// source ledger are marked abandoned.
type IntentRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

type intentDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Product      string              `bson:"product"`
	Quantity     int                 `bson:"quantity"`
	SourceLedger string              `bson:"source_ledger"`
	TargetLedger string              `bson:"target_ledger"`
	Status       models.IntentStatus `bson:"status"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

// NewIntentRepository connects to MongoDB and verifies the connection.
func NewIntentRepository(ctx context.Context, uri string, dbName string) (*IntentRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &IntentRepository{
		client:   client,
		dbName:   dbName,
		collName: "transfer_intents",
	}, nil
}

func (r *IntentRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// Create records a new pending intent and returns its id.
func (r *IntentRepository) Create(ctx context.Context, intent models.TransferIntent) (string, error) {
	now := time.Now().UTC()
	doc := intentDoc{
		Product:      intent.Product,
		Quantity:     intent.Quantity,
		SourceLedger: intent.SourceLedger,
		TargetLedger: intent.TargetLedger,
		Status:       models.IntentPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.collection().InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert transfer intent: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id.Hex(), nil
}

// SetStatus advances an intent to the given status.
func (r *IntentRepository) SetStatus(ctx context.Context, id string, status models.IntentStatus) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid intent id %q: %w", id, err)
	}

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	res, err := r.collection().UpdateByID(ctx, objectID, update)
	if err != nil {
		return fmt.Errorf("failed to update intent %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("intent %s not found", id)
	}
	return nil
}

// ListUnfinished returns intents still in the pending or debited state, in
// creation order.
func (r *IntentRepository) ListUnfinished(ctx context.Context) ([]models.TransferIntent, error) {
	filter := bson.M{"status": bson.M{"$in": []models.IntentStatus{models.IntentPending, models.IntentDebited}}}
	opts := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list unfinished intents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []intentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode unfinished intents: %w", err)
	}

	intents := make([]models.TransferIntent, 0, len(docs))
	for _, doc := range docs {
		intents = append(intents, models.TransferIntent{
			ID:           doc.ID.Hex(),
			Product:      doc.Product,
			Quantity:     doc.Quantity,
			SourceLedger: doc.SourceLedger,
			TargetLedger: doc.TargetLedger,
			Status:       doc.Status,
			CreatedAt:    doc.CreatedAt,
			UpdatedAt:    doc.UpdatedAt,
		})
	}
	return intents, nil
}

// Close closes the MongoDB connection.
func (r *IntentRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
