package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

const collectionOperationLogs = "operation_logs"

// OperationLogRepository implements ports.OperationLogRepository using MongoDB.
type OperationLogRepository struct {
	col *mongo.Collection
	seq *Sequence
}

func NewOperationLogRepository(db *mongo.Database, seq *Sequence) *OperationLogRepository {
	return &OperationLogRepository{col: db.Collection(collectionOperationLogs), seq: seq}
}

type operationLogDoc struct {
	ID           int64     `bson:"_id"`
	UserID       int64     `bson:"user_id"`
	Action       string    `bson:"action"`
	ResourceType string    `bson:"resource_type"`
	ResourceID   *int64    `bson:"resource_id,omitempty"`
	Description  string    `bson:"description,omitempty"`
	IPAddress    string    `bson:"ip_address,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d operationLogDoc) toDomain() *domain.OperationLog {
	return &domain.OperationLog{
		ID:           d.ID,
		UserID:       d.UserID,
		Action:       d.Action,
		ResourceType: d.ResourceType,
		ResourceID:   d.ResourceID,
		Description:  d.Description,
		IPAddress:    d.IPAddress,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// Append persists entry and sets its ID.
func (r *OperationLogRepository) Append(ctx context.Context, entry *domain.OperationLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.Next(ctx, collectionOperationLogs)
	if err != nil {
		return err
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	doc := operationLogDoc{
		ID:           id,
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Description:  entry.Description,
		IPAddress:    entry.IPAddress,
		CreatedAt:    createdAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert operation log: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = doc.CreatedAt
	return nil
}

func (r *OperationLogRepository) FindByID(ctx context.Context, id int64) (*domain.OperationLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc operationLogDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLogNotFound
		}
		return nil, fmt.Errorf("find operation log: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns a page ordered newest first, ties broken by id.
func (r *OperationLogRepository) List(ctx context.Context, filter ports.OperationLogFilter) ([]*domain.OperationLog, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := operationLogQuery(filter)
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count operation logs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Skip)).
		SetLimit(int64(filter.Limit))
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list operation logs: %w", err)
	}

	var docs []operationLogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode operation logs: %w", err)
	}

	out := make([]*domain.OperationLog, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *OperationLogRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete operation log: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrLogNotFound
	}
	return nil
}

func (r *OperationLogRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete operation logs: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes backing the list filters.
func (r *OperationLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}},
		{Keys: bson.D{{Key: "resource_type", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func operationLogQuery(f ports.OperationLogFilter) bson.M {
	q := bson.M{}
	if f.UserID != 0 {
		q["user_id"] = f.UserID
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.ResourceType != "" {
		q["resource_type"] = f.ResourceType
	}
	return q
}
