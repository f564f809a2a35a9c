package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

const collectionDocuments = "documents"

// DocumentRepository implements ports.DocumentRepository using MongoDB.
type DocumentRepository struct {
	col *mongo.Collection
	seq *Sequence
}

func NewDocumentRepository(db *mongo.Database, seq *Sequence) *DocumentRepository {
	return &DocumentRepository{col: db.Collection(collectionDocuments), seq: seq}
}

type documentDoc struct {
	ID          int64     `bson:"_id"`
	Title       string    `bson:"title"`
	Content     string    `bson:"content"`
	AuthorID    int64     `bson:"author_id"`
	IsPublished bool      `bson:"is_published"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toDocumentDoc(d *domain.Document) documentDoc {
	return documentDoc{
		ID:          d.ID,
		Title:       d.Title,
		Content:     d.Content,
		AuthorID:    d.AuthorID,
		IsPublished: d.IsPublished,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (d documentDoc) toDomain() *domain.Document {
	return &domain.Document{
		ID:          d.ID,
		Title:       d.Title,
		Content:     d.Content,
		AuthorID:    d.AuthorID,
		IsPublished: d.IsPublished,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.Next(ctx, collectionDocuments)
	if err != nil {
		return nil, err
	}

	doc := toDocumentDoc(d)
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id int64) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc documentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns a page ordered by most recently updated.
func (r *DocumentRepository) List(ctx context.Context, filter ports.DocumentFilter) ([]*domain.Document, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := documentQuery(filter)
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Skip)).
		SetLimit(int64(filter.Limit))
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	var docs []documentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode documents: %w", err)
	}

	out := make([]*domain.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *DocumentRepository) Update(ctx context.Context, d *domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": d.ID}, toDocumentDoc(d))
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) DeleteByAuthor(ctx context.Context, authorID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, fmt.Errorf("delete documents by author: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes on the documents collection.
func (r *DocumentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "is_published", Value: 1}, {Key: "updated_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// documentQuery builds the filter. Search is a case-insensitive literal match
// on title or content.
func documentQuery(f ports.DocumentFilter) bson.M {
	q := bson.M{}
	if f.AuthorID != 0 {
		q["author_id"] = f.AuthorID
	}
	if f.Published != nil {
		q["is_published"] = *f.Published
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
		}
	}
	return q
}
