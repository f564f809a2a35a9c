package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

const (
	collectionUsers = "users"

	indexUsername = "uniq_username"
	indexEmail    = "uniq_email"
)

// IdentityRepository implements ports.IdentityRepository using MongoDB.
type IdentityRepository struct {
	col *mongo.Collection
	seq *Sequence
}

func NewIdentityRepository(db *mongo.Database, seq *Sequence) *IdentityRepository {
	return &IdentityRepository{col: db.Collection(collectionUsers), seq: seq}
}

type identityDoc struct {
	ID           int64      `bson:"_id"`
	Username     string     `bson:"username"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash"`
	Nickname     string     `bson:"nickname,omitempty"`
	Avatar       string     `bson:"avatar,omitempty"`
	Roles        []string   `bson:"roles"`
	Permissions  []string   `bson:"permissions"`
	IsActive     bool       `bson:"is_active"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
	LastLogin    *time.Time `bson:"last_login,omitempty"`
}

func toIdentityDoc(u *domain.Identity) identityDoc {
	return identityDoc{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Nickname:     u.Nickname,
		Avatar:       u.Avatar,
		Roles:        nonNil(u.Roles),
		Permissions:  nonNil(u.Permissions),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
		LastLogin:    u.LastLogin,
	}
}

func (d identityDoc) toDomain() *domain.Identity {
	u := &domain.Identity{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Nickname:     d.Nickname,
		Avatar:       d.Avatar,
		Roles:        nonNil(d.Roles),
		Permissions:  nonNil(d.Permissions),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.LastLogin != nil {
		ts := d.LastLogin.UTC()
		u.LastLogin = &ts
	}
	return u
}

func (r *IdentityRepository) Create(ctx context.Context, user *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.Next(ctx, collectionUsers)
	if err != nil {
		return nil, err
	}

	doc := toIdentityDoc(user)
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateIdentityError(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id int64) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc identityDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns identities ordered by id.
func (r *IdentityRepository) List(ctx context.Context, skip, limit int) ([]*domain.Identity, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var docs []identityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.Identity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// Update $sets only the changed fields, so a concurrent status change is not
// overwritten by a profile edit.
func (r *IdentityRepository) Update(ctx context.Context, id int64, changes ports.IdentityChanges) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc identityDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": identitySet(changes)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateIdentityError(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

func identitySet(c ports.IdentityChanges) bson.M {
	set := bson.M{"updated_at": c.UpdatedAt.UTC()}
	if c.Email != nil {
		set["email"] = *c.Email
	}
	if c.Nickname != nil {
		set["nickname"] = *c.Nickname
	}
	if c.Avatar != nil {
		set["avatar"] = *c.Avatar
	}
	if c.Roles != nil {
		set["roles"] = c.Roles
		set["permissions"] = nonNil(c.Permissions)
	}
	if c.IsActive != nil {
		set["is_active"] = *c.IsActive
	}
	return set
}

func (r *IdentityRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": ts.UTC()}})
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *IdentityRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique username and email indexes.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(indexUsername).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(indexEmail).SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// duplicateIdentityError maps a duplicate key error to the field that clashed.
func duplicateIdentityError(err error) error {
	if strings.Contains(err.Error(), indexEmail) {
		return domain.ErrEmailExists
	}
	return domain.ErrUserExists
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
