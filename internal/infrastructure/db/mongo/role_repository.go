package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/infrastructure/metrics"
)

const rolesCollection = "roles"

// RoleRepository implements ports.RoleRepository on the roles collection.
// Lookups go through normalized_name so "user" and "User" are the same role.
type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(rolesCollection)}
}

func normalizeRole(r domain.Role) string {
	return strings.ToUpper(string(r))
}

func (r *RoleRepository) Exists(ctx context.Context, role domain.Role) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "role_exists", time.Now())

	n, err := r.coll.CountDocuments(ctx, bson.M{"normalized_name": normalizeRole(role)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count roles: %w", err)
	}
	return n > 0, nil
}

// Ensure upserts the role and reports whether a new document was created.
func (r *RoleRepository) Ensure(ctx context.Context, role domain.Role) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "role_ensure", time.Now())

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"normalized_name": normalizeRole(role)},
		bson.M{"$setOnInsert": bson.M{
			"name":            string(role),
			"normalized_name": normalizeRole(role),
			"created_at":      time.Now().UTC().Unix(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// lost an upsert race; the role exists
			return false, nil
		}
		return false, fmt.Errorf("ensure role %s: %w", role, err)
	}
	return res.UpsertedCount > 0, nil
}

// EnsureIndexes creates the unique index on normalized_name.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
