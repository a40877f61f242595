package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/sunrisecafe/pkg/models"
)

// CatalogRepository implements catalog.FullStore on MongoDB. Historical cart
// and order lines may reference items by document id or by the numeric
// legacy id, so the batch finder queries both forms.
type CatalogRepository struct {
	items  *mongo.Collection
	groups *mongo.Collection
}

func NewCatalogRepository(m *MongoRepository) *CatalogRepository {
	return &CatalogRepository{
		items:  m.database.Collection(menuItemsCollection),
		groups: m.database.Collection(variantGroupsCollection),
	}
}

func (r *CatalogRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *CatalogRepository) FindByNumericID(ctx context.Context, n int64) (*models.MenuItem, error) {
	return r.findOne(ctx, bson.M{"id": n})
}

func (r *CatalogRepository) FindBySlug(ctx context.Context, slug string) (*models.MenuItem, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *CatalogRepository) findOne(ctx context.Context, filter bson.M) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.items.FindOne(ctx, filter).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindManyByRefs batch-fetches items for a mixed bag of references, trying
// both the document-id and numeric-id forms of each ref.
func (r *CatalogRepository) FindManyByRefs(ctx context.Context, refs []string) ([]models.MenuItem, error) {
	var oids []primitive.ObjectID
	var nums []int64
	for _, ref := range refs {
		if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
			oids = append(oids, oid)
			continue
		}
		if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
			nums = append(nums, n)
		}
	}

	var clauses []bson.M
	if len(oids) > 0 {
		clauses = append(clauses, bson.M{"_id": bson.M{"$in": oids}})
	}
	if len(nums) > 0 {
		clauses = append(clauses, bson.M{"id": bson.M{"$in": nums}})
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	cursor, err := r.items.Find(ctx, bson.M{"$or": clauses})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.MenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CatalogRepository) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.items.Find(ctx, bson.M{"isAvailable": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.MenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CatalogRepository) FindVariantGroups(ctx context.Context, groupIDs []string) ([]models.VariantGroup, error) {
	cursor, err := r.groups.Find(ctx, bson.M{"groupId": bson.M{"$in": groupIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []models.VariantGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *CatalogRepository) InsertItem(ctx context.Context, item *models.MenuItem) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	res, err := r.items.InsertOne(ctx, item)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	return nil
}

func (r *CatalogRepository) UpdateItem(ctx context.Context, slug string, item *models.MenuItem) (bool, error) {
	update := bson.M{"$set": bson.M{
		"name":             item.Name,
		"description":      item.Description,
		"basePrice":        item.BasePrice,
		"category":         item.Category,
		"image":            item.Image,
		"options":          item.Options,
		"isAvailable":      item.IsAvailable,
		"isFeatured":       item.IsFeatured,
		"variantGroupRefs": item.VariantGroupRefs,
		"updatedAt":        time.Now().UTC(),
	}}
	res, err := r.items.UpdateOne(ctx, bson.M{"slug": slug}, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *CatalogRepository) DeleteItem(ctx context.Context, slug string) (bool, error) {
	res, err := r.items.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *CatalogRepository) SetAvailability(ctx context.Context, slug string, available bool) (bool, error) {
	update := bson.M{"$set": bson.M{"isAvailable": available, "updatedAt": time.Now().UTC()}}
	res, err := r.items.UpdateOne(ctx, bson.M{"slug": slug}, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *CatalogRepository) UpsertVariantGroup(ctx context.Context, group *models.VariantGroup) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.groups.ReplaceOne(ctx, bson.M{"groupId": group.GroupID}, group, opts)
	return err
}

func (r *CatalogRepository) DeleteVariantGroup(ctx context.Context, groupID string) (bool, error) {
	res, err := r.groups.DeleteOne(ctx, bson.M{"groupId": groupID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
