package catalog

import (
	"context"
	"fmt"

	"plan_advisor/src/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Catalog document field names
const (
	fieldNetworkType  = "Network Type"
	fieldBusinessSize = "Business Size Eligibility"
	fieldLocation     = "location_availability"
)

// MongoCatalog queries plan documents stored in a MongoDB collection
type MongoCatalog struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoCatalog connects and pings the server before returning
func NewMongoCatalog(ctx context.Context, cfg model.CatalogConfig) (*MongoCatalog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &MongoCatalog{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Find sorts by _id so duplicate plan types resolve the same way every time
func (c *MongoCatalog) Find(ctx context.Context, criteria Criteria) ([]model.PlanRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := c.collection.Find(ctx, BuildFilter(criteria), opts)
	if err != nil {
		return nil, fmt.Errorf("plan query failed: %w", err)
	}
	var plans []model.PlanRecord
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}
	return plans, nil
}

func (c *MongoCatalog) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

func (c *MongoCatalog) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// BuildFilter translates criteria into a MongoDB query document. Array fields
// match when any element matches, so {"$in": [...]} tests set intersection.
func BuildFilter(c Criteria) bson.M {
	filter := bson.M{}
	if c.NetworkType != nil {
		filter[fieldNetworkType] = *c.NetworkType
	}

	var clauses bson.A
	if c.SizeBuckets != nil {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{fieldBusinessSize: bson.M{"$in": c.SizeBuckets}},
			bson.M{fieldBusinessSize: model.AllSizes},
		}})
	}
	if c.Location != nil {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{fieldLocation: bson.M{"$in": bson.A{*c.Location}}},
			bson.M{fieldLocation: bson.M{"$in": bson.A{model.AllStates}}},
		}})
	}

	switch len(clauses) {
	case 0:
	case 1:
		for k, v := range clauses[0].(bson.M) {
			filter[k] = v
		}
	default:
		filter["$and"] = clauses
	}
	return filter
}
