package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	catalogerrors "homeserve/internal/catalog/errors"
	"homeserve/pkg/config"
	mongotx "homeserve/pkg/db/mongo"
	"homeserve/pkg/model"
)

const (
	CollectionName = "Service_listings"
)

type mongoListingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ListingRepository interface {
	Create(ctx context.Context, listing *model.ServiceListing) error
	FindByID(ctx context.Context, id string) (*model.ServiceListing, error)
	FindAll(ctx context.Context, filter *model.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, error)
	Count(ctx context.Context, filter *model.ListingFilter) (int64, error)
	FindIDsByProvider(ctx context.Context, providerEmail string) ([]string, error)
	Update(ctx context.Context, id string, listing *model.ServiceListing) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics, so
// it is returned unchanged with a no-op cancel.
func (r *mongoListingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func buildListingFilter(filter *model.ListingFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}
	if filter.ProviderEmail != "" {
		query["provider_email"] = filter.ProviderEmail
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Available != nil {
		if *filter.Available {
			// Missing flag means available, matching the storage default.
			query["is_available"] = bson.M{"$ne": false}
		} else {
			query["is_available"] = false
		}
	}
	return query
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.ServiceListing) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	listing.CreatedAt = now
	listing.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to create service listing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid.Hex()
	}

	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.ServiceListing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}
	filter := bson.M{"_id": objectID}

	var listing model.ServiceListing
	err = r.collection.FindOne(ctx, filter).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find service listing: %w", err)
	}
	return &listing, nil
}

func (r *mongoListingRepository) FindAll(ctx context.Context, filter *model.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, buildListingFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query service listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*model.ServiceListing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode service listings: %w", err)
	}

	return listings, nil
}

func (r *mongoListingRepository) Count(ctx context.Context, filter *model.ListingFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListingFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count service listings: %w", err)
	}
	return count, nil
}

// FindIDsByProvider projects only the _id field; the bookings service uses it
// to resolve which bookings belong to a provider.
func (r *mongoListingRepository) FindIDsByProvider(ctx context.Context, providerEmail string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"provider_email": providerEmail}
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listing IDs for provider [%s]: %w", providerEmail, err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listing IDs: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID.Hex())
	}
	return ids, nil
}

func (r *mongoListingRepository) Update(ctx context.Context, id string, listing *model.ServiceListing) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"name":              listing.Name,
			"price":             listing.Price,
			"duration_estimate": listing.DurationEstimate,
			"description":       listing.Description,
			"is_available":      listing.IsAvailable,
			"service_kind":      listing.ServiceKind,
			"area_coverage":     listing.AreaCoverage,
			"updated_at":        time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update service listing: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete service listing: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoListingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
