package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

type destinationDocument struct {
	ID          string        `bson:"_id"`
	Name        string        `bson:"name"`
	Location    string        `bson:"location"`
	Description string        `bson:"description"`
	Price       float64       `bson:"price"`
	ImageURL    string        `bson:"imageUrl"`
	Coordinate  pointDocument `bson:"coordinate"`
}

// DestinationRepository implements repository.DestinationRepository on a document collection.
type DestinationRepository struct {
	coll *mongo.Collection
}

// NewDestinationRepository creates a new DestinationRepository.
func NewDestinationRepository(db *mongo.Database) *DestinationRepository {
	return &DestinationRepository{coll: db.Collection(DestinationsCollection)}
}

// GetAll returns every destination ordered by name.
func (r *DestinationRepository) GetAll(ctx context.Context) ([]*domain.Destination, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []destinationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*domain.Destination, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// GetByID retrieves a destination by ID.
func (r *DestinationRepository) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	var doc destinationDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (d destinationDocument) toDomain() *domain.Destination {
	return &domain.Destination{
		ID:          d.ID,
		Name:        d.Name,
		Location:    d.Location,
		Description: d.Description,
		Price:       d.Price,
		ImageURL:    d.ImageURL,
		Coordinate:  domain.Coordinate(d.Coordinate),
	}
}
