package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

type pointDocument struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type bookingDocument struct {
	ID              string        `bson:"_id"`
	DestinationName string        `bson:"destination"`
	UserEmail       string        `bson:"user_email"`
	Origin          pointDocument `bson:"origin"`
	Destination     pointDocument `bson:"destination_point"`
	DistanceKm      float64       `bson:"distance_km"`
	TripType        string        `bson:"trip_type"`
	FareAmount      int           `bson:"fare"`
	CreatedAt       time.Time     `bson:"created_at"`
}

// BookingRepository implements repository.BookingRepository on a document collection.
type BookingRepository struct {
	coll *mongo.Collection
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{coll: db.Collection(BookingsCollection)}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	_, err := r.coll.InsertOne(ctx, bookingDocument{
		ID:              b.ID,
		DestinationName: b.DestinationName,
		UserEmail:       b.UserEmail,
		Origin:          pointDocument(b.Origin),
		Destination:     pointDocument(b.Destination),
		DistanceKm:      b.DistanceKm,
		TripType:        string(b.TripType),
		FareAmount:      b.FareAmount,
		CreatedAt:       b.CreatedAt,
	})
	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var doc bookingDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListByEmail returns a user's bookings, newest first.
func (r *BookingRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"user_email": email}, opts)
	if err != nil {
		return nil, err
	}

	var docs []bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(docs))
	for i := range docs {
		bookings = append(bookings, docs[i].toDomain())
	}
	return bookings, nil
}

func (d bookingDocument) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:              d.ID,
		DestinationName: d.DestinationName,
		UserEmail:       d.UserEmail,
		Origin:          domain.Coordinate(d.Origin),
		Destination:     domain.Coordinate(d.Destination),
		DistanceKm:      d.DistanceKm,
		TripType:        domain.TripType(d.TripType),
		FareAmount:      d.FareAmount,
		CreatedAt:       d.CreatedAt,
	}
}
