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

type paymentDocument struct {
	ID             string     `bson:"_id"`
	UserEmail      string     `bson:"user_email"`
	Destination    string     `bson:"destination"`
	BookingID      string     `bson:"booking_id,omitempty"`
	Method         string     `bson:"method"`
	Amount         int        `bson:"amount"`
	TravelDate     time.Time  `bson:"travel_date"`
	TripType       string     `bson:"trip_type"`
	ReturnDate     *time.Time `bson:"return_date,omitempty"`
	TravelMode     string     `bson:"travel_mode"`
	VehicleType    *string    `bson:"vehicle_type,omitempty"`
	Reference      string     `bson:"reference,omitempty"`
	IdempotencyKey string     `bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time  `bson:"created_at"`
}

// PaymentRepository implements repository.PaymentRepository on a document collection.
type PaymentRepository struct {
	coll *mongo.Collection
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(PaymentsCollection)}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	_, err := r.coll.InsertOne(ctx, paymentFromDomain(p))
	if isDuplicateKey(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	p, err := r.findOne(ctx, bson.M{"_id": id})
	if isNoDocuments(err) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

// GetByIdempotencyKey retrieves a payment by its idempotency key.
// Returns nil if no payment exists with the given key.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	p, err := r.findOne(ctx, bson.M{"idempotency_key": key})
	if isNoDocuments(err) {
		return nil, nil
	}
	return p, err
}

// ListByEmail returns a user's payments, newest first.
func (r *PaymentRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Payment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"user_email": email}, opts)
}

// ListTravellingFrom returns a user's payments travelling at or after from, soonest first.
func (r *PaymentRepository) ListTravellingFrom(ctx context.Context, email string, from time.Time, limit int) ([]*domain.Payment, error) {
	filter := bson.M{
		"user_email":  email,
		"travel_date": bson.M{"$gte": from},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "travel_date", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *PaymentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Payment, error) {
	var doc paymentDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Payment, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []paymentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	payments := make([]*domain.Payment, 0, len(docs))
	for i := range docs {
		payments = append(payments, docs[i].toDomain())
	}
	return payments, nil
}

func paymentFromDomain(p *domain.Payment) paymentDocument {
	doc := paymentDocument{
		ID:             p.ID,
		UserEmail:      p.UserEmail,
		Destination:    p.Destination,
		BookingID:      p.BookingID,
		Method:         string(p.Method),
		Amount:         p.Amount,
		TravelDate:     p.TravelDate,
		TripType:       string(p.TripType),
		ReturnDate:     p.ReturnDate,
		TravelMode:     string(p.TravelMode),
		Reference:      p.Reference,
		IdempotencyKey: p.IdempotencyKey,
		CreatedAt:      p.CreatedAt,
	}
	if p.VehicleType != nil {
		v := string(*p.VehicleType)
		doc.VehicleType = &v
	}
	return doc
}

func (d paymentDocument) toDomain() *domain.Payment {
	p := &domain.Payment{
		ID:             d.ID,
		UserEmail:      d.UserEmail,
		Destination:    d.Destination,
		BookingID:      d.BookingID,
		Method:         domain.PaymentMethod(d.Method),
		Amount:         d.Amount,
		TravelDate:     d.TravelDate,
		TripType:       domain.TripType(d.TripType),
		ReturnDate:     d.ReturnDate,
		TravelMode:     domain.TravelMode(d.TravelMode),
		Reference:      d.Reference,
		IdempotencyKey: d.IdempotencyKey,
		CreatedAt:      d.CreatedAt,
	}
	if d.VehicleType != nil {
		v := domain.VehicleType(*d.VehicleType)
		p.VehicleType = &v
	}
	return p
}
