package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"venuebook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 5 * time.Second

// MongoBookingRepo implements BookingRepository using MongoDB. Double booking
// is prevented by the unique partial index on (venue_id, date) over active
// documents, so Insert needs no read-before-write.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
	}
}

// Insert stores a new booking document.
func (repo *MongoBookingRepo) Insert(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	booking.Active = booking.Status.IsActive()
	if _, err := repo.bookingColl.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: venue %s on %s", models.ErrConflict, booking.VenueID, booking.Date)
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// ListByPhone returns every booking made with phone, newest first.
func (repo *MongoBookingRepo) ListByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return repo.find(ctx, bson.M{"guest_phone": phone}, opts)
}

// ListByVenue returns every booking for a venue ordered by date.
func (repo *MongoBookingRepo) ListByVenue(ctx context.Context, venueID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})
	return repo.find(ctx, bson.M{"venue_id": venueID}, opts)
}

func (repo *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// ActiveDates returns the distinct dates held by active bookings of a venue.
func (repo *MongoBookingRepo) ActiveDates(ctx context.Context, venueID string) ([]models.Date, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	values, err := repo.bookingColl.Distinct(ctx, "date", bson.M{"venue_id": venueID, "active": true})
	if err != nil {
		return nil, fmt.Errorf("error listing booked dates for venue %s: %w", venueID, err)
	}

	dates := make([]models.Date, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected date value %v for venue %s", v, venueID)
		}
		dates = append(dates, models.Date(s))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates, nil
}

// HasActive reports whether an active booking holds venueID on date.
func (repo *MongoBookingRepo) HasActive(ctx context.Context, venueID string, date models.Date) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"venue_id": venueID, "date": date, "active": true}
	n, err := repo.bookingColl.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking venue %s on %s: %w", venueID, date, err)
	}
	return n > 0, nil
}

// UpdateStatus applies the transition only if the stored status is one of the
// allowed sources, so concurrent transitions cannot both win.
func (repo *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, next models.BookingStatus, at time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": models.TransitionSources(next)},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     next,
			"active":     next.IsActive(),
			"updated_at": at,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := repo.bookingColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}

	current, getErr := repo.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current.Status, next)
}

// Delete removes a booking document regardless of its status.
func (repo *MongoBookingRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := repo.bookingColl.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	return nil
}
