package venueRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoVenueDirectory reads venues owned by the venue management collaborator.
type MongoVenueDirectory struct {
	venueColl *mongo.Collection
}

// NewMongoVenueDirectory constructs a directory over the "venues" collection.
func NewMongoVenueDirectory(db *mongo.Database) *MongoVenueDirectory {
	return &MongoVenueDirectory{
		venueColl: db.Collection("venues"),
	}
}

func (d *MongoVenueDirectory) GetCapacity(ctx context.Context, venueID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"id": 1, "capacity": 1})
	var venue models.Venue
	err := d.venueColl.FindOne(ctx, bson.M{"id": venueID}, opts).Decode(&venue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("venue %s: %w", venueID, models.ErrNotFound)
		}
		return 0, fmt.Errorf("error fetching venue %s: %w", venueID, err)
	}
	return venue.Capacity, nil
}
