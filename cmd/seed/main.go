// Command seed loads venues into MongoDB and creates the booking indexes.
package main

import (
	"context"
	"time"

	"venuebook/config"
	"venuebook/database"
	bookingRepo "venuebook/database/repository/booking"
	"venuebook/models"
	"venuebook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var sampleVenues = []models.Venue{
	{ID: "V1", Name: "Garden Pavilion", Capacity: 100},
	{ID: "V2", Name: "Harbour Hall", Capacity: 250},
	{ID: "V3", Name: "Loft Studio", Capacity: 40},
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if err := database.InitDB(); err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer database.CloseDB(context.Background())

	db := database.Database()
	venues := config.AppConfig.Venues
	if len(venues) == 0 {
		venues = sampleVenues
	}

	venueColl := db.Collection("venues")
	if _, err := venueColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_id"),
	}); err != nil {
		logger.Fatal("Failed to create venue index", zap.Error(err))
	}

	for _, v := range venues {
		_, err := venueColl.UpdateOne(ctx,
			bson.M{"id": v.ID},
			bson.M{"$set": v},
			options.Update().SetUpsert(true))
		if err != nil {
			logger.Fatal("Failed to upsert venue", zap.String("venue_id", v.ID), zap.Error(err))
		}
		logger.Info("Venue seeded", zap.String("venue_id", v.ID), zap.Int("capacity", v.Capacity))
	}

	if err := bookingRepo.NewMongoBookingRepo(db).EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create booking indexes", zap.Error(err))
	}
	logger.Info("Seed complete", zap.Int("venues", len(venues)))
}
