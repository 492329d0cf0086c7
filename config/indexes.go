package config

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the API relies on: the unique
// (event, email) pair and joinId on participants, unique slugs, and the
// text indexes behind the search filters.
func (c *Config) EnsureIndexes(ctx context.Context) error {
	participants := c.Collection("participants").Indexes()
	_, err := participants.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "join_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("participant indexes: %w", err)
	}

	events := c.Collection("events").Indexes()
	_, err = events.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "location", Value: "text"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("event indexes: %w", err)
	}

	news := c.Collection("news").Indexes()
	_, err = news.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "content", Value: "text"},
				{Key: "tags", Value: "text"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("news indexes: %w", err)
	}

	users := c.Collection("users").Indexes()
	_, err = users.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	return nil
}
