package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/btnpop/btnpop-api/models"
)

// EnsureAdmin seeds the first admin account when the users collection
// is empty, so a fresh deployment can log in and create real accounts.
// Credentials come from ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD;
// existing users always win, the seed never overwrites anything.
func (c *Config) EnsureAdmin(ctx context.Context) error {
	col := c.Collection("users")

	count, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "adminPassword123"
		c.Logger.Warn().Msg("seeding admin with the default password, set ADMIN_PASSWORD and change it after first login")
	}

	hashed, err := models.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username:  getEnv("ADMIN_USERNAME", "admin"),
		Email:     getEnv("ADMIN_EMAIL", "admin@btnpop.com"),
		Password:  hashed,
		Role:      models.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if _, err := col.InsertOne(ctx, admin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	c.Logger.Info().Str("email", admin.Email).Str("username", admin.Username).Msg("seeded initial admin user")
	return nil
}
