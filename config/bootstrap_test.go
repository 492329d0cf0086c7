package config

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/btnpop/btnpop-api/models"
)

func TestEnsureAdminSeedsEmptyCollection(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("seeds admin", func(mt *mtest.T) {
		mt.Setenv("ADMIN_PASSWORD", "first-login-pass")
		mt.Setenv("ADMIN_EMAIL", "root@example.com")

		cfg := &Config{MongoClient: mt.Client, DBName: "btnpop", Logger: zerolog.Nop()}

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "btnpop.users", mtest.FirstBatch, bson.D{{Key: "n", Value: 0}}),
			mtest.CreateSuccessResponse(),
		)

		require.NoError(mt, cfg.EnsureAdmin(context.Background()))

		var insert bson.Raw
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "insert" {
				insert = evt.Command
			}
		}
		require.NotNil(mt, insert, "expected an insert into users")

		docs, err := insert.Lookup("documents").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, docs, 1)

		seeded := docs[0].Document()
		assert.Equal(mt, models.RoleAdmin, seeded.Lookup("role").StringValue())
		assert.Equal(mt, "root@example.com", seeded.Lookup("email").StringValue())

		// Stored hashed, never as the raw env value.
		hashed := seeded.Lookup("password").StringValue()
		assert.NotEqual(mt, "first-login-pass", hashed)
		user := models.User{Password: hashed}
		assert.True(mt, user.ComparePassword("first-login-pass"))
	})
}

func TestEnsureAdminSkipsWhenUsersExist(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("leaves existing users alone", func(mt *mtest.T) {
		cfg := &Config{MongoClient: mt.Client, DBName: "btnpop", Logger: zerolog.Nop()}

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "btnpop.users", mtest.FirstBatch, bson.D{{Key: "n", Value: 3}}),
		)

		require.NoError(mt, cfg.EnsureAdmin(context.Background()))

		for _, evt := range mt.GetAllStartedEvents() {
			assert.NotEqual(mt, "insert", evt.CommandName)
		}
	})
}
