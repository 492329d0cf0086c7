package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/btnpop/btnpop-api/config"
)

func mockConfig(mt *mtest.T) *config.Config {
	return &config.Config{MongoClient: mt.Client, DBName: "btnpop", Logger: zerolog.Nop()}
}

const registrationBody = `{"name":"Ada Lovelace","email":"ada@example.com","phone":"+1 555 0100"}`

func doRegister(cfg *config.Config, eventID, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/participants/:eventId/register", RegisterForEvent(cfg))

	req := httptest.NewRequest("POST", "/api/participants/"+eventID+"/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func openEventDoc(eventID primitive.ObjectID, count, max int) bson.D {
	return bson.D{
		{Key: "_id", Value: eventID},
		{Key: "title", Value: "Jazz Night"},
		{Key: "location", Value: "Main Hall"},
		{Key: "event_date", Value: primitive.NewDateTimeFromTime(time.Now().Add(48 * time.Hour))},
		{Key: "registration_enabled", Value: true},
		{Key: "participant_count", Value: count},
		{Key: "max_participants", Value: max},
	}
}

func existingParticipantDoc(participantID, eventID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: participantID},
		{Key: "name", Value: "Ada Lovelace"},
		{Key: "email", Value: "ada@example.com"},
		{Key: "event", Value: eventID},
		{Key: "join_id", Value: "join-abc-123"},
		{Key: "status", Value: "registered"},
	}
}

func TestRegisterDuplicateReturnsExistingRegistration(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("same email twice", func(mt *mtest.T) {
		eventID := primitive.NewObjectID()
		participantID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "btnpop.participants", mtest.FirstBatch,
				existingParticipantDoc(participantID, eventID)),
		)

		w := doRegister(mockConfig(mt), eventID.Hex(), registrationBody)

		assert.Equal(mt, http.StatusBadRequest, w.Code)
		assert.Contains(mt, w.Body.String(), "already registered")
		assert.Contains(mt, w.Body.String(), "join-abc-123")
		assert.Contains(mt, w.Body.String(), participantID.Hex())
	})
}

func TestRegisterSuccessClaimsSlotAtomically(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("claim then insert", func(mt *mtest.T) {
		eventID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "btnpop.participants", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: openEventDoc(eventID, 2, 10)}),
			mtest.CreateSuccessResponse(),
		)

		w := doRegister(mockConfig(mt), eventID.Hex(), registrationBody)

		assert.Equal(mt, http.StatusCreated, w.Code)
		assert.Contains(mt, w.Body.String(), "Registration successful!")
		assert.Contains(mt, w.Body.String(), `"joinId":"`)

		// The slot claim must be one conditional findAndModify, not a
		// separate read and write.
		var claim bson.Raw
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "findAndModify" {
				claim = evt.Command
			}
		}
		require.NotNil(mt, claim)

		query := claim.Lookup("query").Document()
		assert.True(mt, query.Lookup("registration_enabled").Boolean())
		_, err := query.LookupErr("$or")
		assert.NoError(mt, err, "claim filter must carry the capacity condition")

		inc := claim.Lookup("update").Document().Lookup("$inc").Document()
		n, ok := inc.Lookup("participant_count").AsInt64OK()
		require.True(mt, ok)
		assert.Equal(mt, int64(1), n)
	})
}

func TestRegisterEventFull(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count at capacity", func(mt *mtest.T) {
		eventID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "btnpop.participants", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(1, "btnpop.events", mtest.FirstBatch, openEventDoc(eventID, 2, 2)),
		)

		w := doRegister(mockConfig(mt), eventID.Hex(), registrationBody)

		assert.Equal(mt, http.StatusBadRequest, w.Code)
		assert.Contains(mt, w.Body.String(), "maximum capacity")
	})
}

func TestRegisterRegistrationClosed(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("registration disabled", func(mt *mtest.T) {
		eventID := primitive.NewObjectID()
		closed := bson.D{
			{Key: "_id", Value: eventID},
			{Key: "title", Value: "Jazz Night"},
			{Key: "event_date", Value: primitive.NewDateTimeFromTime(time.Now().Add(48 * time.Hour))},
			{Key: "registration_enabled", Value: false},
		}

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "btnpop.participants", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(1, "btnpop.events", mtest.FirstBatch, closed),
		)

		w := doRegister(mockConfig(mt), eventID.Hex(), registrationBody)

		assert.Equal(mt, http.StatusBadRequest, w.Code)
		assert.Contains(mt, w.Body.String(), "not available")
	})
}

func TestRegisterEventMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown event id", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "btnpop.participants", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "btnpop.events", mtest.FirstBatch),
		)

		w := doRegister(mockConfig(mt), primitive.NewObjectID().Hex(), registrationBody)

		assert.Equal(mt, http.StatusNotFound, w.Code)
		assert.Contains(mt, w.Body.String(), "Event not found")
	})
}

func TestRegisterReleasesSlotOnDuplicateInsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lost insert race", func(mt *mtest.T) {
		eventID := primitive.NewObjectID()
		participantID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "btnpop.participants", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: openEventDoc(eventID, 3, 10)}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index: 0, Code: 11000, Message: "E11000 duplicate key error",
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(1, "btnpop.participants", mtest.FirstBatch,
				existingParticipantDoc(participantID, eventID)),
		)

		w := doRegister(mockConfig(mt), eventID.Hex(), registrationBody)

		assert.Equal(mt, http.StatusBadRequest, w.Code)
		assert.Contains(mt, w.Body.String(), "join-abc-123")

		// The claimed slot must be handed back with a compensating $inc.
		var rollback bson.Raw
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "update" {
				rollback = evt.Command
			}
		}
		require.NotNil(mt, rollback, "expected a counter rollback update")

		updates, err := rollback.Lookup("updates").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, updates, 1)

		inc := updates[0].Document().Lookup("u").Document().Lookup("$inc").Document()
		n, ok := inc.Lookup("participant_count").AsInt64OK()
		require.True(mt, ok)
		assert.Equal(mt, int64(-1), n)
	})
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("invalid status", func(mt *mtest.T) {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.PUT("/api/participants/:id/status", UpdateParticipantStatus(mockConfig(mt)))

		req := httptest.NewRequest("PUT", "/api/participants/"+primitive.NewObjectID().Hex()+"/status",
			strings.NewReader(`{"status":"checked-in"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(mt, http.StatusBadRequest, w.Code)
		assert.Contains(mt, w.Body.String(), "invalid status")
	})
}

func TestUpdateStatusReactivationLeavesCounterAlone(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("cancelled back to registered", func(mt *mtest.T) {
		eventID := primitive.NewObjectID()
		participantID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: existingParticipantDoc(participantID, eventID)}),
		)

		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.PUT("/api/participants/:id/status", UpdateParticipantStatus(mockConfig(mt)))

		req := httptest.NewRequest("PUT", "/api/participants/"+participantID.Hex()+"/status",
			strings.NewReader(`{"status":"registered"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Contains(mt, w.Body.String(), `"status":"registered"`)

		// Status changes never touch the event's participant counter.
		for _, evt := range mt.GetAllStartedEvents() {
			assert.NotEqual(mt, "update", evt.CommandName)
		}
	})
}
