package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/btnpop/btnpop-api/utils"
)

func eventDocWithUpdatedAt(eventID primitive.ObjectID, updatedAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: eventID},
		{Key: "title", Value: "Jazz Night"},
		{Key: "slug", Value: "jazz-night-123456"},
		{Key: "event_date", Value: primitive.NewDateTimeFromTime(updatedAt.Add(72 * time.Hour))},
		{Key: "updated_at", Value: primitive.NewDateTimeFromTime(updatedAt)},
	}
}

func getEvent(mt *mtest.T, id string, headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/events/:id", GetEvent(mockConfig(mt)))

	req := httptest.NewRequest("GET", "/api/events/"+id, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetEventSetsConditionalHeaders(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("etag and last-modified", func(mt *mtest.T) {
		eventID := primitive.NewObjectID()
		updatedAt := time.Now().Truncate(time.Millisecond)
		doc := eventDocWithUpdatedAt(eventID, updatedAt)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "btnpop.events", mtest.FirstBatch, doc),
		)
		w := getEvent(mt, eventID.Hex(), nil)

		require.Equal(mt, http.StatusOK, w.Code)
		etag := w.Header().Get("ETag")
		assert.Equal(mt, utils.GenerateETag(eventID, updatedAt), etag)
		lastModified := w.Header().Get("Last-Modified")
		assert.Equal(mt, updatedAt.UTC().Format(http.TimeFormat), lastModified)

		// A matching ETag short-circuits to 304 with no body.
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "btnpop.events", mtest.FirstBatch, doc),
		)
		w = getEvent(mt, eventID.Hex(), map[string]string{"If-None-Match": etag})
		assert.Equal(mt, http.StatusNotModified, w.Code)
		assert.Empty(mt, w.Body.String())

		// So does an If-Modified-Since at the advertised timestamp.
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "btnpop.events", mtest.FirstBatch, doc),
		)
		w = getEvent(mt, eventID.Hex(), map[string]string{"If-Modified-Since": lastModified})
		assert.Equal(mt, http.StatusNotModified, w.Code)
	})
}

func TestGetEventByStaleValidatorReturnsBody(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("changed document", func(mt *mtest.T) {
		eventID := primitive.NewObjectID()
		updatedAt := time.Now().Truncate(time.Millisecond)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "btnpop.events", mtest.FirstBatch,
				eventDocWithUpdatedAt(eventID, updatedAt)),
		)

		stale := updatedAt.Add(-time.Hour)
		w := getEvent(mt, eventID.Hex(), map[string]string{
			"If-None-Match":     utils.GenerateETag(eventID, stale),
			"If-Modified-Since": stale.UTC().Format(http.TimeFormat),
		})

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Contains(mt, w.Body.String(), "Jazz Night")
	})
}
