package controllers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/btnpop/btnpop-api/config"
	"github.com/btnpop/btnpop-api/middleware"
	"github.com/btnpop/btnpop-api/models"
	"github.com/btnpop/btnpop-api/utils"
)

// ---------------- LIST ----------------
func ListEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		page := queryInt(c, "page", 1)
		limit := queryInt(c, "limit", 10)

		// --- Build filter ---
		filter := bson.M{}
		if c.Query("upcoming") == "true" {
			filter["is_upcoming"] = true
		}
		if category := c.Query("category"); category != "" {
			filter["category"] = category
		}
		if c.Query("featured") == "true" {
			filter["is_featured"] = true
		}
		if search := c.Query("search"); search != "" {
			filter["$text"] = bson.M{"$search": search}
		}

		dateRange := bson.M{}
		if start := c.Query("startDate"); start != "" {
			if t, ok := middleware.ParseDate(start); ok {
				dateRange["$gte"] = t
			}
		}
		if end := c.Query("endDate"); end != "" {
			if t, ok := middleware.ParseDate(end); ok {
				dateRange["$lte"] = t
			}
		}
		if len(dateRange) > 0 {
			filter["event_date"] = dateRange
		}

		opts := options.Find().
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "event_date", Value: 1}})

		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("list events")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		events := []models.Event{}
		if err := cursor.All(ctx, &events); err != nil {
			cfg.Logger.Error().Err(err).Msg("decode events")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		total, err := col.CountDocuments(ctx, filter)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("count events")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"events":      events,
			"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
			"currentPage": page,
			"totalEvents": total,
		})
	}
}

// ---------------- UPCOMING ----------------
func UpcomingEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 5)

		now := time.Now()
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{
			"$or": bson.A{
				bson.M{"event_date": bson.M{"$gte": todayStart}},
				bson.M{"end_date": bson.M{"$gte": todayStart}},
			},
			"is_upcoming": true,
		}
		opts := options.Find().
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "event_date", Value: 1}})

		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("upcoming events")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		events := []models.Event{}
		if err := cursor.All(ctx, &events); err != nil {
			cfg.Logger.Error().Err(err).Msg("decode upcoming events")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event models.Event
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := cfg.Collection("events").
			FindOne(ctx, idOrSlugFilter(c.Param("id"))).
			Decode(&event)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
			return
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		if since := c.GetHeader("If-Modified-Since"); since != "" {
			if t, err := http.ParseTime(since); err == nil && !event.UpdatedAt.Truncate(time.Second).After(t) {
				c.Status(http.StatusNotModified)
				return
			}
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", event.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventDate, _ := middleware.ParseDate(c.PostForm("eventDate"))

		var endDate *time.Time
		if raw := c.PostForm("endDate"); raw != "" {
			if t, ok := middleware.ParseDate(raw); ok {
				endDate = &t
			}
		}

		category := c.PostForm("category")
		if category == "" || !models.ValidEventCategory(category) {
			category = "Other"
		}

		var coordinates *models.Coordinates
		if raw := c.PostForm("coordinates"); raw != "" {
			var parsed models.Coordinates
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				coordinates = &parsed
			} else {
				cfg.Logger.Warn().Err(err).Msg("ignoring malformed coordinates")
			}
		}

		var maxParticipants *int
		if raw := c.PostForm("maxParticipants"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				maxParticipants = &n
			}
		}

		imageURL := ""
		if fileHeader, err := c.FormFile("image"); err == nil {
			url, err := cfg.Store.SaveImage(fileHeader)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			imageURL = url
		}

		now := time.Now()
		event := models.Event{
			ID:                   primitive.NewObjectID(),
			Title:                c.PostForm("title"),
			Description:          c.PostForm("description"),
			ImageURL:             imageURL,
			EventDate:            eventDate,
			EventTime:            c.PostForm("eventTime"),
			EndDate:              endDate,
			EndTime:              c.PostForm("endTime"),
			Location:             c.PostForm("location"),
			Coordinates:          coordinates,
			Organizer:            c.PostForm("organizer"),
			Category:             category,
			RegistrationURL:      c.PostForm("registrationUrl"),
			RegistrationRequired: c.PostForm("registrationRequired") == "true",
			RegistrationEnabled:  c.PostForm("registrationEnabled") == "true",
			MaxParticipants:      maxParticipants,
			ParticipantCount:     0,
			IsUpcoming:           models.Upcoming(eventDate, endDate, now),
			IsFeatured:           c.PostForm("isFeatured") == "true",
			Slug:                 utils.GenerateSlug(c.PostForm("title")),
			CreatedAt:            now,
			UpdatedAt:            now,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := cfg.Collection("events").InsertOne(ctx, event); err != nil {
			cfg.Logger.Error().Err(err).Msg("create event")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
			return
		}

		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Event
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
			return
		}

		update := bson.M{"updated_at": time.Now()}

		if title := c.PostForm("title"); title != "" {
			update["title"] = title
			if title != existing.Title {
				update["slug"] = utils.GenerateSlug(title)
			}
		}
		if description := c.PostForm("description"); description != "" {
			update["description"] = description
		}
		if location := c.PostForm("location"); location != "" {
			update["location"] = location
		}
		if organizer := c.PostForm("organizer"); organizer != "" {
			update["organizer"] = organizer
		}
		if category := c.PostForm("category"); category != "" && models.ValidEventCategory(category) {
			update["category"] = category
		}
		if eventTime, ok := c.GetPostForm("eventTime"); ok {
			update["event_time"] = eventTime
		}
		if endTime, ok := c.GetPostForm("endTime"); ok {
			update["end_time"] = endTime
		}
		if registrationURL, ok := c.GetPostForm("registrationUrl"); ok {
			update["registration_url"] = registrationURL
		}
		if raw, ok := c.GetPostForm("registrationRequired"); ok {
			update["registration_required"] = raw == "true"
		}
		if raw, ok := c.GetPostForm("registrationEnabled"); ok {
			update["registration_enabled"] = raw == "true"
		}
		if raw, ok := c.GetPostForm("isFeatured"); ok {
			update["is_featured"] = raw == "true"
		}
		if raw, ok := c.GetPostForm("maxParticipants"); ok {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				update["max_participants"] = n
			} else {
				update["max_participants"] = nil
			}
		}
		if raw := c.PostForm("coordinates"); raw != "" {
			var parsed models.Coordinates
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				update["coordinates"] = parsed
			} else {
				cfg.Logger.Warn().Err(err).Msg("ignoring malformed coordinates")
			}
		}

		// Date changes re-derive the upcoming flag.
		eventDate := existing.EventDate
		endDate := existing.EndDate
		if raw := c.PostForm("eventDate"); raw != "" {
			if t, ok := middleware.ParseDate(raw); ok {
				eventDate = t
				update["event_date"] = t
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Event date must be a valid date"})
				return
			}
		}
		if raw, ok := c.GetPostForm("endDate"); ok {
			if raw == "" {
				endDate = nil
				update["end_date"] = nil
			} else if t, parsed := middleware.ParseDate(raw); parsed {
				endDate = &t
				update["end_date"] = t
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"message": "End date must be a valid date"})
				return
			}
		}
		update["is_upcoming"] = models.Upcoming(eventDate, endDate, time.Now())

		// Replace the image, removing the old file best-effort.
		if fileHeader, err := c.FormFile("image"); err == nil {
			url, err := cfg.Store.SaveImage(fileHeader)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			if existing.ImageURL != "" {
				if err := cfg.Store.DeleteImage(existing.ImageURL); err != nil {
					cfg.Logger.Warn().Err(err).Str("image", existing.ImageURL).Msg("delete old event image")
				}
			}
			update["image_url"] = url
		}

		if _, err := col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update}); err != nil {
			cfg.Logger.Error().Err(err).Msg("update event")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		var updated models.Event
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&updated); err != nil {
			cfg.Logger.Error().Err(err).Msg("reload updated event")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
			return
		}

		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Event
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
			return
		}

		if _, err := col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
			cfg.Logger.Error().Err(err).Msg("delete event")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		if existing.ImageURL != "" {
			if err := cfg.Store.DeleteImage(existing.ImageURL); err != nil {
				cfg.Logger.Warn().Err(err).Str("image", existing.ImageURL).Msg("delete event image")
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
	}
}

// idOrSlugFilter matches a 24-hex path segment as an ObjectID and
// anything else as a slug.
func idOrSlugFilter(param string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(param); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"slug": param}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
