package controllers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/btnpop/btnpop-api/config"
	"github.com/btnpop/btnpop-api/middleware"
	"github.com/btnpop/btnpop-api/models"
	"github.com/btnpop/btnpop-api/utils"
)

// ---------------- REGISTER ----------------
// RegisterForEvent creates a registration for a public visitor. The
// slot claim is a single conditional $inc on the event document, so two
// racers for the last slot cannot both get in: the filter only matches
// while participant_count is still below max_participants.
func RegisterForEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("eventId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
			return
		}

		var input middleware.RegistrationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Invalid request body"}})
			return
		}
		if errs := middleware.CheckRegistration(input); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		email := normalizeEmail(input.Email)

		events := cfg.Collection("events")
		participants := cfg.Collection("participants")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Fast path for repeat registrations. A concurrent duplicate
		// still gets caught below by the unique (event, email) index.
		var existing models.Participant
		err = participants.FindOne(ctx, bson.M{"event": eventID, "email": email}).Decode(&existing)
		if err == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"message":       "You are already registered for this event",
				"participantId": existing.ID.Hex(),
				"joinId":        existing.JoinID,
			})
			return
		}

		// Claim a slot.
		claim := bson.M{
			"_id":                  eventID,
			"registration_enabled": true,
			"$or": bson.A{
				bson.M{"max_participants": nil},
				bson.M{"$expr": bson.M{"$lt": bson.A{"$participant_count", "$max_participants"}}},
			},
		}
		var event models.Event
		err = events.FindOneAndUpdate(
			ctx,
			claim,
			bson.M{"$inc": bson.M{"participant_count": 1}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&event)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				cfg.Logger.Error().Err(err).Msg("claim registration slot")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			// The claim filter rejected; find out why.
			var reason models.Event
			if err := events.FindOne(ctx, bson.M{"_id": eventID}).Decode(&reason); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
				return
			}
			if !reason.RegistrationEnabled {
				c.JSON(http.StatusBadRequest, gin.H{"message": models.ErrRegistrationClosed.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"message": models.ErrEventFull.Error()})
			return
		}

		participant := models.Participant{
			ID:               primitive.NewObjectID(),
			Name:             input.Name,
			Email:            email,
			Phone:            input.Phone,
			EventID:          eventID,
			JoinID:           uuid.New().String(),
			RegistrationDate: time.Now(),
			Status:           models.StatusRegistered,
			AdditionalInfo:   input.AdditionalInfo,
		}

		if _, err := participants.InsertOne(ctx, participant); err != nil {
			// Give the claimed slot back before reporting.
			if _, decErr := events.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$inc": bson.M{"participant_count": -1}}); decErr != nil {
				cfg.Logger.Error().Err(decErr).Str("event", eventID.Hex()).Msg("release registration slot")
			}

			if mongo.IsDuplicateKeyError(err) {
				if lookupErr := participants.FindOne(ctx, bson.M{"event": eventID, "email": email}).Decode(&existing); lookupErr == nil {
					c.JSON(http.StatusBadRequest, gin.H{
						"message":       "You are already registered for this event",
						"participantId": existing.ID.Hex(),
						"joinId":        existing.JoinID,
					})
					return
				}
			}

			cfg.Logger.Error().Err(err).Msg("insert participant")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":     "Registration successful!",
			"participant": participant,
		})
	}
}

// ---------------- LIST BY EVENT ----------------
func EventParticipants(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("eventId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := cfg.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Err(); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
			return
		}

		page := queryInt(c, "page", 1)
		limit := queryInt(c, "limit", 20)

		col := cfg.Collection("participants")
		filter := bson.M{"event": eventID}
		opts := options.Find().
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "registration_date", Value: -1}})

		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("list participants")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		participants := []models.Participant{}
		if err := cursor.All(ctx, &participants); err != nil {
			cfg.Logger.Error().Err(err).Msg("decode participants")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		total, err := col.CountDocuments(ctx, filter)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("count participants")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"participants":      participants,
			"totalPages":        int(math.Ceil(float64(total) / float64(limit))),
			"currentPage":       page,
			"totalParticipants": total,
		})
	}
}

// ---------------- GET ----------------
func GetParticipant(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid participant ID"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var participant models.Participant
		if err := cfg.Collection("participants").FindOne(ctx, bson.M{"_id": oid}).Decode(&participant); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Participant not found"})
			return
		}

		var event models.Event
		if err := cfg.Collection("events").FindOne(ctx, bson.M{"_id": participant.EventID}).Decode(&event); err == nil {
			c.JSON(http.StatusOK, gin.H{"participant": participant, "event": event})
			return
		}

		c.JSON(http.StatusOK, gin.H{"participant": participant})
	}
}

// ---------------- UPDATE STATUS ----------------
// UpdateParticipantStatus sets the status label. Any of the four values
// is accepted at any time, and the event's participant counter is never
// touched here; cancelling does not free a slot.
func UpdateParticipantStatus(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid participant ID"})
			return
		}

		var input struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || !models.ValidParticipantStatus(input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": models.ErrInvalidStatus.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var updated models.Participant
		err = cfg.Collection("participants").FindOneAndUpdate(
			ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"status": input.Status}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Participant not found"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// ---------------- TICKET ----------------
// GenerateTicket renders the registration PDF to a temp file, streams
// it, and removes the file whether the send succeeds or not.
func GenerateTicket(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid participant ID"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var participant models.Participant
		if err := cfg.Collection("participants").FindOne(ctx, bson.M{"_id": oid}).Decode(&participant); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Participant not found"})
			return
		}

		var event models.Event
		if err := cfg.Collection("events").FindOne(ctx, bson.M{"_id": participant.EventID}).Decode(&event); err != nil {
			cfg.Logger.Error().Err(err).Str("participant", oid.Hex()).Msg("ticket event lookup")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "The associated event may no longer exist"})
			return
		}

		tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("event-ticket-%s-%d.pdf", participant.JoinID, time.Now().UnixNano()))
		defer func() {
			if err := os.Remove(tmpFile); err != nil && !os.IsNotExist(err) {
				cfg.Logger.Warn().Err(err).Str("path", tmpFile).Msg("remove ticket temp file")
			}
		}()

		if err := utils.RenderTicket(&participant, &event, tmpFile); err != nil {
			cfg.Logger.Error().Err(err).Msg("render ticket")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during ticket generation"})
			return
		}

		c.FileAttachment(tmpFile, fmt.Sprintf("event-ticket-%s.pdf", participant.JoinID))
	}
}

// ---------------- VERIFY ----------------
// CheckParticipant verifies a registration by its public joinId without
// exposing the internal primary key.
func CheckParticipant(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		joinID := c.Param("joinId")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var participant models.Participant
		if err := cfg.Collection("participants").FindOne(ctx, bson.M{"join_id": joinID}).Decode(&participant); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Invalid registration ID"})
			return
		}

		var event models.Event
		if err := cfg.Collection("events").FindOne(ctx, bson.M{"_id": participant.EventID}).Decode(&event); err == nil {
			c.JSON(http.StatusOK, gin.H{"participant": participant, "event": event})
			return
		}

		c.JSON(http.StatusOK, gin.H{"participant": participant})
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
