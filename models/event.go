package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event categories accepted by the API.
var EventCategories = []string{"Conference", "Workshop", "Meetup", "Concert", "Exhibition", "Other"}

// Coordinates struct for latitude and longitude
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

type Event struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title                string             `bson:"title" json:"title"`
	Description          string             `bson:"description" json:"description"`
	ImageURL             string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	EventDate            time.Time          `bson:"event_date" json:"eventDate"`
	EventTime            string             `bson:"event_time,omitempty" json:"eventTime,omitempty"`
	EndDate              *time.Time         `bson:"end_date,omitempty" json:"endDate,omitempty"`
	EndTime              string             `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Location             string             `bson:"location" json:"location"`
	Coordinates          *Coordinates       `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Organizer            string             `bson:"organizer" json:"organizer"`
	Category             string             `bson:"category" json:"category"`
	RegistrationURL      string             `bson:"registration_url,omitempty" json:"registrationUrl,omitempty"`
	RegistrationRequired bool               `bson:"registration_required" json:"registrationRequired"`
	RegistrationEnabled  bool               `bson:"registration_enabled" json:"registrationEnabled"`
	MaxParticipants      *int               `bson:"max_participants,omitempty" json:"maxParticipants,omitempty"`
	ParticipantCount     int                `bson:"participant_count" json:"participantCount"`
	IsUpcoming           bool               `bson:"is_upcoming" json:"isUpcoming"`
	IsFeatured           bool               `bson:"is_featured" json:"isFeatured"`
	Slug                 string             `bson:"slug" json:"slug"`
	CreatedAt            time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updatedAt"`
}

// EventStatus is the temporal classification of an event relative to a
// reference date.
type EventStatus string

const (
	EventCurrent  EventStatus = "current"
	EventUpcoming EventStatus = "upcoming"
	EventPast     EventStatus = "past"
)

// Classify reports whether an event is current, upcoming or past as of
// the given reference time. The effective end is endDate (or eventDate
// when there is none) pushed to the last instant of its day; the
// effective start is eventDate at midnight. All callers go through this
// one predicate so persisted flags and computed groupings cannot drift.
func Classify(eventDate time.Time, endDate *time.Time, now time.Time) EventStatus {
	start := startOfDay(eventDate)

	end := eventDate
	if endDate != nil {
		end = *endDate
	}
	end = endOfDay(end)

	today := startOfDay(now)

	switch {
	case start.After(today):
		return EventUpcoming
	case end.Before(today):
		return EventPast
	default:
		return EventCurrent
	}
}

// Upcoming reports the persisted isUpcoming flag for an event: true
// until the event has fully ended, multi-day spans included.
func Upcoming(eventDate time.Time, endDate *time.Time, now time.Time) bool {
	return Classify(eventDate, endDate, now) != EventPast
}

func ValidEventCategory(category string) bool {
	for _, c := range EventCategories {
		if c == category {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, t.Location())
}
