package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant statuses. The status endpoint accepts any of these at any
// time; there is no enforced transition graph.
const (
	StatusRegistered = "registered"
	StatusAttended   = "attended"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

var ParticipantStatuses = []string{StatusRegistered, StatusAttended, StatusCancelled, StatusNoShow}

type Participant struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone" json:"phone"`
	EventID          primitive.ObjectID `bson:"event" json:"event"`
	JoinID           string             `bson:"join_id" json:"joinId"`
	RegistrationDate time.Time          `bson:"registration_date" json:"registrationDate"`
	Status           string             `bson:"status" json:"status"`
	AdditionalInfo   string             `bson:"additional_info,omitempty" json:"additionalInfo,omitempty"`
}

func ValidParticipantStatus(status string) bool {
	for _, s := range ParticipantStatuses {
		if s == status {
			return true
		}
	}
	return false
}
