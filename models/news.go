package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// News categories accepted by the API.
var NewsCategories = []string{
	"General", "Technology", "Business", "Entertainment", "Sports",
	"Science", "Health", "World", "Lifestyle", "Travel", "Education",
	"Environment", "Local News", "Politics", "Culture", "Opinion", "Feature",
}

type News struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Subtitle    string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Summary     string             `bson:"summary,omitempty" json:"summary,omitempty"`
	Content     string             `bson:"content" json:"content"`
	Author      string             `bson:"author" json:"author"`
	ImageURL    string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Tags        []string           `bson:"tags" json:"tags"`
	PublishDate time.Time          `bson:"publish_date" json:"publishDate"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
	Featured    bool               `bson:"featured" json:"featured"`
	Trending    bool               `bson:"trending" json:"trending"`
	Views       int                `bson:"views" json:"views"`
	Likes       int                `bson:"likes" json:"likes"`
	Dislikes    int                `bson:"dislikes" json:"dislikes"`
	Slug        string             `bson:"slug" json:"slug"`
}

// VoteAction is the caller-supplied hint of this browser's last vote.
// It is not verified against any durable record, so the counters are
// best-effort only.
type VoteAction string

const (
	VoteNone     VoteAction = ""
	VoteLiked    VoteAction = "liked"
	VoteDisliked VoteAction = "disliked"
)

// ApplyVote adjusts like/dislike counters for a new vote given the
// previous action. Switching sides decrements the opposite counter,
// floored at zero; repeating the same action is a no-op.
func ApplyVote(likes, dislikes int, action, previous VoteAction) (int, int) {
	if action == previous {
		return likes, dislikes
	}

	switch action {
	case VoteLiked:
		likes++
		if previous == VoteDisliked && dislikes > 0 {
			dislikes--
		}
	case VoteDisliked:
		dislikes++
		if previous == VoteLiked && likes > 0 {
			likes--
		}
	}

	return likes, dislikes
}

func ValidNewsCategory(category string) bool {
	for _, c := range NewsCategories {
		if c == category {
			return true
		}
	}
	return false
}
