package domain

import "time"

// StoryType classifies narrative content.
type StoryType string

const (
	StoryTypeStory   StoryType = "STORY"
	StoryTypeProverb StoryType = "PROVERB"
	StoryTypePoem    StoryType = "POEM"
	StoryTypeSong    StoryType = "SONG"
)

// StoryStatus is the moderation state of a story.
type StoryStatus string

const (
	StoryPending  StoryStatus = "PENDING"
	StoryApproved StoryStatus = "APPROVED"
	StoryRejected StoryStatus = "REJECTED"
)

// Comment is a reader remark on a story.
type Comment struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Username  string    `json:"username" bson:"username"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Rating is a 1..5 score; one per user per story.
type Rating struct {
	UserID string `json:"user_id" bson:"user_id"`
	Value  int    `json:"value" bson:"value"`
}

// Story is user-contributed narrative content.
type Story struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Content          string      `json:"content"`
	LanguageCode     string      `json:"language_code"`
	Type             StoryType   `json:"type"`
	Status           StoryStatus `json:"status"`
	ModerationReason string      `json:"moderation_reason,omitempty"`
	UserID           string      `json:"user_id"`
	Tags             []string    `json:"tags"`
	Comments         []Comment   `json:"comments"`
	Ratings          []Rating    `json:"-"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	// Version increases with every stored write.
	Version int64 `json:"-"`
}

// AverageRating returns the mean rating, or nil when unrated.
func (s *Story) AverageRating() *float64 {
	if len(s.Ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range s.Ratings {
		sum += r.Value
	}
	avg := float64(sum) / float64(len(s.Ratings))
	return &avg
}

// FindComment returns the comment with id, or nil.
func (s *Story) FindComment(id string) *Comment {
	for i := range s.Comments {
		if s.Comments[i].ID == id {
			return &s.Comments[i]
		}
	}
	return nil
}
