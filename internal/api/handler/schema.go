package handler

import (
	"time"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      domain.PublicUser `json:"user"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Users ---

type updateProfileRequest struct {
	Username        *string `json:"username"         validate:"omitempty,min=3,max=30,alphanum"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	NewPassword     *string `json:"new_password"     validate:"omitempty,min=8,max=72"`
	CurrentPassword string  `json:"current_password" validate:"required"`
}

type notificationSwitchesRequest struct {
	Email     bool   `json:"email"`
	Push      bool   `json:"push"`
	InApp     bool   `json:"in_app"`
	Frequency string `json:"frequency" validate:"omitempty,oneof=daily weekly never"`
}

type preferencesRequest struct {
	Language      string                      `json:"language" validate:"omitempty,min=2,max=10"`
	Theme         string                      `json:"theme"    validate:"omitempty,oneof=light dark system"`
	Notifications notificationSwitchesRequest `json:"notifications"`
}

type searchUsersRequest struct {
	Query string `query:"q"     validate:"omitempty,max=100"`
	Role  string `query:"role"  validate:"omitempty,oneof=ADMIN CURATOR CONTRIBUTOR USER VISITOR"`
	Page  int    `query:"page"  validate:"omitempty,min=1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type createUserRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN CURATOR CONTRIBUTOR USER VISITOR"`
}

type updateUserRequest struct {
	Email    *string `json:"email"    validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	Role     *string `json:"role"     validate:"omitempty,oneof=ADMIN CURATOR CONTRIBUTOR USER VISITOR"`
}

type permissionsResponse struct {
	Role        domain.Role         `json:"role"`
	Permissions []domain.Permission `json:"permissions"`
}

// --- Words ---

type translationRequest struct {
	Text         string `json:"text"          validate:"required,max=500"`
	LanguageCode string `json:"language_code" validate:"required,min=2,max=10"`
}

type createWordRequest struct {
	Original     string               `json:"original"      validate:"required,max=200"`
	LanguageCode string               `json:"language_code" validate:"required,min=2,max=10"`
	Difficulty   int                  `json:"difficulty"    validate:"omitempty,min=1,max=5"`
	Tags         []string             `json:"tags"          validate:"omitempty,max=20,dive,max=50"`
	Examples     []string             `json:"examples"      validate:"omitempty,max=20,dive,max=500"`
	Translations []translationRequest `json:"translations"  validate:"omitempty,max=50,dive"`
}

type updateWordRequest struct {
	Original     *string  `json:"original"      validate:"omitempty,max=200"`
	LanguageCode *string  `json:"language_code" validate:"omitempty,min=2,max=10"`
	Difficulty   *int     `json:"difficulty"    validate:"omitempty,min=1,max=5"`
	Tags         []string `json:"tags"          validate:"omitempty,max=20,dive,max=50"`
	Examples     []string `json:"examples"      validate:"omitempty,max=20,dive,max=500"`
}

type updateTranslationRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type searchWordsRequest struct {
	Query        string `query:"q"          validate:"omitempty,max=100"`
	LanguageCode string `query:"language"   validate:"omitempty,max=10"`
	Tag          string `query:"tag"        validate:"omitempty,max=50"`
	Difficulty   int    `query:"difficulty" validate:"omitempty,min=1,max=5"`
	Page         int    `query:"page"       validate:"omitempty,min=1"`
	Limit        int    `query:"limit"      validate:"omitempty,min=1,max=100"`
}

// --- Stories ---

type createStoryRequest struct {
	Title        string   `json:"title"         validate:"required,max=200"`
	Content      string   `json:"content"       validate:"required,max=50000"`
	LanguageCode string   `json:"language_code" validate:"required,min=2,max=10"`
	Type         string   `json:"type"          validate:"required,oneof=STORY PROVERB POEM SONG"`
	Tags         []string `json:"tags"          validate:"omitempty,max=20,dive,max=50"`
}

type updateStoryRequest struct {
	Title        *string  `json:"title"         validate:"omitempty,max=200"`
	Content      *string  `json:"content"       validate:"omitempty,max=50000"`
	LanguageCode *string  `json:"language_code" validate:"omitempty,min=2,max=10"`
	Type         *string  `json:"type"          validate:"omitempty,oneof=STORY PROVERB POEM SONG"`
	Tags         []string `json:"tags"          validate:"omitempty,max=20,dive,max=50"`
}

type moderateStoryRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type rateRequest struct {
	Value int `json:"value" validate:"required,min=1,max=5"`
}

type searchStoriesRequest struct {
	Query        string `query:"q"        validate:"omitempty,max=100"`
	LanguageCode string `query:"language" validate:"omitempty,max=10"`
	Type         string `query:"type"     validate:"omitempty,oneof=STORY PROVERB POEM SONG"`
	Status       string `query:"status"   validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Tag          string `query:"tag"      validate:"omitempty,max=50"`
	UserID       string `query:"user_id"  validate:"omitempty,max=64"`
	Sort         string `query:"sort"     validate:"omitempty,oneof=newest oldest title ratings"`
	Page         int    `query:"page"     validate:"omitempty,min=1"`
	Limit        int    `query:"limit"    validate:"omitempty,min=1,max=100"`
}

type storyResponse struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Content          string             `json:"content"`
	LanguageCode     string             `json:"language_code"`
	Type             domain.StoryType   `json:"type"`
	Status           domain.StoryStatus `json:"status"`
	ModerationReason string             `json:"moderation_reason,omitempty"`
	UserID           string             `json:"user_id"`
	Tags             []string           `json:"tags"`
	Comments         []domain.Comment   `json:"comments"`
	RatingCount      int                `json:"rating_count"`
	AverageRating    *float64           `json:"average_rating"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
