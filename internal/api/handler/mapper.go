package handler

import (
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

// --- Request → Service input ---

func toProfileUpdate(r updateProfileRequest) ports.ProfileUpdate {
	return ports.ProfileUpdate{
		Username:        r.Username,
		Email:           r.Email,
		NewPassword:     r.NewPassword,
		CurrentPassword: r.CurrentPassword,
	}
}

func toSwitches(r notificationSwitchesRequest) domain.NotificationSwitches {
	return domain.NotificationSwitches{Email: r.Email, Push: r.Push, InApp: r.InApp, Frequency: r.Frequency}
}

func toPreferences(r preferencesRequest) domain.Preferences {
	return domain.Preferences{Language: r.Language, Theme: r.Theme, Notifications: toSwitches(r.Notifications)}
}

func toAdminUpdate(r updateUserRequest) ports.AdminUserUpdate {
	out := ports.AdminUserUpdate{Email: r.Email, Username: r.Username}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		out.Role = &role
	}
	return out
}

func toCreateWordInput(r createWordRequest) ports.CreateWordInput {
	in := ports.CreateWordInput{
		Original:     r.Original,
		LanguageCode: r.LanguageCode,
		Difficulty:   r.Difficulty,
		Tags:         r.Tags,
		Examples:     r.Examples,
	}
	for _, t := range r.Translations {
		in.Translations = append(in.Translations, ports.TranslationInput{Text: t.Text, LanguageCode: t.LanguageCode})
	}
	return in
}

func toUpdateWordInput(r updateWordRequest) ports.UpdateWordInput {
	return ports.UpdateWordInput{
		Original:     r.Original,
		LanguageCode: r.LanguageCode,
		Difficulty:   r.Difficulty,
		Tags:         r.Tags,
		Examples:     r.Examples,
	}
}

func toCreateStoryInput(r createStoryRequest) ports.CreateStoryInput {
	return ports.CreateStoryInput{
		Title:        r.Title,
		Content:      r.Content,
		LanguageCode: r.LanguageCode,
		Type:         domain.StoryType(r.Type),
		Tags:         r.Tags,
	}
}

func toUpdateStoryInput(r updateStoryRequest) ports.UpdateStoryInput {
	in := ports.UpdateStoryInput{
		Title:        r.Title,
		Content:      r.Content,
		LanguageCode: r.LanguageCode,
		Tags:         r.Tags,
	}
	if r.Type != nil {
		t := domain.StoryType(*r.Type)
		in.Type = &t
	}
	return in
}

// --- Service result → HTTP response ---

func toPublicUsers(users []*domain.User) []domain.PublicUser {
	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

func toStoryResponse(s *domain.Story) storyResponse {
	return storyResponse{
		ID:               s.ID,
		Title:            s.Title,
		Content:          s.Content,
		LanguageCode:     s.LanguageCode,
		Type:             s.Type,
		Status:           s.Status,
		ModerationReason: s.ModerationReason,
		UserID:           s.UserID,
		Tags:             nonNil(s.Tags),
		Comments:         nonNil(s.Comments),
		RatingCount:      len(s.Ratings),
		AverageRating:    s.AverageRating(),
		CreatedAt:        s.CreatedAt.UTC(),
		UpdatedAt:        s.UpdatedAt.UTC(),
	}
}

func toStoryResponses(stories []*domain.Story) []storyResponse {
	out := make([]storyResponse, 0, len(stories))
	for _, s := range stories {
		out = append(out, toStoryResponse(s))
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
