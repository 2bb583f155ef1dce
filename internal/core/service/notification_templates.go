package service

import (
	"fmt"
	"strings"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

type notificationContent struct {
	Title string
	Body  string
	Icon  string
	Link  string
}

type notificationTemplate func(data map[string]string) notificationContent

var notificationTemplates = map[domain.NotificationType]notificationTemplate{
	domain.NotifyContributionApproved: func(d map[string]string) notificationContent {
		kind := strings.ToLower(d["type"])
		subject := d["title"]
		if subject == "" {
			subject = d["content"]
		}
		return notificationContent{
			Title: "Contribution Approved",
			Body:  fmt.Sprintf("Your %s %q has been approved!", kind, subject),
			Icon:  "✅",
			Link:  fmt.Sprintf("/%ss/%s", kind, d["id"]),
		}
	},
	domain.NotifyNewComment: func(d map[string]string) notificationContent {
		kind := strings.ToLower(d["type"])
		return notificationContent{
			Title: "New Comment",
			Body:  fmt.Sprintf("%s commented on your %s", d["commenter"], kind),
			Icon:  "💬",
			Link:  fmt.Sprintf("/%ss/%s#comment-%s", kind, d["id"], d["commentId"]),
		}
	},
	domain.NotifyAchievementUnlocked: func(d map[string]string) notificationContent {
		return notificationContent{
			Title: "Achievement Unlocked!",
			Body:  fmt.Sprintf("You've earned the %q achievement!", d["name"]),
			Icon:  "🏆",
			Link:  "/profile/achievements",
		}
	},
	domain.NotifyTranslationSuggested: func(d map[string]string) notificationContent {
		return notificationContent{
			Title: "New Translation Suggestion",
			Body:  fmt.Sprintf("%s suggested a translation for %q", d["translator"], d["word"]),
			Icon:  "🔤",
			Link:  fmt.Sprintf("/words/%s/translations", d["wordId"]),
		}
	},
	domain.NotifyStreakReminder: func(d map[string]string) notificationContent {
		return notificationContent{
			Title: "Keep Your Streak Going!",
			Body:  fmt.Sprintf("Don't forget to contribute today to maintain your %s-day streak!", d["days"]),
			Icon:  "🔥",
			Link:  "/contribute",
		}
	},
	domain.NotifySystemUpdate: func(d map[string]string) notificationContent {
		link := d["link"]
		if link == "" {
			link = "/"
		}
		return notificationContent{Title: "System Update", Body: d["message"], Icon: "📢", Link: link}
	},
}
