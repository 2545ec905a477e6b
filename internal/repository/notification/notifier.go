package notification

import (
	"context"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
)

// EmailSender contract interface
type EmailSender interface {
	SendEmail(toName, toEmail, subject, message string) error
}

// UserLookup contract interface
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

const (
	subjectAchievementUnlocked = "Achievement Unlocked!"
	subjectAchievementProgress = "You're Almost There!"
	subjectRankChanged         = "You've Reached a New Rank!"

	bodyAchievementUnlocked = `Congratulations %v, you just unlocked "%v"!`
	bodyAchievementProgress = `Hi %v, one more step and "%v" is yours. You're at %v of %v.`
	bodyRankChanged         = `Congratulations %v, you are now a %v member. Your points now earn a %.1fx multiplier.`
)

// Notifier turns loyalty milestones into member emails. Every send is best
// effort: callers treat a returned error as log-worthy, never as a reason to
// unwind economy state.
type Notifier struct {
	sender EmailSender
	users  UserLookup
}

func NewNotifier(sender EmailSender, users UserLookup) *Notifier {
	return &Notifier{
		sender: sender,
		users:  users,
	}
}

func (n *Notifier) AchievementUnlocked(ctx context.Context, userID uint, a domain.Achievement) error {
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("look up user %d for notification: %w", userID, err)
	}

	return n.sender.SendEmail(user.FullName, user.Email, subjectAchievementUnlocked,
		fmt.Sprintf(bodyAchievementUnlocked, user.FullName, a.Title))
}

func (n *Notifier) AchievementProgress(ctx context.Context, userID uint, a domain.Achievement, count int) error {
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("look up user %d for notification: %w", userID, err)
	}

	return n.sender.SendEmail(user.FullName, user.Email, subjectAchievementProgress,
		fmt.Sprintf(bodyAchievementProgress, user.FullName, a.Title, count, a.TriggerCount))
}

func (n *Notifier) RankChanged(ctx context.Context, userID uint, rank domain.Rank) error {
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("look up user %d for notification: %w", userID, err)
	}

	return n.sender.SendEmail(user.FullName, user.Email, subjectRankChanged,
		fmt.Sprintf(bodyRankChanged, user.FullName, rank.Name, rank.PointMultiplier))
}
