package account

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"coinladder-api/internal/database"
	"coinladder-api/internal/metrics"
	"coinladder-api/internal/models"
	"coinladder-api/internal/payout"
)

// Notifier is told about upline credits once they have committed.
type Notifier interface {
	CreditIssued(receiverUID string, amount float64)
}

// Service owns account activation, level upgrades and profile updates.
type Service struct {
	db       *gorm.DB
	engine   *payout.Engine
	notifier Notifier
}

func NewService(db *gorm.DB, engine *payout.Engine, notifier Notifier) *Service {
	return &Service{
		db:       db,
		engine:   engine,
		notifier: notifier,
	}
}

// Activate deducts the level's cost, marks the account active and pays out
// the level's distribution rule, all in one retried transaction.
func (s *Service) Activate(ctx context.Context, uid string, level int) error {
	cost, ok := payout.LevelCost(level)
	if !ok {
		return &ValidationError{Reason: "A valid level (1-10) must be provided."}
	}

	var credits []payout.Credit
	err := database.RunInTx(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		user, err := loadUser(tx, uid)
		if err != nil {
			return err
		}
		if user.Status == models.StatusActive {
			return ErrAlreadyActive
		}
		if user.Coins < cost {
			return &InsufficientCoinsError{Required: cost}
		}

		if err := debit(tx, uid, cost, map[string]interface{}{
			"status":        models.StatusActive,
			"account_level": level,
		}, "status <> ?", models.StatusActive); err != nil {
			return err
		}

		credits, err = s.engine.Distribute(tx, user, level, payout.RuleForLevel(level))
		return err
	})
	if err != nil {
		return err
	}

	log.Printf("User %s activated at level %d", uid, level)
	s.reportCredits(credits)
	return nil
}

// Upgrade moves an account strictly upward, charging the full cost of the
// target level. Status is left untouched.
func (s *Service) Upgrade(ctx context.Context, uid string, targetLevel int) error {
	if targetLevel <= payout.MinLevel || targetLevel > payout.MaxLevel {
		return &ValidationError{Reason: "Invalid target level provided."}
	}
	cost, ok := payout.LevelCost(targetLevel)
	if !ok {
		return &ValidationError{Reason: "Invalid target level provided."}
	}

	var credits []payout.Credit
	err := database.RunInTx(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		user, err := loadUser(tx, uid)
		if err != nil {
			return err
		}
		if targetLevel <= user.AccountLevel {
			return &ValidationError{Reason: "You can only upgrade to a higher level."}
		}
		if user.Coins < cost {
			return &InsufficientCoinsError{Required: cost}
		}

		if err := debit(tx, uid, cost, map[string]interface{}{
			"account_level": targetLevel,
		}, "account_level < ?", targetLevel); err != nil {
			return err
		}

		credits, err = s.engine.Distribute(tx, user, targetLevel, payout.RuleForLevel(targetLevel))
		return err
	})
	if err != nil {
		return err
	}

	log.Printf("User %s upgraded to level %d", uid, targetLevel)
	s.reportCredits(credits)
	return nil
}

// UpdateProfileInfo merges name and bio onto the user's record.
func (s *Service) UpdateProfileInfo(ctx context.Context, uid, name, bio string) error {
	return s.updateFields(ctx, uid, map[string]interface{}{
		"name": name,
		"bio":  bio,
	})
}

// UpdateSocialLinks merges the social links onto the user's record.
func (s *Service) UpdateSocialLinks(ctx context.Context, uid, facebookLink, linkedInLink string) error {
	return s.updateFields(ctx, uid, map[string]interface{}{
		"facebook_link":  facebookLink,
		"linked_in_link": linkedInLink,
	})
}

// UpdateProfileImages merges only the image URLs that were provided.
func (s *Service) UpdateProfileImages(ctx context.Context, uid string, profileImageURL, coverImageURL *string) error {
	fields := map[string]interface{}{}
	if profileImageURL != nil {
		fields["profile_image_url"] = *profileImageURL
	}
	if coverImageURL != nil {
		fields["cover_image_url"] = *coverImageURL
	}
	if len(fields) == 0 {
		return &ValidationError{Reason: "No image URL provided."}
	}
	return s.updateFields(ctx, uid, fields)
}

func (s *Service) updateFields(ctx context.Context, uid string, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", uid, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// reportCredits runs after commit only. Admin credits are counted, upline
// credits are counted and handed to the notifier.
func (s *Service) reportCredits(credits []payout.Credit) {
	for _, credit := range credits {
		metrics.CoinsDistributed.WithLabelValues(credit.Kind).Add(credit.Amount)
		if credit.Kind == payout.CreditKindUpline && s.notifier != nil {
			s.notifier.CreditIssued(credit.ReceiverUID, credit.Amount)
		}
	}
}

func loadUser(tx *gorm.DB, uid string) (*models.User, error) {
	var user models.User
	if err := tx.Where("uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", uid, err)
	}
	return &user, nil
}

// debit takes cost from the user together with extra field changes. The
// balance and the caller's precondition repeat in the WHERE clause, so a
// write whose preconditions were invalidated after the read affects zero
// rows. Zero rows means another transaction won the race: the debit
// reports a conflict and the retried attempt re-checks committed state.
func debit(tx *gorm.DB, uid string, cost float64, extra map[string]interface{}, guard string, guardArgs ...interface{}) error {
	fields := map[string]interface{}{
		"coins": gorm.Expr("coins - ?", cost),
	}
	for k, v := range extra {
		fields[k] = v
	}

	res := tx.Model(&models.User{}).
		Where("uid = ? AND coins >= ?", uid, cost).
		Where(guard, guardArgs...).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to debit user %s: %w", uid, res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrConflict
	}
	return nil
}
