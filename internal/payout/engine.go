package payout

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"coinladder-api/internal/models"
)

const (
	CreditKindAdmin  = "admin"
	CreditKindUpline = "upline"
)

// Credit is one coin increment issued during a distribution.
type Credit struct {
	ReceiverUID string
	Amount      float64
	Kind        string
	// Depth is the upline position (0 = direct referrer); -1 for the
	// admin credit.
	Depth int
}

// Engine splits a level's cost between the admin account and the spending
// user's upline chain. An empty AdminUID disables the admin credit.
type Engine struct {
	AdminUID string
}

func NewEngine(adminUID string) *Engine {
	return &Engine{AdminUID: adminUID}
}

// Distribute applies rule's shares inside tx and returns every credit it
// issued. Callers must only act on the returned credits once the
// transaction has committed. A nil rule is a logged no-op; a missing
// referrer mid-chain truncates the walk without failing the transaction.
func (e *Engine) Distribute(tx *gorm.DB, user *models.User, level int, rule *Rule) ([]Credit, error) {
	if rule == nil {
		log.Printf("No distribution rule for level %d, skipping coin distribution", level)
		return nil, nil
	}

	var credits []Credit

	if e.AdminUID != "" && rule.AdminShare > 0 {
		if err := e.credit(tx, e.AdminUID, user.UID, rule.AdminShare, CreditKindAdmin, level); err != nil {
			return nil, err
		}
		credits = append(credits, Credit{ReceiverUID: e.AdminUID, Amount: rule.AdminShare, Kind: CreditKindAdmin, Depth: -1})
	}

	currentReferrerID := user.ReferrerID
	for i := 0; i < len(rule.UplineShares) && i < MaxReferralDepth && currentReferrerID != nil; i++ {
		var referrer models.User
		err := tx.Where("uid = ?", *currentReferrerID).First(&referrer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Referrer %s not found in chain, stopping distribution", *currentReferrerID)
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch referrer %s: %w", *currentReferrerID, err)
		}

		share := rule.UplineShares[i]
		if err := e.credit(tx, referrer.UID, user.UID, share, CreditKindUpline, level); err != nil {
			return nil, err
		}
		credits = append(credits, Credit{ReceiverUID: referrer.UID, Amount: share, Kind: CreditKindUpline, Depth: i})

		currentReferrerID = referrer.ReferrerID
	}

	return credits, nil
}

// credit increments the receiver's balance and writes the audit row. The
// increment is a blind UPDATE so a configured-but-missing admin record
// affects zero rows instead of failing the payout.
func (e *Engine) credit(tx *gorm.DB, receiverUID, sourceUID string, amount float64, kind string, level int) error {
	if err := tx.Model(&models.User{}).
		Where("uid = ?", receiverUID).
		Update("coins", gorm.Expr("coins + ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to credit %s: %w", receiverUID, err)
	}

	record := models.CreditRecord{
		ReceiverUID: receiverUID,
		SourceUID:   sourceUID,
		Amount:      amount,
		Level:       level,
		Kind:        kind,
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record credit for %s: %w", receiverUID, err)
	}
	return nil
}
