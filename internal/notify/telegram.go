package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"gorm.io/gorm"

	"coinladder-api/internal/models"
)

// Service messages upline members over Telegram when a referral credit
// lands on their balance. Users without a linked Telegram ID are skipped.
type Service struct {
	Bot *telego.Bot
	DB  *gorm.DB
}

func NewService(token string, db *gorm.DB) (*Service, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Service{
		Bot: bot,
		DB:  db,
	}, nil
}

// CreditIssued is called after the payout transaction has committed. Send
// failures are logged and never surfaced.
func (s *Service) CreditIssued(receiverUID string, amount float64) {
	var user models.User
	if err := s.DB.Where("uid = ?", receiverUID).First(&user).Error; err != nil {
		log.Printf("Failed to load credit receiver %s: %v", receiverUID, err)
		return
	}
	if user.TelegramID == 0 {
		return
	}

	_, err := s.Bot.SendMessage(context.Background(), tu.Message(
		tu.ID(user.TelegramID),
		fmt.Sprintf("💰 You received a referral bonus of %.2f coins!", amount),
	))
	if err != nil {
		log.Printf("Failed to notify %s about referral credit: %v", receiverUID, err)
	}
}
