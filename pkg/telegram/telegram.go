package telegram

import (
	"context"
	"equityscan/config"
	"equityscan/pkg/logger"
	"equityscan/pkg/ratelimit"
	"fmt"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Sender is a one-way, rate-limited telegram client. Delivery only; there is
// no inbound command handling.
type Sender struct {
	cfg           *config.Telegram
	log           *logger.Logger
	bot           *telebot.Bot
	globalLimiter *rate.Limiter
	chatLimiters  *ratelimit.LimiterStore
}

func NewSender(cfg *config.Telegram, log *logger.Logger, bot *telebot.Bot) *Sender {
	return &Sender{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.MaxGlobalRequestPerSecond), cfg.MaxGlobalRequestPerSecond),
		chatLimiters:  ratelimit.NewLimiterStore(rate.Limit(cfg.MaxChatRequestPerSecond), 1),
	}
}

func (s *Sender) SendMessage(ctx context.Context, chatID int64, message string, opts ...interface{}) error {
	if err := s.globalLimiter.Wait(ctx); err != nil {
		return err
	}

	chatLimiter := s.chatLimiters.GetLimiter(fmt.Sprintf("%d", chatID))
	if err := chatLimiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := s.bot.Send(&telebot.User{ID: chatID}, message, opts...); err != nil {
		s.log.ErrorContext(ctx, "Failed to send telegram message", logger.ErrorField(err))
		return err
	}
	return nil
}

// SendToDefaultChat delivers to the chat configured for daily recommendations.
func (s *Sender) SendToDefaultChat(ctx context.Context, message string, opts ...interface{}) error {
	return s.SendMessage(ctx, s.cfg.ChatID, message, opts...)
}
