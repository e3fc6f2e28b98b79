package service

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"

	"equityscan/config"
	"equityscan/internal/bigbets"
	"equityscan/internal/dto"
	"equityscan/pkg/logger"
	"equityscan/pkg/telegram"
)

// NotifierService pushes daily results to the configured chat. A nil sender
// (no bot token) turns every send into a logged no-op.
type NotifierService interface {
	SendRecommendations(ctx context.Context, runDate string, recs []*dto.Recommendation, changes []dto.PortfolioChange) error
	SendBigBets(ctx context.Context, result *bigbets.Result) error
	SendAlert(ctx context.Context, message string) error
}

type notifierService struct {
	cfg    *config.Config
	log    *logger.Logger
	sender *telegram.Sender
}

func NewNotifierService(cfg *config.Config, log *logger.Logger, sender *telegram.Sender) NotifierService {
	return &notifierService{cfg: cfg, log: log, sender: sender}
}

func (n *notifierService) SendRecommendations(ctx context.Context, runDate string, recs []*dto.Recommendation, changes []dto.PortfolioChange) error {
	if n.sender == nil {
		n.log.DebugContext(ctx, "Notifier disabled, skipping recommendations message")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>📈 Daily Scan %s</b>\n\n", runDate)

	if len(recs) == 0 {
		b.WriteString("No recommendations available today.\n")
	}
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. <b>%s</b> (%.2f)\n", i+1, rec.Ticker, rec.FinalScore)
		fmt.Fprintf(&b, "   Close %.2f | Alloc %.0f | Qty %d\n", rec.Close, rec.Allocation, rec.Quantity)
	}

	if len(changes) > 0 {
		b.WriteString("\n<b>Portfolio Changes</b>\n")
		for _, c := range changes {
			switch c.Action {
			case dto.ActionNewEntry:
				fmt.Fprintf(&b, "🟢 NEW %s\n", c.Ticker)
			case dto.ActionDropout:
				fmt.Fprintf(&b, "🔴 DROP %s\n", c.Ticker)
			}
		}
	}

	return n.sender.SendToDefaultChat(ctx, b.String(), telebot.ModeHTML)
}

func (n *notifierService) SendBigBets(ctx context.Context, result *bigbets.Result) error {
	if n.sender == nil || result == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString("<b>🎯 Medium-Term Big Bets</b>\n\n")
	for _, rec := range result.Recommendations {
		fmt.Fprintf(&b, "%d. <b>%s</b> ROI %d/14 | Win %.0f%%\n", rec.Rank, rec.Name, rec.ROIScore, rec.WinProbability*100)
		fmt.Fprintf(&b, "   Alloc %.0f | Return %s\n", rec.Allocation, rec.ExpectedReturn)
		fmt.Fprintf(&b, "   %s\n", rec.Reason)
	}
	if len(result.MissingColumns) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Missing columns: %s\n", strings.Join(result.MissingColumns, ", "))
	}

	return n.sender.SendToDefaultChat(ctx, b.String(), telebot.ModeHTML)
}

func (n *notifierService) SendAlert(ctx context.Context, message string) error {
	if n.sender == nil {
		return nil
	}
	return n.sender.SendToDefaultChat(ctx, message)
}
