package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// summaryTopN bounds how many candidates a Discord summary lists.
const summaryTopN = 5

// Discord posts a summary of each completed cycle to a channel. It is
// an optional sink, enabled only when credentials are configured.
type Discord struct {
	session   *discordgo.Session
	channelID string
	logger    *logger.Logger
}

// NewDiscord creates a Discord notifier and opens the bot session.
func NewDiscord(token, channelID string, log *logger.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Discord{
		session:   session,
		channelID: channelID,
		logger:    log.WithField("module", "notify"),
	}, nil
}

// Name implements jobs.CycleSink.
func (d *Discord) Name() string {
	return "discord"
}

// PublishCycle implements jobs.CycleSink.
func (d *Discord) PublishCycle(_ context.Context, cycle *screener.CycleResult) error {
	msg := FormatCycleSummary(cycle)
	if _, err := d.session.ChannelMessageSend(d.channelID, msg); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	d.logger.Debug("Cycle summary posted")
	return nil
}

// FormatCycleSummary renders a cycle as a Discord message: the top
// candidates in a code block plus any per-ticker warnings.
func FormatCycleSummary(cycle *screener.CycleResult) string {
	var sb strings.Builder

	sb.WriteString("📊 **Screening Cycle**\n")
	sb.WriteString(fmt.Sprintf("%d candidates | %d tickers | sorted by %s | %.1fs\n",
		len(cycle.Ranking), cycle.Survivors, cycle.SortKey, cycle.Duration.Seconds()))

	if len(cycle.Ranking) > 0 {
		sb.WriteString("```\n")
		for i, c := range cycle.Ranking {
			if i == summaryTopN {
				break
			}
			arr := "n/a"
			if c.ARRValid {
				arr = fmt.Sprintf("%.3f%%", c.ARR)
			}
			earnings := ""
			if c.HasEarnings {
				earnings = " [earnings]"
			}
			sb.WriteString(fmt.Sprintf("%-6s $%-7.2f %3dd  premium $%-8.2f arr %s%s\n",
				c.Ticker, c.StrikePrice, c.DaysToExpiration, c.PremiumUSD, arr, earnings))
		}
		sb.WriteString("```\n")
	}

	if len(cycle.Warnings) > 0 {
		sb.WriteString("\n**Warnings:**\n")
		for _, w := range cycle.Warnings {
			sb.WriteString(fmt.Sprintf("• %s (%s): %s\n", w.Ticker, w.Stage, w.Error))
		}
	}

	return sb.String()
}
