package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/metrics"
	"github.com/mauv0809/shuttle-league/internal/notifier"
	"github.com/mauv0809/shuttle-league/internal/standings"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, fallback string, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendStandings(ctx context.Context, l *league.League, table []standings.Standing, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatStandings(l, table), l.Name+" standings", dryRun)
	return err
}

func (s *Notifier) SendInvitation(ctx context.Context, inv *league.Invitation, senderName, receiverName string, dryRun bool) error {
	msg := s.formatInvitation(inv, senderName, receiverName)
	_, _, err := s.sendMessage(ctx, msg, fmt.Sprintf("%s was invited to %s", receiverName, inv.LeagueName), dryRun)
	return err
}

func (s *Notifier) SendMatchResult(ctx context.Context, l *league.League, m *league.Match, names map[string]string, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatMatchResult(l, m, names), l.Name+" match result", dryRun)
	return err
}

// FormatStandingsResponse formats a standings message for an API or slash command response.
func (s *Notifier) FormatStandingsResponse(l *league.League, table []standings.Standing) (any, error) {
	return s.formatStandings(l, table), nil
}

func medal(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func plainSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil)
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil)
}

// formatStandings creates the standings table. The podium gets medals and its own block;
// the rest of the table follows a divider.
func (s *Notifier) formatStandings(l *league.League, table []standings.Standing) slack.Message {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏸 %s Standings 🏸", l.Name), true, false)),
	}

	if len(table) == 0 {
		blocks = append(blocks, plainSection("No participants yet. Invite some players!"))
		return slack.NewBlockMessage(blocks...)
	}

	podium := standings.Podium(table)
	for _, row := range podium {
		blocks = append(blocks, plainSection(formatRow(row)))
	}

	if rest := table[len(podium):]; len(rest) > 0 {
		blocks = append(blocks, slack.NewDividerBlock())
		lines := make([]string, 0, len(rest))
		for _, row := range rest {
			lines = append(lines, formatRow(row))
		}
		blocks = append(blocks, plainSection(strings.Join(lines, "\n")))
	}

	rules := fmt.Sprintf("Games to %d", l.Rules.Points)
	if l.Rules.Deuce {
		rules += " with deuce"
	}
	if l.Rules.Double {
		rules += " | Doubles"
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", rules, false, false)))
	return slack.NewBlockMessage(blocks...)
}

func formatRow(row standings.Standing) string {
	name := row.Name
	if name == "" {
		name = row.UserID
	}
	prefix := fmt.Sprintf("%d.", row.Position)
	if m := medal(row.Position); m != "" {
		prefix += " " + m
	}
	return fmt.Sprintf("%s %s\n> W/L: %d/%d | Win %%: %.2f%% | Points: %d-%d (%+d)",
		prefix,
		name,
		row.Wins,
		row.Losses,
		row.WinPercentage,
		row.PointsScored,
		row.PointsConceded,
		row.PointDiff,
	)
}

func (s *Notifier) formatInvitation(inv *league.Invitation, senderName, receiverName string) slack.Message {
	text := fmt.Sprintf("✉️ *%s* invited *%s* to join *%s*", senderName, receiverName, inv.LeagueName)
	return slack.NewBlockMessage(markdownSection(text))
}

func teamNames(team []string, names map[string]string) string {
	out := make([]string, len(team))
	for i, id := range team {
		if n, ok := names[id]; ok && n != "" {
			out[i] = n
		} else {
			out[i] = id
		}
	}
	return strings.Join(out, " & ")
}

func (s *Notifier) formatMatchResult(l *league.League, m *league.Match, names map[string]string) slack.Message {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏸 Match Result: %s", l.Name), true, false)),
	}

	team1, team2 := teamNames(m.Team1, names), teamNames(m.Team2, names)
	score := fmt.Sprintf("*%s*  %d - %d  *%s*", team1, m.Score1, m.Score2, team2)
	blocks = append(blocks, markdownSection(score))

	if winners := m.Winners(); winners != nil {
		blocks = append(blocks, markdownSection(fmt.Sprintf("🏆 Winners: %s", teamNames(winners, names))))
	}
	return slack.NewBlockMessage(blocks...)
}
