package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// DiscordAdapter posts notifications to a Discord channel through a bot
// session.
type DiscordAdapter struct {
	session   *discordgo.Session
	channelID string
	logger    *zap.Logger
}

// NewDiscordAdapter opens a Discord bot session targeting one channel.
func NewDiscordAdapter(botToken, channelID string, logger *zap.Logger) (*DiscordAdapter, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("discord open: %w", err)
	}
	logger.Info("discord adapter connected", zap.String("channel", channelID))
	return &DiscordAdapter{session: session, channelID: channelID, logger: logger}, nil
}

func (a *DiscordAdapter) Name() string { return "discord" }

// Deliver implements Adapter.
func (a *DiscordAdapter) Deliver(_ context.Context, n *Notification) error {
	embed := &discordgo.MessageEmbed{
		Title:       n.Title,
		Description: n.Description,
	}
	for _, g := range n.Goals {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   g.Name,
			Value:  fmt.Sprintf("%.0f%%", g.Progress*100),
			Inline: true,
		})
	}
	if n.Caution != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: n.Caution}
	}
	if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}

// Close shuts down the bot session.
func (a *DiscordAdapter) Close() error {
	return a.session.Close()
}
