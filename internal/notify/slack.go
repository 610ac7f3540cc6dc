package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// SlackAdapter posts notifications to a Slack channel.
type SlackAdapter struct {
	client  *slack.Client
	channel string
	logger  *zap.Logger
}

// NewSlackAdapter creates a Slack adapter from a bot token (xoxb-...).
func NewSlackAdapter(botToken, channel string, logger *zap.Logger) *SlackAdapter {
	return &SlackAdapter{
		client:  slack.New(botToken),
		channel: channel,
		logger:  logger,
	}
}

func (a *SlackAdapter) Name() string { return "slack" }

// Deliver implements Adapter.
func (a *SlackAdapter) Deliver(ctx context.Context, n *Notification) error {
	text := fmt.Sprintf("*%s*\n%s", n.Title, n.Description)
	for _, g := range n.Goals {
		text += fmt.Sprintf("\n• %s — %.0f%%", g.Name, g.Progress*100)
	}
	if n.Caution != "" {
		text += "\n_" + n.Caution + "_"
	}

	_, _, err := a.client.PostMessageContext(ctx, a.channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	return nil
}
