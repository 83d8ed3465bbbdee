package chatbot

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	SourceRule = "rule"
	SourceAI   = "ai"
)

// Reply — ответ бота и откуда он взят.
type Reply struct {
	Text   string `json:"reply"`
	Source string `json:"source"`
}

// Bot сначала ищет ответ в правилах, затем спрашивает Provider.
type Bot struct {
	rules    []Rule
	provider Provider
	logger   *zap.SugaredLogger
}

// NewBot; provider может быть nil — тогда вопросы вне правил дают ErrNotConfigured.
func NewBot(rules []Rule, provider Provider, logger *zap.SugaredLogger) *Bot {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Bot{rules: rules, provider: provider, logger: logger}
}

func (b *Bot) Reply(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	if r, ok := Match(b.rules, message); ok {
		b.logger.Debugw("chatbot rule matched", "rule", r.Name)
		return Reply{Text: r.Answer, Source: SourceRule}, nil
	}

	if b.provider == nil {
		return Reply{}, ErrNotConfigured
	}
	text, err := b.provider.Complete(ctx, message)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: text, Source: SourceAI}, nil
}
