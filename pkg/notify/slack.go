// Package notify 将当天的值班安排推送到 Slack
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
)

// SlackConfig Slack 通知配置
// 配置了 WebhookURL 时优先使用 Incoming Webhook，否则使用 Bot Token 发送到 Channel
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	BotToken   string `mapstructure:"bot_token"`
	Channel    string `mapstructure:"channel"`
	APIURL     string `mapstructure:"api_url"` // 为空时使用 Slack 官方地址
}

// Enabled 是否配置了任一发送方式
func (c SlackConfig) Enabled() bool {
	return c.WebhookURL != "" || (c.BotToken != "" && c.Channel != "")
}

// Poster 发送一条文本消息
type Poster interface {
	Post(ctx context.Context, text string) error
}

type webhookPoster struct {
	url string
}

func (p *webhookPoster) Post(ctx context.Context, text string) error {
	return slack.PostWebhookContext(ctx, p.url, &slack.WebhookMessage{Text: text})
}

type botPoster struct {
	client  *slack.Client
	channel string
}

func (p *botPoster) Post(ctx context.Context, text string) error {
	_, _, err := p.client.PostMessageContext(
		ctx,
		p.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(false),
	)
	return err
}

// Notifier 值班交接通知
type Notifier struct {
	poster Poster
}

// NewNotifier 使用自定义发送方式创建通知器
func NewNotifier(poster Poster) *Notifier {
	return &Notifier{poster: poster}
}

// NewSlackNotifier 创建 Slack 通知器
func NewSlackNotifier(cfg SlackConfig) (*Notifier, error) {
	switch {
	case cfg.WebhookURL != "":
		return NewNotifier(&webhookPoster{url: cfg.WebhookURL}), nil
	case cfg.BotToken != "" && cfg.Channel != "":
		var opts []slack.Option
		if cfg.APIURL != "" {
			opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
		}
		return NewNotifier(&botPoster{
			client:  slack.New(cfg.BotToken, opts...),
			channel: cfg.Channel,
		}), nil
	}
	return nil, apperrors.New(apperrors.CodeUnavailable, "未配置 Slack 通知")
}

// Handoff 发送指定日期的值班交接消息，返回发送的文本
func (n *Notifier) Handoff(ctx context.Context, assignments []model.Assignment, date string) (string, error) {
	text, err := HandoffMessage(assignments, date)
	if err != nil {
		return "", err
	}

	if err := n.poster.Post(ctx, text); err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("date", date).Msg("Slack 通知发送失败")
		return "", apperrors.Wrap(err, apperrors.CodeUpstream, "Slack 通知发送失败").WithDetails(err.Error())
	}

	logger.WithContext(ctx).Info().Str("date", date).Msg("值班交接通知已发送")
	return text, nil
}

// HandoffMessage 生成 Slack mrkdwn 格式的交接消息
func HandoffMessage(assignments []model.Assignment, date string) (string, error) {
	var sb strings.Builder
	found := 0
	for _, a := range assignments {
		if a.Date != date {
			continue
		}
		if found == 0 {
			sb.WriteString(fmt.Sprintf(":pager: *值班交接 %s*\n", date))
		}
		found++
		sb.WriteString(fmt.Sprintf("• %s：主值班 %s，副值班 %s\n",
			a.Kind, mention(a.Primary), mention(a.Secondary)))
	}
	if found == 0 {
		return "", apperrors.NotFound("值班安排", date)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// slackEscaper 转义 Slack 控制字符
var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func mention(member string) string {
	if member == model.Unfilled {
		return "_" + model.UnfilledDisplay + "_"
	}
	return "*" + slackEscaper.Replace(member) + "*"
}
