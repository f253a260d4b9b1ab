// Package bot answers leaderboard questions in Discord and announces new
// leaders.
package bot

import (
	"context"
	"errors"
	"strings"
	"text/template"

	log "github.com/sirupsen/logrus"

	"github.com/rescuerunner/runnerboard"
	"github.com/rescuerunner/runnerboard/internal/command"
	"github.com/rescuerunner/runnerboard/internal/discord"
	"github.com/rescuerunner/runnerboard/internal/event"
)

var (
	templateBoard = template.Must(template.New("board").Parse(
		`{{ range $entry := . }}{{ $entry.Rank }}. {{ $entry.DisplayName }} - {{ $entry.Score }}
{{ end }}`))
	templateStanding = template.Must(template.New("standing").Parse(
		`{{ .DisplayName }} is ranked #{{ .Rank }} with {{ .Score }} points.`))
	templateLeader = template.Must(template.New("leader").Parse(
		`{{ .DisplayName }} took first place with {{ .Score }} points!`))
)

type Session interface {
	SendMessageToChannel(channelID string, msg string) error
	ReactToMessageWithEmoji(channelID, messageID, emojiID string) error
	Messages() <-chan discord.Message
}

type Board interface {
	Top(ctx context.Context, limit int) (runnerboard.Board, error)
	Standing(ctx context.Context, identity string) (runnerboard.RankedEntry, error)
}

type CommandRouter interface {
	Route(s string) (args command.ArgParser, remainder string)
}

type Bot struct {
	discord Session
	board   Board
	router  CommandRouter
}

func New(discord Session, board Board, router CommandRouter) *Bot {
	return &Bot{
		discord: discord,
		board:   board,
		router:  router,
	}
}

func (b *Bot) Listen(ctx context.Context) error {
	messages := b.discord.Messages()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("discord message stream closed")
			}

			cmd, remainder := b.router.Route(strings.TrimSpace(msg.Content))

			switch c := cmd.(type) {
			case *command.TopArgs:
				b.handleTop(ctx, c, msg.GuildID, msg.ChannelID, remainder)

			case *command.RankArgs:
				b.handleRank(ctx, c, msg.GuildID, msg.ChannelID, msg.ID, remainder)
			}
		}
	}
}

// Announce posts every leader change to channelID until ctx is done or
// events is closed.
func (b *Bot) Announce(ctx context.Context, channelID string, events <-chan event.Event) error {
	ll := log.WithFields(log.Fields{
		"channel_id": channelID,
		"handler":    "announce",
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return errors.New("event stream closed")
			}
			if evt.ChangedLeader == nil {
				continue
			}

			var r strings.Builder
			if err := templateLeader.Execute(&r, evt.ChangedLeader.Leader); err != nil {
				ll.WithError(err).Error("apply leader template")
				continue
			}

			if err := b.discord.SendMessageToChannel(channelID, r.String()); err != nil {
				ll.WithError(err).Error("send message to channel")
			}
		}
	}
}

func (b *Bot) handleTop(ctx context.Context, args *command.TopArgs, guildID, channelID, content string) {
	ll := log.WithFields(log.Fields{
		"guild_id":   guildID,
		"channel_id": channelID,
		"content":    content,
		"handler":    "top",
	})

	err := args.ParseArg(content)
	if errors.Is(err, command.ErrInvalidArgument) {
		if err := b.discord.SendMessageToChannel(channelID, `Board size must be a positive, non-zero number`); err != nil {
			ll.WithError(err).Error("send message to channel")
		}
		return
	}
	if err != nil {
		ll.WithError(err).Error("unexpected error from arg parser")
		return
	}

	board, err := b.board.Top(ctx, int(args.Limit))
	if err != nil {
		ll.WithError(err).Error("Top")
		return
	}

	if len(board) == 0 {
		if err := b.discord.SendMessageToChannel(channelID, `No scores have been submitted yet.`); err != nil {
			ll.WithError(err).Error("send message to channel")
		}
		return
	}

	var r strings.Builder
	if err := templateBoard.Execute(&r, board); err != nil {
		ll.WithError(err).Error("apply board template")
		return
	}

	if err := b.discord.SendMessageToChannel(channelID, r.String()); err != nil {
		ll.WithError(err).Error("send message to channel")
	}
}

func (b *Bot) handleRank(ctx context.Context, args *command.RankArgs, guildID, channelID, messageID, content string) {
	ll := log.WithFields(log.Fields{
		"guild_id":   guildID,
		"channel_id": channelID,
		"message_id": messageID,
		"content":    content,
		"handler":    "rank",
	})

	err := args.ParseArg(content)
	if errors.Is(err, command.ErrMissingArgument) {
		if err := b.discord.ReactToMessageWithEmoji(channelID, messageID, "❓"); err != nil {
			ll.WithError(err).Error("react to message in channel")
		}
		return
	}
	if err != nil {
		ll.WithError(err).Error("unexpected error from arg parser")
		return
	}

	standing, err := b.board.Standing(ctx, args.Identity)
	if errors.Is(err, runnerboard.ErrNotFound) {
		if err := b.discord.SendMessageToChannel(channelID, args.Identity+` has no score yet.`); err != nil {
			ll.WithError(err).Error("send message to channel")
		}
		return
	}
	if err != nil {
		ll.WithError(err).Error("Standing")
		return
	}

	var r strings.Builder
	if err := templateStanding.Execute(&r, standing); err != nil {
		ll.WithError(err).Error("apply standing template")
		return
	}

	if err := b.discord.SendMessageToChannel(channelID, r.String()); err != nil {
		ll.WithError(err).Error("send message to channel")
	}
}
