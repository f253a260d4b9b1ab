package bot_test

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/rescuerunner/runnerboard"
	"github.com/rescuerunner/runnerboard/internal/bot"
	"github.com/rescuerunner/runnerboard/internal/command"
	"github.com/rescuerunner/runnerboard/internal/discord"
	"github.com/rescuerunner/runnerboard/internal/discord/discordtest"
	"github.com/rescuerunner/runnerboard/internal/event"
	"github.com/rescuerunner/runnerboard/internal/store/sqlite"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBot(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bot Suite")
}

type boardLine struct {
	Rank  int
	Name  string
	Score int64
}

var _ = Describe("Bot", func() {
	var (
		botName = "@runnerbot"
		ranking *runnerboard.Service
		router  *command.Router
		session *discordtest.ResponseRecorder
		clock   time.Time
	)

	submit := func(ctx context.Context, identity, name string, score int) {
		_, err := ranking.Submit(ctx, runnerboard.Submission{
			Identity:    identity,
			DisplayName: name,
			Score:       json.Number(strconv.Itoa(score)),
		})
		Expect(err).ToNot(HaveOccurred())
	}

	BeforeEach(func() {
		router = command.NewRouter(botName)
		db, cleanup, err := sqlite.NewInMemory()
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(cleanup)

		clock = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
		ranking = runnerboard.NewService(db, runnerboard.Options{
			Now: func() time.Time {
				clock = clock.Add(time.Second)
				return clock
			},
		})
	})

	When("the top command is invoked", func() {
		Context("with an invalid argument", func() {
			It("responds with an error message", func(ctx SpecContext) {
				session = discordtest.NewResponseRecorder([]discord.Message{
					{ID: "1", GuildID: "123", ChannelID: "456", Content: botName + " top -1"},
					{ID: "2", GuildID: "123", ChannelID: "456", Content: botName + " top 0"},
					{ID: "3", GuildID: "123", ChannelID: "456", Content: botName + " top asdf"},
				})

				b := bot.New(session, ranking, router)
				_ = b.Listen(ctx)

				Expect(session.Responses()).To(Equal([]discordtest.Response{
					{Message: discordtest.Message{ChannelID: "456", Content: `Board size must be a positive, non-zero number`}},
					{Message: discordtest.Message{ChannelID: "456", Content: `Board size must be a positive, non-zero number`}},
					{Message: discordtest.Message{ChannelID: "456", Content: `Board size must be a positive, non-zero number`}},
				}))
			})
		})

		Context("with a valid argument", func() {
			limit := 3

			It("constrains the size of the board to the argument", func(ctx SpecContext) {
				for i := 0; i < limit+1; i++ {
					submit(ctx, "player"+strconv.Itoa(i), "", i*10)
				}

				session = discordtest.NewResponseRecorder([]discord.Message{
					{ID: "1", GuildID: "123", ChannelID: "456", Content: botName + " top " + strconv.Itoa(limit)},
				})
				b := bot.New(session, ranking, router)
				_ = b.Listen(ctx)

				Expect(session.Responses()).To(HaveLen(1))

				board := parseBoardOutput(session.Responses()[0].Message.Content)
				Expect(board).To(HaveLen(limit))
			})
		})

		Context("without an argument", func() {
			It("uses the default board size", func(ctx SpecContext) {
				before := command.DefaultLimit
				command.DefaultLimit = 2
				defer func() {
					command.DefaultLimit = before
				}()

				for i := 0; i < 4; i++ {
					submit(ctx, "player"+strconv.Itoa(i), "", i)
				}

				session = discordtest.NewResponseRecorder([]discord.Message{
					{ID: "1", GuildID: "123", ChannelID: "456", Content: botName + " top"},
				})
				_ = bot.New(session, ranking, router).Listen(ctx)

				Expect(parseBoardOutput(session.Responses()[0].Message.Content)).To(HaveLen(2))
			})
		})

		Context("for an empty board", func() {
			It("says no one has submitted a score", func(ctx SpecContext) {
				session = discordtest.NewResponseRecorder([]discord.Message{
					{ID: "1", GuildID: "123", ChannelID: "456", Content: botName + " top"},
				})

				b := bot.New(session, ranking, router)
				_ = b.Listen(ctx)

				Expect(session.Responses()).To(ContainElement(discordtest.Response{Message: discordtest.Message{
					ChannelID: "456",
					Content:   `No scores have been submitted yet.`,
				}}))
			})
		})

		Context("for a board with scores", func() {
			It("responds with a list ordered from highest to lowest score", func(ctx SpecContext) {
				submit(ctx, "0xaaa", "Boop", 10)
				submit(ctx, "0xbbb", "Bip", 0)
				submit(ctx, "0xccc", "Bop", 100)
				submit(ctx, "0xddd", "Late", 10)

				session = discordtest.NewResponseRecorder([]discord.Message{
					{ID: "1", GuildID: "123", ChannelID: "456", Content: botName + " top"},
				})

				b := bot.New(session, ranking, router)
				_ = b.Listen(ctx)

				Expect(session.Responses()).To(HaveLen(1))

				got := parseBoardOutput(session.Responses()[0].Message.Content)
				Expect(got).To(Equal([]boardLine{
					{Rank: 1, Name: "Bop", Score: 100},
					{Rank: 2, Name: "Boop", Score: 10},
					{Rank: 3, Name: "Late", Score: 10},
					{Rank: 4, Name: "Bip", Score: 0},
				}))
			})
		})
	})

	When("the rank command is invoked", func() {
		Context("without an identity", func() {
			It("reacts with a question mark", func(ctx SpecContext) {
				session = discordtest.NewResponseRecorder([]discord.Message{
					{ID: "7", GuildID: "123", ChannelID: "456", Content: botName + " rank"},
				})

				_ = bot.New(session, ranking, router).Listen(ctx)

				Expect(session.Responses()).To(ConsistOf(discordtest.Response{Reaction: discordtest.Reaction{
					ChannelID: "456",
					MessageID: "7",
					Emoji:     "❓",
				}}))
			})
		})

		Context("for an unknown player", func() {
			It("says the player has no score", func(ctx SpecContext) {
				session = discordtest.NewResponseRecorder([]discord.Message{
					{ID: "1", GuildID: "123", ChannelID: "456", Content: botName + " rank 0xNOPE"},
				})

				_ = bot.New(session, ranking, router).Listen(ctx)

				Expect(session.Responses()).To(ConsistOf(discordtest.Response{Message: discordtest.Message{
					ChannelID: "456",
					Content:   "0xnope has no score yet.",
				}}))
			})
		})

		Context("for a ranked player", func() {
			It("tells the channel the player's standing", func(ctx SpecContext) {
				submit(ctx, "0xaaa", "Boop", 10)
				submit(ctx, "0xccc", "Bop", 100)

				session = discordtest.NewResponseRecorder([]discord.Message{
					{ID: "1", GuildID: "123", ChannelID: "456", Content: botName + " rank 0xAAA"},
				})

				_ = bot.New(session, ranking, router).Listen(ctx)

				Expect(session.Responses()).To(ConsistOf(discordtest.Response{Message: discordtest.Message{
					ChannelID: "456",
					Content:   "Boop is ranked #2 with 10 points.",
				}}))
			})
		})
	})

	When("a message is not addressed to the bot", func() {
		It("does not interact with the channel", func(ctx SpecContext) {
			session = discordtest.NewResponseRecorder([]discord.Message{
				{ID: "1", GuildID: "123", ChannelID: "456", Content: "top 10"},
			})

			_ = bot.New(session, ranking, router).Listen(ctx)
			Expect(session.Responses()).To(BeEmpty())
		})
	})

	When("leader changes are announced", func() {
		It("posts each new leader to the channel", func(ctx SpecContext) {
			events := make(chan event.Event, 3)
			events <- event.Event{ChangedLeader: &event.ChangedLeader{
				Leader: runnerboard.Entry{Identity: "0xaaa", DisplayName: "Boop", Score: 10},
			}}
			events <- event.Event{ChangedScore: &event.ChangedScore{
				Entry: runnerboard.Entry{Identity: "0xbbb", DisplayName: "Bip", Score: 5},
				Rank:  2,
			}}
			events <- event.Event{ChangedLeader: &event.ChangedLeader{
				Leader: runnerboard.Entry{Identity: "0xccc", DisplayName: "Bop", Score: 100},
			}}
			close(events)

			session = discordtest.NewResponseRecorder(nil)
			err := bot.New(session, ranking, router).Announce(ctx, "999", events)
			Expect(err).To(HaveOccurred())

			Expect(session.Responses()).To(Equal([]discordtest.Response{
				{Message: discordtest.Message{ChannelID: "999", Content: "Boop took first place with 10 points!"}},
				{Message: discordtest.Message{ChannelID: "999", Content: "Bop took first place with 100 points!"}},
			}))
		})

		It("stops when the context is done", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			session = discordtest.NewResponseRecorder(nil)
			err := bot.New(session, ranking, router).Announce(ctx, "999", make(chan event.Event))
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})

func parseBoardOutput(s string) []boardLine {
	re := regexp.MustCompile(`(\d+)\. (.+) - (\d+)`)
	matches := re.FindAllStringSubmatch(s, -1)

	var lines []boardLine

	for _, match := range matches {
		if len(match) != len([]string{"string", "rank", "name", "score"}) {
			panic("failed to parse")
		}

		rank, err := strconv.Atoi(match[1])
		if err != nil {
			panic(err)
		}
		score, err := strconv.ParseInt(match[3], 10, 64)
		if err != nil {
			panic(err)
		}

		lines = append(lines, boardLine{Rank: rank, Name: match[2], Score: score})
	}

	return lines
}
