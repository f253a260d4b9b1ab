// Package discord connects the leaderboard bot to the Discord gateway and
// hands it the guild messages addressed to it.
package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

type Token string

// Channel is the channel whose messages are forwarded even without a
// mention. Empty means only mentions reach the bot.
type Channel string

type Dialer struct {
	token Token
}

func NewDialer(token Token) *Dialer {
	return &Dialer{token: token}
}

// Dial opens a gateway connection that can read message content.
func (d *Dialer) Dial() (*discordgo.Session, error) {
	conn, err := discordgo.New("Bot " + string(d.token))
	if err != nil {
		return nil, err
	}

	conn.Identify.Intents |= discordgo.IntentMessageContent
	if err := conn.Open(); err != nil {
		return nil, err
	}
	return conn, nil
}

// Session is a live gateway connection. Messages stop flowing once the
// cleanup returned by NewSession has run.
type Session struct {
	conn    *discordgo.Session
	channel string

	messages chan Message
	done     chan struct{}
	stop     sync.Once
}

func NewSession(dialer *Dialer, channel Channel) (*Session, func(), error) {
	conn, err := dialer.Dial()
	if err != nil {
		return nil, nil, err
	}

	s := newSession(conn, string(channel))
	detach := conn.AddHandler(s.onMessageCreate)

	return s, func() {
		detach()
		s.close()
		_ = conn.Close()
	}, nil
}

func newSession(conn *discordgo.Session, channel string) *Session {
	return &Session{
		conn:     conn,
		channel:  channel,
		messages: make(chan Message),
		done:     make(chan struct{}),
	}
}

func (s *Session) onMessageCreate(conn *discordgo.Session, m *discordgo.MessageCreate) {
	if conn.State == nil || conn.State.User == nil {
		return
	}
	if !addressed(m.Message, conn.State.User.ID, s.channel) {
		return
	}

	s.forward(Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.ContentWithMentionsReplaced(),
	})
}

// addressed reports whether m is a guild message from someone other than the
// bot that either mentions the bot or was posted in the bot's channel.
func addressed(m *discordgo.Message, botID, channel string) bool {
	if m == nil || m.Author == nil || m.Author.ID == botID {
		return false
	}
	if m.GuildID == "" {
		return false
	}
	if channel != "" && m.ChannelID == channel {
		return true
	}
	for _, u := range m.Mentions {
		if u != nil && u.ID == botID {
			return true
		}
	}
	return false
}

// forward blocks until the listener takes msg or the session closes. It
// reports whether msg was delivered.
func (s *Session) forward(msg Message) bool {
	select {
	case s.messages <- msg:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) close() {
	s.stop.Do(func() { close(s.done) })
}

func (s *Session) SendMessageToChannel(channelID string, msg string) error {
	_, err := s.conn.ChannelMessageSend(channelID, msg)
	return err
}

func (s *Session) ReactToMessageWithEmoji(channelID, messageID, emojiID string) error {
	return s.conn.MessageReactionAdd(channelID, messageID, emojiID)
}

// Username is the name other users mention the bot by.
func (s *Session) Username() string {
	return s.conn.State.User.Username
}

func (s *Session) Messages() <-chan Message {
	return s.messages
}

type Message struct {
	ID        string
	GuildID   string
	ChannelID string
	Content   string
}
