package discordtest

import (
	"sync"

	"github.com/rescuerunner/runnerboard/internal/discord"
)

type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

type Message struct {
	ChannelID string
	Content   string
}

type Response struct {
	Reaction Reaction
	Message  Message
}

// ResponseRecorder replays a fixed set of messages and records everything
// the bot sends back.
type ResponseRecorder struct {
	mu        sync.Mutex
	responses []Response
	messages  []discord.Message
}

func NewResponseRecorder(messages []discord.Message) *ResponseRecorder {
	return &ResponseRecorder{messages: messages}
}

func (r *ResponseRecorder) SendMessageToChannel(channelID string, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, Response{Message: Message{ChannelID: channelID, Content: msg}})
	return nil
}

func (r *ResponseRecorder) ReactToMessageWithEmoji(channelID, messageID, emojiID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, Response{Reaction: Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emojiID}})
	return nil
}

func (r *ResponseRecorder) Messages() <-chan discord.Message {
	ch := make(chan discord.Message, len(r.messages))
	for _, msg := range r.messages {
		ch <- msg
	}
	close(ch)
	return ch
}

func (r *ResponseRecorder) Responses() []Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Response(nil), r.responses...)
}
