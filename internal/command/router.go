package command

import "regexp"

type ArgParser interface {
	ParseArg(s string) error
}

type ArgConstructor func() ArgParser

type Router struct {
	name     string
	handlers map[*regexp.Regexp]ArgConstructor
}

func NewRouter(name string) *Router {
	r := Router{
		name:     name,
		handlers: make(map[*regexp.Regexp]ArgConstructor),
	}

	handlers := map[string]ArgConstructor{
		"top":  func() ArgParser { return new(TopArgs) },
		"rank": func() ArgParser { return new(RankArgs) },
	}

	// the prefix requires the message to be prefaced with the bot's name
	prefix := `^(` + regexp.QuoteMeta(r.name) + `)`
	for cmd, ctor := range handlers {
		r.handlers[regexp.MustCompile(prefix+`\s+`+cmd+`\b`)] = ctor
	}

	return &r
}

// Route picks the command addressed to the bot. args is nil when the message
// is not a command.
func (r *Router) Route(s string) (args ArgParser, remainder string) {
	for matcher, action := range r.handlers {
		if matched := matcher.ReplaceAllString(s, ""); matched != s {
			return action(), matched
		}
	}

	return nil, s
}
