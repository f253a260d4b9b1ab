package runnerboard

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Submission is a score reported by the game client at the end of a run.
//
// Score is kept as a json.Number so that anything the client sends, including
// values that are not numbers at all, reaches validation intact.
type Submission struct {
	Identity    string      `json:"identity"`
	DisplayName string      `json:"displayName,omitempty"`
	Score       json.Number `json:"score"`
	GameVersion string      `json:"gameVersion,omitempty"`
}

// Result is the outcome of a submission. Accepted is false when the player
// already had an equal or better score and the board was left untouched.
type Result struct {
	Accepted     bool  `json:"accepted"`
	Entry        Entry `json:"entry"`
	Rank         int   `json:"rank"`
	TotalPlayers int   `json:"totalPlayers"`

	// LeaderChanged is set when the submission took first place from
	// someone else, or claimed it on an empty board.
	LeaderChanged bool `json:"-"`
}

// NormalizeIdentity folds an identity into the form used as the store key.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// DisplayName derives a short label from an identity, e.g. 0x1234...abcd.
func DisplayName(identity string) string {
	runes := []rune(identity)
	if len(runes) <= 10 {
		return identity
	}
	return string(runes[:6]) + "..." + string(runes[len(runes)-4:])
}

// ParseScore checks that n is a finite number within [0, maxScore] and
// returns it rounded down to an integer.
func ParseScore(n json.Number, maxScore int64) (int64, error) {
	if n == "" {
		return 0, invalid("score", "missing")
	}

	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid("score", "must be a number")
	}

	if f < 0 || f > float64(maxScore) {
		return 0, invalid("score", "out of range")
	}

	return int64(math.Floor(f)), nil
}

func (s Submission) validate(maxScore int64) (identity string, score int64, err error) {
	identity = NormalizeIdentity(s.Identity)
	if identity == "" {
		return "", 0, invalid("identity", "missing")
	}

	score, err = ParseScore(s.Score, maxScore)
	if err != nil {
		return "", 0, err
	}

	return identity, score, nil
}
