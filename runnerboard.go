// Package runnerboard keeps the best score per player of the endless runner
// and answers ranking queries over them.
package runnerboard

import (
	"sort"
	"time"
)

const (
	// MaxScore is the largest score a submission may carry.
	MaxScore = 1000000

	// DefaultCapacity is how many entries the board retains.
	DefaultCapacity = 100

	// DefaultLimit is the size of a top board when none is requested.
	DefaultLimit = 10

	// MaxLimit caps the size of a single top board query.
	MaxLimit = 100

	// DefaultGameVersion is recorded when a submission does not name one.
	DefaultGameVersion = "1.0.0"
)

// Entry is the best known score of one player.
type Entry struct {
	Identity    string    `json:"identity"`
	DisplayName string    `json:"displayName"`
	Score       int64     `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
	GameVersion string    `json:"gameVersion,omitempty"`
}

// RankedEntry is an Entry annotated with its 1-based board position.
type RankedEntry struct {
	Entry
	Rank int `json:"rank"`
}

// Board is a ranked slice of entries, best first, with Rank counting from 1.
type Board []RankedEntry

// Less reports whether a ranks ahead of b: higher score first, then the
// earlier submission, then identity so that the order is total.
func Less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.Identity < b.Identity
}

// Sort orders entries in board order in place.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

// Rank returns a Board for entries, which must already be in board order.
func Rank(entries []Entry) Board {
	board := make(Board, 0, len(entries))
	for i, e := range entries {
		board = append(board, RankedEntry{Entry: e, Rank: i + 1})
	}
	return board
}
