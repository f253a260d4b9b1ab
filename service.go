package runnerboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Options tunes a Service. Zero values fall back to the package defaults.
type Options struct {
	Capacity     int
	MaxScore     int64
	DefaultLimit int
	MaxLimit     int
	Now          func() time.Time
}

// Service validates submissions and answers ranking queries over a Store.
//
// Every submission runs lookup, compare, upsert, eviction and ranking under
// one lock, so two submissions for the same player can never both win
// against a stale best score.
type Service struct {
	mu    sync.RWMutex
	store Store

	capacity     int
	maxScore     int64
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:        store,
		capacity:     opts.Capacity,
		maxScore:     opts.MaxScore,
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
		now:          opts.Now,
	}
	if s.capacity < 1 {
		s.capacity = DefaultCapacity
	}
	if s.maxScore < 1 {
		s.maxScore = MaxScore
	}
	if s.maxLimit < 1 {
		s.maxLimit = MaxLimit
	}
	if s.defaultLimit < 1 {
		s.defaultLimit = DefaultLimit
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Capacity is the number of entries the board retains.
func (s *Service) Capacity() int {
	return s.capacity
}

// Submit records sub if it improves the player's best score.
//
// Validation happens before the store is touched. A submission that does not
// beat the stored score is not an error: the stored entry is reported along
// with its current rank. Rank is 0 when the new entry did not survive
// capacity eviction.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	identity, score, err := sub.validate(s.maxScore)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Get(ctx, identity)
	found := true
	if errors.Is(err, ErrNotFound) {
		found = false
		err = nil
	}
	if err != nil {
		return Result{}, internal("get entry", err)
	}

	if found && score <= current.Score {
		board, err := s.board(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Entry:        current,
			Rank:         position(board, identity),
			TotalPlayers: len(board),
		}, nil
	}

	name := strings.TrimSpace(sub.DisplayName)
	if name == "" {
		name = DisplayName(identity)
	}
	version := strings.TrimSpace(sub.GameVersion)
	if version == "" {
		version = DefaultGameVersion
	}

	entry := Entry{
		Identity:    identity,
		DisplayName: name,
		Score:       score,
		SubmittedAt: s.now().UTC(),
		GameVersion: version,
	}

	before, err := s.board(ctx)
	if err != nil {
		return Result{}, err
	}

	if err := s.store.Save(ctx, entry, s.capacity); err != nil {
		return Result{}, internal("save entry", err)
	}

	board, err := s.board(ctx)
	if err != nil {
		return Result{}, err
	}

	rank := position(board, identity)
	return Result{
		Accepted:      true,
		Entry:         entry,
		Rank:          rank,
		TotalPlayers:  len(board),
		LeaderChanged: rank == 1 && (len(before) == 0 || before[0].Identity != identity),
	}, nil
}

// Top returns the best k entries in board order. A k below one asks for the
// default size and k is capped at the configured maximum.
func (s *Service) Top(ctx context.Context, k int) (Board, error) {
	if k < 1 {
		k = s.defaultLimit
	}
	if k > s.maxLimit {
		k = s.maxLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	board, err := s.board(ctx)
	if err != nil {
		return nil, err
	}

	if len(board) > k {
		board = board[:k]
	}
	return Rank(board), nil
}

// Standing returns the entry of identity with its current rank.
func (s *Service) Standing(ctx context.Context, identity string) (RankedEntry, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return RankedEntry{}, invalid("identity", "missing")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	board, err := s.board(ctx)
	if err != nil {
		return RankedEntry{}, err
	}

	rank := position(board, identity)
	if rank == 0 {
		return RankedEntry{}, ErrNotFound
	}
	return RankedEntry{Entry: board[rank-1], Rank: rank}, nil
}

// Players reports how many entries the board holds.
func (s *Service) Players(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.store.All(ctx)
	if err != nil {
		return 0, internal("list entries", err)
	}
	return len(entries), nil
}

func (s *Service) board(ctx context.Context) ([]Entry, error) {
	entries, err := s.store.All(ctx)
	if err != nil {
		return nil, internal("list entries", err)
	}
	Sort(entries)
	return entries, nil
}

func position(board []Entry, identity string) int {
	for i, e := range board {
		if e.Identity == identity {
			return i + 1
		}
	}
	return 0
}
