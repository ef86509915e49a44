// Package registry provides the verifier's username-keyed table of protocol state.
//
// The table is split into shards, each guarded by its own mutex which is held only while a map
// entry is read or replaced. Records are immutable: every transition stores a new *Record, so a
// snapshot handed to a caller never changes underneath it and a transition either lands whole or
// not at all.
package registry

import (
	"errors"
	"hash/maphash"
	"math/big"
	"sync"
	"time"
)

var (
	// ErrExists is returned when inserting a username which already has a record.
	ErrExists = errors.New("registry: record exists")

	// ErrNotFound is returned when a username has no record.
	ErrNotFound = errors.New("registry: record not found")

	// ErrNoChallenge is returned when consuming a challenge from a record which has none pending.
	ErrNoChallenge = errors.New("registry: no pending challenge")
)

// Status is the verifier-side state of a user's authentication.
type Status int

const (
	Registered Status = iota + 1
	Challenged
	Verified
	Failed
)

func (s Status) String() string {
	switch s {
	case Registered:
		return "registered"
	case Challenged:
		return "challenged"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Record is a snapshot of a user's protocol state. Records must not be modified.
type Record struct {
	Username string
	Y1, Y2   *big.Int

	// Challenge is the pending challenge, or nil if none is pending.
	Challenge *big.Int

	// ChallengedAt is when the pending challenge was issued.
	ChallengedAt time.Time

	Status Status

	// Generation increases with every stored transition of the record.
	Generation uint64
}

// DefaultShards is the number of shards used when New is passed a non-positive count.
const DefaultShards = 64

// Registry is a concurrency-safe table of records. The zero value is not usable; use New.
type Registry struct {
	seed   maphash.Seed
	shards []shard
}

type shard struct {
	mu      sync.Mutex
	records map[string]*Record
}

// New returns an empty registry with n shards.
func New(n int) *Registry {
	if n <= 0 {
		n = DefaultShards
	}

	r := &Registry{
		seed:   maphash.MakeSeed(),
		shards: make([]shard, n),
	}

	for i := range r.shards {
		r.shards[i].records = make(map[string]*Record)
	}

	return r
}

// Insert stores a new Registered record with the given commitments. It returns ErrExists if the
// username already has a record.
func (r *Registry) Insert(username string, y1, y2 *big.Int) (Record, error) {
	rec := &Record{
		Username:   username,
		Y1:         new(big.Int).Set(y1),
		Y2:         new(big.Int).Set(y2),
		Status:     Registered,
		Generation: 1,
	}

	s := r.shard(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[username]; ok {
		return Record{}, ErrExists
	}

	s.records[username] = rec

	return *rec, nil
}

// Lookup returns the current record for the username.
func (r *Registry) Lookup(username string) (Record, error) {
	s := r.shard(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[username]
	if !ok {
		return Record{}, ErrNotFound
	}

	return *rec, nil
}

// IssueChallenge replaces the pending challenge of the username's record with c, invalidating any
// earlier one, and marks the record Challenged.
func (r *Registry) IssueChallenge(username string, c *big.Int, now time.Time) (Record, error) {
	c = new(big.Int).Set(c)

	return r.update(username, func(next *Record) error {
		next.Challenge = c
		next.ChallengedAt = now
		next.Status = Challenged

		return nil
	})
}

// ConsumeChallenge clears the pending challenge of the username's record and returns the record as
// it was before clearing. Of any number of concurrent calls for the same pending challenge, exactly
// one returns it; the rest return ErrNoChallenge.
func (r *Registry) ConsumeChallenge(username string) (Record, error) {
	var prev Record

	_, err := r.update(username, func(next *Record) error {
		if next.Challenge == nil {
			return ErrNoChallenge
		}

		prev = *next
		prev.Generation = next.Generation + 1
		next.Challenge = nil
		next.ChallengedAt = time.Time{}

		return nil
	})
	if err != nil {
		return Record{}, err
	}

	return prev, nil
}

// Settle sets the status of the username's record, but only if the record is still at the given
// generation. It returns false if a later transition has already been stored, in which case the
// later transition stands.
func (r *Registry) Settle(username string, generation uint64, status Status) bool {
	s := r.shard(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[username]
	if !ok || cur.Generation != generation {
		return false
	}

	next := *cur
	next.Status = status
	next.Generation++
	s.records[username] = &next

	return true
}

// Len returns the number of records.
func (r *Registry) Len() int {
	n := 0

	for i := range r.shards {
		s := &r.shards[i]

		s.mu.Lock()
		n += len(s.records)
		s.mu.Unlock()
	}

	return n
}

// update copies the current record, applies f to the copy, and stores the copy as the next
// generation. If f returns an error, the current record stands.
func (r *Registry) update(username string, f func(next *Record) error) (Record, error) {
	s := r.shard(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[username]
	if !ok {
		return Record{}, ErrNotFound
	}

	next := *cur
	if err := f(&next); err != nil {
		return Record{}, err
	}

	next.Generation++
	s.records[username] = &next

	return next, nil
}

func (r *Registry) shard(username string) *shard {
	return &r.shards[maphash.String(r.seed, username)%uint64(len(r.shards))]
}
