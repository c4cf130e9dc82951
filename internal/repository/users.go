package repository

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"cute-videos/internal/model"
)

// Every 10th distinct user triggers a snapshot write.
const flushEvery = 10

// UserSink persists a full snapshot of the tracked users.
type UserSink interface {
	Save(users map[string]model.UserRecord) error
}

// FileSink writes the snapshot as indented UTF-8 JSON, overwriting the
// whole file each time.
type FileSink struct {
	Path string
}

func (s FileSink) Save(users map[string]model.UserRecord) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	return nil
}

// UserStore tracks who talked to the bot. It is an approximate audit log,
// not a transactional store: snapshots are best effort and losing the last
// few updates on crash is acceptable.
type UserStore struct {
	mu    sync.Mutex
	users map[string]model.UserRecord
	sink  UserSink
	now   func() time.Time
}

func NewUserStore(sink UserSink) *UserStore {
	return &UserStore{
		users: make(map[string]model.UserRecord),
		sink:  sink,
		now:   time.Now,
	}
}

// Load re-reads an existing log so a restart keeps accumulated history.
// A missing file is not an error.
func (s *UserStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	users := make(map[string]model.UserRecord)
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// RecordInteraction creates a record on first contact and updates it on
// every later one. Name and username are overwritten only when non-empty.
// Sink failures are logged, never propagated.
func (s *UserStore) RecordInteraction(userID int64, firstName, username string) {
	key := strconv.FormatInt(userID, 10)
	now := model.Timestamp{Time: s.now()}

	s.mu.Lock()
	rec, seen := s.users[key]
	if !seen {
		rec = model.UserRecord{FirstSeen: now}
	}
	rec.LastSeen = now
	rec.InteractionCount++
	if firstName != "" {
		rec.FirstName = firstName
	}
	if username != "" {
		rec.Username = username
	}
	s.users[key] = rec

	var snapshot map[string]model.UserRecord
	if !seen && len(s.users)%flushEvery == 0 {
		snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if snapshot != nil {
		if err := s.sink.Save(snapshot); err != nil {
			log.Printf("save user log: %v", err)
		}
	}
}

// Flush writes the current snapshot through the sink.
func (s *UserStore) Flush() error {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	return s.sink.Save(snapshot)
}

// Get returns a copy of a user's record.
func (s *UserStore) Get(userID int64) (model.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[strconv.FormatInt(userID, 10)]
	return rec, ok
}

// Count returns the number of distinct tracked users.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserStore) snapshotLocked() map[string]model.UserRecord {
	users := make(map[string]model.UserRecord, len(s.users))
	for id, rec := range s.users {
		users[id] = rec
	}
	return users
}
