package service

import (
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the slice of the Telegram client the services need. It is
// satisfied by *tgbotapi.BotAPI; tests substitute a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// Clock abstracts time so scheduler tests run without wall-clock waits.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// TaskState tracks a deletion task through its lifecycle.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskFired
	TaskCompleted
	TaskFailed
)

// DeletionTask is one scheduled cleanup of a delivered video and its
// notification message. Both messages live in the same chat.
type DeletionTask struct {
	ChatID          int64
	VideoMessageID  int
	NoticeMessageID int
	Deadline        time.Time

	mu    sync.Mutex
	state TaskState
	done  chan struct{}
}

// State reports the task's current lifecycle stage.
func (t *DeletionTask) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *DeletionTask) setState(s TaskState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// Done is closed once the task reaches a terminal state.
func (t *DeletionTask) Done() <-chan struct{} { return t.done }

// DeletionScheduler fires one-shot cleanup tasks after a fixed timeout.
// Tasks are independent, unordered and never cancelled early; a restart
// silently drops whatever is pending.
type DeletionScheduler struct {
	api     API
	timeout time.Duration
	clock   Clock

	mu      sync.Mutex
	pending int
}

// NewDeletionScheduler creates a scheduler. A nil clock means wall clock.
func NewDeletionScheduler(api API, timeout time.Duration, clock Clock) *DeletionScheduler {
	if clock == nil {
		clock = realClock{}
	}
	return &DeletionScheduler{api: api, timeout: timeout, clock: clock}
}

// Schedule registers a cleanup for a delivered message pair and returns a
// handle for inspection. The caller does not wait on it.
func (s *DeletionScheduler) Schedule(chatID int64, videoMessageID, noticeMessageID int) *DeletionTask {
	task := &DeletionTask{
		ChatID:          chatID,
		VideoMessageID:  videoMessageID,
		NoticeMessageID: noticeMessageID,
		Deadline:        s.clock.Now().Add(s.timeout),
		done:            make(chan struct{}),
	}

	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	fire := s.clock.After(s.timeout)
	go s.run(task, fire)
	return task
}

// Pending reports how many tasks have not fired yet.
func (s *DeletionScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// run waits for the deadline and removes the message pair. Cleanup is best
// effort: a failed delete is logged and the task ends as failed, with no
// retry and no user-visible error.
func (s *DeletionScheduler) run(task *DeletionTask, fire <-chan time.Time) {
	<-fire

	task.setState(TaskFired)
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()

	defer close(task.done)

	if err := s.deleteMessage(task.ChatID, task.VideoMessageID); err != nil {
		log.Printf("[warn] delete video message %d in chat %d: %v", task.VideoMessageID, task.ChatID, err)
		task.setState(TaskFailed)
		return
	}
	if err := s.deleteMessage(task.ChatID, task.NoticeMessageID); err != nil {
		log.Printf("[warn] delete notification %d in chat %d: %v", task.NoticeMessageID, task.ChatID, err)
		task.setState(TaskFailed)
		return
	}

	if _, err := s.api.Send(tgbotapi.NewMessage(task.ChatID, "✨ Video has been deleted as promised~ 💕")); err != nil {
		log.Printf("[warn] deletion confirmation to chat %d: %v", task.ChatID, err)
	}
	task.setState(TaskCompleted)
}

func (s *DeletionScheduler) deleteMessage(chatID int64, messageID int) error {
	_, err := s.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}
