package view

import (
	"strconv"
	"sync"
	"time"

	"github.com/squaredbusinessman/storefront-client/internal/model"
)

// Task отложенное действие, которое можно отменить
type Task interface {
	// Cancel false если задача уже выполнилась или отменена
	Cancel() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return timerTask{timer: time.AfterFunc(d, f)}
}

type timerTask struct {
	timer *time.Timer
}

func (t timerTask) Cancel() bool {
	return t.timer.Stop()
}

// TimerScheduler планировщик на time.AfterFunc
func TimerScheduler() Scheduler {
	return timerScheduler{}
}

type boardEntry struct {
	alert Alert
	task  Task
}

// Board лента уведомлений: новые сверху, каждое само исчезает через ttl.
// Таймеры срабатывают в своих горутинах, поэтому под мьютексом.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	sched   Scheduler
	seq     uint64
	entries []boardEntry
}

func NewBoard(ttl time.Duration, sched Scheduler) *Board {
	if sched == nil {
		sched = TimerScheduler()
	}
	return &Board{
		ttl:   ttl,
		sched: sched,
	}
}

// Push добавляет уведомление наверх и планирует его удаление
func (b *Board) Push(message string, kind model.AlertKind) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	id := strconv.FormatUint(b.seq, 10)

	entry := boardEntry{alert: Alert{ID: id, Message: message, Kind: kind}}
	entry.task = b.sched.AfterFunc(b.ttl, func() { b.remove(id) })

	b.entries = append([]boardEntry{entry}, b.entries...)
	return id
}

// Dismiss ручное закрытие, заодно отменяет таймер
func (b *Board) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.alert.ID != id {
			continue
		}
		e.task.Cancel()
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		return true
	}
	return false
}

func (b *Board) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.alert.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

// Snapshot копия текущих уведомлений, новые первыми
func (b *Board) Snapshot() []Alert {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Alert, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e.alert)
	}
	return out
}
