// Package notes keeps a signed-in client's private notes and to-do items
// for each resource.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"locallift/internal/kv"
)

var (
	// ErrEmptyNote is returned when the note content is blank.
	ErrEmptyNote = errors.New("note content is empty")
	// ErrEmptyTask is returned when the task text is blank.
	ErrEmptyTask = errors.New("task text is empty")
	// ErrNotFound is returned for an unknown note or task id.
	ErrNotFound = errors.New("item not found")
)

// Note is free text attached to a resource.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a checklist item attached to a resource.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotesKey is the storage key of the note list for resourceID.
func NotesKey(resourceID string) string { return "notes-" + resourceID }

// TasksKey is the storage key of the task list for resourceID.
func TasksKey(resourceID string) string { return "tasks-" + resourceID }

// Board reads and writes the lists of one client.
type Board struct {
	kv     kv.Store
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	lastID int64
}

// NewBoard returns a Board persisting into store.
func NewBoard(store kv.Store, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{kv: store, logger: logger, now: time.Now}
}

// Notes lists the notes of resourceID in insertion order.
func (b *Board) Notes(ctx context.Context, resourceID string) ([]Note, error) {
	var out []Note
	if err := b.load(ctx, NotesKey(resourceID), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Note{}
	}
	return out, nil
}

// Tasks lists the tasks of resourceID in insertion order.
func (b *Board) Tasks(ctx context.Context, resourceID string) ([]Task, error) {
	var out []Task
	if err := b.load(ctx, TasksKey(resourceID), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Task{}
	}
	return out, nil
}

// AddNote appends a note. Content is stored as given once it is non-blank.
func (b *Board) AddNote(ctx context.Context, resourceID, content string) (Note, error) {
	if strings.TrimSpace(content) == "" {
		return Note{}, ErrEmptyNote
	}
	list, err := b.Notes(ctx, resourceID)
	if err != nil {
		return Note{}, err
	}
	note := Note{ID: b.nextID(noteIDs(list)), Content: content, CreatedAt: b.now().UTC()}
	list = append(list, note)
	if err := kv.SetJSON(ctx, b.kv, NotesKey(resourceID), list); err != nil {
		return Note{}, fmt.Errorf("save notes: %w", err)
	}
	return note, nil
}

// DeleteNote removes the note with id.
func (b *Board) DeleteNote(ctx context.Context, resourceID, id string) error {
	list, err := b.Notes(ctx, resourceID)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, n := range list {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(list) {
		return ErrNotFound
	}
	if err := kv.SetJSON(ctx, b.kv, NotesKey(resourceID), kept); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

// AddTask appends an open task.
func (b *Board) AddTask(ctx context.Context, resourceID, text string) (Task, error) {
	if strings.TrimSpace(text) == "" {
		return Task{}, ErrEmptyTask
	}
	list, err := b.Tasks(ctx, resourceID)
	if err != nil {
		return Task{}, err
	}
	task := Task{ID: b.nextID(taskIDs(list)), Text: text, CreatedAt: b.now().UTC()}
	list = append(list, task)
	if err := kv.SetJSON(ctx, b.kv, TasksKey(resourceID), list); err != nil {
		return Task{}, fmt.Errorf("save tasks: %w", err)
	}
	return task, nil
}

// ToggleTask flips the completed flag of the task with id.
func (b *Board) ToggleTask(ctx context.Context, resourceID, id string) (Task, error) {
	list, err := b.Tasks(ctx, resourceID)
	if err != nil {
		return Task{}, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		list[i].Completed = !list[i].Completed
		if err := kv.SetJSON(ctx, b.kv, TasksKey(resourceID), list); err != nil {
			return Task{}, fmt.Errorf("save tasks: %w", err)
		}
		return list[i], nil
	}
	return Task{}, ErrNotFound
}

// DeleteTask removes the task with id.
func (b *Board) DeleteTask(ctx context.Context, resourceID, id string) error {
	list, err := b.Tasks(ctx, resourceID)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, t := range list {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(list) {
		return ErrNotFound
	}
	if err := kv.SetJSON(ctx, b.kv, TasksKey(resourceID), kept); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// load decodes key into dst. Missing keys leave dst untouched; corrupted
// values are logged and treated as empty.
func (b *Board) load(ctx context.Context, key string, dst any) error {
	err := kv.GetJSON(ctx, b.kv, key, dst)
	switch {
	case err == nil, errors.Is(err, kv.ErrNotFound):
		return nil
	case kv.IsDecodeError(err):
		b.logger.Warn("ignoring corrupted list", slog.String("key", key), slog.Any("error", err))
		return nil
	default:
		return fmt.Errorf("load %s: %w", key, err)
	}
}

// nextID derives ids from the clock in milliseconds, bumped past the last
// id handed out and past every id already in the list.
func (b *Board) nextID(existing []string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.now().UnixMilli()
	if id <= b.lastID {
		id = b.lastID + 1
	}
	for _, e := range existing {
		if n, err := strconv.ParseInt(e, 10, 64); err == nil && n >= id {
			id = n + 1
		}
	}
	b.lastID = id
	return strconv.FormatInt(id, 10)
}

func noteIDs(list []Note) []string {
	ids := make([]string, len(list))
	for i, n := range list {
		ids[i] = n.ID
	}
	return ids
}

func taskIDs(list []Task) []string {
	ids := make([]string, len(list))
	for i, t := range list {
		ids[i] = t.ID
	}
	return ids
}
