package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"locallift/internal/api/middleware"
	"locallift/internal/catalog"
	"locallift/internal/kv"
	"locallift/internal/notes"
)

// NotesHandler exposes a signed-in client's notes and tasks per resource.
type NotesHandler struct {
	catalog *catalog.Catalog
	kv      kv.Store
}

// NewNotesHandler builds the handler over the shared key-value store.
func NewNotesHandler(cat *catalog.Catalog, store kv.Store) *NotesHandler {
	return &NotesHandler{catalog: cat, kv: store}
}

type noteRequest struct {
	Content string `json:"content"`
}

type taskRequest struct {
	Text string `json:"text"`
}

// board resolves the caller's board and checks that the resource exists.
func (h *NotesHandler) board(c *gin.Context) (*notes.Board, string, bool) {
	clientID, ok := middleware.ClientIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return nil, "", false
	}
	resourceID := c.Param("id")
	if _, err := h.catalog.Get(resourceID); err != nil {
		NotFound(c, "resource not found")
		return nil, "", false
	}
	return notes.NewBoard(kv.ForClient(h.kv, clientID), middleware.LoggerFromContext(c)), resourceID, true
}

// ListNotes returns the notes of a resource.
func (h *NotesHandler) ListNotes(c *gin.Context) {
	board, resourceID, ok := h.board(c)
	if !ok {
		return
	}
	list, err := board.Notes(c.Request.Context(), resourceID)
	if err != nil {
		h.fail(c, "list notes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": list})
}

// AddNote appends a note.
func (h *NotesHandler) AddNote(c *gin.Context) {
	board, resourceID, ok := h.board(c)
	if !ok {
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	note, err := board.AddNote(c.Request.Context(), resourceID, req.Content)
	if err != nil {
		h.fail(c, "add note", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// DeleteNote removes a note.
func (h *NotesHandler) DeleteNote(c *gin.Context) {
	board, resourceID, ok := h.board(c)
	if !ok {
		return
	}
	if err := board.DeleteNote(c.Request.Context(), resourceID, c.Param("noteID")); err != nil {
		h.fail(c, "delete note", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTasks returns the tasks of a resource.
func (h *NotesHandler) ListTasks(c *gin.Context) {
	board, resourceID, ok := h.board(c)
	if !ok {
		return
	}
	list, err := board.Tasks(c.Request.Context(), resourceID)
	if err != nil {
		h.fail(c, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

// AddTask appends an open task.
func (h *NotesHandler) AddTask(c *gin.Context) {
	board, resourceID, ok := h.board(c)
	if !ok {
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	task, err := board.AddTask(c.Request.Context(), resourceID, req.Text)
	if err != nil {
		h.fail(c, "add task", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// ToggleTask flips a task between open and done.
func (h *NotesHandler) ToggleTask(c *gin.Context) {
	board, resourceID, ok := h.board(c)
	if !ok {
		return
	}
	task, err := board.ToggleTask(c.Request.Context(), resourceID, c.Param("taskID"))
	if err != nil {
		h.fail(c, "toggle task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DeleteTask removes a task.
func (h *NotesHandler) DeleteTask(c *gin.Context) {
	board, resourceID, ok := h.board(c)
	if !ok {
		return
	}
	if err := board.DeleteTask(c.Request.Context(), resourceID, c.Param("taskID")); err != nil {
		h.fail(c, "delete task", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotesHandler) fail(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, notes.ErrEmptyNote), errors.Is(err, notes.ErrEmptyTask):
		BadRequest(c, err.Error())
	case errors.Is(err, notes.ErrNotFound):
		NotFound(c, err.Error())
	default:
		middleware.LoggerFromContext(c).Error(action+" failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}
