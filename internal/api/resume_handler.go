package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"locallift/internal/api/middleware"
	"locallift/internal/kv"
	"locallift/internal/resume"
	"locallift/internal/storage"
	"locallift/internal/tasks"
)

const downloadLinkTTL = 5 * time.Minute

// TaskEnqueuer puts background jobs on the queue.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ResumeHandler serves the resume builder. Documents are saved only on
// explicit PUT; every other route reads the saved copy or the body.
type ResumeHandler struct {
	kv      kv.Store
	queue   TaskEnqueuer
	storage ObjectStorage
}

// NewResumeHandler builds the handler. queue and storage may be nil, in
// which case downloads answer 503.
func NewResumeHandler(store kv.Store, queue TaskEnqueuer, storage ObjectStorage) *ResumeHandler {
	return &ResumeHandler{kv: store, queue: queue, storage: storage}
}

func (h *ResumeHandler) clientStore(c *gin.Context) (kv.Store, string, bool) {
	clientID, ok := middleware.ClientIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return nil, "", false
	}
	return kv.ForClient(h.kv, clientID), clientID, true
}

// load returns the saved document, falling back to a blank one when the
// stored copy is missing or unreadable.
func (h *ResumeHandler) load(c *gin.Context, store kv.Store) (*resume.Document, bool, error) {
	doc, found, err := resume.Load(c.Request.Context(), store)
	if err != nil && kv.IsDecodeError(err) {
		middleware.LoggerFromContext(c).Warn("ignoring corrupted resume", slog.Any("error", err))
		return doc, false, nil
	}
	return doc, found, err
}

// GetResume returns the saved document or a blank one.
func (h *ResumeHandler) GetResume(c *gin.Context) {
	store, _, ok := h.clientStore(c)
	if !ok {
		return
	}
	doc, found, err := h.load(c, store)
	if err != nil {
		middleware.LoggerFromContext(c).Error("load resume failed", slog.Any("error", err))
		Internal(c, "failed to load resume")
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume": doc, "saved": found})
}

// SaveResume replaces the saved document with the request body.
func (h *ResumeHandler) SaveResume(c *gin.Context) {
	store, _, ok := h.clientStore(c)
	if !ok {
		return
	}
	var doc resume.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		BadRequest(c, err.Error())
		return
	}
	doc.Normalize()
	if err := resume.Save(c.Request.Context(), store, &doc); err != nil {
		middleware.LoggerFromContext(c).Error("save resume failed", slog.Any("error", err))
		Internal(c, "failed to save resume")
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume": doc, "saved": true})
}

type applyRequest struct {
	Resume     *resume.Document `json:"resume"`
	Operations []resume.Op      `json:"operations" binding:"required"`
}

// ApplyOperations runs edit operations against the supplied document, or
// the saved one when none is given, and returns the result without saving.
func (h *ResumeHandler) ApplyOperations(c *gin.Context) {
	store, _, ok := h.clientStore(c)
	if !ok {
		return
	}
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	doc := req.Resume
	if doc == nil {
		loaded, _, err := h.load(c, store)
		if err != nil {
			Internal(c, "failed to load resume")
			return
		}
		doc = loaded
	}
	doc.Normalize()

	if err := resume.Apply(doc, req.Operations); err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume": doc, "saved": false})
}

// ListTemplates returns the template catalogue with a per-caller lock flag.
func (h *ResumeHandler) ListTemplates(c *gin.Context) {
	premium := isPremium(c)
	type templateView struct {
		resume.Template
		Locked bool `json:"locked"`
	}
	list := resume.Templates()
	out := make([]templateView, 0, len(list))
	for _, t := range list {
		out = append(out, templateView{Template: t, Locked: t.IsPremium && !premium})
	}
	c.JSON(http.StatusOK, gin.H{
		"templates":       out,
		"defaultTemplate": resume.DefaultTemplateID,
		"isPremium":       premium,
	})
}

// Suggestions returns the content helper text. Premium only.
func (h *ResumeHandler) Suggestions(c *gin.Context) {
	store, _, ok := h.clientStore(c)
	if !ok {
		return
	}
	if !isPremium(c) {
		Forbidden(c, "premium required")
		return
	}

	var body struct {
		Resume *resume.Document `json:"resume"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	doc := body.Resume
	if doc == nil {
		loaded, _, err := h.load(c, store)
		if err != nil {
			Internal(c, "failed to load resume")
			return
		}
		doc = loaded
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": resume.Suggestion(doc)})
}

// Preview renders the saved document as HTML in ?template=.
func (h *ResumeHandler) Preview(c *gin.Context) {
	store, _, ok := h.clientStore(c)
	if !ok {
		return
	}
	tpl, ok := h.template(c, c.Query("template"))
	if !ok {
		return
	}
	doc, _, err := h.load(c, store)
	if err != nil {
		Internal(c, "failed to load resume")
		return
	}
	html, err := resume.RenderHTML(doc, tpl)
	if err != nil {
		middleware.LoggerFromContext(c).Error("render preview failed", slog.Any("error", err))
		Internal(c, "failed to render resume")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

type downloadRequest struct {
	Template string `json:"template"`
}

// Download queues a PDF render of the saved document. Premium only; the
// result arrives over the websocket.
func (h *ResumeHandler) Download(c *gin.Context) {
	store, clientID, ok := h.clientStore(c)
	if !ok {
		return
	}
	if !isPremium(c) {
		Forbidden(c, "premium required")
		return
	}
	if h.queue == nil {
		Error(c, http.StatusServiceUnavailable, "pdf export unavailable")
		return
	}

	var req downloadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	tpl, ok := h.template(c, req.Template)
	if !ok {
		return
	}
	doc, _, err := h.load(c, store)
	if err != nil {
		Internal(c, "failed to load resume")
		return
	}

	logger := middleware.LoggerFromContext(c)
	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewResumePDFTask(clientID, tpl.ID, doc, correlationID)
	if err != nil {
		logger.Error("create pdf task failed", slog.Any("error", err))
		Internal(c, "failed to create task")
		return
	}
	info, err := h.queue.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute))
	if err != nil {
		logger.Error("enqueue pdf task failed", slog.Any("error", err))
		Internal(c, "failed to enqueue pdf generation")
		return
	}

	logger.Info("pdf generation queued", slog.String("task_id", info.ID), slog.String("template_id", tpl.ID))
	c.JSON(http.StatusAccepted, gin.H{
		"message":  "PDF generation request accepted",
		"task_id":  info.ID,
		"template": tpl.ID,
	})
}

// DownloadLink signs a short-lived URL for a rendered PDF. ?key= selects an
// object announced over the websocket; otherwise the latest recorded render
// is used.
func (h *ResumeHandler) DownloadLink(c *gin.Context) {
	store, clientID, ok := h.clientStore(c)
	if !ok {
		return
	}
	if h.storage == nil {
		Error(c, http.StatusServiceUnavailable, "object storage unavailable")
		return
	}

	objectKey := c.Query("key")
	fileName := "resume.pdf"
	if objectKey == "" {
		var record resume.PDFRecord
		err := kv.GetJSON(c.Request.Context(), store, resume.PDFStorageKey, &record)
		switch {
		case errors.Is(err, kv.ErrNotFound), kv.IsDecodeError(err):
			Conflict(c, "pdf not ready")
			return
		case err != nil:
			Internal(c, "failed to load pdf record")
			return
		}
		objectKey = record.ObjectKey
		if record.FileName != "" {
			fileName = record.FileName
		}
	}
	if !storage.OwnedBy(objectKey, storage.ResumePDFPrefix, clientID) {
		Forbidden(c, "access denied")
		return
	}

	url, err := h.storage.GeneratePresignedURLWithParams(c.Request.Context(), objectKey, downloadLinkTTL, map[string]string{
		"response-content-disposition": fmt.Sprintf("attachment; filename=%q", fileName),
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("sign download link failed", slog.Any("error", err))
		Internal(c, "failed to generate download link")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": int(downloadLinkTTL.Seconds())})
}

// template resolves id and enforces the premium lock.
func (h *ResumeHandler) template(c *gin.Context, id string) (resume.Template, bool) {
	tpl, err := resume.LookupTemplate(id)
	if err != nil {
		BadRequest(c, err.Error())
		return resume.Template{}, false
	}
	if tpl.IsPremium && !isPremium(c) {
		Forbidden(c, "premium template")
		return resume.Template{}, false
	}
	return tpl, true
}

func isPremium(c *gin.Context) bool {
	s := middleware.CurrentSession(c)
	return s != nil && s.IsPremium
}
