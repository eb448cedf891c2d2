package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"locallift/internal/errcode"
	"locallift/internal/kv"
	"locallift/internal/resume"
	"locallift/internal/storage"
	"locallift/internal/tasks"
)

// Renderer prints HTML to PDF.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Uploader stores rendered files.
type Uploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// Publisher pushes notifications to subscribers of a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// PDFTaskHandler consumes tasks.TypeResumePDF.
type PDFTaskHandler struct {
	renderer  Renderer
	storage   Uploader
	publisher Publisher
	// records is the shared key-value store; nil when the API keeps client
	// state in process memory, in which case only the notification carries
	// the object key.
	records kv.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewPDFTaskHandler wires the handler. records may be nil.
func NewPDFTaskHandler(renderer Renderer, storage Uploader, publisher Publisher, records kv.Store, logger *slog.Logger) *PDFTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFTaskHandler{
		renderer:  renderer,
		storage:   storage,
		publisher: publisher,
		records:   records,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessTask implements asynq.Handler.
func (h *PDFTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	payload, err := tasks.ParseResumePDFPayload(t)
	if err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.ClientID == "" {
		h.logger.Warn("task without client id, skipping")
		return nil
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("client_id", payload.ClientID),
		slog.String("template_id", payload.TemplateID),
	)
	log.Info("starting resume pdf generation")

	defer func() {
		if retErr == nil || !isFinalAsynqAttempt(ctx) {
			return
		}
		notify := PDFGenerationNotifyMessage{
			Status:        "error",
			TemplateID:    payload.TemplateID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publish(ctx, payload.ClientID, notify); err != nil {
			log.Error("publish pdf error notification failed", slog.Any("error", err))
		}
	}()

	notify := PDFGenerationNotifyMessage{
		Status:        "completed",
		TemplateID:    payload.TemplateID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}

	tpl, err := resume.LookupTemplate(payload.TemplateID)
	if err != nil {
		tpl, _ = resume.LookupTemplate(resume.DefaultTemplateID)
		notify.TemplateID = tpl.ID
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = fmt.Sprintf("template %q not found, rendered with %q", payload.TemplateID, tpl.ID)
		log.Warn("unknown template, falling back", slog.String("fallback", tpl.ID))
	}

	doc := payload.Document
	doc.Normalize()
	html, err := resume.RenderHTML(&doc, tpl)
	if err != nil {
		log.Error("render resume html failed", slog.Any("error", err))
		return err
	}

	pdfBytes, err := h.renderer.Render(ctx, string(html))
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		return err
	}

	objectName := storage.ResumePDFKey(payload.ClientID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}
	notify.ObjectKey = objectName

	if h.records != nil {
		record := resume.PDFRecord{
			ObjectKey:  objectName,
			TemplateID: tpl.ID,
			FileName:   resume.FileName(&doc),
			CreatedAt:  h.now().UTC().Format(time.RFC3339),
		}
		if err := kv.SetJSON(ctx, kv.ForClient(h.records, payload.ClientID), resume.PDFStorageKey, record); err != nil {
			log.Error("record pdf location failed", slog.Any("error", err))
			return err
		}
	}

	if err := h.publish(ctx, payload.ClientID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("resume pdf generated", slog.String("object_key", objectName), slog.Int("bytes", len(pdfBytes)))
	return nil
}

func (h *PDFTaskHandler) publish(ctx context.Context, clientID string, notify PDFGenerationNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := tasks.NotifyChannel(clientID)
	if err := h.publisher.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
