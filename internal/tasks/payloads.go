package tasks

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"locallift/internal/resume"
)

// Task type names shared by producer and consumer.
const (
	TypeResumePDF = "resume:pdf"
)

// NotifyChannel is the redis channel that carries job notifications for
// clientID to its websocket.
func NotifyChannel(clientID string) string {
	return fmt.Sprintf("client_notify:%s", clientID)
}

// ResumePDFPayload carries everything the worker needs to render a resume,
// so the worker never reads the client's key-value namespace to start.
type ResumePDFPayload struct {
	ClientID      string          `json:"client_id"`
	TemplateID    string          `json:"template_id"`
	Document      resume.Document `json:"document"`
	CorrelationID string          `json:"correlation_id"`
}

// NewResumePDFTask builds a render task for clientID.
func NewResumePDFTask(clientID, templateID string, doc *resume.Document, correlationID string) (*asynq.Task, error) {
	if clientID == "" {
		return nil, errors.New("client id is required")
	}
	if doc == nil {
		return nil, errors.New("document is required")
	}
	payload, err := json.Marshal(ResumePDFPayload{
		ClientID:      clientID,
		TemplateID:    templateID,
		Document:      *doc,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResumePDF, payload), nil
}

// ParseResumePDFPayload decodes the payload of a TypeResumePDF task.
func ParseResumePDFPayload(t *asynq.Task) (ResumePDFPayload, error) {
	var p ResumePDFPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return ResumePDFPayload{}, err
	}
	return p, nil
}
