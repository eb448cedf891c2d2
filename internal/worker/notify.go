package worker

// PDFGenerationNotifyMessage is pushed to the browser over the websocket.
// Field names are part of the client protocol.
type PDFGenerationNotifyMessage struct {
	Status        string `json:"status"`
	ObjectKey     string `json:"object_key,omitempty"`
	TemplateID    string `json:"template_id"`
	CorrelationID string `json:"correlation_id"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}
