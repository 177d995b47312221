// Package response
package response

import (
	"bytes"
	"encoding/json"
	"net/http"

	"horizonx-sampler/internal/logger"
)

type Response struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

type JSONWriter struct {
	log logger.Logger
}

func NewJSONWriter(log logger.Logger) *JSONWriter {
	return &JSONWriter{log: log}
}

// Write sends data wrapped in the message/data envelope.
func (j *JSONWriter) Write(w http.ResponseWriter, status int, data *Response) {
	if data == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		return
	}
	j.WriteValue(w, status, data)
}

// WriteValue sends v as the whole body, without the envelope.
func (j *JSONWriter) WriteValue(w http.ResponseWriter, status int, v any) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		j.log.Error("failed to encode json response", "error", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		j.log.Error("failed to write json response", "error", err.Error())
	}
}

func (j *JSONWriter) Error(w http.ResponseWriter, status int, message string) {
	j.Write(w, status, &Response{Message: message})
}
