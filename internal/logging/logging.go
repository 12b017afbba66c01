package logging

import (
	"encoding/json"
	"log"
	"time"
)

const Service = "marketplace"

type Fields struct {
	OrderID    uint   `json:"order_id,omitempty"`
	ItemID     uint   `json:"item_id,omitempty"`
	UserID     uint   `json:"user_id,omitempty"`
	Step       string `json:"step,omitempty"`
	Status     string `json:"status,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Log writes fields as a single JSON line through the standard logger.
func Log(f Fields) {
	payload := struct {
		Service string `json:"service"`
		Fields
		Timestamp string `json:"timestamp"`
	}{Service, f, time.Now().UTC().Format(time.RFC3339Nano)}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", Service, err.Error())
		return
	}
	log.Print(string(data))
}
