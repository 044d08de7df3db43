package model

// StorageEvent reports a durable-tier key change for one device so other tabs can re-derive their view.
// NewValue is empty when the key was removed.
type StorageEvent struct {
	Device   string `json:"device"`
	Key      string `json:"key"`
	NewValue string `json:"newValue"`
}

// SessionStatus is the diagnostic snapshot of session tracking for one device.
type SessionStatus struct {
	PrimaryID       string   `json:"primarySessionId,omitempty"`
	AllIDs          []string `json:"allSessionIds"`
	TrackedID       string   `json:"sendSessionId,omitempty"`
	SinceSendMillis *int64   `json:"timeSinceSend,omitempty"`
	Mobile          bool     `json:"isMobile"`
}
