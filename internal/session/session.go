package session

import "time"

// Stage identifies where in the USSD dialog a session currently is.
// The concrete stage values are owned by the dialog engine; the store
// treats them as opaque.
type Stage string

// Session represents one in-progress USSD dialog.
type Session struct {
	SessionID      string            `json:"session_id"`
	Phone          string            `json:"phone"`
	Stage          Stage             `json:"stage"`
	Fields         map[string]string `json:"fields"` // collected inputs, grow-only until deletion
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	AccessCount    int               `json:"access_count"`
}

// New creates a fresh session at the given stage.
func New(sessionID, phone string, stage Stage) *Session {
	now := time.Now()
	return &Session{
		SessionID:      sessionID,
		Phone:          phone,
		Stage:          stage,
		Fields:         make(map[string]string),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate freely and write back
// through Set/Update.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		cp.Fields[k] = v
	}
	return &cp
}
