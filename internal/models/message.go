package models

import "time"

// Project types accepted on contact messages.
var ProjectTypes = []string{"web-development", "mobile-app", "ui-ux-design", "consulting", "other"}

// Timelines accepted on contact messages.
var Timelines = []string{"asap", "1-month", "1-3-months", "3-6-months", "flexible"}

// MaxMessageLength caps the free-text body of a message.
const MaxMessageLength = 5000

// Message is a contact message. It is the only message representation; older
// records that carry a subset of these fields are normalised by Normalize.
type Message struct {
	Meta
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Company         string     `json:"company,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Subject         string     `json:"subject,omitempty"`
	ProjectType     string     `json:"projectType,omitempty"`
	Timeline        string     `json:"timeline,omitempty"`
	Budget          string     `json:"budget,omitempty"`
	ProjectPriority string     `json:"projectPriority,omitempty"`
	Requirements    string     `json:"requirements,omitempty"`
	Message         string     `json:"message"`
	Read            bool       `json:"read"`
	ReadAt          *time.Time `json:"readAt"`
}

// Normalize fills fields missing from legacy records and reports whether
// anything changed.
func (m *Message) Normalize() bool {
	changed := false
	if m.UpdatedAt.IsZero() && !m.CreatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
		changed = true
	}
	if m.Read && m.ReadAt == nil && !m.UpdatedAt.IsZero() {
		t := m.UpdatedAt
		m.ReadAt = &t
		changed = true
	}
	if m.Message == "" && m.Requirements != "" {
		m.Message = m.Requirements
		changed = true
	}
	if !m.Read && m.ReadAt != nil {
		m.Read = true
		changed = true
	}
	return changed
}
