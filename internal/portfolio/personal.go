package portfolio

import (
	"context"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

// PersonalInfo manages the free-form profile document.
type PersonalInfo struct {
	doc    *storage.Document[models.PersonalInfo]
	events Publisher
}

// NewPersonalInfo creates the personal info service.
func NewPersonalInfo(store storage.Provider, events Publisher) *PersonalInfo {
	if events == nil {
		events = nopPublisher{}
	}
	return &PersonalInfo{
		doc:    storage.NewDocument(store, PersonalInfoDoc, func() models.PersonalInfo { return models.PersonalInfo{} }),
		events: events,
	}
}

// Get returns the stored document, or an empty object.
func (s *PersonalInfo) Get(_ context.Context) (models.PersonalInfo, error) {
	return s.doc.Get()
}

// Replace overwrites the document wholesale.
func (s *PersonalInfo) Replace(_ context.Context, info models.PersonalInfo) (models.PersonalInfo, error) {
	if info == nil {
		return nil, apperr.Invalid("body", "must be a JSON object")
	}
	out, err := s.doc.Update(func(cur *models.PersonalInfo) error {
		*cur = info
		return nil
	})
	if err != nil {
		return out, err
	}
	s.events.Publish(sse.Event{Type: "personal-info.updated", Data: map[string]string{}})
	return out, nil
}
