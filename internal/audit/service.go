// Package audit records who did what to the catalog.
package audit

import (
	"log"
	"sync"
	"time"

	"github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/utils"
)

const maxTextLength = 500

// Request carries per-request details copied onto every event.
type Request struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an audit event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[audit] failed to log %s event: %v", event.Action, err)
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func newEvent(userID uint, eventType entities.AuditEventType, action string, req Request) *entities.AuditEvent {
	return &entities.AuditEvent{
		UserID:    userID,
		EventType: eventType,
		Action:    action,
		IPAddress: req.IPAddress,
		UserAgent: utils.Truncate(req.UserAgent, maxTextLength),
		RequestID: req.RequestID,
		Status:    entities.AuditStatusSuccess,
	}
}

func fail(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = utils.Truncate(err.Error(), maxTextLength)
	}
}

// LogAuth records a login or logout. userID is 0 when the login failed
// before a user was found.
func (s *Service) LogAuth(userID uint, action, email string, req Request, err error) {
	event := newEvent(userID, entities.AuditEventAuth, action, req)
	event.Description = utils.Truncate(email, maxTextLength)
	event.EntityType = "user"
	fail(event, err)
	s.LogAsync(event)
}

// LogRegister records a new account.
func (s *Service) LogRegister(user *entities.User, req Request) {
	id := user.ID
	event := newEvent(user.ID, entities.AuditEventRegister, "user_register", req)
	event.Description = utils.Truncate("Registered "+string(user.UserType)+" "+user.Email, maxTextLength)
	event.EntityType = "user"
	event.EntityID = &id
	s.LogAsync(event)
}

// LogBook records a create, update or delete of a book.
func (s *Service) LogBook(userID uint, eventType entities.AuditEventType, book *entities.Book, req Request) {
	id := book.ID
	event := newEvent(userID, eventType, "book_"+string(eventType), req)
	event.Description = utils.Truncate(book.Title+" ("+book.Slug+")", maxTextLength)
	event.EntityType = "book"
	event.EntityID = &id
	s.LogAsync(event)
}

// LogSeed records a bootstrap run. It writes synchronously because a failed
// seed is followed by process exit.
func (s *Service) LogSeed(description string, err error) {
	event := newEvent(0, entities.AuditEventSeed, "seed", Request{})
	event.Description = utils.Truncate(description, maxTextLength)
	fail(event, err)
	if logErr := s.Log(event); logErr != nil {
		log.Printf("[audit] failed to log %s event: %v", event.Action, logErr)
	}
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter audit.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}
