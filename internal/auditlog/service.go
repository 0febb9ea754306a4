package auditlog

import (
	"context"
	"encoding/json"
	"log"
	"math"
)

// Publisher mirrors audit entries to an external event stream. Implemented
// by the Kafka writer in utils; nil when no brokers are configured.
type Publisher interface {
	PublishAuditEvent(ctx context.Context, payload []byte) error
}

type requestIDKey struct{}

// WithRequestID stamps the request id onto the context so entries logged
// anywhere downstream carry it without threading it through every service.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Entry is one action to record. Details is freeform and serialized to JSON.
type Entry struct {
	UserID    *uint
	OrgID     *uint
	Action    string
	Details   map[string]interface{}
	IPAddress string
	RequestID string
	Status    string
}

type Service interface {
	// Log records the entry best-effort: persistence or publish failures are
	// logged server-side and never fail the calling request.
	Log(ctx context.Context, e Entry)
	GetAuditLogs(ctx context.Context, filter Filter) (*Page, error)
	GetAuditLogByID(ctx context.Context, id uint) (*AuditLog, error)
}

type service struct {
	repo      Repository
	publisher Publisher
}

func NewService(repo Repository, publisher Publisher) Service {
	return &service{repo: repo, publisher: publisher}
}

func (s *service) Log(ctx context.Context, e Entry) {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	if e.RequestID == "" {
		e.RequestID = requestIDFrom(ctx)
	}
	detailsJSON, err := json.Marshal(e.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &AuditLog{
		UserID:    e.UserID,
		OrgID:     e.OrgID,
		Action:    e.Action,
		Details:   detailsJSON,
		IPAddress: e.IPAddress,
		RequestID: e.RequestID,
		Status:    e.Status,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s: %v", e.Action, err)
		return
	}

	if s.publisher != nil {
		payload, err := json.Marshal(entry)
		if err != nil {
			return
		}
		if err := s.publisher.PublishAuditEvent(ctx, payload); err != nil {
			log.Printf("audit: kafka publish failed for %s: %v", e.Action, err)
		}
	}
}

func (s *service) GetAuditLogs(ctx context.Context, filter Filter) (*Page, error) {
	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if filter.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(filter.Limit)))
	}

	return &Page{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *service) GetAuditLogByID(ctx context.Context, id uint) (*AuditLog, error) {
	return s.repo.GetByID(ctx, id)
}
