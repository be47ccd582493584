package dispute

import (
	"time"

	"github.com/google/uuid"

	"github.com/growshare/service-booking/pkg/domain"
)

// Message is an append-only entry in a dispute's conversation log. Messages
// are immutable once written; there is no edit or delete. Internal messages
// are visible to administrators only.
type Message struct {
	id             uuid.UUID
	disputeID      uuid.UUID
	senderID       uuid.UUID
	content        string
	attachmentURLs []string
	isInternal     bool
	createdAt      time.Time
}

// NewMessage appends a message to a dispute.
func NewMessage(disputeID, senderID uuid.UUID, content string, attachmentURLs []string, isInternal bool) (*Message, error) {
	if content == "" {
		return nil, domain.NewValidationError("message content is required")
	}
	return &Message{
		id:             uuid.New(),
		disputeID:      disputeID,
		senderID:       senderID,
		content:        content,
		attachmentURLs: attachmentURLs,
		isInternal:     isInternal,
		createdAt:      time.Now().UTC(),
	}, nil
}

// ReconstructMessage rebuilds a Message from persistence.
func ReconstructMessage(id, disputeID, senderID uuid.UUID, content string, attachmentURLs []string, isInternal bool, createdAt time.Time) *Message {
	return &Message{
		id:             id,
		disputeID:      disputeID,
		senderID:       senderID,
		content:        content,
		attachmentURLs: attachmentURLs,
		isInternal:     isInternal,
		createdAt:      createdAt,
	}
}

func (m *Message) ID() uuid.UUID            { return m.id }
func (m *Message) DisputeID() uuid.UUID     { return m.disputeID }
func (m *Message) SenderID() uuid.UUID      { return m.senderID }
func (m *Message) Content() string          { return m.content }
func (m *Message) AttachmentURLs() []string { return m.attachmentURLs }
func (m *Message) IsInternal() bool         { return m.isInternal }
func (m *Message) CreatedAt() time.Time     { return m.createdAt }
