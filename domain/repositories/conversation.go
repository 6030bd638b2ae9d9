package repositories

import (
	"context"
	"errors"

	"github.com/voxdocs/voxdocs/domain/entities"
)

// ErrConversationNotFound indicates an unknown conversation id.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository persists conversation sessions.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *entities.Conversation) error
	GetByID(ctx context.Context, id string) (*entities.Conversation, error)
	// Save replaces the stored state of an existing conversation.
	Save(ctx context.Context, conversation *entities.Conversation) error
}
