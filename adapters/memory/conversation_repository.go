// Package memory provides an in-process conversation store used when no
// MongoDB URI is configured. Sessions live for the lifetime of the server.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

// ConversationRepository keeps conversations in a mutex-guarded map.
type ConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*entities.Conversation
}

var _ repositories.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates an empty in-memory store.
func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		conversations: make(map[string]*entities.Conversation),
	}
}

// Create implements repositories.ConversationRepository
func (r *ConversationRepository) Create(ctx context.Context, conversation *entities.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	if err := conversation.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.conversations[conversation.ID]; exists {
		return errors.New("conversation already exists")
	}
	r.conversations[conversation.ID] = cloneConversation(conversation)
	return nil
}

// GetByID implements repositories.ConversationRepository
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*entities.Conversation, error) {
	if id == "" {
		return nil, errors.New("conversation ID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, repositories.ErrConversationNotFound
	}
	return cloneConversation(conversation), nil
}

// Save implements repositories.ConversationRepository
func (r *ConversationRepository) Save(ctx context.Context, conversation *entities.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	if conversation.ID == "" {
		return errors.New("conversation ID cannot be empty")
	}
	if err := conversation.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conversation.ID] = cloneConversation(conversation)
	return nil
}

// cloneConversation copies histories so callers cannot mutate stored
// state through shared slices.
func cloneConversation(c *entities.Conversation) *entities.Conversation {
	clone := *c
	clone.Past = append([]string(nil), c.Past...)
	clone.Generated = append([]string(nil), c.Generated...)
	return &clone
}
