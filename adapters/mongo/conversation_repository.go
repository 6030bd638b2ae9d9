package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

// ConversationRepository persists conversations keyed by their UUID.
type ConversationRepository struct {
	collection *mongo.Collection
}

var _ repositories.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a MongoDB conversation repository.
func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{
		collection: db.Collection("conversations"),
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

	doc := conversationDocument(conversation)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetByID implements repositories.ConversationRepository
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*entities.Conversation, error) {
	if id == "" {
		return nil, errors.New("conversation ID cannot be empty")
	}

	var conversation entities.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}

	return &conversation, nil
}

// Save implements repositories.ConversationRepository. The full document
// is replaced, creating it when absent, so restarted servers can keep
// appending to in-memory sessions they later persist.
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

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": conversation.ID}, conversationDocument(conversation), opts)
	if err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", conversation.ID, err)
	}
	return nil
}

func conversationDocument(conversation *entities.Conversation) bson.M {
	return bson.M{
		"_id":               conversation.ID,
		"selected_voice_id": conversation.SelectedVoiceID,
		"past":              conversation.Past,
		"generated":         conversation.Generated,
		"created_at":        conversation.CreatedAt,
		"last_turn_at":      conversation.LastTurnAt,
	}
}
