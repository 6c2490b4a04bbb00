package repository

import (
	"gemdesk/internal/domain/entity"
)

type ConversationRepository interface {
	Save(conversation *entity.Conversation) error
	GetByID(id string) (*entity.Conversation, error)
	// ListVisible returns conversations with at least one message, newest
	// activity first. Conversations without a last message sort last.
	ListVisible() []*entity.Conversation
	ListAll() []*entity.Conversation
	Delete(id string) error
	Clear()
}
