package repository

import (
	"sort"
	"sync"

	"gemdesk/internal/domain/entity"
	"gemdesk/internal/domain/repository"
	"gemdesk/pkg/errors"
)

// memoryConversationRepository is the session-scoped system of record for
// aggregated conversations. All mutation goes through the single mutex; the
// aggregator is the only writer during a refresh pass.
type memoryConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*entity.Conversation
}

func NewMemoryConversationRepository() repository.ConversationRepository {
	return &memoryConversationRepository{
		conversations: make(map[string]*entity.Conversation),
	}
}

func (r *memoryConversationRepository) Save(conversation *entity.Conversation) error {
	if conversation.ID == "" {
		return errors.BadRequest("Conversation id is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.conversations[conversation.ID] = cloneConversation(conversation)
	return nil
}

// cloneConversation copies the message and member slices so callers never
// share backing arrays with the stored state.
func cloneConversation(conversation *entity.Conversation) *entity.Conversation {
	copied := *conversation
	copied.Members = append([]entity.Entity(nil), conversation.Members...)
	copied.Messages = append([]entity.Message(nil), conversation.Messages...)
	if len(copied.Messages) > 0 && conversation.LastMessage != nil {
		last := copied.Messages[len(copied.Messages)-1]
		copied.LastMessage = &last
	}
	return &copied
}

func (r *memoryConversationRepository) GetByID(id string) (*entity.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}

	return cloneConversation(conversation), nil
}

func (r *memoryConversationRepository) ListVisible() []*entity.Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visible := make([]*entity.Conversation, 0, len(r.conversations))
	for _, conversation := range r.conversations {
		if !conversation.IsVisible() {
			continue
		}
		visible = append(visible, cloneConversation(conversation))
	}

	sort.Slice(visible, func(i, j int) bool {
		a, b := visible[i].LastMessage, visible[j].LastMessage
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return visible[i].ID < visible[j].ID
	})

	return visible
}

func (r *memoryConversationRepository) ListAll() []*entity.Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*entity.Conversation, 0, len(r.conversations))
	for _, conversation := range r.conversations {
		all = append(all, cloneConversation(conversation))
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (r *memoryConversationRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[id]; !ok {
		return errors.NotFound("Conversation", nil)
	}
	delete(r.conversations, id)
	return nil
}

func (r *memoryConversationRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations = make(map[string]*entity.Conversation)
}
