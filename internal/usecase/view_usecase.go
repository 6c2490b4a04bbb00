package usecase

import (
	"context"
	"strings"
	"sync"

	"gemdesk/internal/domain/entity"
)

// ViewUseCase tracks which conversation is active plus the current filters,
// and projects the aggregator's visible set for the presentation layer. No
// business logic lives here beyond filtering.
type ViewUseCase struct {
	conversations *ConversationUseCase
	poller        *FreshnessPoller

	mu           sync.RWMutex
	activeID     string
	searchQuery  string
	kindFilter   entity.ConversationKind // empty means both kinds
	entityFilter []string
}

func NewViewUseCase(conversations *ConversationUseCase, poller *FreshnessPoller) *ViewUseCase {
	return &ViewUseCase{
		conversations: conversations,
		poller:        poller,
	}
}

type ViewState struct {
	ActiveConversationID string                  `json:"active_conversation_id,omitempty"`
	SearchQuery          string                  `json:"search_query,omitempty"`
	KindFilter           entity.ConversationKind `json:"kind_filter,omitempty"`
	EntityFilter         []string                `json:"entity_filter,omitempty"`
	PollState            PollState               `json:"poll_state"`
	LastError            string                  `json:"last_error,omitempty"`
}

type ViewUpdateInput struct {
	ActiveConversationID *string
	SearchQuery          *string
	KindFilter           *entity.ConversationKind
	EntityFilter         []string
}

// Update applies a partial view change. Setting the active conversation
// rotates the poller onto it; clearing it stops polling. A multi-select
// entity filter is routed through the group resolver and the resulting
// conversation becomes active.
func (uc *ViewUseCase) Update(ctx context.Context, input ViewUpdateInput) (*ViewState, error) {
	uc.mu.Lock()
	if input.SearchQuery != nil {
		uc.searchQuery = *input.SearchQuery
	}
	if input.KindFilter != nil {
		uc.kindFilter = *input.KindFilter
	}
	if input.EntityFilter != nil {
		uc.entityFilter = entity.NormalizeMemberIDs(input.EntityFilter)
	}
	kind := uc.kindFilter
	entityFilter := uc.entityFilter
	uc.mu.Unlock()

	if len(entityFilter) > 1 {
		resolveKind := kind
		if resolveKind == "" {
			resolveKind = entity.ConversationInternal
		}
		conversation, err := uc.conversations.ResolveGroup(entityFilter, resolveKind)
		if err != nil {
			return nil, err
		}
		uc.setActive(conversation.ID)
	}

	if input.ActiveConversationID != nil {
		if *input.ActiveConversationID == "" {
			uc.clearActive()
		} else {
			if _, err := uc.conversations.GetByID(*input.ActiveConversationID); err != nil {
				return nil, err
			}
			uc.setActive(*input.ActiveConversationID)
		}
	}

	snapshot := uc.Snapshot()
	return &snapshot, nil
}

func (uc *ViewUseCase) setActive(conversationID string) {
	uc.mu.Lock()
	uc.activeID = conversationID
	uc.mu.Unlock()
	uc.poller.Watch(conversationID)
}

func (uc *ViewUseCase) clearActive() {
	uc.mu.Lock()
	uc.activeID = ""
	uc.mu.Unlock()
	uc.poller.Stop()
}

func (uc *ViewUseCase) Snapshot() ViewState {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	_, pollState := uc.poller.Active()

	state := ViewState{
		ActiveConversationID: uc.activeID,
		SearchQuery:          uc.searchQuery,
		KindFilter:           uc.kindFilter,
		EntityFilter:         append([]string(nil), uc.entityFilter...),
		PollState:            pollState,
	}
	if err := uc.conversations.LastError(); err != nil {
		state.LastError = err.Error()
	}
	return state
}

// VisibleConversations applies kind filter, then search, then entity filter
// over the aggregator's visible set.
func (uc *ViewUseCase) VisibleConversations() []*entity.Conversation {
	uc.mu.RLock()
	kind := uc.kindFilter
	query := strings.ToLower(strings.TrimSpace(uc.searchQuery))
	entityFilter := uc.entityFilter
	uc.mu.RUnlock()

	filtered := make([]*entity.Conversation, 0)
	for _, conversation := range uc.conversations.VisibleConversations() {
		if kind != "" && conversation.Kind != kind {
			continue
		}
		if query != "" && !matchesSearch(conversation, query) {
			continue
		}
		if len(entityFilter) > 0 && !matchesEntityFilter(conversation, entityFilter) {
			continue
		}
		filtered = append(filtered, conversation)
	}
	return filtered
}

// Search is a case-insensitive substring match over member display names,
// and member specialties for external conversations.
func matchesSearch(conversation *entity.Conversation, query string) bool {
	for _, member := range conversation.Members {
		if strings.Contains(strings.ToLower(member.DisplayName), query) {
			return true
		}
		if conversation.Kind == entity.ConversationExternal {
			for _, specialty := range member.Specialties {
				if strings.Contains(strings.ToLower(specialty), query) {
					return true
				}
			}
		}
	}
	return false
}

func matchesEntityFilter(conversation *entity.Conversation, filter []string) bool {
	if len(filter) == 1 {
		for _, member := range conversation.Members {
			if member.ID == filter[0] {
				return true
			}
		}
		return false
	}
	// Multi-select means the exact group: same canonical key.
	return conversation.ID == entity.GroupKey(filter)
}
