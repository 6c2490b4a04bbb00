package usecase

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gemdesk/internal/domain/entity"
	"gemdesk/internal/domain/repository"
	"gemdesk/internal/infrastructure/metrics"
	"gemdesk/internal/infrastructure/ratelimit"
	"gemdesk/pkg/errors"
)

// ConversationUseCase aggregates the two message backends into the unified,
// deduplicated conversation map. It is the only writer to the repository;
// fetches fan out concurrently but every merge runs under the repository's
// single mutex via Save.
type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	directory        *DirectoryUseCase
	externalStore    MessageStoreClient
	internalStore    MessageStoreClient
	suggestionClient SuggestionClient
	rateLimiter      *ratelimit.RateLimiter
	sessionUserID    string
	fetchConcurrency int

	mu        sync.Mutex
	lastError error
}

func NewConversationUseCase(
	conversationRepo repository.ConversationRepository,
	directory *DirectoryUseCase,
	externalStore MessageStoreClient,
	internalStore MessageStoreClient,
	suggestionClient SuggestionClient,
	sessionUserID string,
	fetchConcurrency int,
) *ConversationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	if fetchConcurrency < 1 {
		fetchConcurrency = 1
	}

	return &ConversationUseCase{
		conversationRepo: conversationRepo,
		directory:        directory,
		externalStore:    externalStore,
		internalStore:    internalStore,
		suggestionClient: suggestionClient,
		rateLimiter:      rateLimiter,
		sessionUserID:    sessionUserID,
		fetchConcurrency: fetchConcurrency,
	}
}

type SendMessageInput struct {
	ConversationID string
	Content        string
	Attachments    []entity.Attachment
}

// FetchFor pulls raw messages for one conversation owner from the store
// matching the kind. A nil since means the full history.
func (uc *ConversationUseCase) FetchFor(ctx context.Context, ownerID string, kind entity.ConversationKind, since *time.Time) ([]entity.Message, error) {
	store := uc.storeFor(kind)
	messages, err := store.FetchMessages(ctx, ownerID, since)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(string(kind)).Inc()
		return nil, err
	}
	return messages, nil
}

func (uc *ConversationUseCase) storeFor(kind entity.ConversationKind) MessageStoreClient {
	if kind == entity.ConversationInternal {
		return uc.internalStore
	}
	return uc.externalStore
}

func conversationKindFor(entityKind entity.EntityKind) entity.ConversationKind {
	if entityKind == entity.KindTeam {
		return entity.ConversationInternal
	}
	return entity.ConversationExternal
}

// Merge unions existing and incoming messages by id (incoming wins, so the
// last-fetched value is authoritative for mutable fields like the read flag),
// re-sorts by createdAt with id tiebreak, and recomputes the derived fields.
// Idempotent: merging the same batch twice yields the same conversation.
func (uc *ConversationUseCase) Merge(existing *entity.Conversation, incoming []entity.Message) entity.Conversation {
	return mergeMessages(existing, incoming, uc.sessionUserID)
}

func mergeMessages(existing *entity.Conversation, incoming []entity.Message, sessionUserID string) entity.Conversation {
	merged := *existing

	byID := make(map[string]entity.Message, len(existing.Messages)+len(incoming))
	for _, m := range existing.Messages {
		byID[m.ID] = m
	}
	for _, m := range incoming {
		byID[m.ID] = m
	}

	union := make([]entity.Message, 0, len(byID))
	for _, m := range byID {
		union = append(union, m)
	}
	sort.Slice(union, func(i, j int) bool {
		if !union[i].CreatedAt.Equal(union[j].CreatedAt) {
			return union[i].CreatedAt.Before(union[j].CreatedAt)
		}
		return union[i].ID < union[j].ID
	})

	merged.Messages = union
	recomputeDerived(&merged, sessionUserID)

	metrics.MergesApplied.Inc()
	return merged
}

func recomputeDerived(conversation *entity.Conversation, sessionUserID string) {
	if len(conversation.Messages) == 0 {
		conversation.LastMessage = nil
		conversation.UnreadCount = 0
		return
	}

	last := conversation.Messages[len(conversation.Messages)-1]
	conversation.LastMessage = &last

	unread := 0
	for _, m := range conversation.Messages {
		if !m.IsRead && m.SenderID != sessionUserID {
			unread++
		}
	}
	conversation.UnreadCount = unread
}

// RefreshAll rebuilds the conversation map: reload the directory, then fetch
// every entity's backlog with bounded fan-out and merge per conversation.
// Per-entity failures are isolated; the entity contributes zero messages for
// the cycle and the error lands in lastError.
func (uc *ConversationUseCase) RefreshAll(ctx context.Context) error {
	partners, teamMembers, err := uc.directory.Load(ctx)
	if err != nil {
		uc.recordError(err)
	}

	targets := make([]entity.Entity, 0, len(partners)+len(teamMembers))
	targets = append(targets, partners...)
	targets = append(targets, teamMembers...)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, uc.fetchConcurrency)

	for _, target := range targets {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(target entity.Entity) {
			defer wg.Done()
			defer func() { <-semaphore }()
			uc.refreshEntity(ctx, target)
		}(target)
	}
	wg.Wait()

	// Group conversations are keyed by their member set, not a single
	// entity, so they get their own pass against the owning store.
	for _, conversation := range uc.conversationRepo.ListAll() {
		if !conversation.IsGroup() {
			continue
		}
		if _, err := uc.PollConversation(ctx, conversation.ID); err != nil {
			uc.recordError(err)
		}
	}

	return uc.LastError()
}

func (uc *ConversationUseCase) refreshEntity(ctx context.Context, target entity.Entity) {
	kind := conversationKindFor(target.Kind)

	messages, err := uc.FetchFor(ctx, target.ID, kind, nil)
	if err != nil {
		log.Printf("RefreshAll Error: Fetch failed for %s %s: %v", target.Kind, target.ID, err)
		uc.recordError(err)
		return
	}

	existing, err := uc.conversationRepo.GetByID(target.ID)
	if err != nil {
		existing = &entity.Conversation{
			ID:      target.ID,
			Kind:    kind,
			Members: []entity.Entity{target},
		}
	} else {
		// Keep the member snapshot current so status changes take effect.
		existing.Members = []entity.Entity{target}
	}

	merged := uc.Merge(existing, messages)
	merged.LastFetchedAt = time.Now()

	if err := uc.conversationRepo.Save(&merged); err != nil {
		log.Printf("RefreshAll Error: Failed to save conversation %s: %v", merged.ID, err)
		uc.recordError(err)
	}
}

// PollConversation runs one freshness cycle for a conversation. It returns
// whether new data was merged. Results arriving after ctx cancellation are
// discarded so a stale poll cannot clobber the newly active conversation.
func (uc *ConversationUseCase) PollConversation(ctx context.Context, conversationID string) (bool, error) {
	conversation, err := uc.conversationRepo.GetByID(conversationID)
	if err != nil {
		return false, err
	}

	var since *time.Time
	if !conversation.LastFetchedAt.IsZero() {
		lastFetched := conversation.LastFetchedAt
		since = &lastFetched
	}

	messages, err := uc.FetchFor(ctx, conversation.ID, conversation.Kind, since)
	if err != nil {
		return false, err
	}

	if ctx.Err() != nil {
		return false, nil
	}
	if len(messages) == 0 {
		return false, nil
	}

	merged := uc.Merge(conversation, messages)
	merged.LastFetchedAt = time.Now()
	if err := uc.conversationRepo.Save(&merged); err != nil {
		return false, err
	}
	return true, nil
}

// SendMessage posts to the kind-appropriate store with an optimistic local
// echo: the message shows up immediately as "sending", is replaced by the
// backend envelope on success, and is flagged "error" if the post fails.
func (uc *ConversationUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	allowed, waitTime := uc.rateLimiter.Allow(uc.sessionUserID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", uc.sessionUserID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}

	conversation, err := uc.conversationRepo.GetByID(input.ConversationID)
	if err != nil {
		log.Printf("SendMessage Error: Conversation %s not found: %v", input.ConversationID, err)
		return nil, err
	}

	optimistic := entity.Message{
		ID:                  uuid.New().String(),
		ConversationOwnerID: conversation.ID,
		SenderID:            uc.sessionUserID,
		Content:             input.Content,
		Priority:            "normal",
		Category:            "general",
		Tags:                []string{},
		Status:              entity.MessageStatusSending,
		Attachments:         input.Attachments,
		IsRead:              true,
		CreatedAt:           time.Now(),
	}

	pending := uc.Merge(conversation, []entity.Message{optimistic})
	pending.LastFetchedAt = conversation.LastFetchedAt
	if err := uc.conversationRepo.Save(&pending); err != nil {
		return nil, err
	}

	store := uc.storeFor(conversation.Kind)
	confirmed, err := store.SendMessage(ctx, conversation.ID, uc.sessionUserID, input.Content, input.Attachments)
	if err != nil {
		metrics.SendFailures.Inc()
		log.Printf("SendMessage Error: Store rejected message for conversation %s: %v", conversation.ID, err)
		uc.flagMessageStatus(pending.ID, optimistic.ID, entity.MessageStatusError)
		return nil, err
	}

	confirmed.ConversationOwnerID = conversation.ID
	confirmed.IsRead = true

	// Swap the optimistic echo for the backend envelope.
	final, err := uc.conversationRepo.GetByID(conversation.ID)
	if err != nil {
		return nil, err
	}
	final.Messages = removeMessage(final.Messages, optimistic.ID)
	merged := uc.Merge(final, []entity.Message{*confirmed})
	merged.LastFetchedAt = final.LastFetchedAt
	if err := uc.conversationRepo.Save(&merged); err != nil {
		return nil, err
	}

	return confirmed, nil
}

func (uc *ConversationUseCase) flagMessageStatus(conversationID, messageID string, status entity.MessageStatus) {
	conversation, err := uc.conversationRepo.GetByID(conversationID)
	if err != nil {
		return
	}
	for i := range conversation.Messages {
		if conversation.Messages[i].ID == messageID {
			conversation.Messages[i].Status = status
		}
	}
	if err := uc.conversationRepo.Save(conversation); err != nil {
		log.Printf("flagMessageStatus Error: Failed to save conversation %s: %v", conversationID, err)
	}
}

func removeMessage(messages []entity.Message, id string) []entity.Message {
	kept := messages[:0]
	for _, m := range messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return kept
}

// MarkConversationAsRead flips the read flag on messages the session user
// did not send. Read state is last-write-wins.
func (uc *ConversationUseCase) MarkConversationAsRead(conversationID string) error {
	conversation, err := uc.conversationRepo.GetByID(conversationID)
	if err != nil {
		return err
	}

	for i := range conversation.Messages {
		if conversation.Messages[i].SenderID != uc.sessionUserID {
			conversation.Messages[i].IsRead = true
		}
	}
	recomputeDerived(conversation, uc.sessionUserID)

	return uc.conversationRepo.Save(conversation)
}

// ResolveGroup maps a selected member set to its conversation. Matching is
// exact-set: same size, same ids, selection order irrelevant. A miss creates
// a provisional conversation that stays out of the listing until it carries
// a real message.
func (uc *ConversationUseCase) ResolveGroup(selectedIDs []string, kind entity.ConversationKind) (*entity.Conversation, error) {
	normalized := entity.NormalizeMemberIDs(selectedIDs)
	if len(normalized) == 0 {
		return nil, errors.BadRequest("At least one member id is required", nil)
	}

	var matches []*entity.Conversation
	for _, conversation := range uc.conversationRepo.ListAll() {
		if conversation.Kind != kind {
			continue
		}
		if sameMemberSet(entity.NormalizeMemberIDs(conversation.MemberIDs()), normalized) {
			matches = append(matches, conversation)
		}
	}

	if len(matches) > 1 {
		// Unreachable under canonical ids, guarded anyway.
		return nil, errors.GroupAmbiguous("Multiple conversations match the selected member set")
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	allowed, waitTime := uc.rateLimiter.Allow(uc.sessionUserID, "resolve_group")
	if !allowed {
		log.Printf("ResolveGroup Rate Limited: User %s must wait %v", uc.sessionUserID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another group", waitTime)
	}

	members := make([]entity.Entity, 0, len(normalized))
	names := make([]string, 0, len(normalized))
	for _, id := range normalized {
		member, err := uc.directory.GetByID(id)
		if err != nil {
			return nil, errors.BadRequest("Unknown member id: "+id, err)
		}
		members = append(members, *member)
		names = append(names, member.DisplayName)
	}

	provisional := &entity.Conversation{
		ID:      entity.GroupKey(normalized),
		Kind:    kind,
		Subject: strings.Join(names, ", "),
		Members: members,
	}

	if err := uc.conversationRepo.Save(provisional); err != nil {
		return nil, err
	}
	return provisional, nil
}

func sameMemberSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VisibleConversations is the listing surface: non-empty conversations,
// newest activity first, minus direct conversations whose owning entity has
// gone inactive.
func (uc *ConversationUseCase) VisibleConversations() []*entity.Conversation {
	visible := make([]*entity.Conversation, 0)
	for _, conversation := range uc.conversationRepo.ListVisible() {
		if !conversation.IsGroup() && len(conversation.Members) == 1 && !conversation.Members[0].IsActive() {
			continue
		}
		visible = append(visible, conversation)
	}
	return visible
}

func (uc *ConversationUseCase) GetByID(id string) (*entity.Conversation, error) {
	return uc.conversationRepo.GetByID(id)
}

func (uc *ConversationUseCase) SuggestReplies(ctx context.Context, conversationID string) ([]string, error) {
	conversation, err := uc.conversationRepo.GetByID(conversationID)
	if err != nil {
		return nil, err
	}

	recent := conversation.Messages
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	return uc.suggestionClient.SuggestReplies(ctx, conversationID, recent)
}

func (uc *ConversationUseCase) SessionUserID() string {
	return uc.sessionUserID
}

func (uc *ConversationUseCase) recordError(err error) {
	if err == nil {
		return
	}
	uc.mu.Lock()
	uc.lastError = err
	uc.mu.Unlock()
}

// LastError is the best-effort error surface next to the conversation list.
func (uc *ConversationUseCase) LastError() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.lastError
}
