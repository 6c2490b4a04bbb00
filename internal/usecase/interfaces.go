package usecase

import (
	"context"
	"time"

	"gemdesk/internal/domain/entity"
)

type DirectoryClient interface {
	ListPartners(ctx context.Context) ([]entity.Entity, error)
	ListTeamMembers(ctx context.Context) ([]entity.Entity, error)
}

// MessageStoreClient is the narrow contract over one message backend. Two
// implementations exist: the external (B2B partner) store and the internal
// (team) store. A nil since means "everything".
type MessageStoreClient interface {
	FetchMessages(ctx context.Context, ownerID string, since *time.Time) ([]entity.Message, error)
	SendMessage(ctx context.Context, recipientID, senderID, content string, attachments []entity.Attachment) (*entity.Message, error)
}

type SuggestionClient interface {
	SuggestReplies(ctx context.Context, conversationID string, recentMessages []entity.Message) ([]string, error)
}
