package entity

import (
	"sort"
	"strings"
	"time"
)

type ConversationKind string

const (
	ConversationExternal ConversationKind = "external" // B2B partner threads
	ConversationInternal ConversationKind = "internal" // team-member threads
)

type Conversation struct {
	ID            string           `json:"id"`
	Kind          ConversationKind `json:"kind"`
	Subject       string           `json:"subject,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	Members       []Entity         `json:"members"`
	Messages      []Message        `json:"messages"` // chronological, oldest first
	LastMessage   *Message         `json:"last_message,omitempty"`
	UnreadCount   int              `json:"unread_count"`
	LastFetchedAt time.Time        `json:"last_fetched_at"`
}

// IsVisible reports whether the conversation belongs in the listing.
// Provisional conversations stay hidden until they carry a real message.
func (c *Conversation) IsVisible() bool {
	return len(c.Messages) > 0
}

func (c *Conversation) IsGroup() bool {
	return len(c.Members) > 1
}

func (c *Conversation) MemberIDs() []string {
	ids := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// GroupKey derives the canonical conversation id for a member set:
// ids sorted, deduplicated, joined. Selection order never matters.
func GroupKey(memberIDs []string) string {
	return strings.Join(NormalizeMemberIDs(memberIDs), "+")
}

// NormalizeMemberIDs returns the sorted, deduplicated member id set.
func NormalizeMemberIDs(memberIDs []string) []string {
	seen := make(map[string]bool, len(memberIDs))
	normalized := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		normalized = append(normalized, id)
	}
	sort.Strings(normalized)
	return normalized
}
