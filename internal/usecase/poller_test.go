package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemdesk/internal/domain/entity"
	"gemdesk/pkg/errors"
)

func TestPollConversationMergesNewMessages(t *testing.T) {
	dirClient := &stubDirectoryClient{partners: []entity.Entity{partnerEntity("P1", "Goldsmith & Co")}}
	f := newFixture(t, dirClient)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.externalStore.messages["P1"] = []entity.Message{message("m1", "P1", "P1", base, false)}
	require.NoError(t, f.uc.RefreshAll(context.Background()))

	// Nothing new: no refresh reported.
	f.externalStore.messages["P1"] = nil
	newData, err := f.uc.PollConversation(context.Background(), "P1")
	require.NoError(t, err)
	assert.False(t, newData)

	f.externalStore.messages["P1"] = []entity.Message{message("m2", "P1", "P1", base.Add(time.Minute), false)}
	newData, err = f.uc.PollConversation(context.Background(), "P1")
	require.NoError(t, err)
	assert.True(t, newData)

	conversation, err := f.uc.GetByID("P1")
	require.NoError(t, err)
	assert.Len(t, conversation.Messages, 2)
	assert.Equal(t, "m2", conversation.LastMessage.ID)
}

func TestPollConversationDiscardsStaleResults(t *testing.T) {
	dirClient := &stubDirectoryClient{partners: []entity.Entity{partnerEntity("P1", "Goldsmith & Co")}}
	f := newFixture(t, dirClient)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.externalStore.messages["P1"] = []entity.Message{message("m1", "P1", "P1", base, false)}
	require.NoError(t, f.uc.RefreshAll(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.externalStore.messages["P1"] = []entity.Message{message("m2", "P1", "P1", base.Add(time.Minute), false)}
	newData, err := f.uc.PollConversation(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, newData)

	conversation, err := f.uc.GetByID("P1")
	require.NoError(t, err)
	assert.Len(t, conversation.Messages, 1)
}

func TestPollerWatchPollsActiveConversation(t *testing.T) {
	dirClient := &stubDirectoryClient{partners: []entity.Entity{partnerEntity("P1", "Goldsmith & Co")}}
	f := newFixture(t, dirClient)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.externalStore.messages["P1"] = []entity.Message{message("m1", "P1", "P1", base, false)}
	require.NoError(t, f.uc.RefreshAll(context.Background()))

	poller := NewFreshnessPoller(f.uc, 10*time.Millisecond)
	poller.Watch("P1")
	defer poller.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(f.externalStore.calls()) > 1 { // beyond the initial refresh
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Greater(t, len(f.externalStore.calls()), 1)

	activeID, _ := poller.Active()
	assert.Equal(t, "P1", activeID)
}

func TestPollerStopCancelsLoop(t *testing.T) {
	dirClient := &stubDirectoryClient{partners: []entity.Entity{partnerEntity("P1", "Goldsmith & Co")}}
	f := newFixture(t, dirClient)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.externalStore.messages["P1"] = []entity.Message{message("m1", "P1", "P1", base, false)}
	require.NoError(t, f.uc.RefreshAll(context.Background()))

	poller := NewFreshnessPoller(f.uc, 10*time.Millisecond)
	poller.Watch("P1")
	time.Sleep(50 * time.Millisecond)
	poller.Stop()

	settled := len(f.externalStore.calls())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, len(f.externalStore.calls()))

	activeID, state := poller.Active()
	assert.Empty(t, activeID)
	assert.Equal(t, PollIdle, state)
}

func TestPollerSwallowsFetchErrors(t *testing.T) {
	dirClient := &stubDirectoryClient{partners: []entity.Entity{partnerEntity("P1", "Goldsmith & Co")}}
	f := newFixture(t, dirClient)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.externalStore.messages["P1"] = []entity.Message{message("m1", "P1", "P1", base, false)}
	require.NoError(t, f.uc.RefreshAll(context.Background()))

	f.externalStore.fetchErr["P1"] = errors.FetchNetwork("flaky backend", nil)

	poller := NewFreshnessPoller(f.uc, 10*time.Millisecond)
	poller.Watch("P1")
	defer poller.Stop()

	time.Sleep(60 * time.Millisecond)

	// The timer keeps ticking through failures and state settles back to idle.
	calls := len(f.externalStore.calls())
	assert.Greater(t, calls, 2)

	conversation, err := f.uc.GetByID("P1")
	require.NoError(t, err)
	assert.Len(t, conversation.Messages, 1)
}
