package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemdesk/internal/domain/entity"
)

func newViewFixture(t *testing.T) (*fixture, *ViewUseCase) {
	t.Helper()

	dirClient := &stubDirectoryClient{
		partners: []entity.Entity{
			{ID: "P1", DisplayName: "Goldsmith & Co", Kind: entity.KindPartner, Status: entity.StatusActive, Specialties: []string{"engraving"}},
			{ID: "P2", DisplayName: "Stone Traders", Kind: entity.KindPartner, Status: entity.StatusActive, Specialties: []string{"gem sourcing"}},
		},
		teamMembers: []entity.Entity{
			teamEntity("T1", "Ava Chen"),
			teamEntity("T2", "Ben Osei"),
		},
	}
	f := newFixture(t, dirClient)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.externalStore.messages["P1"] = []entity.Message{message("m1", "P1", "P1", base, false)}
	f.externalStore.messages["P2"] = []entity.Message{message("m2", "P2", "P2", base.Add(time.Minute), false)}
	f.internalStore.messages["T1"] = []entity.Message{message("m3", "T1", "T1", base.Add(2*time.Minute), false)}
	require.NoError(t, f.uc.RefreshAll(context.Background()))

	poller := NewFreshnessPoller(f.uc, time.Hour)
	view := NewViewUseCase(f.uc, poller)
	t.Cleanup(poller.Stop)
	return f, view
}

func TestVisibleConversationsKindFilter(t *testing.T) {
	_, view := newViewFixture(t)

	kind := entity.ConversationExternal
	_, err := view.Update(context.Background(), ViewUpdateInput{KindFilter: &kind})
	require.NoError(t, err)

	visible := view.VisibleConversations()
	require.Len(t, visible, 2)
	for _, conversation := range visible {
		assert.Equal(t, entity.ConversationExternal, conversation.Kind)
	}
}

func TestVisibleConversationsSearchByNameAndSpecialty(t *testing.T) {
	_, view := newViewFixture(t)

	query := "stone"
	_, err := view.Update(context.Background(), ViewUpdateInput{SearchQuery: &query})
	require.NoError(t, err)

	visible := view.VisibleConversations()
	require.Len(t, visible, 1)
	assert.Equal(t, "P2", visible[0].ID)

	// Specialty matches only apply to external conversations.
	query = "engraving"
	_, err = view.Update(context.Background(), ViewUpdateInput{SearchQuery: &query})
	require.NoError(t, err)

	visible = view.VisibleConversations()
	require.Len(t, visible, 1)
	assert.Equal(t, "P1", visible[0].ID)
}

func TestVisibleConversationsSingleEntityFilter(t *testing.T) {
	_, view := newViewFixture(t)

	_, err := view.Update(context.Background(), ViewUpdateInput{EntityFilter: []string{"T1"}})
	require.NoError(t, err)

	visible := view.VisibleConversations()
	require.Len(t, visible, 1)
	assert.Equal(t, "T1", visible[0].ID)
}

func TestMultiSelectEntityFilterResolvesGroup(t *testing.T) {
	f, view := newViewFixture(t)

	kind := entity.ConversationInternal
	state, err := view.Update(context.Background(), ViewUpdateInput{
		KindFilter:   &kind,
		EntityFilter: []string{"T2", "T1"},
	})
	require.NoError(t, err)

	expectedID := entity.GroupKey([]string{"T1", "T2"})
	assert.Equal(t, expectedID, state.ActiveConversationID)

	conversation, err := f.uc.GetByID(expectedID)
	require.NoError(t, err)
	assert.Equal(t, "Ava Chen, Ben Osei", conversation.Subject)
	assert.False(t, conversation.IsVisible())
}

func TestSetActiveStartsAndClearStopsPolling(t *testing.T) {
	_, view := newViewFixture(t)

	active := "P1"
	state, err := view.Update(context.Background(), ViewUpdateInput{ActiveConversationID: &active})
	require.NoError(t, err)
	assert.Equal(t, "P1", state.ActiveConversationID)

	cleared := ""
	state, err = view.Update(context.Background(), ViewUpdateInput{ActiveConversationID: &cleared})
	require.NoError(t, err)
	assert.Empty(t, state.ActiveConversationID)
	assert.Equal(t, PollIdle, state.PollState)
}

func TestSetActiveUnknownConversationFails(t *testing.T) {
	_, view := newViewFixture(t)

	active := "missing"
	_, err := view.Update(context.Background(), ViewUpdateInput{ActiveConversationID: &active})
	assert.Error(t, err)
}
