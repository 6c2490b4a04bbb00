package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGroupKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, GroupKey([]string{"a", "c", "b"}), GroupKey([]string{"b", "a", "c"}))
	assert.Equal(t, "a+b+c", GroupKey([]string{"c", "a", "b"}))
}

func TestGroupKeyDeduplicates(t *testing.T) {
	assert.Equal(t, "a+b", GroupKey([]string{"a", "b", "a", "", "b"}))
}

func TestIsVisibleRequiresAMessage(t *testing.T) {
	conversation := Conversation{ID: "prov", Subject: "Ava, Ben"}
	assert.False(t, conversation.IsVisible())

	conversation.Messages = []Message{{ID: "m1", CreatedAt: time.Now()}}
	assert.True(t, conversation.IsVisible())
}

func TestMemberIDs(t *testing.T) {
	conversation := Conversation{Members: []Entity{{ID: "b"}, {ID: "a"}}}
	assert.Equal(t, []string{"b", "a"}, conversation.MemberIDs())
	assert.Equal(t, []string{"a", "b"}, NormalizeMemberIDs(conversation.MemberIDs()))
}
