package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPair_Is_Symmetric(t *testing.T) {
	req := require.New(t)

	req.Equal(NewPair("alice", "bob"), NewPair("bob", "alice"))
	req.Equal(NewPair("alice", "bob").Key(), NewPair("bob", "alice").Key())
}

func TestPair_Contains(t *testing.T) {
	req := require.New(t)
	pair := NewPair("alice", "bob")

	req.True(pair.Contains(Message{From: "alice", To: "bob", Text: "hi"}))
	req.True(pair.Contains(Message{From: "bob", To: "alice", Text: "hello"}))
	req.False(pair.Contains(Message{From: "alice", To: "clara", Text: "hi"}))
	req.False(pair.Contains(Message{From: "alice", To: "alice", Text: "note to self"}))
}

func TestPair_Key_Does_Not_Collide(t *testing.T) {
	req := require.New(t)

	// Given identities containing the separator
	left := NewPair("a:b", "c")
	right := NewPair("a", "b:c")

	// Then both keys stay distinct
	req.NotEqual(left.Key(), right.Key())
}

func TestMessage_HasContent(t *testing.T) {
	req := require.New(t)

	req.True(Message{Text: "hi"}.HasContent())
	req.True(Message{Image: "/chat_images/alice_1.png"}.HasContent())
	req.False(Message{From: "alice", To: "bob"}.HasContent())
}

func TestPair_Key_Is_Not_A_Prefix_Of_Another_Pair(t *testing.T) {
	req := require.New(t)

	short := NewPair("alice", "bob").Key() + ":"
	long := NewPair("alice", "bob:x").Key()

	req.NotContains(long, short)
}
