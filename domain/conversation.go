package domain

import "fmt"

// Pair is an unordered couple of identities.
// A conversation is every message whose {From, To} equals the pair.
type Pair struct {
	first  Identity
	second Identity
}

// NewPair sorts both identities so that NewPair(a, b) == NewPair(b, a).
func NewPair(a, b Identity) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{first: a, second: b}
}

func (p Pair) Members() (Identity, Identity) {
	return p.first, p.second
}

// Contains returns true when the message was exchanged between the two members.
func (p Pair) Contains(m Message) bool {
	return (m.From == p.first && m.To == p.second) ||
		(m.From == p.second && m.To == p.first)
}

// Key is the canonical form used to prefix storage keys.
// Both lengths are encoded so that a key is never a prefix of another pair's key.
func (p Pair) Key() string {
	return fmt.Sprintf("%d:%d:%s:%s", len(p.first), len(p.second), p.first, p.second)
}
