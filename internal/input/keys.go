package input

import "strings"

// Key is a logical key the trainer reacts to.
type Key uint8

const (
	KeyEscape Key = iota
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	numKeys
)

var keyNames = [numKeys]string{"esc", "tab", "up", "down", "left", "right"}

func (k Key) String() string {
	if k < numKeys {
		return keyNames[k]
	}
	return "?"
}

// KeySet is the set of keys held during one poll.
type KeySet uint16

// Keys builds a set from individual keys.
func Keys(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s = s.With(k)
	}
	return s
}

func (s KeySet) With(k Key) KeySet    { return s | 1<<k }
func (s KeySet) Without(k Key) KeySet { return s &^ (1 << k) }
func (s KeySet) Has(k Key) bool       { return s&(1<<k) != 0 }
func (s KeySet) Empty() bool          { return s == 0 }

// Union merges two sets.
func (s KeySet) Union(o KeySet) KeySet { return s | o }

func (s KeySet) String() string {
	var names []string
	for k := Key(0); k < numKeys; k++ {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}
