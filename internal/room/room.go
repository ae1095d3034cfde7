// Package room derives the identity of the two-party chat room shared by a
// candidate and a recruiter.
package room

import (
	"errors"
	"sort"
	"strings"
)

// Separator joins the two participant ids of a room id.
const Separator = "_"

// ErrNotMember is returned by Peer when self is not part of the room id.
var ErrNotMember = errors.New("participant is not a member of the room")

// ID returns the room id of participants a and b. It does not depend on the
// argument order, so both sides compute the same id without coordination.
func ID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, Separator)
}

// Peer returns the other participant of roomID as seen from self.
func Peer(roomID, self string) (string, error) {
	a, b, ok := split(roomID, self)
	if !ok {
		return "", ErrNotMember
	}
	if a == self {
		return b, nil
	}
	return a, nil
}

// split cuts roomID at the separator adjacent to self. Participant ids may
// themselves contain the separator, so the cut is anchored on self.
func split(roomID, self string) (string, string, bool) {
	if self == "" {
		return "", "", false
	}
	if rest, ok := strings.CutPrefix(roomID, self+Separator); ok && rest != "" {
		return self, rest, true
	}
	if rest, ok := strings.CutSuffix(roomID, Separator+self); ok && rest != "" {
		return rest, self, true
	}
	return "", "", false
}
