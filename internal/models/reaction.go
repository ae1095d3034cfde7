package models

import "sort"

// ReactionSet maps an emoji to the participants who reacted with it.
// A participant holds at most one reaction per emoji but may use several
// distinct emoji on the same message.
type ReactionSet map[string][]string

// ReactionCount is one emoji with its reacting participants.
type ReactionCount struct {
	Emoji string
	Count int
	Users []string
}

// Has reports whether userID reacted with emoji.
func (r ReactionSet) Has(emoji, userID string) bool {
	for _, u := range r[emoji] {
		if u == userID {
			return true
		}
	}
	return false
}

// Count returns the number of participants that reacted with emoji.
func (r ReactionSet) Count(emoji string) int {
	return len(r[emoji])
}

// Toggle adds the reaction when absent and removes it otherwise. It returns
// true when the reaction was added.
func (r *ReactionSet) Toggle(emoji, userID string) bool {
	if *r == nil {
		*r = ReactionSet{}
	}
	set := *r
	users := set[emoji]
	for i, u := range users {
		if u == userID {
			users = append(users[:i:i], users[i+1:]...)
			if len(users) == 0 {
				delete(set, emoji)
			} else {
				set[emoji] = users
			}
			return false
		}
	}
	set[emoji] = append(users, userID)
	return true
}

// Top returns up to n emoji ordered by count, ties broken by emoji.
func (r ReactionSet) Top(n int) []ReactionCount {
	out := make([]ReactionCount, 0, len(r))
	for emoji, users := range r {
		if len(users) == 0 {
			continue
		}
		out = append(out, ReactionCount{Emoji: emoji, Count: len(users), Users: append([]string(nil), users...)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emoji < out[j].Emoji
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Clone returns a deep copy; the copy of a nil set is nil.
func (r ReactionSet) Clone() ReactionSet {
	if r == nil {
		return nil
	}
	out := make(ReactionSet, len(r))
	for emoji, users := range r {
		out[emoji] = append([]string(nil), users...)
	}
	return out
}

// reactionsFromWire copies backend reactions, dropping empty and repeated
// participant ids and emoji nobody holds.
func reactionsFromWire(in map[string][]string) ReactionSet {
	out := make(ReactionSet, len(in))
	for emoji, users := range in {
		seen := make(map[string]struct{}, len(users))
		kept := make([]string, 0, len(users))
		for _, u := range users {
			if _, dup := seen[u]; dup || u == "" {
				continue
			}
			seen[u] = struct{}{}
			kept = append(kept, u)
		}
		if len(kept) > 0 {
			out[emoji] = kept
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
