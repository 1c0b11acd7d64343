package models

import (
	"sort"

	json "github.com/goccy/go-json"
)

// LikeSet holds the usernames that liked a post or comment. A username is
// present at most once. It serializes as a sorted list.
type LikeSet map[string]struct{}

func NewLikeSet(usernames ...string) LikeSet {
	s := make(LikeSet, len(usernames))
	for _, u := range usernames {
		s[u] = struct{}{}
	}
	return s
}

// Toggle removes username if present, adds it otherwise, and reports whether
// username is present afterwards.
func (s LikeSet) Toggle(username string) bool {
	if _, ok := s[username]; ok {
		delete(s, username)
		return false
	}
	s[username] = struct{}{}
	return true
}

func (s LikeSet) Has(username string) bool {
	_, ok := s[username]
	return ok
}

func (s LikeSet) Len() int {
	return len(s)
}

func (s LikeSet) Members() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (s LikeSet) clone() LikeSet {
	c := make(LikeSet, len(s))
	for u := range s {
		c[u] = struct{}{}
	}
	return c
}

func (s LikeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Members())
}

func (s *LikeSet) UnmarshalJSON(data []byte) error {
	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*s = NewLikeSet(members...)
	return nil
}
