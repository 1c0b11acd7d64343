package models

import "time"

const SnapshotVersion = 1

// Snapshot is the persisted form of the whole social state.
// Documents written before versioning carry version 0 and are upgraded by
// Normalize.
type Snapshot struct {
	Version     int              `json:"version"`
	Users       map[string]*User `json:"users"`
	Posts       []*Post          `json:"posts"`
	PreComments []string         `json:"pre_comments"`
	CommentSeq  int64            `json:"comment_seq"`
	SavedAt     time.Time        `json:"saved_at"`
}

func NewSnapshot(preComments []string) *Snapshot {
	return &Snapshot{
		Version:     SnapshotVersion,
		Users:       make(map[string]*User),
		Posts:       make([]*Post, 0),
		PreComments: NewPreCommentCatalog(preComments).Entries(),
	}
}

// Normalize fills the fields a legacy or hand-edited document may lack and
// reports whether anything had to be migrated.
func (s *Snapshot) Normalize(defaultPreComments []string) bool {
	migrated := s.Version < SnapshotVersion
	s.Version = SnapshotVersion

	if s.Users == nil {
		s.Users = make(map[string]*User)
	}
	for name, u := range s.Users {
		if u == nil {
			delete(s.Users, name)
			migrated = true
			continue
		}
		if u.Username != name {
			u.Username = name
			migrated = true
		}
		if u.Role == "" {
			u.Role = RoleUser
			migrated = true
		}
	}

	posts := make([]*Post, 0, len(s.Posts))
	for _, p := range s.Posts {
		if p == nil {
			migrated = true
			continue
		}
		posts = append(posts, p)
	}
	s.Posts = posts
	for _, p := range s.Posts {
		if p.Likes == nil {
			p.Likes = NewLikeSet()
		}
		comments := make([]*Comment, 0, len(p.Comments))
		for _, c := range p.Comments {
			if c == nil {
				migrated = true
				continue
			}
			if c.Likes == nil {
				c.Likes = NewLikeSet()
			}
			comments = append(comments, c)
		}
		p.Comments = comments
	}

	if len(s.PreComments) == 0 {
		s.PreComments = NewPreCommentCatalog(defaultPreComments).Entries()
		migrated = true
	}
	return migrated
}
