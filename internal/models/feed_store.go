package models

import (
	"fmt"
	"strings"
	"time"
)

const DefaultViralThreshold = 5

// PostOrder decides where new posts land in the feed.
type PostOrder string

const (
	PostOrderAppend  PostOrder = "append"
	PostOrderPrepend PostOrder = "prepend"
)

// UserLookup resolves an author or liker by username. Posts and comments only
// keep usernames, never the records themselves.
type UserLookup interface {
	Get(username string) (*User, bool)
}

type FeedOptions struct {
	ViralThreshold     int
	PostOrder          PostOrder
	AllowGuestComments bool
	PublicURL          string
}

// FeedStore holds posts and their comments. Like IdentityStore it is not safe
// for concurrent use.
type FeedStore struct {
	posts      []*Post
	byID       map[int64]*Post
	comments   map[int64]*Comment
	lastPostID int64
	commentSeq int64
	catalog    *PreCommentCatalog
	users      UserLookup
	opts       FeedOptions
	now        func() time.Time
}

func NewFeedStore(users UserLookup, catalog *PreCommentCatalog, opts FeedOptions) *FeedStore {
	if opts.ViralThreshold <= 0 {
		opts.ViralThreshold = DefaultViralThreshold
	}
	if opts.PostOrder != PostOrderPrepend {
		opts.PostOrder = PostOrderAppend
	}
	if catalog == nil {
		catalog = NewPreCommentCatalog(nil)
	}
	return &FeedStore{
		posts:    make([]*Post, 0),
		byID:     make(map[int64]*Post),
		comments: make(map[int64]*Comment),
		catalog:  catalog,
		users:    users,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *FeedStore) CreatePost(author, text, mediaURL string) (*Post, error) {
	if _, err := s.member(author, "create a post"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" && strings.TrimSpace(mediaURL) == "" {
		return nil, newError(KindValidation, "a post needs text or media")
	}

	now := s.timestamp()
	p := &Post{
		ID:        s.nextPostID(now),
		Author:    author,
		Text:      text,
		MediaURL:  mediaURL,
		Likes:     NewLikeSet(),
		Comments:  make([]*Comment, 0),
		CreatedAt: now,
	}
	if s.opts.PostOrder == PostOrderPrepend {
		s.posts = append([]*Post{p}, s.posts...)
	} else {
		s.posts = append(s.posts, p)
	}
	s.byID[p.ID] = p
	return p.clone(), nil
}

// nextPostID uses the creation time in milliseconds, bumped past the last
// issued id so two posts in the same millisecond never collide.
func (s *FeedStore) nextPostID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastPostID {
		id = s.lastPostID + 1
	}
	s.lastPostID = id
	return id
}

func (s *FeedStore) ToggleLike(postID int64, username string) (int, error) {
	p, ok := s.byID[postID]
	if !ok {
		return 0, newError(KindNotFound, "post %d not found", postID)
	}
	if _, err := s.member(username, "like a post"); err != nil {
		return 0, err
	}
	p.Likes.Toggle(username)
	return p.Likes.Len(), nil
}

func (s *FeedStore) ShareLink(postID int64) (string, error) {
	if _, ok := s.byID[postID]; !ok {
		return "", newError(KindNotFound, "post %d not found", postID)
	}
	return fmt.Sprintf("%s/posts/%d", strings.TrimRight(s.opts.PublicURL, "/"), postID), nil
}

// CreateComment prefers free text; with empty text it copies the catalog
// entry at preID. A negative preID means none was chosen.
func (s *FeedStore) CreateComment(postID int64, author, text string, preID int) (*Comment, error) {
	p, ok := s.byID[postID]
	if !ok {
		return nil, newError(KindNotFound, "post %d not found", postID)
	}
	u, ok := s.users.Get(author)
	if !ok {
		return nil, newError(KindNotFound, "user %q not found", author)
	}
	if u.IsGuest() && !s.opts.AllowGuestComments {
		return nil, newError(KindPermission, "guests cannot comment")
	}

	c := &Comment{
		Author: author,
		Likes:  NewLikeSet(),
	}
	if strings.TrimSpace(text) != "" {
		c.Text = text
	} else if pre, ok := s.catalog.Get(preID); ok {
		c.Text = pre
		c.IsPre = true
	} else {
		return nil, newError(KindValidation, "comment is empty")
	}

	s.commentSeq++
	c.ID = s.commentSeq
	c.CreatedAt = s.timestamp()
	p.Comments = append(p.Comments, c)
	s.comments[c.ID] = c
	return c.clone(), nil
}

// ToggleCommentLike toggles username's like and promotes the comment to viral
// once it reaches the threshold. The flag is never cleared.
func (s *FeedStore) ToggleCommentLike(commentID int64, username string) (int, bool, error) {
	c, ok := s.comments[commentID]
	if !ok {
		return 0, false, newError(KindNotFound, "comment %d not found", commentID)
	}
	if _, err := s.member(username, "like a comment"); err != nil {
		return 0, false, err
	}
	c.Likes.Toggle(username)
	if c.Likes.Len() >= s.opts.ViralThreshold {
		c.IsViral = true
	}
	return c.Likes.Len(), c.IsViral, nil
}

func (s *FeedStore) GetPost(postID int64) (*Post, bool) {
	p, ok := s.byID[postID]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

func (s *FeedStore) ListPosts() []*Post {
	out := make([]*Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = p.clone()
	}
	return out
}

// DeletePost removes a post and its comments. Only the author may do it.
// Comment ids are not reused afterwards.
func (s *FeedStore) DeletePost(postID int64, username string) error {
	p, ok := s.byID[postID]
	if !ok {
		return newError(KindNotFound, "post %d not found", postID)
	}
	if _, err := s.member(username, "delete a post"); err != nil {
		return err
	}
	if p.Author != username {
		return newError(KindPermission, "only the author can delete post %d", postID)
	}

	for i, candidate := range s.posts {
		if candidate.ID == postID {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			break
		}
	}
	delete(s.byID, postID)
	for _, c := range p.Comments {
		delete(s.comments, c.ID)
	}
	return nil
}

func (s *FeedStore) Catalog() *PreCommentCatalog {
	return s.catalog
}

// Counts returns the number of posts and comments.
func (s *FeedStore) Counts() (int, int) {
	return len(s.posts), len(s.comments)
}

func (s *FeedStore) CommentSeq() int64 {
	return s.commentSeq
}

// Export returns deep copies of all posts in feed order.
func (s *FeedStore) Export() []*Post {
	return s.ListPosts()
}

// Load replaces all posts and rebuilds the id indexes. The comment sequence
// resumes after the larger of commentSeq and the highest stored comment id.
func (s *FeedStore) Load(posts []*Post, commentSeq int64, catalog *PreCommentCatalog) {
	s.posts = make([]*Post, 0, len(posts))
	s.byID = make(map[int64]*Post, len(posts))
	s.comments = make(map[int64]*Comment)
	s.lastPostID = 0
	s.commentSeq = commentSeq
	if catalog != nil {
		s.catalog = catalog
	}

	for _, p := range posts {
		if p == nil {
			continue
		}
		cp := p.clone()
		s.posts = append(s.posts, cp)
		s.byID[cp.ID] = cp
		if cp.ID > s.lastPostID {
			s.lastPostID = cp.ID
		}
		for _, c := range cp.Comments {
			s.comments[c.ID] = c
			if c.ID > s.commentSeq {
				s.commentSeq = c.ID
			}
		}
	}
}

// member resolves username and rejects guests.
func (s *FeedStore) member(username, action string) (*User, error) {
	u, ok := s.users.Get(username)
	if !ok {
		return nil, newError(KindNotFound, "user %q not found", username)
	}
	if u.IsGuest() {
		return nil, newError(KindPermission, "guests cannot %s", action)
	}
	return u, nil
}

func (s *FeedStore) timestamp() time.Time {
	return s.now().UTC()
}
