package services

import (
	"postit/internal/models"
	"postit/internal/structures"
	"strings"
	"sync"

	"go.uber.org/atomic"
)

// Persister writes the current state somewhere durable. Failures are the
// persister's to report; the service never fails a mutation because of them.
type Persister interface {
	Persist() error
}

type Stats struct {
	Users    int
	Posts    int
	Comments int
}

type SocialServiceInterface interface {
	Signup(username, password string) (*models.User, error)
	Login(username, password string) (*models.User, error)
	GuestLogin() *models.User
	GetUser(username string) (*models.User, error)
	UpdateProfile(current, desc, avatarURL, bannerURL string) (*models.User, error)

	CreatePost(current, text, mediaURL string) (*models.Post, error)
	DeletePost(current string, postID int64) error
	ToggleLike(current string, postID int64) (int, error)
	ShareLink(postID int64) (string, error)
	CreateComment(current string, postID int64, text string, preID int) (*models.Comment, error)
	ToggleCommentLike(current string, commentID int64) (int, bool, error)
	GetPost(postID int64) (*models.Post, bool)
	ListPosts() []*models.Post
	PreComments() []string

	GetSnapshot() *models.Snapshot
	Restore(snapshot *models.Snapshot)
	SetPersister(p Persister)
	Stats() Stats
	Revision() uint64
}

// SocialService owns the identity and feed stores. One RWMutex guards both:
// every mutation holds it exclusively, reads and snapshot capture share it.
type SocialService struct {
	mu         sync.RWMutex
	identities *models.IdentityStore
	feed       *models.FeedStore
	persister  Persister
	revision   atomic.Uint64
}

func NewSocialService(conf *structures.Config, hasher models.PasswordHasher) SocialServiceInterface {
	identities := models.NewIdentityStore(hasher)
	feed := models.NewFeedStore(identities, models.NewPreCommentCatalog(conf.Feed.PreComments), feedOptions(conf))
	return &SocialService{
		identities: identities,
		feed:       feed,
	}
}

func feedOptions(conf *structures.Config) models.FeedOptions {
	return models.FeedOptions{
		ViralThreshold:     conf.Feed.ViralThreshold,
		PostOrder:          models.PostOrder(conf.Feed.PostOrder),
		AllowGuestComments: conf.Feed.AllowGuestComments,
		PublicURL:          conf.Feed.PublicURL,
	}
}

// mutate runs fn under the write lock, then saves outside of it when fn
// succeeded.
func (ss *SocialService) mutate(fn func() error) error {
	ss.mu.Lock()
	err := fn()
	if err == nil {
		ss.revision.Inc()
	}
	p := ss.persister
	ss.mu.Unlock()

	if err == nil && p != nil {
		_ = p.Persist()
	}
	return err
}

// session resolves the caller. Must be called with ss.mu held.
func (ss *SocialService) session(current string) (*models.User, error) {
	if strings.TrimSpace(current) == "" {
		return nil, &models.Error{Kind: models.KindAuth, Msg: "login required"}
	}
	u, ok := ss.identities.Get(current)
	if !ok {
		return nil, &models.Error{Kind: models.KindAuth, Msg: "unknown session user"}
	}
	return u, nil
}

func (ss *SocialService) Signup(username, password string) (*models.User, error) {
	var u *models.User
	err := ss.mutate(func() (err error) {
		u, err = ss.identities.Signup(username, password)
		return err
	})
	return u, err
}

// Login does not change state, so it triggers no save.
func (ss *SocialService) Login(username, password string) (*models.User, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.identities.Login(username, password)
}

func (ss *SocialService) GuestLogin() *models.User {
	var u *models.User
	_ = ss.mutate(func() error {
		u = ss.identities.GuestLogin()
		return nil
	})
	return u
}

func (ss *SocialService) GetUser(username string) (*models.User, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	u, ok := ss.identities.Get(username)
	if !ok {
		return nil, &models.Error{Kind: models.KindNotFound, Msg: "user " + username + " not found"}
	}
	return u, nil
}

func (ss *SocialService) UpdateProfile(current, desc, avatarURL, bannerURL string) (*models.User, error) {
	var u *models.User
	err := ss.mutate(func() error {
		if _, err := ss.session(current); err != nil {
			return err
		}
		var err error
		u, err = ss.identities.UpdateProfile(current, desc, avatarURL, bannerURL)
		return err
	})
	return u, err
}

func (ss *SocialService) CreatePost(current, text, mediaURL string) (*models.Post, error) {
	var p *models.Post
	err := ss.mutate(func() error {
		if _, err := ss.session(current); err != nil {
			return err
		}
		var err error
		p, err = ss.feed.CreatePost(current, text, mediaURL)
		return err
	})
	return p, err
}

func (ss *SocialService) DeletePost(current string, postID int64) error {
	return ss.mutate(func() error {
		if _, err := ss.session(current); err != nil {
			return err
		}
		return ss.feed.DeletePost(postID, current)
	})
}

func (ss *SocialService) ToggleLike(current string, postID int64) (int, error) {
	var n int
	err := ss.mutate(func() error {
		if _, err := ss.session(current); err != nil {
			return err
		}
		var err error
		n, err = ss.feed.ToggleLike(postID, current)
		return err
	})
	return n, err
}

func (ss *SocialService) ShareLink(postID int64) (string, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.feed.ShareLink(postID)
}

func (ss *SocialService) CreateComment(current string, postID int64, text string, preID int) (*models.Comment, error) {
	var c *models.Comment
	err := ss.mutate(func() error {
		if _, err := ss.session(current); err != nil {
			return err
		}
		var err error
		c, err = ss.feed.CreateComment(postID, current, text, preID)
		return err
	})
	return c, err
}

func (ss *SocialService) ToggleCommentLike(current string, commentID int64) (int, bool, error) {
	var (
		n     int
		viral bool
	)
	err := ss.mutate(func() error {
		if _, err := ss.session(current); err != nil {
			return err
		}
		var err error
		n, viral, err = ss.feed.ToggleCommentLike(commentID, current)
		return err
	})
	return n, viral, err
}

func (ss *SocialService) GetPost(postID int64) (*models.Post, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.feed.GetPost(postID)
}

func (ss *SocialService) ListPosts() []*models.Post {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.feed.ListPosts()
}

func (ss *SocialService) PreComments() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.feed.Catalog().Entries()
}

// GetSnapshot returns a deep copy of the whole state, consistent as of a
// single point between mutations.
func (ss *SocialService) GetSnapshot() *models.Snapshot {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return &models.Snapshot{
		Version:     models.SnapshotVersion,
		Users:       ss.identities.Export(),
		Posts:       ss.feed.Export(),
		PreComments: ss.feed.Catalog().Entries(),
		CommentSeq:  ss.feed.CommentSeq(),
	}
}

// Restore replaces the whole state with snapshot. A snapshot without a
// catalog keeps the current one.
func (ss *SocialService) Restore(snapshot *models.Snapshot) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var catalog *models.PreCommentCatalog
	if len(snapshot.PreComments) > 0 {
		catalog = models.NewPreCommentCatalog(snapshot.PreComments)
	}
	ss.identities.Load(snapshot.Users)
	ss.feed.Load(snapshot.Posts, snapshot.CommentSeq, catalog)
	ss.revision.Inc()
}

func (ss *SocialService) SetPersister(p Persister) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.persister = p
}

func (ss *SocialService) Stats() Stats {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	posts, comments := ss.feed.Counts()
	return Stats{
		Users:    ss.identities.Len(),
		Posts:    posts,
		Comments: comments,
	}
}

// Revision increases with every successful mutation.
func (ss *SocialService) Revision() uint64 {
	return ss.revision.Load()
}
