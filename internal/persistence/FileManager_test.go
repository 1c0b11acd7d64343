package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"postit/internal/models"
	"postit/internal/services"
	"postit/internal/structures"
	"postit/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceConfig() *structures.Config {
	return &structures.Config{
		Feed: structures.FeedConfig{
			ViralThreshold: 5,
			PostOrder:      "append",
			PublicURL:      "http://postit.local",
		},
	}
}

func newService() services.SocialServiceInterface {
	return services.NewSocialService(serviceConfig(), testutil.PlainHasher{})
}

// populate builds a small but complete state: users, a guest, a post with a
// liked pre-comment.
func populate(t *testing.T, svc services.SocialServiceInterface) {
	t.Helper()
	_, err := svc.Signup("alice", "pw1")
	require.NoError(t, err)
	_, err = svc.Signup("bob", "pw2")
	require.NoError(t, err)
	_, err = svc.UpdateProfile("alice", "hello there", "/a.png", "/b.png")
	require.NoError(t, err)
	svc.GuestLogin()

	post, err := svc.CreatePost("alice", "first post", "/m.png")
	require.NoError(t, err)
	_, err = svc.ToggleLike("bob", post.ID)
	require.NoError(t, err)
	c, err := svc.CreateComment("bob", post.ID, "", 1)
	require.NoError(t, err)
	_, _, err = svc.ToggleCommentLike("alice", c.ID)
	require.NoError(t, err)
}

func TestFileManager_SaveToFile_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")

	svc := newService()
	populate(t, svc)
	fm := NewFileManager(&testutil.MockCompressor{}, svc, &testutil.MockLogger{})

	require.NoError(t, fm.SaveToFile(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)

	svc := newService()
	populate(t, svc)
	want := svc.GetSnapshot()

	fm := NewFileManager(compressor, svc, &testutil.MockLogger{})
	require.NoError(t, fm.SaveToFile(path))

	restored := newService()
	loaded, err := NewFileManager(compressor, restored, &testutil.MockLogger{}).LoadFromFile(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.False(t, loaded.SavedAt.IsZero())

	restored.Restore(loaded)
	assert.Equal(t, want, restored.GetSnapshot())
}

func TestFileManager_SavedAtIsSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	fm := NewFileManager(&testutil.MockCompressor{}, newService(), &testutil.MockLogger{})
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	fm.now = func() time.Time { return at }

	require.NoError(t, fm.SaveToFile(path))
	loaded, err := fm.LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, at.Equal(loaded.SavedAt))
}

func TestFileManager_SaveToFile_CompressError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	comp := &testutil.MockCompressor{
		CompressFn: func([]byte) ([]byte, error) { return nil, errors.New("compress error") },
	}
	fm := NewFileManager(comp, newService(), &testutil.MockLogger{})

	assert.Error(t, fm.SaveToFile(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_SaveToFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "postit.db")
	fm := NewFileManager(&testutil.MockCompressor{}, newService(), &testutil.MockLogger{})

	require.NoError(t, fm.SaveToFile(path))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileManager_SaveToFile_ParentIsFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0644))

	fm := NewFileManager(&testutil.MockCompressor{}, newService(), &testutil.MockLogger{})
	assert.Error(t, fm.SaveToFile(filepath.Join(parent, "postit.db")))
}

func TestFileManager_SaveKeepsPreviousFileOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	comp := &testutil.MockCompressor{
		CompressFn: func([]byte) ([]byte, error) { return nil, errors.New("compress error") },
	}
	fm := NewFileManager(comp, newService(), &testutil.MockLogger{})
	require.Error(t, fm.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestFileManager_LoadFromFile_FileNotExist(t *testing.T) {
	fm := NewFileManager(&testutil.MockCompressor{}, newService(), &testutil.MockLogger{})
	snapshot, err := fm.LoadFromFile("/nonexistent/path/postit.db")
	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestFileManager_LoadFromFile_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	fm := NewFileManager(compressor, newService(), &testutil.MockLogger{})

	_, err = fm.LoadFromFile(path)
	assert.Error(t, err)
}

func TestFileManager_LoadFromFile_TruncatedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"users":{`), 0644))

	fm := NewFileManager(&testutil.MockCompressor{}, newService(), &testutil.MockLogger{})
	_, err := fm.LoadFromFile(path)
	assert.Error(t, err)
}

func TestFileManager_LoadFromFile_NewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99}`), 0644))

	fm := NewFileManager(&testutil.MockCompressor{}, newService(), &testutil.MockLogger{})
	_, err := fm.LoadFromFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFileManager_LoadFromFile_PlainJSONWithZstdEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	svc := newService()
	populate(t, svc)
	require.NoError(t, NewFileManager(PlainCompression{}, svc, &testutil.MockLogger{}).SaveToFile(path))

	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	loaded, err := NewFileManager(compressor, newService(), &testutil.MockLogger{}).LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Users, 3)
	assert.Len(t, loaded.Posts, 1)
}

func TestFileManager_LoadFromFile_LegacyDocumentMigrated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postit.db")
	legacy := `{
		"users": {"alice": {"password_hash": "plain:pw1"}},
		"posts": [{"id": 1, "author": "alice", "text": "hi", "likes": ["alice"],
			"comments": [{"id": 4, "author": "alice", "text": "c"}]}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	logger := &testutil.MockLogger{}
	svc := newService()
	fm := NewFileManager(&testutil.MockCompressor{}, svc, logger)

	loaded, err := fm.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, models.SnapshotVersion, loaded.Version)
	assert.Equal(t, models.RoleUser, loaded.Users["alice"].Role)
	assert.Equal(t, "alice", loaded.Users["alice"].Username)
	assert.Equal(t, models.DefaultPreComments, loaded.PreComments)
	assert.NotNil(t, loaded.Posts[0].Comments[0].Likes)
	assert.Equal(t, 1, logger.Count("warn"))

	svc.Restore(loaded)
	c, err := svc.CreateComment("alice", 1, "next", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.ID)
}

func TestFileManager_Close(t *testing.T) {
	comp := &testutil.MockCompressor{}
	NewFileManager(comp, newService(), &testutil.MockLogger{}).Close()
	assert.True(t, comp.Closed)
}
