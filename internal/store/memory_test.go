package store_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankadesign/iis-site-manager/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemorySession_CommitPublishesChanges(t *testing.T) {
	st := store.NewMemoryStore(testLogger())

	sess, err := st.OpenSession()
	require.NoError(t, err)
	s, err := sess.AddSite("contoso.local", "*:80:contoso.local", "/srv/Website")
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ID)
	s.TraceEnabled = true
	_, err = sess.AddPool("contoso.local_nvQuickSite", "v4.0")
	require.NoError(t, err)
	require.NoError(t, sess.Commit())
	require.NoError(t, sess.Close())

	check, err := st.OpenSession()
	require.NoError(t, err)
	defer check.Close()
	require.Len(t, check.Sites(), 1)
	assert.True(t, check.Sites()[0].TraceEnabled)
	require.Len(t, check.Pools(), 1)
}

func TestMemorySession_CloseWithoutCommitDiscards(t *testing.T) {
	st := store.NewMemoryStore(testLogger())

	sess, err := st.OpenSession()
	require.NoError(t, err)
	_, err = sess.AddSite("contoso.local", "*:80:contoso.local", "/srv/Website")
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	check, err := st.OpenSession()
	require.NoError(t, err)
	defer check.Close()
	assert.Empty(t, check.Sites())
}

func TestMemorySession_IDsAssignedBeforeCommit(t *testing.T) {
	st := store.NewMemoryStore(testLogger())

	sess, err := st.OpenSession()
	require.NoError(t, err)
	defer sess.Close()

	a, err := sess.AddSite("a.local", "*:80:a.local", "/srv/a")
	require.NoError(t, err)
	b, err := sess.AddSite("b.local", "*:80:b.local", "/srv/b")
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Greater(t, b.ID, a.ID)
}

func TestMemorySession_DuplicateBindingRejected(t *testing.T) {
	st := store.NewMemoryStore(testLogger())

	sess, err := st.OpenSession()
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.AddSite("contoso.local", "*:80:contoso.local", "/srv/a")
	require.NoError(t, err)
	_, err = sess.AddSite("other", "*:80:contoso.local", "/srv/b")
	assert.Error(t, err)
}

func TestMemorySession_RemoveUnknownObjects(t *testing.T) {
	st := store.NewMemoryStore(testLogger())

	sess, err := st.OpenSession()
	require.NoError(t, err)
	defer sess.Close()

	assert.Error(t, sess.RemoveSite(&store.Site{Name: "ghost"}))
	assert.Error(t, sess.RemovePool(&store.Pool{Name: "ghost"}))
}

func TestMemoryStore_FailCommitIsHostError(t *testing.T) {
	st := store.NewMemoryStore(testLogger())
	st.FailCommit = true

	sess, err := st.OpenSession()
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.AddSite("contoso.local", "*:80:contoso.local", "/srv/a")
	require.NoError(t, err)

	err = sess.Commit()
	require.Error(t, err)
	var hostErr *store.HostError
	assert.ErrorAs(t, err, &hostErr)

	// The injected failure is single-shot.
	assert.False(t, st.FailCommit)
}
