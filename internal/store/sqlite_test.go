package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankadesign/iis-site-manager/internal/store"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "sites.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteSession_CommitRoundTrip(t *testing.T) {
	st := newSQLiteStore(t)

	sess, err := st.OpenSession()
	require.NoError(t, err)
	s, err := sess.AddSite("contoso.local", "*:80:contoso.local", "/srv/contoso/Website")
	require.NoError(t, err)
	assert.NotZero(t, s.ID)

	s.TraceEnabled = true
	s.TraceDirectory = "/srv/contoso/Logs"
	s.LogDirectory = "/srv/contoso/Logs/W3svc1"
	_, err = sess.AddPool("contoso.local_nvQuickSite", "v4.0")
	require.NoError(t, err)
	s.PoolName = "contoso.local_nvQuickSite"

	require.NoError(t, sess.Commit())
	require.NoError(t, sess.Close())

	check, err := st.OpenSession()
	require.NoError(t, err)
	defer check.Close()

	require.Len(t, check.Sites(), 1)
	got := check.Sites()[0]
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "contoso.local", got.Name)
	assert.Equal(t, "*:80:contoso.local", got.Binding)
	assert.True(t, got.TraceEnabled)
	assert.Equal(t, "/srv/contoso/Logs", got.TraceDirectory)
	assert.Equal(t, "/srv/contoso/Logs/W3svc1", got.LogDirectory)
	assert.Equal(t, "contoso.local_nvQuickSite", got.PoolName)

	require.Len(t, check.Pools(), 1)
	assert.Equal(t, "v4.0", check.Pools()[0].RuntimeVersion)
}

func TestSQLiteSession_CloseWithoutCommitRollsBack(t *testing.T) {
	st := newSQLiteStore(t)

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

func TestSQLiteSession_RemoveSiteAndPool(t *testing.T) {
	st := newSQLiteStore(t)

	seed, err := st.OpenSession()
	require.NoError(t, err)
	_, err = seed.AddSite("contoso.local", "*:80:contoso.local", "/srv/Website")
	require.NoError(t, err)
	_, err = seed.AddPool("contoso.local_nvQuickSite", "v4.0")
	require.NoError(t, err)
	require.NoError(t, seed.Commit())

	sess, err := st.OpenSession()
	require.NoError(t, err)
	require.Len(t, sess.Sites(), 1)
	require.NoError(t, sess.RemoveSite(sess.Sites()[0]))
	require.NoError(t, sess.RemovePool(sess.Pools()[0]))
	require.NoError(t, sess.Commit())

	check, err := st.OpenSession()
	require.NoError(t, err)
	defer check.Close()
	assert.Empty(t, check.Sites())
	assert.Empty(t, check.Pools())
}

func TestSQLiteSession_DuplicateBindingIsHostError(t *testing.T) {
	st := newSQLiteStore(t)

	seed, err := st.OpenSession()
	require.NoError(t, err)
	_, err = seed.AddSite("contoso.local", "*:80:contoso.local", "/srv/a")
	require.NoError(t, err)
	require.NoError(t, seed.Commit())

	sess, err := st.OpenSession()
	require.NoError(t, err)
	defer sess.Close()

	// The binding column is unique; the driver rejects the insert.
	_, err = sess.AddSite("other", "*:80:contoso.local", "/srv/b")
	require.Error(t, err)
	var hostErr *store.HostError
	assert.ErrorAs(t, err, &hostErr)
}
