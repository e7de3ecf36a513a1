package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreFreshDirectory(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Principal())
}

func TestSetCredentialPersistsAndHydrates(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.SetCredential("T1", map[string]string{"username": "admin"}))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "T1", s.Token())
	assert.NotNil(t, s.Principal())

	data, err := os.ReadFile(filepath.Join(dir, TokenFileName))
	require.NoError(t, err)
	assert.Equal(t, "T1", string(data))

	info, err := os.Stat(filepath.Join(dir, TokenFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// A second store over the same directory sees the credential but not
	// the principal, which is fetched lazily.
	s2, err := NewStore(dir)
	require.NoError(t, err)
	assert.True(t, s2.Authenticated())
	assert.Equal(t, "T1", s2.Token())
	assert.Nil(t, s2.Principal())
}

func TestSetCredentialRejectsEmptyToken(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.SetCredential("", nil))
	assert.False(t, s.Authenticated())
}

func TestClearIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetCredential("T1", nil))

	require.NoError(t, s.Clear())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Principal())
	_, err = os.Stat(filepath.Join(dir, TokenFileName))
	assert.True(t, os.IsNotExist(err))

	// Clearing again must not fail or change anything.
	require.NoError(t, s.Clear())
	assert.False(t, s.Authenticated())
}

func TestCredentialReplacedAtomically(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.SetCredential("T1", nil))
	require.NoError(t, s.SetCredential("T2", nil))

	data, err := os.ReadFile(filepath.Join(dir, TokenFileName))
	require.NoError(t, err)
	assert.Equal(t, "T2", string(data))

	// No temp file debris may remain after the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTokenExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.SetCredential(signed, nil))
	assert.True(t, exp.Equal(s.TokenExpiry()))
}

func TestTokenExpiryOpaqueToken(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.SetCredential("not-a-jwt", nil))
	assert.True(t, s.TokenExpiry().IsZero())
}
