package hg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hg-go/internal/hg"
	"hg-go/internal/testutil"
)

func TestUserRegistry_SignupAndFind(t *testing.T) {
	g, _ := testutil.NewTestGateway()
	r := hg.NewUserRegistry(g, testutil.NewStubIDGenerator(), nil)

	assert.Empty(t, r.List())

	u, err := r.Signup("  Asha@Example.com ", "Asha")
	require.NoError(t, err)
	assert.Equal(t, hg.User{ID: "id-1", Email: "Asha@Example.com", Name: "Asha"}, u)

	anon, err := r.Signup("anon@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "User", anon.Name)

	found, err := r.Find("asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, found)

	assert.Equal(t, []hg.User{u, anon}, r.List())
}

func TestUserRegistry_Errors(t *testing.T) {
	g, _ := testutil.NewTestGateway()
	r := hg.NewUserRegistry(g, testutil.NewStubIDGenerator(), nil)

	_, err := r.Signup("a@example.com", "A")
	require.NoError(t, err)

	_, err = r.Signup("A@EXAMPLE.COM", "Again")
	assert.ErrorIs(t, err, hg.ErrUserAlreadyExists)

	_, err = r.Find("nobody@example.com")
	assert.ErrorIs(t, err, hg.ErrUserNotFound)

	_, err = r.Signup("   ", "Blank")
	assert.Error(t, err)
	_, err = r.Find("")
	assert.Error(t, err)
}

func TestUserRegistry_CorruptRegistry(t *testing.T) {
	g, s := testutil.NewTestGateway()
	require.NoError(t, s.Set(g.RegistryKey(), `[{"id":"u1","email":"a@example.com","name":"A"},{"id":"","email":"ghost@example.com"}]`))

	r := hg.NewUserRegistry(g, testutil.NewStubIDGenerator(), nil)
	assert.Equal(t, []hg.User{{ID: "u1", Email: "a@example.com", Name: "A"}}, r.List(), "entries without id are dropped")

	require.NoError(t, s.Set(g.RegistryKey(), `not json`))
	assert.Empty(t, r.List())

	// Signing up over an unreadable registry starts a fresh one.
	_, err := r.Signup("b@example.com", "B")
	require.NoError(t, err)
	assert.Len(t, r.List(), 1)
}

func TestUserRegistry_WriteFailure(t *testing.T) {
	g, s := testutil.NewTestGateway()
	r := hg.NewUserRegistry(g, testutil.NewStubIDGenerator(), nil)

	s.FailWrites(true)
	u, err := r.Signup("a@example.com", "A")
	require.NoError(t, err, "a failed registry write is logged, not returned")
	assert.Equal(t, "a@example.com", u.Email)
	assert.Empty(t, r.List())
}
