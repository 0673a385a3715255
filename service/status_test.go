package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailme/service"
)

func TestToggleStar(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "hello", "world")

	require.NoError(t, env.statuses.ToggleStar(id, "bob"))
	assert.True(t, env.status(t, id, "bob").IsStar)

	require.NoError(t, env.statuses.ToggleStar(id, "bob"))
	assert.False(t, env.status(t, id, "bob").IsStar)
}

func TestToggleStarUnknownMail(t *testing.T) {
	env := newTestEnv(t)
	assert.ErrorIs(t, env.statuses.ToggleStar("nope", "bob"), service.ErrNotFound)
}

func TestMarkSpamStripsLabelsAndStar(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "cheap pills", "order today")

	label, err := env.labels.Create("bob", "Health")
	require.NoError(t, err)
	require.NoError(t, env.statuses.AddLabel(id, "bob", label.ID))
	require.NoError(t, env.statuses.ToggleStar(id, "bob"))

	require.NoError(t, env.statuses.SetSpam(context.Background(), id, "bob", true))
	env.blacklister.wait(t)

	st := env.status(t, id, "bob")
	assert.True(t, st.IsSpam)
	requireSpamInvariant(t, st)

	// The content tokens went to the blacklist server.
	require.Len(t, env.blacklister.added, 1)
	assert.ElementsMatch(t, []string{"cheap", "pills", "order", "today"}, env.blacklister.added[0])
}

func TestUnmarkSpamRemovesTokens(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "one two", "two three")

	require.NoError(t, env.statuses.SetSpam(context.Background(), id, "bob", true))
	env.blacklister.wait(t)
	require.NoError(t, env.statuses.SetSpam(context.Background(), id, "bob", false))
	env.blacklister.wait(t)

	assert.False(t, env.status(t, id, "bob").IsSpam)
	require.Len(t, env.blacklister.removed, 1)
	assert.ElementsMatch(t, []string{"one", "two", "three"}, env.blacklister.removed[0])
}

func TestSenderCannotMarkSpam(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "hello", "world")

	assert.ErrorIs(t, env.statuses.SetSpam(context.Background(), id, "alice", true), service.ErrNotRecipient)
	assert.Empty(t, env.blacklister.added)
}

func TestStarIsSilentlyIgnoredOnSpam(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "junk", "junk")

	require.NoError(t, env.statuses.SetSpam(context.Background(), id, "bob", true))
	env.blacklister.wait(t)

	require.NoError(t, env.statuses.ToggleStar(id, "bob"))
	st := env.status(t, id, "bob")
	assert.False(t, st.IsStar)
	requireSpamInvariant(t, st)
}

func TestLabelsAreLockedOnSpam(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "junk", "junk")

	label, err := env.labels.Create("bob", "Keep")
	require.NoError(t, err)

	require.NoError(t, env.statuses.SetSpam(context.Background(), id, "bob", true))
	env.blacklister.wait(t)

	assert.ErrorIs(t, env.statuses.AddLabel(id, "bob", label.ID), service.ErrSpamLocked)
	assert.ErrorIs(t, env.statuses.RemoveLabel(id, "bob", label.ID), service.ErrSpamLocked)
}

func TestAddLabelIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "hello", "world")

	label, err := env.labels.Create("bob", "Work")
	require.NoError(t, err)

	require.NoError(t, env.statuses.AddLabel(id, "bob", label.ID))
	require.NoError(t, env.statuses.AddLabel(id, "bob", label.ID))
	assert.Equal(t, []string{label.ID}, env.status(t, id, "bob").Labels)
}

func TestAddLabelOwnedByAnotherUser(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "hello", "world")

	label, err := env.labels.Create("alice", "Private")
	require.NoError(t, err)

	assert.ErrorIs(t, env.statuses.AddLabel(id, "bob", label.ID), service.ErrNotFound)
}

func TestRemoveLabel(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "hello", "world")

	label, err := env.labels.Create("bob", "Work")
	require.NoError(t, err)
	require.NoError(t, env.statuses.AddLabel(id, "bob", label.ID))

	require.NoError(t, env.statuses.RemoveLabel(id, "bob", label.ID))
	assert.Empty(t, env.status(t, id, "bob").Labels)

	// Removing a label that is not attached is a no-op.
	require.NoError(t, env.statuses.RemoveLabel(id, "bob", label.ID))
}

func TestMarkRead(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "hello", "world")

	require.NoError(t, env.statuses.MarkRead(id, "bob"))
	assert.True(t, env.status(t, id, "bob").IsRead)

	// Idempotent.
	require.NoError(t, env.statuses.MarkRead(id, "bob"))
	assert.True(t, env.status(t, id, "bob").IsRead)
}

func TestMarkReadOnSentRowIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "hello", "world")

	require.NoError(t, env.statuses.MarkRead(id, "alice"))
	assert.False(t, env.status(t, id, "alice").IsRead)
}
