package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailme/models"
	"mailme/service"
)

func TestCreateLabel(t *testing.T) {
	env := newTestEnv(t)

	label, err := env.labels.Create("alice", "Work")
	require.NoError(t, err)
	assert.NotEmpty(t, label.ID)
	assert.Equal(t, "Work", label.Name)
	assert.Equal(t, models.DefaultLabelColor, label.Color)

	got, err := env.labels.Get("alice", label.ID)
	require.NoError(t, err)
	assert.Equal(t, label.Name, got.Name)
}

func TestCreateDuplicateLabelName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.labels.Create("alice", "Work")
	require.NoError(t, err)

	_, err = env.labels.Create("alice", "work")
	assert.ErrorIs(t, err, service.ErrNameTaken)

	// Other users are free to reuse the name.
	_, err = env.labels.Create("bob", "Work")
	assert.NoError(t, err)
}

func TestRenameLabel(t *testing.T) {
	env := newTestEnv(t)

	label, err := env.labels.Create("alice", "Work")
	require.NoError(t, err)

	require.NoError(t, env.labels.Rename("alice", label.ID, "Project"))
	got, err := env.labels.Get("alice", label.ID)
	require.NoError(t, err)
	assert.Equal(t, "Project", got.Name)
}

func TestRenameToTakenName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.labels.Create("alice", "Work")
	require.NoError(t, err)
	label, err := env.labels.Create("alice", "Home")
	require.NoError(t, err)

	assert.ErrorIs(t, env.labels.Rename("alice", label.ID, "WORK"), service.ErrNameTaken)

	// Renaming to its own name is fine.
	assert.NoError(t, env.labels.Rename("alice", label.ID, "home"))
}

func TestLabelOwnership(t *testing.T) {
	env := newTestEnv(t)

	label, err := env.labels.Create("alice", "Private")
	require.NoError(t, err)

	_, err = env.labels.Get("bob", label.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, env.labels.Rename("bob", label.ID, "Mine"), service.ErrNotFound)
	assert.ErrorIs(t, env.labels.Delete("bob", label.ID), service.ErrNotFound)
}

func TestListLabelsSorted(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"zeta", "Alpha", "midway"} {
		_, err := env.labels.Create("alice", name)
		require.NoError(t, err)
	}

	labels, err := env.labels.List("alice")
	require.NoError(t, err)
	require.Len(t, labels, 3)
	assert.Equal(t, "Alpha", labels[0].Name)
	assert.Equal(t, "midway", labels[1].Name)
	assert.Equal(t, "zeta", labels[2].Name)
}

func TestSetAndResetColor(t *testing.T) {
	env := newTestEnv(t)

	label, err := env.labels.Create("alice", "Work")
	require.NoError(t, err)

	require.NoError(t, env.labels.SetColor("alice", label.ID, "#FF0000"))
	got, err := env.labels.Get("alice", label.ID)
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", got.Color)

	require.NoError(t, env.labels.ResetColor("alice", label.ID))
	got, err = env.labels.Get("alice", label.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLabelColor, got.Color)

	// Resetting again is a no-op.
	require.NoError(t, env.labels.ResetColor("alice", label.ID))
}

func TestDeleteLabelCascades(t *testing.T) {
	env := newTestEnv(t)
	id := env.send(t, "hello", "world")

	label, err := env.labels.Create("bob", "Work")
	require.NoError(t, err)
	require.NoError(t, env.statuses.AddLabel(id, "bob", label.ID))

	require.NoError(t, env.labels.Delete("bob", label.ID))

	_, err = env.labels.Get("bob", label.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Empty(t, env.status(t, id, "bob").Labels, "deleted label must vanish from status rows")
}
