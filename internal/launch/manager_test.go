package launch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTasks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launches.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTasks(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	path := writeTasks(t, `
tasks:
  - task_name: genesis-drop
    wallet: alice
    collection:
      name: Genesis
      uri: https://example.com/genesis.json
      update_authority: `+authority.String()+`
    store:
      name: Genesis Store
      url: https://example.com/store
      manifest_id: manifest-1
      number_of_items: 500
    use_pass: true
  - task_name: missing-store
    wallet: bob
    collection:
      name: Broken
  - task_name: bad-authority
    wallet: bob
    collection:
      name: Broken
      update_authority: not-a-key
    store:
      name: Broken Store
  - task_name: quick
    wallet: bob
    collection:
      name: Quick
    store:
      name: Quick Store
    single_transaction: true
`)

	tasks, err := NewManager(zap.NewNop()).LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	first := tasks[0]
	assert.Equal(t, 0, first.ID)
	assert.Equal(t, "genesis-drop", first.TaskName)
	assert.Equal(t, "alice", first.WalletName)
	assert.Equal(t, authority, first.Collection.UpdateAuthority)
	assert.Equal(t, "https://example.com/genesis.json", first.Collection.URI)
	assert.Equal(t, uint64(500), first.Store.NumberOfItems)
	assert.Equal(t, "manifest-1", first.Store.ManifestID)
	assert.True(t, first.UsePass)
	assert.False(t, first.SingleTransaction)
	assert.False(t, first.CreatedAt.IsZero())

	second := tasks[1]
	assert.Equal(t, 3, second.ID)
	assert.True(t, second.Collection.UpdateAuthority.IsZero())
	assert.True(t, second.SingleTransaction)
}

func TestLoadTasksErrors(t *testing.T) {
	m := NewManager(zap.NewNop())

	_, err := m.LoadTasks(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read file")

	_, err = m.LoadTasks(writeTasks(t, "tasks: [:"))
	assert.ErrorContains(t, err, "failed to parse YAML")

	_, err = m.LoadTasks(writeTasks(t, "tasks: []\n"))
	assert.ErrorContains(t, err, "no tasks found")

	_, err = m.LoadTasks(writeTasks(t, "tasks:\n  - task_name: lonely\n"))
	assert.ErrorContains(t, err, "no valid tasks loaded")
}
