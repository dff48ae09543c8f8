package episodelog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/flappy/train/episodelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "episodes.parquet")

	w, err := episodelog.Create(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(
		episodelog.Row{Mode: "dqn", Preset: "sprite", Episode: 1, Steps: 40, Score: 0, Reward: 38, Epsilon: 0.999},
		episodelog.Row{Mode: "dqn", Preset: "sprite", Episode: 2, Steps: 120, Score: 1, Best: 1, Reward: 118, Epsilon: 0.998},
	))
	require.NoError(t, w.Write())
	assert.Equal(t, 2, w.Rows())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "final file appears only after Close")

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	rows, err := episodelog.Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int32(2), rows[1].Episode)
	assert.Equal(t, int32(1), rows[1].Best)
	assert.Equal(t, "sprite", rows[0].Preset)
	assert.InDelta(t, 0.998, rows[1].Epsilon, 1e-6)

	assert.ErrorIs(t, w.Write(episodelog.Row{}), episodelog.ErrClosed)
}

func TestEmptyLogIsRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")

	w, err := episodelog.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestCreateRequiresPath(t *testing.T) {
	_, err := episodelog.Create("")
	assert.Error(t, err)
}
