package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	assert.EqualValues(t, DefaultMaxHistoryItems, m.Current().MaxHistoryItems)
}

func TestLoadSanitizesOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{"below minimum", `{"max_history_items": 0}`, 1},
		{"negative", `{"max_history_items": -7}`, 1},
		{"above maximum", `{"max_history_items": 99999}`, 5000},
		{"in range", `{"max_history_items": 250}`, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			m, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Current().MaxHistoryItems)
		})
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestUpdatePersistsAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	m, err := Load(path)
	require.NoError(t, err)

	applied, err := m.Update(Settings{MaxHistoryItems: 7000})
	require.NoError(t, err)
	assert.EqualValues(t, 5000, applied.MaxHistoryItems)
	assert.EqualValues(t, 5000, m.Current().MaxHistoryItems)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, reloaded.Current().MaxHistoryItems)
}
