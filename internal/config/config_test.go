package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	var cfg, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "counter.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"COUNTER_HASH=64\n"+
			"COUNTER_MOVE_OVERHEAD=50\n"+
			"COUNTER_NODESTIME=600\n"+
			"COUNTER_HORIZON=decile\n"+
			"COUNTER_EVAL_BIAS=false\n"), 0o644))
	t.Setenv("COUNTER_MOVE_OVERHEAD", "30")
	t.Setenv("COUNTER_PONDER", "true")

	var cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Hash)
	assert.Equal(t, 30, cfg.MoveOverhead)
	assert.Equal(t, 600, cfg.NodesTime)
	assert.Equal(t, HorizonDecile, cfg.Horizon)
	assert.False(t, cfg.EvalBias)
	assert.True(t, cfg.Ponder)
	assert.Equal(t, 1, cfg.Threads)
}

func TestApplyErrors(t *testing.T) {
	var tests = []map[string]string{
		{"COUNTER_HASH": "big"},
		{"COUNTER_MOVE_OVERHEAD": "6000"},
		{"COUNTER_NODESTIME": "-1"},
		{"COUNTER_PONDER": "maybe"},
		{"COUNTER_HORIZON": "linear"},
	}
	for _, env := range tests {
		var cfg = Default()
		assert.Error(t, cfg.apply(env), env)
	}
}
