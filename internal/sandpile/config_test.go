package sandpile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	for _, r := range Rules() {
		parsed, err := ParseRule(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	parsed, err := ParseRule(" Torus-Probabilistic ")
	require.NoError(t, err)
	assert.Equal(t, ToroidalProbabilistic, parsed)

	parsed, err = ParseRule("2")
	require.NoError(t, err)
	assert.Equal(t, ToroidalDeterministic, parsed)

	_, err = ParseRule("hexagonal")
	assert.ErrorIs(t, err, ErrUnknownRule)
	_, err = ParseRule("4")
	assert.ErrorIs(t, err, ErrUnknownRule)

	assert.True(t, BoundedIterative.Bounded())
	assert.False(t, ToroidalProbabilistic.Bounded())
	assert.Equal(t, "rule(9)", Rule(9).String())
}

func TestFromMapOverrides(t *testing.T) {
	cfg := FromMap(map[string]string{
		"w":             "40",
		"h":             "30",
		"rule":          "torus",
		"probability":   "0",
		"seed":          "9",
		"initial_pile":  "5000",
		"bpm":           "90",
		"block_size":    "-3",
		"gesture_queue": "x",
	})
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
	assert.Equal(t, ToroidalDeterministic, cfg.Rule)
	assert.Equal(t, minProbability, cfg.Probability)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, uint64(5000), cfg.InitialPile)
	assert.Equal(t, 90.0, cfg.Transport.BPM)
	assert.Equal(t, 512, cfg.Transport.BlockSize)
	assert.Equal(t, 64, cfg.GestureQueue)

	assert.Equal(t, DefaultConfig(), FromMap(nil))
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pile.yaml")
	doc := `
width: 33
height: 21
rule: torus-probabilistic
probability: 0.35
initial_pile: 800
transport:
  bpm: 140
  block_size: 256
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 33, cfg.Width)
	assert.Equal(t, 21, cfg.Height)
	assert.Equal(t, ToroidalProbabilistic, cfg.Rule)
	assert.Equal(t, 0.35, cfg.Probability)
	assert.Equal(t, uint64(800), cfg.InitialPile)
	assert.Equal(t, 140.0, cfg.Transport.BPM)
	assert.Equal(t, 256, cfg.Transport.BlockSize)
	assert.Equal(t, 4, cfg.Transport.BeatsPerBar, "missing keys keep defaults")
	assert.Equal(t, int64(1337), cfg.Seed)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rule: hexagonal\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestSnapshotParameters(t *testing.T) {
	p := newTestPile(t, 5, 5, BoundedIterative)
	require.NoError(t, p.AddAt(6, 2, 2))
	p.Step()

	params := p.Snapshot().Parameters()
	grains, ok := params.Lookup("grains")
	require.True(t, ok)
	assert.Equal(t, "6", grains.Value)
	name, ok := params.Lookup("rule_name")
	require.True(t, ok)
	assert.Equal(t, "bounded-iterative", name.Value)
	topples, ok := params.Lookup("topples")
	require.True(t, ok)
	assert.Equal(t, "1", topples.Value)

	controls := ParameterControls()
	require.Len(t, controls, 2)
	assert.Equal(t, "rule", controls[0].Key)
	assert.Equal(t, 3.0, controls[0].Max)
}
