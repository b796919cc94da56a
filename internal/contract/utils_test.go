package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name       string
		nb         float64
		nbTreatAll float64
		want       string
	}{
		{"harmful", -0.05, 0.10, HarmfulValue},
		{"neutral at zero", 0, 0.10, NeutralValue},
		{"neutral within epsilon", 1e-15, 0.10, NeutralValue},
		{"useful", 0.05, 0.10, UsefulValue},
		{"superior", 0.15, 0.10, SuperiorValue},
		{"superior when treat-all negative", 0.01, -0.20, SuperiorValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetPlainLabel(tt.nb, tt.nbTreatAll))
		})
	}
}

func TestGetColorLabelContainsText(t *testing.T) {
	assert.Contains(t, GetColorLabel(0.15, 0.10), SuperiorValue)
	assert.Contains(t, GetColorLabel(-0.1, 0.10), HarmfulValue)
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "true", "1", "on", " YES "} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "false", "0", "off", ""} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Same(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.csv")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.NotSame(t, os.Stdout, f)
}

func TestGetHistoryDBFilePath(t *testing.T) {
	path := GetHistoryDBFilePath()
	assert.Contains(t, path, ".dcurves_history.db")
}
