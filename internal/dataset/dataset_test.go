package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subjects.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBinaryCohort(t *testing.T) {
	path := writeCSV(t, `cancer,model,marker
1,0.9,12.5
0,0.2,
1,0.7,na
0,0.1,3.0
`)

	cfg := &contract.Config{
		DataPath:   path,
		Regime:     schema.BinaryRegime,
		OutcomeCol: "cancer",
		Predictors: []string{"model", "marker"},
		ScoreKinds: map[string]schema.ScoreKind{"marker": schema.RawKind},
	}

	coh, err := Load(cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, coh.N)
	assert.Equal(t, []bool{true, false, true, false}, coh.Outcome)
	require.Len(t, coh.Predictors, 2)

	assert.Equal(t, "model", coh.Predictors[0].Name)
	assert.Equal(t, schema.ProbabilityKind, coh.Predictors[0].Kind)
	assert.Equal(t, []float64{0.9, 0.2, 0.7, 0.1}, coh.Predictors[0].Scores)

	marker := coh.Predictors[1]
	assert.Equal(t, schema.RawKind, marker.Kind)
	assert.InDelta(t, 12.5, marker.Scores[0], 1e-12)
	assert.True(t, math.IsNaN(marker.Scores[1]))
	assert.True(t, math.IsNaN(marker.Scores[2]))
}

func TestLoadSurvivalCohort(t *testing.T) {
	path := writeCSV(t, `ttcancer,cancer_cr,risk
1.5,1,0.8
2.0,0,0.3
0.5,2,0.9
`)

	cfg := &contract.Config{
		DataPath:   path,
		Regime:     schema.SurvivalRegime,
		TimeCol:    "ttcancer",
		EventCol:   "cancer_cr",
		Predictors: []string{"risk"},
	}

	coh, err := Load(cfg)
	require.NoError(t, err)

	assert.Equal(t, []float64{1.5, 2.0, 0.5}, coh.Time)
	assert.Equal(t, []int{1, 0, 2}, coh.Event)
	assert.Nil(t, coh.Outcome)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		cfg  func(path string) *contract.Config
	}{
		{
			name: "missing outcome column",
			csv:  "a,b\n1,2\n",
			cfg: func(path string) *contract.Config {
				return &contract.Config{DataPath: path, Regime: schema.BinaryRegime, OutcomeCol: "cancer", Predictors: []string{"a"}}
			},
		},
		{
			name: "missing predictor column",
			csv:  "cancer,model\n1,0.5\n",
			cfg: func(path string) *contract.Config {
				return &contract.Config{DataPath: path, Regime: schema.BinaryRegime, OutcomeCol: "cancer", Predictors: []string{"other"}}
			},
		},
		{
			name: "no data rows",
			csv:  "cancer,model\n",
			cfg: func(path string) *contract.Config {
				return &contract.Config{DataPath: path, Regime: schema.BinaryRegime, OutcomeCol: "cancer", Predictors: []string{"model"}}
			},
		},
		{
			name: "bad outcome value",
			csv:  "cancer,model\nmaybe,0.5\n",
			cfg: func(path string) *contract.Config {
				return &contract.Config{DataPath: path, Regime: schema.BinaryRegime, OutcomeCol: "cancer", Predictors: []string{"model"}}
			},
		},
		{
			name: "negative follow-up time",
			csv:  "t,e,model\n-1,1,0.5\n",
			cfg: func(path string) *contract.Config {
				return &contract.Config{DataPath: path, Regime: schema.SurvivalRegime, TimeCol: "t", EventCol: "e", Predictors: []string{"model"}}
			},
		},
		{
			name: "bad event level",
			csv:  "t,e,model\n1.0,yes,0.5\n",
			cfg: func(path string) *contract.Config {
				return &contract.Config{DataPath: path, Regime: schema.SurvivalRegime, TimeCol: "t", EventCol: "e", Predictors: []string{"model"}}
			},
		},
		{
			name: "bad score",
			csv:  "cancer,model\n1,high\n",
			cfg: func(path string) *contract.Config {
				return &contract.Config{DataPath: path, Regime: schema.BinaryRegime, OutcomeCol: "cancer", Predictors: []string{"model"}}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, tt.csv)
			_, err := Load(tt.cfg(path))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg := &contract.Config{
		DataPath:   filepath.Join(t.TempDir(), "nope.csv"),
		Regime:     schema.BinaryRegime,
		OutcomeCol: "cancer",
		Predictors: []string{"model"},
	}
	_, err := Load(cfg)
	assert.Error(t, err)
}
