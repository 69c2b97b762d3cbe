package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCarriesTheCuratedMapping(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.Analysis.GenesOfInterest, 10)
	assert.Equal(t, []string{"Non-Small Cell Lung Cancer"}, cfg.Analysis.Indications["ALK"])
	assert.ElementsMatch(t,
		[]string{"Renal Cell Carcinoma", "Non-Small Cell Lung Cancer"},
		cfg.Analysis.Indications["MET"])
}

func TestLoadEmptyPathIsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genie.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
inputs:
  clinical_file: /data/clin.txt
server:
  addr: ":9999"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/clin.txt", cfg.Inputs.ClinicalFile)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	// untouched sections keep defaults
	assert.Equal(t, "data/data_mutations_extended.txt", cfg.Inputs.MutationFile)
	assert.Len(t, cfg.Analysis.GenesOfInterest, 10)
}

func TestLoadCustomMappingReplacesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genie.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analysis:
  genes_of_interest: [ALK]
  indications:
    ALK: ["Non-Small Cell Lung Cancer", "Anaplastic Large Cell Lymphoma"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALK"}, cfg.Analysis.GenesOfInterest)
	assert.Len(t, cfg.Analysis.Indications, 1)
	assert.Len(t, cfg.Analysis.Indications["ALK"], 2)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
