// Package config holds the genie run configuration. Every field has a
// default so the tool runs against a conventionally laid-out release
// directory with no config file at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full genie configuration.
type Config struct {
	Inputs   InputsConfig   `yaml:"inputs"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// InputsConfig names the three read-only inputs of a release.
type InputsConfig struct {
	ClinicalFile string `yaml:"clinical_file"`
	MutationFile string `yaml:"mutation_file"`
	TherapyHTML  string `yaml:"therapy_html"`
}

// CacheConfig controls the tidied-therapy-table cache.
type CacheConfig struct {
	TherapyFile string `yaml:"therapy_file"`
}

// DatabaseConfig names the DuckDB file the pipeline writes its result
// tables into. The serve command reads the same file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the result API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AnalysisConfig carries the genes of interest and the curated
// gene -> approved-indication mapping used for on/off-label
// classification. The mapping is deliberately an explicit, reviewable
// table keyed by gene symbol; the scraped therapy indications are free
// text in a different vocabulary and are never matched automatically.
type AnalysisConfig struct {
	GenesOfInterest []string            `yaml:"genes_of_interest"`
	Indications     map[string][]string `yaml:"indications"`
}

// DefaultGenes is the fixed panel of targeted-therapy genes the label
// summary reports on.
var DefaultGenes = []string{
	"ALK", "BRAF", "EGFR", "ERBB2", "KIT",
	"MET", "PDGFRA", "RET", "ROS1", "SMO",
}

// DefaultIndications maps each default gene to the cancer-type strings
// (clinical vocabulary) of its FDA-approved indications.
var DefaultIndications = map[string][]string{
	"ALK":    {"Non-Small Cell Lung Cancer"},
	"BRAF":   {"Melanoma"},
	"EGFR":   {"Non-Small Cell Lung Cancer"},
	"ERBB2":  {"Breast Cancer", "Esophagogastric Cancer"},
	"KIT":    {"Gastrointestinal Stromal Tumor"},
	"MET":    {"Renal Cell Carcinoma", "Non-Small Cell Lung Cancer"},
	"PDGFRA": {"Gastrointestinal Stromal Tumor"},
	"RET":    {"Thyroid Cancer"},
	"ROS1":   {"Non-Small Cell Lung Cancer"},
	"SMO":    {"Skin Cancer, Non-Melanoma"},
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			ClinicalFile: "data/data_clinical.txt",
			MutationFile: "data/data_mutations_extended.txt",
			TherapyHTML:  "data/fda_approved_therapies.html",
		},
		Cache: CacheConfig{
			TherapyFile: "data/therapies_tidy.tsv",
		},
		Database: DatabaseConfig{
			Path: "genie.ddb",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Analysis: AnalysisConfig{
			GenesOfInterest: append([]string(nil), DefaultGenes...),
			Indications:     copyIndications(DefaultIndications),
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Analysis.GenesOfInterest) == 0 {
		cfg.Analysis.GenesOfInterest = append([]string(nil), DefaultGenes...)
	}
	if len(cfg.Analysis.Indications) == 0 {
		cfg.Analysis.Indications = copyIndications(DefaultIndications)
	}
	return cfg, nil
}

func copyIndications(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for gene, types := range src {
		out[gene] = append([]string(nil), types...)
	}
	return out
}
