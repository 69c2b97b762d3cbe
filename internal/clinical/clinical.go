// Package clinical loads and normalizes the clinical sample table of a
// registry release. One row per sequenced sample; sample_id is the join
// key into the mutation table.
package clinical

import (
	"database/sql"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/phdjsep/aacr-genie/internal/dataset"
)

// Record is one normalized clinical row.
type Record struct {
	SampleID           string
	PatientID          string
	Center             string
	Age                sql.NullFloat64
	Sex                sql.NullString
	PrimaryRace        sql.NullString
	Ethnicity          sql.NullString
	CancerType         sql.NullString
	CancerTypeDetailed sql.NullString
	SampleType         sql.NullString
	SeqAssayID         sql.NullString
	OncotreeCode       sql.NullString
}

// LoadReport summarizes data-quality events observed during a load.
type LoadReport struct {
	Rows           int
	BlankAge       int
	CensoredYoung  int // "<18"
	CensoredOld    int // ">89"
	UnparsableAge  int
	UnknownCenters int
}

// centerNames maps the literal raw center codes of the eight contributing
// institutions to their display names. Keyed by the raw code on purpose:
// the upstream file once relied on the sort position of the codes, which
// mislabels every center as soon as a code is added or renamed.
var centerNames = map[string]string{
	"DFCI": "Dana-Farber Cancer Institute",
	"GRCC": "Gustave Roussy Cancer Campus",
	"JHU":  "Johns Hopkins Sidney Kimmel Comprehensive Cancer Center",
	"MDA":  "MD Anderson Cancer Center",
	"MSK":  "Memorial Sloan Kettering Cancer Center",
	"NKI":  "Netherlands Cancer Institute",
	"UHN":  "Princess Margaret Cancer Centre, University Health Network",
	"VICC": "Vanderbilt-Ingram Cancer Center",
}

// CenterName resolves a raw center code. Unknown codes come back
// unchanged with ok=false.
func CenterName(code string) (string, bool) {
	name, ok := centerNames[code]
	if !ok {
		return code, false
	}
	return name, true
}

// ParseAge coerces the age_at_seq_report field. The blank and censored
// sentinels ("", "<18", ">89") are valid missing values; any numeric
// string parses to its value. ok=false flags a value that is neither,
// which callers treat as a data-quality warning, not an error.
func ParseAge(raw string) (sql.NullFloat64, bool) {
	switch strings.TrimSpace(raw) {
	case "", "<18", ">89":
		return sql.NullFloat64{}, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return sql.NullFloat64{}, false
	}
	return sql.NullFloat64{Float64: v, Valid: true}, true
}

// columns the loader requires, post lower-casing.
var required = []string{
	"sample_id", "patient_id", "center", "age_at_seq_report",
	"sex", "primary_race", "ethnicity", "cancer_type",
	"cancer_type_detailed", "sample_type", "seq_assay_id", "oncotree_code",
}

// Load parses the tab-delimited clinical file. No rows are filtered;
// malformed ages and unknown center codes degrade to missing/raw values
// with a warning.
func Load(path string, logger *zap.Logger) ([]Record, *LoadReport, error) {
	tbl, err := dataset.ReadTSV(path, false)
	if err != nil {
		return nil, nil, err
	}

	idx := make(map[string]int, len(required))
	for _, name := range required {
		i, err := tbl.Col(name)
		if err != nil {
			return nil, nil, err
		}
		idx[name] = i
	}

	in := dataset.NewInterner()
	report := &LoadReport{}
	records := make([]Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		get := func(name string) string {
			i := idx[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rawAge := get("age_at_seq_report")
		age, ok := ParseAge(rawAge)
		if !ok {
			report.UnparsableAge++
			logger.Warn("unrecognized age value, treating as missing",
				zap.String("sample_id", get("sample_id")),
				zap.String("age_at_seq_report", rawAge))
		}
		switch rawAge {
		case "":
			report.BlankAge++
		case "<18":
			report.CensoredYoung++
		case ">89":
			report.CensoredOld++
		}

		center, known := CenterName(get("center"))
		if !known {
			report.UnknownCenters++
			logger.Warn("unknown center code",
				zap.String("sample_id", get("sample_id")),
				zap.String("center", get("center")))
		}

		records = append(records, Record{
			SampleID:           get("sample_id"),
			PatientID:          get("patient_id"),
			Center:             in.Intern(center),
			Age:                age,
			Sex:                category(in, get("sex")),
			PrimaryRace:        category(in, get("primary_race")),
			Ethnicity:          category(in, get("ethnicity")),
			CancerType:         category(in, get("cancer_type")),
			CancerTypeDetailed: category(in, get("cancer_type_detailed")),
			SampleType:         category(in, get("sample_type")),
			SeqAssayID:         category(in, get("seq_assay_id")),
			OncotreeCode:       category(in, get("oncotree_code")),
		})
	}
	report.Rows = len(records)
	return records, report, nil
}

// category interns a categorical cell, with empty meaning missing.
func category(in *dataset.Interner, s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: in.Intern(s), Valid: true}
}
