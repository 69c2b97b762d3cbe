// Package mutation loads the MAF (Mutation Annotation Format) table of a
// registry release: one row per observed variant per sample, keyed into
// the clinical table by tumor_sample_barcode.
package mutation

import (
	"database/sql"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/phdjsep/aacr-genie/internal/dataset"
)

// ProjectedColumns is the eleven-column projection the pipeline keeps.
// A MAF carries over a hundred annotation columns; everything else is
// dropped at load time. If any of these is absent the load fails loudly
// rather than silently renaming or dropping columns.
var ProjectedColumns = []string{
	"hugo_symbol",
	"chromosome",
	"start_position",
	"end_position",
	"variant_classification",
	"variant_type",
	"reference_allele",
	"tumor_seq_allele2",
	"tumor_sample_barcode",
	"mutation_status",
	"clinical_significance",
}

// Record is one projected MAF row. Every field is nullable: any empty
// cell in the projection becomes a missing value.
type Record struct {
	HugoSymbol            sql.NullString
	Chromosome            sql.NullString
	StartPosition         sql.NullInt64
	EndPosition           sql.NullInt64
	VariantClassification sql.NullString
	VariantType           sql.NullString
	ReferenceAllele       sql.NullString
	TumorSeqAllele2       sql.NullString
	TumorSampleBarcode    sql.NullString
	MutationStatus        sql.NullString
	ClinicalSignificance  sql.NullString
}

// LoadReport summarizes a mutation load.
type LoadReport struct {
	Rows               int
	UnparsablePosition int
}

// Load parses the MAF file. The file starts with one non-tabular pragma
// line (e.g. "#version 2.4") which is skipped; its absence is a schema
// mismatch. Header names are lower-cased before projection.
func Load(path string, logger *zap.Logger) ([]Record, *LoadReport, error) {
	tbl, err := dataset.ReadTSV(path, true)
	if err != nil {
		return nil, nil, err
	}

	idx := make(map[string]int, len(ProjectedColumns))
	for _, name := range ProjectedColumns {
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
		get := func(name string) sql.NullString {
			i := idx[name]
			if i >= len(row) {
				return sql.NullString{}
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				return sql.NullString{}
			}
			return sql.NullString{String: in.Intern(v), Valid: true}
		}

		rec := Record{
			HugoSymbol:            get("hugo_symbol"),
			Chromosome:            get("chromosome"),
			VariantClassification: get("variant_classification"),
			VariantType:           get("variant_type"),
			ReferenceAllele:       get("reference_allele"),
			TumorSeqAllele2:       get("tumor_seq_allele2"),
			TumorSampleBarcode:    get("tumor_sample_barcode"),
			MutationStatus:        get("mutation_status"),
			ClinicalSignificance:  get("clinical_significance"),
		}

		var posOK bool
		rec.StartPosition, posOK = parsePosition(get("start_position"))
		if !posOK {
			report.UnparsablePosition++
		}
		rec.EndPosition, posOK = parsePosition(get("end_position"))
		if !posOK {
			report.UnparsablePosition++
		}

		records = append(records, rec)
	}
	report.Rows = len(records)
	if report.UnparsablePosition > 0 {
		logger.Warn("non-numeric genomic positions treated as missing",
			zap.Int("cells", report.UnparsablePosition))
	}
	return records, report, nil
}

func parsePosition(s sql.NullString) (sql.NullInt64, bool) {
	if !s.Valid {
		return sql.NullInt64{}, true
	}
	v, err := strconv.ParseInt(s.String, 10, 64)
	if err != nil {
		return sql.NullInt64{}, false
	}
	return sql.NullInt64{Int64: v, Valid: true}, true
}
