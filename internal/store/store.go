// Package store is the DuckDB analysis store. The three loaded datasets
// are bulk-inserted into tables, and the mutation–clinical join, the
// pathogenicity filter and the gene × cancer-type aggregation all run as
// SQL inside the same database. Opened with a path, the database file
// doubles as the persisted result set the serve command reads.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/phdjsep/aacr-genie/internal/clinical"
	"github.com/phdjsep/aacr-genie/internal/mutation"
	"github.com/phdjsep/aacr-genie/internal/therapy"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the DuckDB database at path. An empty path
// opens an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for ad hoc queries.
func (s *Store) DB() *sql.DB { return s.db }

// Init (re)creates the three dataset tables. Runs are whole-snapshot
// loads, so any previous contents are dropped.
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE OR REPLACE TABLE clinical (
			sample_id            VARCHAR,
			patient_id           VARCHAR,
			center               VARCHAR,
			age_at_seq_report    DOUBLE,
			sex                  VARCHAR,
			primary_race         VARCHAR,
			ethnicity            VARCHAR,
			cancer_type          VARCHAR,
			cancer_type_detailed VARCHAR,
			sample_type          VARCHAR,
			seq_assay_id         VARCHAR,
			oncotree_code        VARCHAR
		)`,
		`CREATE OR REPLACE TABLE mutations (
			hugo_symbol            VARCHAR,
			chromosome             VARCHAR,
			start_position         BIGINT,
			end_position           BIGINT,
			variant_classification VARCHAR,
			variant_type           VARCHAR,
			reference_allele       VARCHAR,
			tumor_seq_allele2      VARCHAR,
			tumor_sample_barcode   VARCHAR,
			mutation_status        VARCHAR,
			clinical_significance  VARCHAR
		)`,
		`CREATE OR REPLACE TABLE therapies (
			agent      VARCHAR,
			target     VARCHAR,
			indication VARCHAR
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// InsertClinical bulk-loads the clinical records.
func (s *Store) InsertClinical(ctx context.Context, records []clinical.Record) error {
	return s.bulk(ctx,
		`INSERT INTO clinical VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(records),
		func(i int) []any {
			r := records[i]
			return []any{
				r.SampleID, r.PatientID, r.Center, r.Age,
				r.Sex, r.PrimaryRace, r.Ethnicity, r.CancerType,
				r.CancerTypeDetailed, r.SampleType, r.SeqAssayID, r.OncotreeCode,
			}
		})
}

// InsertMutations bulk-loads the projected MAF records.
func (s *Store) InsertMutations(ctx context.Context, records []mutation.Record) error {
	return s.bulk(ctx,
		`INSERT INTO mutations VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(records),
		func(i int) []any {
			r := records[i]
			return []any{
				r.HugoSymbol, r.Chromosome, r.StartPosition, r.EndPosition,
				r.VariantClassification, r.VariantType, r.ReferenceAllele,
				r.TumorSeqAllele2, r.TumorSampleBarcode, r.MutationStatus,
				r.ClinicalSignificance,
			}
		})
}

// InsertTherapies bulk-loads the tidy therapy triples.
func (s *Store) InsertTherapies(ctx context.Context, records []therapy.Record) error {
	return s.bulk(ctx,
		`INSERT INTO therapies VALUES (?, ?, ?)`,
		len(records),
		func(i int) []any {
			r := records[i]
			return []any{r.Agent, r.Target, r.Indication}
		})
}

func (s *Store) bulk(ctx context.Context, insert string, n int, args func(int) []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

// joinedCTE is the left join of mutations onto clinical. Mutations whose
// barcode matches no clinical sample keep NULL clinical fields, so the
// join output always has exactly one row per mutation row.
const joinedCTE = `
	WITH joined AS (
		SELECT
			m.hugo_symbol,
			m.clinical_significance,
			c.cancer_type,
			c.center
		FROM mutations m
		LEFT JOIN clinical c
		ON m.tumor_sample_barcode = c.sample_id
	)
`

// pathogenicPredicate selects annotated rows whose clinical significance
// contains the substring "pathogenic". The substring match is
// deliberate: it also catches "likely_pathogenic".
const pathogenicPredicate = `
	clinical_significance IS NOT NULL
	AND clinical_significance LIKE '%pathogenic%'
`

// PathogenicSummary reports the size of the joined table, how many of
// its rows carry any clinical-significance annotation, and how many of
// those are pathogenic, with the two ratios.
type PathogenicSummary struct {
	JoinedRows            int64
	AnnotatedRows         int64
	PathogenicRows        int64
	PathogenicOfJoined    float64
	PathogenicOfAnnotated float64
}

func (s *Store) PathogenicSummary(ctx context.Context) (*PathogenicSummary, error) {
	query := joinedCTE + `
		SELECT
			COUNT(*) AS joined,
			COUNT(clinical_significance) AS annotated,
			COALESCE(SUM(CASE WHEN ` + pathogenicPredicate + ` THEN 1 ELSE 0 END), 0) AS pathogenic
		FROM joined
	`
	var sum PathogenicSummary
	if err := s.db.QueryRowContext(ctx, query).
		Scan(&sum.JoinedRows, &sum.AnnotatedRows, &sum.PathogenicRows); err != nil {
		return nil, fmt.Errorf("pathogenic summary: %w", err)
	}
	if sum.JoinedRows > 0 {
		sum.PathogenicOfJoined = float64(sum.PathogenicRows) / float64(sum.JoinedRows)
	}
	if sum.AnnotatedRows > 0 {
		sum.PathogenicOfAnnotated = float64(sum.PathogenicRows) / float64(sum.AnnotatedRows)
	}
	return &sum, nil
}

// GeneIndicationCount is one cell of the gene × cancer-type aggregate.
type GeneIndicationCount struct {
	Gene       string `json:"gene"`
	CancerType string `json:"cancer_type"`
	Count      int64  `json:"count"`
}

// GeneIndicationCounts groups the pathogenic-filtered join by
// (gene, cancer type). Zero-count pairs never materialize, which is
// the same result as cross-tabulating and dropping zero cells. Rows
// with no matched clinical sample have no cancer type and are left out
// of the tabulation. Passing genes restricts the output; nil means all.
func (s *Store) GeneIndicationCounts(ctx context.Context, genes []string) ([]GeneIndicationCount, error) {
	query := joinedCTE + `
		, pathogenic AS (
			SELECT hugo_symbol, cancer_type
			FROM joined
			WHERE ` + pathogenicPredicate + `
		)
		SELECT hugo_symbol, cancer_type, COUNT(*) AS n
		FROM pathogenic
		WHERE cancer_type IS NOT NULL AND hugo_symbol IS NOT NULL
	`
	var args []any
	if len(genes) > 0 {
		query += ` AND hugo_symbol IN (` + placeholders(len(genes)) + `)`
		for _, g := range genes {
			args = append(args, g)
		}
	}
	query += `
		GROUP BY hugo_symbol, cancer_type
		ORDER BY hugo_symbol ASC, n DESC, cancer_type ASC
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("gene indication counts: %w", err)
	}
	defer rows.Close()

	var out []GeneIndicationCount
	for rows.Next() {
		var c GeneIndicationCount
		if err := rows.Scan(&c.Gene, &c.CancerType, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
