package mutation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phdjsep/aacr-genie/internal/dataset"
)

// mafHeader includes two extra annotation columns to make sure the
// projection really drops them.
const mafHeader = "Hugo_Symbol\tEntrez_Gene_Id\tChromosome\tStart_Position\tEnd_Position\t" +
	"Variant_Classification\tVariant_Type\tReference_Allele\tTumor_Seq_Allele2\t" +
	"Tumor_Sample_Barcode\tMutation_Status\tClinical_Significance\tt_depth\n"

func writeMAF(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data_mutations_extended.txt")
	require.NoError(t, os.WriteFile(path, []byte("#version 2.4\n"+mafHeader+rows), 0o644))
	return path
}

func TestLoadProjectsElevenColumns(t *testing.T) {
	path := writeMAF(t,
		"ALK\t238\t2\t29443695\t29443695\tMissense_Mutation\tSNP\tG\tA\tS1\tSomatic\tpathogenic\t500\n")

	records, rep, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, rep.Rows)

	r := records[0]
	assert.Equal(t, "ALK", r.HugoSymbol.String)
	assert.Equal(t, "2", r.Chromosome.String)
	assert.Equal(t, int64(29443695), r.StartPosition.Int64)
	assert.Equal(t, "S1", r.TumorSampleBarcode.String)
	assert.Equal(t, "pathogenic", r.ClinicalSignificance.String)
}

func TestLoadEmptyCellsBecomeMissing(t *testing.T) {
	path := writeMAF(t,
		"ALK\t238\t2\t\t\tMissense_Mutation\tSNP\tG\tA\tS1\t\t\t500\n")

	records, _, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	r := records[0]
	assert.False(t, r.StartPosition.Valid)
	assert.False(t, r.MutationStatus.Valid)
	assert.False(t, r.ClinicalSignificance.Valid)
	assert.True(t, r.HugoSymbol.Valid)
}

func TestLoadMissingProjectedColumnNamesIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.maf")
	header := strings.Replace(mafHeader, "Clinical_Significance", "ClinSig", 1)
	require.NoError(t, os.WriteFile(path, []byte("#version 2.4\n"+header), 0o644))

	_, _, err := Load(path, zap.NewNop())
	require.ErrorIs(t, err, dataset.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "clinical_significance")
}

func TestLoadMissingPragmaLineFailsLoudly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nopragma.maf")
	require.NoError(t, os.WriteFile(path, []byte(mafHeader), 0o644))

	_, _, err := Load(path, zap.NewNop())
	assert.ErrorIs(t, err, dataset.ErrSchemaMismatch)
}

func TestLoadNonNumericPositionDegradesToMissing(t *testing.T) {
	path := writeMAF(t,
		"ALK\t238\t2\tabc\t29443695\tMissense_Mutation\tSNP\tG\tA\tS1\tSomatic\tpathogenic\t500\n")

	records, rep, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, records[0].StartPosition.Valid)
	assert.Equal(t, 1, rep.UnparsablePosition)
}
