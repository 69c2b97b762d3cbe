package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phdjsep/aacr-genie/internal/store"
)

func TestSummarizePartitionsOnAndOffLabel(t *testing.T) {
	counts := []store.GeneIndicationCount{
		{Gene: "MET", CancerType: "Renal Cell Carcinoma", Count: 3},
		{Gene: "MET", CancerType: "Non-Small Cell Lung Cancer", Count: 2},
		{Gene: "MET", CancerType: "Melanoma", Count: 5},
		{Gene: "BRAF", CancerType: "Melanoma", Count: 4},
	}
	indications := map[string][]string{
		"MET":  {"Renal Cell Carcinoma", "Non-Small Cell Lung Cancer"},
		"BRAF": {"Melanoma"},
	}

	summary := Summarize(counts, []string{"MET", "BRAF"}, indications)
	require.Len(t, summary, 2)

	met := summary[0]
	assert.Equal(t, "MET", met.Gene)
	assert.Equal(t, int64(5), met.OnLabel)
	assert.Equal(t, int64(5), met.OffLabel)
	assert.Equal(t, int64(10), met.Total)
	assert.InDelta(t, 0.5, met.OnPct, 1e-9)

	braf := summary[1]
	assert.Equal(t, int64(4), braf.OnLabel)
	assert.Equal(t, int64(0), braf.OffLabel)
	assert.InDelta(t, 1.0, braf.OnPct, 1e-9)
}

func TestSummarizeGeneWithNoCountsIsZero(t *testing.T) {
	summary := Summarize(nil, []string{"ROS1"}, map[string][]string{
		"ROS1": {"Non-Small Cell Lung Cancer"},
	})
	require.Len(t, summary, 1)
	assert.Equal(t, int64(0), summary[0].Total)
	assert.Equal(t, 0.0, summary[0].OnPct)
}

func TestSummarizeUnmappedGeneIsAllOffLabel(t *testing.T) {
	counts := []store.GeneIndicationCount{
		{Gene: "KRAS", CancerType: "Colorectal Cancer", Count: 7},
	}
	summary := Summarize(counts, []string{"KRAS"}, map[string][]string{})
	require.Len(t, summary, 1)
	assert.Equal(t, int64(0), summary[0].OnLabel)
	assert.Equal(t, int64(7), summary[0].OffLabel)
}

func TestRenderLabelSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderLabelSummary(&buf, []GeneLabelSummary{
		{Gene: "ALK", OnLabel: 1, OffLabel: 1, Total: 2, OnPct: 0.5, OffPct: 0.5},
	})
	out := buf.String()
	assert.Contains(t, out, "ALK")
	assert.Contains(t, out, "50.0")
}

func TestRenderPathogenic(t *testing.T) {
	var buf bytes.Buffer
	RenderPathogenic(&buf, &store.PathogenicSummary{
		JoinedRows:            10,
		AnnotatedRows:         8,
		PathogenicRows:        4,
		PathogenicOfJoined:    0.4,
		PathogenicOfAnnotated: 0.5,
	})
	out := buf.String()
	assert.Contains(t, out, "0.4000")
	assert.Contains(t, out, "0.5000")
}
