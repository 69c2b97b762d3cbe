package server_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phdjsep/aacr-genie/internal/clinical"
	"github.com/phdjsep/aacr-genie/internal/mutation"
	"github.com/phdjsep/aacr-genie/internal/server"
	"github.com/phdjsep/aacr-genie/internal/store"
)

func ns(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// resultDB builds a small persisted result database the way a pipeline
// run would.
func resultDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "genie.ddb")

	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Init(ctx))
	require.NoError(t, st.InsertClinical(ctx, []clinical.Record{
		{SampleID: "S1", PatientID: "P1", Center: "Memorial Sloan Kettering Cancer Center",
			CancerType: ns("Non-Small Cell Lung Cancer")},
		{SampleID: "S2", PatientID: "P2", Center: "Dana-Farber Cancer Institute",
			CancerType: ns("Melanoma")},
	}))
	require.NoError(t, st.InsertMutations(ctx, []mutation.Record{
		{HugoSymbol: ns("ALK"), TumorSampleBarcode: ns("S1"), ClinicalSignificance: ns("pathogenic")},
		{HugoSymbol: ns("ALK"), TumorSampleBarcode: ns("S2"), ClinicalSignificance: ns("likely_pathogenic")},
	}))
	require.NoError(t, st.Close())
	return path
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := server.New(resultDB(t),
		[]string{"ALK"},
		map[string][]string{"ALK": {"Non-Small Cell Lung Cancer"}},
		zap.NewNop())
	return srv.Router()
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthcheck(t *testing.T) {
	w := get(t, newTestServer(t), "/healthcheck")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestClinicalTableEndpoint(t *testing.T) {
	w := get(t, newTestServer(t), "/clinical")
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Headers []string        `json:"headers"`
		Data    [][]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Contains(t, payload.Headers, "sample_id")
	assert.Len(t, payload.Data, 2)
}

func TestGeneIndicationCountsEndpoint(t *testing.T) {
	w := get(t, newTestServer(t), "/gene_indication_counts")
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Counts []store.GeneIndicationCount `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Counts, 2)
	assert.Equal(t, "ALK", payload.Counts[0].Gene)
}

func TestLabelSummaryEndpoint(t *testing.T) {
	w := get(t, newTestServer(t), "/label_summary")
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Genes []struct {
			Gene  string  `json:"gene"`
			OnPct float64 `json:"on_pct"`
		} `json:"genes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Genes, 1)
	assert.Equal(t, "ALK", payload.Genes[0].Gene)
	assert.InDelta(t, 0.5, payload.Genes[0].OnPct, 1e-9)
}

func TestGeneStatsRejectsUnknownColumn(t *testing.T) {
	w := get(t, newTestServer(t), "/gene_stats?groupBy=start_position")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneStatsGroupsByAllowedColumns(t *testing.T) {
	w := get(t, newTestServer(t), "/gene_stats?groupBy=hugo_symbol,cancer_type&topN=5")
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Headers []string        `json:"headers"`
		Data    [][]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, []string{"hugo_symbol", "cancer_type", "total_count"}, payload.Headers)
	assert.Len(t, payload.Data, 2)
}
