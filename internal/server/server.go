// Package server exposes the persisted result database over a small
// read-only HTTP API so the computed tables can be inspected without
// re-running the pipeline.
package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/phdjsep/aacr-genie/internal/report"
	"github.com/phdjsep/aacr-genie/internal/store"
)

// Server serves the result tables of a finished pipeline run. Each
// request opens the DuckDB file read-only-by-convention and closes it
// when done.
type Server struct {
	dbPath      string
	genes       []string
	indications map[string][]string
	logger      *zap.Logger
}

func New(dbPath string, genes []string, indications map[string][]string, logger *zap.Logger) *Server {
	return &Server{dbPath: dbPath, genes: genes, indications: indications, logger: logger}
}

// Router wires up all endpoints.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/healthcheck", healthCheckHandler)
	router.GET("/clinical", s.makeHandler("SELECT * FROM clinical"))
	router.GET("/mutations", s.makeHandler("SELECT * FROM mutations"))
	router.GET("/therapies", s.makeHandler("SELECT * FROM therapies"))

	router.GET("/gene_indication_counts", s.geneIndicationCountsHandler)
	router.GET("/label_summary", s.labelSummaryHandler)
	router.GET("/gene_stats", s.geneStatsHandler)

	return router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("result API listening", zap.String("addr", addr))
	return s.Router().Run(addr)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Next()
	}
}

func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// makeHandler returns a whole table as a generic {headers, data} payload.
func (s *Server) makeHandler(query string) func(*gin.Context) {
	return func(c *gin.Context) {
		db, err := sql.Open("duckdb", s.dbPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer db.Close()

		rows, err := db.Query(query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		data := make([][]interface{}, 0)
		for rows.Next() {
			row := make([]interface{}, len(columns))
			rowPointers := make([]interface{}, len(columns))
			for i := range row {
				rowPointers[i] = &row[i]
			}
			if err := rows.Scan(rowPointers...); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}

			// Convert []byte -> string, keep NULL as nil
			for i, val := range row {
				if b, ok := val.([]byte); ok {
					row[i] = string(b)
				}
			}
			data = append(data, row)
		}

		result := map[string]interface{}{
			"headers": columns,
			"data":    data,
		}
		c.JSON(http.StatusOK, result)
	}
}

// openStore reopens the result database through the store layer for the
// endpoints that reuse its analysis queries.
func (s *Server) openStore(c *gin.Context) *store.Store {
	st, err := store.Open(s.dbPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	return st
}

func (s *Server) geneIndicationCountsHandler(c *gin.Context) {
	genes := s.genes
	if raw := c.Query("genes"); raw != "" {
		genes = nil
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genes = append(genes, g)
			}
		}
	}

	st := s.openStore(c)
	if st == nil {
		return
	}
	defer st.Close()

	counts, err := st.GeneIndicationCounts(c.Request.Context(), genes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if counts == nil {
		counts = []store.GeneIndicationCount{}
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (s *Server) labelSummaryHandler(c *gin.Context) {
	st := s.openStore(c)
	if st == nil {
		return
	}
	defer st.Close()

	counts, err := st.GeneIndicationCounts(c.Request.Context(), s.genes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summary := report.Summarize(counts, s.genes, s.indications)

	pathogenic, err := st.PathogenicSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pathogenic": pathogenic,
		"genes":      summary,
	})
}

// statsColumns are the join columns gene_stats may group by. The group
// list is interpolated into the query, so only these names are allowed
// through.
var statsColumns = map[string]bool{
	"hugo_symbol": true,
	"cancer_type": true,
	"center":      true,
}

// geneStatsHandler returns top-N counts over the pathogenic-filtered
// join, grouped by any combination of the allowed columns.
func (s *Server) geneStatsHandler(c *gin.Context) {
	groupByStr := c.DefaultQuery("groupBy", "hugo_symbol")
	topNStr := c.Query("topN")

	topN := 10
	if topNStr != "" {
		if val, err := strconv.Atoi(topNStr); err == nil && val > 0 {
			topN = val
		}
	}

	groupByCols := []string{}
	for _, col := range strings.Split(groupByStr, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if !statsColumns[col] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("cannot group by %q", col)})
			return
		}
		groupByCols = append(groupByCols, col)
	}
	if len(groupByCols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupBy columns"})
		return
	}

	db, err := sql.Open("duckdb", s.dbPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer db.Close()

	groupByClause := strings.Join(groupByCols, ", ")
	query := fmt.Sprintf(`
		WITH base AS (
			SELECT
				m.hugo_symbol,
				c.cancer_type,
				c.center
			FROM mutations m
			LEFT JOIN clinical c
			ON m.tumor_sample_barcode = c.sample_id
			WHERE m.clinical_significance IS NOT NULL
			  AND m.clinical_significance LIKE '%%pathogenic%%'
		)
		SELECT
			%s,
			COUNT(*) AS total_count
		FROM base
		GROUP BY %s
		ORDER BY total_count DESC
		LIMIT %d
	`, groupByClause, groupByClause, topN)

	rows, err := db.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data := make([][]interface{}, 0)
	for rows.Next() {
		row := make([]interface{}, len(columns))
		rowPointers := make([]interface{}, len(columns))
		for i := range row {
			rowPointers[i] = &row[i]
		}
		if err := rows.Scan(rowPointers...); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for i, val := range row {
			if b, ok := val.([]byte); ok {
				row[i] = string(b)
			}
		}
		data = append(data, row)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"headers": columns,
		"data":    data,
	})
}
