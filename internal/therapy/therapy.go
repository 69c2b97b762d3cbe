// Package therapy turns the scraped FDA-approved targeted-therapy table
// into tidy (agent, target, indication) triples.
//
// The raw HTML table has one row per agent: target genes comma-joined in
// one cell, approved indications line-separated in another. Tidying
// explodes each row into the full cross product of its targets and
// indications. The indication strings stay in the source's free-text
// vocabulary; they are never normalized to the clinical cancer-type
// categories.
package therapy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/phdjsep/aacr-genie/internal/dataset"
)

// RawRow is one un-exploded table row.
type RawRow struct {
	Agent       string
	Targets     string // comma-joined gene symbols
	Indications string // newline-joined indication lines
}

// Record is one tidy (agent, single target, single indication) triple.
type Record struct {
	Agent      string
	Target     string
	Indication string
}

// replacements fixes the known mis-encoded characters of the scrape
// source by exact match: the two Greek letters in receptor names plus
// the typographic artifacts. Applying it twice is a no-op because no
// replacement output contains a replacement input.
var replacements = [...]struct{ old, new string }{
	{"α", "alpha"},
	{"β", "beta"},
	{"\u00a0", " "}, // non-breaking space
	{"–", "-"},
}

// Clean applies the character fixes to one field.
func Clean(s string) string {
	for _, r := range replacements {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return s
}

// ParseHTML extracts the first <table> of the scrape source. Header rows
// (th cells) are skipped; data rows need at least three cells, read as
// agent, targets, indications. <br> and <li> boundaries inside the
// indication cell become line breaks.
func ParseHTML(r io.Reader) ([]RawRow, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, fmt.Errorf("%w: no <table> element in scrape source", dataset.ErrSchemaMismatch)
	}

	var rows []RawRow
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			cells := rowCells(n)
			if len(cells) >= 3 {
				rows = append(rows, RawRow{
					Agent:       cells[0],
					Targets:     cells[1],
					Indications: cells[2],
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: therapy table has no data rows", dataset.ErrSchemaMismatch)
	}
	return rows, nil
}

// findFirst returns the first element of the given kind, depth first.
func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// rowCells collects the text of each <td> in a row; rows made of <th>
// cells yield nothing.
func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Td {
			cells = append(cells, cellText(c))
		}
	}
	return cells
}

// cellText flattens a cell to text, keeping <br>/<li> boundaries as
// newlines so the indication lines survive.
func cellText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Br || n.DataAtom == atom.Li) {
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.TrimSpace(sb.String())
}

// Explode expands each raw row into the full cross product of its
// targets and indication lines: a row with 2 targets and 3 indications
// yields exactly 6 records. Fields are cleaned and trimmed; empty
// fragments from stray separators are dropped.
func Explode(raw []RawRow) []Record {
	var out []Record
	for _, row := range raw {
		agent := strings.TrimSpace(Clean(row.Agent))

		var targets []string
		for _, t := range strings.Split(Clean(row.Targets), ",") {
			if t = strings.TrimSpace(t); t != "" {
				targets = append(targets, t)
			}
		}
		var indications []string
		for _, ind := range strings.Split(Clean(row.Indications), "\n") {
			if ind = strings.TrimSpace(ind); ind != "" {
				indications = append(indications, ind)
			}
		}

		for _, t := range targets {
			for _, ind := range indications {
				out = append(out, Record{Agent: agent, Target: t, Indication: ind})
			}
		}
	}
	return out
}

var cacheHeader = []string{"agent", "target", "indication"}

// WriteCache persists the tidy table as TSV so later runs skip the
// scrape entirely.
func WriteCache(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create therapy cache %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write(cacheHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write([]string{rec.Agent, rec.Target, rec.Indication}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadCache reads a previously written tidy table.
func LoadCache(path string) ([]Record, error) {
	tbl, err := dataset.ReadTSV(path, false)
	if err != nil {
		return nil, err
	}
	ai, err := tbl.Col("agent")
	if err != nil {
		return nil, err
	}
	ti, err := tbl.Col("target")
	if err != nil {
		return nil, err
	}
	ii, err := tbl.Col("indication")
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		if len(row) <= ai || len(row) <= ti || len(row) <= ii {
			continue
		}
		records = append(records, Record{Agent: row[ai], Target: row[ti], Indication: row[ii]})
	}
	return records, nil
}

// Load returns the tidy therapy table, preferring the cache. When the
// cache is absent the HTML source is parsed, exploded and the cache is
// rewritten.
func Load(htmlPath, cachePath string, logger *zap.Logger) ([]Record, error) {
	if records, err := LoadCache(cachePath); err == nil {
		logger.Debug("loaded therapy table from cache",
			zap.String("path", cachePath), zap.Int("rows", len(records)))
		return records, nil
	} else if !errors.Is(err, dataset.ErrMissingInput) && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("therapy cache unreadable, re-scraping", zap.Error(err))
	}

	f, err := os.Open(htmlPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s: %v", dataset.ErrMissingInput, htmlPath, err)
		}
		return nil, fmt.Errorf("open %s: %w", htmlPath, err)
	}
	defer f.Close()

	raw, err := ParseHTML(f)
	if err != nil {
		return nil, err
	}
	records := Explode(raw)
	if err := WriteCache(cachePath, records); err != nil {
		logger.Warn("could not write therapy cache", zap.Error(err))
	}
	logger.Info("scraped therapy table",
		zap.Int("agents", len(raw)), zap.Int("rows", len(records)))
	return records, nil
}
