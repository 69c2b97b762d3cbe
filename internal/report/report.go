// Package report turns the analysis aggregates into the per-gene
// on/off-label summary and renders the terminal tables.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/phdjsep/aacr-genie/internal/store"
)

// GeneLabelSummary partitions one gene's pathogenic-sample counts into
// cancer types matching an approved indication (on-label) and everything
// else (off-label).
type GeneLabelSummary struct {
	Gene     string  `json:"gene"`
	OnLabel  int64   `json:"on_label"`
	OffLabel int64   `json:"off_label"`
	Total    int64   `json:"total"`
	OnPct    float64 `json:"on_pct"`
	OffPct   float64 `json:"off_pct"`
}

// Summarize computes the label partition for each gene of interest, in
// the given order. indications maps gene symbol to the set of clinical
// cancer-type strings its approved therapies cover; genes with no
// pathogenic counts still appear with zeros.
func Summarize(counts []store.GeneIndicationCount, genes []string, indications map[string][]string) []GeneLabelSummary {
	perGene := make(map[string][]store.GeneIndicationCount)
	for _, c := range counts {
		perGene[c.Gene] = append(perGene[c.Gene], c)
	}

	out := make([]GeneLabelSummary, 0, len(genes))
	for _, gene := range genes {
		approved := make(map[string]bool, len(indications[gene]))
		for _, t := range indications[gene] {
			approved[t] = true
		}

		sum := GeneLabelSummary{Gene: gene}
		for _, c := range perGene[gene] {
			if approved[c.CancerType] {
				sum.OnLabel += c.Count
			} else {
				sum.OffLabel += c.Count
			}
		}
		sum.Total = sum.OnLabel + sum.OffLabel
		if sum.Total > 0 {
			sum.OnPct = float64(sum.OnLabel) / float64(sum.Total)
			sum.OffPct = float64(sum.OffLabel) / float64(sum.Total)
		}
		out = append(out, sum)
	}
	return out
}

// RenderPathogenic writes the join/filter ratios.
func RenderPathogenic(w io.Writer, sum *store.PathogenicSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "joined mutation rows\t%d\n", sum.JoinedRows)
	fmt.Fprintf(tw, "clinically annotated\t%d\n", sum.AnnotatedRows)
	fmt.Fprintf(tw, "pathogenic\t%d\n", sum.PathogenicRows)
	fmt.Fprintf(tw, "pathogenic / joined\t%.4f\n", sum.PathogenicOfJoined)
	fmt.Fprintf(tw, "pathogenic / annotated\t%.4f\n", sum.PathogenicOfAnnotated)
	tw.Flush()
}

// RenderCounts writes the gene × cancer-type aggregate.
func RenderCounts(w io.Writer, counts []store.GeneIndicationCount) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GENE\tCANCER TYPE\tSAMPLES")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Gene, c.CancerType, c.Count)
	}
	tw.Flush()
}

// RenderLabelSummary writes the per-gene on/off-label table.
func RenderLabelSummary(w io.Writer, summaries []GeneLabelSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GENE\tON-LABEL\tOFF-LABEL\tTOTAL\tON %\tOFF %")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f\t%.1f\n",
			s.Gene, s.OnLabel, s.OffLabel, s.Total, s.OnPct*100, s.OffPct*100)
	}
	tw.Flush()
}
