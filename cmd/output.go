package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/cueprep/cueprep/internal/pipeline"
)

// renderReports writes track reports in the requested output format
func renderReports(w io.Writer, format string, reports []*pipeline.TrackReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		return yaml.NewEncoder(w).Encode(reports)
	case "table":
		return renderReportTable(w, reports)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderReportTable(w io.Writer, reports []*pipeline.TrackReport) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "FILE\tBPM\tCONF\tKEY\tCAMELOT\tDURATION\tRATE")
	for _, r := range reports {
		name := filepath.Base(r.Path)
		if r.Analysis == nil || r.AnalysisSkipped {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\n", name)
			continue
		}
		a := r.Analysis
		p.Fprintf(tw, "%s\t%.1f\t%.2f\t%s\t%s\t%s\t%v Hz\n",
			name,
			a.Tempo.BPM,
			a.Tempo.Confidence,
			a.Key.Name(),
			a.Key.Camelot,
			a.Duration.Round(100*time.Millisecond),
			a.SampleRate,
		)
	}
	return tw.Flush()
}

// renderOutputs lists files produced by a conversion
func renderOutputs(w io.Writer, format string, outputs []string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	case "yaml":
		return yaml.NewEncoder(w).Encode(outputs)
	case "table":
		for _, out := range outputs {
			fmt.Fprintln(w, out)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
