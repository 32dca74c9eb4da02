// Package metrics exports gate run results in the Prometheus textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sitegate/sitegate/internal/adapters/outbound/evidence"
	"github.com/sitegate/sitegate/internal/domain"
)

// TextfileWriter implements domain.EvidenceWriter by writing a .prom file
// for the node_exporter textfile collector.
type TextfileWriter struct{}

func New() *TextfileWriter {
	return &TextfileWriter{}
}

// Write registers the run's gauges on a private registry and writes them
// to <dir>/<gate>-<runId>.prom.
func (w *TextfileWriter) Write(report *domain.ScanReport, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating metrics dir: %w", err)
	}

	reg := prometheus.NewRegistry()
	hits := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sitegate",
		Name:      "hits_total",
		Help:      "Hits found by the last gate run, by waiver state",
	}, []string{"gate", "state"})
	files := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sitegate",
		Name:      "files_scanned",
		Help:      "Files read by the last gate run",
	}, []string{"gate"})
	verdict := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sitegate",
		Name:      "verdict",
		Help:      "1 for the verdict of the last gate run, 0 otherwise",
	}, []string{"gate", "verdict"})
	waivers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sitegate",
		Name:      "waivers",
		Help:      "Waived hits of the last gate run, by reason code",
	}, []string{"gate", "reason"})
	reg.MustRegister(hits, files, verdict, waivers)

	g := string(report.Gate)
	hits.WithLabelValues(g, "actionable").Set(float64(report.Summary.Actionable))
	hits.WithLabelValues(g, "waived").Set(float64(report.Summary.Waived))
	files.WithLabelValues(g).Set(float64(report.Summary.FilesScanned))
	for _, v := range []domain.Verdict{domain.VerdictPass, domain.VerdictWarn, domain.VerdictFail} {
		val := 0.0
		if report.Verdict == v {
			val = 1
		}
		verdict.WithLabelValues(g, string(v)).Set(val)
	}
	for reason, n := range report.WaiverBreakdown {
		waivers.WithLabelValues(g, reason).Set(float64(n))
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.prom", report.Gate, evidence.SafeRunID(report.RunID)))
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return []string{path}, nil
}
