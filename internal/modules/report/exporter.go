// Package report renders completed backtest results into files and
// human-readable summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/domain"
)

// Exporter writes backtest artifacts into a reports directory.
type Exporter struct {
	dir string
	log zerolog.Logger
}

// NewExporter creates a new report exporter
func NewExporter(dir string, log zerolog.Logger) *Exporter {
	return &Exporter{
		dir: dir,
		log: log.With().Str("component", "report_exporter").Logger(),
	}
}

// ExportEquityCurve writes the equity curve as date,value CSV and returns
// the file path.
func (e *Exporter) ExportEquityCurve(report domain.BacktestReport) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(e.dir, "equity_curve.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create equity curve file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"date", "value"}); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, point := range report.EquityCurve {
		row := []string{point.Date, strconv.FormatFloat(point.Value, 'f', 2, 64)}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write equity point: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush equity curve: %w", err)
	}

	e.log.Info().Str("path", path).Int("points", len(report.EquityCurve)).Msg("Equity curve exported")
	return path, nil
}

// Summary renders the headline statistics as a text block suitable for
// console output or an email body.
func Summary(report domain.BacktestReport) string {
	var b strings.Builder
	b.WriteString("Backtest summary\n")
	if n := len(report.EquityCurve); n > 0 {
		fmt.Fprintf(&b, "Period:           %s .. %s (%d trading days)\n",
			report.EquityCurve[0].Date, report.EquityCurve[n-1].Date, n)
	}
	fmt.Fprintf(&b, "CAGR:             %.2f%%\n", report.CAGR*100)
	fmt.Fprintf(&b, "Max drawdown:     %.2f%%\n", report.MaxDrawdown*100)
	fmt.Fprintf(&b, "Sharpe ratio:     %.2f\n", report.Sharpe)
	fmt.Fprintf(&b, "Transactions:     %d\n", report.Transactions)
	fmt.Fprintf(&b, "Avg holding days: %.1f\n", report.AvgHoldingDays)
	fmt.Fprintf(&b, "Bull exposure:    %.1f%%\n", report.BullExposure*100)
	fmt.Fprintf(&b, "Bear exposure:    %.1f%%\n", report.BearExposure*100)
	return b.String()
}

// ExportSummary writes the summary text next to the equity curve and
// returns the file path.
func (e *Exporter) ExportSummary(report domain.BacktestReport) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(e.dir, "summary.txt")
	if err := os.WriteFile(path, []byte(Summary(report)), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	e.log.Info().Str("path", path).Msg("Summary exported")
	return path, nil
}
