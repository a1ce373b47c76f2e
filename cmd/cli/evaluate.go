package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
)

// evaluation is one output row of the evaluate command.
type evaluation struct {
	StudentID string             `json:"student_id"`
	Result    *models.RiskResult `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func newEvaluateCmd() *cobra.Command {
	var (
		thresholdsFile string
		output         string
	)
	cmd := &cobra.Command{
		Use:   "evaluate FILE",
		Short: "Evaluate a CSV or JSON file of student metrics offline",
		Long: `Reads student metrics from FILE and prints the risk level of each student.
CSV files need the columns student_id, attendance_pct, avg_score and
fee_overdue_days; JSON files hold an array of the same objects.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := models.DefaultThresholds()
			if thresholdsFile != "" {
				loaded, err := readThresholds(thresholdsFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			metrics, err := readMetrics(f, strings.ToLower(filepath.Ext(args[0])))
			if err != nil {
				return err
			}
			results, err := evaluateAll(metrics, cfg)
			if err != nil {
				return err
			}
			return writeEvaluations(cmd.OutOrStdout(), results, output)
		},
	}
	cmd.Flags().StringVar(&thresholdsFile, "thresholds", "", "JSON file with a full threshold config (default: built-in defaults)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

func init() {
	rootCmd.AddCommand(newEvaluateCmd())
}

func readThresholds(path string) (models.ThresholdConfig, error) {
	var cfg models.ThresholdConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func readMetrics(r io.Reader, ext string) ([]models.StudentMetrics, error) {
	switch ext {
	case ".json":
		var metrics []models.StudentMetrics
		if err := json.NewDecoder(r).Decode(&metrics); err != nil {
			return nil, fmt.Errorf("decode metrics: %w", err)
		}
		return metrics, nil
	case ".csv":
		return readMetricsCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q, want .csv or .json", ext)
	}
}

func readMetricsCSV(r io.Reader) ([]models.StudentMetrics, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"student_id", "attendance_pct", "avg_score", "fee_overdue_days"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []models.StudentMetrics
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		m := models.StudentMetrics{StudentID: strings.TrimSpace(rec[col["student_id"]])}
		if m.AttendancePct, err = strconv.ParseFloat(strings.TrimSpace(rec[col["attendance_pct"]]), 64); err != nil {
			return nil, fmt.Errorf("line %d: attendance_pct: %w", line, err)
		}
		if m.AvgScore, err = strconv.ParseFloat(strings.TrimSpace(rec[col["avg_score"]]), 64); err != nil {
			return nil, fmt.Errorf("line %d: avg_score: %w", line, err)
		}
		if m.FeeOverdueDays, err = strconv.Atoi(strings.TrimSpace(rec[col["fee_overdue_days"]])); err != nil {
			return nil, fmt.Errorf("line %d: fee_overdue_days: %w", line, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// evaluateAll rejects an invalid threshold config up front; invalid metrics
// only fail their own row.
func evaluateAll(metrics []models.StudentMetrics, cfg models.ThresholdConfig) ([]evaluation, error) {
	if err := service.ValidateThresholds(cfg); err != nil {
		return nil, err
	}
	out := make([]evaluation, 0, len(metrics))
	for _, m := range metrics {
		res, err := service.Evaluate(m, cfg)
		if err != nil {
			out = append(out, evaluation{StudentID: m.StudentID, Error: err.Error()})
			continue
		}
		out = append(out, evaluation{StudentID: m.StudentID, Result: &res})
	}
	return out, nil
}

func writeEvaluations(w io.Writer, results []evaluation, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STUDENT\tLEVEL\tSCORE\tREASONS")
		for _, r := range results {
			if r.Result == nil {
				fmt.Fprintf(tw, "%s\terror\t-\t%s\n", r.StudentID, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", r.StudentID, r.Result.RiskLevel, r.Result.RiskScore, strings.Join(r.Result.Reasons(), ", "))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
