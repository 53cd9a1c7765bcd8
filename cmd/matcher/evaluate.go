package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	obsctx "github.com/fairyhunter13/resume-matcher/internal/observability"
)

type evaluateFlags struct {
	resume         string
	jd             string
	depth          string
	resumeSections string
	jdSections     string
	compact        bool
}

func newEvaluateCmd(rt *runtime) *cobra.Command {
	f := &evaluateFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a résumé against a job description and print the report as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, rt, f)
		},
	}
	cmd.Flags().StringVarP(&f.resume, "resume", "r", "", "path to the résumé text file")
	cmd.Flags().StringVarP(&f.jd, "jd", "j", "", "path to the job description text file")
	cmd.Flags().StringVar(&f.depth, "depth", string(domain.DepthStandard), "analysis depth: quick, standard, deep or comprehensive")
	cmd.Flags().StringVar(&f.resumeSections, "resume-sections", "", "JSON file mapping section names to résumé lines (skips extraction)")
	cmd.Flags().StringVar(&f.jdSections, "jd-sections", "", "JSON file mapping section names to job description lines (skips extraction)")
	cmd.Flags().BoolVar(&f.compact, "compact", false, "print single-line JSON")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("jd")
	return cmd
}

func runEvaluate(cmd *cobra.Command, rt *runtime, f *evaluateFlags) error {
	resume, err := os.ReadFile(f.resume)
	if err != nil {
		return fmt.Errorf("read résumé: %w", err)
	}
	jd, err := os.ReadFile(f.jd)
	if err != nil {
		return fmt.Errorf("read job description: %w", err)
	}
	rs, err := readSections(f.resumeSections)
	if err != nil {
		return err
	}
	js, err := readSections(f.jdSections)
	if err != nil {
		return err
	}

	id := obsctx.NewEvaluationID()
	ctx := obsctx.WithEvaluation(cmd.Context(), slog.Default(), id)
	report, err := rt.app.Evaluator.EvaluateWithSections(ctx, string(resume), string(jd), rs, js, domain.Depth(f.depth))
	if err != nil {
		return err
	}

	out := struct {
		EvaluationID string `json:"evaluation_id"`
		domain.Report
	}{EvaluationID: id, Report: report}
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !f.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

// readSections returns nil for an empty path so the document is extracted.
func readSections(path string) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sections: %w", err)
	}
	var m map[string][]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse sections %s: %w", path, err)
	}
	return m, nil
}
