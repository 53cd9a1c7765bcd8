package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai"
	"github.com/fairyhunter13/resume-matcher/internal/app"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

func newBackendsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "Report similarity backend availability, readiness and breaker state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := struct {
				Provider  string               `json:"embeddings_provider"`
				Backends  []domain.BackendInfo `json:"backends"`
				Readiness []app.ReadinessCheck `json:"readiness"`
				Breaker   ai.BreakerStats      `json:"breaker"`
			}{
				Provider:  rt.cfg.Provider(),
				Backends:  rt.app.Evaluator.Backends(ctx),
				Readiness: rt.app.Readiness(ctx),
				Breaker:   rt.app.Registry.BreakerStats(),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
