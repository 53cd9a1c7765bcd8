package ai

import (
	"fmt"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

func countMismatch(want, got int) error {
	return fmt.Errorf("%w: embedder returned %d vectors for %d texts", domain.ErrInternal, got, want)
}
