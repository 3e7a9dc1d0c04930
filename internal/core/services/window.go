package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

// Window returns the first count summaries, or all of them when count is
// domain.WindowAll or larger than the input. The input order is kept.
func Window(summaries []domain.SupplierSummary, count domain.WindowSize) []domain.SupplierSummary {
	if count == domain.WindowAll || int(count) >= len(summaries) {
		return summaries
	}
	if count <= 0 {
		return summaries[:0]
	}
	return summaries[:count]
}

// ParseWindowSize reads a display count. "ALL" (any case) selects every
// summary; any positive integer is accepted as is, including values outside
// domain.RecognizedWindows. An empty string yields domain.DefaultWindow.
func ParseWindowSize(s string) (domain.WindowSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.DefaultWindow, nil
	}
	if strings.EqualFold(s, "all") {
		return domain.WindowAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidWindow, s)
	}
	return domain.WindowSize(n), nil
}

func FormatWindowSize(w domain.WindowSize) string {
	if w == domain.WindowAll {
		return "ALL"
	}
	return strconv.Itoa(int(w))
}
