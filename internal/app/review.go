package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sow_rag/internal/compliance"
	"sow_rag/internal/document"
)

// ReviewFile runs a compliance review of any supported document. When an
// output path is set the markdown report is written there.
func (a *App) ReviewFile(ctx context.Context, path, product, tier string) (compliance.Review, error) {
	doc, err := document.Load(path)
	if err != nil {
		return compliance.Review{}, err
	}

	a.log.Info("reviewing document", "file", path, "bytes", len(doc.Content), "product", product, "tier", tier)

	rv := a.reviewer.Review(ctx, compliance.Request{
		SOWText:    doc.Content,
		Product:    product,
		ClientTier: tier,
	})

	if a.outputPath != "" {
		if err := saveReview(filepath.Base(path), rv, a.outputPath); err != nil {
			return rv, fmt.Errorf("failed to save report: %w", err)
		}
		a.log.Info("report saved", "file", a.outputPath)
	}
	return rv, nil
}

// RenderReview formats a review as markdown: the findings report followed
// by the score and the checks that ran.
func RenderReview(fileName string, rv compliance.Review) string {
	var buf strings.Builder

	buf.WriteString(compliance.Report(rv.Findings))
	buf.WriteString("\n## Review Summary\n\n")
	fmt.Fprintf(&buf, "- **Document:** %s\n", fileName)
	fmt.Fprintf(&buf, "- **Review ID:** %s\n", rv.ID)
	fmt.Fprintf(&buf, "- **Reviewed at:** %s\n", rv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "- **Compliance score:** %d/100 (%s)\n", rv.Score, rv.Status)
	fmt.Fprintf(&buf, "- **Findings:** %d HIGH, %d MEDIUM, %d LOW\n", rv.Summary.High, rv.Summary.Medium, rv.Summary.Low)
	if len(rv.Checks) > 0 {
		fmt.Fprintf(&buf, "- **Checks run:** %s\n", strings.Join(rv.Checks, ", "))
	}

	if rv.Incomplete {
		buf.WriteString("\n### Skipped Checks\n\n")
		for _, s := range rv.Skipped {
			fmt.Fprintf(&buf, "- %s: %s\n", s.Check, s.Reason)
		}
	}

	return buf.String()
}

func saveReview(fileName string, rv compliance.Review, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outputPath, []byte(RenderReview(fileName, rv)), 0o644)
}
