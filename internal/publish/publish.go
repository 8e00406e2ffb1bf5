// Package publish writes weekly reviews out as markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"protanni/internal/model"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteReview writes <toDir>/reviews/<week_start>.md.
func WriteReview(r model.WeeklyReview, toDir string, opt WriteOptions) (WriteResult, error) {
	if strings.TrimSpace(r.WeekStart) == "" {
		return WriteResult{}, errors.New("review has no week_start")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	outDir := filepath.Join(toDir, "reviews")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	outPath := filepath.Join(outDir, r.WeekStart+".md")
	if err := writeFile(outPath, []byte(RenderReviewMarkdown(r)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{outPath}}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
