package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// WriteDataset serializes the dataset as JSON at path, creating parent
// directories as needed.
func WriteDataset(dataset domain.Dataset, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(dataset); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
