package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// FileSource reads a JSON dataset as written by the datagen tool.
type FileSource struct {
	path string
}

func NewFile(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var ds domain.Dataset
	if err := json.NewDecoder(f).Decode(&ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode dataset %s: %w", s.path, err)
	}
	return ds, nil
}

// Ping checks that the dataset file is still there.
func (s *FileSource) Ping(context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

func (s *FileSource) Close(context.Context) error {
	return nil
}
