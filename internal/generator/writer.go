package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	nodesFile    = "nodes.json"
	segmentsFile = "segments.json"
)

// WriteDataset serializes the dataset into nodes.json and segments.json under the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, nodesFile), dataset.Nodes); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, segmentsFile), dataset.Segments); err != nil {
		return err
	}
	return nil
}

// DatasetPaths returns the node and segment file locations under dir.
func DatasetPaths(dir string) (string, string) {
	return filepath.Join(dir, nodesFile), filepath.Join(dir, segmentsFile)
}

// LoadDataset reads a dataset previously written by WriteDataset.
func LoadDataset(dir string) (Dataset, error) {
	nodesPath, segmentsPath := DatasetPaths(dir)
	var dataset Dataset
	if err := readJSON(nodesPath, &dataset.Nodes); err != nil {
		return Dataset{}, err
	}
	if err := readJSON(segmentsPath, &dataset.Segments); err != nil {
		return Dataset{}, err
	}
	return dataset, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
