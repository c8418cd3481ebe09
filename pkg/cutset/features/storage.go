package features

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// StorageGob identifies matrices serialized with encoding/gob, the
// only storage type currently written.
const StorageGob = "gob"

// WriteMatrix stores a feature matrix at path, creating parent
// directories as needed.
func WriteMatrix(path string, matrix [][]float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating feature directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating feature file: %w", err)
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(matrix); err != nil {
		return fmt.Errorf("encoding feature matrix %s: %w", path, err)
	}
	return nil
}

// ReadMatrix loads a feature matrix written by WriteMatrix.
func ReadMatrix(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feature file: %w", err)
	}
	defer file.Close()
	var matrix [][]float64
	if err := gob.NewDecoder(file).Decode(&matrix); err != nil {
		return nil, fmt.Errorf("decoding feature matrix %s: %w", path, err)
	}
	return matrix, nil
}

// MatrixBytes estimates the in-memory size of a matrix in bytes.
func MatrixBytes(matrix [][]float64) int {
	n := 0
	for _, row := range matrix {
		n += 8 * len(row)
	}
	return n
}
