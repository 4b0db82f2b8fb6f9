package schedule

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runsheethq/runsheet/internal/errors"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// Repository defines loading and saving of schedule requests and results.
// The interface enables dependency injection and makes testing easier.
type Repository interface {
	// LoadRequest reads a schedule request from a file
	LoadRequest(path string) (*types.Request, error)

	// SaveRequest writes a schedule request to a file
	SaveRequest(req *types.Request, path string) error

	// LoadResult reads a previously saved schedule result from a file
	LoadResult(path string) (*types.Result, error)

	// SaveResult writes a schedule result to a file
	SaveResult(result *types.Result, path string) error
}

// FileRepository implements Repository over the local filesystem. The format
// follows the file extension: .json is JSON, everything else is YAML.
type FileRepository struct{}

// NewFileRepository creates a new file-based repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// LoadRequest reads a schedule request from a YAML or JSON file
func (r *FileRepository) LoadRequest(path string) (*types.Request, error) {
	var req types.Request
	if err := r.load(path, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// SaveRequest writes a schedule request to a file
func (r *FileRepository) SaveRequest(req *types.Request, path string) error {
	return r.save(req, path)
}

// LoadResult reads a schedule result from a YAML or JSON file
func (r *FileRepository) LoadResult(path string) (*types.Result, error) {
	var result types.Result
	if err := r.load(path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveResult writes a schedule result to a file
func (r *FileRepository) SaveResult(result *types.Result, path string) error {
	return r.save(result, path)
}

func (r *FileRepository) load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewRequestNotFoundError(path)
		}
		return errors.NewFileReadError(path, err)
	}

	if isJSON(path) {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.NewRequestUnmarshalError(path, "json", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.NewRequestUnmarshalError(path, "yaml", err)
	}
	return nil
}

func (r *FileRepository) save(in any, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(in, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(in)
	}
	if err != nil {
		return errors.NewFileWriteError(path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileWriteError(path, err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Default instance for package-level functions
var defaultRepository = NewFileRepository()

// LoadRequest reads a schedule request using the default repository.
func LoadRequest(path string) (*types.Request, error) {
	return defaultRepository.LoadRequest(path)
}

// SaveRequest writes a schedule request using the default repository.
func SaveRequest(req *types.Request, path string) error {
	return defaultRepository.SaveRequest(req, path)
}

// LoadResult reads a schedule result using the default repository.
func LoadResult(path string) (*types.Result, error) {
	return defaultRepository.LoadResult(path)
}

// SaveResult writes a schedule result using the default repository.
func SaveResult(result *types.Result, path string) error {
	return defaultRepository.SaveResult(result, path)
}
