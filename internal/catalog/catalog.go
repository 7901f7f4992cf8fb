package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geoassist/server/internal/assistant/model"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed datasets.json
var datasetsJSON []byte

//go:embed schema.json
var schemaJSON []byte

// Load validates the embedded catalog against its schema and returns the
// dataset descriptors. The result is built once at process start; callers
// must treat the slice as read-only.
func Load() ([]model.Dataset, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(datasetsJSON)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		return nil, fmt.Errorf("catalog schema violations: %s", strings.Join(issues, "; "))
	}

	var datasets []model.Dataset
	if err := json.Unmarshal(datasetsJSON, &datasets); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return datasets, nil
}

// MustLoad is for process start where a broken embedded catalog is fatal.
func MustLoad() []model.Dataset {
	datasets, err := Load()
	if err != nil {
		panic(err)
	}
	return datasets
}

// ByID finds a dataset descriptor in the loaded catalog.
func ByID(datasets []model.Dataset, id string) (*model.Dataset, bool) {
	for i := range datasets {
		if datasets[i].ID == id {
			return &datasets[i], true
		}
	}
	return nil, false
}
