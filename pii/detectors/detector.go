// Package detectors provides the sensitive span detectors the evaluator runs
// against: pattern based, a local ONNX token-classification model, and a
// remote model server.
package detectors

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	DetectorNameModel     = "model_detector"
	DetectorNameRegex     = "regex_detector"
	DetectorNameONNXModel = "onnx_model_detector"
)

type Detector interface {
	GetName() string
	Detect(ctx context.Context, input DetectorInput) (DetectorOutput, error)
	Close() error
}

type NewDetectorFunc func(config map[string]interface{}) (Detector, error)

var detectorFactories = make(map[string]NewDetectorFunc)

func RegisterDetectorFactory(name string, factory NewDetectorFunc) {
	detectorFactories[name] = factory
}

func NewDetector(name string, config map[string]interface{}) (Detector, error) {
	factory, ok := detectorFactories[name]
	if !ok {
		return nil, fmt.Errorf("detector factory not found for name: %s", name)
	}
	return factory(config)
}

// DetectorNames lists the registered factories in sorted order.
func DetectorNames() []string {
	names := make([]string, 0, len(detectorFactories))
	for name := range detectorFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	// Register built-in detector factories
	RegisterDetectorFactory(DetectorNameModel, func(config map[string]interface{}) (Detector, error) {
		baseURL, ok := config["base_url"].(string)
		if !ok || baseURL == "" {
			return nil, fmt.Errorf("base_url is required for model detector")
		}
		opts := ModelDetectorOptions{}
		if v, ok := config["requests_per_second"].(float64); ok {
			opts.RequestsPerSecond = v
		}
		if v, ok := config["timeout"].(time.Duration); ok {
			opts.Timeout = v
		}
		return NewModelDetector(baseURL, opts), nil
	})

	RegisterDetectorFactory(DetectorNameRegex, func(config map[string]interface{}) (Detector, error) {
		return NewRegexDetector(DefaultPatterns), nil
	})

	RegisterDetectorFactory(DetectorNameONNXModel, func(config map[string]interface{}) (Detector, error) {
		modelDir, ok := config["model_dir"].(string)
		if !ok || modelDir == "" {
			return nil, fmt.Errorf("model_dir is required for ONNX model detector")
		}
		libPath, _ := config["onnx_library_path"].(string)
		return NewONNXModelDetector(modelDir, libPath)
	})
}

func CloseDetector(detector Detector) error {
	return detector.Close()
}

// sortEntities orders entities by position, then label, so output does not
// depend on map iteration order.
func sortEntities(entities []Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if a.StartPos != b.StartPos {
			return a.StartPos < b.StartPos
		}
		if a.EndPos != b.EndPos {
			return a.EndPos < b.EndPos
		}
		return a.Label < b.Label
	})
}
