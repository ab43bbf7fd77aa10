//go:build onnx

package detectors

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/daulet/tokenizers"
	onnxruntime "github.com/yalue/onnxruntime_go"
)

const maxSeqLen = 512

// ONNXModelDetector implements Detector with a local token-classification
// model. Inference reuses preallocated tensors, so calls are serialized.
type ONNXModelDetector struct {
	mu           sync.Mutex
	tokenizer    *tokenizers.Tokenizer
	session      *onnxruntime.AdvancedSession
	inputTensor  *onnxruntime.Tensor[int64]
	maskTensor   *onnxruntime.Tensor[int64]
	outputTensor *onnxruntime.Tensor[float32]
	id2label     map[int]string
	numLabels    int
	modelPath    string
}

// resolveLibraryPath picks the onnxruntime shared library: explicit path,
// then ONNXRUNTIME_SHARED_LIBRARY_PATH, then well-known locations.
func resolveLibraryPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
		return p
	}
	for _, path := range []string{
		"./libonnxruntime.so",
		"./build/libonnxruntime.so",
		"./libonnxruntime.1.23.1.dylib",
		"./build/libonnxruntime.1.23.1.dylib",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// NewONNXModelDetector loads the model directory and initializes the runtime.
func NewONNXModelDetector(modelDir string, libraryPath string) (*ONNXModelDetector, error) {
	cfg, err := ValidateModelDirectory(modelDir)
	if err != nil {
		return nil, err
	}

	id2label, err := LoadLabelMappings(cfg.LabelMapPath)
	if err != nil {
		return nil, err
	}

	if p := resolveLibraryPath(libraryPath); p != "" {
		onnxruntime.SetSharedLibraryPath(p)
	}
	if !onnxruntime.IsInitialized() {
		if err := onnxruntime.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX Runtime environment: %w", err)
		}
	}

	tk, err := tokenizers.FromFile(cfg.TokenizerPath)
	if err != nil {
		if err := onnxruntime.DestroyEnvironment(); err != nil {
			log.Printf("[Detector] Warning: failed to destroy environment during cleanup: %v", err)
		}
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	return &ONNXModelDetector{
		tokenizer: tk,
		id2label:  id2label,
		numLabels: len(id2label),
		modelPath: cfg.ModelPath,
	}, nil
}

// GetName returns the name of this detector
func (d *ONNXModelDetector) GetName() string {
	return DetectorNameONNXModel
}

// Detect processes the input and returns detected entities
func (d *ONNXModelDetector) Detect(ctx context.Context, input DetectorInput) (DetectorOutput, error) {
	if err := ctx.Err(); err != nil {
		return DetectorOutput{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Initialize session and tensors on first use
	if d.session == nil {
		if err := d.initializeSession(); err != nil {
			return DetectorOutput{}, fmt.Errorf("failed to initialize session: %w", err)
		}
	}

	encoding := d.tokenizer.EncodeWithOptions(input.Text, true, tokenizers.WithReturnOffsets())
	tokenIDs := encoding.IDs
	if len(tokenIDs) > maxSeqLen {
		tokenIDs = tokenIDs[:maxSeqLen]
	}
	offsets := make([]charSpan, 0, len(tokenIDs))
	for i := 0; i < len(tokenIDs) && i < len(encoding.Offsets); i++ {
		offsets = append(offsets, charSpan(encoding.Offsets[i]))
	}

	inputIDs := make([]int64, len(tokenIDs))
	for i := range tokenIDs {
		inputIDs[i] = int64(tokenIDs[i])
	}
	d.updateInputTensors(inputIDs)

	if err := d.session.Run(); err != nil {
		return DetectorOutput{}, fmt.Errorf("failed to run inference: %w", err)
	}

	entities := decodeEntities(input.Text, d.outputTensor.GetData(), d.numLabels, d.id2label, offsets)
	return DetectorOutput{
		Text:     input.Text,
		Entities: entities,
	}, nil
}

// initializeSession initializes the ONNX session and tensors
func (d *ONNXModelDetector) initializeSession() error {
	inputShape := onnxruntime.NewShape(1, maxSeqLen)
	inputTensor, err := onnxruntime.NewTensor(inputShape, make([]int64, maxSeqLen))
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}

	maskTensor, err := onnxruntime.NewTensor(inputShape, make([]int64, maxSeqLen))
	if err != nil {
		destroyValues(inputTensor)
		return fmt.Errorf("failed to create mask tensor: %w", err)
	}

	outputShape := onnxruntime.NewShape(1, maxSeqLen, int64(d.numLabels))
	outputTensor, err := onnxruntime.NewEmptyTensor[float32](outputShape)
	if err != nil {
		destroyValues(inputTensor, maskTensor)
		return fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := onnxruntime.NewAdvancedSession(d.modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]onnxruntime.Value{inputTensor, maskTensor},
		[]onnxruntime.Value{outputTensor},
		nil)
	if err != nil {
		destroyValues(inputTensor, maskTensor, outputTensor)
		return fmt.Errorf("failed to create session: %w", err)
	}

	d.session = session
	d.inputTensor = inputTensor
	d.maskTensor = maskTensor
	d.outputTensor = outputTensor
	return nil
}

func destroyValues(values ...onnxruntime.Value) {
	for _, v := range values {
		if err := v.Destroy(); err != nil {
			log.Printf("[Detector] Warning: failed to destroy tensor during cleanup: %v", err)
		}
	}
}

// updateInputTensors zero-fills the tensors and copies the new ids in; the
// attention mask covers exactly the real tokens.
func (d *ONNXModelDetector) updateInputTensors(inputIDs []int64) {
	inputData := d.inputTensor.GetData()
	maskData := d.maskTensor.GetData()
	for i := range inputData {
		inputData[i] = 0
		maskData[i] = 0
	}
	copy(inputData, inputIDs)
	for i := range inputIDs {
		maskData[i] = 1
	}
}

// Close implements the Detector interface
func (d *ONNXModelDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		if err := d.session.Destroy(); err != nil {
			log.Printf("[Detector] Warning: failed to destroy session: %v", err)
		}
		d.session = nil
	}
	if d.inputTensor != nil {
		destroyValues(d.inputTensor, d.maskTensor, d.outputTensor)
		d.inputTensor, d.maskTensor, d.outputTensor = nil, nil, nil
	}
	if d.tokenizer != nil {
		if err := d.tokenizer.Close(); err != nil {
			log.Printf("[Detector] Warning: failed to close tokenizer: %v", err)
		}
		d.tokenizer = nil
	}
	if err := onnxruntime.DestroyEnvironment(); err != nil {
		return fmt.Errorf("failed to destroy ONNX Runtime environment: %w", err)
	}
	return nil
}
