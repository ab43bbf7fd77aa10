package detectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultModelTimeout = 30 * time.Second

// ModelDetectorOptions tunes the remote model client. Zero values mean no
// rate limit and the default timeout.
type ModelDetectorOptions struct {
	RequestsPerSecond float64
	Timeout           time.Duration
}

// ModelDetector implements Detector by posting text to a model server's
// /detect endpoint.
type ModelDetector struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewModelDetector(baseURL string, opts ModelDetectorOptions) *ModelDetector {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &ModelDetector{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// GetName returns the name of this detector
func (m *ModelDetector) GetName() string {
	return DetectorNameModel
}

// Detect processes the input and returns detected entities
func (m *ModelDetector) Detect(ctx context.Context, input DetectorInput) (DetectorOutput, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return DetectorOutput{}, fmt.Errorf("rate limiter: %w", err)
	}

	// send input to model server using POST request -> baseURL / detect
	jsonData, err := json.Marshal(input)
	if err != nil {
		return DetectorOutput{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/detect", bytes.NewBuffer(jsonData))
	if err != nil {
		return DetectorOutput{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := m.client.Do(req)
	if err != nil {
		return DetectorOutput{}, fmt.Errorf("model server request failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return DetectorOutput{}, fmt.Errorf("model server returned %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	entities, err := convertResponseToEntities(response.Body)
	if err != nil {
		return DetectorOutput{}, err
	}
	sortEntities(entities)

	return DetectorOutput{
		Text:     input.Text,
		Entities: entities,
	}, nil
}

// wireEntity accepts both the pipeline field names and the older
// label/text/start_pos/end_pos/confidence shape.
type wireEntity struct {
	EntityGroup string   `json:"entity_group"`
	Word        string   `json:"word"`
	Start       *int     `json:"start"`
	End         *int     `json:"end"`
	Score       *float64 `json:"score"`

	Label      string   `json:"label"`
	Text       string   `json:"text"`
	StartPos   *int     `json:"start_pos"`
	EndPos     *int     `json:"end_pos"`
	Confidence *float64 `json:"confidence"`
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstInt(a, b *int) int {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return 0
}

func firstFloat(a, b *float64) float64 {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return 0
}

func convertResponseToEntities(body io.Reader) ([]Entity, error) {
	var responseBody struct {
		Entities []wireEntity `json:"entities"`
	}
	if err := json.NewDecoder(body).Decode(&responseBody); err != nil {
		return nil, fmt.Errorf("failed to decode model server response: %w", err)
	}

	entities := make([]Entity, 0, len(responseBody.Entities))
	for _, e := range responseBody.Entities {
		entities = append(entities, Entity{
			Label:      firstString(e.EntityGroup, e.Label),
			Text:       firstString(e.Word, e.Text),
			StartPos:   firstInt(e.Start, e.StartPos),
			EndPos:     firstInt(e.End, e.EndPos),
			Confidence: firstFloat(e.Score, e.Confidence),
		})
	}
	return entities, nil
}

// Close implements the Detector interface
func (m *ModelDetector) Close() error {
	m.client.CloseIdleConnections()
	return nil
}
