package detectors

// DetectorInput represents the input for sensitive span detection
type DetectorInput struct {
	Text string `json:"text"`
}

// DetectorOutput represents the output of sensitive span detection
type DetectorOutput struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}

// Entity is one detected span. It serializes in the token-classification
// pipeline shape: entity_group and word, plus offsets and score.
type Entity struct {
	Label      string  `json:"entity_group"`
	Text       string  `json:"word"`
	StartPos   int     `json:"start"`
	EndPos     int     `json:"end"`
	Confidence float64 `json:"score"`
}
