package detectors

// DefaultPatterns defines regex patterns for the sensitive categories the
// evaluator knows about. When a pattern has a capture group, the first group
// is reported instead of the whole match.
var DefaultPatterns = map[string]string{
	"EMAIL":          `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
	"PHONENUMBER":    `(?:\(\d{3}\)\s?|\b\d{3}[-.])\d{3}[-.]\d{4}\b`,
	"SSN":            `\b\d{3}-\d{2}-\d{4}\b`,
	"KEY":            `\bAKIA[0-9A-Z]{16}\b`,
	"API_KEY":        `\bsk-[A-Za-z0-9-]{16,}`,
	"ACCESS_TOKEN":   `\beyJ[A-Za-z0-9_-]{10,}`,
	"NRIC":           `\b[STG]\d{7}[A-Z]\b`,
	"FIN":            `\bF\d{7}[A-Z]\b`,
	"INVOICE_ID":     `\bINV-\d{4}-\d{6}\b`,
	"PO_NUMBER":      `\bPO-\d{5,6}\b`,
	"FINANCIAL":      `(?:S\$|SGD|\$)\d{1,3}(?:,\d{3})+(?:\.\d{2})?|(?:S\$|SGD|\$)\d+(?:\.\d{2})?`,
	"ACCOUNT_NUMBER": `\b(?:account|acct)(?: number)?(?: is)?[\s#:]*(\d{8,12})\b`,
}
