// Package entities defines the closed vocabulary of sensitive entity types
// and the BIO labels derived from them.
package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEntityType is returned when a name is not part of the vocabulary.
var ErrUnknownEntityType = errors.New("unknown entity type")

// ErrUnknownLabel is returned when a string is not a valid BIO label.
var ErrUnknownLabel = errors.New("unknown label")

// EntityType classifies a sensitive mention.
type EntityType int

const (
	NRIC EntityType = iota
	FIN
	Passport
	APIKey
	AccessToken
	Salary
	CommissionRate
	AmountMoney
	AccountBalance
	Budget
	InvoiceID
	PONumber
	FinancialReport
	PricingTerm
	ProjectCode
	SourceCode
	Phone
	Email
)

var entityTypeNames = [...]string{
	NRIC:            "NRIC",
	FIN:             "FIN",
	Passport:        "PASSPORT",
	APIKey:          "API_KEY",
	AccessToken:     "ACCESS_TOKEN",
	Salary:          "SALARY",
	CommissionRate:  "COMMISSION_RATE",
	AmountMoney:     "AMOUNT_MONEY",
	AccountBalance:  "ACCOUNT_BALANCE",
	Budget:          "BUDGET",
	InvoiceID:       "INVOICE_ID",
	PONumber:        "PO_NUMBER",
	FinancialReport: "FINANCIAL_REPORT",
	PricingTerm:     "PRICING_TERM",
	ProjectCode:     "PROJECT_CODE",
	SourceCode:      "SOURCE_CODE",
	Phone:           "PHONE",
	Email:           "EMAIL",
}

var entityTypeFromName = func() map[string]EntityType {
	m := make(map[string]EntityType, len(entityTypeNames))
	for i, name := range entityTypeNames {
		m[name] = EntityType(i)
	}
	return m
}()

// All returns every entity type in vocabulary order.
func All() []EntityType {
	out := make([]EntityType, len(entityTypeNames))
	for i := range entityTypeNames {
		out[i] = EntityType(i)
	}
	return out
}

// Valid reports whether t is a member of the vocabulary.
func (t EntityType) Valid() bool {
	return t >= 0 && int(t) < len(entityTypeNames)
}

// String returns the label name of the entity type, e.g. "API_KEY".
func (t EntityType) String() string {
	if t.Valid() {
		return entityTypeNames[t]
	}
	return fmt.Sprintf("EntityType(%d)", int(t))
}

// ParseEntityType maps a name such as "NRIC" back to its EntityType.
func ParseEntityType(name string) (EntityType, error) {
	t, ok := entityTypeFromName[strings.TrimSpace(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEntityType, name)
	}
	return t, nil
}

// MarshalJSON encodes the entity type as its name.
func (t EntityType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntityType, int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a name into an EntityType, rejecting unknown names.
func (t *EntityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseEntityType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
