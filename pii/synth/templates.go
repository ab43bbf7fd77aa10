package synth

import (
	"math/rand"
	"strings"
)

// Template is a sentence pattern with a "{v}" slot for the entity value.
// Mention is the substring that gets labeled; empty means "{v}".
type Template struct {
	Pattern string
	Mention string
	Weight  float64
}

// Render fills the template with value and returns the sentence and the
// mention to locate in it.
func (t Template) Render(value string) (sentence, mention string) {
	sentence = strings.ReplaceAll(t.Pattern, "{v}", value)
	if t.Mention == "" {
		return sentence, value
	}
	return sentence, strings.ReplaceAll(t.Mention, "{v}", value)
}

// choose picks one template by weight. A single template is returned
// without touching rng, so adding weights never shifts other draws.
func choose(rng *rand.Rand, templates []Template) Template {
	if len(templates) == 1 {
		return templates[0]
	}
	var total float64
	for _, t := range templates {
		total += t.Weight
	}
	r := rng.Float64() * total
	for _, t := range templates {
		if r < t.Weight {
			return t
		}
		r -= t.Weight
	}
	return templates[len(templates)-1]
}

var (
	nricTemplates = []Template{
		{Pattern: "NRIC: {v} should not be shared.", Weight: 0.3},
		{Pattern: "Client NRIC is {v}.", Weight: 0.7},
	}
	nricObfuscatedTemplate = Template{Pattern: "Client NRIC is {v}.", Weight: 1}
	finTemplate            = Template{Pattern: "The client's FIN is {v}.", Weight: 1}
	passportTemplate       = Template{Pattern: "Passport number {v} must be protected.", Weight: 1}

	apiKeyTemplates = []Template{
		{Pattern: "Here is an API key: {v}.", Weight: 1},
		{Pattern: "Do not share API key {v} with vendors.", Weight: 1},
	}
	accessTokenTemplate = Template{Pattern: "Access token {v} must not leave secure channels.", Weight: 1}

	salaryTemplate     = Template{Pattern: "Salary is {v}.", Weight: 1}
	commissionTemplate = Template{Pattern: "Our commission rate is {v}.", Weight: 1}
	amountTemplate     = Template{Pattern: "The amount is {v}.", Weight: 1}
	pricingTemplate    = Template{Pattern: "Quote price: {v}/user.", Mention: "{v}/user", Weight: 1}

	projectTemplate = Template{Pattern: "{v} launch timeline is confidential.", Weight: 1}
	sourceTemplate  = Template{Pattern: "Do not paste source code like: {v}", Weight: 1}

	invoiceTemplate = Template{Pattern: "Invoice {v} should not leave the company.", Weight: 1}
	poTemplate      = Template{Pattern: "{v} is confidential.", Weight: 1}
	reportTemplate  = Template{Pattern: "Please don't share the {v}.", Weight: 1}

	phoneTemplates = []Template{
		{Pattern: "Call me at {v}", Weight: 0.5},
		{Pattern: "My phone number is {v}.", Weight: 0.5},
	}
	phoneObfuscatedTemplate = Template{Pattern: "Call me at {v}", Weight: 1}
	emailTemplates          = []Template{
		{Pattern: "Send the contract to {v} today.", Weight: 0.5},
		{Pattern: "The billing contact is {v}.", Weight: 0.5},
	}
)

// Negatives are entity-free sentences emitted with all-O labels.
var Negatives = []string{
	"Let's schedule a meeting tomorrow at 3pm.",
	"The weather in Singapore is sunny.",
	"Please review the public documentation.",
	"Can we discuss the UI colors?",
	"Reminder: submit your timesheet.",
	"Our product is great.",
	"This is a general statement.",
}
