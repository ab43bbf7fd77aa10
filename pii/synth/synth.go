// Package synth builds labeled sentences for every sensitive entity family
// from templates, generated values and digit-spelled variants.
package synth

import (
	"log"
	"math/rand"

	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/entities"
	"github.com/hannes/kiji-ner/pii/generators"
	"github.com/hannes/kiji-ner/pii/noise"
	"github.com/hannes/kiji-ner/pii/tagging"
	"github.com/hannes/kiji-ner/pii/tokenizer"
)

// Options controls a synthesis run.
type Options struct {
	PerLabel        int     // iterations per entity family and negatives drawn
	NoiseRate       float64 // probability an example goes through the perturber
	ObfuscationRate float64 // probability of an extra digit-spelled example
	Contact         bool    // emit PHONE and EMAIL families
	Verbose         bool
}

// DefaultOptions matches the reference dataset: 20 per family, a quarter of
// examples noised, half of NRICs and phones also spelled out.
func DefaultOptions() Options {
	return Options{
		PerLabel:        20,
		NoiseRate:       0.25,
		ObfuscationRate: 0.5,
		Contact:         true,
	}
}

// Synthesizer generates examples. Every random choice, including the noise
// pass and the final shuffle, is drawn from one rng in a fixed order, so the
// same seed reproduces the same dataset.
type Synthesizer struct {
	rng       *rand.Rand
	perturber *noise.Perturber
	opts      Options
}

// New creates a synthesizer drawing from rng.
func New(rng *rand.Rand, opts Options) *Synthesizer {
	return &Synthesizer{
		rng:       rng,
		perturber: noise.NewPerturber(rng),
		opts:      opts,
	}
}

// Perturber exposes the noise settings for tuning.
func (s *Synthesizer) Perturber() *noise.Perturber {
	return s.perturber
}

// Build synthesizes all examples and partitions them.
func (s *Synthesizer) Build(split dataset.Split) *dataset.Dataset {
	ds := dataset.Assemble(s.rng, s.Synthesize(), split)
	if s.opts.Verbose {
		log.Printf("[Synth] Split %d examples into train=%d validation=%d test=%d",
			ds.Size(), len(ds.Train), len(ds.Validation), len(ds.Test))
	}
	return ds
}

// Synthesize returns the unshuffled examples: one block per family in a
// fixed order, then negatives, then the noise pass.
func (s *Synthesizer) Synthesize() []dataset.Example {
	var b builder
	n := s.opts.PerLabel

	for i := 0; i < n; i++ {
		s.identity(&b)
	}
	for i := 0; i < n; i++ {
		s.secrets(&b)
	}
	for i := 0; i < n; i++ {
		s.financial(&b)
	}
	for i := 0; i < n; i++ {
		s.corporate(&b)
	}
	for i := 0; i < n; i++ {
		s.documents(&b)
	}
	if s.opts.Contact {
		for i := 0; i < n; i++ {
			s.contact(&b)
		}
	}
	for i := 0; i < n; i++ {
		b.negative(Negatives[s.rng.Intn(len(Negatives))])
	}

	noised := 0
	for i, ex := range b.examples {
		if s.rng.Float64() < s.opts.NoiseRate {
			b.examples[i] = s.perturber.Apply(ex)
			noised++
		}
	}

	if s.opts.Verbose {
		log.Printf("[Synth] Generated %d examples (%d unlocatable, %d noised)", len(b.examples), b.missed, noised)
	}
	return b.examples
}

func (s *Synthesizer) identity(b *builder) {
	nric := generators.NRICGenerator(s.rng)
	b.add(choose(s.rng, nricTemplates), nric, entities.NRIC)
	if s.rng.Float64() < s.opts.ObfuscationRate {
		b.add(nricObfuscatedTemplate, generators.ObfuscateDigits(nric), entities.NRIC)
	}

	b.add(finTemplate, generators.FINGenerator(s.rng), entities.FIN)
	b.add(passportTemplate, generators.PassportGenerator(s.rng), entities.Passport)
}

func (s *Synthesizer) secrets(b *builder) {
	key := generators.APIKeyGenerator(s.rng)
	for _, t := range apiKeyTemplates {
		b.add(t, key, entities.APIKey)
	}
	b.add(accessTokenTemplate, generators.AccessTokenGenerator(s.rng), entities.AccessToken)
}

// financial shares one money value across the money-bearing families.
func (s *Synthesizer) financial(b *builder) {
	money := generators.MoneyGenerator(s.rng)
	b.add(salaryTemplate, money, entities.Salary)
	b.add(commissionTemplate, generators.PercentGenerator(s.rng), entities.CommissionRate)
	b.add(amountTemplate, money, entities.AmountMoney)

	balance := Template{Pattern: generators.BalancePhraseGenerator(s.rng) + " {v}", Weight: 1}
	b.add(balance, money, entities.AccountBalance)

	budget := Template{Pattern: generators.BudgetPhraseGenerator(s.rng) + " {v}.", Weight: 1}
	b.add(budget, money, entities.Budget)

	b.add(pricingTemplate, money, entities.PricingTerm)
}

func (s *Synthesizer) corporate(b *builder) {
	b.add(projectTemplate, generators.ProjectGenerator(s.rng), entities.ProjectCode)
	b.add(sourceTemplate, generators.SourceSnippetGenerator(s.rng), entities.SourceCode)
}

func (s *Synthesizer) documents(b *builder) {
	b.add(invoiceTemplate, generators.InvoiceGenerator(s.rng), entities.InvoiceID)
	b.add(poTemplate, generators.PONumberGenerator(s.rng), entities.PONumber)
	b.add(reportTemplate, generators.FinancialReportGenerator(s.rng), entities.FinancialReport)
}

func (s *Synthesizer) contact(b *builder) {
	phone := generators.PhoneGenerator(s.rng)
	b.add(choose(s.rng, phoneTemplates), phone, entities.Phone)
	if s.rng.Float64() < s.opts.ObfuscationRate {
		b.add(phoneObfuscatedTemplate, generators.ObfuscateDigits(phone), entities.Phone)
	}
	b.add(choose(s.rng, emailTemplates), generators.EmailGenerator(s.rng), entities.Email)
}

type builder struct {
	examples []dataset.Example
	missed   int
}

func (b *builder) add(t Template, value string, typ entities.EntityType) {
	sentence, mention := t.Render(value)
	tokens, labels := tagging.Label(sentence, mention, typ)
	if !hasEntity(labels) {
		b.missed++
	}
	b.examples = append(b.examples, dataset.Example{Tokens: tokens, Labels: labels})
}

func (b *builder) negative(sentence string) {
	tokens := tokenizer.Tokenize(sentence)
	b.examples = append(b.examples, dataset.Example{
		Tokens: tokens,
		Labels: tagging.Tag(tokens, nil, 0),
	})
}

func hasEntity(labels []entities.Label) bool {
	for _, l := range labels {
		if !l.IsOutside() {
			return true
		}
	}
	return false
}
