package generators

import (
	"fmt"
	"math/rand"
	"strings"
)

// Surface-form generators for each entity family. Every generator draws only
// from the rng it is given, so a seeded rng reproduces the same values.

const (
	alnum      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenChars = alnum + "_-"
)

// randInt returns a uniform integer in [lo, hi].
func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func pick(rng *rand.Rand, choices []string) string {
	return choices[rng.Intn(len(choices))]
}

func randString(rng *rand.Rand, charset string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rng.Intn(len(charset))]
	}
	return string(b)
}

func digits(rng *rand.Rand, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + randInt(rng, 0, 9)))
	}
	return sb.String()
}

// NRICGenerator generates a Singapore NRIC-shaped identifier: a prefix
// letter, seven digits and a checksum-style letter.
func NRICGenerator(rng *rand.Rand) string {
	prefix := pick(rng, strings.Split("STFG", ""))
	body := digits(rng, 7)
	suffix := pick(rng, strings.Split("ABCDEFGHIZJKLMPQRTUWXVY", ""))
	return prefix + body + suffix
}

// FINGenerator generates a foreign identification number.
func FINGenerator(rng *rand.Rand) string {
	body := digits(rng, 7)
	return "F" + body + pick(rng, strings.Split("ABCDEFGHIZ", ""))
}

var passportPool = []string{"E12345678", "K98765432", "T34567891"}

// PassportGenerator picks a passport number from a fixed pool.
func PassportGenerator(rng *rand.Rand) string {
	return pick(rng, passportPool)
}

// APIKeyGenerator generates an sk- prefixed secret key of 16 to 28
// alphanumeric characters.
func APIKeyGenerator(rng *rand.Rand) string {
	n := randInt(rng, 16, 28)
	return "sk-" + randString(rng, alnum, n)
}

// AccessTokenGenerator generates a JWT-looking bearer token.
func AccessTokenGenerator(rng *rand.Rand) string {
	return "eyJ" + randString(rng, tokenChars, 20)
}

var currencyHeads = []string{"S$", "SGD", "$"}

// MoneyGenerator generates a monetary amount with a currency head. One in
// five amounts uses thousands grouping and two in five carry cents.
func MoneyGenerator(rng *rand.Rand) string {
	head := pick(rng, currencyHeads)
	var val string
	if rng.Float64() < 0.2 {
		val = fmt.Sprintf("%d,%d,%d", randInt(rng, 1, 5), randInt(rng, 100, 999), randInt(rng, 100, 999))
	} else {
		val = fmt.Sprintf("%d", randInt(rng, 100, 20000))
	}
	if rng.Float64() < 0.4 {
		val = fmt.Sprintf("%s.%02d", val, randInt(rng, 0, 99))
	}
	return head + val
}

var percentPool = []string{"18%", "12 %", "20%", "ten percent", "eighteen percent"}

// PercentGenerator generates a commission rate, numerically or in words.
func PercentGenerator(rng *rand.Rand) string {
	return pick(rng, percentPool)
}

var projectPool = []string{"Project LionX", "Codename TigerRay", "ProjX", "PhoenixAlpha"}

// ProjectGenerator picks an internal project codename.
func ProjectGenerator(rng *rand.Rand) string {
	return pick(rng, projectPool)
}

var sourcePool = []string{
	"def login(user, pwd): return True",
	"api_secret = 'xyz789'",
	"token = get_token()",
}

// SourceSnippetGenerator picks a source-code-like snippet.
func SourceSnippetGenerator(rng *rand.Rand) string {
	return pick(rng, sourcePool)
}

// InvoiceGenerator generates INV-<year>-<6 digits>.
func InvoiceGenerator(rng *rand.Rand) string {
	return fmt.Sprintf("INV-%d-%06d", randInt(rng, 2023, 2026), randInt(rng, 0, 999999))
}

// PONumberGenerator generates a purchase order number.
func PONumberGenerator(rng *rand.Rand) string {
	return fmt.Sprintf("PO-%d", randInt(rng, 10000, 999999))
}

// FinancialReportGenerator generates a quarterly report title.
func FinancialReportGenerator(rng *rand.Rand) string {
	q := pick(rng, []string{"Q1", "Q2", "Q3", "Q4"})
	y := randInt(rng, 2023, 2026)
	return fmt.Sprintf("%s %d financial report", q, y)
}

// BudgetPhraseGenerator generates the lead-in for a budget sentence.
func BudgetPhraseGenerator(rng *rand.Rand) string {
	return fmt.Sprintf("Budget FY%d is", randInt(rng, 24, 26))
}

// BalancePhraseGenerator generates the lead-in for a balance sentence.
func BalancePhraseGenerator(rng *rand.Rand) string {
	return pick(rng, []string{"balance is", "current balance:", "acct balance:"})
}

// PhoneGenerator generates dummy phone numbers
func PhoneGenerator(rng *rand.Rand) string {
	areaCode := 200 + rng.Intn(800)
	exchange := 200 + rng.Intn(800)
	number := 1000 + rng.Intn(9000)

	formats := []string{"%d-%d-%d", "%d.%d.%d", "(%d) %d-%d"}
	format := formats[rng.Intn(len(formats))]

	return fmt.Sprintf(format, areaCode, exchange, number)
}

// EmailGenerator generates dummy email addresses on reserved domains
func EmailGenerator(rng *rand.Rand) string {
	firstNames := []string{
		"jane", "john", "alex", "sam", "taylor", "casey", "jordan", "riley",
		"wei", "mei", "hiroshi", "yuki", "jin", "min", "raj", "priya",
		"amara", "kofi", "zara", "kwame", "yusuf", "fatima", "omar", "layla",
	}
	lastNames := []string{
		"doe", "smith", "tan", "lim", "lee", "ng", "wong", "chen",
		"kumar", "singh", "patel", "osei", "ahmed", "khan", "garcia", "ivanov",
	}
	// RFC 2606 / RFC 6761 reserved domains only
	domains := []string{"example.com", "example.org", "example.net", "test.com", "test.org"}

	return fmt.Sprintf("%s.%s@%s", pick(rng, firstNames), pick(rng, lastNames), pick(rng, domains))
}
