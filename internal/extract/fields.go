// Package extract pulls bill fields out of free-form document text with an
// ordered corpus of regular expressions per field. It is the built-in
// fallback used when no vendor pattern claims a document, and the source of
// the address candidate list fed to the property matcher.
//
// Rule order is precedence: the first rule that matches wins the field,
// later rules are never consulted. Rules target the label vocabulary of
// Romanian utility bills and accept both diacritic spellings.
package extract

import (
	"regexp"
	"strings"

	"bill-extraction-service/internal/amount"
	"bill-extraction-service/internal/models"
	"bill-extraction-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Document is one inbound bill: usually an email subject plus its body, or
// an empty subject with OCR output in the body.
type Document struct {
	Subject string
	Body    string
}

// Text returns the combined text the rules run against.
func (d Document) Text() string {
	if d.Subject == "" {
		return d.Body
	}
	return d.Subject + "\n" + d.Body
}

var ibanLabelRules = []*regexp.Regexp{
	// Labelled IBAN, possibly space-grouped ("RO49 AAAA 1B31 ...").
	regexp.MustCompile(`(?i)\biban\s*:?\s*([a-z]{2}\d{2}[a-z0-9 ]{4,40})`),
}

// bareIBANRule finds an unlabelled IBAN: country code, two check digits,
// 4 to 30 alphanumerics. It runs against the upper-cased text so casing in
// the document does not matter.
var bareIBANRule = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{4,30}\b`)

var billNumberRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bnum[aă]r\s+factur[aă]\s*:?\s*([a-z0-9][a-z0-9\-/]*)`),
	regexp.MustCompile(`(?i)\bfactur[aă](?:\s+fiscal[aă])?\s*(?:nr|num[aă]r|seria)\.?\s*:?\s*([a-z0-9][a-z0-9\-/]*)`),
	regexp.MustCompile(`(?i)\binvoice\s*(?:no|number|#)?\.?\s*:?\s*([a-z0-9][a-z0-9\-/]*\d[a-z0-9\-/]*)`),
}

var amountRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btotal\s+de\s+plat[aă]\s*(?:\(?(?:lei|ron)\)?)?\s*:?\s*([0-9]+(?:[ .,][0-9]+)*)`),
	regexp.MustCompile(`(?i)\bde\s+plat[aă]\s*:?\s*([0-9]+(?:[ .,][0-9]+)*)`),
	regexp.MustCompile(`(?i)\btotal\s*(?:\(?(?:lei|ron)\)?)?\s*:?\s*([0-9]+(?:[ .,][0-9]+)*)`),
	regexp.MustCompile(`(?i)\bsum[aă]\s*:?\s*([0-9]+(?:[ .,][0-9]+)*)`),
}

// consumptionAddressRules find the metered location; these run before the
// generic address rules when collecting candidates, because the consumption
// address is the one that identifies the property.
var consumptionAddressRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:adres[aă]\s+)?loc(?:ul)?\s+de\s+consum\s*:?\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\badres[aă]\s+de\s+consum\s*:?\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bpunct\s+de\s+consum\s*:?\s*([^\n]+)`),
}

// The mandatory colon keeps these rules off the consumption lines, which
// would otherwise match as "adresa" + free text.
var addressRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\badres[aă]\s*(?:client(?:ului)?|de\s+facturare|de\s+coresponden[tțţ][aă])?\s*:\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bdomiciliul?\s*:\s*([^\n]+)`),
}

// Extractor applies the rule corpora to document text. Safe for concurrent
// use; the rules are compiled once at package load.
type Extractor struct {
	log logger.Logger
}

// NewExtractor creates an extractor. A nil logger falls back to the global
// instance.
func NewExtractor(log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Extractor{log: log.WithComponent("extract")}
}

func firstCapture(rules []*regexp.Regexp, text string) string {
	for _, rule := range rules {
		if m := rule.FindStringSubmatch(text); m != nil {
			if len(m) > 1 {
				return strings.TrimSpace(m[1])
			}
			return strings.TrimSpace(m[0])
		}
	}
	return ""
}

// IBAN returns the first IBAN found, canonicalized to uppercase without
// spaces, or "".
func (e *Extractor) IBAN(text string) string {
	raw := firstCapture(ibanLabelRules, text)
	if raw == "" {
		raw = bareIBANRule.FindString(strings.ToUpper(text))
	}
	if raw == "" {
		return ""
	}
	return strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
}

// BillNumber returns the first invoice number found, or "".
func (e *Extractor) BillNumber(text string) string {
	return strings.ToUpper(firstCapture(billNumberRules, text))
}

// Amount returns the first payable amount found. The captured digits go
// through the positional amount parser, so separator style does not matter.
func (e *Extractor) Amount(text string) (decimal.Decimal, bool) {
	raw := firstCapture(amountRules, text)
	if raw == "" {
		return decimal.Decimal{}, false
	}
	return amount.Parse(raw)
}

// Address returns the first billing address found, or "".
func (e *Extractor) Address(text string) string {
	return cleanAddress(firstCapture(addressRules, text))
}

// ConsumptionAddress returns the first consumption-location address found,
// or "".
func (e *Extractor) ConsumptionAddress(text string) string {
	return cleanAddress(firstCapture(consumptionAddressRules, text))
}

// AllAddresses collects every address-like capture in the document,
// consumption locations first, deduplicated, in first-seen order. The
// property matcher tries them in this order.
func (e *Extractor) AllAddresses(text string) []string {
	var addresses []string
	seen := make(map[string]struct{})

	collect := func(rules []*regexp.Regexp) {
		for _, rule := range rules {
			for _, m := range rule.FindAllStringSubmatch(text, -1) {
				if len(m) < 2 {
					continue
				}
				addr := cleanAddress(m[1])
				if addr == "" {
					continue
				}
				if _, dup := seen[addr]; dup {
					continue
				}
				seen[addr] = struct{}{}
				addresses = append(addresses, addr)
			}
		}
	}

	collect(consumptionAddressRules)
	collect(addressRules)
	return addresses
}

// Extract runs every field rule set over the document and assembles the
// result. Fields that match nothing stay zero valued; Extract itself never
// fails.
func (e *Extractor) Extract(doc Document) *models.ExtractedBillInfo {
	text := doc.Text()

	info := &models.ExtractedBillInfo{
		IBAN:               e.IBAN(text),
		BillNumber:         e.BillNumber(text),
		Address:            e.Address(text),
		ConsumptionAddress: e.ConsumptionAddress(text),
		AllAddresses:       e.AllAddresses(text),
	}
	if value, ok := e.Amount(text); ok {
		info.Amount = decimal.NewNullDecimal(value)
	}

	e.log.WithFields(logger.Fields{
		"iban_found":   info.IBAN != "",
		"amount_found": info.Amount.Valid,
		"addresses":    len(info.AllAddresses),
	}).Debug("rule extraction complete")

	return info
}

// cleanAddress trims whitespace and dangling punctuation from a capture.
func cleanAddress(s string) string {
	return strings.Trim(s, " \t.,;:")
}
