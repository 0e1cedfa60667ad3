// Package models defines the core records exchanged between the extraction
// engine, the pattern repository and the property matcher.
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BillType classifies the kind of utility bill a vendor pattern targets.
type BillType string

const (
	// BillTypeUtilities is the generic fallback classification used when a
	// pattern does not declare a more specific bill type.
	BillTypeUtilities BillType = "utilities"

	BillTypeElectricity BillType = "electricity"
	BillTypeGas         BillType = "gas"
	BillTypeWater       BillType = "water"
	BillTypeInternet    BillType = "internet"
	// BillTypeMaintenance covers Romanian "întreținere" building charges.
	BillTypeMaintenance BillType = "maintenance"
)

// String returns the string representation of BillType
func (bt BillType) String() string {
	return string(bt)
}

// OrDefault returns the bill type itself, or BillTypeUtilities when empty.
func (bt BillType) OrDefault() BillType {
	if strings.TrimSpace(string(bt)) == "" {
		return BillTypeUtilities
	}
	return bt
}

// Property is a landlord-owned unit as seen by the matcher: an opaque id
// plus the free-text address the landlord registered for it. The core never
// owns or mutates properties; callers supply them per matching call.
type Property struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// NewProperty creates a new Property instance
func NewProperty(id, address string) Property {
	return Property{ID: id, Address: address}
}

// Validate performs basic validation on the Property
func (p Property) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("property id cannot be empty")
	}
	return nil
}

// String returns a string representation of the Property
func (p Property) String() string {
	return fmt.Sprintf("Property{ID: %s, Address: %q}", p.ID, p.Address)
}

// Canonical field names a vendor pattern can declare. Pattern files may
// declare additional fields; these are the ones the engine lifts into the
// typed parts of ExtractedBillInfo.
const (
	FieldIBAN               = "iban"
	FieldBillNumber         = "bill_number"
	FieldAmount             = "amount"
	FieldAddress            = "address"
	FieldConsumptionAddress = "consumption_address"
)

// ExtractedBillInfo is the outcome of applying one vendor pattern (or the
// ad hoc rule corpus) to one document. It is transient: built per extraction
// call and handed straight back to the caller, never persisted.
//
// Absent string fields are empty strings; the amount uses decimal.NullDecimal
// so a genuine 0.00 bill stays distinguishable from "no amount found".
type ExtractedBillInfo struct {
	IBAN               string              `json:"iban,omitempty"`
	BillNumber         string              `json:"bill_number,omitempty"`
	Amount             decimal.NullDecimal `json:"amount,omitempty"`
	Address            string              `json:"address,omitempty"`
	ConsumptionAddress string              `json:"consumption_address,omitempty"`

	// AllAddresses lists every address-like capture found in the document,
	// deduplicated, in first-seen order.
	AllAddresses []string `json:"all_addresses,omitempty"`

	// Fields carries every raw field capture keyed by the field name the
	// pattern declared, including fields beyond the typed ones above. This
	// is what keeps externally maintained patterns forward compatible.
	Fields map[string]string `json:"fields,omitempty"`
}

// HasAmount reports whether an amount was extracted.
func (b *ExtractedBillInfo) HasAmount() bool {
	return b.Amount.Valid
}

// IsEmpty reports whether the extraction produced nothing at all.
func (b *ExtractedBillInfo) IsEmpty() bool {
	return b.IBAN == "" && b.BillNumber == "" && !b.Amount.Valid &&
		b.Address == "" && b.ConsumptionAddress == "" &&
		len(b.AllAddresses) == 0 && len(b.Fields) == 0
}

// BestAddress returns the consumption-location address when present, falling
// back to the primary address. Consumption location wins because that is the
// address that identifies the metered property, not the billing contact.
func (b *ExtractedBillInfo) BestAddress() string {
	if b.ConsumptionAddress != "" {
		return b.ConsumptionAddress
	}
	return b.Address
}

// String returns a compact representation for logs.
func (b *ExtractedBillInfo) String() string {
	amount := "-"
	if b.Amount.Valid {
		amount = b.Amount.Decimal.StringFixed(2)
	}
	return fmt.Sprintf("ExtractedBillInfo{IBAN: %s, BillNumber: %s, Amount: %s, Addresses: %d}",
		orDash(b.IBAN), orDash(b.BillNumber), amount, len(b.AllAddresses))
}

// MarshalJSON renders the amount as a plain decimal string instead of the
// NullDecimal wrapper object.
func (b *ExtractedBillInfo) MarshalJSON() ([]byte, error) {
	type Alias ExtractedBillInfo
	aux := &struct {
		Amount *string `json:"amount,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(b),
	}
	if b.Amount.Valid {
		s := b.Amount.Decimal.StringFixed(2)
		aux.Amount = &s
	}
	return json.Marshal(aux)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
