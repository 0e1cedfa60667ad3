package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBillType_OrDefault(t *testing.T) {
	tests := []struct {
		billType BillType
		expected BillType
	}{
		{BillTypeElectricity, BillTypeElectricity},
		{BillTypeGas, BillTypeGas},
		{BillType(""), BillTypeUtilities},
		{BillType("  "), BillTypeUtilities},
	}

	for _, tt := range tests {
		t.Run(string(tt.billType), func(t *testing.T) {
			if got := tt.billType.OrDefault(); got != tt.expected {
				t.Errorf("OrDefault() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestProperty_Validate(t *testing.T) {
	tests := []struct {
		name     string
		property Property
		wantErr  bool
	}{
		{"valid", NewProperty("prop-1", "Strada Lunga 7"), false},
		{"empty address is allowed", NewProperty("prop-2", ""), false},
		{"empty id", NewProperty("", "Strada Lunga 7"), true},
		{"whitespace id", NewProperty("   ", "Strada Lunga 7"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.property.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractedBillInfo_HasAmount(t *testing.T) {
	info := &ExtractedBillInfo{}
	if info.HasAmount() {
		t.Error("empty info should not report an amount")
	}

	info.Amount = decimal.NewNullDecimal(decimal.Zero)
	if !info.HasAmount() {
		t.Error("a genuine 0.00 amount must count as present")
	}
}

func TestExtractedBillInfo_IsEmpty(t *testing.T) {
	if !(&ExtractedBillInfo{}).IsEmpty() {
		t.Error("zero value should be empty")
	}

	tests := []struct {
		name string
		info ExtractedBillInfo
	}{
		{"iban", ExtractedBillInfo{IBAN: "RO49AAAA1B31007593840000"}},
		{"bill number", ExtractedBillInfo{BillNumber: "FX-1"}},
		{"amount", ExtractedBillInfo{Amount: decimal.NewNullDecimal(decimal.Zero)}},
		{"address", ExtractedBillInfo{Address: "Strada Lunga 7"}},
		{"raw field", ExtractedBillInfo{Fields: map[string]string{"due_date": "25.08.2026"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.info.IsEmpty() {
				t.Error("info with data should not be empty")
			}
		})
	}
}

func TestExtractedBillInfo_BestAddress(t *testing.T) {
	info := &ExtractedBillInfo{
		Address:            "Strada Facturare 1",
		ConsumptionAddress: "Strada Consum 2",
	}
	if got := info.BestAddress(); got != "Strada Consum 2" {
		t.Errorf("BestAddress() = %q, want consumption address", got)
	}

	info.ConsumptionAddress = ""
	if got := info.BestAddress(); got != "Strada Facturare 1" {
		t.Errorf("BestAddress() = %q, want billing address", got)
	}
}

func TestExtractedBillInfo_MarshalJSON(t *testing.T) {
	info := &ExtractedBillInfo{
		BillNumber: "FX-1",
		Amount:     decimal.NewNullDecimal(decimal.RequireFromString("245.67")),
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["amount"] != "245.67" {
		t.Errorf("amount = %v, want plain decimal string", decoded["amount"])
	}

	// No amount means no key at all, not a null wrapper object.
	data, err = json.Marshal(&ExtractedBillInfo{BillNumber: "FX-2"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "amount") {
		t.Errorf("absent amount should be omitted: %s", data)
	}
}

func TestExtractedBillInfo_String(t *testing.T) {
	info := &ExtractedBillInfo{
		IBAN:         "RO49AAAA1B31007593840000",
		Amount:       decimal.NewNullDecimal(decimal.RequireFromString("245.67")),
		AllAddresses: []string{"Strada Lunga 7"},
	}
	s := info.String()
	for _, want := range []string{"RO49AAAA1B31007593840000", "245.67", "Addresses: 1"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
