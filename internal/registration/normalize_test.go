package registration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleRequest() Request {
	return Request{
		Email:             "  Buyer@Example.com ",
		Password:          "secret123",
		Password2:         "secret123",
		Role:              " Buyer",
		PhoneNumber:       "0712 345 678",
		Location:          " Nairobi ",
		PreferredLanguage: "EN",
		Buyer: &BuyerProfile{
			BusinessName:           " Fresh Foods Ltd ",
			RegistrationNumber:     "REG12345 ",
			CompanyType:            "Supermarket",
			PreferredProducts:      []string{" maize", "beans "},
			DeliveryAddress:        "123 Main Street ",
			ContactPerson:          " John Doe",
			ContactPhone:           "+254 712 345 678",
			TaxIdentification:      " TAX12345",
			PreferredCommunication: "WhatsApp",
		},
	}
}

func marshalRequest(t *testing.T, req Request) string {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return string(data) + "|" + req.Password + "|" + req.Password2
}

func TestNormalize_Idempotent(t *testing.T) {
	farmer := Request{
		Email:             "Farmer@Example.com",
		Role:              RoleFarmer,
		PhoneNumber:       "+255123456789",
		Location:          "Arusha ",
		PreferredLanguage: "sw",
		Farmer: &FarmerProfile{
			FarmSize:            decimal.RequireFromString("5.555"),
			FarmSizeUnit:        "Acres",
			ExpectedHarvestDate: Date{Time: time.Date(2023, 12, 15, 17, 30, 0, 0, time.UTC)},
			IDCardNumber:        " 12345678",
			YearsOfExperience:   10,
		},
	}

	for name, req := range map[string]Request{"buyer": sampleRequest(), "farmer": farmer} {
		t.Run(name, func(t *testing.T) {
			once := Normalize(req)
			twice := Normalize(once)
			if marshalRequest(t, once) != marshalRequest(t, twice) {
				t.Fatalf("normalize not idempotent:\n%s\n%s", marshalRequest(t, once), marshalRequest(t, twice))
			}
		})
	}
}

func TestNormalize_CanonicalForms(t *testing.T) {
	out := NewValidator("tz").Normalize(sampleRequest())

	if out.Email != "buyer@example.com" || out.Role != RoleBuyer || out.PreferredLanguage != "en" {
		t.Fatalf("unexpected base fields: %+v", out)
	}
	if out.Location != "Nairobi" {
		t.Fatalf("location not trimmed: %q", out.Location)
	}
	if out.PhoneNumber != "+255712345678" {
		t.Fatalf("expected local number formatted for TZ, got %q", out.PhoneNumber)
	}
	b := out.Buyer
	if b.CompanyType != CompanySupermarket || b.PreferredCommunication != ChannelWhatsApp {
		t.Fatalf("enums not lower-cased: %+v", b)
	}
	if b.PreferredProducts[0] != "maize" || b.PreferredProducts[1] != "beans" {
		t.Fatalf("list items not trimmed: %#v", b.PreferredProducts)
	}
	if b.AdditionalAddresses == nil {
		t.Fatalf("expected empty additional addresses slice")
	}
	if b.ContactPhone != "+254712345678" {
		t.Fatalf("contact phone not normalized: %q", b.ContactPhone)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := sampleRequest()
	_ = Normalize(in)
	if in.Buyer.PreferredProducts[0] != " maize" || in.Email != "  Buyer@Example.com " {
		t.Fatalf("input mutated: %+v", in.Buyer)
	}
}

func TestNormalize_FarmerDateAndSize(t *testing.T) {
	out := Normalize(Request{Farmer: &FarmerProfile{
		FarmSize:            decimal.RequireFromString("5.555"),
		ExpectedHarvestDate: Date{Time: time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)},
	}})
	if !out.Farmer.FarmSize.Equal(decimal.RequireFromString("5.56")) {
		t.Fatalf("expected farm size rounded to 5.56, got %s", out.Farmer.FarmSize)
	}
	if out.Farmer.ExpectedHarvestDate.String() != "2024-03-01" || out.Farmer.ExpectedHarvestDate.Hour() != 0 {
		t.Fatalf("expected calendar date, got %v", out.Farmer.ExpectedHarvestDate.Time)
	}
}

func TestCoerceFarmSize(t *testing.T) {
	tests := map[string]struct {
		raw     any
		want    string
		invalid bool
	}{
		"json number":    {raw: json.Number("5.5"), want: "5.5"},
		"float":          {raw: 2.25, want: "2.25"},
		"string":         {raw: " 10 ", want: "10"},
		"rounded":        {raw: "1.005", want: "1.01"},
		"zero":           {raw: json.Number("0"), invalid: true},
		"negative":       {raw: -1.5, invalid: true},
		"rounds to zero": {raw: "0.001", invalid: true},
		"too large":      {raw: "100000000", invalid: true},
		"not a number":   {raw: "big", invalid: true},
		"boolean":        {raw: true, invalid: true},
		"exponent form":  {raw: json.Number("5.5e1"), want: "55"},
		"huge exponent":  {raw: json.Number("1e10000000"), invalid: true},
		"tiny exponent":  {raw: json.Number("1e-10000000"), invalid: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			value, reason := coerceFarmSize(tt.raw)
			if tt.invalid {
				if reason == "" {
					t.Fatalf("expected rejection, got %v", value)
				}
				return
			}
			if reason != "" {
				t.Fatalf("unexpected rejection: %s", reason)
			}
			if !value.(decimal.Decimal).Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected %s, got %v", tt.want, value)
			}
		})
	}
}

func TestCoerceNonNegativeInt(t *testing.T) {
	tests := map[string]struct {
		raw     any
		want    int
		invalid bool
	}{
		"json number":    {raw: json.Number("10"), want: 10},
		"integral float": {raw: float64(3), want: 3},
		"string":         {raw: "7", want: 7},
		"zero":           {raw: json.Number("0"), want: 0},
		"json exponent":  {raw: json.Number("1e1"), want: 10},
		"negative":       {raw: json.Number("-1"), invalid: true},
		"fraction":       {raw: 1.5, invalid: true},
		"text":           {raw: "ten", invalid: true},
		"list":           {raw: []any{}, invalid: true},
		"exponent form":  {raw: json.Number("2.0e1"), want: 20},
		"past 64 bits":   {raw: json.Number("18446744073709551621"), invalid: true},
		"past int32":     {raw: json.Number("2147483648"), invalid: true},
		"huge exponent":  {raw: json.Number("1e10000000"), invalid: true},
		"tiny exponent":  {raw: json.Number("1e-10000000"), invalid: true},
		"negative big":   {raw: json.Number("-1e30"), invalid: true},
		"float too big":  {raw: 1e19, invalid: true},
		"negative float": {raw: float64(-4), invalid: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			value, reason := coerceNonNegativeInt(tt.raw)
			if tt.invalid {
				if reason == "" {
					t.Fatalf("expected rejection, got %v", value)
				}
				return
			}
			if reason != "" || value.(int) != tt.want {
				t.Fatalf("expected %d, got %v (%s)", tt.want, value, reason)
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	d, err := ParseDate("2023-12-15")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	data, err := json.Marshal(d)
	if err != nil || string(data) != `"2023-12-15"` {
		t.Fatalf("unexpected json %s (%v)", data, err)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil || !back.Equal(d.Time) {
		t.Fatalf("round trip failed: %v %v", back, err)
	}
	if err := json.Unmarshal([]byte(`"12/15/2023"`), &back); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
