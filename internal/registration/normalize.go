package registration

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/shopspring/decimal"
)

const (
	// farmSizePlaces and maxFarmSize mirror a NUMERIC(10,2) column.
	farmSizePlaces    = 2
	maxFarmSize       = 100_000_000
	maxFarmSizeDigits = 9

	// maxIntDigits is the digit count of math.MaxInt32.
	maxIntDigits = 10
)

// Normalize returns req in canonical form using the default phone region.
// Normalize(Normalize(r)) == Normalize(r).
func Normalize(req Request) Request {
	return defaultValidator.Normalize(req)
}

// Normalize returns req in canonical form. The input is not modified.
func (v *Validator) Normalize(req Request) Request {
	out := Request{
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Password:          strings.TrimSpace(req.Password),
		Password2:         strings.TrimSpace(req.Password2),
		Role:              Role(strings.ToLower(strings.TrimSpace(string(req.Role)))),
		PhoneNumber:       normalizePhone(req.PhoneNumber, v.region),
		Location:          strings.TrimSpace(req.Location),
		PreferredLanguage: strings.ToLower(strings.TrimSpace(req.PreferredLanguage)),
	}

	if f := req.Farmer; f != nil {
		out.Farmer = &FarmerProfile{
			FarmSize:            f.FarmSize.Round(farmSizePlaces),
			FarmSizeUnit:        FarmSizeUnit(strings.ToLower(strings.TrimSpace(string(f.FarmSizeUnit)))),
			ExpectedHarvestDate: NewDate(f.ExpectedHarvestDate.Time),
			IDCardNumber:        strings.TrimSpace(f.IDCardNumber),
			Certification:       strings.TrimSpace(f.Certification),
			YearsOfExperience:   f.YearsOfExperience,
		}
	}

	if b := req.Buyer; b != nil {
		out.Buyer = &BuyerProfile{
			BusinessName:           strings.TrimSpace(b.BusinessName),
			RegistrationNumber:     strings.TrimSpace(b.RegistrationNumber),
			CompanyType:            CompanyType(strings.ToLower(strings.TrimSpace(string(b.CompanyType)))),
			PreferredProducts:      trimAll(b.PreferredProducts),
			DeliveryAddress:        strings.TrimSpace(b.DeliveryAddress),
			AdditionalAddresses:    trimAll(b.AdditionalAddresses),
			ContactPerson:          strings.TrimSpace(b.ContactPerson),
			ContactPhone:           normalizePhone(b.ContactPhone, v.region),
			TaxIdentification:      strings.TrimSpace(b.TaxIdentification),
			PreferredCommunication: Channel(strings.ToLower(strings.TrimSpace(string(b.PreferredCommunication)))),
		}
	}

	return out
}

func trimAll(items []string) []string {
	out := slices.Clone(items)
	if out == nil {
		return []string{}
	}
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

// normalizePhone formats numbers as E.164 when libphonenumber can parse them
// and leaves the compacted input otherwise.
func normalizePhone(raw, region string) string {
	compact := compactPhone(raw)
	if compact == "" {
		return ""
	}
	number, err := phonenumbers.Parse(compact, region)
	if err != nil || !phonenumbers.IsPossibleNumber(number) {
		return compact
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func parseDateValue(raw any) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, "must be a date in YYYY-MM-DD format"
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, "must be a date in YYYY-MM-DD format"
	}
	return d, ""
}

func toDecimal(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	case decimal.Decimal:
		return v, true
	default:
		return decimal.Decimal{}, false
	}
}

// integerDigits reports how many digits d has left of the decimal point.
// Values below 0.1 yield zero or a negative count. It reads the coefficient
// and exponent only, so it stays cheap for inputs like 1e10000000.
func integerDigits(d decimal.Decimal) int {
	return d.NumDigits() + int(d.Exponent())
}

func coerceFarmSize(raw any) (any, string) {
	d, ok := toDecimal(raw)
	if !ok {
		return nil, "must be a decimal number"
	}
	if !d.IsPositive() {
		return nil, "must be greater than 0"
	}
	// Magnitude checks run before Round and Cmp, which rescale the coefficient.
	digits := integerDigits(d)
	if digits > maxFarmSizeDigits {
		return nil, "must be less than 100000000"
	}
	if digits < -farmSizePlaces {
		return nil, "must be at least 0.01"
	}
	d = d.Round(farmSizePlaces)
	if d.IsZero() {
		return nil, "must be at least 0.01"
	}
	if d.GreaterThanOrEqual(decimal.NewFromInt(maxFarmSize)) {
		return nil, "must be less than 100000000"
	}
	return d, ""
}

func coerceNonNegativeInt(raw any) (any, string) {
	const (
		notInt   = "must be a whole number"
		negative = "must be greater than or equal to 0"
		tooLarge = "is too large"
	)
	var n int64
	switch v := raw.(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			d, ok := toDecimal(v)
			if !ok {
				return nil, notInt
			}
			if d.IsNegative() {
				return nil, negative
			}
			if d.IsZero() {
				return 0, ""
			}
			digits := integerDigits(d)
			if digits > maxIntDigits {
				return nil, tooLarge
			}
			if digits <= 0 || !d.IsInteger() {
				return nil, notInt
			}
			if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
				return nil, tooLarge
			}
			i = d.IntPart()
		}
		n = i
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, notInt
		}
		if v < 0 {
			return nil, negative
		}
		if v > math.MaxInt32 {
			return nil, tooLarge
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, notInt
		}
		n = i
	default:
		return nil, notInt
	}
	if n < 0 {
		return nil, negative
	}
	if n > math.MaxInt32 {
		return nil, tooLarge
	}
	return int(n), ""
}
