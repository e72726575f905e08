package registration

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies the category of a registering user.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

// ParseRole maps a raw role tag onto a supported Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := registry[role]; !ok {
		return "", &UnknownRoleError{Role: raw}
	}
	return role, nil
}

// Payload keys shared by every role.
const (
	FieldEmail             = "email"
	FieldPassword          = "password"
	FieldPassword2         = "password2"
	FieldRole              = "role"
	FieldPhoneNumber       = "phone_number"
	FieldLocation          = "location"
	FieldPreferredLanguage = "preferred_language"

	FarmerProfileKey = "farmer_profile"
	BuyerProfileKey  = "buyer_profile"
)

// FarmSizeUnit enumerates the accepted units for farm_size.
type FarmSizeUnit string

const (
	UnitAcres    FarmSizeUnit = "acres"
	UnitHectares FarmSizeUnit = "hectares"
)

// CompanyType enumerates the buyer business categories.
type CompanyType string

const (
	CompanySupermarket CompanyType = "supermarket"
	CompanyRestaurant  CompanyType = "restaurant"
	CompanyProcessor   CompanyType = "processor"
	CompanyOther       CompanyType = "other"
)

// Channel enumerates the preferred communication channels of a buyer.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
	ChannelCall     Channel = "call"
)

// Request is a validated and normalized registration. Exactly one of Farmer
// and Buyer is set for the farmer and buyer roles; both are nil for guests.
type Request struct {
	Email             string         `json:"email"`
	Password          string         `json:"-"`
	Password2         string         `json:"-"`
	Role              Role           `json:"role"`
	PhoneNumber       string         `json:"phone_number"`
	Location          string         `json:"location"`
	PreferredLanguage string         `json:"preferred_language"`
	Farmer            *FarmerProfile `json:"farmer_profile,omitempty"`
	Buyer             *BuyerProfile  `json:"buyer_profile,omitempty"`
}

// Profile returns the role-specific profile, or nil for guests.
func (r Request) Profile() any {
	switch r.Role {
	case RoleFarmer:
		return r.Farmer
	case RoleBuyer:
		return r.Buyer
	default:
		return nil
	}
}

// FarmerProfile carries the farm attributes of a farmer registration.
type FarmerProfile struct {
	FarmSize            decimal.Decimal `json:"farm_size"`
	FarmSizeUnit        FarmSizeUnit    `json:"farm_size_unit"`
	ExpectedHarvestDate Date            `json:"expected_harvest_date"`
	IDCardNumber        string          `json:"id_card_number"`
	Certification       string          `json:"certification,omitempty"`
	YearsOfExperience   int             `json:"years_of_experience"`
}

// BuyerProfile carries the business attributes of a buyer registration.
type BuyerProfile struct {
	BusinessName           string      `json:"business_name"`
	RegistrationNumber     string      `json:"registration_number"`
	CompanyType            CompanyType `json:"company_type"`
	PreferredProducts      []string    `json:"preferred_products"`
	DeliveryAddress        string      `json:"delivery_address"`
	AdditionalAddresses    []string    `json:"additional_addresses"`
	ContactPerson          string      `json:"contact_person"`
	ContactPhone           string      `json:"contact_phone"`
	TaxIdentification      string      `json:"tax_identification"`
	PreferredCommunication Channel     `json:"preferred_communication"`
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day, held at UTC midnight.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
