package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FarmerProfile stores the farm attributes of a farmer account.
type FarmerProfile struct {
	UserID              uuid.UUID       `json:"-"`
	FarmSize            decimal.Decimal `json:"farm_size"`
	FarmSizeUnit        string          `json:"farm_size_unit"`
	ExpectedHarvestDate time.Time       `json:"-"`
	IDCardNumber        string          `json:"id_card_number"`
	Certification       string          `json:"certification"`
	YearsOfExperience   int             `json:"years_of_experience"`
}

// BuyerProfile stores the business attributes of a buyer account.
type BuyerProfile struct {
	UserID                 uuid.UUID `json:"-"`
	BusinessName           string    `json:"business_name"`
	RegistrationNumber     string    `json:"registration_number"`
	CompanyType            string    `json:"company_type"`
	PreferredProducts      []string  `json:"preferred_products"`
	DeliveryAddress        string    `json:"delivery_address"`
	AdditionalAddresses    []string  `json:"additional_addresses"`
	ContactPerson          string    `json:"contact_person"`
	ContactPhone           string    `json:"contact_phone"`
	TaxIdentification      string    `json:"tax_identification"`
	PreferredCommunication string    `json:"preferred_communication"`
}
