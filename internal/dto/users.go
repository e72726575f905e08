package dto

import "github.com/shopspring/decimal"

// VerifyUserRequest toggles the verified flag of an account.
type VerifyUserRequest struct {
	Verified *bool `json:"verified"`
}

// UserResponse represents user data returned to clients.
type UserResponse struct {
	ID                string                 `json:"id"`
	Email             string                 `json:"email"`
	Role              string                 `json:"role"`
	PhoneNumber       string                 `json:"phone_number"`
	Location          string                 `json:"location"`
	PreferredLanguage string                 `json:"preferred_language"`
	Verified          bool                   `json:"verified"`
	FarmerProfile     *FarmerProfileResponse `json:"farmer_profile,omitempty"`
	BuyerProfile      *BuyerProfileResponse  `json:"buyer_profile,omitempty"`
}

// FarmerProfileResponse is the public view of a farmer profile.
type FarmerProfileResponse struct {
	FarmSize            decimal.Decimal `json:"farm_size"`
	FarmSizeUnit        string          `json:"farm_size_unit"`
	ExpectedHarvestDate string          `json:"expected_harvest_date"`
	IDCardNumber        string          `json:"id_card_number"`
	Certification       string          `json:"certification,omitempty"`
	YearsOfExperience   int             `json:"years_of_experience"`
}

// BuyerProfileResponse is the public view of a buyer profile.
type BuyerProfileResponse struct {
	BusinessName           string   `json:"business_name"`
	RegistrationNumber     string   `json:"registration_number"`
	CompanyType            string   `json:"company_type"`
	PreferredProducts      []string `json:"preferred_products"`
	DeliveryAddress        string   `json:"delivery_address"`
	AdditionalAddresses    []string `json:"additional_addresses"`
	ContactPerson          string   `json:"contact_person"`
	ContactPhone           string   `json:"contact_phone"`
	TaxIdentification      string   `json:"tax_identification"`
	PreferredCommunication string   `json:"preferred_communication"`
}
