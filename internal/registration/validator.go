// Package registration validates and normalizes account registration payloads
// for the guest, farmer and buyer roles.
//
// The package is pure: it performs no I/O and keeps no mutable state, so a
// Validator may be shared across goroutines.
package registration

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPhoneRegion is used to interpret phone numbers written without a
// country prefix.
const DefaultPhoneRegion = "TZ"

var defaultValidator = NewValidator(DefaultPhoneRegion)

// Validator applies the schema registry to raw payloads.
type Validator struct {
	region string
}

// NewValidator builds a validator that formats local phone numbers for region.
func NewValidator(region string) *Validator {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}
	return &Validator{region: region}
}

// Region returns the default phone region.
func (v *Validator) Region() string {
	return v.region
}

// Validate checks payload against the schema of role. It returns either a
// normalized Request or every problem found as ValidationErrors; an
// unsupported role fails with *UnknownRoleError before any field is read.
func (v *Validator) Validate(payload map[string]any, role Role) (Request, error) {
	schema, err := SchemaFor(role)
	if err != nil {
		return Request{}, err
	}

	var errs ValidationErrors

	base, baseErrs := checkFields(payload, schema.BaseFields, "")
	errs = append(errs, baseErrs...)

	if raw, ok := payload[FieldRole]; ok && !isAbsent(raw) {
		declared, _ := raw.(string)
		if Role(strings.ToLower(strings.TrimSpace(declared))) != schema.Role {
			errs = append(errs, InvalidField(FieldRole, "must be \""+string(schema.Role)+"\" for this endpoint"))
		}
	}

	pw, pwOK := base[FieldPassword].(string)
	pw2, pw2OK := base[FieldPassword2].(string)
	if pwOK && pw2OK && pw != pw2 {
		errs = append(errs, PasswordMismatch())
	}

	profileRaw, profileErr := checkProfileKey(payload, schema.ProfileKey)
	if profileErr != nil {
		errs = append(errs, *profileErr)
	}

	req := Request{
		Email:             str(base, FieldEmail),
		Password:          pw,
		Password2:         pw2,
		Role:              schema.Role,
		PhoneNumber:       str(base, FieldPhoneNumber),
		Location:          str(base, FieldLocation),
		PreferredLanguage: str(base, FieldPreferredLanguage),
	}

	if profileRaw != nil {
		values, profileErrs := checkFields(profileRaw, schema.ProfileFields, schema.ProfileKey)
		errs = append(errs, profileErrs...)
		switch schema.Role {
		case RoleFarmer:
			req.Farmer = farmerFrom(values)
		case RoleBuyer:
			req.Buyer = buyerFrom(values)
		}
	}

	if len(errs) > 0 {
		return Request{}, errs
	}
	return v.Normalize(req), nil
}

// RegisterGuest validates a guest registration payload.
func (v *Validator) RegisterGuest(payload map[string]any) (Request, error) {
	return v.Validate(payload, RoleGuest)
}

// RegisterFarmer validates a farmer registration payload.
func (v *Validator) RegisterFarmer(payload map[string]any) (Request, error) {
	return v.Validate(payload, RoleFarmer)
}

// RegisterBuyer validates a buyer registration payload.
func (v *Validator) RegisterBuyer(payload map[string]any) (Request, error) {
	return v.Validate(payload, RoleBuyer)
}

// Validate runs the default validator.
func Validate(payload map[string]any, role Role) (Request, error) {
	return defaultValidator.Validate(payload, role)
}

// checkFields runs every field predicate and collects all failures.
func checkFields(payload map[string]any, fields []Field, section string) (map[string]any, ValidationErrors) {
	values := make(map[string]any, len(fields))
	var errs ValidationErrors
	for _, f := range fields {
		raw, present := payload[f.Name]
		if !present || isAbsent(raw) {
			if f.Required {
				fe := MissingField(f.Name)
				fe.Section = section
				errs = append(errs, fe)
			}
			continue
		}
		value, reason := f.parse(raw)
		if reason != "" {
			fe := InvalidField(f.Name, reason)
			fe.Section = section
			errs = append(errs, fe)
			continue
		}
		values[f.Name] = value
	}
	return values, errs
}

// checkProfileKey enforces that the payload carries the profile expected for
// the role and no other. The expected profile is returned when it is a JSON
// object and no foreign profile accompanies it.
func checkProfileKey(payload map[string]any, expected string) (map[string]any, *FieldError) {
	var foreign []string
	for _, key := range profileKeys {
		if key == expected {
			continue
		}
		if raw, ok := payload[key]; ok && raw != nil {
			foreign = append(foreign, key)
		}
	}
	if len(foreign) > 0 {
		fe := ProfileMismatch(expected, strings.Join(foreign, ","))
		return nil, &fe
	}
	if expected == "" {
		return nil, nil
	}

	raw, ok := payload[expected]
	if !ok || raw == nil {
		fe := ProfileMismatch(expected, "")
		return nil, &fe
	}
	profile, ok := raw.(map[string]any)
	if !ok {
		fe := InvalidField(expected, "must be an object")
		return nil, &fe
	}
	return profile, nil
}

func str(values map[string]any, key string) string {
	s, _ := values[key].(string)
	return s
}

func strList(values map[string]any, key string) []string {
	items, _ := values[key].([]string)
	return items
}

func farmerFrom(values map[string]any) *FarmerProfile {
	size, _ := values["farm_size"].(decimal.Decimal)
	harvest, _ := values["expected_harvest_date"].(Date)
	years, _ := values["years_of_experience"].(int)
	return &FarmerProfile{
		FarmSize:            size,
		FarmSizeUnit:        FarmSizeUnit(str(values, "farm_size_unit")),
		ExpectedHarvestDate: harvest,
		IDCardNumber:        str(values, "id_card_number"),
		Certification:       str(values, "certification"),
		YearsOfExperience:   years,
	}
}

func buyerFrom(values map[string]any) *BuyerProfile {
	return &BuyerProfile{
		BusinessName:           str(values, "business_name"),
		RegistrationNumber:     str(values, "registration_number"),
		CompanyType:            CompanyType(str(values, "company_type")),
		PreferredProducts:      strList(values, "preferred_products"),
		DeliveryAddress:        str(values, "delivery_address"),
		AdditionalAddresses:    strList(values, "additional_addresses"),
		ContactPerson:          str(values, "contact_person"),
		ContactPhone:           str(values, "contact_phone"),
		TaxIdentification:      str(values, "tax_identification"),
		PreferredCommunication: Channel(str(values, "preferred_communication")),
	}
}
