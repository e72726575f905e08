package registration

import (
	"slices"
)

// Field describes one payload key and the predicate its value must satisfy.
type Field struct {
	Name     string
	Required bool
	// parse converts a raw JSON value into its typed form. A non-empty reason
	// marks the value invalid.
	parse func(raw any) (value any, reason string)
}

// Schema enumerates what a role must send.
type Schema struct {
	Role          Role
	BaseFields    []Field
	ProfileKey    string
	ProfileFields []Field
}

// RequiredBaseFields lists the names of the required base fields in order.
func (s Schema) RequiredBaseFields() []string {
	return requiredNames(s.BaseFields)
}

// RequiredProfileFields lists the names of the required profile fields in order.
func (s Schema) RequiredProfileFields() []string {
	return requiredNames(s.ProfileFields)
}

func requiredNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

const (
	maxListItems     = 20
	maxAddressLength = 255
)

var baseFields = []Field{
	{Name: FieldEmail, Required: true, parse: parseEmail},
	{Name: FieldPassword, Required: true, parse: parsePassword},
	{Name: FieldPassword2, Required: true, parse: parsePassword},
	{Name: FieldPhoneNumber, Required: true, parse: parsePhone},
	{Name: FieldLocation, Required: true, parse: parseTextMax(100)},
	{Name: FieldPreferredLanguage, Required: true, parse: parseLanguage},
}

var farmerFields = []Field{
	{Name: "farm_size", Required: true, parse: coerceFarmSize},
	{Name: "farm_size_unit", Required: true, parse: parseEnum(string(UnitAcres), string(UnitHectares))},
	{Name: "expected_harvest_date", Required: true, parse: parseDateValue},
	{Name: "id_card_number", Required: true, parse: parseTextMax(50)},
	{Name: "certification", Required: false, parse: parseTextMax(100)},
	{Name: "years_of_experience", Required: true, parse: coerceNonNegativeInt},
}

var buyerFields = []Field{
	{Name: "business_name", Required: true, parse: parseTextMax(100)},
	{Name: "registration_number", Required: true, parse: parseTextMax(100)},
	{Name: "company_type", Required: true, parse: parseEnum(
		string(CompanySupermarket), string(CompanyRestaurant), string(CompanyProcessor), string(CompanyOther),
	)},
	{Name: "preferred_products", Required: true, parse: parseStringList(maxListItems, 100)},
	{Name: "delivery_address", Required: true, parse: parseTextMax(maxAddressLength)},
	{Name: "additional_addresses", Required: false, parse: parseStringList(maxListItems, maxAddressLength)},
	{Name: "contact_person", Required: true, parse: parseTextMax(100)},
	{Name: "contact_phone", Required: true, parse: parsePhone},
	{Name: "tax_identification", Required: true, parse: parseTextMax(50)},
	{Name: "preferred_communication", Required: true, parse: parseEnum(
		string(ChannelWhatsApp), string(ChannelSMS), string(ChannelEmail), string(ChannelCall),
	)},
}

// registry is populated once and never written afterwards.
var registry = map[Role]Schema{
	RoleGuest:  {Role: RoleGuest, BaseFields: baseFields},
	RoleFarmer: {Role: RoleFarmer, BaseFields: baseFields, ProfileKey: FarmerProfileKey, ProfileFields: farmerFields},
	RoleBuyer:  {Role: RoleBuyer, BaseFields: baseFields, ProfileKey: BuyerProfileKey, ProfileFields: buyerFields},
}

// profileKeys lists every profile key the registry knows about.
var profileKeys = []string{FarmerProfileKey, BuyerProfileKey}

// SchemaFor returns the schema registered for role.
func SchemaFor(role Role) (Schema, error) {
	schema, ok := registry[role]
	if !ok {
		return Schema{}, &UnknownRoleError{Role: string(role)}
	}
	schema.BaseFields = slices.Clone(schema.BaseFields)
	schema.ProfileFields = slices.Clone(schema.ProfileFields)
	return schema, nil
}

// Roles returns the supported roles in a stable order.
func Roles() []Role {
	return []Role{RoleGuest, RoleFarmer, RoleBuyer}
}
