package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/octobees/agrimarket/api/internal/entity"
)

// ErrProfileNotFound is returned when a user has no profile of the requested kind.
var ErrProfileNotFound = errors.New("profile not found")

func insertFarmerProfile(ctx context.Context, tx pgx.Tx, userID uuid.UUID, p *entity.FarmerProfile) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO farmer_profiles (user_id, farm_size, farm_size_unit, expected_harvest_date, id_card_number, certification, years_of_experience)
        VALUES ($1, $2::text::numeric, $3, $4, $5, $6, $7)
    `, userID, p.FarmSize.String(), p.FarmSizeUnit, p.ExpectedHarvestDate, p.IDCardNumber, p.Certification, p.YearsOfExperience)
	if err != nil {
		return fmt.Errorf("insert farmer profile: %w", err)
	}
	return nil
}

func insertBuyerProfile(ctx context.Context, tx pgx.Tx, userID uuid.UUID, p *entity.BuyerProfile) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO buyer_profiles (user_id, business_name, registration_number, company_type, preferred_products,
            delivery_address, additional_addresses, contact_person, contact_phone, tax_identification, preferred_communication)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, userID, p.BusinessName, p.RegistrationNumber, p.CompanyType, nonNil(p.PreferredProducts),
		p.DeliveryAddress, nonNil(p.AdditionalAddresses), p.ContactPerson, p.ContactPhone, p.TaxIdentification, p.PreferredCommunication)
	if err != nil {
		return fmt.Errorf("insert buyer profile: %w", err)
	}
	return nil
}

// FindFarmerProfile loads the farmer profile of a user.
func (r *PGXUsersRepository) FindFarmerProfile(ctx context.Context, userID uuid.UUID) (*entity.FarmerProfile, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT user_id, farm_size::text, farm_size_unit, expected_harvest_date, id_card_number, certification, years_of_experience
        FROM farmer_profiles WHERE user_id = $1
    `, userID)

	var (
		p        entity.FarmerProfile
		farmSize string
	)
	if err := row.Scan(&p.UserID, &farmSize, &p.FarmSizeUnit, &p.ExpectedHarvestDate, &p.IDCardNumber, &p.Certification, &p.YearsOfExperience); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("query farmer profile: %w", err)
	}

	size, err := decimal.NewFromString(farmSize)
	if err != nil {
		return nil, fmt.Errorf("parse farm size %q: %w", farmSize, err)
	}
	p.FarmSize = size
	return &p, nil
}

// FindBuyerProfile loads the buyer profile of a user.
func (r *PGXUsersRepository) FindBuyerProfile(ctx context.Context, userID uuid.UUID) (*entity.BuyerProfile, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT user_id, business_name, registration_number, company_type, preferred_products, delivery_address,
            additional_addresses, contact_person, contact_phone, tax_identification, preferred_communication
        FROM buyer_profiles WHERE user_id = $1
    `, userID)

	var p entity.BuyerProfile
	if err := row.Scan(
		&p.UserID,
		&p.BusinessName,
		&p.RegistrationNumber,
		&p.CompanyType,
		&p.PreferredProducts,
		&p.DeliveryAddress,
		&p.AdditionalAddresses,
		&p.ContactPerson,
		&p.ContactPhone,
		&p.TaxIdentification,
		&p.PreferredCommunication,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("query buyer profile: %w", err)
	}
	return &p, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
