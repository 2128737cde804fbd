package agentprofile

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/acacia-erp/acacia-sdk/pkg/serrors"
)

// Placeholder name assigned by clients before the owning partner is known.
const DefaultName = "New"

var (
	ErrNotFound         = serrors.NewError("PROFILE_NOT_FOUND", "agent profile not found", "")
	ErrPartnerRequired  = serrors.NewError("PARTNER_REQUIRED", "agent profile requires an owning partner", "")
	ErrGeoRequired      = serrors.NewError("PARTNER_GEO_REQUIRED", "latitude and longitude are required", "")
	ErrBusinessRequired = serrors.NewError("PARTNER_BUSINESS_REQUIRED", "business name and business type are required for field agents", "")
	ErrWorkersRequired  = serrors.NewError("PARTNER_WORKERS_REQUIRED", "worker counts are required for institution agents", "")
)

// PINs excluded from issuance: the all-zeros sentinel and the one everyone
// guesses first.
var forbiddenPins = map[int]struct{}{0: {}, 1234: {}}

// GeneratePIN draws a 4-digit PIN in [1111, 9999], retrying past the
// forbidden values, and renders it zero-padded.
func GeneratePIN() string {
	for {
		n := rand.IntN(9999-1111+1) + 1111
		if _, bad := forbiddenPins[n]; bad {
			continue
		}
		return fmt.Sprintf("%04d", n)
	}
}

type Profile struct {
	id                       int64
	name                     string
	partnerID                int64
	pin                      string
	locationID               *int64
	territoryID              *int64
	locationTypeID           *int64
	warehouseID              *int64
	tillNumber               string
	kraPin                   string
	phoneType                string
	gender                   string
	latitude                 float64
	longitude                float64
	directions               string
	alternateContactName     string
	alternateContactPhone    string
	businessName             string
	businessTypeIDs          []int64
	ordersPerMonth           int
	numberOfPermanentWorkers int
	numberOfCasualWorkers    int
	creditDays               int
	prepaymentsExempted      bool
	canEarnCommission        bool
	createdAt                time.Time
	updatedAt                time.Time
}

func New(name string, partnerID int64) (Profile, error) {
	if partnerID == 0 {
		return Profile{}, ErrPartnerRequired
	}
	return Profile{
		name:      strings.TrimSpace(name),
		partnerID: partnerID,
	}, nil
}

func Hydrate(
	id int64,
	name string,
	partnerID int64,
	pin string,
	locationID *int64,
	territoryID *int64,
	locationTypeID *int64,
	warehouseID *int64,
	tillNumber string,
	kraPin string,
	phoneType string,
	gender string,
	latitude float64,
	longitude float64,
	directions string,
	alternateContactName string,
	alternateContactPhone string,
	businessName string,
	businessTypeIDs []int64,
	ordersPerMonth int,
	numberOfPermanentWorkers int,
	numberOfCasualWorkers int,
	creditDays int,
	prepaymentsExempted bool,
	canEarnCommission bool,
	createdAt time.Time,
	updatedAt time.Time,
) Profile {
	return Profile{
		id:                       id,
		name:                     strings.TrimSpace(name),
		partnerID:                partnerID,
		pin:                      pin,
		locationID:               locationID,
		territoryID:              territoryID,
		locationTypeID:           locationTypeID,
		warehouseID:              warehouseID,
		tillNumber:               tillNumber,
		kraPin:                   kraPin,
		phoneType:                phoneType,
		gender:                   gender,
		latitude:                 latitude,
		longitude:                longitude,
		directions:               directions,
		alternateContactName:     alternateContactName,
		alternateContactPhone:    alternateContactPhone,
		businessName:             businessName,
		businessTypeIDs:          businessTypeIDs,
		ordersPerMonth:           ordersPerMonth,
		numberOfPermanentWorkers: numberOfPermanentWorkers,
		numberOfCasualWorkers:    numberOfCasualWorkers,
		creditDays:               creditDays,
		prepaymentsExempted:      prepaymentsExempted,
		canEarnCommission:        canEarnCommission,
		createdAt:                createdAt,
		updatedAt:                updatedAt,
	}
}

func (p Profile) ID() int64                     { return p.id }
func (p Profile) Name() string                  { return p.name }
func (p Profile) PartnerID() int64              { return p.partnerID }
func (p Profile) Pin() string                   { return p.pin }
func (p Profile) LocationID() *int64            { return p.locationID }
func (p Profile) TerritoryID() *int64           { return p.territoryID }
func (p Profile) LocationTypeID() *int64        { return p.locationTypeID }
func (p Profile) WarehouseID() *int64           { return p.warehouseID }
func (p Profile) TillNumber() string            { return p.tillNumber }
func (p Profile) KraPin() string                { return p.kraPin }
func (p Profile) PhoneType() string             { return p.phoneType }
func (p Profile) Gender() string                { return p.gender }
func (p Profile) Latitude() float64             { return p.latitude }
func (p Profile) Longitude() float64            { return p.longitude }
func (p Profile) Directions() string            { return p.directions }
func (p Profile) AlternateContactName() string  { return p.alternateContactName }
func (p Profile) AlternateContactPhone() string { return p.alternateContactPhone }
func (p Profile) BusinessName() string          { return p.businessName }
func (p Profile) BusinessTypeIDs() []int64      { return p.businessTypeIDs }
func (p Profile) OrdersPerMonth() int           { return p.ordersPerMonth }
func (p Profile) NumberOfPermanentWorkers() int { return p.numberOfPermanentWorkers }
func (p Profile) NumberOfCasualWorkers() int    { return p.numberOfCasualWorkers }
func (p Profile) CreditDays() int               { return p.creditDays }
func (p Profile) PrepaymentsExempted() bool     { return p.prepaymentsExempted }
func (p Profile) CanEarnCommission() bool       { return p.canEarnCommission }
func (p Profile) CreatedAt() time.Time          { return p.createdAt }
func (p Profile) UpdatedAt() time.Time          { return p.updatedAt }

// AssignPin sets the PIN. Issued once at creation; later changes go through
// the service so the audit log observes the old value first.
func (p *Profile) AssignPin(pin string) { p.pin = pin }

// SetCanEarnCommission records eligibility derived from the owning partner:
// is_agent && active_agent && can_purchase.
func (p *Profile) SetCanEarnCommission(v bool) { p.canEarnCommission = v }

func (p *Profile) SetName(name string) { p.name = strings.TrimSpace(name) }

// DefaultNameFromPartner replaces the client placeholder with the owning
// partner's name.
func (p *Profile) DefaultNameFromPartner(partnerName string) {
	if p.name == "" || p.name == DefaultName {
		p.name = strings.TrimSpace(partnerName)
	}
}

func (p *Profile) SetLocationID(id *int64)       { p.locationID = id }
func (p *Profile) SetTerritoryID(id *int64)      { p.territoryID = id }
func (p *Profile) SetLocationTypeID(id *int64)   { p.locationTypeID = id }
func (p *Profile) SetWarehouseID(id *int64)      { p.warehouseID = id }
func (p *Profile) SetTillNumber(v string)        { p.tillNumber = v }
func (p *Profile) SetKraPin(v string)            { p.kraPin = v }
func (p *Profile) SetPhoneType(v string)         { p.phoneType = v }
func (p *Profile) SetGender(v string)            { p.gender = v }
func (p *Profile) SetDirections(v string)        { p.directions = v }
func (p *Profile) SetOrdersPerMonth(v int)       { p.ordersPerMonth = v }
func (p *Profile) SetCreditDays(v int)           { p.creditDays = v }
func (p *Profile) SetPrepaymentsExempted(v bool) { p.prepaymentsExempted = v }

func (p *Profile) SetCoordinates(lat, long float64) {
	p.latitude = lat
	p.longitude = long
}

func (p *Profile) SetAlternateContact(name, phone string) {
	p.alternateContactName = strings.TrimSpace(name)
	p.alternateContactPhone = strings.TrimSpace(phone)
}

func (p *Profile) SetBusiness(name string, typeIDs []int64) {
	p.businessName = strings.TrimSpace(name)
	p.businessTypeIDs = typeIDs
}

func (p *Profile) SetWorkerCounts(permanent, casual int) {
	p.numberOfPermanentWorkers = permanent
	p.numberOfCasualWorkers = casual
}

// ValidateGeo requires a real coordinate pair. (0, 0) is open ocean, not an
// agent location.
func (p Profile) ValidateGeo() error {
	if p.latitude == 0 || p.longitude == 0 {
		return ErrGeoRequired
	}
	return nil
}

// ValidateForAgentType enforces the per-category requirements: institutions
// must declare worker counts, field agents must declare their business.
func (p Profile) ValidateForAgentType(category string) error {
	switch category {
	case "Institution":
		if p.numberOfPermanentWorkers == 0 || p.numberOfCasualWorkers == 0 {
			return ErrWorkersRequired
		}
	case "Field":
		if p.businessName == "" || len(p.businessTypeIDs) == 0 {
			return ErrBusinessRequired
		}
	}
	return nil
}
