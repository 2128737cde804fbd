package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/acacia-erp/acacia-sdk/pkg/serrors"
)

// Type is the commercial role of a partner. The three values are closed:
// every role recomputes the derived flags below through ApplyType.
type Type string

const (
	TypeCustomer  Type = "customer"
	TypeAgent     Type = "agent"
	TypeAssociate Type = "associate"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCustomer, TypeAgent, TypeAssociate:
		return true
	}
	return false
}

// Phone numbers are country code (3 digits) plus subscriber (9 digits).
var phonePattern = regexp.MustCompile(`^\+\d{3}\d{9}$`)

var (
	ErrNotFound    = serrors.NewError("PARTNER_NOT_FOUND", "partner not found", "")
	ErrInvalidType = serrors.NewError("PARTNER_INVALID_TYPE", "unknown partner type", "")
	ErrPhoneFormat = serrors.NewError("PARTNER_PHONE_FORMAT", "phone must be +CCCXXXXXXXXX (3-digit country code, 9-digit number)", "")
	ErrPhoneEqual  = serrors.NewError("PARTNER_PHONE_EQUAL", "phone and mobile numbers must differ", "")
	ErrPhoneDup    = serrors.NewError("PARTNER_PHONE_DUP", "phone number already in use by another partner", "")
)

type Partner struct {
	id                  int64
	name                string
	phone               string
	mobile              string
	partnerType         Type
	isAgent             bool
	isSaleAssociate     bool
	customer            bool
	canPurchase         bool
	activeAgent         bool
	agentTypeID         *int64
	creditDays          int
	saleAssociateID     *int64
	agentID             *int64
	receivableAccountID *int64
	createdAt           time.Time
	updatedAt           time.Time
}

func New(name string, partnerType Type) (Partner, error) {
	p := Partner{
		name:        strings.TrimSpace(name),
		partnerType: partnerType,
	}
	if err := p.ApplyType(partnerType); err != nil {
		return Partner{}, err
	}
	return p, nil
}

func Hydrate(
	id int64,
	name string,
	phone string,
	mobile string,
	partnerType Type,
	isAgent bool,
	isSaleAssociate bool,
	customer bool,
	canPurchase bool,
	activeAgent bool,
	agentTypeID *int64,
	creditDays int,
	saleAssociateID *int64,
	agentID *int64,
	receivableAccountID *int64,
	createdAt time.Time,
	updatedAt time.Time,
) Partner {
	return Partner{
		id:                  id,
		name:                strings.TrimSpace(name),
		phone:               phone,
		mobile:              mobile,
		partnerType:         partnerType,
		isAgent:             isAgent,
		isSaleAssociate:     isSaleAssociate,
		customer:            customer,
		canPurchase:         canPurchase,
		activeAgent:         activeAgent,
		agentTypeID:         agentTypeID,
		creditDays:          creditDays,
		saleAssociateID:     saleAssociateID,
		agentID:             agentID,
		receivableAccountID: receivableAccountID,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

func (p Partner) ID() int64                   { return p.id }
func (p Partner) Name() string                { return p.name }
func (p Partner) Phone() string               { return p.phone }
func (p Partner) Mobile() string              { return p.mobile }
func (p Partner) PartnerType() Type           { return p.partnerType }
func (p Partner) IsAgent() bool               { return p.isAgent }
func (p Partner) IsSaleAssociate() bool       { return p.isSaleAssociate }
func (p Partner) Customer() bool              { return p.customer }
func (p Partner) CanPurchase() bool           { return p.canPurchase }
func (p Partner) ActiveAgent() bool           { return p.activeAgent }
func (p Partner) AgentTypeID() *int64         { return p.agentTypeID }
func (p Partner) CreditDays() int             { return p.creditDays }
func (p Partner) SaleAssociateID() *int64     { return p.saleAssociateID }
func (p Partner) AgentID() *int64             { return p.agentID }
func (p Partner) ReceivableAccountID() *int64 { return p.receivableAccountID }
func (p Partner) CreatedAt() time.Time        { return p.createdAt }
func (p Partner) UpdatedAt() time.Time        { return p.updatedAt }

// ApplyType sets the partner type and recomputes every derived flag in one
// step, so a role change can never leave a stale flag behind.
func (p *Partner) ApplyType(t Type) error {
	switch t {
	case TypeAgent:
		p.isAgent = true
		p.isSaleAssociate = false
		p.customer = true
		p.canPurchase = true
	case TypeAssociate:
		p.isAgent = false
		p.isSaleAssociate = true
		p.customer = false
		p.canPurchase = false
	case TypeCustomer:
		p.isAgent = false
		p.isSaleAssociate = false
		p.customer = true
		p.canPurchase = false
	default:
		return ErrInvalidType.WithTemplateData(map[string]string{"Type": string(t)})
	}
	p.partnerType = t
	return nil
}

// ActivateAgent marks a newly created agent active. Creation with both a
// partner type and an agent type set activates immediately.
func (p *Partner) ActivateAgent() {
	p.activeAgent = true
}

// ToggleActiveAgent flips agent activity together with purchase rights.
func (p *Partner) ToggleActiveAgent() {
	p.activeAgent = !p.activeAgent
	p.canPurchase = p.activeAgent
}

func (p *Partner) SetName(name string)          { p.name = strings.TrimSpace(name) }
func (p *Partner) SetAgentTypeID(id *int64)     { p.agentTypeID = id }
func (p *Partner) SetCreditDays(days int)       { p.creditDays = days }
func (p *Partner) SetSaleAssociateID(id *int64) { p.saleAssociateID = id }
func (p *Partner) SetAgentID(id *int64)         { p.agentID = id }

func (p *Partner) SetReceivableAccountID(id *int64) { p.receivableAccountID = id }

// SetPhones validates both numbers and their distinctness. Empty values are
// allowed; a set value must match the phone pattern.
func (p *Partner) SetPhones(phone, mobile string) error {
	phone = strings.TrimSpace(phone)
	mobile = strings.TrimSpace(mobile)
	if phone != "" && !phonePattern.MatchString(phone) {
		return ErrPhoneFormat.WithTemplateData(map[string]string{"Value": phone})
	}
	if mobile != "" && !phonePattern.MatchString(mobile) {
		return ErrPhoneFormat.WithTemplateData(map[string]string{"Value": mobile})
	}
	if phone != "" && phone == mobile {
		return ErrPhoneEqual
	}
	p.phone = phone
	p.mobile = mobile
	return nil
}

// ValidPhone reports whether v is a well-formed subscriber number.
func ValidPhone(v string) bool {
	return phonePattern.MatchString(v)
}
