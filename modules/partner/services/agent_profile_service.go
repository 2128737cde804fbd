package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/partner"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/agenttype"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/pinlog"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/smsmessage"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/events"
	"github.com/acacia-erp/acacia-sdk/pkg/eventbus"
	"github.com/acacia-erp/acacia-sdk/pkg/metrics"
	"github.com/acacia-erp/acacia-sdk/pkg/sms"
)

const pinText = "Your Acacia PIN is %s . PIN yako, SIRI yako."

type AgentProfileService struct {
	profiles   agentprofile.Repository
	partners   partner.Repository
	agentTypes agenttype.Repository
	pinLogs    pinlog.Repository
	smsLog     smsmessage.Repository
	gateway    sms.Gateway
	bus        eventbus.EventBus
	log        logrus.FieldLogger
	from       string
}

func NewAgentProfileService(
	profiles agentprofile.Repository,
	partners partner.Repository,
	agentTypes agenttype.Repository,
	pinLogs pinlog.Repository,
	smsLog smsmessage.Repository,
	gateway sms.Gateway,
	bus eventbus.EventBus,
	log logrus.FieldLogger,
	from string,
) *AgentProfileService {
	return &AgentProfileService{
		profiles:   profiles,
		partners:   partners,
		agentTypes: agentTypes,
		pinLogs:    pinLogs,
		smsLog:     smsLog,
		gateway:    gateway,
		bus:        bus,
		log:        log,
		from:       from,
	}
}

func (s *AgentProfileService) GetByID(ctx context.Context, id int64) (agentprofile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return agentprofile.Profile{}, mapError(err)
	}
	return p, nil
}

func (s *AgentProfileService) GetPaginated(ctx context.Context, params *agentprofile.FindParams) ([]agentprofile.Profile, int64, error) {
	out, total, err := s.profiles.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, mapError(err)
	}
	return out, total, nil
}

func (s *AgentProfileService) GetByPartnerID(ctx context.Context, partnerID int64) ([]agentprofile.Profile, error) {
	out, err := s.profiles.GetByPartnerID(ctx, partnerID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

type createOutcome struct {
	profile agentprofile.Profile
	owner   partner.Partner
	pin     string
}

// Create validates the profile against its owning partner, issues a PIN
// for agent partners, and notifies the agent once when a phone exists.
// The PIN is issued either way.
func (s *AgentProfileService) Create(ctx context.Context, p agentprofile.Profile) (agentprofile.Profile, error) {
	out, err := inTx(ctx, func(txCtx context.Context) (createOutcome, error) {
		owner, err := s.partners.GetByID(txCtx, p.PartnerID())
		if err != nil {
			return createOutcome{}, err
		}
		p.DefaultNameFromPartner(owner.Name())
		if err := s.validate(txCtx, p, owner); err != nil {
			return createOutcome{}, err
		}

		var pin string
		if owner.IsAgent() {
			pin = agentprofile.GeneratePIN()
			p.AssignPin(pin)
		}
		p.SetCanEarnCommission(owner.IsAgent() && owner.ActiveAgent() && owner.CanPurchase())

		created, err := s.profiles.Create(txCtx, p)
		if err != nil {
			return createOutcome{}, err
		}
		return createOutcome{profile: created, owner: owner, pin: pin}, nil
	})
	if err != nil {
		return agentprofile.Profile{}, mapError(err)
	}

	if out.pin != "" {
		queued := false
		if out.owner.Phone() != "" {
			queued = s.sendPin(ctx, out.owner, out.pin)
		}
		s.bus.Publish(events.PinIssued{
			Meta:      events.NewMeta(),
			ProfileID: out.profile.ID(),
			PartnerID: out.owner.ID(),
			SmsQueued: queued,
		})
	}
	s.bus.Publish(events.ProfileCreated{
		Meta:      events.NewMeta(),
		ProfileID: out.profile.ID(),
		PartnerID: out.owner.ID(),
	})
	return out.profile, nil
}

// Update logs any PIN change before the write lands, keeping the audit
// trail ahead of the data.
func (s *AgentProfileService) Update(ctx context.Context, p agentprofile.Profile) (agentprofile.Profile, error) {
	var pinChanged bool
	updated, err := inTx(ctx, func(txCtx context.Context) (agentprofile.Profile, error) {
		current, err := s.profiles.GetByID(txCtx, p.ID())
		if err != nil {
			return agentprofile.Profile{}, err
		}
		owner, err := s.partners.GetByID(txCtx, current.PartnerID())
		if err != nil {
			return agentprofile.Profile{}, err
		}
		if err := s.validate(txCtx, p, owner); err != nil {
			return agentprofile.Profile{}, err
		}

		if p.Pin() != current.Pin() {
			pinChanged = true
			if _, err := s.pinLogs.Create(txCtx, pinlog.PinLog{
				ProfileID: current.ID(),
				PartnerID: current.PartnerID(),
				OldPin:    current.Pin(),
				NewPin:    p.Pin(),
			}); err != nil {
				return agentprofile.Profile{}, err
			}
		}
		return s.profiles.Update(txCtx, p)
	})
	if err != nil {
		return agentprofile.Profile{}, mapError(err)
	}
	if pinChanged {
		s.bus.Publish(events.PinChanged{Meta: events.NewMeta(), ProfileID: updated.ID()})
	}
	s.bus.Publish(events.ProfileUpdated{Meta: events.NewMeta(), ProfileID: updated.ID()})
	return updated, nil
}

func (s *AgentProfileService) Delete(ctx context.Context, id int64) error {
	if err := s.profiles.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	return nil
}

// ToggleCanEarnCommission is the manual override on top of the derived
// eligibility.
func (s *AgentProfileService) ToggleCanEarnCommission(ctx context.Context, id int64) (agentprofile.Profile, error) {
	toggled, err := inTx(ctx, func(txCtx context.Context) (agentprofile.Profile, error) {
		p, err := s.profiles.GetByID(txCtx, id)
		if err != nil {
			return agentprofile.Profile{}, err
		}
		p.SetCanEarnCommission(!p.CanEarnCommission())
		return s.profiles.Update(txCtx, p)
	})
	if err != nil {
		return agentprofile.Profile{}, mapError(err)
	}
	return toggled, nil
}

// PinHistory returns the profile's full PIN audit trail, oldest first.
func (s *AgentProfileService) PinHistory(ctx context.Context, profileID int64) ([]pinlog.PinLog, error) {
	out, err := s.pinLogs.ListByProfileID(ctx, profileID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (s *AgentProfileService) validate(ctx context.Context, p agentprofile.Profile, owner partner.Partner) error {
	if err := p.ValidateGeo(); err != nil {
		return err
	}
	if phone := p.AlternateContactPhone(); phone != "" && !partner.ValidPhone(phone) {
		return partner.ErrPhoneFormat.WithTemplateData(map[string]string{"Value": phone})
	}
	if owner.AgentTypeID() != nil {
		at, err := s.agentTypes.GetByID(ctx, *owner.AgentTypeID())
		if err != nil {
			return err
		}
		if err := p.ValidateForAgentType(at.Category); err != nil {
			return err
		}
	}
	return nil
}

func (s *AgentProfileService) sendPin(ctx context.Context, owner partner.Partner, pin string) bool {
	text := fmt.Sprintf(pinText, pin)
	queued, err := s.gateway.Queue(ctx, sms.Message{
		PartnerID: owner.ID(),
		Type:      sms.TypeOutbox,
		From:      s.from,
		To:        owner.Phone(),
		Date:      time.Now(),
		Text:      text,
	})
	note := "PIN generation"
	if err != nil {
		metrics.RecordSmsDispatch("error")
		s.log.WithError(err).WithField("partner_id", owner.ID()).Warn("pin sms dispatch failed")
		queued = false
		note = "PIN generation Failure (Gateway)"
	} else if queued {
		metrics.RecordSmsDispatch("queued")
	} else {
		metrics.RecordSmsDispatch("skipped")
	}
	if _, err := s.smsLog.Create(ctx, smsmessage.SmsMessage{
		PartnerID: owner.ID(),
		Type:      sms.TypeOutbox,
		From:      s.from,
		To:        owner.Phone(),
		Date:      time.Now(),
		Text:      text,
		Note:      note,
		Queued:    queued,
	}); err != nil {
		s.log.WithError(err).WithField("partner_id", owner.ID()).Warn("pin sms record failed")
	}
	return queued
}
