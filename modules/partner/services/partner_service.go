package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/partner"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/account"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/agenttype"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/smsmessage"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/events"
	"github.com/acacia-erp/acacia-sdk/pkg/eventbus"
	"github.com/acacia-erp/acacia-sdk/pkg/metrics"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
	"github.com/acacia-erp/acacia-sdk/pkg/sms"
)

const (
	newAgentText = "Heko kwa kukubaliwa kama Ajenti wa Acacia. Tafadhali weka order yako ya kwanza tayari. " +
		"Mwakilishi wako wa Acacia atakutembelea hivi karibuni kukusaidia kuagiza."
	nightToPayText = "Asante kwa kuagiza bidhaa na Acacia. Bidhaa zitakazoletwa leo ni ya thamani ya " +
		"KSHS %s. Tafadhali lipa kwa njia ya MPESA kabla ya madereva wetu kuwasili."
)

// DueInvoice is one partner's unpaid deliveries for a date, as reported by
// the accounting collaborator.
type DueInvoice struct {
	PartnerID   int64
	Name        string
	Phone       string
	AmountTotal float64
}

type DueInvoiceLister interface {
	ListDueInvoices(ctx context.Context, date time.Time) ([]DueInvoice, error)
}

// CampaignResult reports one partner's outcome of an SMS campaign run.
type CampaignResult struct {
	PartnerID int64  `json:"partner_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Queued    bool   `json:"queued"`
}

type PartnerService struct {
	repo       partner.Repository
	agentTypes agenttype.Repository
	accounts   account.Repository
	profiles   agentprofile.Repository
	smsLog     smsmessage.Repository
	gateway    sms.Gateway
	invoices   DueInvoiceLister
	bus        eventbus.EventBus
	log        logrus.FieldLogger
	from       string
}

func NewPartnerService(
	repo partner.Repository,
	agentTypes agenttype.Repository,
	accounts account.Repository,
	profiles agentprofile.Repository,
	smsLog smsmessage.Repository,
	gateway sms.Gateway,
	invoices DueInvoiceLister,
	bus eventbus.EventBus,
	log logrus.FieldLogger,
	from string,
) *PartnerService {
	return &PartnerService{
		repo:       repo,
		agentTypes: agentTypes,
		accounts:   accounts,
		profiles:   profiles,
		smsLog:     smsLog,
		gateway:    gateway,
		invoices:   invoices,
		bus:        bus,
		log:        log,
		from:       from,
	}
}

func (s *PartnerService) GetByID(ctx context.Context, id int64) (partner.Partner, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return partner.Partner{}, mapError(err)
	}
	return p, nil
}

func (s *PartnerService) GetPaginated(ctx context.Context, params *partner.FindParams) ([]partner.Partner, int64, error) {
	out, total, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, mapError(err)
	}
	return out, total, nil
}

func (s *PartnerService) Create(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	created, err := inTx(ctx, func(txCtx context.Context) (partner.Partner, error) {
		if err := s.checkPhoneUnique(txCtx, p); err != nil {
			return partner.Partner{}, err
		}
		if err := s.applyReceivableDefault(txCtx, &p); err != nil {
			return partner.Partner{}, err
		}
		// A partner created with both a role and an agent type starts
		// activated.
		if p.PartnerType() != "" && p.AgentTypeID() != nil {
			p.ActivateAgent()
		}
		return s.repo.Create(txCtx, p)
	})
	if err != nil {
		return partner.Partner{}, mapError(err)
	}
	s.bus.Publish(events.PartnerCreated{
		Meta:        events.NewMeta(),
		PartnerID:   created.ID(),
		PartnerType: string(created.PartnerType()),
	})
	return created, nil
}

func (s *PartnerService) Update(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	updated, err := inTx(ctx, func(txCtx context.Context) (partner.Partner, error) {
		if err := s.checkPhoneUnique(txCtx, p); err != nil {
			return partner.Partner{}, err
		}
		if err := s.applyReceivableDefault(txCtx, &p); err != nil {
			return partner.Partner{}, err
		}
		updated, err := s.repo.Update(txCtx, p)
		if err != nil {
			return partner.Partner{}, err
		}
		if err := s.recomputeCommission(txCtx, updated); err != nil {
			return partner.Partner{}, err
		}
		return updated, nil
	})
	if err != nil {
		return partner.Partner{}, mapError(err)
	}
	s.bus.Publish(events.PartnerUpdated{Meta: events.NewMeta(), PartnerID: updated.ID()})
	return updated, nil
}

func (s *PartnerService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	return nil
}

// ToggleActiveAgent flips agent activity, purchase rights, and every
// dependent profile's commission eligibility in one transaction.
func (s *PartnerService) ToggleActiveAgent(ctx context.Context, id int64) (partner.Partner, error) {
	toggled, err := inTx(ctx, func(txCtx context.Context) (partner.Partner, error) {
		p, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return partner.Partner{}, err
		}
		p.ToggleActiveAgent()
		updated, err := s.repo.Update(txCtx, p)
		if err != nil {
			return partner.Partner{}, err
		}
		if err := s.recomputeCommission(txCtx, updated); err != nil {
			return partner.Partner{}, err
		}
		return updated, nil
	})
	if err != nil {
		return partner.Partner{}, mapError(err)
	}
	s.bus.Publish(events.ActiveAgentToggled{
		Meta:        events.NewMeta(),
		PartnerID:   toggled.ID(),
		ActiveAgent: toggled.ActiveAgent(),
	})
	return toggled, nil
}

// SearchByNameOrPhone matches positive operators against phone OR name;
// every other operator falls back to a plain name search.
func (s *PartnerService) SearchByNameOrPhone(ctx context.Context, query string, op repo.Op, limit int) ([]partner.Partner, error) {
	if op == "" {
		op = repo.OpILike
	}
	if limit <= 0 {
		limit = 100
	}

	var filter repo.Expr
	if query != "" {
		switch op {
		case repo.OpILike, repo.OpLike, repo.OpEq:
			filter = repo.Or(
				repo.Where("phone", op, query),
				repo.Where("name", op, query),
			)
		default:
			filter = repo.Where("name", op, query)
		}
	}
	out, _, err := s.repo.GetPaginated(ctx, &partner.FindParams{Filter: filter, Limit: limit})
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (s *PartnerService) checkPhoneUnique(ctx context.Context, p partner.Partner) error {
	for _, v := range []string{p.Phone(), p.Mobile()} {
		if v == "" {
			continue
		}
		count, err := s.repo.CountPhoneUsage(ctx, v, p.ID())
		if err != nil {
			return err
		}
		if count > 0 {
			return partner.ErrPhoneDup.WithTemplateData(map[string]string{"Value": v})
		}
	}
	return nil
}

func (s *PartnerService) applyReceivableDefault(ctx context.Context, p *partner.Partner) error {
	if p.AgentTypeID() == nil {
		return nil
	}
	at, err := s.agentTypes.GetByID(ctx, *p.AgentTypeID())
	if err != nil {
		return err
	}
	if at.ReceivableAccountID != nil {
		p.SetReceivableAccountID(at.ReceivableAccountID)
		return nil
	}
	acc, err := s.accounts.FirstActiveReceivable(ctx)
	if err != nil {
		return err
	}
	id := acc.ID
	p.SetReceivableAccountID(&id)
	return nil
}

func (s *PartnerService) recomputeCommission(ctx context.Context, p partner.Partner) error {
	profiles, err := s.profiles.GetByPartnerID(ctx, p.ID())
	if err != nil {
		return err
	}
	eligible := p.IsAgent() && p.ActiveAgent() && p.CanPurchase()
	for _, prof := range profiles {
		if prof.CanEarnCommission() == eligible {
			continue
		}
		prof.SetCanEarnCommission(eligible)
		if _, err := s.profiles.Update(ctx, prof); err != nil {
			return err
		}
	}
	return nil
}

// SmsNewAgents queues the onboarding SMS for every agent partner created
// inside the window. A zero window defaults to yesterday 11:00 through
// today 10:59. Partners without a phone get an unqueued record with an
// explanatory note; the campaign continues.
func (s *PartnerService) SmsNewAgents(ctx context.Context, from, to time.Time, message string) ([]CampaignResult, error) {
	if from.IsZero() && to.IsZero() {
		now := time.Now()
		to = time.Date(now.Year(), now.Month(), now.Day(), 10, 59, 59, 0, now.Location())
		y := now.AddDate(0, 0, -1)
		from = time.Date(y.Year(), y.Month(), y.Day(), 11, 0, 0, 0, y.Location())
	}
	if message == "" {
		message = newAgentText
	}

	agents, err := s.repo.ListAgentsCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, mapError(err)
	}

	results := make([]CampaignResult, 0, len(agents))
	for _, p := range agents {
		queued, note := s.dispatch(ctx, p.ID(), p.Phone(), message, "New Agent")
		if _, err := s.smsLog.Create(ctx, smsmessage.SmsMessage{
			PartnerID: p.ID(),
			Type:      sms.TypeOutbox,
			From:      s.from,
			To:        p.Phone(),
			Date:      time.Now(),
			Text:      message,
			Note:      note,
			Queued:    queued,
		}); err != nil {
			return nil, mapError(err)
		}
		results = append(results, CampaignResult{
			PartnerID: p.ID(),
			Name:      p.Name(),
			Phone:     p.Phone(),
			Message:   message,
			Queued:    queued,
		})
	}
	return results, nil
}

// SmsNightToPay texts each partner with unpaid deliveries on the date the
// formatted amount due.
func (s *PartnerService) SmsNightToPay(ctx context.Context, date time.Time, message string) ([]CampaignResult, error) {
	if s.invoices == nil {
		return nil, newServiceError(http.StatusNotImplemented, "PARTNER_NO_INVOICE_SOURCE", "no invoice source configured", nil)
	}
	if date.IsZero() {
		date = time.Now()
	}
	if message == "" {
		message = nightToPayText
	}

	due, err := s.invoices.ListDueInvoices(ctx, date)
	if err != nil {
		return nil, mapError(err)
	}

	results := make([]CampaignResult, 0, len(due))
	for _, inv := range due {
		text := fmt.Sprintf(message, formatAmount(inv.AmountTotal))
		queued, note := s.dispatch(ctx, inv.PartnerID, inv.Phone, text, "SMS Night-to-Pay")
		if _, err := s.smsLog.Create(ctx, smsmessage.SmsMessage{
			PartnerID: inv.PartnerID,
			Type:      sms.TypeOutbox,
			From:      s.from,
			To:        inv.Phone,
			Date:      time.Now(),
			Text:      text,
			Note:      note,
			Queued:    queued,
		}); err != nil {
			return nil, mapError(err)
		}
		results = append(results, CampaignResult{
			PartnerID: inv.PartnerID,
			Name:      inv.Name,
			Phone:     inv.Phone,
			Message:   text,
			Queued:    queued,
		})
	}
	return results, nil
}

// dispatch queues one SMS when a destination exists. Gateway failures are
// logged, not raised: campaigns and lifecycle actions keep going.
func (s *PartnerService) dispatch(ctx context.Context, partnerID int64, phone, text, campaign string) (bool, string) {
	if phone == "" {
		metrics.RecordSmsDispatch("no_number")
		return false, campaign + " Failure (No Number)"
	}
	queued, err := s.gateway.Queue(ctx, sms.Message{
		PartnerID: partnerID,
		Type:      sms.TypeOutbox,
		From:      s.from,
		To:        phone,
		Date:      time.Now(),
		Text:      text,
	})
	if err != nil {
		metrics.RecordSmsDispatch("error")
		s.log.WithError(err).WithField("partner_id", partnerID).Warn("sms dispatch failed")
		return false, campaign + " Failure (Gateway)"
	}
	if !queued {
		metrics.RecordSmsDispatch("skipped")
		return false, campaign + " Failure (Not Queued)"
	}
	metrics.RecordSmsDispatch("queued")
	return true, campaign
}

// formatAmount renders an amount with thousands separators and two
// decimals, e.g. 12345.6 -> "12,345.60".
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	neg := false
	if strings.HasPrefix(intPart, "-") {
		neg = true
		intPart = intPart[1:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
