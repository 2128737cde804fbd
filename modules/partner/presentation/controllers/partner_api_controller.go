package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/partner"
	"github.com/acacia-erp/acacia-sdk/modules/partner/services"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type PartnerAPIController struct {
	partners  *services.PartnerService
	apiPrefix string
}

func NewPartnerAPIController(partners *services.PartnerService) *PartnerAPIController {
	return &PartnerAPIController{
		partners:  partners,
		apiPrefix: "/partner/api",
	}
}

func (c *PartnerAPIController) Key() string {
	return c.apiPrefix + "/partners"
}

func (c *PartnerAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/partners", c.Search).Methods(http.MethodGet)
	api.HandleFunc("/partners", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/partners/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/partners/{id:[0-9]+}", c.Update).Methods(http.MethodPatch)
	api.HandleFunc("/partners/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/partners/{id:[0-9]+}:toggle-active-agent", c.ToggleActiveAgent).Methods(http.MethodPost)

	api.HandleFunc("/sms/new-agents", c.SmsNewAgents).Methods(http.MethodPost)
	api.HandleFunc("/sms/night-to-pay", c.SmsNightToPay).Methods(http.MethodPost)
}

type savePartnerRequest struct {
	Name            string `json:"name" validate:"required"`
	PartnerType     string `json:"partner_type" validate:"required,oneof=customer agent associate"`
	Phone           string `json:"phone"`
	Mobile          string `json:"mobile"`
	AgentTypeID     *int64 `json:"agent_type_id"`
	CreditDays      int    `json:"credit_days"`
	SaleAssociateID *int64 `json:"sale_associate_id"`
	AgentID         *int64 `json:"agent_id"`
}

type partnerResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	Mobile              string `json:"mobile"`
	PartnerType         string `json:"partner_type"`
	IsAgent             bool   `json:"is_agent"`
	IsSaleAssociate     bool   `json:"is_sale_associate"`
	Customer            bool   `json:"customer"`
	CanPurchase         bool   `json:"can_purchase"`
	ActiveAgent         bool   `json:"active_agent"`
	AgentTypeID         *int64 `json:"agent_type_id"`
	CreditDays          int    `json:"credit_days"`
	SaleAssociateID     *int64 `json:"sale_associate_id"`
	AgentID             *int64 `json:"agent_id"`
	ReceivableAccountID *int64 `json:"receivable_account_id"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

func toPartnerResponse(p partner.Partner) partnerResponse {
	return partnerResponse{
		ID:                  p.ID(),
		Name:                p.Name(),
		Phone:               p.Phone(),
		Mobile:              p.Mobile(),
		PartnerType:         string(p.PartnerType()),
		IsAgent:             p.IsAgent(),
		IsSaleAssociate:     p.IsSaleAssociate(),
		Customer:            p.Customer(),
		CanPurchase:         p.CanPurchase(),
		ActiveAgent:         p.ActiveAgent(),
		AgentTypeID:         p.AgentTypeID(),
		CreditDays:          p.CreditDays(),
		SaleAssociateID:     p.SaleAssociateID(),
		AgentID:             p.AgentID(),
		ReceivableAccountID: p.ReceivableAccountID(),
		CreatedAt:           p.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:           p.UpdatedAt().UTC().Format(time.RFC3339),
	}
}

func toPartnerResponses(partners []partner.Partner) []partnerResponse {
	out := make([]partnerResponse, 0, len(partners))
	for _, p := range partners {
		out = append(out, toPartnerResponse(p))
	}
	return out
}

func (c *PartnerAPIController) Search(w http.ResponseWriter, r *http.Request) {
	found, err := c.partners.SearchByNameOrPhone(
		r.Context(),
		r.URL.Query().Get("name"),
		repo.Op(r.URL.Query().Get("op")),
		queryInt(r, "limit"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartnerResponses(found))
}

func (c *PartnerAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	p, err := c.partners.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartnerResponse(p))
}

func (c *PartnerAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var req savePartnerRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	p, err := partner.New(req.Name, partner.Type(req.PartnerType))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := applyPartnerRequest(&p, req); err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := c.partners.Create(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPartnerResponse(created))
}

func (c *PartnerAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	var req savePartnerRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	p, err := c.partners.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p.SetName(req.Name)
	if err := p.ApplyType(partner.Type(req.PartnerType)); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := applyPartnerRequest(&p, req); err != nil {
		writeServiceError(w, err)
		return
	}
	updated, err := c.partners.Update(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartnerResponse(updated))
}

func applyPartnerRequest(p *partner.Partner, req savePartnerRequest) error {
	if err := p.SetPhones(req.Phone, req.Mobile); err != nil {
		return err
	}
	p.SetAgentTypeID(req.AgentTypeID)
	p.SetCreditDays(req.CreditDays)
	p.SetSaleAssociateID(req.SaleAssociateID)
	p.SetAgentID(req.AgentID)
	return nil
}

func (c *PartnerAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	if err := c.partners.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *PartnerAPIController) ToggleActiveAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	toggled, err := c.partners.ToggleActiveAgent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartnerResponse(toggled))
}

type smsNewAgentsRequest struct {
	From    string `json:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To      string `json:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Message string `json:"message"`
}

func (c *PartnerAPIController) SmsNewAgents(w http.ResponseWriter, r *http.Request) {
	var req smsNewAgentsRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	var from, to time.Time
	if req.From != "" {
		from, _ = time.Parse(time.RFC3339, req.From)
	}
	if req.To != "" {
		to, _ = time.Parse(time.RFC3339, req.To)
	}
	results, err := c.partners.SmsNewAgents(r.Context(), from, to, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type smsNightToPayRequest struct {
	Date    string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Message string `json:"message"`
}

func (c *PartnerAPIController) SmsNightToPay(w http.ResponseWriter, r *http.Request) {
	var req smsNightToPayRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}
	results, err := c.partners.SmsNightToPay(r.Context(), date, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
