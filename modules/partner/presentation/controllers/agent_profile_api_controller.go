package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/modules/partner/services"
)

type AgentProfileAPIController struct {
	profiles  *services.AgentProfileService
	apiPrefix string
}

func NewAgentProfileAPIController(profiles *services.AgentProfileService) *AgentProfileAPIController {
	return &AgentProfileAPIController{
		profiles:  profiles,
		apiPrefix: "/partner/api",
	}
}

func (c *AgentProfileAPIController) Key() string {
	return c.apiPrefix + "/agent-profiles"
}

func (c *AgentProfileAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/agent-profiles", c.List).Methods(http.MethodGet)
	api.HandleFunc("/agent-profiles", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/agent-profiles/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/agent-profiles/{id:[0-9]+}", c.Update).Methods(http.MethodPatch)
	api.HandleFunc("/agent-profiles/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/agent-profiles/{id:[0-9]+}:toggle-commission", c.ToggleCanEarnCommission).Methods(http.MethodPost)
	api.HandleFunc("/agent-profiles/{id:[0-9]+}/pin-history", c.PinHistory).Methods(http.MethodGet)
}

type saveAgentProfileRequest struct {
	Name                  string  `json:"name"`
	PartnerID             int64   `json:"partner_id" validate:"required,min=1"`
	LocationID            *int64  `json:"location_id"`
	TerritoryID           *int64  `json:"territory_id"`
	LocationTypeID        *int64  `json:"location_type_id"`
	WarehouseID           *int64  `json:"warehouse_id"`
	TillNumber            string  `json:"till_number"`
	KraPin                string  `json:"kra_pin"`
	PhoneType             string  `json:"phone_type"`
	Gender                string  `json:"gender" validate:"omitempty,oneof=male female other"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	Directions            string  `json:"directions"`
	AlternateContactName  string  `json:"alternate_contact_name"`
	AlternateContactPhone string  `json:"alternate_contact_phone"`
	BusinessName          string  `json:"business_name"`
	BusinessTypeIDs       []int64 `json:"business_type_ids"`
	OrdersPerMonth        int     `json:"orders_per_month" validate:"min=0"`
	PermanentWorkers      int     `json:"permanent_workers" validate:"min=0"`
	CasualWorkers         int     `json:"casual_workers" validate:"min=0"`
	CreditDays            int     `json:"credit_days" validate:"min=0"`
	PrepaymentsExempted   bool    `json:"prepayments_exempted"`
}

type agentProfileResponse struct {
	ID                    int64   `json:"id"`
	Name                  string  `json:"name"`
	PartnerID             int64   `json:"partner_id"`
	LocationID            *int64  `json:"location_id"`
	TerritoryID           *int64  `json:"territory_id"`
	LocationTypeID        *int64  `json:"location_type_id"`
	WarehouseID           *int64  `json:"warehouse_id"`
	TillNumber            string  `json:"till_number"`
	KraPin                string  `json:"kra_pin"`
	PhoneType             string  `json:"phone_type"`
	Gender                string  `json:"gender"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	Directions            string  `json:"directions"`
	AlternateContactName  string  `json:"alternate_contact_name"`
	AlternateContactPhone string  `json:"alternate_contact_phone"`
	BusinessName          string  `json:"business_name"`
	BusinessTypeIDs       []int64 `json:"business_type_ids"`
	OrdersPerMonth        int     `json:"orders_per_month"`
	PermanentWorkers      int     `json:"permanent_workers"`
	CasualWorkers         int     `json:"casual_workers"`
	CreditDays            int     `json:"credit_days"`
	PrepaymentsExempted   bool    `json:"prepayments_exempted"`
	CanEarnCommission     bool    `json:"can_earn_commission"`
	CreatedAt             string  `json:"created_at"`
	UpdatedAt             string  `json:"updated_at"`
}

func toAgentProfileResponse(p agentprofile.Profile) agentProfileResponse {
	return agentProfileResponse{
		ID:                    p.ID(),
		Name:                  p.Name(),
		PartnerID:             p.PartnerID(),
		LocationID:            p.LocationID(),
		TerritoryID:           p.TerritoryID(),
		LocationTypeID:        p.LocationTypeID(),
		WarehouseID:           p.WarehouseID(),
		TillNumber:            p.TillNumber(),
		KraPin:                p.KraPin(),
		PhoneType:             p.PhoneType(),
		Gender:                p.Gender(),
		Latitude:              p.Latitude(),
		Longitude:             p.Longitude(),
		Directions:            p.Directions(),
		AlternateContactName:  p.AlternateContactName(),
		AlternateContactPhone: p.AlternateContactPhone(),
		BusinessName:          p.BusinessName(),
		BusinessTypeIDs:       p.BusinessTypeIDs(),
		OrdersPerMonth:        p.OrdersPerMonth(),
		PermanentWorkers:      p.NumberOfPermanentWorkers(),
		CasualWorkers:         p.NumberOfCasualWorkers(),
		CreditDays:            p.CreditDays(),
		PrepaymentsExempted:   p.PrepaymentsExempted(),
		CanEarnCommission:     p.CanEarnCommission(),
		CreatedAt:             p.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:             p.UpdatedAt().UTC().Format(time.RFC3339),
	}
}

func applyAgentProfileRequest(p *agentprofile.Profile, req saveAgentProfileRequest) {
	if req.Name != "" {
		p.SetName(req.Name)
	}
	p.SetLocationID(req.LocationID)
	p.SetTerritoryID(req.TerritoryID)
	p.SetLocationTypeID(req.LocationTypeID)
	p.SetWarehouseID(req.WarehouseID)
	p.SetTillNumber(req.TillNumber)
	p.SetKraPin(req.KraPin)
	p.SetPhoneType(req.PhoneType)
	p.SetGender(req.Gender)
	p.SetCoordinates(req.Latitude, req.Longitude)
	p.SetDirections(req.Directions)
	p.SetAlternateContact(req.AlternateContactName, req.AlternateContactPhone)
	p.SetBusiness(req.BusinessName, req.BusinessTypeIDs)
	p.SetOrdersPerMonth(req.OrdersPerMonth)
	p.SetWorkerCounts(req.PermanentWorkers, req.CasualWorkers)
	p.SetCreditDays(req.CreditDays)
	p.SetPrepaymentsExempted(req.PrepaymentsExempted)
}

func (c *AgentProfileAPIController) List(w http.ResponseWriter, r *http.Request) {
	if partnerID := queryInt(r, "partner_id"); partnerID > 0 {
		out, err := c.profiles.GetByPartnerID(r.Context(), int64(partnerID))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAgentProfileResponses(out))
		return
	}
	out, _, err := c.profiles.GetPaginated(r.Context(), &agentprofile.FindParams{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentProfileResponses(out))
}

func toAgentProfileResponses(profiles []agentprofile.Profile) []agentProfileResponse {
	out := make([]agentProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toAgentProfileResponse(p))
	}
	return out
}

func (c *AgentProfileAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	p, err := c.profiles.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentProfileResponse(p))
}

func (c *AgentProfileAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var req saveAgentProfileRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	p, err := agentprofile.New(req.Name, req.PartnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	applyAgentProfileRequest(&p, req)
	created, err := c.profiles.Create(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgentProfileResponse(created))
}

func (c *AgentProfileAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	var req saveAgentProfileRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	p, err := c.profiles.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	applyAgentProfileRequest(&p, req)
	updated, err := c.profiles.Update(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentProfileResponse(updated))
}

func (c *AgentProfileAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	if err := c.profiles.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *AgentProfileAPIController) ToggleCanEarnCommission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	toggled, err := c.profiles.ToggleCanEarnCommission(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentProfileResponse(toggled))
}

func (c *AgentProfileAPIController) PinHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	history, err := c.profiles.PinHistory(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type pinLogResponse struct {
		ID        int64  `json:"id"`
		OldPin    string `json:"old_pin"`
		NewPin    string `json:"new_pin"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]pinLogResponse, 0, len(history))
	for _, l := range history {
		out = append(out, pinLogResponse{
			ID:        l.ID,
			OldPin:    l.OldPin,
			NewPin:    l.NewPin,
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
