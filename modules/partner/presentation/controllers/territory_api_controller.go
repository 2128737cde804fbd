package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/territory"
	"github.com/acacia-erp/acacia-sdk/modules/partner/services"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type TerritoryAPIController struct {
	territories *services.TerritoryService
	apiPrefix   string
}

func NewTerritoryAPIController(territories *services.TerritoryService) *TerritoryAPIController {
	return &TerritoryAPIController{
		territories: territories,
		apiPrefix:   "/partner/api",
	}
}

func (c *TerritoryAPIController) Key() string {
	return c.apiPrefix + "/territories"
}

func (c *TerritoryAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/territories", c.Search).Methods(http.MethodGet)
	api.HandleFunc("/territories", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/territories/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/territories/{id:[0-9]+}", c.Update).Methods(http.MethodPatch)
	api.HandleFunc("/territories/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

type saveTerritoryRequest struct {
	Name     string `json:"name" validate:"required"`
	ParentID *int64 `json:"parent_id"`
	Active   *bool  `json:"active"`
}

type territoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ParentID  *int64 `json:"parent_id"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toTerritoryResponse(t territory.Territory) territoryResponse {
	return territoryResponse{
		ID:        t.ID,
		Name:      t.Name,
		ParentID:  t.ParentID,
		Active:    t.Active,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (c *TerritoryAPIController) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		out, err := c.territories.List(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		items := make([]territoryResponse, 0, len(out))
		for _, t := range out {
			items = append(items, toTerritoryResponse(t))
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	found, err := c.territories.SearchByName(r.Context(), name, repo.Op(r.URL.Query().Get("op")), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (c *TerritoryAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	t, err := c.territories.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	displayName, err := c.territories.DisplayName(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type response struct {
		territoryResponse
		DisplayName string `json:"display_name"`
	}
	writeJSON(w, http.StatusOK, response{territoryResponse: toTerritoryResponse(t), DisplayName: displayName})
}

func (c *TerritoryAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var req saveTerritoryRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	t := territory.Territory{Name: req.Name, ParentID: req.ParentID, Active: true}
	if req.Active != nil {
		t.Active = *req.Active
	}
	created, err := c.territories.Create(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTerritoryResponse(created))
}

func (c *TerritoryAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	var req saveTerritoryRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	t, err := c.territories.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	t.Name = req.Name
	t.ParentID = req.ParentID
	if req.Active != nil {
		t.Active = *req.Active
	}
	updated, err := c.territories.Update(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTerritoryResponse(updated))
}

func (c *TerritoryAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	if err := c.territories.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
