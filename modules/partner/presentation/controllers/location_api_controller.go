package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/location"
	"github.com/acacia-erp/acacia-sdk/modules/partner/services"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type LocationAPIController struct {
	locations *services.LocationService
	apiPrefix string
}

func NewLocationAPIController(locations *services.LocationService) *LocationAPIController {
	return &LocationAPIController{
		locations: locations,
		apiPrefix: "/partner/api",
	}
}

func (c *LocationAPIController) Key() string {
	return c.apiPrefix + "/locations"
}

func (c *LocationAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/locations", c.Search).Methods(http.MethodGet)
	api.HandleFunc("/locations", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/locations/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id:[0-9]+}", c.Update).Methods(http.MethodPatch)
	api.HandleFunc("/locations/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/locations/{id:[0-9]+}:recompute-rollup", c.RecomputeRollup).Methods(http.MethodPost)
	api.HandleFunc("/locations:recompute-rollup", c.RecomputeRollupBatch).Methods(http.MethodPost)
	api.HandleFunc("/locations/{id:[0-9]+}/agents", c.GetAgents).Methods(http.MethodGet)
}

type saveLocationRequest struct {
	Name           string `json:"name" validate:"required"`
	ParentID       *int64 `json:"parent_id"`
	LocationTypeID *int64 `json:"location_type_id"`
	Active         *bool  `json:"active"`
}

type locationResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ParentID       *int64 `json:"parent_id"`
	LocationTypeID *int64 `json:"location_type_id"`
	Active         bool   `json:"active"`
	AgentCount     int    `json:"agent_count"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toLocationResponse(l location.Location) locationResponse {
	return locationResponse{
		ID:             l.ID,
		Name:           l.Name,
		ParentID:       l.ParentID,
		LocationTypeID: l.LocationTypeID,
		Active:         l.Active,
		AgentCount:     l.AgentCount,
		CreatedAt:      l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Search doubles as the list endpoint: without a name filter it pages
// through all locations, with one it runs the hierarchical name search
// and returns full path display names.
func (c *LocationAPIController) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		out, err := c.locations.List(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		items := make([]locationResponse, 0, len(out))
		for _, l := range out {
			items = append(items, toLocationResponse(l))
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	found, err := c.locations.SearchByName(r.Context(), name, repo.Op(r.URL.Query().Get("op")), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (c *LocationAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	l, err := c.locations.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	displayName, err := c.locations.DisplayName(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type response struct {
		locationResponse
		DisplayName string `json:"display_name"`
	}
	writeJSON(w, http.StatusOK, response{locationResponse: toLocationResponse(l), DisplayName: displayName})
}

func (c *LocationAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var req saveLocationRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	l := location.Location{
		Name:           req.Name,
		ParentID:       req.ParentID,
		LocationTypeID: req.LocationTypeID,
		Active:         true,
	}
	if req.Active != nil {
		l.Active = *req.Active
	}
	created, err := c.locations.Create(r.Context(), l)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLocationResponse(created))
}

func (c *LocationAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	var req saveLocationRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	l, err := c.locations.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	l.Name = req.Name
	l.ParentID = req.ParentID
	l.LocationTypeID = req.LocationTypeID
	if req.Active != nil {
		l.Active = *req.Active
	}
	updated, err := c.locations.Update(r.Context(), l)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponse(updated))
}

func (c *LocationAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	if err := c.locations.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *LocationAPIController) RecomputeRollup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	if err := c.locations.RecomputeRollup(r.Context(), []int64{id}); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recomputeRollupRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

func (c *LocationAPIController) RecomputeRollupBatch(w http.ResponseWriter, r *http.Request) {
	var req recomputeRollupRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_BODY", err.Error())
		return
	}
	if !checkDTO(w, &req) {
		return
	}
	if err := c.locations.RecomputeRollup(r.Context(), req.IDs); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *LocationAPIController) GetAgents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "PARTNER_INVALID_ID", "id must be an integer")
		return
	}
	action, err := c.locations.GetAgents(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, action)
}
