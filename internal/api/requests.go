package api

import (
	"encoding/json"
	"net/http"

	"shareit/internal/models"
)

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	requestorID, err := actingUser(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	request, err := s.requests.Create(r.Context(), requestorID, body.Description)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *Server) handleGetOwnRequests(w http.ResponseWriter, r *http.Request) {
	requestorID, err := actingUser(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requests, err := s.requests.GetOwn(r.Context(), requestorID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	if requests == nil {
		requests = []models.ItemRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *Server) handleGetAllRequests(w http.ResponseWriter, r *http.Request) {
	if _, err := actingUser(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requests, err := s.requests.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	if requests == nil {
		requests = []models.ItemRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	if _, err := actingUser(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := s.requests.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
