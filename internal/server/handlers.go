package server

import (
	"net/http"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res, err := s.health.Check(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.encode(w, r, http.StatusOK, res)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.contact.Submit(r.Context(), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.encode(w, r, http.StatusOK, messageBody{Success: true, Message: res.Message})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.contact.List(r.Context(), 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.encode(w, r, http.StatusOK, listBody{Success: true, Data: contacts})
}
