package api

import (
	"net/http"
	"strconv"

	"gotrial/adapters/randomization"
	"gotrial/adapters/samplesize"
	"gotrial/app"
	"gotrial/domain/core"
	"gotrial/domain/design"
	"gotrial/internal/errors"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSequence generates a sequence without storing it
func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !s.decode(w, r, &req) {
		return
	}

	seq, err := s.deps.Randomizer.GenerateSequence(r.Context(), req.Config, req.ParticipantCount)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	resp := SequenceResponse{
		Assignments: seq.Assignments,
		Resolution:  seq.Resolution,
		Seed:        seq.Seed,
		Balance:     randomization.Balance(seq, req.Config),
	}
	if notice := seq.Resolution.Notice(); notice != nil {
		resp.Notice = notice.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSampleSize(w http.ResponseWriter, r *http.Request) {
	var req design.SampleSizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	n, err := s.deps.Power.Calculate(r.Context(), req)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	reference, err := samplesize.NormalApproximation(req)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, SampleSizeResponse{
		SampleSize: n,
		Request:    req.WithDefaults(),
		Reference:  reference,
	})
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if !s.decode(w, r, &req) {
		return
	}

	record, err := s.deps.Allocations.Allocate(r.Context(), req.Design, req.ParticipantCount)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleAllocateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchAllocateRequest
	if !s.decode(w, r, &req) {
		return
	}

	reqs := make([]app.AllocationRequest, len(req.Requests))
	for i, item := range req.Requests {
		reqs[i] = app.AllocationRequest{Design: item.Design, ParticipantCount: item.ParticipantCount}
	}

	records, err := s.deps.Allocations.AllocateBatch(r.Context(), reqs)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"allocations": records})
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	var req PowerRequest
	if !s.decode(w, r, &req) {
		return
	}

	summary, err := s.deps.Power.Analyze(r.Context(), req.Design, req.Request)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	designID, err := core.ParseDesignID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()), nil)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeError(w, errors.InvalidInput("limit must be a positive integer"), nil)
			return
		}
	}

	records, err := s.deps.Allocations.ListByDesign(r.Context(), designID, limit)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if records == nil {
		records = []*design.AllocationRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"allocations": records})
}

func (s *Server) allocationID(w http.ResponseWriter, r *http.Request) (core.AllocationID, bool) {
	id, err := core.ParseAllocationID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()), nil)
		return "", false
	}
	return id, true
}

func (s *Server) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.allocationID(w, r)
	if !ok {
		return
	}

	record, err := s.deps.Allocations.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := s.allocationID(w, r)
	if !ok {
		return
	}

	result, err := s.deps.Allocations.Verify(r.Context(), id)
	if err != nil {
		if result != nil {
			s.writeError(w, err, result)
		} else {
			s.writeError(w, err, nil)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	id, ok := s.allocationID(w, r)
	if !ok {
		return
	}

	enrollment, err := s.deps.Enrollment.Enroll(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

func (s *Server) handleEnrollment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.allocationID(w, r)
	if !ok {
		return
	}

	status, err := s.deps.Enrollment.Status(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
