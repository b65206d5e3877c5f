package http

import (
	"net/http"

	"forefunds/internal/calc"
)

func (s *Server) handleTip(w http.ResponseWriter, r *http.Request) {
	var req tipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := calc.Tip(req.Bill, req.Percent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(tipDTO{
		Bill:    res.Bill.InexactFloat64(),
		Percent: res.Percent.InexactFloat64(),
		Tip:     res.Tip.InexactFloat64(),
		Total:   res.Total.InexactFloat64(),
		Presets: calc.TipPresets,
	}).Write(w)
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := calc.Split(req.Total, calc.Method(req.Method), req.party())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toSplitDTO(res)).Write(w)
}

// handleRebalance applies one edit and returns the rebalanced party with
// its new breakdown.
func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	var req rebalanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	method := calc.Method(req.Method)
	people, err := calc.Rebalance(req.Total, method, req.party(), req.Index, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := calc.Split(req.Total, method, people)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := toSplitDTO(res)
	out.People = toPersonDTOs(people)
	NewResponse().Data(out).Write(w)
}
