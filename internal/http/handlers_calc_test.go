package http

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestCalcEndpoints(t *testing.T) {
	srv := newTestServer(t, 100, nil)
	token := signIn(t, srv, "u1")

	t.Run("tip", func(t *testing.T) {
		rr, res := do(t, srv, http.MethodPost, "/api/calc/tip", token, `{"bill":"1000","percent":15}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		var tip tipDTO
		if err := json.Unmarshal(res.Data, &tip); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if tip.Tip != 150 || tip.Total != 1150 || len(tip.Presets) != 4 {
			t.Fatalf("unexpected tip %+v", tip)
		}
	})

	t.Run("tip negative", func(t *testing.T) {
		rr, _ := do(t, srv, http.MethodPost, "/api/calc/tip", token, `{"bill":"-5","percent":10}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("split evenly", func(t *testing.T) {
		body := `{"total":"300","method":"evenly","people":[{"value":1},{"value":1},{"value":1}]}`
		rr, res := do(t, srv, http.MethodPost, "/api/calc/split", token, body)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		var split splitDTO
		if err := json.Unmarshal(res.Data, &split); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(split.Breakdown) != 3 || split.Breakdown[0].Amount != 100 || split.Summary == nil || split.Summary.Value != "100.00" {
			t.Fatalf("unexpected split %+v", split)
		}
	})

	t.Run("split errors", func(t *testing.T) {
		tests := map[string]string{
			"unknown method": `{"total":"300","method":"magic","people":[{"value":1},{"value":1}]}`,
			"too few people": `{"total":"300","method":"evenly","people":[{"value":1}]}`,
		}
		for name, body := range tests {
			if rr, _ := do(t, srv, http.MethodPost, "/api/calc/split", token, body); rr.Code != http.StatusUnprocessableEntity {
				t.Errorf("%s: status=%d", name, rr.Code)
			}
		}
		if rr, _ := do(t, srv, http.MethodPost, "/api/calc/split", token, `{"total":"x"}`); rr.Code != http.StatusBadRequest {
			t.Errorf("malformed total: status=%d", rr.Code)
		}
	})

	t.Run("rebalance percentage", func(t *testing.T) {
		body := `{"total":"1000","method":"percentage","people":[{"value":"33.33"},{"value":"33.33"},{"value":"33.34"}],"index":0,"value":50}`
		rr, res := do(t, srv, http.MethodPost, "/api/calc/split/rebalance", token, body)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		var split splitDTO
		if err := json.Unmarshal(res.Data, &split); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(split.People) != 3 || split.People[0].Value != 50 || !split.People[0].Locked || split.People[1].Value != 25 {
			t.Fatalf("unexpected people %+v", split.People)
		}
		if split.Breakdown[0].Amount != 500 || split.Breakdown[2].Amount != 250 {
			t.Fatalf("unexpected breakdown %+v", split.Breakdown)
		}
	})

	t.Run("rebalance bad index", func(t *testing.T) {
		body := `{"total":"100","method":"amount","people":[{"value":50},{"value":50}],"index":5,"value":10}`
		if rr, _ := do(t, srv, http.MethodPost, "/api/calc/split/rebalance", token, body); rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status=%d", rr.Code)
		}
	})
}
