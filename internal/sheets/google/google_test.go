package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"forefunds/internal/core"

	goption "google.golang.org/api/option"
)

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      "user-1",
		Amount:      core.Money{Cents: 12550},
		Description: "Groceries",
		Date:        core.NewDate(2024, 6, 15),
		Type:        core.Expense,
		Category:    core.Food,
		Source:      core.SourceScan,
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Options{SpreadsheetID: "sheet-id", SheetName: "Mirror"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("expected missing spreadsheet id, got %v", err)
	}
	_, err := New(context.Background(), Options{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials, got %v", err)
	}
	_, err = New(context.Background(), Options{SpreadsheetID: "x", ServiceAccountFile: "/non/existent.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := credentialsJSON(Options{ServiceAccountFile: path})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Fatalf("file credentials = %s, %v", got, err)
	}
	got, err = credentialsJSON(Options{ServiceAccountJSON: `{"from":"env"}`, ServiceAccountFile: path})
	if err != nil || string(got) != `{"from":"env"}` {
		t.Fatalf("inline credentials should win, got %s, %v", got, err)
	}
}

func TestClient_Append(t *testing.T) {
	var (
		gotPath  string
		gotQuery string
		gotBody  struct {
			Values [][]any `json:"values"`
		}
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRange":"Mirror!A2:H3","updatedRows":2}}`))
	})

	ref, err := c.Append(context.Background(), []core.Transaction{sampleTx("t1"), sampleTx("t2")})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if ref != "Mirror!A2:H3" {
		t.Errorf("ref = %q", ref)
	}
	if !strings.Contains(gotPath, "/v4/spreadsheets/sheet-id/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "valueInputOption=USER_ENTERED") || !strings.Contains(gotQuery, "insertDataOption=INSERT_ROWS") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(gotBody.Values) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(gotBody.Values))
	}
	row := gotBody.Values[0]
	if row[0] != "2024-06-15" || row[1] != "Groceries" || row[2] != 125.5 || row[3] != "expense" || row[7] != "t1" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestClient_AppendErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	if ref, err := c.Append(context.Background(), nil); err != nil || ref != "" || calls != 0 {
		t.Fatalf("empty Append() = %q, %v (calls %d)", ref, err, calls)
	}

	bad := sampleTx("bad")
	bad.Amount = core.Money{}
	if _, err := c.Append(context.Background(), []core.Transaction{bad}); err == nil || calls != 0 {
		t.Fatalf("expected validation error before any call, got %v", err)
	}

	_, err := c.Append(context.Background(), []core.Transaction{sampleTx("t1")})
	if err == nil || !strings.Contains(err.Error(), "append to sheet Mirror") {
		t.Fatalf("expected api error, got %v", err)
	}

	var nilSvc Client
	if _, err := nilSvc.Append(context.Background(), []core.Transaction{sampleTx("t1")}); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
}
