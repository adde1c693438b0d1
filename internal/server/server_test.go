package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/atexplorer/internal/config"
	"github.com/gyeh/atexplorer/internal/filter"
	"github.com/gyeh/atexplorer/internal/model"
)

const (
	participantCSV = "Hashed_Participant_ID,State,MMM_Code,Age_Band,Primary_Disability\n" +
		"P1,NSW,1,25-34,Multiple Sclerosis\n" +
		"P2,VIC,2,65+,Stroke\n"
	planCSV = "hashed_participant_id,plan_id,plan_start_date,capital_at_budget_total_aud,plan_management_mode\n" +
		"P1,PL1,2024-01-01,1000,Agency\n" +
		"P2,PL2,2024-02-01,400,Self\n"
	claimCSV = "claim_id,plan_id,service_date,support_item_number,original_claimed_unitprice_aud,paid_unitprice_aud,benchmark_unitprice_aud,source_system\n" +
		"C1,PL1,2024-01-05,05_001,300,300,250,PACE\n" +
		"C2,PL1,2024-01-06,05_002,100,0,150,PACE\n" +
		"C3,PL2,2024-02-10,05_001,50,40,60,Legacy\n"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(&config.Config{}, zerolog.New(io.Discard), nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func archive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		body := entries[name]
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		io.WriteString(w, body)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func fullArchive(t *testing.T) []byte {
	return archive(t, map[string]string{
		"a_participant.csv": participantCSV,
		"b_plan.csv":        planCSV,
		"c_claim_line.csv":  claimCSV,
	})
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status = %d", resp.StatusCode)
	}
	var info SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return info.ID.String()
}

func upload(t *testing.T, ts *httptest.Server, id, name string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(data)
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/v1/sessions/"+id+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, rawURL string, out any) int {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", rawURL, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]any
	if code := getJSON(t, ts.URL+"/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestArchive_Deterministic(t *testing.T) {
	first := fullArchive(t)
	for i := 0; i < 20; i++ {
		if !bytes.Equal(fullArchive(t), first) {
			t.Fatalf("archive bytes differ on call %d", i+2)
		}
	}
}

func TestUpload_ArchiveExpansionLimit(t *testing.T) {
	s := New(&config.Config{MaxUpload: 4096}, zerolog.New(io.Discard), nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	id := createSession(t, ts)

	// Compresses to a few hundred bytes but expands well past the limit.
	rows := participantCSV + strings.Repeat("P9,NSW,1,25-34,Stroke\n", 5000)
	data := archive(t, map[string]string{
		"a_participant.csv": rows,
		"b_plan.csv":        planCSV,
		"c_claim_line.csv":  claimCSV,
	})
	if len(data) >= 4096 {
		t.Fatalf("archive is %d bytes, test needs it under the upload limit", len(data))
	}

	resp := upload(t, ts, id, "dataset.zip", data)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 413: %s", resp.StatusCode, b)
	}
}

func TestUploadAndReport(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	data := fullArchive(t)
	resp := upload(t, ts, id, "dataset.zip", data)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload status = %d: %s", resp.StatusCode, b)
	}
	var up uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if up.Cached || len(up.Dataset.Missing) != 2 || len(up.Warnings) != 1 {
		t.Errorf("upload = %+v", up)
	}

	// Same bytes again hit the session cache.
	again := upload(t, ts, id, "dataset.zip", data)
	var up2 uploadResponse
	json.NewDecoder(again.Body).Decode(&up2)
	if !up2.Cached {
		t.Error("second identical upload should be served from cache")
	}

	var rep model.Report
	q := url.Values{"state": {"NSW"}}
	if code := getJSON(t, ts.URL+"/api/v1/sessions/"+id+"/report?"+q.Encode(), &rep); code != http.StatusOK {
		t.Fatalf("report status = %d", code)
	}
	if rep.FilteredRows != 2 || rep.KPI == nil || rep.KPI.UtilPct != 30 {
		t.Errorf("report = %d rows, KPI %+v", rep.FilteredRows, rep.KPI)
	}

	q = url.Values{"breaches_only": {"true"}, "Source_System": {"PACE,Legacy"}}
	if code := getJSON(t, ts.URL+"/api/v1/sessions/"+id+"/report?"+q.Encode(), &rep); code != http.StatusOK {
		t.Fatalf("report status = %d", code)
	}
	if rep.FilteredRows != 1 {
		t.Errorf("breaches = %d rows, want 1", rep.FilteredRows)
	}

	q = url.Values{"state": {"TAS"}}
	rep = model.Report{}
	getJSON(t, ts.URL+"/api/v1/sessions/"+id+"/report?"+q.Encode(), &rep)
	if !rep.NoData || rep.KPI != nil {
		t.Errorf("empty selection should report no data, got %+v", rep)
	}

	var opts map[string][]string
	getJSON(t, ts.URL+"/api/v1/sessions/"+id+"/options", &opts)
	if len(opts[model.ColState]) != 2 {
		t.Errorf("options = %v", opts)
	}

	var info SessionInfo
	getJSON(t, ts.URL+"/api/v1/sessions/"+id, &info)
	if info.CachedFiles != 1 || info.CacheHits != 1 || info.Dataset == nil {
		t.Errorf("session info = %+v", info)
	}
}

func TestUploadErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		file   string
		data   []byte
		status int
	}{
		{"unsupported extension", "data.xlsx", []byte("x"), http.StatusUnsupportedMediaType},
		{"corrupt archive", "data.zip", []byte("not a zip"), http.StatusUnsupportedMediaType},
		{"single csv", "b_plan.csv", []byte(planCSV), http.StatusUnprocessableEntity},
		{"no identifier", "data.zip", archive(t, map[string]string{
			"a_participant.csv": "State\nNSW\n",
			"b_plan.csv":        planCSV,
			"c_claim_line.csv":  claimCSV,
		}), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := createSession(t, ts)
			resp := upload(t, ts, id, tt.file, tt.data)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if code := getJSON(t, ts.URL+"/api/v1/sessions/"+id+"/report", nil); code != http.StatusConflict {
				t.Errorf("report after failed upload = %d, want 409", code)
			}
		})
	}

	t.Run("missing names", func(t *testing.T) {
		id := createSession(t, ts)
		resp := upload(t, ts, id, "b_plan.csv", []byte(planCSV))
		var body errorBody
		json.NewDecoder(resp.Body).Decode(&body)
		if len(body.Missing) != 2 || body.Missing[0] != "a_participant.csv" || body.Missing[1] != "c_claim_line.csv" {
			t.Errorf("missing = %v", body.Missing)
		}
	})
}

func TestSessions(t *testing.T) {
	ts := newTestServer(t)
	a := createSession(t, ts)
	b := createSession(t, ts)

	upload(t, ts, a, "dataset.zip", fullArchive(t))
	if code := getJSON(t, ts.URL+"/api/v1/sessions/"+b+"/report", nil); code != http.StatusConflict {
		t.Errorf("sessions must not share datasets, got %d", code)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/sessions/"+a, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	if code := getJSON(t, ts.URL+"/api/v1/sessions/"+a, nil); code != http.StatusNotFound {
		t.Errorf("deleted session status = %d", code)
	}
	if code := getJSON(t, ts.URL+"/api/v1/sessions/not-a-uuid", nil); code != http.StatusNotFound {
		t.Errorf("bad id status = %d", code)
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := parseSelection(url.Values{
		"state":             {"NSW, VIC", "QLD"},
		"MMM_Code":          {"1"},
		"degenerative_only": {""},
	})
	if err != nil {
		t.Fatalf("parseSelection: %v", err)
	}
	if got := sel.Fields[filter.FieldState]; len(got) != 3 || got[1] != "VIC" {
		t.Errorf("states = %v", got)
	}
	if len(sel.Fields[filter.FieldMMM]) != 1 || !sel.DegenerativeOnly || sel.BreachesOnly {
		t.Errorf("selection = %+v", sel)
	}

	if _, err := parseSelection(url.Values{"colour": {"red"}}); err == nil {
		t.Error("expected unknown filter error")
	}
	if _, err := parseSelection(url.Values{"breaches_only": {"maybe"}}); err == nil {
		t.Error("expected bool parse error")
	}
}
