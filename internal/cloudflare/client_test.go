package cloudflare

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cfdnsbot/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("user@example.com", "0123456789abcdef0123456789abcdef", WithBaseURL(srv.URL))
}

func TestListZonesSendsAuthHeaders(t *testing.T) {
	var gotEmail, gotKey, gotContentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotEmail = r.Header.Get("X-Auth-Email")
		gotKey = r.Header.Get("X-Auth-Key")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"success": true, "result": [], "errors": []}`))
	})

	if _, err := client.ListZones(context.Background()); err != nil {
		t.Fatalf("ListZones() error = %v", err)
	}
	if gotEmail != "user@example.com" {
		t.Errorf("X-Auth-Email = %q, want %q", gotEmail, "user@example.com")
	}
	if gotKey != "0123456789abcdef0123456789abcdef" {
		t.Errorf("X-Auth-Key = %q, want the api key", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
}

func TestListZonesParsesResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/zones" {
			t.Errorf("path = %q, want /zones", r.URL.Path)
		}
		w.Write([]byte(`{"success": true, "result": [
			{"id": "z1", "name": "example.com", "status": "active"},
			{"id": "z2", "name": "test.com", "status": "pending"}
		], "errors": []}`))
	})

	zones, err := client.ListZones(context.Background())
	if err != nil {
		t.Fatalf("ListZones() error = %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("got %d zones, want 2", len(zones))
	}
	if zones[0].ID != "z1" || zones[0].Name != "example.com" {
		t.Errorf("zones[0] = %+v, want id z1 name example.com", zones[0])
	}
	if zones[1].Status != "pending" {
		t.Errorf("zones[1].Status = %q, want pending", zones[1].Status)
	}
}

func TestEnvelopeFailureRaisesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "result": null, "errors": [{"code": 6003, "message": "Invalid request headers"}]}`))
	})

	_, err := client.ListZones(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ListZones() error = %v, want *APIError", err)
	}
	if len(apiErr.Errors) != 1 || apiErr.Errors[0].Code != 6003 {
		t.Errorf("APIError.Errors = %+v, want code 6003", apiErr.Errors)
	}

	_, err = client.ListDNSRecords(context.Background(), "z1")
	if !errors.As(err, &apiErr) {
		t.Fatalf("ListDNSRecords() error = %v, want *APIError", err)
	}
}

func TestNon2xxCarriesStatusCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success": false, "result": null, "errors": [{"code": 9103, "message": "Unknown X-Auth-Key"}]}`))
	})

	_, err := client.ListZones(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
}

func TestMalformedResponseRaisesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})

	_, err := client.ListZones(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
}

func TestNetworkErrorRaisesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	client := New("user@example.com", "key", WithBaseURL(srv.URL))

	_, err := client.ListZones(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", apiErr.StatusCode)
	}
}

func TestListDNSRecordsNormalizesPriority(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "result": [
			{"id": "r1", "type": "MX", "name": "example.com", "content": "mail.example.com", "ttl": 3600, "priority": 10},
			{"id": "r2", "type": "A", "name": "www.example.com", "content": "1.2.3.4", "ttl": 300, "priority": 5},
			{"id": "r3", "type": "SRV", "name": "_sip._tcp.example.com", "content": "sip.example.com", "ttl": 300, "data": {"port": 5060}}
		], "errors": []}`))
	})

	records, err := client.ListDNSRecords(context.Background(), "z1")
	if err != nil {
		t.Fatalf("ListDNSRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Priority == nil || *records[0].Priority != 10 {
		t.Errorf("MX record should keep priority 10, got %v", records[0].Priority)
	}
	if records[1].Priority != nil {
		t.Errorf("A record should have priority dropped, got %v", *records[1].Priority)
	}
	if records[2].Data == nil {
		t.Errorf("SRV record should keep its data map")
	}
}

func TestCreateDNSRecordPostsPayload(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"success": true, "result": {"id": "r9", "type": "A", "name": "www.example.com", "content": "1.2.3.4", "ttl": 300}, "errors": []}`))
	})

	proxied := true
	record, err := client.CreateDNSRecord(context.Background(), "z1", model.RecordPayload{
		Type: "A", Name: "www", Content: "1.2.3.4", TTL: 300, Proxied: &proxied,
	})
	if err != nil {
		t.Fatalf("CreateDNSRecord() error = %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/zones/z1/dns_records" {
		t.Errorf("request = %s %s, want POST /zones/z1/dns_records", gotMethod, gotPath)
	}
	if record.ID != "r9" {
		t.Errorf("record.ID = %q, want r9", record.ID)
	}
}

func TestDeleteDNSRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.Write([]byte(`{"success": true, "result": {"id": "r1"}, "errors": []}`))
	})

	if err := client.DeleteDNSRecord(context.Background(), "z1", "r1"); err != nil {
		t.Fatalf("DeleteDNSRecord() error = %v", err)
	}
}

func TestVerifyCredentials(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "result": [{"id": "z1", "name": "example.com", "status": "active"}], "errors": []}`))
	})
	valid, msg := ok.VerifyCredentials(context.Background())
	if !valid {
		t.Errorf("VerifyCredentials() = false (%s), want true", msg)
	}

	bad := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success": false, "result": null, "errors": [{"code": 9103, "message": "Unknown X-Auth-Key"}]}`))
	})
	valid, msg = bad.VerifyCredentials(context.Background())
	if valid {
		t.Error("VerifyCredentials() = true, want false")
	}
	if msg == "" {
		t.Error("VerifyCredentials() failure message should not be empty")
	}
}
