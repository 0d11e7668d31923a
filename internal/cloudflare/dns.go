package cloudflare

import (
	"context"
	"fmt"
	"net/http"

	"cfdnsbot/internal/model"
)

// ListZones fetches every zone visible to the credentials.
func (c *Client) ListZones(ctx context.Context) ([]model.Zone, error) {
	var zones []model.Zone
	if err := c.do(ctx, http.MethodGet, "/zones", nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// ListDNSRecords fetches all DNS records in a zone.
func (c *Client) ListDNSRecords(ctx context.Context, zoneID string) ([]model.DNSRecord, error) {
	var records []model.DNSRecord
	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	for i := range records {
		normalizeRecord(&records[i])
	}
	return records, nil
}

func (c *Client) GetDNSRecord(ctx context.Context, zoneID, recordID string) (model.DNSRecord, error) {
	var record model.DNSRecord
	path := fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID)
	if err := c.do(ctx, http.MethodGet, path, nil, &record); err != nil {
		return model.DNSRecord{}, err
	}
	normalizeRecord(&record)
	return record, nil
}

func (c *Client) CreateDNSRecord(ctx context.Context, zoneID string, payload model.RecordPayload) (model.DNSRecord, error) {
	var record model.DNSRecord
	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	if err := c.do(ctx, http.MethodPost, path, payload, &record); err != nil {
		return model.DNSRecord{}, err
	}
	normalizeRecord(&record)
	return record, nil
}

func (c *Client) UpdateDNSRecord(ctx context.Context, zoneID, recordID string, payload model.RecordPayload) (model.DNSRecord, error) {
	var record model.DNSRecord
	path := fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID)
	if err := c.do(ctx, http.MethodPut, path, payload, &record); err != nil {
		return model.DNSRecord{}, err
	}
	normalizeRecord(&record)
	return record, nil
}

// DeleteDNSRecord removes a record. A nil error means the API confirmed
// the deletion with a success envelope.
func (c *Client) DeleteDNSRecord(ctx context.Context, zoneID, recordID string) error {
	path := fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// VerifyCredentials checks the credentials by listing zones. The failure
// message is human-readable rather than a propagated error.
func (c *Client) VerifyCredentials(ctx context.Context) (bool, string) {
	zones, err := c.ListZones(ctx)
	if err != nil {
		return false, fmt.Sprintf("Invalid credentials: %v", err)
	}
	return true, fmt.Sprintf("Credentials verified. Found %d zones.", len(zones))
}

// normalizeRecord drops fields that only apply to certain record types:
// priority is meaningful for MX only, and an empty data map is noise.
func normalizeRecord(r *model.DNSRecord) {
	if r.Type != "MX" {
		r.Priority = nil
	}
	if len(r.Data) == 0 {
		r.Data = nil
	}
}
