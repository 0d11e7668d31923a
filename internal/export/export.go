// Package export builds the downloadable JSON snapshot of a zone's DNS
// records.
package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"cfdnsbot/internal/model"
)

type ZoneInfo struct {
	ZoneName     string `json:"zone_name"`
	ZoneID       string `json:"zone_id"`
	Email        string `json:"email"`
	TotalRecords int    `json:"total_records"`
}

type ExportInfo struct {
	ExportedAt string `json:"exported_at"`
	ExportedBy string `json:"exported_by"`
}

type Document struct {
	ZoneInfo   ZoneInfo          `json:"zone_info"`
	Records    []model.DNSRecord `json:"records"`
	ExportInfo ExportInfo        `json:"export_info"`
}

func Build(account *model.CloudflareAccount, records []model.DNSRecord, exportedBy string, now time.Time) Document {
	return Document{
		ZoneInfo: ZoneInfo{
			ZoneName:     account.ZoneName,
			ZoneID:       account.ZoneID,
			Email:        account.Email,
			TotalRecords: len(records),
		},
		Records: records,
		ExportInfo: ExportInfo{
			ExportedAt: now.Format(time.RFC3339),
			ExportedBy: exportedBy,
		},
	}
}

func (d Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)

// Filename yields dns_records_{zone}_{YYYYMMDD_HHMMSS}.json with unsafe
// characters in the zone name replaced.
func Filename(zoneName string, t time.Time) string {
	clean := unsafeFilenameChars.ReplaceAllString(zoneName, "_")
	return fmt.Sprintf("dns_records_%s_%s.json", clean, t.Format("20060102_150405"))
}
