package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	tele "gopkg.in/telebot.v3"

	"cfdnsbot/internal/export"
	"cfdnsbot/internal/model"
)

// Uploaded record files larger than this are rejected.
const maxImportSize = 1 << 20

func (b *Bot) startAddFromFile(c tele.Context) error {
	b.flows.set(c.Sender().ID, &flowState{step: stepAwaitFile})

	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("❌ Cancel", "cancel_flow")))
	text := "*📝 Add Records From File*\n\n" +
		"Upload a JSON file in the export format (a `records` array, as " +
		"produced by *View Records*). Each entry will be created in your zone."
	return respond(c, text, menu)
}

// handleDocument consumes a JSON upload when the user is in the
// add-from-file flow; other documents are ignored.
func (b *Bot) handleDocument(c tele.Context) error {
	userID := c.Sender().ID
	st := b.flows.get(userID)
	if st == nil || st.step != stepAwaitFile {
		return nil
	}
	defer b.flows.clear(userID)

	doc := c.Message().Document
	if doc.FileSize > maxImportSize {
		return c.Send("⚠️ That file is too large. Uploads are limited to 1 MB.")
	}

	rc, err := b.tb.File(&doc.File)
	if err != nil {
		log.Printf("bot: file download failed for user %d: %v", userID, err)
		return c.Send(msgGenericError)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxImportSize))
	if err != nil {
		log.Printf("bot: file read failed for user %d: %v", userID, err)
		return c.Send(msgGenericError)
	}

	records, err := parseImport(data)
	if err != nil {
		return c.Send("⚠️ Could not parse the file. Upload a JSON export with a `records` array.")
	}
	if len(records) == 0 {
		return c.Send("⚠️ The file contains no records.")
	}

	account, err := b.db.GetAccount(userID)
	if err != nil || account == nil {
		log.Printf("bot: account lookup failed for %d: %v", userID, err)
		return c.Send(msgGenericError)
	}

	client := b.newClient(account)
	created, failed := 0, 0
	for _, r := range records {
		payload := model.RecordPayload{
			Type:     r.Type,
			Name:     r.Name,
			Content:  r.Content,
			TTL:      r.TTL,
			Priority: r.Priority,
		}
		if proxyable(r.Type) {
			p := r.Proxied
			payload.Proxied = &p
		}
		if _, err := client.CreateDNSRecord(context.Background(), account.ZoneID, payload); err != nil {
			log.Printf("bot: bulk create failed for user %d (%s %s): %v", userID, r.Type, r.Name, err)
			failed++
			continue
		}
		created++
	}

	log.Printf("bot: user %d imported records: %d created, %d failed", userID, created, failed)
	return c.Send(fmt.Sprintf("📦 *Import finished*\n\nCreated: `%d`\nFailed: `%d`", created, failed), tele.ModeMarkdown)
}

// parseImport accepts either the full export document or a bare array of
// records.
func parseImport(data []byte) ([]model.DNSRecord, error) {
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err == nil && len(doc.Records) > 0 {
		return doc.Records, nil
	}
	var records []model.DNSRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
