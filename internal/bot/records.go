package bot

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"cfdnsbot/internal/export"
	"cfdnsbot/internal/model"
)

var recordTypes = []string{"A", "AAAA", "CNAME", "MX", "TXT", "NS", "SRV", "CAA"}

var ttlChoices = []int{1, 300, 600, 1800, 3600, 86400}

// Cloudflare only proxies these record types.
func proxyable(recordType string) bool {
	switch recordType {
	case "A", "AAAA", "CNAME":
		return true
	}
	return false
}

const msgFetchRecordsFailed = "❌ Failed to fetch DNS records. Check your credentials and try again with /menu."

// Buttons render one record per row; Telegram caps keyboards well below
// this anyway.
const maxRecordButtons = 30

// viewRecords sends a summary and the JSON export document for the zone.
func (b *Bot) viewRecords(c tele.Context) error {
	account := accountFrom(c)
	records, err := b.newClient(account).ListDNSRecords(context.Background(), account.ZoneID)
	if err != nil {
		log.Printf("bot: record fetch failed for user %d: %v", c.Sender().ID, err)
		return respond(c, msgFetchRecordsFailed, nil)
	}
	if len(records) == 0 {
		return respond(c, "📭 No DNS records found in this zone.", nil)
	}

	now := time.Now()
	exportedBy := fmt.Sprintf("%s (%d)", c.Sender().FirstName, c.Sender().ID)
	doc := export.Build(account, records, exportedBy, now)
	data, err := doc.Marshal()
	if err != nil {
		log.Printf("bot: export marshal failed for user %d: %v", c.Sender().ID, err)
		return respond(c, msgGenericError, nil)
	}

	summary := fmt.Sprintf(
		"📋 *DNS Records*\n\n`Zone    :` `%s`\n`Records :` `%d`\n`Exported:` `%s`",
		account.ZoneName, len(records), now.Format("2006-01-02 15:04:05"),
	)
	if err := respond(c, summary, nil); err != nil {
		return err
	}

	file := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: export.Filename(account.ZoneName, now),
		Caption:  fmt.Sprintf("📄 DNS records for zone: %s", account.ZoneName),
	}
	return c.Send(file)
}

func (b *Bot) showAddRecordMenu(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("Single Record", "add_single"), menu.Data("From File", "add_from_file")),
		menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")),
	)
	text := "*📝 Add DNS Record*\n\n" +
		"1. *Single Record* — create one new DNS record\n" +
		"2. *From File* — create many records from a JSON export"
	return respond(c, text, menu)
}

func (b *Bot) startAddRecord(c tele.Context) error {
	b.flows.set(c.Sender().ID, &flowState{})

	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	for i := 0; i < len(recordTypes); i += 4 {
		var row tele.Row
		for j := i; j < i+4 && j < len(recordTypes); j++ {
			row = append(row, menu.Data(recordTypes[j], "rec_type", recordTypes[j]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, menu.Row(menu.Data("❌ Cancel", "cancel_flow")))
	menu.Inline(rows...)

	return respond(c, "*📝 Add DNS Record*\n\nStep 1/5: Pick the record type:", menu)
}

func (b *Bot) pickRecordType(recordType string) tele.HandlerFunc {
	return func(c tele.Context) error {
		valid := false
		for _, t := range recordTypes {
			if t == recordType {
				valid = true
				break
			}
		}
		if !valid {
			return respond(c, "⚠️ Unknown record type. Use /menu to start over.", nil)
		}

		st := &flowState{step: stepAddName, recordType: recordType}
		b.flows.set(c.Sender().ID, st)
		text := fmt.Sprintf(
			"*📝 Add DNS Record*\n\nType: `%s`\n\nStep 2/5: Enter the record name (e.g. `www`, `api`, `@` for root):",
			recordType,
		)
		return respond(c, text, nil)
	}
}

// handleFlowText consumes free text for the add and edit flows.
func (b *Bot) handleFlowText(c tele.Context) error {
	userID := c.Sender().ID
	st := b.flows.get(userID)
	if st == nil {
		return c.Send("Use /menu to access the main menu.")
	}
	text := strings.TrimSpace(c.Text())

	switch st.step {
	case stepAddName:
		if text == "" {
			return c.Send("⚠️ The name cannot be empty. Enter the record name:")
		}
		st.name = text
		st.step = stepAddContent
		msg := fmt.Sprintf(
			"*📝 Add DNS Record*\n\nType: `%s`\nName: `%s`\n\n"+
				"Step 3/5: Enter the content (IP for A/AAAA, domain for CNAME, text for TXT):",
			st.recordType, st.name,
		)
		return c.Send(msg, tele.ModeMarkdown)

	case stepAddContent:
		if text == "" {
			return c.Send("⚠️ The content cannot be empty. Enter the record content:")
		}
		st.content = text
		st.step = stepNone
		return b.promptTTL(c, st)

	case stepEditContent:
		if text == "" {
			return c.Send("⚠️ The content cannot be empty. Enter the new content:")
		}
		return b.applyEdit(c, st, text)
	}

	return c.Send("Use /menu to access the main menu.")
}

func (b *Bot) promptTTL(c tele.Context, st *flowState) error {
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	for i := 0; i < len(ttlChoices); i += 3 {
		var row tele.Row
		for j := i; j < i+3 && j < len(ttlChoices); j++ {
			label := strconv.Itoa(ttlChoices[j])
			if ttlChoices[j] == 1 {
				label = "Auto (1)"
			}
			row = append(row, menu.Data(label, "rec_ttl", strconv.Itoa(ttlChoices[j])))
		}
		rows = append(rows, row)
	}
	rows = append(rows, menu.Row(menu.Data("❌ Cancel", "cancel_flow")))
	menu.Inline(rows...)

	text := fmt.Sprintf(
		"*📝 Add DNS Record*\n\nType: `%s`\nName: `%s`\nContent: `%s`\n\nStep 4/5: Pick the TTL:",
		st.recordType, st.name, st.content,
	)
	return c.Send(text, tele.ModeMarkdown, menu)
}

func (b *Bot) pickRecordTTL(payload string) tele.HandlerFunc {
	return func(c tele.Context) error {
		st := b.flows.get(c.Sender().ID)
		if st == nil || st.recordType == "" {
			return respond(c, "⚠️ This flow has expired. Use /menu to start over.", nil)
		}
		ttl, err := strconv.Atoi(payload)
		if err != nil || ttl < 1 {
			return respond(c, "⚠️ Invalid TTL. Use /menu to start over.", nil)
		}
		st.ttl = ttl

		if !proxyable(st.recordType) {
			return b.promptAddConfirm(c, st)
		}

		menu := &tele.ReplyMarkup{}
		menu.Inline(
			menu.Row(
				menu.Data("✅ Yes (Proxied)", "rec_proxied", "true"),
				menu.Data("❌ No (DNS Only)", "rec_proxied", "false"),
			),
			menu.Row(menu.Data("❌ Cancel", "cancel_flow")),
		)
		text := fmt.Sprintf(
			"*📝 Add DNS Record*\n\nType: `%s`\nName: `%s`\nContent: `%s`\nTTL: `%d`\n\nStep 5/5: Enable the Cloudflare proxy?",
			st.recordType, st.name, st.content, st.ttl,
		)
		return respond(c, text, menu)
	}
}

func (b *Bot) pickRecordProxied(proxied bool) tele.HandlerFunc {
	return func(c tele.Context) error {
		st := b.flows.get(c.Sender().ID)
		if st == nil || st.recordType == "" {
			return respond(c, "⚠️ This flow has expired. Use /menu to start over.", nil)
		}
		st.proxied = proxied
		return b.promptAddConfirm(c, st)
	}
}

func (b *Bot) promptAddConfirm(c tele.Context, st *flowState) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("✅ Create Record", "confirm_add"), menu.Data("❌ Cancel", "cancel_flow")),
	)
	proxied := "No"
	if st.proxied {
		proxied = "Yes"
	}
	text := fmt.Sprintf(
		"*📝 Confirm New Record*\n\n`Type    :` `%s`\n`Name    :` `%s`\n`Content :` `%s`\n`TTL     :` `%d`\n`Proxied :` `%s`\n\nCreate this record?",
		st.recordType, st.name, st.content, st.ttl, proxied,
	)
	return respond(c, text, menu)
}

func (b *Bot) confirmAddRecord(c tele.Context) error {
	userID := c.Sender().ID
	st := b.flows.get(userID)
	if st == nil || st.recordType == "" || st.content == "" {
		return respond(c, "⚠️ This flow has expired. Use /menu to start over.", nil)
	}
	defer b.flows.clear(userID)

	account := accountFrom(c)
	payload := model.RecordPayload{
		Type:    st.recordType,
		Name:    st.name,
		Content: st.content,
		TTL:     st.ttl,
	}
	if proxyable(st.recordType) {
		p := st.proxied
		payload.Proxied = &p
	}
	if st.recordType == "MX" {
		// Cloudflare requires a priority for MX; a default keeps the flow
		// at five steps.
		prio := 10
		payload.Priority = &prio
	}

	record, err := b.newClient(account).CreateDNSRecord(context.Background(), account.ZoneID, payload)
	if err != nil {
		log.Printf("bot: record create failed for user %d: %v", userID, err)
		return respond(c, "❌ Failed to create the record. Check the values and try again with /menu.", nil)
	}

	log.Printf("bot: user %d created record %s (%s %s)", userID, record.ID, record.Type, record.Name)
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")))
	return respond(c, "✅ *Record created!*\n\n"+recordSummary(record), menu)
}

// recordPicker renders up to maxRecordButtons records as buttons carrying
// the record id under the given action.
func (b *Bot) recordPicker(c tele.Context, action, title string) error {
	account := accountFrom(c)
	records, err := b.newClient(account).ListDNSRecords(context.Background(), account.ZoneID)
	if err != nil {
		log.Printf("bot: record fetch failed for user %d: %v", c.Sender().ID, err)
		return respond(c, msgFetchRecordsFailed, nil)
	}
	if len(records) == 0 {
		return respond(c, "📭 No DNS records found in this zone.", nil)
	}
	if len(records) > maxRecordButtons {
		records = records[:maxRecordButtons]
	}

	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(records)+1)
	for _, r := range records {
		rows = append(rows, menu.Row(menu.Data(recordLabel(r), action, r.ID)))
	}
	rows = append(rows, menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")))
	menu.Inline(rows...)
	return respond(c, title, menu)
}

func (b *Bot) startEditRecord(c tele.Context) error {
	b.flows.set(c.Sender().ID, &flowState{})
	return b.recordPicker(c, "pick_edit", "*♻️ Edit DNS Record*\n\nPick the record to edit:")
}

func (b *Bot) pickEditRecord(recordID string) tele.HandlerFunc {
	return func(c tele.Context) error {
		account := accountFrom(c)
		record, err := b.newClient(account).GetDNSRecord(context.Background(), account.ZoneID, recordID)
		if err != nil {
			log.Printf("bot: record lookup failed for user %d: %v", c.Sender().ID, err)
			return respond(c, msgFetchRecordsFailed, nil)
		}
		if record.Locked {
			return respond(c, "⚠️ This record is locked by Cloudflare and cannot be edited.", nil)
		}

		b.flows.set(c.Sender().ID, &flowState{step: stepEditContent, record: &record})
		text := fmt.Sprintf(
			"*♻️ Edit DNS Record*\n\n%s\n\nEnter the new content:",
			recordSummary(record),
		)
		return respond(c, text, nil)
	}
}

func (b *Bot) applyEdit(c tele.Context, st *flowState, newContent string) error {
	userID := c.Sender().ID
	defer b.flows.clear(userID)

	account, err := b.db.GetAccount(userID)
	if err != nil || account == nil {
		log.Printf("bot: account lookup failed for %d: %v", userID, err)
		return c.Send(msgGenericError)
	}

	old := st.record
	payload := model.RecordPayload{
		Type:     old.Type,
		Name:     old.Name,
		Content:  newContent,
		TTL:      old.TTL,
		Priority: old.Priority,
	}
	if proxyable(old.Type) {
		p := old.Proxied
		payload.Proxied = &p
	}

	record, err := b.newClient(account).UpdateDNSRecord(context.Background(), account.ZoneID, old.ID, payload)
	if err != nil {
		log.Printf("bot: record update failed for user %d: %v", userID, err)
		return c.Send("❌ Failed to update the record. Check the value and try again with /menu.")
	}

	log.Printf("bot: user %d updated record %s (%s %s)", userID, record.ID, record.Type, record.Name)
	return c.Send("✅ *Record updated!*\n\n"+recordSummary(record), tele.ModeMarkdown)
}

func (b *Bot) startRemoveRecord(c tele.Context) error {
	b.flows.set(c.Sender().ID, &flowState{})
	return b.recordPicker(c, "pick_remove", "*🗑 Remove DNS Record*\n\nPick the record to remove:")
}

func (b *Bot) pickRemoveRecord(recordID string) tele.HandlerFunc {
	return func(c tele.Context) error {
		account := accountFrom(c)
		record, err := b.newClient(account).GetDNSRecord(context.Background(), account.ZoneID, recordID)
		if err != nil {
			log.Printf("bot: record lookup failed for user %d: %v", c.Sender().ID, err)
			return respond(c, msgFetchRecordsFailed, nil)
		}

		b.flows.set(c.Sender().ID, &flowState{record: &record})
		menu := &tele.ReplyMarkup{}
		menu.Inline(
			menu.Row(menu.Data("🗑 Yes, remove it", "confirm_remove"), menu.Data("❌ Cancel", "cancel_flow")),
		)
		text := fmt.Sprintf("*🗑 Remove DNS Record*\n\n%s\n\nRemove this record?", recordSummary(record))
		return respond(c, text, menu)
	}
}

func (b *Bot) confirmRemoveRecord(c tele.Context) error {
	userID := c.Sender().ID
	st := b.flows.get(userID)
	if st == nil || st.record == nil {
		return respond(c, "⚠️ This flow has expired. Use /menu to start over.", nil)
	}
	defer b.flows.clear(userID)

	account := accountFrom(c)
	if err := b.newClient(account).DeleteDNSRecord(context.Background(), account.ZoneID, st.record.ID); err != nil {
		log.Printf("bot: record delete failed for user %d: %v", userID, err)
		return respond(c, "❌ Failed to remove the record. Try again with /menu.", nil)
	}

	log.Printf("bot: user %d removed record %s (%s %s)", userID, st.record.ID, st.record.Type, st.record.Name)
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")))
	return respond(c, fmt.Sprintf("✅ Record `%s %s` removed.", st.record.Type, st.record.Name), menu)
}
