package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	tele "gopkg.in/telebot.v3"
)

// startSwitchZone re-lists zones with the stored credentials and lets the
// user move the account to another zone without re-entering anything.
func (b *Bot) startSwitchZone(c tele.Context) error {
	account := accountFrom(c)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(b.cfg.Cloudflare.VerifyTimeout)*time.Second)
	defer cancel()
	zones, err := b.newClient(account).ListZones(ctx)
	if err != nil || len(zones) == 0 {
		log.Printf("bot: zone fetch failed for user %d: %v", c.Sender().ID, err)
		return respond(c, "❌ Failed to fetch your zones. Check your credentials and try again with /menu.", nil)
	}

	b.flows.set(c.Sender().ID, &flowState{zones: zones})

	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(zones)+1)
	for _, zone := range zones {
		label := "🌐 " + zone.Name
		if zone.ID == account.ZoneID {
			label += " (current)"
		}
		rows = append(rows, menu.Row(menu.Data(label, "pick_zone", zone.ID)))
	}
	rows = append(rows, menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")))
	menu.Inline(rows...)

	return respond(c, fmt.Sprintf("*🔄 Switch Zone*\n\nFound %d zones. Pick the one to manage:", len(zones)), menu)
}

func (b *Bot) pickSwitchZone(zoneID string) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID
		st := b.flows.get(userID)
		if st == nil || len(st.zones) == 0 {
			return respond(c, "⚠️ This flow has expired. Use /menu to start over.", nil)
		}
		defer b.flows.clear(userID)

		for _, zone := range st.zones {
			if zone.ID != zoneID {
				continue
			}
			if err := b.db.UpdateAccountZone(userID, zone.ID, zone.Name); err != nil {
				log.Printf("bot: zone switch failed for user %d: %v", userID, err)
				return respond(c, msgGenericError, nil)
			}
			log.Printf("bot: user %d switched to zone %s", userID, zone.Name)
			menu := &tele.ReplyMarkup{}
			menu.Inline(menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")))
			return respond(c, fmt.Sprintf("✅ Now managing zone `%s`.", zone.Name), menu)
		}
		return respond(c, "⚠️ Invalid selection. Use /menu to try again.", nil)
	}
}

func (b *Bot) confirmDeleteAccountPrompt(c tele.Context) error {
	account := accountFrom(c)
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("❌ Yes, delete it", "confirm_delete_account")),
		menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")),
	)
	text := fmt.Sprintf(
		"*❌ Delete Cloudflare Account*\n\n`Email :` `%s`\n`Zone  :` `%s`\n\n"+
			"This removes the stored credentials from the bot. Your Cloudflare "+
			"account itself is not touched. Continue?",
		account.Email, account.ZoneName,
	)
	return respond(c, text, menu)
}

func (b *Bot) deleteAccount(c tele.Context) error {
	userID := c.Sender().ID
	deleted, err := b.db.DeleteAccount(userID)
	if err != nil {
		log.Printf("bot: account delete failed for user %d: %v", userID, err)
		return respond(c, msgGenericError, nil)
	}
	if !deleted {
		return respond(c, "⚠️ No account found to delete.", nil)
	}
	log.Printf("bot: user %d deleted their cloudflare account", userID)
	return respond(c, "✅ Cloudflare account deleted.\n\nUse /menu to add a new one.", nil)
}
