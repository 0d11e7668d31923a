package bot

import (
	"context"
	"fmt"
	"log"

	tele "gopkg.in/telebot.v3"

	"cfdnsbot/internal/model"
)

func (b *Bot) handleStart(c tele.Context) error {
	sender := c.Sender()
	user := model.User{
		ChatID:    sender.ID,
		Username:  sender.Username,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
	}
	if err := b.db.SaveUser(user); err != nil {
		log.Printf("bot: user save failed for %d: %v", sender.ID, err)
		return c.Send(msgGenericError)
	}

	log.Printf("bot: user %d (%s) registered", sender.ID, user.DisplayName())
	welcome := fmt.Sprintf(
		"👋 Hello *%s*! Welcome to the *Cloudflare DNS Manager Bot*.\n\n"+
			"This bot helps you manage your Cloudflare DNS straight from Telegram.\n\n"+
			"Type /menu to access the main menu.",
		user.DisplayName(),
	)
	return c.Send(welcome, tele.ModeMarkdown)
}

func (b *Bot) handleMenu(c tele.Context) error {
	b.flows.clear(c.Sender().ID)

	account, err := b.db.GetAccount(c.Sender().ID)
	if err != nil {
		log.Printf("bot: account lookup failed for %d: %v", c.Sender().ID, err)
		return respond(c, msgGenericError, nil)
	}

	menu := &tele.ReplyMarkup{}
	if account == nil {
		menu.Inline(menu.Row(menu.Data("➕ Add Cloudflare Account", "add_account")))
		text := "*CLOUDFLARE DNS MANAGER*\n" +
			"────────────────────\n" +
			fmt.Sprintf("`Name   :` `%s`\n", c.Sender().FirstName) +
			"`Status :` `No account registered.`\n" +
			"────────────────────\n" +
			"Add your Cloudflare account to get started."
		return respond(c, text, menu)
	}

	menu.Inline(
		menu.Row(menu.Data("📋 View Records", "view_records"), menu.Data("📝 Add Record", "add_record")),
		menu.Row(menu.Data("♻️ Edit Record", "edit_record"), menu.Data("🗑 Remove Record", "remove_record")),
		menu.Row(menu.Data("⚙️ Others", "others_menu"), menu.Data("❌ Delete Account", "delete_account")),
	)
	text := "*CLOUDFLARE DNS MANAGER*\n" +
		"────────────────────\n" +
		fmt.Sprintf("`Name    :` `%s`\n", c.Sender().FirstName) +
		fmt.Sprintf("`Email   :` `%s`\n", account.Email) +
		fmt.Sprintf("`API Key :` %s\n", maskAPIKey(account.APIKey)) +
		fmt.Sprintf("`Zone    :` `%s`\n", account.ZoneName) +
		"────────────────────"
	return respond(c, text, menu)
}

func (b *Bot) handleHelp(c tele.Context) error {
	help := "*📖 Cloudflare DNS Manager Help*\n\n" +
		"*Features:*\n" +
		"• 📝 Add Record — create a new DNS record\n" +
		"• 📋 View Records — export all DNS records as JSON\n" +
		"• ♻️ Edit Record — change an existing record\n" +
		"• 🗑 Remove Record — delete a DNS record\n" +
		"• ⚙️ Others — switch zone, stats, help\n\n" +
		"*Commands:*\n" +
		"• /start — register and start the bot\n" +
		"• /menu — main menu\n" +
		"• /help — this help\n" +
		"• /cancel — abort the current operation\n\n" +
		"*Tips:*\n" +
		"• The Global API Key is under My Profile → API Tokens\n" +
		"• The Account ID is in the dashboard's right sidebar"
	return respond(c, help, nil)
}

func (b *Bot) handleCancel(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID
	if b.wizard.Active(ctx, userID) {
		return b.renderWizardReply(c, b.wizard.Cancel(ctx, userID))
	}
	if b.flows.active(userID) {
		b.flows.clear(userID)
		return c.Send("❌ Operation cancelled. Use /menu to return to the main menu.")
	}
	return c.Send("Nothing to cancel. Use /menu to access the main menu.")
}

func (b *Bot) showOthersMenu(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("🔄 Switch Zone", "switch_zone"), menu.Data("📊 Stats", "stats")),
		menu.Row(menu.Data("❓ Help", "help_menu")),
		menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")),
	)
	text := "*⚙️ Others Menu*\n\n" +
		"🔄 *Switch Zone* — change the managed zone\n" +
		"📊 *Stats* — bot usage numbers\n" +
		"❓ *Help* — usage help"
	return respond(c, text, menu)
}

func (b *Bot) showStats(c tele.Context) error {
	users, err := b.db.CountUsers()
	if err != nil {
		log.Printf("bot: stats query failed: %v", err)
		return respond(c, msgGenericError, nil)
	}
	accounts, err := b.db.CountAccounts()
	if err != nil {
		log.Printf("bot: stats query failed: %v", err)
		return respond(c, msgGenericError, nil)
	}
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("🔙 Back to Main Menu", "back_to_main_menu")))
	text := fmt.Sprintf("*📊 Stats*\n\nRegistered users: `%d`\nCloudflare accounts: `%d`", users, accounts)
	return respond(c, text, menu)
}
