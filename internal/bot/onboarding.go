package bot

import (
	"context"

	tele "gopkg.in/telebot.v3"

	"cfdnsbot/internal/wizard"
)

func (b *Bot) startOnboarding(c tele.Context) error {
	b.flows.clear(c.Sender().ID)
	return b.renderWizardReply(c, b.wizard.Start(context.Background(), c.Sender().ID))
}

func (b *Bot) selectOnboardingZone(c tele.Context, zoneID string) error {
	return b.renderWizardReply(c, b.wizard.SelectZone(context.Background(), c.Sender().ID, zoneID))
}

// renderWizardReply turns a wizard Reply into a message, attaching the zone
// keyboard when the wizard asks for a selection.
func (b *Bot) renderWizardReply(c tele.Context, reply wizard.Reply) error {
	var markup *tele.ReplyMarkup
	if len(reply.Zones) > 0 {
		markup = &tele.ReplyMarkup{}
		rows := make([]tele.Row, 0, len(reply.Zones)+1)
		for _, zone := range reply.Zones {
			rows = append(rows, markup.Row(markup.Data("🌐 "+zone.Name, "select_zone", zone.ID)))
		}
		rows = append(rows, markup.Row(markup.Data("❌ Cancel", "cancel_add_account")))
		markup.Inline(rows...)
	}
	return respond(c, reply.Text, markup)
}
