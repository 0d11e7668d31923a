package bot

import (
	"context"
	"log"

	tele "gopkg.in/telebot.v3"

	"cfdnsbot/internal/model"
)

const (
	msgGenericError  = "⚠️ Something went wrong while processing your request. Please try again later."
	msgNotRegistered = "⚠️ Please run /start first to use this bot."
	msgNoAccount     = "⚠️ You haven't added a Cloudflare account yet.\nUse /menu and pick 'Add Cloudflare Account'."

	accountKey = "cf_account"
)

// respond edits the originating message for button presses and sends a new
// one for plain messages, so handlers never branch on transport shape.
func respond(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := []any{tele.ModeMarkdown}
	if markup != nil {
		opts = append(opts, markup)
	}
	if c.Callback() != nil {
		return c.Edit(text, opts...)
	}
	return c.Send(text, opts...)
}

// requireUser rejects senders that never ran /start.
func (b *Bot) requireUser(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		exists, err := b.db.UserExists(c.Sender().ID)
		if err != nil {
			log.Printf("bot: user lookup failed for %d: %v", c.Sender().ID, err)
			return respond(c, msgGenericError, nil)
		}
		if !exists {
			return respond(c, msgNotRegistered, nil)
		}
		return next(c)
	}
}

// requireAccount additionally loads the sender's Cloudflare account and
// stashes it in the context for the handler.
func (b *Bot) requireAccount(next tele.HandlerFunc) tele.HandlerFunc {
	return b.requireUser(func(c tele.Context) error {
		account, err := b.db.GetAccount(c.Sender().ID)
		if err != nil {
			log.Printf("bot: account lookup failed for %d: %v", c.Sender().ID, err)
			return respond(c, msgGenericError, nil)
		}
		if account == nil {
			return respond(c, msgNoAccount, nil)
		}
		c.Set(accountKey, account)
		return next(c)
	})
}

func accountFrom(c tele.Context) *model.CloudflareAccount {
	account, _ := c.Get(accountKey).(*model.CloudflareAccount)
	return account
}

// cancelActiveWizard terminates an in-flight onboarding, reporting the
// cancellation notice to show, or false when no session was open.
func (b *Bot) cancelActiveWizard(userID int64) (string, bool) {
	ctx := context.Background()
	if !b.wizard.Active(ctx, userID) {
		return "", false
	}
	return b.wizard.Cancel(ctx, userID).Text, true
}

// interruptsWizard force-terminates an in-flight onboarding before the
// command runs. Any top-level command cancels the wizard.
func (b *Bot) interruptsWizard(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if notice, cancelled := b.cancelActiveWizard(c.Sender().ID); cancelled {
			if err := c.Send(notice, tele.ModeMarkdown); err != nil {
				return err
			}
		}
		return next(c)
	}
}
