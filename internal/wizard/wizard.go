// Package wizard drives the linear account onboarding conversation:
// email -> API key -> account id -> zone selection. It is transport
// agnostic; callers feed it text and button inputs and render the returned
// Reply however they like.
package wizard

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"cfdnsbot/internal/model"
	"cfdnsbot/internal/session"
)

// Cloudflare Global API Keys and account ids are 32+ characters.
const minCredentialLength = 32

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ZoneLister is the slice of the Cloudflare gateway the wizard needs.
type ZoneLister interface {
	ListZones(ctx context.Context) ([]model.Zone, error)
}

// GatewayFactory builds a gateway for the credentials collected so far.
type GatewayFactory func(email, apiKey string) ZoneLister

// UserStore is the slice of the persistence layer the wizard needs.
type UserStore interface {
	UserExists(chatID int64) (bool, error)
	SaveAccount(a model.CloudflareAccount) error
}

// Reply tells the transport layer what to show next. Zones non-nil means
// render one button per zone plus a cancel button. Done means the
// conversation ended and the session is gone.
type Reply struct {
	Text    string
	Zones   []model.Zone
	Done    bool
	Account *model.CloudflareAccount
}

type Wizard struct {
	sessions     session.Store
	users        UserStore
	gateway      GatewayFactory
	fetchTimeout time.Duration
}

func New(sessions session.Store, users UserStore, gateway GatewayFactory, fetchTimeout time.Duration) *Wizard {
	return &Wizard{
		sessions:     sessions,
		users:        users,
		gateway:      gateway,
		fetchTimeout: fetchTimeout,
	}
}

const (
	msgUnauthorized = "⚠️ Please run /start first to use this bot."
	msgPromptEmail  = "➕ *Add Cloudflare Account*\n\n" +
		"I will guide you through adding your Cloudflare account.\n\n" +
		"📧 *Step 1/3*\nPlease enter your Cloudflare email:"
	msgInvalidEmail = "⚠️ That email doesn't look valid. Please enter a correct email:"
	msgPromptAPIKey = "✅ Email saved!\n\n" +
		"🔑 *Step 2/3*\nPlease enter your Cloudflare Global API Key:\n\n" +
		"_The API Key can be found at:_\nMy Profile → API Tokens → Global API Key → View"
	msgInvalidAPIKey = "⚠️ That API Key doesn't look valid. Please check it and enter it again:"
	msgPromptAccount = "✅ API Key saved!\n\n" +
		"🆔 *Step 3/3*\nPlease enter your Cloudflare Account ID:\n\n" +
		"_The Account ID can be found at:_\nDashboard → right sidebar → Account ID"
	msgInvalidAccount = "⚠️ That Account ID doesn't look valid. Please check it and enter it again:"
	msgZonesFailed    = "❌ Failed to fetch your zones. Possible causes:\n" +
		"• Invalid email, API Key, or Account ID\n" +
		"• No zones in the Cloudflare account\n" +
		"• Network problems\n\n" +
		"Use /menu to try again."
	msgUseButtons      = "⚠️ Please pick a zone using the buttons above, or send /cancel."
	msgInvalidZone     = "⚠️ Invalid selection. Use /menu to try again."
	msgSaveFailed      = "❌ Failed to save the account. Use /menu to try again."
	msgCancelled       = "❌ Adding the Cloudflare account was cancelled.\n\nUse /menu to return to the main menu."
	msgInternalError   = "⚠️ Something went wrong. Use /menu to try again."
	msgAlreadyFinished = "Use /menu to return to the main menu."
)

// Start opens a fresh session for the user, replacing any stale one. Only
// registered users may onboard.
func (w *Wizard) Start(ctx context.Context, userID int64) Reply {
	exists, err := w.users.UserExists(userID)
	if err != nil {
		log.Printf("wizard: start: user lookup failed for %d: %v", userID, err)
		return Reply{Text: msgInternalError, Done: true}
	}
	if !exists {
		return Reply{Text: msgUnauthorized, Done: true}
	}
	if err := w.sessions.Put(ctx, userID, &session.Session{State: session.AwaitingEmail}); err != nil {
		log.Printf("wizard: start: session store failed for %d: %v", userID, err)
		return Reply{Text: msgInternalError, Done: true}
	}
	log.Printf("wizard: user %d started account onboarding", userID)
	return Reply{Text: msgPromptEmail}
}

// Active reports whether the user has an open wizard session.
func (w *Wizard) Active(ctx context.Context, userID int64) bool {
	_, ok, err := w.sessions.Get(ctx, userID)
	if err != nil {
		log.Printf("wizard: session lookup failed for %d: %v", userID, err)
		return false
	}
	return ok
}

// SubmitText advances the wizard with a free-text input. Invalid input
// re-prompts and keeps the state; a failed zone fetch ends the flow.
func (w *Wizard) SubmitText(ctx context.Context, userID int64, text string) Reply {
	sess, ok, err := w.sessions.Get(ctx, userID)
	if err != nil || !ok {
		return Reply{Text: msgAlreadyFinished, Done: true}
	}

	text = strings.TrimSpace(text)

	switch sess.State {
	case session.AwaitingEmail:
		if !emailPattern.MatchString(text) {
			return Reply{Text: msgInvalidEmail}
		}
		sess.Email = text
		sess.State = session.AwaitingAPIKey
		return w.store(ctx, userID, sess, Reply{Text: msgPromptAPIKey})

	case session.AwaitingAPIKey:
		if len(text) < minCredentialLength {
			return Reply{Text: msgInvalidAPIKey}
		}
		sess.APIKey = text
		sess.State = session.AwaitingAccountID
		return w.store(ctx, userID, sess, Reply{Text: msgPromptAccount})

	case session.AwaitingAccountID:
		if len(text) < minCredentialLength {
			return Reply{Text: msgInvalidAccount}
		}
		sess.AccountID = text
		return w.fetchZones(ctx, userID, sess)

	case session.AwaitingZoneSelection:
		return Reply{Text: msgUseButtons}
	}

	return Reply{Text: msgInternalError, Done: true}
}

func (w *Wizard) fetchZones(ctx context.Context, userID int64, sess *session.Session) Reply {
	fetchCtx, cancel := context.WithTimeout(ctx, w.fetchTimeout)
	defer cancel()

	zones, err := w.gateway(sess.Email, sess.APIKey).ListZones(fetchCtx)
	if err != nil || len(zones) == 0 {
		log.Printf("wizard: zone fetch failed for user %d: %v (%d zones)", userID, err, len(zones))
		w.discard(ctx, userID)
		return Reply{Text: msgZonesFailed, Done: true}
	}

	sess.Zones = zones
	sess.State = session.AwaitingZoneSelection
	text := fmt.Sprintf("✅ Connected to Cloudflare!\n\n📋 *Found %d zones.*\nPick the zone you want to manage:", len(zones))
	return w.store(ctx, userID, sess, Reply{Text: text, Zones: zones})
}

// SelectZone finishes the wizard with a button press. A zone id that is not
// in the session's cached list aborts the flow; a stale or tampered
// callback never creates an account.
func (w *Wizard) SelectZone(ctx context.Context, userID int64, zoneID string) Reply {
	sess, ok, err := w.sessions.Get(ctx, userID)
	if err != nil || !ok || sess.State != session.AwaitingZoneSelection {
		w.discard(ctx, userID)
		return Reply{Text: msgInvalidZone, Done: true}
	}
	defer w.discard(ctx, userID)

	var selected *model.Zone
	for i := range sess.Zones {
		if sess.Zones[i].ID == zoneID {
			selected = &sess.Zones[i]
			break
		}
	}
	if selected == nil {
		return Reply{Text: msgInvalidZone, Done: true}
	}

	account := model.CloudflareAccount{
		UserID:    userID,
		Email:     sess.Email,
		APIKey:    sess.APIKey,
		AccountID: sess.AccountID,
		ZoneID:    selected.ID,
		ZoneName:  selected.Name,
	}
	if err := w.users.SaveAccount(account); err != nil {
		log.Printf("wizard: account save failed for user %d: %v", userID, err)
		return Reply{Text: msgSaveFailed, Done: true}
	}

	log.Printf("wizard: cloudflare account added for user %d (zone %s)", userID, selected.Name)
	text := fmt.Sprintf(
		"✅ *Cloudflare account added!*\n\n📧 *Email:* `%s`\n🌐 *Zone:* `%s`\n\n"+
			"You can now manage your DNS records.\nUse /menu to access the available features.",
		sess.Email, selected.Name,
	)
	return Reply{Text: text, Done: true, Account: &account}
}

// Cancel force-terminates the conversation and cleans up the session. A
// cancel with no open session (a stale button, a finished flow) gets a
// neutral reply instead of a cancellation notice.
func (w *Wizard) Cancel(ctx context.Context, userID int64) Reply {
	_, ok, err := w.sessions.Get(ctx, userID)
	if err != nil || !ok {
		return Reply{Text: msgAlreadyFinished, Done: true}
	}
	w.discard(ctx, userID)
	return Reply{Text: msgCancelled, Done: true}
}

func (w *Wizard) store(ctx context.Context, userID int64, sess *session.Session, reply Reply) Reply {
	if err := w.sessions.Put(ctx, userID, sess); err != nil {
		log.Printf("wizard: session store failed for %d: %v", userID, err)
		w.discard(ctx, userID)
		return Reply{Text: msgInternalError, Done: true}
	}
	return reply
}

func (w *Wizard) discard(ctx context.Context, userID int64) {
	if err := w.sessions.Delete(ctx, userID); err != nil {
		log.Printf("wizard: session cleanup failed for %d: %v", userID, err)
	}
}
