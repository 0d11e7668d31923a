// Package bot is the Telegram transport for the DNS manager: command and
// callback routing, the onboarding wizard hookup, and the record flows.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"cfdnsbot/db"
	"cfdnsbot/internal/cloudflare"
	"cfdnsbot/internal/config"
	"cfdnsbot/internal/database"
	"cfdnsbot/internal/model"
	"cfdnsbot/internal/secret"
	"cfdnsbot/internal/session"
	"cfdnsbot/internal/wizard"
)

type Bot struct {
	tb     *tele.Bot
	db     *database.DB
	wizard *wizard.Wizard
	flows  *flowManager
	cfg    *config.Config
}

// Run wires the full stack (cipher, database, session store, wizard,
// Telegram bot) and blocks on the long poller.
func Run(cfg *config.Config, version string) error {
	cipher, err := secret.NewCipher(cfg.Encryption.Key)
	if err != nil {
		return fmt.Errorf("failed to init encryption: %w", err)
	}

	store, err := database.Open(cfg.Database.DSN, db.MigrationsFS(), cipher)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	var sessions session.Store
	if cfg.Redis.Addr != "" {
		rs, err := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to init redis session store: %w", err)
		}
		defer rs.Close()
		sessions = rs
		log.Printf("Wizard sessions stored in Redis at %s", cfg.Redis.Addr)
	} else {
		sessions = session.NewMemoryStore()
		log.Println("Wizard sessions stored in memory")
	}

	gateway := func(email, apiKey string) wizard.ZoneLister {
		return cloudflare.New(email, apiKey, cloudflare.WithBaseURL(cfg.Cloudflare.BaseURL))
	}
	wiz := wizard.New(sessions, store, gateway, time.Duration(cfg.Cloudflare.VerifyTimeout)*time.Second)

	b, err := New(cfg, store, wiz)
	if err != nil {
		return err
	}
	log.Printf("Bot version %s ready", version)
	return b.Start()
}

func New(cfg *config.Config, store *database.DB, wiz *wizard.Wizard) (*Bot, error) {
	b := &Bot{
		db:     store,
		wizard: wiz,
		flows:  newFlowManager(),
		cfg:    cfg,
	}

	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: time.Duration(cfg.Telegram.PollTimeout) * time.Second},
		OnError: func(err error, c tele.Context) {
			// Outermost boundary: a single conversation's failure never
			// takes the process down.
			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}
			log.Printf("bot: unhandled error for user %d: %v", userID, err)
			if c != nil {
				_ = c.Send(msgGenericError)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.tb = tb
	b.setupHandlers()
	return b, nil
}

// Start begins long polling and blocks until Stop.
func (b *Bot) Start() error {
	log.Printf("Authorized on account %s", b.tb.Me.Username)
	b.tb.Start()
	return nil
}

func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) setupHandlers() {
	b.tb.Handle("/start", b.interruptsWizard(b.handleStart))
	b.tb.Handle("/menu", b.interruptsWizard(b.requireUser(b.handleMenu)))
	b.tb.Handle("/help", b.interruptsWizard(b.handleHelp))
	b.tb.Handle("/cancel", b.handleCancel)

	b.tb.Handle(tele.OnText, b.handleText)
	b.tb.Handle(tele.OnDocument, b.handleDocument)
	b.tb.Handle(tele.OnCallback, b.handleCallback)
}

// handleText feeds free text to the wizard when a session is open, then to
// an active record flow; otherwise it is ignored with a hint.
func (b *Bot) handleText(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID

	if b.wizard.Active(ctx, userID) {
		return b.renderWizardReply(c, b.wizard.SubmitText(ctx, userID, c.Text()))
	}
	if b.flows.active(userID) {
		return b.handleFlowText(c)
	}
	return c.Send("Use /menu to access the main menu.")
}

// handleCallback is the single dispatch point for inline button presses.
// The guard chain applied to each action is spelled out at its case.
func (b *Bot) handleCallback(c tele.Context) error {
	_ = c.Respond()

	// telebot.v3 prefixes inline button callbacks with \f and joins the
	// payload with |.
	data := strings.TrimPrefix(c.Callback().Data, "\f")
	action, payload, _ := strings.Cut(data, "|")

	switch action {
	case "add_account":
		return b.requireUser(b.startOnboarding)(c)
	case "select_zone":
		return b.selectOnboardingZone(c, payload)
	case "cancel_add_account":
		return b.renderWizardReply(c, b.wizard.Cancel(context.Background(), c.Sender().ID))

	case "back_to_main_menu":
		b.flows.clear(c.Sender().ID)
		return b.requireUser(b.handleMenu)(c)
	case "others_menu":
		return b.requireUser(b.showOthersMenu)(c)
	case "help_menu":
		return b.handleHelp(c)
	case "stats":
		return b.requireUser(b.showStats)(c)

	case "view_records":
		return b.requireAccount(b.viewRecords)(c)
	case "add_record":
		return b.requireAccount(b.showAddRecordMenu)(c)
	case "add_single":
		return b.requireAccount(b.startAddRecord)(c)
	case "add_from_file":
		return b.requireAccount(b.startAddFromFile)(c)
	case "rec_type":
		return b.requireAccount(b.pickRecordType(payload))(c)
	case "rec_ttl":
		return b.requireAccount(b.pickRecordTTL(payload))(c)
	case "rec_proxied":
		return b.requireAccount(b.pickRecordProxied(payload == "true"))(c)
	case "confirm_add":
		return b.requireAccount(b.confirmAddRecord)(c)

	case "edit_record":
		return b.requireAccount(b.startEditRecord)(c)
	case "pick_edit":
		return b.requireAccount(b.pickEditRecord(payload))(c)

	case "remove_record":
		return b.requireAccount(b.startRemoveRecord)(c)
	case "pick_remove":
		return b.requireAccount(b.pickRemoveRecord(payload))(c)
	case "confirm_remove":
		return b.requireAccount(b.confirmRemoveRecord)(c)

	case "switch_zone":
		return b.requireAccount(b.startSwitchZone)(c)
	case "pick_zone":
		return b.requireAccount(b.pickSwitchZone(payload))(c)
	case "delete_account":
		return b.requireAccount(b.confirmDeleteAccountPrompt)(c)
	case "confirm_delete_account":
		return b.requireAccount(b.deleteAccount)(c)

	case "cancel_flow":
		b.flows.clear(c.Sender().ID)
		return b.requireUser(b.handleMenu)(c)
	case "noop":
		return nil
	}

	log.Printf("bot: unknown callback action %q from user %d", action, c.Sender().ID)
	return respond(c, "⚠️ Unknown action. Use /menu to return to the main menu.", nil)
}

// newClient builds a gateway for a stored account using the configured
// base URL and record-operation timeout.
func (b *Bot) newClient(account *model.CloudflareAccount) *cloudflare.Client {
	return cloudflare.New(account.Email, account.APIKey,
		cloudflare.WithBaseURL(b.cfg.Cloudflare.BaseURL),
		cloudflare.WithTimeout(time.Duration(b.cfg.Cloudflare.Timeout)*time.Second),
	)
}
