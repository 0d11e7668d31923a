package bot

import (
	"context"
	"testing"
	"time"

	"cfdnsbot/internal/model"
	"cfdnsbot/internal/session"
	"cfdnsbot/internal/wizard"
)

type stubUserStore struct{}

func (stubUserStore) UserExists(chatID int64) (bool, error)       { return true, nil }
func (stubUserStore) SaveAccount(a model.CloudflareAccount) error { return nil }

type stubZoneLister struct{}

func (stubZoneLister) ListZones(ctx context.Context) ([]model.Zone, error) {
	return []model.Zone{{ID: "z1", Name: "example.com"}}, nil
}

// Commands like /start and /menu must terminate an in-flight onboarding so
// later free text is not fed to a stale wizard session.
func TestCancelActiveWizardTerminatesSession(t *testing.T) {
	ctx := context.Background()
	wiz := wizard.New(
		session.NewMemoryStore(),
		stubUserStore{},
		func(email, apiKey string) wizard.ZoneLister { return stubZoneLister{} },
		time.Second,
	)
	b := &Bot{wizard: wiz, flows: newFlowManager()}

	wiz.Start(ctx, 42)
	wiz.SubmitText(ctx, 42, "a@b.com")
	if !wiz.Active(ctx, 42) {
		t.Fatal("wizard session should be open mid-onboarding")
	}

	notice, cancelled := b.cancelActiveWizard(42)
	if !cancelled {
		t.Fatal("an open session should be cancelled")
	}
	if notice == "" {
		t.Error("cancellation should carry a notice for the user")
	}
	if wiz.Active(ctx, 42) {
		t.Error("session should be gone after the cancel")
	}

	// With nothing open the command proceeds silently.
	if _, cancelled := b.cancelActiveWizard(42); cancelled {
		t.Error("no session should mean nothing to cancel")
	}
}
