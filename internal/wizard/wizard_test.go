package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cfdnsbot/internal/model"
	"cfdnsbot/internal/session"
)

type fakeGateway struct {
	zones []model.Zone
	err   error
	calls int
}

func (g *fakeGateway) ListZones(ctx context.Context) ([]model.Zone, error) {
	g.calls++
	return g.zones, g.err
}

type fakeUserStore struct {
	exists    bool
	existsErr error
	saved     []model.CloudflareAccount
	saveErr   error
}

func (s *fakeUserStore) UserExists(chatID int64) (bool, error) {
	return s.exists, s.existsErr
}

func (s *fakeUserStore) SaveAccount(a model.CloudflareAccount) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, a)
	return nil
}

var testZones = []model.Zone{
	{ID: "z1", Name: "example.com", Status: "active"},
	{ID: "z2", Name: "test.com", Status: "active"},
}

const (
	validKey     = "0123456789abcdef0123456789abcdef01234567" // 40 chars
	validAccount = "0123456789abcdef0123456789abcdef01234567"
)

func newTestWizard(users *fakeUserStore, gw *fakeGateway) *Wizard {
	sessions := session.NewMemoryStore()
	return New(sessions, users, func(email, apiKey string) ZoneLister { return gw }, time.Second)
}

func TestOnboardingLinearity(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserStore{exists: true}
	gw := &fakeGateway{zones: testZones}
	w := newTestWizard(users, gw)

	if r := w.Start(ctx, 42); r.Done {
		t.Fatalf("Start() ended the flow: %q", r.Text)
	}
	if !w.Active(ctx, 42) {
		t.Fatal("session should be active after Start")
	}

	if r := w.SubmitText(ctx, 42, "a@b.com"); r.Done {
		t.Fatalf("valid email ended the flow: %q", r.Text)
	}
	if r := w.SubmitText(ctx, 42, validKey); r.Done {
		t.Fatalf("valid key ended the flow: %q", r.Text)
	}

	r := w.SubmitText(ctx, 42, validAccount)
	if r.Done {
		t.Fatalf("valid account id ended the flow: %q", r.Text)
	}
	if len(r.Zones) != 2 {
		t.Fatalf("got %d zone choices, want 2", len(r.Zones))
	}
	if gw.calls != 1 {
		t.Errorf("gateway called %d times, want 1", gw.calls)
	}

	r = w.SelectZone(ctx, 42, "z1")
	if !r.Done || r.Account == nil {
		t.Fatalf("SelectZone() = %+v, want Done with Account", r)
	}
	if len(users.saved) != 1 {
		t.Fatalf("saved %d accounts, want exactly 1", len(users.saved))
	}
	saved := users.saved[0]
	if saved.ZoneID != "z1" || saved.ZoneName != "example.com" {
		t.Errorf("saved zone = %s/%s, want z1/example.com", saved.ZoneID, saved.ZoneName)
	}
	if saved.Email != "a@b.com" || saved.APIKey != validKey {
		t.Errorf("saved credentials do not match inputs: %+v", saved)
	}
	if w.Active(ctx, 42) {
		t.Error("session should be removed after completion")
	}
}

func TestValidationGating(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{zones: testZones}
	w := newTestWizard(&fakeUserStore{exists: true}, gw)
	w.Start(ctx, 1)

	// Repeated invalid emails keep the wizard in the email state.
	for _, bad := range []string{"nope", "no-at.com", "a@b", "a @b.com", ""} {
		r := w.SubmitText(ctx, 1, bad)
		if r.Done {
			t.Fatalf("invalid email %q ended the flow", bad)
		}
		if r.Zones != nil {
			t.Fatalf("invalid email %q advanced the flow", bad)
		}
	}
	if !w.Active(ctx, 1) {
		t.Fatal("session should survive invalid submissions")
	}

	w.SubmitText(ctx, 1, "a@b.com")

	// A 10-char key is rejected, a 40-char key accepted.
	if r := w.SubmitText(ctx, 1, "shortkey10"); strings.Contains(r.Text, "Step 3") {
		t.Error("short API key should not advance the flow")
	}
	r := w.SubmitText(ctx, 1, validKey)
	if r.Done {
		t.Fatalf("valid key ended the flow: %q", r.Text)
	}

	// No gateway call happens before the account-id step succeeds.
	if gw.calls != 0 {
		t.Errorf("gateway called %d times before account id accepted", gw.calls)
	}

	if r := w.SubmitText(ctx, 1, "too-short"); r.Done {
		t.Fatal("invalid account id should re-prompt, not end")
	}
	if r := w.SubmitText(ctx, 1, validAccount); len(r.Zones) != 2 {
		t.Fatalf("valid account id should yield zone choices, got %+v", r)
	}
}

func TestZoneSelectionAuthenticity(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserStore{exists: true}
	w := newTestWizard(users, &fakeGateway{zones: testZones})
	w.Start(ctx, 7)
	w.SubmitText(ctx, 7, "a@b.com")
	w.SubmitText(ctx, 7, validKey)
	w.SubmitText(ctx, 7, validAccount)

	// A zone id outside the cached list aborts without creating anything.
	r := w.SelectZone(ctx, 7, "z999")
	if !r.Done || r.Account != nil {
		t.Fatalf("tampered zone selection = %+v, want Done without Account", r)
	}
	if len(users.saved) != 0 {
		t.Fatalf("tampered selection persisted %d accounts", len(users.saved))
	}
	if w.Active(ctx, 7) {
		t.Error("session should be destroyed after an invalid selection")
	}
}

func TestUnregisteredUserCannotStart(t *testing.T) {
	ctx := context.Background()
	w := newTestWizard(&fakeUserStore{exists: false}, &fakeGateway{zones: testZones})
	r := w.Start(ctx, 9)
	if !r.Done {
		t.Fatalf("Start() for unregistered user = %+v, want Done", r)
	}
	if w.Active(ctx, 9) {
		t.Error("no session should exist for an unregistered user")
	}
}

func TestGatewayFailureEndsFlow(t *testing.T) {
	ctx := context.Background()
	w := newTestWizard(&fakeUserStore{exists: true}, &fakeGateway{err: errors.New("auth failed")})
	w.Start(ctx, 3)
	w.SubmitText(ctx, 3, "a@b.com")
	w.SubmitText(ctx, 3, validKey)

	r := w.SubmitText(ctx, 3, validAccount)
	if !r.Done {
		t.Fatalf("gateway failure should end the flow, got %+v", r)
	}
	if w.Active(ctx, 3) {
		t.Error("session should be destroyed after a gateway failure")
	}
}

func TestEmptyZoneListEndsFlow(t *testing.T) {
	ctx := context.Background()
	w := newTestWizard(&fakeUserStore{exists: true}, &fakeGateway{zones: nil})
	w.Start(ctx, 4)
	w.SubmitText(ctx, 4, "a@b.com")
	w.SubmitText(ctx, 4, validKey)

	if r := w.SubmitText(ctx, 4, validAccount); !r.Done {
		t.Fatalf("empty zone list should end the flow, got %+v", r)
	}
}

func TestCancelCleansUp(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserStore{exists: true}
	w := newTestWizard(users, &fakeGateway{zones: testZones})
	w.Start(ctx, 5)
	w.SubmitText(ctx, 5, "a@b.com")

	r := w.Cancel(ctx, 5)
	if !r.Done {
		t.Fatalf("Cancel() = %+v, want Done", r)
	}
	if w.Active(ctx, 5) {
		t.Error("session should be gone after cancel")
	}
	if len(users.saved) != 0 {
		t.Error("cancel must not persist an account")
	}
}

func TestCancelWithoutSession(t *testing.T) {
	ctx := context.Background()
	w := newTestWizard(&fakeUserStore{exists: true}, &fakeGateway{zones: testZones})

	// A stale cancel button (flow already finished) must not claim a
	// cancellation happened.
	r := w.Cancel(ctx, 11)
	if !r.Done {
		t.Fatalf("Cancel() = %+v, want Done", r)
	}
	if r.Text == msgCancelled {
		t.Error("cancel with no open session should not report a cancellation")
	}

	// After a real cancel, a second press is the stale case again.
	w.Start(ctx, 11)
	if r := w.Cancel(ctx, 11); r.Text != msgCancelled {
		t.Fatalf("Cancel() with an open session = %q, want cancellation notice", r.Text)
	}
	if r := w.Cancel(ctx, 11); r.Text == msgCancelled {
		t.Error("repeated cancel should get the neutral reply")
	}
}

func TestSaveFailureReportsAndCleansUp(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserStore{exists: true, saveErr: errors.New("db down")}
	w := newTestWizard(users, &fakeGateway{zones: testZones})
	w.Start(ctx, 6)
	w.SubmitText(ctx, 6, "a@b.com")
	w.SubmitText(ctx, 6, validKey)
	w.SubmitText(ctx, 6, validAccount)

	r := w.SelectZone(ctx, 6, "z2")
	if !r.Done || r.Account != nil {
		t.Fatalf("failed save = %+v, want Done without Account", r)
	}
	if w.Active(ctx, 6) {
		t.Error("session should be cleaned up after a failed save")
	}
}

func TestRestartReplacesSession(t *testing.T) {
	ctx := context.Background()
	w := newTestWizard(&fakeUserStore{exists: true}, &fakeGateway{zones: testZones})
	w.Start(ctx, 8)
	w.SubmitText(ctx, 8, "a@b.com")

	// A second start silently replaces the first session.
	w.Start(ctx, 8)
	r := w.SubmitText(ctx, 8, "not-an-email")
	if r.Done {
		t.Fatal("fresh session should be back at the email state")
	}
	if got := w.SubmitText(ctx, 8, "c@d.com"); got.Done {
		t.Fatalf("valid email after restart ended the flow: %q", got.Text)
	}
}
