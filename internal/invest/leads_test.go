package invest

import (
	"context"
	"errors"
	"testing"
)

type recordingNotifier struct {
	notified []Lead
	failure  error
}

func (notifier *recordingNotifier) NotifyLead(_ context.Context, _ TelegramBotConfig, lead Lead) error {
	notifier.notified = append(notifier.notified, lead)
	return notifier.failure
}

func TestSubmitLeadStoresSubmission(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)

	lead := Lead{Name: "Alice", Email: "alice@example.com", Message: "Tell me more"}
	if err := service.SubmitLead(context.Background(), lead); err != nil {
		test.Fatalf("submit: %v", err)
	}
	if len(store.leads) != 1 || store.leads[0] != lead {
		test.Fatalf("unexpected stored leads %+v", store.leads)
	}
}

func TestSubmitLeadValidatesFields(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())

	invalid := []Lead{
		{Name: "", Email: "a@b.com", Message: "hi"},
		{Name: "Alice", Email: "", Message: "hi"},
		{Name: "Alice", Email: "bad-email", Message: "hi"},
		{Name: "Alice", Email: "a@b.com", Message: ""},
	}
	for _, lead := range invalid {
		if err := service.SubmitLead(context.Background(), lead); !errors.Is(err, ErrInvalidLead) {
			test.Fatalf("lead %+v: expected ErrInvalidLead, got %v", lead, err)
		}
	}
}

func TestSubmitLeadNotifiesWhenBotActive(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	notifier := &recordingNotifier{}
	service := mustNewService(test, store, WithLeadNotifier(notifier))
	store.botConfig = &TelegramBotConfig{BotToken: "token", ChatID: "chat", Active: true}

	lead := Lead{Name: "Alice", Email: "alice@example.com", Message: "Tell me more"}
	if err := service.SubmitLead(context.Background(), lead); err != nil {
		test.Fatalf("submit: %v", err)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != lead {
		test.Fatalf("expected notification, got %+v", notifier.notified)
	}
}

func TestSubmitLeadSkipsNotificationWhenInactive(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	notifier := &recordingNotifier{}
	service := mustNewService(test, store, WithLeadNotifier(notifier))
	store.botConfig = &TelegramBotConfig{BotToken: "token", ChatID: "chat", Active: false}

	if err := service.SubmitLead(context.Background(), Lead{Name: "Alice", Email: "a@b.com", Message: "hi"}); err != nil {
		test.Fatalf("submit: %v", err)
	}
	if len(notifier.notified) != 0 {
		test.Fatalf("notification fired with inactive bot")
	}
}

func TestSubmitLeadSurvivesNotifierFailure(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	notifier := &recordingNotifier{failure: errors.New("telegram unreachable")}
	service := mustNewService(test, store, WithLeadNotifier(notifier))
	store.botConfig = &TelegramBotConfig{BotToken: "token", ChatID: "chat", Active: true}

	if err := service.SubmitLead(context.Background(), Lead{Name: "Alice", Email: "a@b.com", Message: "hi"}); err != nil {
		test.Fatalf("notifier failure must not fail the submission: %v", err)
	}
	if len(store.leads) != 1 {
		test.Fatalf("lead was not stored")
	}
}

func TestLeadsListingRequiresAdmin(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	alice := registeredCaller(test, service, "principal-alice")

	if _, err := service.Leads(context.Background(), alice); !errors.Is(err, ErrNotAdmin) {
		test.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestTelegramConfigRoundTrip(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	root := adminCaller(test, store, service, "principal-root")

	config, err := service.TelegramConfig(context.Background(), root)
	if err != nil {
		test.Fatalf("initial config: %v", err)
	}
	if config.Active || config.BotToken != "" {
		test.Fatalf("expected zero config, got %+v", config)
	}

	updated := TelegramBotConfig{BotToken: "token", ChatID: "chat", Active: true}
	if err := service.UpdateTelegramConfig(context.Background(), root, updated); err != nil {
		test.Fatalf("update: %v", err)
	}
	config, err = service.TelegramConfig(context.Background(), root)
	if err != nil || config != updated {
		test.Fatalf("round trip failed: %+v, %v", config, err)
	}

	invalid := TelegramBotConfig{Active: true}
	if err := service.UpdateTelegramConfig(context.Background(), root, invalid); !errors.Is(err, ErrInvalidBotConfig) {
		test.Fatalf("expected ErrInvalidBotConfig, got %v", err)
	}
}
