package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/edgewatchlabs/edgewatch/internal/matcher"
	"github.com/edgewatchlabs/edgewatch/internal/state"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFetcher struct {
	components []matcher.Component
	calls      int
}

func (f *fakeFetcher) Fetch(ctx context.Context) []matcher.Component {
	f.calls++
	return f.components
}

type sentNotification struct {
	location  string
	component string
	status    string
}

type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) Notify(ctx context.Context, location, componentName, status string) {
	n.sent = append(n.sent, sentNotification{location, componentName, status})
}

type panickingNotifier struct{}

func (panickingNotifier) Notify(ctx context.Context, location, componentName, status string) {
	panic("webhook exploded")
}

// countingStore wraps a Store and counts Save calls.
type countingStore struct {
	state.Store
	saves int
}

func (c *countingStore) Save(statuses map[string]string) error {
	c.saves++
	return c.Store.Save(statuses)
}

// failingStore always fails to persist.
type failingStore struct{}

func (failingStore) Load() (map[string]string, error) { return map[string]string{}, nil }
func (failingStore) Save(map[string]string) error     { return errors.New("disk full") }

func newTestWatcher(fetcher Fetcher, notifier Notifier, store state.Store, targets ...string) *Watcher {
	return New(targets, time.Minute, fetcher, notifier, store, testLogger())
}

func TestCycle_FirstObservationNotifiesAndPersists(t *testing.T) {
	fetcher := &fakeFetcher{components: []matcher.Component{
		{Name: "Jakarta Edge", Status: "operational"},
	}}
	notifier := &recordingNotifier{}
	store := &countingStore{Store: state.NewMemoryStore()}

	w := newTestWatcher(fetcher, notifier, store, "jakarta")
	w.cycle(context.Background())

	if len(notifier.sent) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(notifier.sent))
	}
	want := sentNotification{"jakarta", "Jakarta Edge", "operational"}
	if notifier.sent[0] != want {
		t.Errorf("notification = %+v, want %+v", notifier.sent[0], want)
	}
	if store.saves != 1 {
		t.Errorf("store saved %d times, want 1", store.saves)
	}

	persisted, _ := store.Load()
	if persisted["jakarta"] != "operational" {
		t.Errorf("persisted state = %v, want jakarta=operational", persisted)
	}
}

func TestCycle_UnchangedStatusIsSilent(t *testing.T) {
	fetcher := &fakeFetcher{components: []matcher.Component{
		{Name: "Jakarta Edge", Status: "operational"},
	}}
	notifier := &recordingNotifier{}
	store := &countingStore{Store: state.NewMemoryStore()}

	w := newTestWatcher(fetcher, notifier, store, "jakarta")
	w.statuses = map[string]string{"jakarta": "operational"}

	w.cycle(context.Background())

	if len(notifier.sent) != 0 {
		t.Errorf("notifier called %d times, want 0", len(notifier.sent))
	}
	if store.saves != 0 {
		t.Errorf("store saved %d times, want 0", store.saves)
	}
}

func TestCycle_SecondIdenticalCycleIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{components: []matcher.Component{
		{Name: "Jakarta Edge", Status: "operational"},
		{Name: "Singapore - (SIN)", Status: "partial_outage"},
	}}
	notifier := &recordingNotifier{}
	store := &countingStore{Store: state.NewMemoryStore()}

	w := newTestWatcher(fetcher, notifier, store, "jakarta", "singapore")
	w.cycle(context.Background())
	w.cycle(context.Background())

	if len(notifier.sent) != 2 {
		t.Errorf("notifier called %d times across both cycles, want 2", len(notifier.sent))
	}
	if store.saves != 2 {
		t.Errorf("store saved %d times across both cycles, want 2", store.saves)
	}
}

func TestCycle_StatusChangeNotifiesAgain(t *testing.T) {
	fetcher := &fakeFetcher{components: []matcher.Component{
		{Name: "Jakarta Edge", Status: "operational"},
	}}
	notifier := &recordingNotifier{}
	store := &countingStore{Store: state.NewMemoryStore()}

	w := newTestWatcher(fetcher, notifier, store, "jakarta")
	w.cycle(context.Background())

	fetcher.components[0].Status = "major_outage"
	w.cycle(context.Background())

	if len(notifier.sent) != 2 {
		t.Fatalf("notifier called %d times, want 2", len(notifier.sent))
	}
	if notifier.sent[1].status != "major_outage" {
		t.Errorf("second notification status = %q, want major_outage", notifier.sent[1].status)
	}

	persisted, _ := store.Load()
	if persisted["jakarta"] != "major_outage" {
		t.Errorf("persisted state = %v, want jakarta=major_outage", persisted)
	}
}

func TestCycle_UnmatchedTargetNotPersisted(t *testing.T) {
	fetcher := &fakeFetcher{components: []matcher.Component{
		{Name: "Jakarta Edge", Status: "operational"},
	}}
	notifier := &recordingNotifier{}
	store := &countingStore{Store: state.NewMemoryStore()}

	w := newTestWatcher(fetcher, notifier, store, "jakarta", "atlantis")
	w.cycle(context.Background())

	if len(notifier.sent) != 1 {
		t.Errorf("notifier called %d times, want 1 (jakarta only)", len(notifier.sent))
	}
	persisted, _ := store.Load()
	if _, ok := persisted["atlantis"]; ok {
		t.Errorf("unmatched target persisted: %v", persisted)
	}
}

func TestCycle_EmptyFetchSkipsCompare(t *testing.T) {
	fetcher := &fakeFetcher{}
	notifier := &recordingNotifier{}
	store := &countingStore{Store: state.NewMemoryStore()}

	w := newTestWatcher(fetcher, notifier, store, "jakarta")
	w.cycle(context.Background())

	if len(notifier.sent) != 0 {
		t.Errorf("notifier called %d times on empty fetch, want 0", len(notifier.sent))
	}
	if store.saves != 0 {
		t.Errorf("store saved %d times on empty fetch, want 0", store.saves)
	}
}

func TestCycle_PersistFailureIsNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{components: []matcher.Component{
		{Name: "Jakarta Edge", Status: "operational"},
	}}
	notifier := &recordingNotifier{}

	w := newTestWatcher(fetcher, notifier, failingStore{}, "jakarta")
	w.cycle(context.Background())

	if len(notifier.sent) != 1 {
		t.Errorf("notifier called %d times despite save failure, want 1", len(notifier.sent))
	}
	// in-memory state still advanced, so the next cycle stays silent
	w.cycle(context.Background())
	if len(notifier.sent) != 1 {
		t.Errorf("notifier called %d times after second cycle, want still 1", len(notifier.sent))
	}
}

func TestRunCycle_RecoversPanic(t *testing.T) {
	fetcher := &fakeFetcher{components: []matcher.Component{
		{Name: "Jakarta Edge", Status: "operational"},
	}}
	store := &countingStore{Store: state.NewMemoryStore()}

	w := newTestWatcher(fetcher, panickingNotifier{}, store, "jakarta")

	// must not propagate the notifier's panic
	w.runCycle(context.Background())
}

func TestRun_LoadsPersistedStateAtStartup(t *testing.T) {
	store := state.NewMemoryStore()
	if err := store.Save(map[string]string{"jakarta": "operational"}); err != nil {
		t.Fatal(err)
	}

	fetcher := &fakeFetcher{components: []matcher.Component{
		{Name: "Jakarta Edge", Status: "operational"},
	}}
	notifier := &recordingNotifier{}

	w := New([]string{"jakarta"}, 50*time.Millisecond, fetcher, notifier, store, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after context cancellation")
	}

	// status matched the persisted one, so no cycle may have notified
	if len(notifier.sent) != 0 {
		t.Errorf("notifier called %d times, want 0 (state survived restart)", len(notifier.sent))
	}
	if fetcher.calls < 2 {
		t.Errorf("fetcher called %d times, want immediate cycle plus ticks", fetcher.calls)
	}
}

func TestRun_StopsPromptlyOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{}
	w := New([]string{"jakarta"}, time.Hour, fetcher, &recordingNotifier{}, state.NewMemoryStore(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() blocked on its interval sleep after cancellation")
	}
}
