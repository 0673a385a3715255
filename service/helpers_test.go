package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mailme/models"
	"mailme/service"
	"mailme/storage"
)

const testDomain = "mailme.com"

type fakeUsers map[string]*models.User

func (f fakeUsers) Get(id string) (*models.User, error) {
	user, ok := f[strings.ToLower(id)]
	if !ok {
		return nil, service.ErrNotFound
	}
	return user, nil
}

type stubClassifier struct {
	mu      sync.Mutex
	verdict bool
	calls   int
}

func (s *stubClassifier) IsBlacklisted(_ context.Context, _, _ string, isDraft bool) bool {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if isDraft {
		return false
	}
	return s.verdict
}

// recordingBlacklister captures fire-and-forget token pushes and lets tests
// wait for them.
type recordingBlacklister struct {
	mu      sync.Mutex
	added   [][]string
	removed [][]string
	signal  chan struct{}
}

func newRecordingBlacklister() *recordingBlacklister {
	return &recordingBlacklister{signal: make(chan struct{}, 10)}
}

func (r *recordingBlacklister) AddAll(_ context.Context, tokens []string) {
	r.mu.Lock()
	r.added = append(r.added, tokens)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recordingBlacklister) RemoveAll(_ context.Context, tokens []string) {
	r.mu.Lock()
	r.removed = append(r.removed, tokens)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recordingBlacklister) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for blacklist update")
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	notified []string
}

func (r *recordingNotifier) NotifyNewMail(userID string, _ *models.MailSummary) {
	r.mu.Lock()
	r.notified = append(r.notified, userID)
	r.mu.Unlock()
}

type testEnv struct {
	mails       *service.MailService
	statuses    *service.StatusService
	labels      *service.LabelService
	store       *storage.MemoryStore
	classifier  *stubClassifier
	blacklister *recordingBlacklister
	notifier    *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := storage.NewMemoryStore()
	users := fakeUsers{
		"alice": {ID: "alice", Name: "Alice"},
		"bob":   {ID: "bob", Name: "Bob"},
		"carol": {ID: "carol", Name: "Carol"},
	}
	classifier := &stubClassifier{}
	blacklister := newRecordingBlacklister()
	notifier := &recordingNotifier{}

	return &testEnv{
		mails:       service.NewMailService(store.Mails(), store.Statuses(), store.Labels(), users, classifier, notifier, testDomain),
		statuses:    service.NewStatusService(store.Statuses(), store.Mails(), store.Labels(), blacklister),
		labels:      service.NewLabelService(store.Labels(), store.Statuses()),
		store:       store,
		classifier:  classifier,
		blacklister: blacklister,
		notifier:    notifier,
	}
}

// send delivers a mail from alice to bob and returns the mail ID.
func (e *testEnv) send(t *testing.T, subject, body string) string {
	t.Helper()
	outcome, err := e.mails.CreateMail(context.Background(), "alice", []string{"bob@mailme.com"}, subject, body, false)
	require.NoError(t, err)
	return outcome.MailID
}

// status fetches a row directly from the store.
func (e *testEnv) status(t *testing.T, mailID, userID string) *models.MailStatus {
	t.Helper()
	st, err := e.store.Statuses().Get(mailID, userID)
	require.NoError(t, err)
	return st
}

// requireSpamInvariant asserts isSpam implies no labels and no star.
func requireSpamInvariant(t *testing.T, st *models.MailStatus) {
	t.Helper()
	if st.IsSpam {
		require.Empty(t, st.Labels, "spam row must have no labels")
		require.False(t, st.IsStar, "spam row must not be starred")
	}
}
