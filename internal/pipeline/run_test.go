package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-crm/internal/agents"
	"github.com/jonathan/outreach-crm/internal/db"
	"github.com/jonathan/outreach-crm/internal/types"
)

// fakeStore is an in-memory Store. Drafts are kept newest-first to mirror the
// ORDER BY created_at DESC queries it stands in for.
type fakeStore struct {
	mu        sync.Mutex
	leads     map[uuid.UUID]*db.Lead
	snapshots map[uuid.UUID][]db.WebsiteSnapshot
	drafts    map[uuid.UUID][]db.EmailDraft
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:     make(map[uuid.UUID]*db.Lead),
		snapshots: make(map[uuid.UUID][]db.WebsiteSnapshot),
		drafts:    make(map[uuid.UUID][]db.EmailDraft),
	}
}

func (f *fakeStore) addLead(websiteURL *string) uuid.UUID {
	id := uuid.New()
	f.leads[id] = &db.Lead{ID: id, Name: "Dana", Company: "Brightsmile Dental", WebsiteURL: websiteURL}
	return id
}

func (f *fakeStore) GetLead(_ context.Context, id uuid.UUID) (*db.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leads[id], nil
}

func (f *fakeStore) LatestSnapshot(_ context.Context, leadID uuid.UUID) (*db.WebsiteSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snaps := f.snapshots[leadID]
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

func (f *fakeStore) CreateSnapshot(_ context.Context, leadID uuid.UUID, url, rawText string, fetchedAt *time.Time) (*db.WebsiteSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at := time.Now()
	if fetchedAt != nil {
		at = *fetchedAt
	}
	s := db.WebsiteSnapshot{ID: uuid.New(), LeadID: leadID, URL: url, RawText: rawText, FetchedAt: at}
	f.snapshots[leadID] = append([]db.WebsiteSnapshot{s}, f.snapshots[leadID]...)
	return &s, nil
}

func (f *fakeStore) LatestAgent1Draft(_ context.Context, leadID uuid.UUID) (*db.EmailDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.drafts[leadID] {
		if f.drafts[leadID][i].Agent1Output != nil {
			return &f.drafts[leadID][i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) RecentDrafts(_ context.Context, leadID uuid.UUID, limit int) ([]db.EmailDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	drafts := f.drafts[leadID]
	if len(drafts) > limit {
		drafts = drafts[:limit]
	}
	out := make([]db.EmailDraft, len(drafts))
	copy(out, drafts)
	return out, nil
}

func (f *fakeStore) CreateDraft(_ context.Context, p db.DraftParams) (*db.EmailDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	decision := p.Decision
	if decision == "" {
		decision = "draft"
	}
	d := db.EmailDraft{
		ID:           uuid.New(),
		LeadID:       p.LeadID,
		Subject:      p.Subject,
		Body:         p.Body,
		Agent1Output: p.Agent1Output,
		Verdict:      p.Verdict,
		Decision:     decision,
		CreatedAt:    time.Now(),
	}
	f.drafts[p.LeadID] = append([]db.EmailDraft{d}, f.drafts[p.LeadID]...)
	return &d, nil
}

func (f *fakeStore) ApplyVerdict(_ context.Context, draftID uuid.UUID, verdict *types.Agent3Verdict) (*db.EmailDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for leadID := range f.drafts {
		for i := range f.drafts[leadID] {
			d := &f.drafts[leadID][i]
			if d.ID != draftID {
				continue
			}
			d.Decision = verdict.Decision
			d.Subject = verdict.FinalEmail.Subject
			d.Body = verdict.FinalEmail.EmailBody
			d.Verdict = &types.DraftVerdict{
				Decision:   verdict.Decision,
				Issues:     verdict.Issues,
				FinalEmail: &verdict.FinalEmail,
			}
			return d, nil
		}
	}
	return nil, nil
}

type fakeExtractor struct {
	calls int
	out   *types.Agent1Output
}

func (f *fakeExtractor) Run(_ context.Context, _ string) (*types.Agent1Output, error) {
	f.calls++
	return f.out, nil
}

type fakeDrafter struct {
	mu      sync.Mutex
	calls   int
	subject string
}

func (f *fakeDrafter) Run(_ context.Context, _ agents.DraftInput) (*types.Agent2Output, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	subject := f.subject
	if subject == "" {
		subject = "Quick question about online booking"
	}
	return &types.Agent2Output{
		Subject:    subject,
		EmailBody:  "Hi Dana, noticed patients still have to call to schedule.",
		UsedSignal: "No online booking",
	}, nil
}

type fakeVerifier struct {
	calls   int
	verdict *types.Agent3Verdict
}

func (f *fakeVerifier) Run(_ context.Context, _ agents.VerifyInput) (*types.Agent3Verdict, error) {
	f.calls++
	return f.verdict, nil
}

type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) Snapshot(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func sampleAgent1Output() *types.Agent1Output {
	return &types.Agent1Output{
		WebsiteSummary: types.WebsiteSummary{
			OneLiner:        "Dental practice in Leeds.",
			ServicesOffered: []string{"implants"},
		},
		RecommendedAngle: types.RecommendedAngle{PrimaryOffer: "online booking", CTA: "short call"},
	}
}

func strptr(s string) *string { return &s }

func TestIngestWebsiteStoresSnapshot(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	orch := New(store, nil, nil, nil, &fakeFetcher{text: "Welcome to Brightsmile Dental"})

	result, err := orch.IngestWebsite(context.Background(), leadID)
	require.NoError(t, err)
	assert.Equal(t, len("Welcome to Brightsmile Dental"), result.RawTextLength)

	snap, err := store.LatestSnapshot(context.Background(), leadID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "https://brightsmile.example", snap.URL)
}

func TestIngestWebsiteEmptyTextStoresPlaceholder(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	orch := New(store, nil, nil, nil, &fakeFetcher{text: ""})

	_, err := orch.IngestWebsite(context.Background(), leadID)
	require.NoError(t, err)

	snap, err := store.LatestSnapshot(context.Background(), leadID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, emptyTextPlaceholder, snap.RawText)
}

func TestIngestWebsiteRequiresWebsiteURL(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(nil)
	orch := New(store, nil, nil, nil, &fakeFetcher{text: "never reached"})

	_, err := orch.IngestWebsite(context.Background(), leadID)
	var noURLErr *NoWebsiteURLError
	require.ErrorAs(t, err, &noURLErr)
	assert.Equal(t, leadID, noURLErr.LeadID)
}

func TestIngestWebsiteUnknownLead(t *testing.T) {
	orch := New(newFakeStore(), nil, nil, nil, &fakeFetcher{})

	_, err := orch.IngestWebsite(context.Background(), uuid.New())
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "lead", notFoundErr.Resource)
}

func TestRunAgent1AppendsDraftWithOutput(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	_, err := store.CreateSnapshot(context.Background(), leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)

	extractor := &fakeExtractor{out: sampleAgent1Output()}
	orch := New(store, extractor, nil, nil, nil)

	result, err := orch.RunAgent1(context.Background(), leadID)
	require.NoError(t, err)
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, "Dental practice in Leeds.", result.Agent1Output.WebsiteSummary.OneLiner)

	draft, err := store.LatestAgent1Draft(context.Background(), leadID)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "agent1", draft.Decision)
	assert.NotNil(t, draft.Agent1Output)
}

func TestRunAgent1RequiresSnapshot(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	extractor := &fakeExtractor{out: sampleAgent1Output()}
	orch := New(store, extractor, nil, nil, nil)

	_, err := orch.RunAgent1(context.Background(), leadID)
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "snapshot", notFoundErr.Resource)
	assert.Zero(t, extractor.calls, "extractor must not run without a snapshot")
}

func TestRunAgent2AppendsSourcedDraft(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	ctx := context.Background()
	_, err := store.CreateSnapshot(ctx, leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)
	_, err = store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Agent 1 signals", Body: "one liner",
		Agent1Output: sampleAgent1Output(), Decision: "agent1",
	})
	require.NoError(t, err)

	orch := New(store, nil, &fakeDrafter{}, nil, nil)

	draft, err := orch.RunAgent2(ctx, leadID)
	require.NoError(t, err)
	assert.Equal(t, "draft", draft.Decision)
	require.NotNil(t, draft.Verdict)
	assert.Equal(t, types.VerdictSourceAgent2, draft.Verdict.Source)
	assert.NotNil(t, draft.Agent1Output, "agent1 output is carried onto the new draft")
}

func TestRunAgent2RequiresAgent1Output(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	ctx := context.Background()
	_, err := store.CreateSnapshot(ctx, leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)

	drafter := &fakeDrafter{}
	orch := New(store, nil, drafter, nil, nil)

	_, err = orch.RunAgent2(ctx, leadID)
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "agent1 output", notFoundErr.Resource)
	assert.Zero(t, drafter.calls)
}

func TestRunAgent2TruncatesSubjectOnRuneBoundary(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	ctx := context.Background()
	_, err := store.CreateSnapshot(ctx, leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)
	_, err = store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Agent 1 signals", Body: "one liner",
		Agent1Output: sampleAgent1Output(), Decision: "agent1",
	})
	require.NoError(t, err)

	// A multibyte rune straddles the column width.
	drafter := &fakeDrafter{subject: strings.Repeat("a", db.MaxSubjectLength-1) + "歯科"}
	orch := New(store, nil, drafter, nil, nil)

	draft, err := orch.RunAgent2(ctx, leadID)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(draft.Subject))
	assert.Equal(t, db.MaxSubjectLength, utf8.RuneCountInString(draft.Subject))
	assert.True(t, strings.HasSuffix(draft.Subject, "歯"))
}

func TestRunAgent2ConcurrentRunsAppendDistinctDrafts(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	ctx := context.Background()
	_, err := store.CreateSnapshot(ctx, leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)
	_, err = store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Agent 1 signals", Body: "one liner",
		Agent1Output: sampleAgent1Output(), Decision: "agent1",
	})
	require.NoError(t, err)

	orch := New(store, nil, &fakeDrafter{}, nil, nil)

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			draft, err := orch.RunAgent2(ctx, leadID)
			if assert.NoError(t, err) {
				ids[i] = draft.ID
			}
		}(i)
	}
	wg.Wait()

	assert.NotEqual(t, ids[0], ids[1], "each run appends its own draft")
	drafts, err := store.RecentDrafts(ctx, leadID, 25)
	require.NoError(t, err)
	assert.Len(t, drafts, 3) // agent1 row + two agent2 drafts
}

func TestRunAgent3VerifiesAndMutatesDraft(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	ctx := context.Background()
	_, err := store.CreateSnapshot(ctx, leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)
	_, err = store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Agent 1 signals", Body: "one liner",
		Agent1Output: sampleAgent1Output(), Decision: "agent1",
	})
	require.NoError(t, err)
	target, err := store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Draft subject", Body: "Draft body",
		Agent1Output: sampleAgent1Output(),
		Verdict:      &types.DraftVerdict{Source: types.VerdictSourceAgent2},
	})
	require.NoError(t, err)

	verifier := &fakeVerifier{verdict: &types.Agent3Verdict{
		Decision: types.DecisionSend,
		Issues:   []string{},
		FinalEmail: types.FinalEmail{
			Subject:   "Polished subject",
			EmailBody: "Polished body",
		},
	}}
	orch := New(store, nil, nil, verifier, nil)

	result, err := orch.RunAgent3(ctx, leadID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, result.DraftID, "verifies the agent2-sourced draft in place")
	assert.Equal(t, types.DecisionSend, result.Decision)

	drafts, err := store.RecentDrafts(ctx, leadID, 25)
	require.NoError(t, err)
	assert.Len(t, drafts, 2, "no new draft row is appended")
	assert.Equal(t, "Polished subject", drafts[0].Subject)
	assert.Equal(t, types.DecisionSend, drafts[0].Decision)
}

func TestRunAgent3WithoutDraftNeverCallsVerifier(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	ctx := context.Background()
	_, err := store.CreateSnapshot(ctx, leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)
	// Agent 1 row exists but nothing verifiable.
	_, err = store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Agent 1 signals", Body: "one liner",
		Agent1Output: sampleAgent1Output(), Decision: "agent1",
	})
	require.NoError(t, err)

	verifier := &fakeVerifier{}
	orch := New(store, nil, nil, verifier, nil)

	_, err = orch.RunAgent3(ctx, leadID)
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "agent2 draft", notFoundErr.Resource)
	assert.Zero(t, verifier.calls, "precondition failures must not reach the remote service")
}

func TestRunAgent3ReverifiesDecidedDraft(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	ctx := context.Background()
	_, err := store.CreateSnapshot(ctx, leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)
	_, err = store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Agent 1 signals", Body: "one liner",
		Agent1Output: sampleAgent1Output(), Decision: "agent1",
	})
	require.NoError(t, err)
	// Already verified once: decided hold, final_email populated, no source marker.
	decided, err := store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Held subject", Body: "Held body",
		Agent1Output: sampleAgent1Output(),
		Verdict: &types.DraftVerdict{
			Decision:   types.DecisionHold,
			Issues:     []string{"unsupported claim"},
			FinalEmail: &types.FinalEmail{Subject: "Held subject", EmailBody: "Held body"},
		},
		Decision: types.DecisionHold,
	})
	require.NoError(t, err)

	verifier := &fakeVerifier{verdict: &types.Agent3Verdict{
		Decision:   types.DecisionSend,
		Issues:     []string{},
		FinalEmail: types.FinalEmail{Subject: "Fixed subject", EmailBody: "Fixed body"},
	}}
	orch := New(store, nil, nil, verifier, nil)

	result, err := orch.RunAgent3(ctx, leadID)
	require.NoError(t, err)
	assert.Equal(t, decided.ID, result.DraftID)
	assert.Equal(t, types.DecisionSend, result.Decision)
}

func TestGetLatestContext(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(strptr("https://brightsmile.example"))
	ctx := context.Background()
	_, err := store.CreateSnapshot(ctx, leadID, "https://brightsmile.example", "site text", nil)
	require.NoError(t, err)
	_, err = store.CreateDraft(ctx, db.DraftParams{
		LeadID: leadID, Subject: "Agent 1 signals", Body: "one liner",
		Agent1Output: sampleAgent1Output(), Decision: "agent1",
	})
	require.NoError(t, err)

	orch := New(store, nil, nil, nil, nil)

	result, err := orch.GetLatestContext(ctx, leadID)
	require.NoError(t, err)
	require.NotNil(t, result.Snapshot)
	require.NotNil(t, result.Agent1Output)
	assert.Nil(t, result.Verdict, "no decided draft yet")
}

func TestGetLatestContextUnknownLead(t *testing.T) {
	orch := New(newFakeStore(), nil, nil, nil, nil)

	_, err := orch.GetLatestContext(context.Background(), uuid.New())
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}
