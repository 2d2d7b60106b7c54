package service

import (
	"context"
	"gitgud_server/internal/app/platform"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
	"strings"
	"testing"
	"time"
)

// --- fakes ---

type fakeAdapter struct {
	platformID model.Platform
	solves     []model.SolvedProblem
	err        error
	prefix     string
	fetchCalls int
}

func (f *fakeAdapter) Platform() model.Platform { return f.platformID }

func (f *fakeAdapter) FetchSolves(ctx context.Context, username string) ([]model.SolvedProblem, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.solves, nil
}

func (f *fakeAdapter) ProfileURL(username string) string {
	return "https://example.com/users/" + username
}

func (f *fakeAdapter) CatalogURLPrefix() string { return f.prefix }

type fakeProblemRepo struct {
	problems    []model.Problem
	prefixCalls []string
	listPanics  bool
}

func (f *fakeProblemRepo) Create(ctx context.Context, p *model.Problem) error { return nil }

func (f *fakeProblemRepo) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	for i := range f.problems {
		if f.problems[i].ID == id {
			return &f.problems[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProblemRepo) FindByURL(ctx context.Context, url string) (*model.Problem, error) {
	for i := range f.problems {
		if f.problems[i].URL == url {
			return &f.problems[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProblemRepo) List(ctx context.Context) ([]model.Problem, error) {
	if f.listPanics {
		panic("catalog read exploded")
	}
	return f.problems, nil
}

func (f *fakeProblemRepo) ListByURLPrefix(ctx context.Context, prefix string) ([]model.Problem, error) {
	f.prefixCalls = append(f.prefixCalls, prefix)
	var out []model.Problem
	for _, p := range f.problems {
		if strings.HasPrefix(p.URL, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProblemRepo) GetUserFeedback(ctx context.Context, userID string) (map[string]model.FeedbackType, error) {
	return map[string]model.FeedbackType{}, nil
}

func (f *fakeProblemRepo) ApplyFeedback(ctx context.Context, problemID, userID string, feedback model.FeedbackType, undo bool, previous *model.FeedbackType) (*model.Problem, error) {
	return nil, common.ErrNotFound
}

type fakeSolveRepo struct {
	existing map[string]struct{}
	inserted []model.UserSolvedProblem
}

func newFakeSolveRepo() *fakeSolveRepo {
	return &fakeSolveRepo{existing: map[string]struct{}{}}
}

func (f *fakeSolveRepo) GetSolvedProblemIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(f.existing))
	for id := range f.existing {
		out[id] = struct{}{}
	}
	return out, nil
}

func (f *fakeSolveRepo) InsertSolves(ctx context.Context, solves []model.UserSolvedProblem) error {
	for _, s := range solves {
		f.inserted = append(f.inserted, s)
		f.existing[s.ProblemID] = struct{}{}
	}
	return nil
}

func (f *fakeSolveRepo) MarkSolved(ctx context.Context, userID, problemID string) error {
	f.existing[problemID] = struct{}{}
	return nil
}

func (f *fakeSolveRepo) MarkUnsolved(ctx context.Context, userID, problemID string) error {
	delete(f.existing, problemID)
	return nil
}

type fakeUserRepo struct {
	names *model.PlatformUsernames
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) UpsertPreferences(ctx context.Context, prefs *model.UserPreferences) error {
	return nil
}

func (f *fakeUserRepo) GetPlatformUsernames(ctx context.Context, userID string) (*model.PlatformUsernames, error) {
	if f.names == nil {
		return nil, common.ErrNotFound
	}
	return f.names, nil
}

func (f *fakeUserRepo) UpsertPlatformUsernames(ctx context.Context, names *model.PlatformUsernames) error {
	f.names = names
	return nil
}

// --- helpers ---

func solvedAt(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func newImportFixture(adapter *fakeAdapter, problems []model.Problem) (*ImportService, *fakeSolveRepo, *fakeProblemRepo) {
	problemRepo := &fakeProblemRepo{problems: problems}
	solveRepo := newFakeSolveRepo()
	registry := platform.Registry{adapter.Platform(): adapter}
	svc := NewImportService(registry, problemRepo, solveRepo, &fakeUserRepo{})
	return svc, solveRepo, problemRepo
}

// --- matcher / reconciler ---

func TestMatchSolvesToCatalogDropsUnknownURLs(t *testing.T) {
	t.Parallel()

	catalog := []model.Problem{
		{ID: "p1", URL: "https://codeforces.com/contest/1/problem/A"},
		{ID: "p2", URL: "https://codeforces.com/contest/2/problem/B"},
	}
	solves := []model.SolvedProblem{
		{URL: "https://codeforces.com/contest/1/problem/A", SolvedAt: solvedAt(10)},
		{URL: "https://codeforces.com/contest/999/problem/Z", SolvedAt: solvedAt(20)},
	}

	matched := matchSolvesToCatalog(solves, catalog)
	if len(matched) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matched))
	}
	if matched[0].problemID != "p1" || !matched[0].solvedAt.Equal(solvedAt(10)) {
		t.Errorf("unexpected match: %+v", matched[0])
	}
}

func TestFilterNewSolvesSetDifference(t *testing.T) {
	t.Parallel()

	matched := []matchedSolve{
		{problemID: "p1", solvedAt: solvedAt(1)},
		{problemID: "p2", solvedAt: solvedAt(2)},
		{problemID: "p3", solvedAt: solvedAt(3)},
	}
	existing := map[string]struct{}{"p2": {}}

	netNew := filterNewSolves(matched, existing)
	if len(netNew) != 2 {
		t.Fatalf("expected 2 net-new solves, got %d", len(netNew))
	}
	for _, m := range netNew {
		if m.problemID == "p2" {
			t.Error("already-recorded solve survived the set difference")
		}
	}
}

// --- orchestrator ---

func TestImportCountsInvariant(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{
		platformID: model.PlatformCodeforces,
		solves: []model.SolvedProblem{
			{URL: "https://codeforces.com/contest/1/problem/A", SolvedAt: solvedAt(10)},
			{URL: "https://codeforces.com/contest/2/problem/B", SolvedAt: solvedAt(20)},
			{URL: "https://codeforces.com/contest/3/problem/C", SolvedAt: solvedAt(30)},
		},
	}
	catalog := []model.Problem{
		{ID: "p1", URL: "https://codeforces.com/contest/1/problem/A"},
		{ID: "p2", URL: "https://codeforces.com/contest/2/problem/B"},
	}
	svc, solveRepo, _ := newImportFixture(adapter, catalog)
	solveRepo.existing["p1"] = struct{}{}

	result := svc.Import(context.Background(), "user-1", model.PlatformCodeforces, "tourist")
	if !result.Success {
		t.Fatalf("import failed: %s", result.Message)
	}
	if result.TotalSolved != 3 || result.MatchedCount != 2 || result.ImportedCount != 1 {
		t.Fatalf("counts = %d/%d/%d, want 3/2/1", result.TotalSolved, result.MatchedCount, result.ImportedCount)
	}
	if !(result.ImportedCount <= result.MatchedCount && result.MatchedCount <= result.TotalSolved) {
		t.Error("count ordering invariant violated")
	}
	if len(solveRepo.inserted) != 1 || solveRepo.inserted[0].ProblemID != "p2" {
		t.Fatalf("unexpected inserts: %+v", solveRepo.inserted)
	}
	if solveRepo.inserted[0].UserID != "user-1" {
		t.Errorf("insert for wrong user: %s", solveRepo.inserted[0].UserID)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{
		platformID: model.PlatformCodeforces,
		solves: []model.SolvedProblem{
			{URL: "https://codeforces.com/contest/1/problem/A", SolvedAt: solvedAt(10)},
			{URL: "https://codeforces.com/contest/2/problem/B", SolvedAt: solvedAt(20)},
		},
	}
	catalog := []model.Problem{
		{ID: "p1", URL: "https://codeforces.com/contest/1/problem/A"},
		{ID: "p2", URL: "https://codeforces.com/contest/2/problem/B"},
	}
	svc, solveRepo, _ := newImportFixture(adapter, catalog)

	first := svc.Import(context.Background(), "user-1", model.PlatformCodeforces, "tourist")
	if !first.Success || first.ImportedCount != 2 {
		t.Fatalf("first run: %+v", first)
	}

	second := svc.Import(context.Background(), "user-1", model.PlatformCodeforces, "tourist")
	if !second.Success {
		t.Fatalf("second run failed: %s", second.Message)
	}
	if second.ImportedCount != 0 {
		t.Fatalf("second run ImportedCount = %d, want 0", second.ImportedCount)
	}
	if len(solveRepo.inserted) != 2 {
		t.Fatalf("duplicate rows persisted: %d inserts", len(solveRepo.inserted))
	}
}

func TestImportEmptyUsernameNoNetworkCall(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{platformID: model.PlatformCodeforces}
	svc, _, _ := newImportFixture(adapter, nil)

	result := svc.Import(context.Background(), "user-1", model.PlatformCodeforces, "   ")
	if result.Success {
		t.Fatal("expected failure for empty username")
	}
	if adapter.fetchCalls != 0 {
		t.Errorf("adapter was called %d times, want 0", adapter.fetchCalls)
	}
}

func TestImportFallsBackToSavedUsername(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{platformID: model.PlatformKattis, prefix: "https://open.kattis.com"}
	problemRepo := &fakeProblemRepo{}
	solveRepo := newFakeSolveRepo()
	userRepo := &fakeUserRepo{names: &model.PlatformUsernames{UserID: "user-1", KattisUsername: "jane"}}
	svc := NewImportService(platform.Registry{adapter.Platform(): adapter}, problemRepo, solveRepo, userRepo)

	result := svc.Import(context.Background(), "user-1", model.PlatformKattis, "")
	if !result.Success {
		t.Fatalf("import failed: %s", result.Message)
	}
	if adapter.fetchCalls != 1 {
		t.Fatalf("adapter calls = %d, want 1", adapter.fetchCalls)
	}
}

func TestImportKattisUsesCatalogPrefix(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{
		platformID: model.PlatformKattis,
		prefix:     "https://open.kattis.com",
		solves: []model.SolvedProblem{
			{URL: "https://open.kattis.com/problems/hello", SolvedAt: solvedAt(5)},
		},
	}
	catalog := []model.Problem{
		{ID: "k1", URL: "https://open.kattis.com/problems/hello"},
		{ID: "c1", URL: "https://codeforces.com/contest/1/problem/A"},
	}
	svc, _, problemRepo := newImportFixture(adapter, catalog)

	result := svc.Import(context.Background(), "user-1", model.PlatformKattis, "jane")
	if !result.Success || result.MatchedCount != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(problemRepo.prefixCalls) != 1 || problemRepo.prefixCalls[0] != "https://open.kattis.com" {
		t.Fatalf("catalog not pre-filtered by prefix: %v", problemRepo.prefixCalls)
	}
}

func TestImportUserNotFoundGuidance(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{platformID: model.PlatformCodeforces, err: platform.ErrUserNotFound}
	svc, _, _ := newImportFixture(adapter, nil)

	result := svc.Import(context.Background(), "user-1", model.PlatformCodeforces, "ghost")
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Message, "https://example.com/users/ghost") {
		t.Errorf("message %q should include the profile verification link", result.Message)
	}
}

func TestImportRecoversFromPanic(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{
		platformID: model.PlatformCodeforces,
		solves:     []model.SolvedProblem{{URL: "u", SolvedAt: solvedAt(1)}},
	}
	problemRepo := &fakeProblemRepo{listPanics: true}
	svc := NewImportService(platform.Registry{adapter.Platform(): adapter}, problemRepo, newFakeSolveRepo(), &fakeUserRepo{})

	result := svc.Import(context.Background(), "user-1", model.PlatformCodeforces, "tourist")
	if result.Success {
		t.Fatal("expected failure result from recovered panic")
	}
	if result.Message == "" {
		t.Error("recovered failure should carry a message")
	}
}

func TestFetchUserSolvesValidation(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{platformID: model.PlatformCodeforces}
	svc, _, _ := newImportFixture(adapter, nil)

	if _, err := svc.FetchUserSolves(context.Background(), model.PlatformCodeforces, ""); err == nil {
		t.Fatal("expected validation error for empty username")
	}
	if _, err := svc.FetchUserSolves(context.Background(), model.Platform("topcoder"), "x"); err == nil {
		t.Fatal("expected error for unsupported platform")
	}
}
