package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/connections/internal/puzzle"
	"github.com/robalobadob/connections/internal/store"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// firstSource always picks index 0.
type firstSource struct{}

func (firstSource) Intn(int) int { return 0 }

func testPuzzle() puzzle.Puzzle {
	return puzzle.Puzzle{
		ID: "t1",
		Categories: []puzzle.Category{
			{Name: "A", Color: puzzle.ColorYellow, Words: []string{"A1", "A2", "A3", "A4"}},
			{Name: "B", Color: puzzle.ColorGreen, Words: []string{"B1", "B2", "B3", "B4"}},
			{Name: "C", Color: puzzle.ColorBlue, Words: []string{"C1", "C2", "C3", "C4"}},
			{Name: "D", Color: puzzle.ColorPurple, Words: []string{"D1", "D2", "D3", "D4"}},
		},
	}
}

type testEnv struct {
	t      *testing.T
	ts     *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	cfg := Config{
		Library:    []puzzle.Puzzle{testPuzzle()},
		DailySalt:  "salt",
		JWTSecret:  "test-secret",
		CookieName: "connections_session",
		SessionTTL: time.Hour,
		ShareLinks: true,
		Rand:       firstSource{},
		Now:        func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	srv := New(store.NewMemoryStore(), db, cfg)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	env := &testEnv{t: t, ts: ts}
	env.client = env.newClient()
	return env
}

func (e *testEnv) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// call sends a JSON request with c and decodes the response into out (if non-nil).
func (e *testEnv) call(c *http.Client, method, path string, body, out any) int {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			e.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) selectWords(words ...string) stateView {
	e.t.Helper()
	var res stateRes
	for _, w := range words {
		if code := e.call(e.client, http.MethodPost, "/game/select", selectReq{Word: w}, &res); code != http.StatusOK {
			e.t.Fatalf("select %s: status %d", w, code)
		}
	}
	return res.State
}

func (e *testEnv) submit(words ...string) submitRes {
	e.t.Helper()
	e.selectWords(words...)
	var res submitRes
	if code := e.call(e.client, http.MethodPost, "/game/submit", nil, &res); code != http.StatusOK {
		e.t.Fatalf("submit: status %d", code)
	}
	return res
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	var body map[string]bool
	if code := env.call(env.client, http.MethodGet, "/health", nil, &body); code != http.StatusOK || !body["ok"] {
		t.Errorf("Expected ok, got %d %v", code, body)
	}
}

func TestNewGameHidesCategories(t *testing.T) {
	env := newTestEnv(t, nil)
	var res stateRes
	if code := env.call(env.client, http.MethodGet, "/game", nil, &res); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	st := res.State
	if st.PuzzleID != "t1" || len(st.RemainingWords) != 16 || st.MistakesRemaining != 4 {
		t.Errorf("Unexpected new game: %+v", st)
	}
	if st.Categories != nil {
		t.Error("Categories must stay hidden while playing")
	}

	// Lowercase input is accepted.
	st = env.selectWords("a1")
	if len(st.SelectedWords) != 1 || st.SelectedWords[0] != "A1" {
		t.Errorf("Expected A1 selected, got %v", st.SelectedWords)
	}

	// The selection survives across requests on the same session.
	env.call(env.client, http.MethodGet, "/game", nil, &res)
	if len(res.State.SelectedWords) != 1 {
		t.Errorf("Expected selection to persist, got %v", res.State.SelectedWords)
	}

	// A second player gets an independent game.
	other := env.newClient()
	env.call(other, http.MethodGet, "/game", nil, &res)
	if len(res.State.SelectedWords) != 0 {
		t.Errorf("Expected a fresh game for another player, got %v", res.State.SelectedWords)
	}
}

func TestSubmitCorrect(t *testing.T) {
	env := newTestEnv(t, nil)
	res := env.submit("A1", "A2", "A3", "A4")
	if !res.Outcome.Applied || !res.Outcome.Correct || res.Outcome.Category == nil || res.Outcome.Category.Name != "A" {
		t.Fatalf("Expected correct outcome, got %+v", res.Outcome)
	}
	if len(res.State.SolvedCategories) != 1 || len(res.State.RemainingWords) != 12 {
		t.Errorf("Unexpected state after match: %+v", res.State)
	}
	if res.State.MistakesRemaining != 4 || res.Hint != "" {
		t.Errorf("A match must not spend a mistake or hint, got %d %q", res.State.MistakesRemaining, res.Hint)
	}
}

func TestSubmitOneAway(t *testing.T) {
	env := newTestEnv(t, nil)
	res := env.submit("A1", "A2", "A3", "B1")
	if !res.Outcome.OneAway || res.Hint != "One away..." {
		t.Errorf("Expected one-away hint, got %+v %q", res.Outcome, res.Hint)
	}
	if res.State.MistakesRemaining != 3 || len(res.State.SelectedWords) != 0 {
		t.Errorf("Unexpected state after miss: %+v", res.State)
	}
}

func TestSubmitIncompleteSelection(t *testing.T) {
	env := newTestEnv(t, nil)
	res := env.submit("A1", "A2")
	if res.Outcome.Applied {
		t.Error("Expected no-op submit with two words selected")
	}
	if len(res.State.SelectedWords) != 2 || res.State.MistakesRemaining != 4 {
		t.Errorf("No-op submit changed state: %+v", res.State)
	}
}

func TestLoseRevealsAndRecords(t *testing.T) {
	env := newTestEnv(t, nil)
	var res submitRes
	for i := 0; i < 4; i++ {
		res = env.submit("A1", "A2", "B1", "B2")
	}
	st := res.State
	if !st.GameOver || st.GameWon || st.Status != "lost" {
		t.Fatalf("Expected lost game, got %+v", st)
	}
	if len(st.Categories) != 4 {
		t.Errorf("Expected categories revealed after game over, got %d", len(st.Categories))
	}

	// Further operations are ignored.
	after := env.submit("C1", "C2", "C3", "C4")
	if after.Outcome.Applied || len(after.State.GuessHistory) != 4 {
		t.Errorf("Expected terminal game to ignore submit, got %+v", after)
	}

	var lb lbRes
	if code := env.call(env.client, http.MethodGet, "/daily/leaderboard", nil, &lb); code != http.StatusOK {
		t.Fatalf("leaderboard: status %d", code)
	}
	if lb.Date != "2024-03-01" || len(lb.Top) != 1 || lb.Top[0].Won || lb.Top[0].Mistakes != 4 {
		t.Errorf("Unexpected leaderboard: %+v", lb)
	}

	var d dailyRes
	env.call(env.client, http.MethodGet, "/daily", nil, &d)
	if !d.Played || d.PuzzleID != "t1" {
		t.Errorf("Expected played daily, got %+v", d)
	}
}

func TestWinRecordsResult(t *testing.T) {
	env := newTestEnv(t, nil)
	var res submitRes
	for _, g := range [][]string{
		{"A1", "A2", "A3", "A4"},
		{"B1", "B2", "B3", "C1"},
		{"B1", "B2", "B3", "B4"},
		{"C1", "C2", "C3", "C4"},
		{"D1", "D2", "D3", "D4"},
	} {
		res = env.submit(g...)
	}
	if !res.State.GameWon || res.State.Status != "won" || res.State.MistakesRemaining != 3 {
		t.Fatalf("Expected won game with 3 mistakes left, got %+v", res.State)
	}

	var lb lbRes
	env.call(env.client, http.MethodGet, "/daily/leaderboard?date=2024-03-01", nil, &lb)
	if len(lb.Top) != 1 || !lb.Top[0].Won || lb.Top[0].Mistakes != 1 || lb.Top[0].Guesses != 5 {
		t.Errorf("Unexpected leaderboard: %+v", lb)
	}
}

func TestShuffleGating(t *testing.T) {
	env := newTestEnv(t, nil)
	env.selectWords("A1", "A2")

	var res stateRes
	env.call(env.client, http.MethodPost, "/game/shuffle", nil, &res)
	if !res.State.IsShuffling || len(res.State.SelectedWords) != 0 {
		t.Fatalf("Expected shuffling with cleared selection, got %+v", res.State)
	}

	// Every request reloads the saved game; the shuffle must survive that.
	if st := env.selectWords("A3"); len(st.SelectedWords) != 0 || !st.IsShuffling {
		t.Errorf("Expected select to be ignored while shuffling, got %v shuffling=%v", st.SelectedWords, st.IsShuffling)
	}
	env.call(env.client, http.MethodGet, "/game", nil, &res)
	if !res.State.IsShuffling {
		t.Error("Expected GET /game to report the pending shuffle")
	}
	var sub submitRes
	env.call(env.client, http.MethodPost, "/game/submit", nil, &sub)
	if sub.Outcome.Applied || !sub.State.IsShuffling {
		t.Errorf("Expected submit to be ignored while shuffling, got %+v", sub.Outcome)
	}

	env.call(env.client, http.MethodPost, "/game/shuffle/complete", nil, &res)
	if res.State.IsShuffling || len(res.State.RemainingWords) != 16 {
		t.Fatalf("Expected completed shuffle, got %+v", res.State)
	}
	// firstSource rotates the board left by one on every shuffle, including
	// the one that dealt it.
	if res.State.RemainingWords[0] != "A3" || res.State.RemainingWords[15] != "A2" {
		t.Errorf("Unexpected shuffle order: %v", res.State.RemainingWords)
	}
}

func TestDeselectAndReset(t *testing.T) {
	env := newTestEnv(t, nil)
	env.selectWords("A1", "A2")

	var res stateRes
	env.call(env.client, http.MethodPost, "/game/deselect", nil, &res)
	if len(res.State.SelectedWords) != 0 {
		t.Errorf("Expected empty selection, got %v", res.State.SelectedWords)
	}

	env.submit("A1", "A2", "B1", "B2")
	env.call(env.client, http.MethodPost, "/game/reset", nil, &res)
	if res.State.MistakesRemaining != 4 || len(res.State.GuessHistory) != 0 || len(res.State.RemainingWords) != 16 {
		t.Errorf("Expected fresh game after reset, got %+v", res.State)
	}
}

func TestShareLink(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.PublicURL = "https://example.test" })
	env.submit("A1", "A2", "A3", "A4")

	var text shareTextRes
	env.call(env.client, http.MethodGet, "/game/share", nil, &text)
	if text.Text != "Connections Puzzle #t1\n🟨🟨🟨🟨" {
		t.Errorf("Unexpected share text: %q", text.Text)
	}

	var res shareRes
	env.call(env.client, http.MethodPost, "/game/share", nil, &res)
	if res.Outcome != "shared" || !strings.HasPrefix(res.URL, "https://example.test/s/") {
		t.Fatalf("Expected shared link, got %+v", res)
	}

	var shared shareTextRes
	path := strings.TrimPrefix(res.URL, "https://example.test")
	if code := env.call(env.newClient(), http.MethodGet, path, nil, &shared); code != http.StatusOK {
		t.Fatalf("Expected stored link, got %d", code)
	}
	if shared.Text != text.Text {
		t.Errorf("Expected %q, got %q", text.Text, shared.Text)
	}

	if code := env.call(env.client, http.MethodGet, "/s/missing", nil, nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown link, got %d", code)
	}
}

func TestShareCopyFallback(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.ShareLinks = false })

	var res shareRes
	env.call(env.client, http.MethodPost, "/game/share", nil, &res)
	if res.Outcome != "copied" || res.Text != "Connections Puzzle #t1" || res.URL != "" {
		t.Fatalf("Expected copy fallback, got %+v", res)
	}
	if res.CopiedUntil == nil || !res.CopiedUntil.Equal(testNow.Add(2*time.Second)) {
		t.Errorf("Expected copied window to end at now+2s, got %v", res.CopiedUntil)
	}
}

func TestAdminSchedule(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	disabled := newTestEnv(t, nil)
	if code := disabled.call(disabled.client, http.MethodPut, "/admin/puzzles/2024-03-01", testPuzzle(), nil); code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without admin hash, got %d", code)
	}

	env := newTestEnv(t, func(c *Config) { c.AdminPasswordHash = string(hash) })
	put := func(password, date string, p puzzle.Puzzle) int {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(p)
		req, _ := http.NewRequest(http.MethodPut, env.ts.URL+"/admin/puzzles/"+date, &buf)
		req.SetBasicAuth("admin", password)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("put: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	pinned := puzzle.Puzzle{Categories: []puzzle.Category{
		{Name: "w", Color: "Yellow", Words: []string{"w1", "w2", "w3", "w4"}},
		{Name: "x", Color: "green", Words: []string{"x1", "x2", "x3", "x4"}},
		{Name: "y", Color: "blue", Words: []string{"y1", "y2", "y3", "y4"}},
		{Name: "z", Color: "purple", Words: []string{"z1", "z2", "z3", "z4"}},
	}}

	if code := put("wrong", "2024-03-01", pinned); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a bad password, got %d", code)
	}
	if code := put("hunter22", "not-a-date", pinned); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad date, got %d", code)
	}
	broken := testPuzzle()
	broken.Categories = broken.Categories[:3]
	if code := put("hunter22", "2024-03-01", broken); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid puzzle, got %d", code)
	}
	if code := put("hunter22", "2024-03-01", pinned); code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", code)
	}

	var res stateRes
	env.call(env.client, http.MethodGet, "/game", nil, &res)
	if res.State.PuzzleID != "daily-2024-03-01" {
		t.Errorf("Expected scheduled puzzle, got %q", res.State.PuzzleID)
	}
	if st := env.selectWords("w1"); len(st.SelectedWords) != 1 || st.SelectedWords[0] != "W1" {
		t.Errorf("Expected normalized scheduled words, got %v", st.SelectedWords)
	}

	// A library puzzle can be scheduled by id.
	if code := put("hunter22", "2024-03-02?from=nope", puzzle.Puzzle{}); code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown library id, got %d", code)
	}
	if code := put("hunter22", "2024-03-02?from=t1", puzzle.Puzzle{}); code != http.StatusNoContent {
		t.Errorf("Expected 204 scheduling from the library, got %d", code)
	}
}

func TestForgetGame(t *testing.T) {
	env := newTestEnv(t, nil)
	env.selectWords("A1")

	if code := env.call(env.client, http.MethodDelete, "/game", nil, nil); code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", code)
	}
	if code := env.call(env.client, http.MethodDelete, "/game", nil, nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 once the game is gone, got %d", code)
	}

	var res stateRes
	env.call(env.client, http.MethodGet, "/game", nil, &res)
	if len(res.State.SelectedWords) != 0 || len(res.State.RemainingWords) != 16 {
		t.Errorf("Expected a fresh game after forgetting, got %+v", res.State)
	}
}

func TestDailyWithoutDatabase(t *testing.T) {
	srv := New(store.NewMemoryStore(), nil, Config{
		Library:    []puzzle.Puzzle{testPuzzle()},
		JWTSecret:  "test-secret",
		CookieName: "connections_session",
		SessionTTL: time.Hour,
		Rand:       firstSource{},
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/daily/leaderboard", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}

	// Games still work from the library alone.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/game", nil))
	var res stateRes
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil || res.State.PuzzleID != "t1" {
		t.Errorf("Expected library game, got %+v err=%v", res.State, err)
	}
}
