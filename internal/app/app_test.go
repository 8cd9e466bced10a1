package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/database"
	"github.com/akyairhashvil/roadmap/internal/exchange"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/persistence"
	"github.com/akyairhashvil/roadmap/internal/store"
	"github.com/akyairhashvil/roadmap/internal/testutil"
	"github.com/akyairhashvil/roadmap/internal/util"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T, ctx context.Context) *database.Database {
	t.Helper()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "roadmap.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newApp(t *testing.T, ctx context.Context, db *database.Database) *App {
	t.Helper()
	svc := persistence.New(db, persistence.WithLogger(util.Discard()))
	a := New(ctx, store.New(), svc, util.Discard(), WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(a.Close)
	return a
}

func revision(t *testing.T, ctx context.Context, db *database.Database) int64 {
	t.Helper()
	rev, err := db.Revision(ctx, persistence.DefaultKey)
	if err != nil {
		t.Fatalf("Revision failed: %v", err)
	}
	return rev
}

func externalDocument(progress any) map[string]any {
	return map[string]any{
		"scenarios": []any{
			map[string]any{
				"name": "Imported",
				"tasks": []any{
					map[string]any{
						"name":         "Launch",
						"swimlane":     "Growth",
						"startQuarter": "Q3 2025",
						"endQuarter":   "Q4 2025",
						"progress":     progress,
						"color":        "indigo",
					},
				},
			},
		},
		"activeScenario": "Imported",
		"swimlanes":      []any{"Growth"},
		"exportDate":     "2025-03-01T12:00:00.000Z",
	}
}

func TestNewSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	a := newApp(t, ctx, db)

	snap := a.Store().Snapshot()
	tl, ok := snap.ActiveTimeline()
	if !ok || tl.Name != config.DefaultTimelineName {
		t.Fatalf("expected default timeline, got %+v", tl)
	}
	if _, ok := snap.TeamByName(config.DefaultTeamName); !ok {
		t.Fatalf("expected default team")
	}
	if a.Store().CanUndo() {
		t.Fatalf("seeding must not be undoable")
	}
	if rev := revision(t, ctx, db); rev != 1 {
		t.Fatalf("expected seeded state to be saved, revision %d", rev)
	}
}

func TestChangesAreSavedAndRestored(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	a := newApp(t, ctx, db)

	st := a.Store()
	team, err := st.CreateTeam("Platform")
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}
	tlID := st.Snapshot().ActiveTimelineID()
	task, err := st.CreateTask(tlID, team.ID, "Define Goals", 25, testutil.MustQuarter("Q1 2025"), testutil.MustQuarter("Q2 2025"), "")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	patch := testutil.NewPatch().Progress(80).Spanning("Q2 2025", "Q3 2025").Color(models.ColorIndigo).Build()
	if _, err := st.UpdateTask(task.ID, patch); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if rev := revision(t, ctx, db); rev != 4 {
		t.Fatalf("expected revision 4, got %d", rev)
	}
	a.Close()

	restarted := newApp(t, ctx, db)
	snap := restarted.Store().Snapshot()
	if _, _, tasks := snap.Counts(); tasks != 1 {
		t.Fatalf("expected restored task, got %d", tasks)
	}
	if _, ok := snap.TeamByName("Platform"); !ok {
		t.Fatalf("expected restored team")
	}
	got := snap.TimelineTasks(snap.ActiveTimelineID())
	if len(got) != 1 || got[0].Progress != 80 || got[0].Color != models.ColorIndigo || got[0].Start.String() != "Q2 2025" {
		t.Fatalf("expected patched task restored, got %+v", got)
	}
	if rev := revision(t, ctx, db); rev != 4 {
		t.Fatalf("restoring must not write, revision %d", rev)
	}
}

func TestUnreadableStoredDocumentFallsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if _, err := db.PutDocument(ctx, persistence.DefaultKey, []byte("not a roadmap")); err != nil {
		t.Fatalf("PutDocument failed: %v", err)
	}

	a := newApp(t, ctx, db)
	if _, ok := a.Store().Snapshot().TimelineByName(config.DefaultTimelineName); !ok {
		t.Fatalf("expected defaults after unreadable document")
	}
	if rev := revision(t, ctx, db); rev != 1 {
		t.Fatalf("unreadable revision must not be overwritten, revision %d", rev)
	}
	stored, err := db.GetDocument(ctx, persistence.DefaultKey)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if string(stored.Body) != "not a roadmap" {
		t.Fatalf("stored document changed: %q", stored.Body)
	}
}

func TestRejectedStoredDocumentIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	body := []byte(`{"scenarios":[{"name":"A","tasks":[]},{"name":"a","tasks":[]}],
		"activeScenario":"A","swimlanes":[],"exportDate":"2025-03-01T12:00:00.000Z"}`)
	if _, err := db.PutDocument(ctx, persistence.DefaultKey, body); err != nil {
		t.Fatalf("PutDocument failed: %v", err)
	}

	a := newApp(t, ctx, db)
	if _, ok := a.Store().Snapshot().TimelineByName(config.DefaultTimelineName); !ok {
		t.Fatalf("expected defaults after rejected document")
	}
	if rev := revision(t, ctx, db); rev != 1 {
		t.Fatalf("rejected revision must not be overwritten, revision %d", rev)
	}
}

func TestSameTaskNameInTwoTimelinesSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	a := newApp(t, ctx, db)

	st := a.Store()
	team, ok := st.Snapshot().TeamByName(config.DefaultTeamName)
	if !ok {
		t.Fatalf("expected default team")
	}
	first := st.Snapshot().ActiveTimelineID()
	second, err := st.CreateTimeline("Plan B")
	if err != nil {
		t.Fatalf("CreateTimeline failed: %v", err)
	}
	for _, tlID := range []string{first, second.ID} {
		if _, err := st.CreateTask(tlID, team.ID, "Launch", 10, testutil.MustQuarter("Q1 2025"), testutil.MustQuarter("Q2 2025"), ""); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}
	saved := revision(t, ctx, db)
	a.Close()

	restarted := newApp(t, ctx, db)
	snap := restarted.Store().Snapshot()
	timelines, _, tasks := snap.Counts()
	if timelines != 2 || tasks != 2 {
		t.Fatalf("expected 2 timelines and 2 tasks after restart, got %d and %d", timelines, tasks)
	}
	for _, name := range []string{config.DefaultTimelineName, "Plan B"} {
		tl, ok := snap.TimelineByName(name)
		if !ok {
			t.Fatalf("expected timeline %q", name)
		}
		got := snap.TimelineTasks(tl.ID)
		if len(got) != 1 || got[0].Name != "Launch" {
			t.Fatalf("expected Launch in %q, got %+v", name, got)
		}
	}
	if rev := revision(t, ctx, db); rev != saved {
		t.Fatalf("restart must not write, revision %d want %d", rev, saved)
	}
}

func TestApplyExternalAllowsTaskNameInEachScenario(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	a := newApp(t, ctx, db)

	doc := externalDocument(40)
	scenarios := doc["scenarios"].([]any)
	second := map[string]any{
		"name":  "Plan B",
		"tasks": scenarios[0].(map[string]any)["tasks"],
	}
	doc["scenarios"] = append(scenarios, second)

	if err := a.ApplyExternal(doc); err != nil {
		t.Fatalf("ApplyExternal failed: %v", err)
	}
	if _, _, tasks := a.Store().Snapshot().Counts(); tasks != 2 {
		t.Fatalf("expected 2 tasks, got %d", tasks)
	}
}

func TestApplyExternalRejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	a := newApp(t, ctx, db)
	before := a.Store().Snapshot()

	err := a.ApplyExternal(externalDocument(150))
	if !errors.Is(err, apperr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if _, ok := a.Store().Snapshot().TimelineByName("Imported"); ok {
		t.Fatalf("invalid document must not be applied")
	}
	if a.Store().Snapshot().ActiveTimelineID() != before.ActiveTimelineID() {
		t.Fatalf("state changed after rejected document")
	}
	if rev := revision(t, ctx, db); rev != 1 {
		t.Fatalf("expected no write, revision %d", rev)
	}
}

func TestApplyExternalIsNotWrittenBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	a := newApp(t, ctx, db)

	if err := a.ApplyExternal(externalDocument(40)); err != nil {
		t.Fatalf("ApplyExternal failed: %v", err)
	}
	tl, ok := a.Store().Snapshot().ActiveTimeline()
	if !ok || tl.Name != "Imported" {
		t.Fatalf("expected imported timeline active, got %+v", tl)
	}
	if rev := revision(t, ctx, db); rev != 1 {
		t.Fatalf("external state must not be saved back, revision %d", rev)
	}

	// Local edits after the import are saved again.
	if _, err := a.Store().CreateTeam("Ops"); err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}
	if rev := revision(t, ctx, db); rev != 2 {
		t.Fatalf("expected local edit to be saved, revision %d", rev)
	}
}

func TestRunAppliesOtherWriters(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	a := newApp(t, ctx, db)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Run(runCtx, 10*time.Millisecond)
	}()
	defer func() {
		cancel()
		<-done
	}()

	other := persistence.New(db, persistence.WithLogger(util.Discard()))
	doc, err := exchange.ParseDocument(externalDocument(70))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	if !other.Save(ctx, doc) {
		t.Fatalf("Save failed")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := a.Store().Snapshot().TimelineByName("Imported"); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("external change was not applied")
}

func TestDefaultSnapshotIsConsistent(t *testing.T) {
	snap := DefaultSnapshot()
	if err := snap.Check(); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if timelines, teams, tasks := snap.Counts(); timelines != 1 || teams != 1 || tasks != 0 {
		t.Fatalf("unexpected counts %d/%d/%d", timelines, teams, tasks)
	}
}
