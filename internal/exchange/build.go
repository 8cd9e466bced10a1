package exchange

import (
	"fmt"

	"github.com/akyairhashvil/roadmap/internal/store"
	"github.com/akyairhashvil/roadmap/internal/validation"
)

// BuildState turns a parsed document into a fresh snapshot by replaying
// store commands, so every invariant the commands enforce holds for the
// result. ids allocates the new identifiers; nil means uuids.
//
// A task whose swimlane is not declared goes to the first declared team.
// When the document declares no swimlanes at all, a team is created for
// each distinct swimlane the tasks name.
func BuildState(doc Document, ids func() string) (store.Snapshot, error) {
	if ids == nil {
		ids = func() string { return "" }
	}
	snap := store.Empty()
	apply := func(cmd store.Command) error {
		next, err := snap.Apply(cmd)
		if err != nil {
			return err
		}
		snap = next
		return nil
	}

	for _, lane := range doc.Swimlanes {
		if err := apply(store.CreateTeam{ID: ids(), Name: lane}); err != nil {
			return store.Snapshot{}, fmt.Errorf("swimlane %q: %w", lane, err)
		}
	}
	var fallbackTeam string
	if teams := snap.Teams(); len(teams) > 0 {
		fallbackTeam = teams[0].ID
	}

	for _, sc := range doc.Scenarios {
		timelineID := ids()
		if err := apply(store.CreateTimeline{ID: timelineID, Name: sc.Name}); err != nil {
			return store.Snapshot{}, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		if timelineID == "" {
			timelineID = snap.ActiveTimelineID()
		}
		for _, entry := range sc.Tasks {
			teamID, err := resolveTeam(&snap, apply, ids, entry.Swimlane, fallbackTeam)
			if err != nil {
				return store.Snapshot{}, err
			}
			if err := apply(store.CreateTask{
				ID:         ids(),
				TimelineID: timelineID,
				TeamID:     teamID,
				Name:       entry.Name,
				Progress:   entry.Progress,
				Start:      entry.StartQuarter,
				End:        entry.EndQuarter,
				Color:      entry.Color,
			}); err != nil {
				return store.Snapshot{}, fmt.Errorf("scenario %q task %q: %w", sc.Name, entry.Name, err)
			}
		}
	}

	timelines := snap.Timelines()
	if len(timelines) == 0 {
		return store.Snapshot{}, formatErr("scenarios", "must not be empty")
	}
	active := timelines[0].ID
	if tl, ok := snap.TimelineByName(doc.ActiveScenario); ok {
		active = tl.ID
	}
	if err := apply(store.SetActiveTimeline{ID: active}); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}

func resolveTeam(snap *store.Snapshot, apply func(store.Command) error, ids func() string, swimlane, fallback string) (string, error) {
	if team, ok := snap.TeamByName(swimlane); ok {
		return team.ID, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	if err := apply(store.CreateTeam{ID: ids(), Name: swimlane}); err != nil {
		return "", fmt.Errorf("swimlane %q: %w", swimlane, err)
	}
	team, _ := snap.TeamByName(validation.NormalizeName(swimlane))
	return team.ID, nil
}

// Import validates raw and, only if the whole document is acceptable,
// replaces the store's state with it.
func Import(st *store.Store, raw any) (store.Snapshot, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return store.Snapshot{}, err
	}
	return replace(st, doc)
}

// ImportStored is Import for documents written by this application, such as
// saved revisions and changes from other running instances. Task names are
// checked per scenario.
func ImportStored(st *store.Store, raw any) (store.Snapshot, error) {
	doc, err := ParseStoredDocument(raw)
	if err != nil {
		return store.Snapshot{}, err
	}
	return replace(st, doc)
}

func replace(st *store.Store, doc Document) (store.Snapshot, error) {
	snap, err := BuildState(doc, nil)
	if err != nil {
		return store.Snapshot{}, err
	}
	st.ReplaceState(snap)
	return snap, nil
}
