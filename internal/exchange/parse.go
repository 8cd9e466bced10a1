package exchange

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/validation"
)

// ParseDocument validates a generic decoded tree, as produced by
// encoding/json or yaml.v3 unmarshalling into an any. Names come back
// normalized. Structural problems fail with apperr.ErrFormat, a start after
// its end with apperr.ErrRange, and any repeated task, scenario or swimlane
// name with apperr.ErrDuplicateName. Task names must be unique across the
// whole document.
func ParseDocument(raw any) (Document, error) {
	return parseDocument(raw, true)
}

// ParseStoredDocument validates a document this application saved itself.
// It applies the same rules as ParseDocument except that task names only
// need to be unique within their scenario, as they are when editing.
func ParseStoredDocument(raw any) (Document, error) {
	return parseDocument(raw, false)
}

func parseDocument(raw any, globalTaskNames bool) (Document, error) {
	root, ok := asRecord(raw)
	if !ok {
		return Document{}, formatErr("document", "must be an object")
	}

	scenarioList, ok := root["scenarios"].([]any)
	if !ok {
		return Document{}, formatErr("scenarios", "must be an array")
	}
	if len(scenarioList) == 0 {
		return Document{}, formatErr("scenarios", "must not be empty")
	}
	doc := Document{Scenarios: make([]Scenario, 0, len(scenarioList))}
	for i, item := range scenarioList {
		sc, err := parseScenario(item, fmt.Sprintf("scenarios[%d]", i))
		if err != nil {
			return Document{}, err
		}
		doc.Scenarios = append(doc.Scenarios, sc)
	}

	laneList, ok := root["swimlanes"].([]any)
	if !ok {
		return Document{}, formatErr("swimlanes", "must be an array")
	}
	doc.Swimlanes = make([]string, 0, len(laneList))
	for i, item := range laneList {
		name, err := nonEmptyString(item, fmt.Sprintf("swimlanes[%d]", i))
		if err != nil {
			return Document{}, err
		}
		doc.Swimlanes = append(doc.Swimlanes, name)
	}

	active, err := nonEmptyString(root["activeScenario"], "activeScenario")
	if err != nil {
		return Document{}, err
	}
	doc.ActiveScenario = active
	exportDate, err := nonEmptyString(root["exportDate"], "exportDate")
	if err != nil {
		return Document{}, err
	}
	doc.ExportDate = exportDate

	if err := checkDuplicates(doc, globalTaskNames); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func parseScenario(item any, path string) (Scenario, error) {
	rec, ok := asRecord(item)
	if !ok {
		return Scenario{}, formatErr(path, "must be an object")
	}
	name, err := nonEmptyString(rec["name"], path+".name")
	if err != nil {
		return Scenario{}, err
	}
	taskList, ok := rec["tasks"].([]any)
	if !ok {
		return Scenario{}, formatErr(path+".tasks", "must be an array")
	}
	sc := Scenario{Name: name, Tasks: make([]TaskEntry, 0, len(taskList))}
	for i, t := range taskList {
		entry, err := parseTask(t, fmt.Sprintf("%s.tasks[%d]", path, i))
		if err != nil {
			return Scenario{}, err
		}
		sc.Tasks = append(sc.Tasks, entry)
	}
	return sc, nil
}

func parseTask(item any, path string) (TaskEntry, error) {
	rec, ok := asRecord(item)
	if !ok {
		return TaskEntry{}, formatErr(path, "must be an object")
	}
	var entry TaskEntry
	var err error
	if entry.Name, err = nonEmptyString(rec["name"], path+".name"); err != nil {
		return TaskEntry{}, err
	}
	if entry.Swimlane, err = nonEmptyString(rec["swimlane"], path+".swimlane"); err != nil {
		return TaskEntry{}, err
	}
	if entry.StartQuarter, err = quarterLabel(rec["startQuarter"], path+".startQuarter"); err != nil {
		return TaskEntry{}, err
	}
	if entry.EndQuarter, err = quarterLabel(rec["endQuarter"], path+".endQuarter"); err != nil {
		return TaskEntry{}, err
	}
	if entry.Progress, err = progressValue(rec["progress"], path+".progress"); err != nil {
		return TaskEntry{}, err
	}
	color, ok := rec["color"].(string)
	if !ok || !models.Color(color).IsValid() {
		return TaskEntry{}, formatErr(path+".color", "must be blue or indigo")
	}
	entry.Color = models.Color(color)
	if err := validation.EnsureQuarterOrder(entry.StartQuarter, entry.EndQuarter); err != nil {
		return TaskEntry{}, apperr.Rangef(path, "start %s is after end %s", entry.StartQuarter, entry.EndQuarter)
	}
	return entry, nil
}

func checkDuplicates(doc Document, globalTaskNames bool) error {
	scenarios := make([]string, 0, len(doc.Scenarios))
	var tasks []string
	for _, sc := range doc.Scenarios {
		if err := validation.EnsureUniqueName(sc.Name, scenarios, "scenario name"); err != nil {
			return err
		}
		scenarios = append(scenarios, sc.Name)
		if !globalTaskNames {
			tasks = tasks[:0]
		}
		for _, task := range sc.Tasks {
			if err := validation.EnsureUniqueName(task.Name, tasks, "task name"); err != nil {
				return err
			}
			tasks = append(tasks, task.Name)
		}
	}
	lanes := make([]string, 0, len(doc.Swimlanes))
	for _, lane := range doc.Swimlanes {
		if err := validation.EnsureUniqueName(lane, lanes, "swimlane name"); err != nil {
			return err
		}
		lanes = append(lanes, lane)
	}
	return nil
}

func formatErr(path, msg string) error {
	return &apperr.Error{Kind: apperr.ErrFormat, Field: path, Msg: msg}
}

// asRecord accepts string-keyed maps from either decoder.
func asRecord(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	}
	return nil, false
}

func nonEmptyString(v any, path string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", formatErr(path, "must be a string")
	}
	s = validation.NormalizeName(s)
	if s == "" {
		return "", formatErr(path, "must not be empty")
	}
	return s, nil
}

func quarterLabel(v any, path string) (calendar.Quarter, error) {
	s, ok := v.(string)
	if !ok {
		return calendar.Quarter{}, formatErr(path, "must be a quarter label")
	}
	q, err := calendar.ParseLabel(s)
	if err != nil {
		return calendar.Quarter{}, formatErr(path, fmt.Sprintf("%q is not a quarter label", s))
	}
	return q, nil
}

func progressValue(v any, path string) (int, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, formatErr(path, "must be a number")
		}
		f = parsed
	default:
		return 0, formatErr(path, "must be a number")
	}
	if f != math.Trunc(f) || f < validation.MinProgress || f > validation.MaxProgress {
		return 0, formatErr(path, fmt.Sprintf("must be an integer between %d and %d, got %v", validation.MinProgress, validation.MaxProgress, v))
	}
	return int(f), nil
}
