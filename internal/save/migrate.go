package save

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// migration upgrades a raw document from version from to from+1. Steps only
// add fields; values already present are never overwritten.
type migration struct {
	from  int
	apply func(raw map[string]any)
}

var migrations = []migration{
	{from: 1, apply: func(raw map[string]any) {
		setDefault(raw, "tutorial_completed", false)
		setDefault(raw, "preferences", map[string]any{})
	}},
	{from: 2, apply: func(raw map[string]any) {
		setDefault(raw, "analytics", map[string]any{})
		setDefault(raw, "profile_id", "")
		setDefault(raw, "current_level", json.Number("0"))
	}},
}

var requiredFields = []string{"player_name", "experience", "sanity"}

// migrate upgrades raw in place to CurrentVersion and returns the version
// the document was written with.
func migrate(raw map[string]any) (int, error) {
	version, err := documentVersion(raw["version"])
	if err != nil {
		return 0, err
	}
	for _, field := range requiredFields {
		if v, ok := raw[field]; !ok || v == nil {
			return 0, fmt.Errorf("%w: missing %s", ErrCorrupt, field)
		}
	}
	original := version
	for _, step := range migrations {
		if step.from < version {
			continue
		}
		step.apply(raw)
		version = step.from + 1
	}
	raw["version"] = json.Number(strconv.Itoa(version))
	return original, nil
}

// documentVersion accepts an absent version (treated as 1), an integer, or a
// string holding an integer.
func documentVersion(v any) (int, error) {
	var text string
	switch val := v.(type) {
	case nil:
		return 1, nil
	case json.Number:
		text = val.String()
	case string:
		text = strings.TrimSpace(val)
	default:
		return 0, fmt.Errorf("%w: version has type %T", ErrCorrupt, v)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: version %q is not an integer", ErrCorrupt, text)
	}
	if n < 1 || n > CurrentVersion {
		return 0, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, n)
	}
	return n, nil
}

func setDefault(raw map[string]any, key string, value any) {
	if v, ok := raw[key]; ok && v != nil {
		return
	}
	raw[key] = value
}
