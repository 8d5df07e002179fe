// Package bodies holds the static solar-system dataset: scientific figures,
// model assets and info-panel layout for each of the nine bodies.
package bodies

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/panel"
)

//go:embed bodies.json
var raw []byte

// ErrUnknownBody is returned by Get for ids not in the dataset.
var ErrUnknownBody = errors.New("unknown body")

// Model names the texture and AR marker pattern of a body.
type Model struct {
	Texture string `json:"texture"`
	Marker  string `json:"marker"`
}

// Entry is one dataset record.
type Entry struct {
	ID         string       `json:"id"`
	Scientific orbit.Body   `json:"scientific"`
	Model      Model        `json:"model"`
	Textbox    panel.Config `json:"textbox"`
}

// Body returns the motion-model view of the entry.
func (e Entry) Body() orbit.Body { return e.Scientific }

// Ringed reports whether the body carries a ring. Only Saturn does.
func (e Entry) Ringed() bool { return e.ID == Saturn }

// Ids of bodies with special handling.
const (
	Sun    = "sun"
	Earth  = "earth"
	Saturn = "saturn"
)

var (
	loadOnce sync.Once
	entries  []Entry
	byID     map[string]int
	loadErr  error
)

func load() {
	if err := json.Unmarshal(raw, &entries); err != nil {
		loadErr = fmt.Errorf("decoding body dataset: %w", err)
		return
	}
	byID = make(map[string]int, len(entries))
	for i, e := range entries {
		byID[e.ID] = i
	}
}

// All returns the dataset in orbital order, Sun first. The slice is a copy.
func All() []Entry {
	loadOnce.Do(load)
	if loadErr != nil {
		panic(loadErr)
	}
	return append([]Entry(nil), entries...)
}

// Get returns the entry for id.
func Get(id string) (Entry, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Entry{}, loadErr
	}
	i, ok := byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownBody, id)
	}
	return entries[i], nil
}

// IDs returns body ids in dataset order.
func IDs() []string {
	all := All()
	ids := make([]string, len(all))
	for i, e := range all {
		ids[i] = e.ID
	}
	return ids
}

// Raw returns the embedded JSON document.
func Raw() []byte { return raw }
