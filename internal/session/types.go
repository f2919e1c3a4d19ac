package session

import (
	"fmt"
	"time"
)

// Kind identifies one of the five component slots of a build.
type Kind string

const (
	KindCPU         Kind = "cpu"
	KindRAM         Kind = "ram"
	KindGPU         Kind = "gpu"
	KindStorage     Kind = "storage"
	KindMotherboard Kind = "motherboard"
)

// Kinds returns all component kinds in display order.
func Kinds() []Kind {
	return []Kind{KindCPU, KindRAM, KindGPU, KindStorage, KindMotherboard}
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCPU, KindRAM, KindGPU, KindStorage, KindMotherboard:
		return true
	}
	return false
}

// Label returns the user-facing name of the slot.
func (k Kind) Label() string {
	switch k {
	case KindCPU:
		return "CPU"
	case KindRAM:
		return "RAM"
	case KindGPU:
		return "GPU"
	case KindStorage:
		return "Storage"
	case KindMotherboard:
		return "Motherboard"
	}
	return string(k)
}

// Part is a filled component slot: a name and a whole-dollar price.
type Part struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Build is one virtual computer. A slot is unset when absent from Parts.
type Build struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Parts      map[Kind]Part `json:"parts,omitempty"`
	TotalPrice int           `json:"total_price"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Part returns the slot contents, if set.
func (b *Build) Part(k Kind) (Part, bool) {
	p, ok := b.Parts[k]
	return p, ok
}

// SetPart fills a slot and recomputes the total.
func (b *Build) SetPart(k Kind, name string, price int) {
	if b.Parts == nil {
		b.Parts = make(map[Kind]Part)
	}
	b.Parts[k] = Part{Name: name, Price: price}
	b.RecomputeTotal()
}

// ClearPart empties a slot and recomputes the total.
func (b *Build) ClearPart(k Kind) {
	delete(b.Parts, k)
	b.RecomputeTotal()
}

// RecomputeTotal recalculates the total from the currently-set slots.
// It never accumulates: a stale cached total is always discarded.
func (b *Build) RecomputeTotal() {
	total := 0
	for _, k := range Kinds() {
		if p, ok := b.Parts[k]; ok {
			total += p.Price
		}
	}
	b.TotalPrice = total
}

// Complete reports whether all five slots are set.
func (b *Build) Complete() bool {
	for _, k := range Kinds() {
		if _, ok := b.Parts[k]; !ok {
			return false
		}
	}
	return true
}

// Progress returns the number of filled slots out of five.
func (b *Build) Progress() (filled, total int) {
	for _, k := range Kinds() {
		if _, ok := b.Parts[k]; ok {
			filled++
		}
	}
	return filled, len(Kinds())
}

// PendingState says how the next free-text message should be interpreted.
type PendingState string

const (
	PendingNone        PendingState = ""
	PendingBuildName   PendingState = "build_name"
	PendingComponent   PendingState = "component"
	PendingReplacement PendingState = "replacement"
	PendingManualName  PendingState = "manual_name"
	PendingManualPrice PendingState = "manual_price"
)

// Pending is the per-session awaiting-input tag with its associated data.
// At most one input is pending per user; there is no queueing.
// It is transient: never persisted, reset to none on load.
type Pending struct {
	State      PendingState
	Slot       Kind   // which slot, for component/replacement/manual states
	ManualName string // scratch name captured while a manual price is awaited
}

// Session is one user's conversation state: their builds, the current build
// selection, and the pending-input tag.
type Session struct {
	UserID       int64
	CurrentBuild int // 0 = unset; defaults to the first build
	Builds       []*Build
	Pending      Pending
}

// New creates an empty session for a user.
func New(userID int64) *Session {
	return &Session{UserID: userID}
}

// NewBuild creates a build, appends it and makes it current.
// IDs are assigned as list length + 1 and never renumbered.
func (s *Session) NewBuild(name string) *Build {
	id := len(s.Builds) + 1
	if name == "" {
		name = fmt.Sprintf("My computer #%d", id)
	}
	b := &Build{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
	}
	s.Builds = append(s.Builds, b)
	s.CurrentBuild = id
	return b
}

// Current returns the currently selected build. When nothing is selected and
// the list is non-empty, the first build becomes current.
func (s *Session) Current() *Build {
	if s.CurrentBuild == 0 && len(s.Builds) > 0 {
		s.CurrentBuild = s.Builds[0].ID
		return s.Builds[0]
	}
	for _, b := range s.Builds {
		if b.ID == s.CurrentBuild {
			return b
		}
	}
	return nil
}

// Build returns the build with the given id, or nil.
func (s *Session) Build(id int) *Build {
	for _, b := range s.Builds {
		if b.ID == id {
			return b
		}
	}
	return nil
}
