// Package nav implements the breadcrumb trail the dashboard drives its
// current view from. The trail is a pure navigation cursor over the item
// tree: it owns no items, is never persisted, and is rebuilt from scratch on
// a full reload.
package nav

import "github.com/dhyey2075/droply/internal/domain/models"

// Crumb is one visited folder on the trail.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Trail is an ordered stack of visited folders. The bottom entry is always
// the root sentinel; the top entry decides which items are currently
// visible.
type Trail struct {
	crumbs []Crumb
}

// NewTrail returns a trail positioned at the root.
func NewTrail() *Trail {
	return &Trail{crumbs: []Crumb{{ID: models.RootFolderID, Name: "Root"}}}
}

// Enter pushes a folder onto the trail.
func (t *Trail) Enter(folder models.Item) {
	t.crumbs = append(t.crumbs, Crumb{ID: folder.ID, Name: folder.Name})
}

// Back pops the top folder. At the root it is a no-op and reports false.
func (t *Trail) Back() bool {
	if len(t.crumbs) <= 1 {
		return false
	}
	t.crumbs = t.crumbs[:len(t.crumbs)-1]
	return true
}

// JumpTo truncates the trail so the crumb at index becomes the top, the way
// clicking a breadcrumb jumps back up the path. Out-of-range indices are
// ignored.
func (t *Trail) JumpTo(index int) {
	if index < 0 || index >= len(t.crumbs) {
		return
	}
	t.crumbs = t.crumbs[:index+1]
}

// ApplyRename updates the displayed name wherever the renamed folder sits on
// the trail. Length and ids are untouched, so breadcrumbs stay correct after
// a rename without a refetch.
func (t *Trail) ApplyRename(id, newName string) {
	for i := range t.crumbs {
		if t.crumbs[i].ID == id {
			t.crumbs[i].Name = newName
		}
	}
}

// Current returns the folder id the view is filtered to.
func (t *Trail) Current() string {
	return t.crumbs[len(t.crumbs)-1].ID
}

// Crumbs returns a copy of the trail for rendering.
func (t *Trail) Crumbs() []Crumb {
	out := make([]Crumb, len(t.crumbs))
	copy(out, t.crumbs)
	return out
}

// Depth returns the number of crumbs on the trail.
func (t *Trail) Depth() int {
	return len(t.crumbs)
}

// Filter returns the items visible at the current position: exactly those
// whose parent is the top-of-trail folder. A folder deleted out from under
// the trail (say, from another tab) simply yields an empty view on the next
// refresh; backing out is the recovery.
func (t *Trail) Filter(items []models.Item) []models.Item {
	current := t.Current()
	var visible []models.Item
	for _, item := range items {
		if item.ParentID == current {
			visible = append(visible, item)
		}
	}
	return visible
}
