package nav

import (
	"testing"

	"github.com/dhyey2075/droply/internal/domain/models"
)

func folder(id, name string) models.Item {
	return models.Item{ID: id, Name: name, IsFolder: true}
}

func TestTrailStartsAtRoot(t *testing.T) {
	trail := NewTrail()

	if got := trail.Current(); got != models.RootFolderID {
		t.Errorf("Current() = %s, want root sentinel", got)
	}
	if trail.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", trail.Depth())
	}
}

func TestTrailEnterAndBack(t *testing.T) {
	trail := NewTrail()
	trail.Enter(folder("a", "A"))
	trail.Enter(folder("b", "B"))

	if got := trail.Current(); got != "b" {
		t.Errorf("Current() = %s, want b", got)
	}

	if !trail.Back() {
		t.Fatal("Back() = false, want true")
	}
	if got := trail.Current(); got != "a" {
		t.Errorf("Current() after Back() = %s, want a", got)
	}

	trail.Back()
	if trail.Back() {
		t.Error("Back() at root = true, want false")
	}
	if got := trail.Current(); got != models.RootFolderID {
		t.Errorf("Current() = %s, want root sentinel", got)
	}
}

func TestTrailJumpTo(t *testing.T) {
	trail := NewTrail()
	trail.Enter(folder("a", "A"))
	trail.Enter(folder("b", "B"))
	trail.Enter(folder("c", "C"))

	trail.JumpTo(1)
	if got := trail.Current(); got != "a" {
		t.Errorf("Current() after JumpTo(1) = %s, want a", got)
	}
	if trail.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", trail.Depth())
	}

	// Out-of-range jumps change nothing.
	trail.JumpTo(5)
	trail.JumpTo(-1)
	if got := trail.Current(); got != "a" {
		t.Errorf("Current() after bad jumps = %s, want a", got)
	}
}

func TestTrailApplyRename(t *testing.T) {
	trail := NewTrail()
	trail.Enter(folder("a", "Old"))
	trail.Enter(folder("b", "B"))

	trail.ApplyRename("a", "New")

	crumbs := trail.Crumbs()
	if crumbs[1].Name != "New" {
		t.Errorf("crumb name = %q, want %q", crumbs[1].Name, "New")
	}
	if trail.Depth() != 3 || trail.Current() != "b" {
		t.Error("rename changed trail position")
	}
}

func TestTrailCrumbsIsACopy(t *testing.T) {
	trail := NewTrail()
	trail.Enter(folder("a", "A"))

	crumbs := trail.Crumbs()
	crumbs[0].Name = "tampered"

	if trail.Crumbs()[0].Name == "tampered" {
		t.Error("Crumbs() exposes internal state")
	}
}

func TestTrailFilter(t *testing.T) {
	items := []models.Item{
		{ID: "a", ParentID: models.RootFolderID, IsFolder: true},
		{ID: "f1", ParentID: models.RootFolderID},
		{ID: "f2", ParentID: "a"},
		{ID: "f3", ParentID: "a"},
	}

	trail := NewTrail()
	visible := trail.Filter(items)
	if len(visible) != 2 {
		t.Fatalf("visible at root = %d items, want 2", len(visible))
	}

	trail.Enter(folder("a", "A"))
	visible = trail.Filter(items)
	if len(visible) != 2 || visible[0].ID != "f2" || visible[1].ID != "f3" {
		t.Errorf("visible in a = %+v, want f2 and f3", visible)
	}

	// A folder deleted elsewhere yields an empty view, not an error.
	trail.Enter(folder("gone", "Gone"))
	if got := trail.Filter(items); len(got) != 0 {
		t.Errorf("visible in deleted folder = %+v, want none", got)
	}
}
