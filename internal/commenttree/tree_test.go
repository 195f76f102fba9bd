package commenttree

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sakif/problemspark/internal/model"
)

var base = time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)

func comment(id, parent string, minutes int) model.Comment {
	c := model.Comment{
		ID:        id,
		ProblemID: "p1",
		Content:   "comment " + id,
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
	}
	if parent != "" {
		c.ParentID = &parent
	}
	return c
}

// shape reduces a forest to IDs so failures print a readable diff.
type shape struct {
	ID      string
	Replies []shape
}

func shapeOf(nodes []Node) []shape {
	out := make([]shape, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, shape{ID: n.ID, Replies: shapeOf(n.Replies)})
	}
	return out
}

func TestBuild_Empty(t *testing.T) {
	got := Build(nil)
	if got == nil {
		t.Fatal("Build(nil) returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("Build(nil) returned %d nodes, want 0", len(got))
	}
}

func TestBuild_ThreeLevelChain(t *testing.T) {
	got := Build([]model.Comment{
		comment("root", "", 0),
		comment("reply", "root", 1),
		comment("reply-to-reply", "reply", 2),
	})

	want := []shape{
		{ID: "root", Replies: []shape{
			{ID: "reply", Replies: []shape{
				{ID: "reply-to-reply", Replies: []shape{}},
			}},
		}},
	}
	if diff := cmp.Diff(want, shapeOf(got)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	if d := Depth(got); d != 3 {
		t.Errorf("Depth() = %d, want 3", d)
	}
}

func TestBuild_TopLevelNewestFirst(t *testing.T) {
	got := Build([]model.Comment{
		comment("t1", "", 1),
		comment("t3", "", 3),
		comment("t2", "", 2),
	})

	want := []shape{{ID: "t3", Replies: []shape{}}, {ID: "t2", Replies: []shape{}}, {ID: "t1", Replies: []shape{}}}
	if diff := cmp.Diff(want, shapeOf(got)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_RepliesKeepInputOrder(t *testing.T) {
	// Replies are supplied newest-first here; that order must survive.
	got := Build([]model.Comment{
		comment("root", "", 0),
		comment("late", "root", 30),
		comment("early", "root", 5),
		comment("middle", "root", 10),
	})

	want := []shape{{ID: "root", Replies: []shape{
		{ID: "late", Replies: []shape{}},
		{ID: "early", Replies: []shape{}},
		{ID: "middle", Replies: []shape{}},
	}}}
	if diff := cmp.Diff(want, shapeOf(got)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ReplyBeforeParentInInput(t *testing.T) {
	got := Build([]model.Comment{
		comment("child", "root", 1),
		comment("root", "", 0),
	})

	want := []shape{{ID: "root", Replies: []shape{{ID: "child", Replies: []shape{}}}}}
	if diff := cmp.Diff(want, shapeOf(got)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_DropsOrphans(t *testing.T) {
	got := Build([]model.Comment{
		comment("root", "", 0),
		comment("orphan", "missing", 1),
		comment("orphan-child", "orphan", 2),
	})

	want := []shape{{ID: "root", Replies: []shape{}}}
	if diff := cmp.Diff(want, shapeOf(got)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	if n := Count(got); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestBuild_KeepsCommentFields(t *testing.T) {
	c := comment("root", "", 0)
	c.AuthorName = "alice"

	got := Build([]model.Comment{c})
	if diff := cmp.Diff(c, got[0].Comment); diff != "" {
		t.Errorf("node comment mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := []model.Comment{comment("a", "", 1), comment("b", "", 2), comment("c", "a", 3)}
	before := append([]model.Comment(nil), in...)

	Build(in)

	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input was mutated (-before +after):\n%s", diff)
	}
}

func TestCountAndDepth(t *testing.T) {
	nodes := Build([]model.Comment{
		comment("a", "", 0),
		comment("b", "", 1),
		comment("a1", "a", 2),
		comment("a2", "a", 3),
		comment("a1x", "a1", 4),
	})
	if n := Count(nodes); n != 5 {
		t.Errorf("Count() = %d, want 5", n)
	}
	if d := Depth(nodes); d != 3 {
		t.Errorf("Depth() = %d, want 3", d)
	}
	if d := Depth(nil); d != 0 {
		t.Errorf("Depth(nil) = %d, want 0", d)
	}
}
