package domain

import (
	"fmt"
	"reflect"
	"sort"
)

// TreeDiff describes the semantic differences between two trees: page set,
// button sets per page, the navigation graph and non-dangling actions.
// It is the oracle for round-trip fidelity; byte-level details are ignored.
type TreeDiff struct {
	AddedPages   []string `json:"added_pages,omitempty"`
	RemovedPages []string `json:"removed_pages,omitempty"`

	// AddedButtons / RemovedButtons are keyed by page id.
	AddedButtons   map[string][]string `json:"added_buttons,omitempty"`
	RemovedButtons map[string][]string `json:"removed_buttons,omitempty"`

	// ChangedActions lists "page/button" keys whose semantic action differs.
	ChangedActions []string `json:"changed_actions,omitempty"`

	// ChangedEdges lists navigation edges "page/button -> target" present in only one tree.
	ChangedEdges []string `json:"changed_edges,omitempty"`
}

// Diff calculates the difference between oldTree and newTree.
// A nil tree is treated as empty.
func Diff(oldTree, newTree *Tree) *TreeDiff {
	if oldTree == nil {
		oldTree = NewTree()
	}
	if newTree == nil {
		newTree = NewTree()
	}

	diff := &TreeDiff{
		AddedButtons:   make(map[string][]string),
		RemovedButtons: make(map[string][]string),
	}

	for id := range newTree.Pages {
		if !oldTree.HasPage(id) {
			diff.AddedPages = append(diff.AddedPages, id)
		}
	}
	for id := range oldTree.Pages {
		if !newTree.HasPage(id) {
			diff.RemovedPages = append(diff.RemovedPages, id)
		}
	}

	for id, oldPage := range oldTree.Pages {
		newPage, ok := newTree.Pages[id]
		if !ok {
			continue
		}
		diffButtons(diff, oldTree, newTree, oldPage, newPage)
	}

	oldEdges := edges(oldTree)
	newEdges := edges(newTree)
	for e := range oldEdges {
		if !newEdges[e] {
			diff.ChangedEdges = append(diff.ChangedEdges, "-"+e)
		}
	}
	for e := range newEdges {
		if !oldEdges[e] {
			diff.ChangedEdges = append(diff.ChangedEdges, "+"+e)
		}
	}

	sort.Strings(diff.AddedPages)
	sort.Strings(diff.RemovedPages)
	sort.Strings(diff.ChangedActions)
	sort.Strings(diff.ChangedEdges)
	if len(diff.AddedButtons) == 0 {
		diff.AddedButtons = nil
	}
	if len(diff.RemovedButtons) == 0 {
		diff.RemovedButtons = nil
	}

	return diff
}

func diffButtons(diff *TreeDiff, oldTree, newTree *Tree, oldPage, newPage *Page) {
	for _, b := range newPage.Buttons {
		if _, ok := oldPage.Button(b.ID); !ok {
			diff.AddedButtons[newPage.ID] = append(diff.AddedButtons[newPage.ID], b.ID)
		}
	}
	for _, b := range oldPage.Buttons {
		nb, ok := newPage.Button(b.ID)
		if !ok {
			diff.RemovedButtons[oldPage.ID] = append(diff.RemovedButtons[oldPage.ID], b.ID)
			continue
		}
		if !sameAction(oldTree, newTree, b.Action, nb.Action) {
			diff.ChangedActions = append(diff.ChangedActions, oldPage.ID+"/"+b.ID)
		}
	}
}

// sameAction compares intents and payloads. Dangling navigation targets are not
// compared; raw platform commands are compared only for platform-specific actions.
func sameAction(oldTree, newTree *Tree, a, b *Action) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Intent != b.Intent {
		return false
	}
	switch a.Intent {
	case IntentNavigate:
		if !oldTree.HasPage(a.TargetPageID) && !newTree.HasPage(b.TargetPageID) {
			return true
		}
		return a.TargetPageID == b.TargetPageID
	case IntentSpeak, IntentInsertText:
		return a.Text == b.Text
	case IntentPlatformSpecific:
		return reflect.DeepEqual(commandIDs(a), commandIDs(b))
	default:
		return true
	}
}

func commandIDs(a *Action) []string {
	var ids []string
	for platform, cmds := range a.Platform {
		for _, c := range cmds {
			ids = append(ids, platform+"/"+c.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// edges returns resolved navigation edges only.
func edges(t *Tree) map[string]bool {
	out := make(map[string]bool)
	for _, p := range t.Pages {
		for _, b := range p.Buttons {
			if b.Action.IsNavigation() && t.HasPage(b.Action.TargetPageID) {
				out[fmt.Sprintf("%s/%s -> %s", p.ID, b.ID, b.Action.TargetPageID)] = true
			}
		}
	}
	return out
}

// IsEmpty reports whether the trees are semantically identical.
func (d *TreeDiff) IsEmpty() bool {
	return len(d.AddedPages) == 0 &&
		len(d.RemovedPages) == 0 &&
		len(d.AddedButtons) == 0 &&
		len(d.RemovedButtons) == 0 &&
		len(d.ChangedActions) == 0 &&
		len(d.ChangedEdges) == 0
}
