package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Severity ranks an Issue. Errors make a tree unsafe to export; warnings are
// conditions every converter tolerates.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Page     string   `json:"page,omitempty"`
	Button   string   `json:"button,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.Page
	if i.Button != "" {
		loc += "/" + i.Button
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, loc, i.Message)
}

// Report collects the issues found in one tree.
type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) add(sev Severity, page, button, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		Page:     page,
		Button:   button,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Errors returns the error-level issues.
func (r *Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning-level issues.
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarning) }

// OK reports whether no error-level issue was found.
func (r *Report) OK() bool { return len(r.Errors()) == 0 }

// Err folds the error-level issues into one error, or nil.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// Validate checks page and button identity, grid occupancy against recorded
// positions, navigation targets and reachability from the root page.
func Validate(tree *domain.Tree) *Report {
	r := &Report{}
	if tree == nil || len(tree.Pages) == 0 {
		r.add(SeverityError, "", "", "tree has no pages")
		return r
	}
	if tree.RootPageID != "" && !tree.HasPage(tree.RootPageID) {
		r.add(SeverityError, tree.RootPageID, "", "root page does not exist")
	}

	for _, id := range tree.PageIDs() {
		page := tree.Pages[id]
		if page == nil {
			r.add(SeverityError, id, "", "page is nil")
			continue
		}
		if page.ID != id {
			r.add(SeverityError, id, "", "page is registered under a different id %q", page.ID)
		}
		checkButtons(r, tree, page)
		checkGrid(r, page)
	}

	checkReachability(r, tree)
	return r
}

func checkButtons(r *Report, tree *domain.Tree, page *domain.Page) {
	seen := make(map[string]bool, len(page.Buttons))
	for _, b := range page.Buttons {
		if b == nil {
			r.add(SeverityError, page.ID, "", "button is nil")
			continue
		}
		if b.ID == "" {
			r.add(SeverityError, page.ID, "", "button %q has no id", b.Label)
			continue
		}
		if seen[b.ID] {
			r.add(SeverityError, page.ID, b.ID, "duplicate button id")
		}
		seen[b.ID] = true

		if b.Action == nil {
			continue
		}
		if !b.Action.Intent.Valid() {
			r.add(SeverityError, page.ID, b.ID, "unknown intent %q", b.Action.Intent)
		}
		if b.Action.IsNavigation() {
			switch {
			case b.Action.TargetPageID == "":
				r.add(SeverityWarning, page.ID, b.ID, "navigation has no target")
			case !tree.HasPage(b.Action.TargetPageID):
				r.add(SeverityWarning, page.ID, b.ID, "navigation target %q does not resolve", b.Action.TargetPageID)
			}
		}
	}
}

func checkGrid(r *Report, page *domain.Page) {
	if page.Grid == nil {
		return
	}
	for _, id := range page.Grid.ButtonIDs() {
		if _, ok := page.Button(id); !ok {
			r.add(SeverityError, page.ID, id, "grid cell references a missing button")
		}
	}
	for _, b := range page.Buttons {
		if b == nil || b.Position == nil {
			continue
		}
		got, ok := page.Grid.Locate(b.ID)
		if !ok {
			r.add(SeverityError, page.ID, b.ID, "button has a position but occupies no cell")
			continue
		}
		if want := b.Position.Normalize(); got != want {
			r.add(SeverityError, page.ID, b.ID, "grid conflict: position %+v but grid holds %+v", want, got)
		}
	}
}

// checkReachability walks navigation edges breadth-first from the root.
func checkReachability(r *Report, tree *domain.Tree) {
	root := tree.Root()
	if root == nil {
		return
	}
	visited := map[string]bool{}
	queue := []string{root.ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		page, ok := tree.Pages[current]
		if !ok || page == nil {
			continue
		}
		for _, b := range page.Buttons {
			if b == nil || !b.Action.IsNavigation() {
				continue
			}
			if target := b.Action.TargetPageID; tree.HasPage(target) && !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var orphans []string
	for id := range tree.Pages {
		if !visited[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		r.add(SeverityWarning, id, "", "page is unreachable from root %q", root.ID)
	}
}
