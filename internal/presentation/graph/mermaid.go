package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// GraphOverlay marks pages to highlight on the graph.
type GraphOverlay struct {
	// Unreachable pages are drawn with a warning style.
	Unreachable []string
	// Focus is a page to emphasise, typically the one being inspected.
	Focus string
}

// GenerateMermaid produces a Mermaid flowchart of the navigation graph.
// Shapes:
// - Root page: ((Circle))
// - Page: [Rectangle]
// - Dangling target: >Flag]
// Edges are labelled with the button that navigates.
func GenerateMermaid(tree *domain.Tree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if tree == nil {
		return sb.String()
	}

	rootID := ""
	if root := tree.Root(); root != nil {
		rootID = root.ID
	}

	dangling := map[string]bool{}
	for _, page := range tree.OrderedPages() {
		safeID := sanitizeMermaidID(page.ID)
		name := escapeLabel(page.Name)
		if name == "" {
			name = escapeLabel(page.ID)
		}

		opener, closer := "[", "]"
		if page.ID == rootID {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, name, closer))

		for _, b := range page.Buttons {
			if !b.Action.IsNavigation() || b.Action.TargetPageID == "" {
				continue
			}
			target := b.Action.TargetPageID
			arrow := "-->"
			if !tree.HasPage(target) {
				dangling[target] = true
				arrow = "-.->"
			}
			label := escapeLabel(b.Label)
			if label != "" {
				if arrow == "-->" {
					arrow = fmt.Sprintf("-- \"%s\" -->", label)
				} else {
					arrow = fmt.Sprintf("-. \"%s\" .->", label)
				}
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(target)))
		}
	}

	missing := make([]string, 0, len(dangling))
	for id := range dangling {
		missing = append(missing, id)
	}
	sort.Strings(missing)
	for _, id := range missing {
		sb.WriteString(fmt.Sprintf("    %s>\"%s\"]\n", sanitizeMermaidID(id), escapeLabel(id)))
	}

	if len(missing) > 0 || overlay != nil {
		sb.WriteString("\n    %% Styles\n")
	}
	if len(missing) > 0 {
		sb.WriteString("    classDef dangling fill:#ffebee,stroke:#c62828,stroke-dasharray:4,color:#000;\n")
		for _, id := range missing {
			sb.WriteString(fmt.Sprintf("    class %s dangling;\n", sanitizeMermaidID(id)))
		}
	}

	if overlay != nil {
		// Force black text for contrast on light fills in both themes.
		sb.WriteString("    classDef unreachable fill:#fff3e0,stroke:#e65100,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Unreachable {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s unreachable;\n", safeID))
			}
		}
		if overlay.Focus != "" {
			sb.WriteString(fmt.Sprintf("    class %s focus;\n", sanitizeMermaidID(overlay.Focus)))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", "{", "_", "}", "_")
	s := r.Replace(id)
	// Mermaid reserves "end" as a keyword.
	if strings.EqualFold(s, "end") {
		s = "page_" + s
	}
	return s
}
