package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// Extract writes the translatable texts of source, one per line or as a JSON array.
func Extract(ctx context.Context, rt *Runtime, source string, w io.Writer, asJSON bool) error {
	texts, err := rt.Engine.ExtractTexts(ctx, source)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(texts)
	}
	for _, t := range texts {
		fmt.Fprintln(w, t)
	}
	return nil
}

// TranslateOptions configures Translate.
type TranslateOptions struct {
	Source      string
	Lang        string
	Destination string // empty derives <base>_<lang><ext>
	// Seed stores every extracted text missing from the table with an empty
	// translation, so translators can fill it in.
	Seed bool
}

// Translate applies the stored table for opts.Lang to opts.Source.
// Entries with an empty translation are left untranslated.
func Translate(ctx context.Context, rt *Runtime, opts TranslateOptions, w io.Writer) error {
	if opts.Lang == "" {
		return errors.New("a target language is required")
	}
	store, closeStore, err := rt.TranslationStore()
	if err != nil {
		return err
	}
	defer closeStore()

	table, err := store.Load(ctx, opts.Lang)
	switch {
	case errors.Is(err, ports.ErrTableNotFound) && opts.Seed:
		table = map[string]string{}
	case err != nil:
		return fmt.Errorf("failed to load %s translations: %w", opts.Lang, err)
	}

	if opts.Seed {
		texts, err := rt.Engine.ExtractTexts(ctx, opts.Source)
		if err != nil {
			return err
		}
		missing := map[string]string{}
		for _, t := range texts {
			if _, ok := table[t]; !ok {
				missing[t] = ""
			}
		}
		if len(missing) > 0 {
			if err := store.Save(ctx, opts.Lang, missing); err != nil {
				return fmt.Errorf("failed to seed %s translations: %w", opts.Lang, err)
			}
			rt.Logger.Info("seeded translation table", "lang", opts.Lang, "entries", len(missing))
		}
	}

	effective := make(map[string]string, len(table)+1)
	for k, v := range table {
		if strings.TrimSpace(v) != "" {
			effective[k] = v
		}
	}
	effective[domain.TargetLanguageKey] = opts.Lang

	dest, data, err := rt.Engine.ProcessTexts(ctx, opts.Source, effective, opts.Destination)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%d bytes, %d translations)\n", dest, len(data), len(effective)-1)
	return nil
}

// Convert loads source and saves it in the format of destination.
func Convert(ctx context.Context, rt *Runtime, source, destination string, w io.Writer) error {
	tree, err := rt.Engine.Convert(ctx, source, destination, rt.Import())
	if err != nil {
		return err
	}
	report := validator.Validate(tree)
	for _, issue := range report.Warnings() {
		rt.Logger.Warn("converted with warning", "issue", issue.String())
	}
	fmt.Fprintf(w, "%s -> %s (%d pages, %d buttons)\n", source, destination, len(tree.Pages), tree.CountButtons())
	return nil
}

// Validate loads source and writes its validation report. Terminals get a
// rendered markdown report.
func Validate(ctx context.Context, rt *Runtime, source string, w io.Writer) (*validator.Report, error) {
	tree, err := rt.Engine.LoadIntoTree(ctx, source, domain.ImportOptions{})
	if err != nil {
		return nil, err
	}
	report := validator.Validate(tree)

	md := reportMarkdown(source, tree, report)
	if tui.IsTerminal(w) {
		if out, err := tui.NewRenderer()(md); err == nil {
			md = out
		}
	}
	fmt.Fprint(w, md)
	return report, nil
}

func reportMarkdown(source string, tree *domain.Tree, report *validator.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", source)
	fmt.Fprintf(&sb, "%d pages, %d buttons, %d errors, %d warnings\n",
		len(tree.Pages), tree.CountButtons(), len(report.Errors()), len(report.Warnings()))
	if len(report.Issues) == 0 {
		sb.WriteString("\nBoard set is valid.\n")
		return sb.String()
	}
	sb.WriteString("\n")
	for _, issue := range report.Issues {
		fmt.Fprintf(&sb, "- %s\n", issue.String())
	}
	return sb.String()
}

// Graph writes the Mermaid navigation graph of source. With highlight set,
// pages unreachable from the root are marked.
func Graph(ctx context.Context, rt *Runtime, source string, w io.Writer, highlight bool) error {
	tree, err := rt.Engine.LoadIntoTree(ctx, source, domain.ImportOptions{})
	if err != nil {
		return err
	}
	var overlay *graph.GraphOverlay
	if highlight {
		overlay = &graph.GraphOverlay{}
		for _, issue := range validator.Validate(tree).Warnings() {
			if issue.Button == "" {
				overlay.Unreachable = append(overlay.Unreachable, issue.Page)
			}
		}
	}
	_, err = fmt.Fprint(w, graph.GenerateMermaid(tree, overlay))
	return err
}

// Version writes the banner when w is a terminal, then the version line.
func Version(w io.Writer) {
	if tui.IsTerminal(w) {
		tui.PrintBanner(w, lattice.Version)
	}
	fmt.Fprintf(w, "lattice version %s\n", strings.TrimSpace(lattice.Version))
}
