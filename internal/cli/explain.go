package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/boycaught/eleventy/pkg/events"
	"github.com/boycaught/eleventy/pkg/templatemap"
)

// explainCommand creates the explain command: an interactive browser over
// the computed render order.
func (c *CLI) explainCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Browse the computed render order",
		Long: `Compute the render order for the site and browse it interactively.

Each entry shows the collections it reads and writes, which together
determine its position: a document reading a collection is ordered after
every document contributing to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplain(cmd.Context(), plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the order without the interactive browser")

	return cmd
}

func (c *CLI) runExplain(ctx context.Context, plain bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config %s: %w", c.ConfigPath, err)
	}

	st, err := newSite(cfg, events.NewBus())
	if err != nil {
		return fmt.Errorf("initialize site: %w", err)
	}
	docs, err := st.documents(cfg)
	if err != nil {
		return fmt.Errorf("discover documents: %w", err)
	}
	if len(docs) == 0 {
		printInfo("No documents under %s", cfg.InputDir)
		return nil
	}

	m := templatemap.New(c.Logger)
	for _, doc := range docs {
		if _, err := m.Add(ctx, doc); err != nil {
			printWarning("%s: %v", doc.Path(), err)
		}
	}
	if err := m.Cache(ctx); err != nil {
		return fmt.Errorf("compute order: %w", err)
	}

	if plain {
		for i, id := range m.TemplateOrder() {
			if templatemap.IsNodeID(id) {
				printDetail("%2d. [%s complete]", i+1, templatemap.NameFromNodeID(id))
				continue
			}
			entry, _ := m.Entry(id)
			fmt.Printf("%2d. %s  %s\n", i+1, id,
				StyleDim.Render(describeEntry(entry)))
		}
		return nil
	}

	model := newOrderModel(m)
	_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
	return err
}

// describeEntry summarizes an entry's collection relations on one line.
func describeEntry(e *templatemap.MapEntry) string {
	if e == nil {
		return ""
	}
	desc := ""
	if writes := e.Writes(); len(writes) > 0 {
		desc += fmt.Sprintf("writes %v", writes)
	}
	if reads := e.Reads(); len(reads) > 0 {
		if desc != "" {
			desc += "  "
		}
		desc += fmt.Sprintf("reads %v", reads)
	}
	return desc
}
