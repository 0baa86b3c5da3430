package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datagrid/internal/explorer"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [dataset]",
		Short: "Browse backend datasets interactively",
		Long: `Browse backend datasets in an interactive terminal session.

The session keeps the same state as the dashboard grid: current page,
page size, sort, search and per-column filters. Every command that
changes the query re-fetches the page from the backend.`,
		Example: `  # Start browsing, then pick a dataset
  datagrid browse

  # Open the trades dataset directly
  datagrid browse trades`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset := ""
			if len(args) > 0 {
				dataset = args[0]
			}
			return runBrowse(cmd, dataset)
		},
	}
	return cmd
}

// browser holds the REPL state around an explorer session.
type browser struct {
	cmd     *cobra.Command
	cmdCtx  *CommandContext
	session *explorer.Session
	// settled receives a ping on every session state change; waitSettled
	// drains it until the fetch leaves the loading state.
	settled chan struct{}
	format  string
}

func runBrowse(cmd *cobra.Command, dataset string) error {
	cmdCtx := NewCommandContext(cmd)

	b := &browser{
		cmd:     cmd,
		cmdCtx:  cmdCtx,
		settled: make(chan struct{}, 1),
		format:  cmdCtx.Cfg.OutputFormat,
	}
	b.session = explorer.NewSession(explorer.Config{
		Source:       cmdCtx.Client,
		PageSize:     cmdCtx.Cfg.PageSize,
		FetchTimeout: cmdCtx.Cfg.FetchTimeout,
		Logger:       cmdCtx.Logger,
		OnChange: func() {
			select {
			case b.settled <- struct{}{}:
			default:
			}
		},
	})

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(""),
		HistoryFile:     browseHistoryFile(),
		AutoComplete:    b.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "DataGrid browser (backend: %s)\n", cmdCtx.Cfg.BackendURL)
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	if dataset != "" {
		b.open(dataset)
		rl.SetPrompt(prompt(dataset))
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == ".quit" || line == ".exit" {
			break
		}
		b.dispatch(line)
		rl.SetPrompt(prompt(b.session.Snapshot().DatasetID))
	}

	return nil
}

func prompt(dataset string) string {
	name := "datagrid"
	if dataset != "" {
		name = "datagrid:" + dataset
	}
	return termenv.String(name + "> ").Foreground(termenv.ANSICyan).String()
}

// browseHistoryFile returns the readline history path; empty disables
// history.
func browseHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "datagrid", "browse_history")
}

func (b *browser) dispatch(line string) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".help":
		printBrowseHelp(b.cmd.OutOrStdout())

	case ".datasets":
		b.listDatasets()

	case ".open":
		if len(args) < 1 {
			b.errorf("Usage: .open <dataset>")
			return
		}
		b.open(args[0])

	case ".page":
		if len(args) < 1 {
			b.errorf("Usage: .page <n>")
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			b.errorf("invalid page %q", args[0])
			return
		}
		b.apply(func() { b.session.SetPage(n) })

	case ".next":
		b.apply(func() { b.session.SetPage(b.session.Snapshot().Query.Page + 1) })

	case ".prev":
		b.apply(func() { b.session.SetPage(b.session.Snapshot().Query.Page - 1) })

	case ".pagesize":
		if len(args) < 1 {
			b.errorf("Usage: .pagesize <n> (allowed: %v)", explorer.AllowedPageSizes)
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || !explorer.ValidPageSize(n) {
			b.errorf("invalid page size %q (allowed: %v)", args[0], explorer.AllowedPageSizes)
			return
		}
		b.apply(func() { b.session.SetPageSize(n) })

	case ".sort":
		if len(args) < 1 {
			b.errorf("Usage: .sort <column>")
			return
		}
		b.apply(func() { b.session.SetSort(args[0]) })

	case ".search":
		// No argument clears the search.
		b.apply(func() { b.session.SetSearch(strings.Join(args, " ")) })

	case ".filter":
		if len(args) < 1 {
			b.errorf("Usage: .filter <column> [value] (no value clears)")
			return
		}
		value := strings.Join(args[1:], " ")
		b.apply(func() { b.session.SetFilter(args[0], value) })

	case ".toggle":
		if len(args) < 1 {
			b.errorf("Usage: .toggle <column>")
			return
		}
		b.session.ToggleColumn(args[0])
		b.render()

	case ".columns":
		b.printColumns()

	case ".refresh":
		b.apply(func() { b.session.Refresh() })

	case ".show":
		b.render()

	case ".clear":
		termenv.ClearScreen()

	default:
		b.errorf("Unknown command: %s (type .help for commands)", command)
	}
}

func (b *browser) open(dataset string) {
	b.apply(func() { b.session.SelectDataset(dataset) })
}

// apply runs a session mutation, waits for the resulting fetch to settle and
// renders the page.
func (b *browser) apply(mutate func()) {
	mutate()
	b.waitSettled()
	b.render()
}

// waitSettled blocks until the session's fetch leaves the loading state or
// the fetch timeout elapses.
func (b *browser) waitSettled() {
	deadline := time.After(b.cmdCtx.Cfg.FetchTimeout + time.Second)
	for {
		snap := b.session.Snapshot()
		if snap.Fetch.Status != explorer.StatusLoading {
			return
		}
		select {
		case <-b.settled:
		case <-deadline:
			return
		}
	}
}

func (b *browser) render() {
	out := b.cmd.OutOrStdout()
	snap := b.session.Snapshot()

	if snap.DatasetID == "" {
		_, _ = fmt.Fprintln(out, "No dataset open. Use .datasets to list and .open <dataset> to start.")
		return
	}

	switch snap.Fetch.Status {
	case explorer.StatusError:
		b.errorf("%s", snap.Fetch.ErrorMessage)
		return
	case explorer.StatusLoading, explorer.StatusIdle:
		_, _ = fmt.Fprintln(out, "Loading...")
		return
	case explorer.StatusSuccess:
	}

	cols := snap.VisibleColumns
	if len(cols) == 0 {
		_, _ = fmt.Fprintln(out, "All columns are hidden. Use .toggle <column> to show one.")
		return
	}

	res := &explorer.Result{
		Columns:   cols,
		Rows:      snap.Fetch.Rows,
		TotalRows: snap.Fetch.TotalRows,
	}
	if err := renderResult(out, cols, res, b.format); err != nil {
		b.errorf("%v", err)
		return
	}
	_, _ = fmt.Fprintln(out, b.statusLine(snap))
}

// statusLine summarizes the query under the table, dimmed.
func (b *browser) statusLine(snap explorer.Snapshot) string {
	parts := []string{
		snap.DatasetID,
		fmt.Sprintf("page %d/%d", snap.Query.Page, snap.TotalPages),
		explorer.PageRange(snap.Query.Page, snap.Query.PageSize, snap.Fetch.TotalRows),
	}
	if snap.Query.SortColumn != "" {
		parts = append(parts, fmt.Sprintf("sort %s %s", snap.Query.SortColumn, snap.Query.SortDirection))
	}
	if snap.Query.SearchText != "" {
		parts = append(parts, fmt.Sprintf("search %q", snap.Query.SearchText))
	}
	if summary := explorer.FilterSummary(snap.Columns, snap.Query.Filters); summary != "" {
		parts = append(parts, "filters "+summary)
	}
	return termenv.String(strings.Join(parts, " | ")).Faint().String()
}

func (b *browser) listDatasets() {
	datasets, err := b.cmdCtx.Client.ListDatasets(b.cmd.Context())
	if err != nil {
		b.errorf("%v", err)
		return
	}
	out := b.cmd.OutOrStdout()
	for _, ds := range datasets {
		line := ds.ID
		if ds.Description != "" {
			line += "  " + termenv.String(ds.Description).Faint().String()
		}
		_, _ = fmt.Fprintln(out, line)
	}
}

func (b *browser) printColumns() {
	snap := b.session.Snapshot()
	if len(snap.Columns) == 0 {
		_, _ = fmt.Fprintln(b.cmd.OutOrStdout(), "No columns resolved yet.")
		return
	}
	visible := make(map[string]bool, len(snap.VisibleColumns))
	for _, col := range snap.VisibleColumns {
		visible[col] = true
	}
	out := b.cmd.OutOrStdout()
	for _, col := range snap.Columns {
		marker := "[x]"
		if !visible[col] {
			marker = "[ ]"
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", marker, col)
	}
}

func (b *browser) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(b.cmd.ErrOrStderr(), termenv.String("Error: "+msg).Foreground(termenv.ANSIRed).String())
}

// completer seeds tab completion with dataset names and dot-commands.
func (b *browser) completer() *readline.PrefixCompleter {
	var datasetItems []readline.PrefixCompleterInterface
	if datasets, err := b.cmdCtx.Client.ListDatasets(b.cmd.Context()); err == nil {
		for _, ds := range datasets {
			datasetItems = append(datasetItems, readline.PcItem(ds.ID))
		}
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".open", datasetItems...),
		readline.PcItem(".datasets"),
		readline.PcItem(".page"),
		readline.PcItem(".next"),
		readline.PcItem(".prev"),
		readline.PcItem(".pagesize"),
		readline.PcItem(".sort"),
		readline.PcItem(".search"),
		readline.PcItem(".filter"),
		readline.PcItem(".toggle"),
		readline.PcItem(".columns"),
		readline.PcItem(".refresh"),
		readline.PcItem(".show"),
		readline.PcItem(".clear"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func printBrowseHelp(w io.Writer) {
	help := `
Commands:
  .datasets            List the datasets the backend exposes
  .open <dataset>      Open a dataset
  .page <n>            Jump to page n
  .next / .prev        Move one page forward / back
  .pagesize <n>        Change the page size
  .sort <column>       Sort by a column (again to flip direction)
  .search [text]       Set the free-text search (no text clears it)
  .filter <col> [val]  Set a column filter (no value clears it)
  .toggle <column>     Show or hide a column
  .columns             List columns and their visibility
  .refresh             Re-fetch the current page
  .show                Re-print the current page
  .clear               Clear the screen
  .help                Show this help message
  .quit / .exit        Exit

Tips:
  - Use arrow keys to navigate history
  - Tab completion works for commands and dataset names
`
	_, _ = fmt.Fprintln(w, help)
}
