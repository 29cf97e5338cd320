package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"sow_rag/internal/document"
	"sow_rag/internal/rag"
)

// maxContextChars bounds the reference block printed for a shell query.
const maxContextChars = 4000

// shellState holds the filters and review parameters set with shell commands.
type shellState struct {
	client  string
	product string
	tier    string
}

// Run is the interactive shell. Each input line is either a command
// (":tier HIGH", ":product Payments", ":client acme", ":requirements",
// ":status", ":quit"), a path to a document to review, or a search query.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("shell started")
	fmt.Fprintln(a.out, "Enter a document path to review or text to search (:help for commands). Ctrl+C to exit.")

	scanner := bufio.NewScanner(a.in)

	const maxLineSize = 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	var state shellState
	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutting down shell")
			return nil
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("stdin error: %w", err)
				}
				a.log.Info("stdin closed")
				return nil
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			if strings.HasPrefix(line, ":") {
				if quit := a.handleCommand(ctx, line, &state); quit {
					return nil
				}
				continue
			}

			a.handleLine(ctx, line, &state)
		}
	}
}

func (a *App) handleCommand(ctx context.Context, line string, state *shellState) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":quit", ":exit":
		return true
	case ":tier":
		state.tier = strings.ToUpper(arg)
		fmt.Fprintf(a.out, "client tier: %q\n", state.tier)
	case ":product":
		state.product = arg
		fmt.Fprintf(a.out, "product: %q\n", state.product)
	case ":client":
		state.client = arg
		fmt.Fprintf(a.out, "client: %q\n", state.client)
		if state.tier == "" && arg != "" {
			if tier, err := a.ClientTier(arg); err == nil && tier != "" {
				state.tier = tier
				fmt.Fprintf(a.out, "client tier from CRM: %q\n", state.tier)
			}
		}
	case ":requirements":
		a.printRequirements(state.tier)
	case ":status":
		st, err := a.Status(ctx)
		if err != nil {
			fmt.Fprintf(a.out, "❌ Status error: %v\n", err)
			return false
		}
		fmt.Fprintf(a.out, "collection %s: %d chunks from %d files\n", st.Collection, st.Chunks, st.Files)
	case ":help":
		fmt.Fprintln(a.out, ":tier T, :product P, :client C, :requirements, :status, :quit")
	default:
		fmt.Fprintf(a.out, "unknown command %s\n", name)
	}
	return false
}

func (a *App) handleLine(ctx context.Context, line string, state *shellState) {
	a.log.Debug("received input", "line", line)

	if info, err := os.Stat(line); err == nil && !info.IsDir() {
		a.reviewFromShell(ctx, line, state)
		return
	}

	filters := map[string]string{}
	if state.client != "" {
		filters[MetaClientID] = state.client
	}
	if state.product != "" {
		filters[MetaProduct] = state.product
	}

	results, err := a.Search(ctx, line, rag.DefaultResults, filters)
	if err != nil {
		fmt.Fprintf(a.out, "❌ Search error: %v\n", err)
		return
	}

	grouped := rag.GroupBySection(results)
	sections := make([]string, 0, len(grouped))
	for section := range grouped {
		sections = append(sections, section)
	}
	slices.Sort(sections)

	fmt.Fprintf(a.out, "🔍 Found %d relevant chunks in %d sections:\n", len(results), len(sections))
	for _, section := range sections {
		fmt.Fprintf(a.out, "   - %s (%d)\n", section, len(grouped[section]))
	}
	if len(results) > 0 {
		fmt.Fprintf(a.out, "\n%s", rag.FormatContext(results, maxContextChars))
	}
}

func (a *App) reviewFromShell(ctx context.Context, path string, state *shellState) {
	if !document.CanProcess(path) {
		fmt.Fprintf(a.out, "❌ Unsupported format: %s\n", filepath.Ext(path))
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	a.outputPath = filepath.Join(a.reportDir, fmt.Sprintf("%s_compliance_%s.md", document.Stem(path), timestamp))
	defer func() { a.outputPath = "" }()

	rv, err := a.ReviewFile(ctx, path, state.product, state.tier)
	if err != nil {
		fmt.Fprintf(a.out, "❌ Review failed: %v\n", err)
		return
	}

	fmt.Fprintf(a.out, "📊 Compliance score: %d/100 (%s), %d findings\n", rv.Score, rv.Status, len(rv.Findings))
	for _, s := range rv.Skipped {
		fmt.Fprintf(a.out, "⚠️  Skipped %s: %s\n", s.Check, s.Reason)
	}
	fmt.Fprintf(a.out, "💾 Report saved to: %s\n", a.outputPath)
}

func (a *App) printRequirements(tier string) {
	reqs := a.Requirements(tier)
	if reqs.Error != "" {
		fmt.Fprintf(a.out, "❌ %s\n", reqs.Error)
		return
	}

	fmt.Fprintf(a.out, "Requirements for tier %q:\n", tier)
	if reqs.SLARequirements != nil {
		fmt.Fprintf(a.out, "  SLA: uptime %s, max response time %s\n",
			reqs.SLARequirements.Uptime, reqs.SLARequirements.MaxResponseTime)
	}
	for _, c := range reqs.MandatoryClauses {
		fmt.Fprintf(a.out, "  clause: %s\n", c)
	}
	fmt.Fprintf(a.out, "  prohibited: %s\n", strings.Join(reqs.ProhibitedTerms, ", "))
}
