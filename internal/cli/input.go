// Package cli is an interactive prompt for trying queries against the engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Handler answers queries typed at the prompt.
type Handler interface {
	Handle(ctx context.Context, req model.Request) model.Response
}

var (
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	intentStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7AA2F7")).Bold(true)
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	suggestionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

// InputHandler reads one query per line and prints what the engine makes
// of it.
type InputHandler struct {
	engine       Handler
	suggestLimit int
	in           io.Reader
	out          io.Writer
}

// NewInputHandler builds a prompt on in and out. A limit of zero shows every
// suggestion.
func NewInputHandler(engine Handler, limit int, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		engine:       engine,
		suggestLimit: limit,
		in:           in,
		out:          out,
	}
}

// Start runs the prompt until the input ends or ctx is done.
func (h *InputHandler) Start(ctx context.Context) error {
	fmt.Fprintln(h.out, "TripServe CLI")
	fmt.Fprintln(h.out, "type a travel query and press Enter (Ctrl+C to exit):")

	reader := bufio.NewReader(h.in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		if query := strings.TrimSpace(line); query != "" {
			h.handleInput(ctx, query)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *InputHandler) handleInput(ctx context.Context, query string) {
	if !utils.IsValidQuery(query) {
		log.Warnf("Skipping query: '%s'", query)
		return
	}

	start := time.Now()
	resp := h.engine.Handle(ctx, model.Request{Query: query})
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), query)

	intent := "none"
	if !resp.Intent.IsNone() {
		intent = string(resp.Intent)
	}
	next := "-"
	if resp.NextSlot != model.SlotNone {
		next = string(resp.NextSlot)
	}
	fmt.Fprintf(h.out, "%s %s  %s %s  %s %s\n",
		labelStyle.Render("intent"), intentStyle.Render(intent),
		labelStyle.Render("next"), next,
		labelStyle.Render("source"), resp.Source)

	for _, kind := range sortedKinds(resp.Entities) {
		fmt.Fprintf(h.out, "  %s %s\n", labelStyle.Render(kind+":"), strings.Join(resp.Entities[kind], ", "))
	}

	if len(resp.Suggestions) == 0 {
		fmt.Fprintln(h.out, labelStyle.Render("  no suggestions"))
		return
	}
	shown := 0
	for _, s := range resp.Suggestions {
		if s.IsPlaceholder {
			fmt.Fprintf(h.out, "  %s\n", placeholderStyle.Render(s.Text))
			continue
		}
		if h.suggestLimit > 0 && shown == h.suggestLimit {
			break
		}
		shown++
		fmt.Fprintf(h.out, "  %2d. %-24s %.2f\n", shown, suggestionStyle.Render(s.Text), s.Confidence)
	}
}

func sortedKinds(entities map[string][]string) []string {
	kinds := make([]string, 0, len(entities))
	for k := range entities {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
