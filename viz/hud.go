package viz

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"qviz/quantum"
	"qviz/quarkgl"
)

const (
	hudRows       = 7
	hudFontHeight = 10
	hudFontOffset = 6
	hudTopCounts  = 4
)

// HUD is a small tinyterm console drawn over the lower-left corner.
type HUD struct {
	display tinyterm.Displayer
	w, h    int16
	term    *tinyterm.Terminal

	preset string
	qubits int
	status string
	counts map[string]int
	fps    float64
}

func (h *HUD) init(t quarkgl.Target) error {
	w, ht := t.Size()
	pw := w / 2
	if pw < 160 {
		pw = w
	}
	ph := min(hudRows*hudFontHeight, ht)
	region := &quarkgl.Region{T: t, X: 0, Y: ht - ph, W: pw, H: ph}
	return h.attach(&quarkgl.TargetDisplay{T: region})
}

// attach points the console at d, which must already be clipped to the
// HUD panel.
func (h *HUD) attach(d tinyterm.Displayer) error {
	if err := d.SetRotation(drivers.Rotation0); err != nil {
		return fmt.Errorf("hud: set rotation: %w", err)
	}
	h.display = d
	h.w, h.h = d.Size()
	h.term = tinyterm.NewTerminal(d)
	return nil
}

// SetPreset records the active preset name.
func (h *HUD) SetPreset(name string) { h.preset = name }

// SetStatus records a one-line status message.
func (h *HUD) SetStatus(s string) { h.status = s }

// SetState records the qubit count of the displayed state.
func (h *HUD) SetState(st quantum.State) { h.qubits = st.NumQubits }

// SetMeasurements records the latest measurement histogram.
func (h *HUD) SetMeasurements(counts map[string]int) {
	h.counts = make(map[string]int, len(counts))
	for k, v := range counts {
		h.counts[k] = v
	}
}

// Lines returns the console text for the current frame.
func (h *HUD) Lines() []string {
	lines := []string{
		fmt.Sprintf("preset %s  qubits %d", orDash(h.preset), h.qubits),
	}
	if h.fps > 0 {
		lines[0] += fmt.Sprintf("  %.0ffps", h.fps)
	}
	for _, kv := range topCounts(h.counts, hudTopCounts) {
		lines = append(lines, fmt.Sprintf("|%s> %d", kv.label, kv.count))
	}
	if h.status != "" {
		lines = append(lines, h.status)
	}
	return lines
}

func (h *HUD) draw(now, last time.Time, mode quarkgl.RenderMode) error {
	if h.term == nil {
		return nil
	}
	if !last.IsZero() && now.After(last) {
		h.fps = 1 / now.Sub(last).Seconds()
	}
	if err := h.display.FillRectangle(0, 0, h.w, h.h, color.RGBA{A: 0xFF}); err != nil {
		return fmt.Errorf("hud: clear panel: %w", err)
	}
	h.term.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        hudFontHeight,
		FontOffset:        hudFontOffset,
		UseSoftwareScroll: true,
	})
	lines := h.Lines()
	lines[0] += "  " + mode.String()
	fmt.Fprint(h.term, "\x1b[32m"+lines[0]+"\x1b[0m")
	for _, l := range lines[1:] {
		fmt.Fprint(h.term, "\r\n"+l)
	}
	return nil
}

type labelCount struct {
	label string
	count int
}

// topCounts returns the n largest counts, ties broken by label.
func topCounts(counts map[string]int, n int) []labelCount {
	out := make([]labelCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, labelCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
