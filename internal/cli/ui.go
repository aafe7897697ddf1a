package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/nodelib"
	"github.com/matzehuels/vxgraph/pkg/report"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, resolved formats
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for error messages.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Report Display
// =============================================================================

// statsLine renders the document counts on a single line.
func statsLine(s report.Stats, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d edges", s.Edges),
	}
	if s.Passes > 0 {
		parts = append(parts, fmt.Sprintf("%d passes", s.Passes))
	}

	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(part))
	}
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(status)
	return b.String()
}

// printSummary prints the per-role counts of a report.
func printSummary(r *report.Report) {
	printKeyValue("Document", r.Document)
	printKeyValue("OpenVX", r.VXVersion)
	printKeyValue("Operators", fmt.Sprint(r.Stats.Operators))
	printKeyValue("Images", fmt.Sprintf("%d input · %d output · %d virtual · %d debug · %d uniform",
		len(r.Images.Input), len(r.Images.Output), len(r.Images.Virtual), len(r.Images.Debug), len(r.Images.Uniform)))
	printKeyValue("Userdata", fmt.Sprint(len(r.UserData)))
	printKeyValue("Dynamic", fmt.Sprint(len(r.Ledger)))
	printKeyValue("Formats", fmt.Sprintf("%d/%d resolved", r.Stats.Resolved, r.Stats.Images))
}

func severityStyle(s diagnostics.Severity) lipgloss.Style {
	switch s {
	case diagnostics.SeverityError:
		return StyleError
	case diagnostics.SeverityWarning:
		return StyleWarning
	default:
		return StyleSuccess
	}
}

// diagnosticsTable renders errors and warnings. Info annotations are left
// out unless withInfo is set.
func diagnosticsTable(ds []diagnostics.Diagnostic, withInfo bool) string {
	var shown []diagnostics.Diagnostic
	for _, d := range ds {
		if withInfo || d.Severity != diagnostics.SeverityInfo {
			shown = append(shown, d)
		}
	}
	if len(shown) == 0 {
		return ""
	}

	rows := make([][]string, len(shown))
	for i, d := range shown {
		rows[i] = []string{d.Severity.String(), d.NodeID, string(d.Code), d.Message}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Severity", "Node", "Code", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if col == 0 {
				return severityStyle(shown[row].Severity)
			}
			if col == 2 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// libraryTable renders the operator types of lib.
func libraryTable(lib *nodelib.Library) string {
	types := lib.Types()
	rows := make([][]string, len(types))
	for i, t := range types {
		params := "—"
		if len(t.Params) > 0 {
			ps := make([]string, len(t.Params))
			for j, p := range t.Params {
				ps[j] = fmt.Sprintf("%s@%d", p.Name, p.Slot)
			}
			params = strings.Join(ps, ", ")
		}
		rules := make([]string, len(t.Formats))
		for j, r := range t.Formats {
			rules[j] = r.String()
		}
		rows[i] = []string{
			t.Name(),
			fmt.Sprint(t.FirstInput),
			fmt.Sprint(t.FirstOutput),
			params,
			strings.Join(rules, "\n"),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Operator", "In", "Out", "Parameters", "Formats").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case col == 0:
				return StyleValue
			case col == 4:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
