package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrjschrack/library-checker-app/internal/availability"
	"github.com/mrjschrack/library-checker-app/internal/dashboard"
)

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.view {
	case ViewBooks:
		b.WriteString(m.renderBooks())
	case ViewLibraries:
		b.WriteString(m.renderLibraries())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	theme := m.theme
	parts := []string{theme.accentStyle().Render("libcheck")}

	books := m.snapshot.Books
	if m.snapshot.Loaded {
		parts = append(parts, theme.mutedStyle().Render(fmt.Sprintf("%d books", len(books))))
		if avail := availability.CountAvailable(books); avail > 0 {
			parts = append(parts, theme.successStyle().Render(fmt.Sprintf("%d available now", avail)))
		}
	} else if m.snapshot.LastError == nil {
		parts = append(parts, theme.mutedStyle().Render("loading…"))
	}

	if m.snapshot.IsOffline() {
		parts = append(parts, theme.dangerStyle().Render("backend unreachable"))
	}

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, theme.faintStyle().Render("updated "+relativeTime(m.snapshot.LastUpdated)))
	}

	return strings.Join(parts, theme.faintStyle().Render("  ·  "))
}

func (m Model) renderBooks() string {
	theme := m.theme

	if m.snapshot.Loaded && len(m.display) == 0 {
		empty := theme.mutedStyle().Render("No books yet.") + "\n" +
			theme.faintStyle().Render("Set rss_url in config.toml and press S to sync your reading list.")
		return empty
	}

	listHeight := m.height - 10 // header, footer, detail pane
	if listHeight < 3 {
		listHeight = 3
	}

	offset := m.listOffset(listHeight)
	end := offset + listHeight
	if end > len(m.display) {
		end = len(m.display)
	}

	var rows []string
	for i := offset; i < end; i++ {
		rows = append(rows, m.renderBookRow(i))
	}
	list := strings.Join(rows, "\n")

	detail := m.renderDetail()
	return list + "\n\n" + detail
}

func (m Model) renderBookRow(i int) string {
	theme := m.theme
	book := m.display[i]

	cursor := "  "
	if i == m.selected {
		cursor = theme.accentStyle().Render("> ")
	}

	dot := theme.faintStyle().Render("○")
	if availability.HasAvailable(book.Availability) {
		dot = theme.successStyle().Render("●")
	}

	title := book.Title
	if maxTitle := m.width - 30; maxTitle > 8 {
		title = truncate(title, maxTitle)
	}

	var line string
	if i == m.selected {
		line = theme.selectedStyle().Render(fmt.Sprintf("%s %s — %s", dot, title, book.Author))
	} else {
		line = fmt.Sprintf("%s %s %s", dot, theme.textStyle().Render(title), theme.mutedStyle().Render("— "+book.Author))
	}

	if m.checking[book.ID] {
		line += " " + m.spin.View()
	}
	return cursor + line
}

func (m Model) renderDetail() string {
	theme := m.theme
	book, ok := m.selectedBook()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.textStyle().Bold(true).Render(book.Title))
	b.WriteString(theme.mutedStyle().Render("  by " + book.Author))
	if book.Shelf != "" {
		b.WriteString(theme.faintStyle().Render("  [" + book.Shelf + "]"))
	}
	b.WriteString("\n")

	sorted := availability.SortByStatus(book.Availability)
	if len(sorted) == 0 {
		b.WriteString(theme.faintStyle().Render("no libraries configured"))
		return b.String()
	}

	var badges []string
	for _, rec := range sorted {
		badges = append(badges, m.renderBadge(rec))
	}
	b.WriteString(strings.Join(badges, "  "))

	if rec, ok := topRecord(book); ok {
		if checked := rec.ParsedCheckedAt(); !checked.IsZero() {
			b.WriteString("\n")
			b.WriteString(theme.faintStyle().Render("checked " + relativeTime(checked)))
		}
	}
	return b.String()
}

func (m Model) renderBadge(rec dashboard.Availability) string {
	theme := m.theme
	badge := badgeFor(rec.Status)
	style := theme.badgeStyle(rec.Status)
	name := truncate(rec.LibraryName, 18)
	return style.Render(fmt.Sprintf("[%s %s: %s]", badge.Icon, name, badge.Label))
}

func (m Model) renderLibraries() string {
	theme := m.theme

	var b strings.Builder
	b.WriteString(theme.textStyle().Bold(true).Render("Libraries"))
	b.WriteString("\n\n")

	if !m.librariesLoaded {
		b.WriteString(theme.mutedStyle().Render("loading…"))
		return b.String()
	}
	if len(m.libraries) == 0 {
		b.WriteString(theme.mutedStyle().Render("No libraries configured."))
		b.WriteString("\n")
		b.WriteString(theme.faintStyle().Render("Add one with: libcheck libraries add --name … --url …"))
		return b.String()
	}

	for _, lib := range m.libraries {
		status := theme.successStyle().Render("active")
		if !lib.IsActive {
			status = theme.faintStyle().Render("inactive")
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			theme.mutedStyle().Render(fmt.Sprintf("#%d", lib.ID)),
			theme.textStyle().Render(lib.Name),
			status))
		b.WriteString(theme.faintStyle().Render("   " + lib.BaseURL))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderFooter() string {
	theme := m.theme

	if m.bulkActive {
		bar := m.progressBar.ViewAs(float64(m.bulkProgress) / 100)
		return m.spin.View() + " " + theme.mutedStyle().Render("checking all books") + " " + bar
	}
	if m.errNote != "" {
		return theme.dangerStyle().Render("✗ " + m.errNote)
	}
	if m.notice != "" {
		return theme.successStyle().Render("✓ " + m.notice)
	}

	hints := "r refresh · R check all · b borrow · H hold · o open · L libraries · h help · e quit"
	return theme.faintStyle().Render(hints)
}

func (m Model) renderHelp() string {
	theme := m.theme

	sections := []struct {
		title string
		items [][2]string
	}{
		{
			title: "Navigation",
			items: [][2]string{
				{"j/k", "Move up/down"},
				{"g/G", "Go to top/bottom"},
				{"L", "Libraries view"},
				{"esc/q", "Back to books"},
			},
		},
		{
			title: "Availability",
			items: [][2]string{
				{"r", "Refresh selected book"},
				{"R", "Check all books"},
				{"A", "Check all books (force)"},
				{"S", "Sync reading list from RSS"},
			},
		},
		{
			title: "Actions",
			items: [][2]string{
				{"b", "Borrow at best library"},
				{"H", "Place hold at best library"},
				{"o/enter", "Open Libby deep link"},
				{"O", "Open Goodreads page"},
			},
		},
		{
			title: "General",
			items: [][2]string{
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"e/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(theme.textStyle().Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, section := range sections {
		b.WriteString(theme.accentStyle().Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			key := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Warning)).Width(10).Render(item[0])
			b.WriteString("  " + key + theme.mutedStyle().Render(item[1]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(theme.faintStyle().Render("press any key to close"))
	return b.String()
}

// listOffset keeps the selection inside the visible window.
func (m Model) listOffset(height int) int {
	if m.selected < height {
		return 0
	}
	return m.selected - height + 1
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

func relativeTime(t time.Time) string {
	since := time.Since(t)
	switch {
	case since < time.Minute:
		return "just now"
	case since < time.Hour:
		return fmt.Sprintf("%dm ago", int(since.Minutes()))
	case since < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(since.Hours()))
	default:
		return t.Format("Jan 2 15:04")
	}
}
