// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/render"
	"github.com/jeranaias/siemspeak/internal/ui/components"
	"github.com/jeranaias/siemspeak/internal/util"
)

// View renders the console.
func (m Model) View() string {
	th := m.theme.Theme()

	if m.confirm.IsVisible() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}
	if err := m.session.Alert(); err != nil {
		alert := components.Alert(th, "Request failed", err, min(m.width-4, 60))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, alert)
	}

	header := m.renderHeader()
	input := th.InputContainer.Width(max(m.width-2, 10)).Render(m.input.View())

	popup := ""
	if m.popupVisible() {
		items, active := m.popupItems()
		popup = m.popup.View(items, active)
	}

	loading := ""
	if m.session.Loading() {
		loading = m.spinner.View() + " " + th.LoadingText.Render("Analyzing: "+util.TruncateWidth(m.session.Pending(), max(m.width-16, 10)))
	}

	m.updateStatusBar()
	status := m.statusBar.View()

	used := lipgloss.Height(header) + lipgloss.Height(input) + lipgloss.Height(status)
	if popup != "" {
		used += lipgloss.Height(popup)
	}
	if loading != "" {
		used++
	}
	bodyHeight := max(m.height-used, 3)

	var body string
	if m.fullscreen != "" {
		body = m.renderFullscreen(bodyHeight)
	} else {
		vp := m.viewport
		vp.Height = bodyHeight
		body = vp.View()
	}

	parts := []string{header, body}
	if loading != "" {
		parts = append(parts, loading)
	}
	parts = append(parts, input)
	if popup != "" {
		parts = append(parts, popup)
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	th := m.theme.Theme()
	title := th.HeaderTitle.Render("siemspeak")
	meta := th.HeaderMeta.Render(fmt.Sprintf("%d questions", len(m.session.Entries())))
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(meta)-2, 1)
	return th.Header.Render(title + strings.Repeat(" ", gap) + meta)
}

func (m *Model) updateStatusBar() {
	bar := m.statusBar
	bar.Status = components.StatusReady
	bar.Spinner = ""
	switch {
	case m.session.Loading():
		bar.Status = components.StatusProcessing
		bar.Spinner = m.spinner.View()
	case m.search.Pending():
		bar.Status = components.StatusSearching
		bar.Spinner = m.spinner.View()
	case m.search.Err() != nil:
		bar.Status = components.StatusError
	}
	bar.ActiveFilters = m.search.ActiveCount()
	bar.Filters = m.filterSummary()
	bar.Message = m.notice
}

func (m *Model) filterSummary() string {
	return filter.Summary(m.search.Filters())
}

func (m Model) renderFullscreen(height int) string {
	th := m.theme.Theme()
	out, err := m.viz.View(m.fullscreen)
	if err != nil {
		return th.ErrorTurn.Render(err.Error())
	}
	hint := th.HelpDesc.Render("Esc to leave full screen")
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, th.ChartFrame.Render(out), hint))
}

// =============================================================================
// SCROLLBACK
// =============================================================================

// renderConversation paints every turn. The latest answer is shown in full
// with its charts; earlier answers are previews.
func (m *Model) renderConversation() string {
	th := m.theme.Theme()
	width := max(m.width-4, 20)
	turns := m.session.Turns()

	var sections []string
	if len(turns) == 0 {
		sections = append(sections, th.EmptyState.Render(emptyState))
	}

	var latest *model.ConversationEntry
	if m.pane.entry != nil {
		latest = m.pane.entry
	} else {
		latest = m.session.History().LastEntry()
	}

	for _, turn := range turns {
		switch turn.Role {
		case model.RoleUser:
			sections = append(sections, th.UserTurn.Width(width).Render(
				th.TurnRole.Render(turn.Role.DisplayName())+"  "+turn.Content))

		case model.RoleAssistant:
			if turn.Entry == nil {
				continue
			}
			var body string
			if turn.Entry == latest {
				view := render.Render(turn.Entry.Response, render.Options{
					RowCap:    m.cfg.UI.RowCap,
					Width:     width,
					ShowQuery: m.showQuery,
				})
				body = view.String(th)
				if charts := m.viz.ViewAll(); charts != "" {
					body += "\n\n" + th.ChartFrame.Render(charts)
				}
			} else {
				body = render.Preview(turn.Entry.Response, m.cfg.UI.PreviewRows).String(th)
			}
			sections = append(sections, th.AssistantTurn.Width(width).Render(body))

		case model.RoleError:
			sections = append(sections, th.ErrorTurn.Width(width).Render(turn.Content))

		default:
			sections = append(sections, th.SystemTurn.Width(width).Render(turn.Content))
		}
	}

	if res := m.search.Result(); res != nil {
		payload := &model.ResponsePayload{
			Summary:     "Filtered search: " + filter.Summary(m.search.Applied()),
			TotalEvents: res.TotalCount,
			TableData:   res.Events,
		}
		view := render.Render(payload, render.Options{RowCap: m.cfg.UI.PreviewRows, Width: width})
		sections = append(sections, th.SystemTurn.Width(width).Render(view.String(th)))
	}
	if err := m.search.Err(); err != nil {
		sections = append(sections, th.ErrorTurn.Width(width).Render("Search failed: "+err.Error()))
	}

	return strings.Join(sections, "\n\n")
}

const emptyState = `Ask a question about your security events.

  failed logins in the last 24 hours
  malware detections from yesterday
  vpn connections from foreign countries

Type /help for commands, /filter key=value to narrow the search.`
