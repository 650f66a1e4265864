// Package ui implements the Bubble Tea terminal interface.
//
// The model reads collection snapshots from the shared store on a one-second
// tick and renders the reading list available-first. Network work happens in
// tea.Cmd closures so the update loop never blocks: single-book checks merge
// into the store directly, while the bulk refresh is delegated to the
// refresh.Controller and observed through its event channel.
//
// Status badges use a declarative status→label/icon/color lookup kept apart
// from the ordering logic, so presentation can change without touching merge
// behavior. Errors always land in the footer banner and clear any busy
// indicator; the last good data stays on screen.
package ui
