// Package tui renders settings rows as terminal prompts. It implements
// form.Surface, so a form.Sync drives it the same way it drives the HTML
// surface; Run adds the edit, validate and re-prompt loop.
package tui
