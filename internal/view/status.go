// Package view renders the server's HTML pages
package view

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// RoomRow is one live room on the status page
type RoomRow struct {
	ProjectID    string
	Participants int
}

// StatusData is everything the status page shows
type StatusData struct {
	Rooms     []RoomRow
	Generator string
	Started   time.Time
	Now       time.Time
}

// Participants sums the participants of every room
func (d StatusData) Participants() int {
	total := 0
	for _, r := range d.Rooms {
		total += r.Participants
	}
	return total
}

// Status renders the server status page
func Status(data StatusData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, statusHead); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w,
			`<main><h1>goat-collab</h1><p class="meta">Generator: %s &middot; up %s</p>`+
				`<section class="cards"><div class="card"><b>%d</b><span>active rooms</span></div>`+
				`<div class="card"><b>%d</b><span>participants</span></div></section>`,
			templ.EscapeString(data.Generator),
			templ.EscapeString(data.Now.Sub(data.Started).Truncate(time.Second).String()),
			len(data.Rooms),
			data.Participants(),
		)
		if err != nil {
			return err
		}

		if err := roomTable(w, data.Rooms); err != nil {
			return err
		}

		_, err = io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func roomTable(w io.Writer, rooms []RoomRow) error {
	if len(rooms) == 0 {
		_, err := io.WriteString(w, `<p class="empty">No active rooms</p>`)
		return err
	}

	if _, err := io.WriteString(w, `<table><thead><tr><th>Project</th><th>Participants</th></tr></thead><tbody>`); err != nil {
		return err
	}
	for _, r := range rooms {
		if _, err := fmt.Fprintf(w, `<tr><td><code>%s</code></td><td>%d</td></tr>`, templ.EscapeString(r.ProjectID), r.Participants); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</tbody></table>`)
	return err
}

const statusHead = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
	`<meta name="viewport" content="width=device-width, initial-scale=1">` +
	`<title>goat-collab status</title><style>` +
	`body{font-family:system-ui,sans-serif;background:#0f1115;color:#e6e6e6;margin:0}` +
	`main{max-width:720px;margin:3rem auto;padding:0 1rem}` +
	`.meta{color:#9aa0a6}.cards{display:flex;gap:1rem;margin:1.5rem 0}` +
	`.card{flex:1;background:#1a1d24;border-radius:8px;padding:1rem}` +
	`.card b{display:block;font-size:2rem;color:#00e676}` +
	`table{width:100%;border-collapse:collapse}th,td{text-align:left;padding:.5rem;border-bottom:1px solid #2a2e37}` +
	`.empty{color:#9aa0a6}` +
	`</style></head><body>`
