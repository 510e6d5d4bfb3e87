package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/jra3/ticketstore/internal/ticket"
)

var colorByName = map[string]*color.Color{
	"white":   color.New(color.FgWhite),
	"yellow":  color.New(color.FgYellow),
	"red":     color.New(color.FgRed),
	"magenta": color.New(color.FgMagenta),
	"green":   color.New(color.FgGreen),
	"blue":    color.New(color.FgBlue),
}

func renderStatus(s ticket.Status) string {
	return renderDisplay(s.DisplayOf())
}

func renderPriority(p ticket.Priority) string {
	return renderDisplay(p.DisplayOf())
}

func renderDisplay(d ticket.Display) string {
	c, ok := colorByName[d.Color]
	if !ok {
		c = color.New(color.FgWhite)
	}
	if d.Emoji != "" {
		return c.Sprintf("%s %s", d.Emoji, d.Label)
	}
	return c.Sprint(d.Label)
}

func printTicketSummary(t *ticket.Ticket) {
	fmt.Printf("%s  %s  [%s] %s  (%s)\n", t.ID[:8], renderStatus(t.Status), renderPriority(t.Priority), t.Title, humanize.Time(t.CreatedAt))
}
