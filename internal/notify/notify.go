/*
Package notify announces watchlist companies that report earnings today, on
the console and by email.
*/
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shanehull/earningswatch/internal/types"
)

// Notifier delivers one announcement per due item.
type Notifier interface {
	Notify(ctx context.Context, items []types.WatchItem) error
}

type NotificationData struct {
	Item types.WatchItem
	Day  string
}

type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

func sessionLabel(s types.Session) string {
	switch s {
	case types.PreMarket:
		return "before the open"
	case types.PostMarket:
		return "after the close"
	}
	return "session unknown"
}

func headline(item types.WatchItem) string {
	return fmt.Sprintf("%s (%s) reports earnings today, %s", item.CompanyName, item.Ticker, sessionLabel(item.MarketSession))
}

type ConsoleNotifier struct {
	out io.Writer
}

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (c *ConsoleNotifier) Notify(_ context.Context, items []types.WatchItem) error {
	ReportDue(c.out, items)
	return nil
}

// ReportDue prints the due items between banners.
func ReportDue(out io.Writer, items []types.WatchItem) {
	if len(items) == 0 {
		fmt.Fprintln(out, "\n-------------------------------------------")
		fmt.Fprintln(out, "No tracked companies report earnings today.")
		fmt.Fprintln(out, "-------------------------------------------")
		return
	}

	fmt.Fprintln(out, "\n===========================================")
	fmt.Fprintf(out, "📅 %d EARNINGS RELEASE(S) TODAY\n", len(items))
	fmt.Fprintln(out, "===========================================")

	for i, item := range items {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("\n--- #%d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Ticker:  %s\n", item.Ticker))
		sb.WriteString(fmt.Sprintf("Company: %s\n", item.CompanyName))
		sb.WriteString(fmt.Sprintf("Date:    %s\n", item.EarningsDate))
		sb.WriteString(fmt.Sprintf("Session: %s\n", item.MarketSession))
		if ir := item.IR(); ir != "" {
			sb.WriteString(fmt.Sprintf("IR:      %s\n", ir))
		}
		fmt.Fprint(out, sb.String())
	}

	fmt.Fprintln(out, "\n===========================================")
}
