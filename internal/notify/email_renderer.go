package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// HTMLEmailRenderer renders notifications as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Funcs(template.FuncMap{
		"session": sessionLabel,
	}).Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

func (r *HTMLEmailRenderer) Render(data NotificationData) (*RenderedMessage, error) {
	subject := fmt.Sprintf("Earnings Today: %s - %s", data.Item.Ticker, data.Item.CompanyName)

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

func renderPlainText(data NotificationData) string {
	item := data.Item
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s - %s\n", item.Ticker, item.CompanyName))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString(headline(item) + "\n\n")
	sb.WriteString(fmt.Sprintf("Date: %s\n", item.EarningsDate))
	sb.WriteString(fmt.Sprintf("Session: %s\n", item.MarketSession))
	if ir := item.IR(); ir != "" {
		sb.WriteString(fmt.Sprintf("Investor Relations: %s\n", ir))
	}
	if item.UpdatedAt != nil {
		sb.WriteString(fmt.Sprintf("Last checked: %s\n", *item.UpdatedAt))
	}

	return sb.String()
}
