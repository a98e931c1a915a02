package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Item.Ticker}} reports today</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .card {
      max-width: 560px;
      margin: 0 auto;
      background: #ffffff;
      border: 1px solid #e5e7eb;
      border-radius: 8px;
      overflow: hidden;
    }

    .banner {
      padding: 20px 24px;
      background: #0b1426;
      color: #ffffff;
    }

    .symbol {
      font-size: 26px;
      font-weight: 700;
      letter-spacing: 0.05em;
    }

    .company {
      font-size: 15px;
      opacity: 0.85;
    }

    .pill {
      display: inline-block;
      margin-top: 10px;
      padding: 4px 10px;
      font-size: 11px;
      font-weight: 600;
      border-radius: 999px;
      background: #3b82f6;
      text-transform: uppercase;
      letter-spacing: 0.05em;
    }

    .body {
      padding: 16px 24px;
      font-size: 14px;
    }

    .row {
      padding: 6px 0;
      border-bottom: 1px solid #f3f4f6;
    }

    .label {
      display: inline-block;
      width: 120px;
      color: #6b7280;
    }

    .ir-link {
      display: inline-block;
      margin-top: 14px;
      padding: 10px 20px;
      font-weight: 600;
      color: #ffffff !important;
      background: #0b1426;
      border-radius: 6px;
      text-decoration: none;
    }

    .footer {
      padding: 12px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
    }
  </style>
</head>
<body>
  <div class="card">
    <div class="banner">
      <div class="symbol">{{.Item.Ticker}}</div>
      <div class="company">{{.Item.CompanyName}}</div>
      <span class="pill">Reports {{session .Item.MarketSession}}</span>
    </div>

    <div class="body">
      <div class="row"><span class="label">Earnings date</span>{{.Item.EarningsDate}}</div>
      <div class="row"><span class="label">Session</span>{{.Item.MarketSession}}</div>
      {{with .Item.UpdatedAt}}<div class="row"><span class="label">Last checked</span>{{.}}</div>{{end}}
      {{with .Item.IRURL}}
      <a href="{{.}}" class="ir-link" target="_blank" rel="noopener">Investor Relations →</a>
      {{end}}
    </div>

    <div class="footer">
      Sent by earningswatch for {{.Day}}
    </div>
  </div>
</body>
</html>`
