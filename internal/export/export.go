// Package export renders read-only member reports. Every renderer is a pure
// function over the member snapshot handed to it; nothing is persisted.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"upnd.org/internal/ids"
	"upnd.org/internal/member"
)

var csvHeader = []string{
	"membership_id", "full_name", "nrc_number", "phone", "email",
	"province", "district", "constituency", "ward", "branch", "section",
	"status", "registered_at",
}

// CSV renders the member list as comma-separated rows with a header line.
func CSV(members []member.Member) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, m := range members {
		row := []string{
			m.MembershipID, m.FullName, m.NRCNumber, m.Phone, m.Email,
			m.Jurisdiction.Province, m.Jurisdiction.District,
			m.Jurisdiction.Constituency, m.Jurisdiction.Ward,
			m.Jurisdiction.Branch, m.Jurisdiction.Section,
			string(m.Status), m.RegisteredAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Report is the JSON export envelope.
type Report struct {
	ReportID    string          `json:"report_id"`
	ExportedAt  time.Time       `json:"exported_at"`
	RecordCount int             `json:"record_count"`
	Members     []member.Member `json:"members"`
}

// JSON renders a pretty-printed structured dump with export metadata.
func JSON(members []member.Member, now time.Time) ([]byte, error) {
	report := Report{
		ReportID:    ids.New(),
		ExportedAt:  now.UTC(),
		RecordCount: len(members),
		Members:     members,
	}
	return json.MarshalIndent(report, "", "  ")
}

// ParseJSON reads a JSON export back. Used by tests and import tooling.
func ParseJSON(data []byte) (Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("parse export: %w", err)
	}
	return report, nil
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Membership Report</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #b30000; color: #fff; }
tr:nth-child(even) { background: #f6f6f6; }
</style>
</head>
<body>
<h1>Membership Report</h1>
<p>Generated {{.ExportedAt.Format "2006-01-02 15:04"}} UTC &middot; {{.RecordCount}} records</p>
<table>
<tr><th>Membership ID</th><th>Full Name</th><th>NRC</th><th>Province</th><th>District</th><th>Status</th><th>Registered</th></tr>
{{range .Members}}<tr>
<td>{{.MembershipID}}</td>
<td>{{.FullName}}</td>
<td>{{.NRCNumber}}</td>
<td>{{.Jurisdiction.Province}}</td>
<td>{{.Jurisdiction.District}}</td>
<td>{{.Status}}</td>
<td>{{.RegisteredAt.Format "2006-01-02"}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))

// HTML renders a styled table intended for printing or PDF conversion.
func HTML(members []member.Member, now time.Time) ([]byte, error) {
	report := Report{
		ExportedAt:  now.UTC(),
		RecordCount: len(members),
		Members:     members,
	}
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
