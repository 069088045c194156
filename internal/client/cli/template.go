package cli

import (
	"fmt"
	"text/template"
	"time"

	"github.com/iudanet/wordkeeper/internal/models"
)

var templateFuncs = template.FuncMap{
	"ts":     formatTimestamp,
	"yesno":  yesNo,
	"either": either,
}

func formatTimestamp(ts models.Timestamp) string {
	if ts == models.Epoch {
		return "never"
	}
	return ts.Time().UTC().Format(time.RFC3339)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func either(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

const recordTemplate = `
=== {{.Kind.DisplayName}} Details ===

ID:       {{.GetID}}
{{- range .Fields}}
{{.Name}}: {{.Value}}
{{- end}}
Modified: {{ts .Modified}}
Deleted:  {{yesno .IsDeleted}}
`

const statusTemplate = `=== Status ===

Server:     {{.Server}}
Database:   {{.Database}}
Client ID:  {{.Device.ClientID}}
User:       {{either .Device.Username "-"}}{{if not .Device.LoggedIn}} (not logged in){{end}}
Registered: {{yesno .State.Registered}}
Last pull:  {{ts .State.LastPull}}
Last push:  {{ts .State.LastPush}}
Last run:   {{.LastRun}}
Pending:    {{.Pending}} record(s)
{{- with .Remote}}

Server cursors:
  Last pull: {{ts .LastPull}}
  Last push: {{ts .LastPush}}
{{- end}}
`

const syncResultTemplate = `✓ Synchronization completed

Pulled:           {{.Pulled}}
Pushed:           {{.Pushed}}
{{- if .Stale}}
Stale:            {{.Stale}}
{{- end}}
{{- if .Rejected}}
Rejected:         {{.Rejected}}
{{- end}}
{{- if .Kept}}
Kept local:       {{.Kept}}
{{- end}}
{{- if .Discarded}}
Discarded local:  {{.Discarded}}
{{- end}}
{{- if .Cascaded}}
Cascaded:         {{.Cascaded}}
{{- end}}
Conflicts pulled: {{.ConflictsPulled}}
Conflicts pushed: {{.ConflictsPushed}}
`

const conflictTemplate = `
Conflict:  {{.ID}}
Record:    {{.TargetID}}
Device:    {{.ClientID}}
Reported:  {{ts .ReportedAt}}
Discarded: {{.Detail}}
`

var (
	recordTmpl     = template.Must(template.New("record").Funcs(templateFuncs).Parse(recordTemplate))
	statusTmpl     = template.Must(template.New("status").Funcs(templateFuncs).Parse(statusTemplate))
	syncResultTmpl = template.Must(template.New("sync").Funcs(templateFuncs).Parse(syncResultTemplate))
	conflictTmpl   = template.Must(template.New("conflict").Funcs(templateFuncs).Parse(conflictTemplate))
)

func (c *Cli) render(tmpl *template.Template, data any) error {
	if err := tmpl.Execute(c.io, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return nil
}
