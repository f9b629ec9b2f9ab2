package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// MaxMessageLen is the Telegram limit for one message text.
const MaxMessageLen = 4096

const (
	preOpen  = "<pre>"
	preClose = "</pre>"
)

// FormatReportHeader is the first lines of a report message.
func FormatReportHeader(source string, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Pivot first-direction report</b> | %s\n", at.Format("2006-01-02 15:04")))
	if source != "" {
		b.WriteString(fmt.Sprintf("Source: <code>%s</code>\n", html.EscapeString(source)))
	}
	return b.String()
}

// ReportMessages turns a plain-text report into HTML messages of at most MaxMessageLen
// bytes each. The report is split on line boundaries, every part is its own <pre> block
// and only the first carries the header.
func ReportMessages(source string, at time.Time, report string) []string {
	prefix := FormatReportHeader(source, at) + "\n" + preOpen
	var (
		msgs []string
		body strings.Builder
	)
	flush := func() {
		msgs = append(msgs, prefix+body.String()+preClose)
		body.Reset()
		prefix = preOpen
	}

	for _, line := range strings.Split(strings.TrimRight(report, "\n"), "\n") {
		esc := html.EscapeString(line)
		if body.Len() > 0 && len(prefix)+body.Len()+1+len(esc)+len(preClose) > MaxMessageLen {
			flush()
		}
		if body.Len() > 0 {
			body.WriteByte('\n')
		}
		body.WriteString(esc)
	}
	flush()
	return msgs
}

// FormatFailure formats a failed scheduled run.
func FormatFailure(at time.Time, err error) string {
	return fmt.Sprintf("❌ <b>Pivot analysis failed</b> | %s\n\n%s",
		at.Format("2006-01-02 15:04"), html.EscapeString(err.Error()))
}
