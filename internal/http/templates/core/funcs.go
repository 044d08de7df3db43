// Package core provides the template helpers shared by every page.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/initcareer/init-web/internal/domain/model"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":   deps.ContentTemplateFor,
		"add":           func(a, b int) int { return a + b },
		"sub":           func(a, b int) int { return a - b },
		"contains":      strings.Contains,
		"join":          strings.Join,
		"formatNumber":  formatNumberTemplate,
		"truncateText":  TruncateText,
		"initial":       Initial,
		"percent":       Percent,
		"noticeClass":   NoticeClass,
		"badgeClass":    BadgeClass,
		"deadlineLabel": DeadlineLabel,
		"deref":         Deref,
		"dict":          Dict,
		"daysUntil":     func(deadline string) int { return model.DaysUntilDeadline(deadline, time.Now()) },
		"deadlineBadge": model.DeadlineBadge,
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during ExecuteTemplate.
		return template.HTML(buf.String()), nil
	}

	funcs["toJSON"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// formatNumberTemplate formats integers with comma separators for thousands.
func formatNumberTemplate(v any) string {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case int32:
		n = int64(x)
	default:
		return fmt.Sprint(v)
	}

	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	prefix := len(s) % 3
	if prefix == 0 {
		prefix = 3
	}
	b.WriteString(s[:prefix])
	for i := prefix; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// TruncateText truncates a string to at most maxLen runes, ending with an ellipsis when cut.
func TruncateText(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen == 1 {
		return string(runes[:1])
	}
	return string(runes[:maxLen-1]) + "…"
}

// Initial is the avatar letter for a display name.
func Initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return strings.ToUpper(string(r))
}

// Percent returns part/total as a whole percentage clamped to 0..100.
func Percent(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	p := part * 100 / total
	if p > 100 {
		return 100
	}
	return p
}

// NoticeClass maps a notice level to its alert class.
func NoticeClass(level model.NoticeLevel) string {
	switch level {
	case model.NoticeSuccess:
		return "alert-success"
	case model.NoticeWarning:
		return "alert-warning"
	case model.NoticeError:
		return "alert-danger"
	default:
		return "alert-info"
	}
}

// BadgeClass maps a deadline badge variant to its CSS class.
func BadgeClass(v model.BadgeVariant) string {
	if v == "" {
		v = model.BadgeMuted
	}
	return "badge-" + string(v)
}

// DeadlineLabel renders days left as a D-day label.
func DeadlineLabel(days int) string {
	switch days {
	case model.DeadlineDaysUnknown:
		return "No deadline"
	case model.DeadlineDaysPassed:
		return "Closed"
	case 0:
		return "D-Day"
	default:
		return "D-" + strconv.Itoa(days)
	}
}

// Deref reads an optional bool, treating nil as false.
func Deref(b *bool) bool {
	return b != nil && *b
}

// Dict builds a map from alternating keys and values so a partial can be
// invoked with more than one argument.
func Dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}
