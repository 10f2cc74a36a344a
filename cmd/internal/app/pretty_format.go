package app

import (
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	ansiReset   = "\x1b[0m"
	ansiBright  = "\x1b[1m"
	ansiDim     = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

const (
	defaultLogWidth = 100
	minLogWidth     = 40
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRe.ReplaceAllString(s, "") }

// visualLen counts printed runes, ignoring escape sequences.
func visualLen(s string) int { return utf8.RuneCountInString(stripANSI(s)) }

// terminalWidth prefers STATION_LOG_WIDTH, then COLUMNS. Values below
// minLogWidth are ignored.
func (h *prettyHandler) terminalWidth() int {
	for _, key := range []string{"STATION_LOG_WIDTH", "COLUMNS"} {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && n >= minLogWidth {
			return n
		}
	}
	return defaultLogWidth
}

// wrapSegments packs segments into lines of at most width visible runes.
// Continuation lines start with indent. A segment wider than a line is
// truncated with an ellipsis.
func wrapSegments(segs []string, sep string, width int, indent string) []string {
	var (
		lines []string
		cur   string
		open  bool
	)
	for _, s := range segs {
		if !open {
			prefix := ""
			if len(lines) > 0 {
				prefix = indent
			}
			cur = prefix + truncateVisual(s, width-visualLen(prefix))
			open = true
			continue
		}
		if visualLen(cur)+visualLen(sep)+visualLen(s) <= width {
			cur += sep + s
			continue
		}
		lines = append(lines, cur)
		cur = indent + truncateVisual(s, width-visualLen(indent))
	}
	if open {
		lines = append(lines, cur)
	}
	return lines
}

func truncateVisual(s string, limit int) string {
	if limit <= 1 || visualLen(s) <= limit {
		return s
	}
	plain := []rune(stripANSI(s))
	return string(plain[:limit-1]) + "…"
}

func valueToInt64(v slog.Value) (int64, bool) {
	switch v.Kind() {
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		u := v.Uint64()
		if u > 1<<62 {
			return 0, false
		}
		return int64(u), true // #nosec G115 -- bounded above.
	case slog.KindFloat64:
		return int64(v.Float64()), true
	case slog.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func paint(s, code string, color bool) string {
	if !color || s == "" {
		return s
	}
	return code + s + ansiReset
}

func colorizeHTTPMethod(m string, color bool) string {
	switch m {
	case "GET", "HEAD":
		return paint(m, ansiGreen, color)
	case "POST":
		return paint(m, ansiBlue, color)
	case "PUT", "PATCH":
		return paint(m, ansiYellow, color)
	case "DELETE":
		return paint(m, ansiRed, color)
	default:
		return paint(m, ansiMagenta, color)
	}
}

func colorizeStatusCode(code int, color bool) string {
	return colorizeStatusClass(statusClass(code), color, strconv.Itoa(code))
}

// colorizeStatusClass paints label (or class itself) by status class.
func colorizeStatusClass(class string, color bool, label ...string) string {
	text := class
	if len(label) > 0 {
		text = label[0]
	}
	switch class {
	case "2xx":
		return paint(text, ansiGreen, color)
	case "3xx":
		return paint(text, ansiCyan, color)
	case "4xx":
		return paint(text, ansiYellow, color)
	case "5xx":
		return paint(text, ansiRed, color)
	default:
		return text
	}
}

func colorizeDurationMS(ms int64, color bool) string {
	text := strconv.FormatInt(ms, 10) + "ms"
	switch {
	case ms >= 1000:
		return paint(text, ansiRed, color)
	case ms >= 250:
		return paint(text, ansiYellow, color)
	default:
		return paint(text, ansiDim, color)
	}
}

func colorizeResult(result string, color bool) string {
	switch result {
	case "success", "ok":
		return paint(result, ansiGreen, color)
	case "redirect":
		return paint(result, ansiCyan, color)
	case "client_error":
		return paint(result, ansiYellow, color)
	case "server_error", "error", "fail":
		return paint(result, ansiRed, color)
	default:
		return quoteIfNeeded(result)
	}
}
