package rulelist

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// HeaderLines is the number of lines reserved for the metadata header.
const HeaderLines = 3

const (
	DefaultTitle         = "# 规则列表"
	DefaultUpdatedMarker = "# 更新时间: "
	DefaultCountMarker   = "# 规则数量: "
)

// Header describes the fixed three-line metadata header of a rule-list file.
type Header struct {
	// Title is used only when the file has no first line.
	Title         string
	UpdatedMarker string
	CountMarker   string
}

// DefaultHeader returns the header layout used by the published lists.
func DefaultHeader() Header {
	return Header{
		Title:         DefaultTitle,
		UpdatedMarker: DefaultUpdatedMarker,
		CountMarker:   DefaultCountMarker,
	}
}

// CountRules counts the rule lines of a body (blank lines and comments excluded).
func CountRules(body []string) int {
	return lo.CountBy(body, IsRule)
}

// Rewrite replaces the first three lines with a regenerated header: the
// title is kept (or defaulted), the date and the rule count of the body are
// recomputed. Lines from index 3 onward are appended unchanged.
func (h Header) Rewrite(lines []string, now time.Time) []string {
	var body []string
	if len(lines) > HeaderLines {
		body = lines[HeaderLines:]
	}

	title := h.Title
	if len(lines) >= 1 {
		title = lines[0]
	}

	out := make([]string, 0, HeaderLines+len(body))
	out = append(out,
		title,
		h.UpdatedMarker+now.Format(time.DateOnly),
		h.CountMarker+strconv.Itoa(CountRules(body)),
	)
	return append(out, body...)
}

// Fingerprint digests the content as it would be written: every line
// followed by a newline.
func Fingerprint(lines []string) string {
	m := sha256.New()
	for _, line := range lines {
		m.Write([]byte(line))
		m.Write([]byte{'\n'})
	}
	return hex.EncodeToString(m.Sum(nil))
}
