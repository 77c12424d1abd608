package history

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/asetdesk/asetdesk/internal/record"
)

// ChangeLine adalah satu baris perubahan siap-render.
type ChangeLine struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// ApprovalLine adalah satu baris keputusan persetujuan siap-render.
type ApprovalLine struct {
	Actor    string    `json:"actor"`
	Role     string    `json:"role"`
	Decision string    `json:"decision"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

var labelCaser = cases.Title(language.Indonesian)

// SummarizeChanges merender changeSet menjadi baris perubahan terurut
// berdasar label. Fungsi murni tanpa I/O.
func SummarizeChanges(changes ChangeSet) []ChangeLine {
	if len(changes) == 0 {
		return nil
	}
	lines := make([]ChangeLine, 0, len(changes))
	for field, change := range changes {
		lines = append(lines, ChangeLine{
			Field:  field,
			Label:  HumanLabel(field),
			Before: formatValue(change.Before),
			After:  formatValue(change.After),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Label != lines[j].Label {
			return lines[i].Label < lines[j].Label
		}
		return lines[i].Field < lines[j].Field
	})
	return lines
}

// SummarizeApprovals merender sub-entri persetujuan dalam urutan yang
// diberikan sumber (diasumsikan kronologis).
func SummarizeApprovals(events []ApprovalEvent) []ApprovalLine {
	if len(events) == 0 {
		return nil
	}
	lines := make([]ApprovalLine, len(events))
	for i, ev := range events {
		lines[i] = ApprovalLine{
			Actor:    ev.Actor,
			Role:     ev.Role,
			Decision: ev.Decision,
			Reason:   strings.TrimSpace(ev.Reason),
			At:       ev.At,
		}
	}
	return lines
}

// HumanLabel mengubah nama field camelCase menjadi label berjudul,
// mis. "namaBarang" menjadi "Nama Barang".
func HumanLabel(field string) string {
	if field == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	words := strings.ReplaceAll(b.String(), "_", " ")
	return labelCaser.String(strings.Join(strings.Fields(words), " "))
}

// formatValue menormalkan nilai untuk tampilan; nilai bertanggal dipotong
// ke bentuk tanggal-saja memakai aturan yang sama dengan normalizer.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		if d, ok := record.DateOnly(val); ok {
			return d
		}
		if val == "" {
			return "-"
		}
		return val
	case time.Time:
		return val.Format("2006-01-02")
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
