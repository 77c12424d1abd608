// Package notification merekonsiliasi notifikasi dari layanan upstream
// dengan status persetujuan otoritatif dan himpunan sembunyi lokal.
package notification

import (
	"time"

	"github.com/asetdesk/asetdesk/internal/history"
	"github.com/asetdesk/asetdesk/internal/record"
)

// Kind membedakan tipe notifikasi.
type Kind string

const (
	// KindApproval meminta keputusan persetujuan dari penerima.
	KindApproval Kind = "approval"
	// KindApproved mengabarkan persetujuan.
	KindApproved Kind = "approved"
	// KindRejected mengabarkan penolakan.
	KindRejected Kind = "rejected"
	// KindError mengabarkan kegagalan proses.
	KindError Kind = "error"
	// KindInfo adalah pengumuman biasa.
	KindInfo Kind = "info"
)

// Notification adalah satu baris notifikasi milik layanan upstream;
// service ini hanya membaca dan meminta tandai-dibaca/hapus.
type Notification struct {
	ID        int64            `json:"id"`
	Kind      Kind             `json:"tipe"`
	TableRef  history.TableRef `json:"tabelRef,omitempty"`
	RecordID  record.FlexID    `json:"recordId,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`

	// Kolom penerima tumbuh organik di upstream; tiga generasi field
	// masih beredar dan diperiksa berurutan saat scoping.
	RecipientID       int64  `json:"recipientId,omitempty"`
	RecipientUsername string `json:"recipientUsername,omitempty"`
	Penerima          string `json:"penerima,omitempty"`
}

// HasReference melaporkan apakah notifikasi menunjuk record tertentu.
func (n Notification) HasReference() bool {
	return n.TableRef != "" && !n.RecordID.IsZero()
}
