// Package history merekonsiliasi log transaksi yang tersebar di beberapa
// tabel menjadi satu lini masa audit per aset.
package history

import (
	"time"

	"github.com/asetdesk/asetdesk/internal/record"
)

// TableRef menandai tabel transaksi asal sebuah entri riwayat.
type TableRef string

const (
	// TableAset adalah tabel induk aset.
	TableAset TableRef = "aset"
	// TableAsetLokasi mencatat perubahan lokasi murni; dianggap noise
	// pada lini masa utama.
	TableAsetLokasi TableRef = "aset_lokasi"
	// TablePerbaikan mencatat perbaikan.
	TablePerbaikan TableRef = "perbaikan"
	// TableKerusakan mencatat kerusakan.
	TableKerusakan TableRef = "kerusakan"
	// TablePeminjaman mencatat peminjaman.
	TablePeminjaman TableRef = "peminjaman"
	// TablePenjualan mencatat penjualan.
	TablePenjualan TableRef = "penjualan"
	// TableMutasi mencatat mutasi (transfer) antar lokasi/beban.
	TableMutasi TableRef = "mutasi"
)

// ActionKind membedakan jenis aksi yang terekam di log.
type ActionKind string

const (
	// ActionInput menandai pembuatan record.
	ActionInput ActionKind = "input"
	// ActionEdit menandai perubahan record.
	ActionEdit ActionKind = "edit"
	// ActionDelete menandai penghapusan record.
	ActionDelete ActionKind = "delete"
)

// Status persetujuan otoritatif yang dicek langsung ke record sumber.
const (
	StatusDiajukan  = "diajukan"
	StatusDisetujui = "disetujui"
	StatusDitolak   = "ditolak"
)

// FieldChange menyimpan nilai sebelum/sesudah untuk satu field.
type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// ChangeSet memetakan nama field ke perubahan nilainya.
type ChangeSet map[string]FieldChange

// ApprovalEvent adalah sub-entri keputusan persetujuan yang menempel pada
// sebuah perubahan.
type ApprovalEvent struct {
	Actor    string    `json:"actor"`
	Role     string    `json:"role"`
	Decision string    `json:"decision"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// TransactionRecord adalah satu baris log transaksi mentah. Identitasnya
// adalah (TableRef, RecordID, At); record tidak pernah dimutasi setelah
// dibaca dari sumber.
type TransactionRecord struct {
	TableRef      TableRef        `json:"tabelRef"`
	RecordID      record.FlexID   `json:"recordId"`
	Action        ActionKind      `json:"actionKind"`
	At            time.Time       `json:"timestamp"`
	ActorUsername string          `json:"actorUsername"`
	ActorRole     string          `json:"actorRole"`
	AssetCode     string          `json:"assetCode,omitempty"`
	Changes       ChangeSet       `json:"changeSet,omitempty"`
	Approvals     []ApprovalEvent `json:"approvals,omitempty"`
}

// Entry adalah satu entri lini masa: record transaksi, detail hasil
// resolusi (nil bila gagal), dan ringkasan perubahan siap-render.
type Entry struct {
	Record          TransactionRecord `json:"record"`
	Detail          map[string]any    `json:"detail,omitempty"`
	DetailAvailable bool              `json:"detailAvailable"`
	Changes         []ChangeLine      `json:"changes,omitempty"`
	Approvals       []ApprovalLine    `json:"approvals,omitempty"`
}

// Group mengelompokkan entri per (tahun, bulan). Entri di dalam grup
// terurut menurun berdasar waktu; grup terurut menurun berdasar
// (tahun, bulan).
type Group struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"` // 0-11, mengikuti kontrak front end lama
	Entries []Entry `json:"entries"`
}
