package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asetdesk/asetdesk/internal/record"
	"github.com/asetdesk/asetdesk/internal/shared"
)

// pgInvalidTextRepresentation adalah SQLSTATE saat identifier string
// dipaksa ke kolom numerik; ini kelas "salah jenis kunci" yang memicu
// rantai fallback resolver.
const pgInvalidTextRepresentation = "22P02"

// PgRepository membaca tabel-tabel log transaksi di PostgreSQL. Tabelnya
// diisi oleh layanan register aset eksternal; repository ini read-only
// kecuali untuk tabel notifikasi.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository membuat repository riwayat berbasis pgx.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

var detailTables = map[TableRef]string{
	TableAset:       "aset",
	TablePerbaikan:  "perbaikan",
	TableKerusakan:  "kerusakan",
	TablePeminjaman: "peminjaman",
	TablePenjualan:  "penjualan",
	TableMutasi:     "mutasi",
}

var logTables = map[TableRef]string{
	TablePerbaikan:  "log_perbaikan",
	TableKerusakan:  "log_kerusakan",
	TablePeminjaman: "log_peminjaman",
	TablePenjualan:  "log_penjualan",
}

// AssetFeed mengambil feed riwayat milik aset: baris aset, aset_lokasi,
// dan mutasi yang terekam pada log induk.
func (r *PgRepository) AssetFeed(ctx context.Context, assetID string) ([]TransactionRecord, error) {
	const query = `SELECT tabel_asal, record_id::text, aksi, aktor, aktor_role, waktu, COALESCE(kode_aset, ''), perubahan
FROM log_aset WHERE aset_id = $1 ORDER BY waktu DESC`
	rows, err := r.pool.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("history: asset feed: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows, "")
}

// CollectionFeed mengambil log satu koleksi transaksi untuk sebuah aset.
func (r *PgRepository) CollectionFeed(ctx context.Context, table TableRef, assetID string) ([]TransactionRecord, error) {
	logTable, ok := logTables[table]
	if !ok {
		return nil, fmt.Errorf("history: no log table for %q", table)
	}
	query := fmt.Sprintf(`SELECT record_id::text, aksi, aktor, aktor_role, waktu, COALESCE(kode_aset, ''), perubahan
FROM %s WHERE aset_id = $1 ORDER BY waktu DESC`, logTable)
	rows, err := r.pool.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("history: %s feed: %w", table, err)
	}
	defer rows.Close()
	return scanRecords(rows, table)
}

// DetailByID mengambil satu record penuh dari tabel pemiliknya.
func (r *PgRepository) DetailByID(ctx context.Context, table TableRef, id record.FlexID) (map[string]any, error) {
	name, ok := detailTables[table]
	if !ok {
		return nil, fmt.Errorf("history: unknown table %q: %w", table, shared.ErrNotFound)
	}
	query := fmt.Sprintf(`SELECT row_to_json(t) FROM %s t WHERE t.id = $1::bigint`, name)
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, id.String()).Scan(&raw); err != nil {
		return nil, classifyLookupErr(fmt.Sprintf("history: detail %s/%s", table, id), err)
	}
	var detail map[string]any
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("history: decode detail %s/%s: %w", table, id, err)
	}
	return detail, nil
}

// AssetsByCode mengambil kandidat aset berdasarkan business key kode aset.
func (r *PgRepository) AssetsByCode(ctx context.Context, code string) ([]map[string]any, error) {
	const query = `SELECT row_to_json(t) FROM aset t WHERE t.kode_aset = $1 ORDER BY t.id`
	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("history: assets by code: %w", err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var item map[string]any
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ApprovalStatus membaca status persetujuan otoritatif sebuah record.
// Lookup memakai surrogate key dulu; untuk tabel aset, kunci non-numerik
// dicoba ulang sebagai business key.
func (r *PgRepository) ApprovalStatus(ctx context.Context, table TableRef, id record.FlexID) (string, error) {
	name, ok := detailTables[table]
	if !ok {
		return "", fmt.Errorf("history: unknown table %q: %w", table, shared.ErrNotFound)
	}
	if _, numeric := id.Int64(); numeric {
		query := fmt.Sprintf(`SELECT status_persetujuan FROM %s WHERE id = $1::bigint`, name)
		var status string
		if err := r.pool.QueryRow(ctx, query, id.String()).Scan(&status); err != nil {
			return "", classifyLookupErr(fmt.Sprintf("history: status %s/%s", table, id), err)
		}
		return status, nil
	}
	if table != TableAset {
		return "", fmt.Errorf("history: status %s/%s: %w", table, id, shared.ErrBadIdentifier)
	}
	const query = `SELECT status_persetujuan FROM aset WHERE kode_aset = $1 ORDER BY id LIMIT 1`
	var status string
	if err := r.pool.QueryRow(ctx, query, id.String()).Scan(&status); err != nil {
		return "", classifyLookupErr(fmt.Sprintf("history: status aset/%s", id), err)
	}
	return status, nil
}

func scanRecords(rows pgx.Rows, fixed TableRef) ([]TransactionRecord, error) {
	var out []TransactionRecord
	for rows.Next() {
		var (
			tableRaw  string
			idText    string
			aksi      string
			aktor     string
			aktorRole string
			waktu     time.Time
			kode      string
			perubahan []byte
		)
		dest := []any{&idText, &aksi, &aktor, &aktorRole, &waktu, &kode, &perubahan}
		if fixed == "" {
			dest = append([]any{&tableRaw}, dest...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		table := fixed
		if table == "" {
			table = TableRef(tableRaw)
		}
		changes, approvals, err := parseChangeSet(perubahan)
		if err != nil {
			return nil, fmt.Errorf("history: decode changeset %s/%s: %w", table, idText, err)
		}
		out = append(out, TransactionRecord{
			TableRef:      table,
			RecordID:      record.FlexID(idText),
			Action:        ActionKind(aksi),
			At:            waktu,
			ActorUsername: aktor,
			ActorRole:     aktorRole,
			AssetCode:     kode,
			Changes:       changes,
			Approvals:     approvals,
		})
	}
	return out, rows.Err()
}

// parseChangeSet membongkar kolom perubahan. Daftar "approvals" yang
// tertanam di dalamnya dipisahkan menjadi sub-entri persetujuan.
func parseChangeSet(data []byte) (ChangeSet, []ApprovalEvent, error) {
	if len(data) == 0 {
		return nil, nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	var approvals []ApprovalEvent
	if list, ok := raw["approvals"]; ok {
		if err := json.Unmarshal(list, &approvals); err != nil {
			return nil, nil, err
		}
		delete(raw, "approvals")
	}
	if len(raw) == 0 {
		return nil, approvals, nil
	}
	changes := make(ChangeSet, len(raw))
	for field, msg := range raw {
		var change FieldChange
		if err := json.Unmarshal(msg, &change); err != nil {
			return nil, nil, err
		}
		changes[field] = change
	}
	return changes, approvals, nil
}

func classifyLookupErr(prefix string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", prefix, shared.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation {
		return fmt.Errorf("%s: %w", prefix, shared.ErrBadIdentifier)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
