package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asetdesk/asetdesk/internal/history"
	"github.com/asetdesk/asetdesk/internal/record"
)

// PgRepository membaca dan memutasi tabel notifikasi milik layanan upstream.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository membuat repository notifikasi berbasis pgx.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// List mengambil seluruh himpunan notifikasi. Scoping ke principal
// dilakukan di service karena kolom penerima tidak seragam antar generasi.
func (r *PgRepository) List(ctx context.Context) ([]Notification, error) {
	const query = `SELECT id, tipe, COALESCE(tabel_ref, ''), COALESCE(record_id::text, ''),
COALESCE(user_id, 0), COALESCE(username, ''), COALESCE(penerima, ''),
COALESCE(judul, ''), COALESCE(pesan, ''), dibaca, dibuat_pada
FROM notifikasi ORDER BY dibuat_pada DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("notification: list: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n        Notification
			tipe     string
			tabelRef string
			recordID string
			created  time.Time
		)
		if err := rows.Scan(&n.ID, &tipe, &tabelRef, &recordID, &n.RecipientID,
			&n.RecipientUsername, &n.Penerima, &n.Title, &n.Message, &n.IsRead, &created); err != nil {
			return nil, err
		}
		n.Kind = Kind(tipe)
		n.TableRef = history.TableRef(tabelRef)
		n.RecordID = record.FlexID(recordID)
		n.CreatedAt = created
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead menandai satu notifikasi sudah dibaca.
func (r *PgRepository) MarkRead(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `UPDATE notifikasi SET dibaca = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("notification: mark read %d: %w", id, err)
	}
	return nil
}

// Delete meminta penghapusan satu notifikasi di upstream.
func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM notifikasi WHERE id = $1`, id); err != nil {
		return fmt.Errorf("notification: delete %d: %w", id, err)
	}
	return nil
}
