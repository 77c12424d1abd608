package history

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/asetdesk/asetdesk/internal/record"
	"github.com/asetdesk/asetdesk/internal/shared"
)

// DetailSource menyediakan lookup detail record.
type DetailSource interface {
	// DetailByID mengambil satu record dari tabel pemiliknya.
	DetailByID(ctx context.Context, table TableRef, id record.FlexID) (map[string]any, error)
	// AssetsByCode mengambil kandidat aset berdasarkan business key.
	AssetsByCode(ctx context.Context, code string) ([]map[string]any, error)
}

// resolver menyelesaikan detail per entri dengan rantai fallback dan
// memoisasi per satu kali build lini masa. Instance tidak dipakai lintas
// build; cache-nya dibuang bersama resolvernya.
type resolver struct {
	source DetailSource
	logger *slog.Logger

	flight singleflight.Group
	mu     sync.Mutex
	memo   map[string]map[string]any
	seen   map[string]bool
}

func newResolver(source DetailSource, logger *slog.Logger) *resolver {
	return &resolver{
		source: source,
		logger: logger,
		memo:   make(map[string]map[string]any),
		seen:   make(map[string]bool),
	}
}

// Resolve mengembalikan detail ternormalisasi untuk record, atau nil bila
// tidak terselesaikan. Hasil (termasuk kegagalan) dimemo per
// (tabelRef, recordId) sehingga entri berulang tidak memicu fetch ulang.
func (r *resolver) Resolve(ctx context.Context, rec TransactionRecord) map[string]any {
	key := string(rec.TableRef) + "#" + rec.RecordID.String()

	r.mu.Lock()
	if r.seen[key] {
		detail := r.memo[key]
		r.mu.Unlock()
		return detail
	}
	r.mu.Unlock()

	result, _, _ := r.flight.Do(key, func() (any, error) {
		return r.lookup(ctx, rec), nil
	})
	detail, _ := result.(map[string]any)

	r.mu.Lock()
	if !r.seen[key] {
		r.seen[key] = true
		r.memo[key] = detail
	}
	r.mu.Unlock()
	return detail
}

func (r *resolver) lookup(ctx context.Context, rec TransactionRecord) map[string]any {
	detail, err := r.source.DetailByID(ctx, rec.TableRef, rec.RecordID)
	if err == nil {
		return record.NormalizeMap(detail)
	}

	if rec.TableRef != TableAset || !lookupMiss(err) || rec.AssetCode == "" {
		r.logger.Debug("detail unresolved",
			slog.String("table", string(rec.TableRef)),
			slog.String("id", rec.RecordID.String()),
			slog.Any("error", err))
		return nil
	}

	candidates, err := r.source.AssetsByCode(ctx, rec.AssetCode)
	if err != nil {
		r.logger.Debug("detail fallback failed",
			slog.String("code", rec.AssetCode),
			slog.Any("error", err))
		return nil
	}
	match := bestAssetMatch(candidates, rec.RecordID, rec.AssetCode)
	if match == nil {
		return nil
	}
	return record.NormalizeMap(match)
}

// lookupMiss mengenali kelas error yang layak memicu fallback: record
// tidak ada, atau pemanggil memakai jenis identifier yang salah.
func lookupMiss(err error) bool {
	return errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrBadIdentifier)
}

// bestAssetMatch memilih kandidat terbaik: id numerik yang sama, lalu
// business key yang sama, lalu kandidat tunggal.
func bestAssetMatch(candidates []map[string]any, id record.FlexID, code string) map[string]any {
	if wanted, ok := id.Int64(); ok {
		for _, c := range candidates {
			if got, ok := asInt64(c["id"]); ok && got == wanted {
				return c
			}
		}
	}
	for _, c := range candidates {
		if s, ok := stringField(c, "kodeAset", "kode_aset", "KodeAset"); ok && s == code {
			return c
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

func asInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	case json.Number:
		n, err := val.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func stringField(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
