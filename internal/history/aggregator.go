package history

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// sourceFeed adalah satu sumber log yang diambil secara independen.
type sourceFeed struct {
	name  string
	fetch func(ctx context.Context, assetID string) ([]TransactionRecord, error)
}

// aggregate mengambil seluruh sumber log secara paralel. Kegagalan satu
// sumber hanya mengosongkan kontribusi sumber itu; sumber lain tetap
// jalan dan tidak ada error yang keluar dari fungsi ini.
func (s *Service) aggregate(ctx context.Context, assetID string) []TransactionRecord {
	feeds := []sourceFeed{
		{name: string(TableAset), fetch: s.repo.AssetFeed},
		{name: string(TablePerbaikan), fetch: s.collectionFeed(TablePerbaikan)},
		{name: string(TableKerusakan), fetch: s.collectionFeed(TableKerusakan)},
		{name: string(TablePeminjaman), fetch: s.collectionFeed(TablePeminjaman)},
		{name: string(TablePenjualan), fetch: s.collectionFeed(TablePenjualan)},
	}

	results := make([][]TransactionRecord, len(feeds))
	g, gctx := errgroup.WithContext(ctx)
	for i, feed := range feeds {
		g.Go(func() error {
			rows, err := feed.fetch(gctx, assetID)
			if err != nil {
				s.logger.Warn("history source unavailable",
					slog.String("source", feed.name),
					slog.String("asset", assetID),
					slog.Any("error", err))
				if s.metrics != nil {
					s.metrics.SourceFailure(feed.name)
				}
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	// Setiap goroutine mengembalikan nil, jadi Wait hanya menunggu
	// semua sumber selesai (sukses maupun gagal).
	_ = g.Wait()

	var flat []TransactionRecord
	for _, rows := range results {
		flat = append(flat, rows...)
	}
	return flat
}

func (s *Service) collectionFeed(table TableRef) func(ctx context.Context, assetID string) ([]TransactionRecord, error) {
	return func(ctx context.Context, assetID string) ([]TransactionRecord, error) {
		return s.repo.CollectionFeed(ctx, table, assetID)
	}
}
