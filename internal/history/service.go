package history

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/asetdesk/asetdesk/internal/record"
)

// detailResolveConcurrency membatasi jumlah lookup detail paralel per build.
const detailResolveConcurrency = 8

// Repository menyediakan akses baca ke sumber-sumber log transaksi.
type Repository interface {
	// AssetFeed mengambil feed riwayat aset itu sendiri (termasuk baris
	// aset_lokasi dan mutasi yang terekam di sana).
	AssetFeed(ctx context.Context, assetID string) ([]TransactionRecord, error)
	// CollectionFeed mengambil log satu koleksi transaksi untuk sebuah aset.
	CollectionFeed(ctx context.Context, table TableRef, assetID string) ([]TransactionRecord, error)
	DetailSource
	// ApprovalStatus mengambil status persetujuan otoritatif sebuah record.
	ApprovalStatus(ctx context.Context, table TableRef, id record.FlexID) (string, error)
}

// Metrics adalah irisan metrik yang dibutuhkan service ini.
type Metrics interface {
	SourceFailure(source string)
}

// Service mengoordinasikan agregasi, pembentukan lini masa, resolusi
// detail, dan ringkasan perubahan.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics Metrics
}

// NewService membuat service riwayat baru.
func NewService(repo Repository, logger *slog.Logger, metrics Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, metrics: metrics}
}

// Timeline membangun lini masa tergrup untuk satu aset. Kegagalan parsial
// (sumber log atau lookup detail) menurunkan hasil, tidak menggagalkannya;
// error hanya keluar bila context dibatalkan atau repo tidak siap.
func (s *Service) Timeline(ctx context.Context, assetID string) ([]Group, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("history: repository not configured")
	}

	records := s.aggregate(ctx, assetID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := BuildTimeline(records)
	s.resolveDetails(ctx, groups)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for gi := range groups {
		for ei := range groups[gi].Entries {
			entry := &groups[gi].Entries[ei]
			entry.Changes = SummarizeChanges(entry.Record.Changes)
			entry.Approvals = SummarizeApprovals(entry.Record.Approvals)
		}
	}
	return groups, nil
}

// resolveDetails mengisi detail tiap entri secara paralel. Resolver (dan
// memonya) hidup sebatas satu build; entri dengan kunci sama berbagi satu
// lookup lewat memo + singleflight.
func (s *Service) resolveDetails(ctx context.Context, groups []Group) {
	res := newResolver(s.repo, s.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailResolveConcurrency)
	for gi := range groups {
		for ei := range groups[gi].Entries {
			entry := &groups[gi].Entries[ei]
			g.Go(func() error {
				detail := res.Resolve(gctx, entry.Record)
				entry.Detail = detail
				entry.DetailAvailable = detail != nil
				return nil
			})
		}
	}
	_ = g.Wait()
}
