package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/asetdesk/asetdesk/internal/history"
	"github.com/asetdesk/asetdesk/internal/record"
	"github.com/asetdesk/asetdesk/internal/shared"
)

// Repository adalah kontrak baca/mutasi ke layanan notifikasi upstream.
type Repository interface {
	List(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// StatusSource membaca status persetujuan otoritatif sebuah record.
type StatusSource interface {
	ApprovalStatus(ctx context.Context, table history.TableRef, id record.FlexID) (string, error)
}

// HiddenSet adalah himpunan sembunyi persisten per principal.
type HiddenSet interface {
	Load(ctx context.Context, scope string) (map[int64]struct{}, error)
	Hide(ctx context.Context, scope string, ids ...int64) error
	Prune(ctx context.Context, scope string, live map[int64]struct{}) (map[int64]struct{}, error)
	Clear(ctx context.Context, scope string) error
}

// Metrics adalah irisan metrik yang dibutuhkan reconciler.
type Metrics interface {
	DegradedFallback()
}

// recipientFields adalah rantai accessor kolom penerima, diurutkan dari
// generasi terbaru. Field non-kosong pertama yang menentukan; tidak ada
// percabangan ad hoc di tempat lain.
var recipientFields = []struct {
	name  string
	value func(Notification) string
}{
	{"recipientId", func(n Notification) string {
		if n.RecipientID <= 0 {
			return ""
		}
		return strconv.FormatInt(n.RecipientID, 10)
	}},
	{"recipientUsername", func(n Notification) string { return strings.TrimSpace(n.RecipientUsername) }},
	{"penerima", func(n Notification) string { return strings.TrimSpace(n.Penerima) }},
}

// Service merekonsiliasi notifikasi: scoping ke principal, validasi
// status persetujuan langsung ke record sumber, dan himpunan sembunyi
// lokal yang dipangkas tiap muat.
type Service struct {
	repo    Repository
	status  StatusSource
	hidden  HiddenSet
	logger  *slog.Logger
	metrics Metrics
}

// NewService membuat reconciler notifikasi baru.
func NewService(repo Repository, status StatusSource, hidden HiddenSet, logger *slog.Logger, metrics Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, status: status, hidden: hidden, logger: logger, metrics: metrics}
}

// Result adalah himpunan notifikasi tampak plus metadata badge.
type Result struct {
	Items    []Notification `json:"items"`
	Unread   int            `json:"unread"`
	Degraded bool           `json:"degraded"`
}

// Visible membangun himpunan notifikasi yang boleh tampil untuk principal.
func (s *Service) Visible(ctx context.Context, p shared.Principal) (Result, error) {
	items, err := s.repo.List(ctx)
	degraded := false
	if err != nil {
		// Mode degradasi eksplisit: daftar contoh berlabel, ditandai di
		// hasil dan di metrik, tidak pernah menyamar sebagai data asli.
		s.logger.Error("notification fetch failed, serving seed data", slog.Any("error", err))
		if s.metrics != nil {
			s.metrics.DegradedFallback()
		}
		items = seedNotifications()
		degraded = true
	}

	items = scopeToPrincipal(items, p)
	items = s.validateApprovals(ctx, items)

	if !degraded {
		live := make(map[int64]struct{}, len(items))
		for _, n := range items {
			live[n.ID] = struct{}{}
		}
		hidden, err := s.hidden.Prune(ctx, p.Key(), live)
		if err != nil {
			s.logger.Warn("hidden set unavailable", slog.Any("error", err))
		} else if len(hidden) > 0 {
			kept := items[:0]
			for _, n := range items {
				if _, ok := hidden[n.ID]; ok {
					continue
				}
				kept = append(kept, n)
			}
			items = kept
		}
	}

	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	if items == nil {
		items = []Notification{}
	}
	return Result{Items: items, Unread: unread, Degraded: degraded}, nil
}

// MarkRead meneruskan tandai-dibaca ke upstream.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return s.repo.MarkRead(ctx, id)
}

// Hide menyembunyikan satu notifikasi untuk principal.
func (s *Service) Hide(ctx context.Context, p shared.Principal, id int64) error {
	return s.hidden.Hide(ctx, p.Key(), id)
}

// Delete meminta penghapusan di upstream dan menyembunyikan lokal.
// Kegagalan upstream tidak membatalkan penyembunyian lokal: item tetap
// tidak muncul lagi untuk principal ini, dan pemangkasan berikutnya
// membereskan sisanya.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("upstream delete failed", slog.Int64("id", id), slog.Any("error", err))
	}
	return s.hidden.Hide(ctx, p.Key(), id)
}

// ShowAll mengosongkan himpunan sembunyi principal.
func (s *Service) ShowAll(ctx context.Context, p shared.Principal) error {
	return s.hidden.Clear(ctx, p.Key())
}

// scopeToPrincipal menyaring ke notifikasi yang dialamatkan ke principal.
// Identitas yang tidak bisa ditentukan berarti semua notifikasi masuk
// cakupan (fail-open, bukan fail-closed).
func scopeToPrincipal(items []Notification, p shared.Principal) []Notification {
	if p.IsZero() {
		return items
	}
	idStr := strconv.FormatInt(p.ID, 10)
	out := make([]Notification, 0, len(items))
	for _, n := range items {
		if addressedTo(n, idStr, p.Username) {
			out = append(out, n)
		}
	}
	return out
}

func addressedTo(n Notification, idStr, username string) bool {
	for _, field := range recipientFields {
		v := field.value(n)
		if v == "" {
			continue
		}
		// Field non-kosong pertama yang menentukan.
		return v == idStr || strings.EqualFold(v, username)
	}
	// Tanpa kolom penerima sama sekali berarti siaran untuk semua.
	return true
}

// validateApprovals membuang notifikasi approval yang recordnya sudah
// tidak berstatus "diajukan". Flag baca/belum-dibaca notifikasi tidak
// dipercaya sebagai sumber kebenaran visibilitas.
func (s *Service) validateApprovals(ctx context.Context, items []Notification) []Notification {
	// Salinan baru: items bisa jadi slice milik repository (jalur
	// fail-open meneruskannya apa adanya), jangan dimutasi di tempat.
	out := make([]Notification, 0, len(items))
	for _, n := range items {
		if n.Kind != KindApproval || !n.HasReference() {
			out = append(out, n)
			continue
		}
		status, err := s.status.ApprovalStatus(ctx, n.TableRef, n.RecordID)
		if err != nil {
			// Status tidak diketahui bukan berarti sudah diputuskan;
			// biarkan tampil dan catat.
			s.logger.Warn("approval status unavailable",
				slog.String("table", string(n.TableRef)),
				slog.String("record", n.RecordID.String()),
				slog.Any("error", err))
			out = append(out, n)
			continue
		}
		if status != history.StatusDiajukan {
			continue
		}
		out = append(out, n)
	}
	return out
}

// seedNotifications adalah data contoh untuk mode degradasi. Berlabel
// jelas dan ber-id negatif supaya tidak mungkin tertukar dengan data
// asli maupun mengotori himpunan sembunyi.
func seedNotifications() []Notification {
	now := time.Now()
	return []Notification{
		{
			ID:        -1,
			Kind:      KindInfo,
			Title:     "[contoh] Layanan notifikasi tidak terjangkau",
			Message:   fmt.Sprintf("Data contoh ditampilkan sejak %s; coba muat ulang.", now.Format("15:04")),
			CreatedAt: now,
		},
		{
			ID:        -2,
			Kind:      KindError,
			Title:     "[contoh] Mode degradasi",
			Message:   "Daftar ini bukan data asli. Hubungi admin bila berlanjut.",
			CreatedAt: now,
		},
	}
}
