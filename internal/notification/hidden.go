package notification

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// hiddenKeyPrefix memberi namespace himpunan sembunyi per principal.
const hiddenKeyPrefix = "notif:hidden:"

// HiddenStore menyimpan id notifikasi yang disembunyikan principal di
// Redis. Dimuat saat rekonsiliasi, ditambah saat aksi lokal, dipangkas
// terhadap himpunan hidup, dan bisa dikosongkan lewat aksi "tampilkan
// semua".
type HiddenStore struct {
	client *redis.Client
}

// NewHiddenStore membuat store himpunan sembunyi.
func NewHiddenStore(client *redis.Client) *HiddenStore {
	return &HiddenStore{client: client}
}

func (s *HiddenStore) key(scope string) string {
	if scope == "" {
		scope = "anon"
	}
	return hiddenKeyPrefix + scope
}

// Load mengambil seluruh id tersembunyi untuk satu principal.
func (s *HiddenStore) Load(ctx context.Context, scope string) (map[int64]struct{}, error) {
	members, err := s.client.SMembers(ctx, s.key(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("notification: load hidden set: %w", err)
	}
	hidden := make(map[int64]struct{}, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		hidden[id] = struct{}{}
	}
	return hidden, nil
}

// Hide menambahkan id ke himpunan sembunyi.
func (s *HiddenStore) Hide(ctx context.Context, scope string, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = strconv.FormatInt(id, 10)
	}
	if err := s.client.SAdd(ctx, s.key(scope), members...).Err(); err != nil {
		return fmt.Errorf("notification: hide: %w", err)
	}
	return nil
}

// Prune membuang id yang tidak lagi ada di himpunan notifikasi hidup dan
// mengembalikan himpunan yang tersisa. Mencegah himpunan tumbuh tanpa
// batas dan menunjuk notifikasi basi.
func (s *HiddenStore) Prune(ctx context.Context, scope string, live map[int64]struct{}) (map[int64]struct{}, error) {
	hidden, err := s.Load(ctx, scope)
	if err != nil {
		return nil, err
	}
	var stale []any
	kept := make(map[int64]struct{}, len(hidden))
	for id := range hidden {
		if _, ok := live[id]; ok {
			kept[id] = struct{}{}
			continue
		}
		stale = append(stale, strconv.FormatInt(id, 10))
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.key(scope), stale...).Err(); err != nil {
			return nil, fmt.Errorf("notification: prune hidden set: %w", err)
		}
	}
	return kept, nil
}

// Scopes mengembalikan seluruh scope principal yang punya himpunan
// sembunyi tersimpan. Dipakai job sweep untuk memangkas semua principal.
func (s *HiddenStore) Scopes(ctx context.Context) ([]string, error) {
	var scopes []string
	iter := s.client.Scan(ctx, 0, hiddenKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		scopes = append(scopes, iter.Val()[len(hiddenKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("notification: scan hidden scopes: %w", err)
	}
	return scopes, nil
}

// Clear mengosongkan himpunan sembunyi (aksi "tampilkan semua").
func (s *HiddenStore) Clear(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, s.key(scope)).Err(); err != nil {
		return fmt.Errorf("notification: clear hidden set: %w", err)
	}
	return nil
}
