// Package record menormalkan bentuk record dari berbagai sumber log transaksi
// ke satu bentuk kanonis dengan kunci lower-camel-case.
package record

import (
	"regexp"
	"strings"
)

// aliasPriority memetakan kunci kanonis ke daftar ejaan alternatif,
// diurutkan dari yang paling dipercaya. Nilai kanonis yang sudah ada
// tidak pernah ditimpa.
var aliasPriority = map[string][]string{
	"kodeAset":        {"KodeAset", "kode_aset", "kodeaset"},
	"namaBarang":      {"NamaBarang", "nama_barang", "namabarang"},
	"merk":            {"Merk", "merek"},
	"jumlah":          {"Jumlah", "qty"},
	"satuan":          {"Satuan"},
	"kondisi":         {"Kondisi"},
	"lokasi":          {"Lokasi", "ruangan"},
	"beban":           {"Beban", "cost_center"},
	"tanggal":         {"Tanggal", "tgl"},
	"tanggalBeli":     {"TanggalBeli", "tanggal_beli", "tglBeli"},
	"harga":           {"Harga", "hargaBeli", "harga_beli"},
	"keterangan":      {"Keterangan", "catatan"},
	"status":          {"Status", "statusPersetujuan", "status_persetujuan"},
	"penanggungJawab": {"PenanggungJawab", "penanggung_jawab", "pj"},
}

// canonicalKeys menyimpan urutan kunci kanonis supaya hasil deterministik.
var canonicalKeys = []string{
	"kodeAset", "namaBarang", "merk", "jumlah", "satuan", "kondisi",
	"lokasi", "beban", "tanggal", "tanggalBeli", "harga", "keterangan",
	"status", "penanggungJawab",
}

var dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Normalize mengembalikan salinan record dengan kunci kanonis terisi.
// Input yang bukan map dikembalikan apa adanya; input tidak pernah dimutasi.
func Normalize(v any) any {
	src, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(src))
	for k, val := range src {
		out[k] = normalizeValue(val)
	}
	for _, canon := range canonicalKeys {
		if present(out[canon]) {
			continue
		}
		for _, alias := range aliasPriority[canon] {
			if present(out[alias]) {
				out[canon] = out[alias]
				break
			}
		}
	}
	return out
}

// NormalizeMap adalah varian Normalize untuk pemanggil yang sudah memegang map.
func NormalizeMap(src map[string]any) map[string]any {
	out, _ := Normalize(src).(map[string]any)
	return out
}

func normalizeValue(v any) any {
	if s, ok := v.(string); ok {
		if d, ok := DateOnly(s); ok {
			return d
		}
	}
	return v
}

func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	default:
		return true
	}
}

// DateOnly memotong komponen waktu dari string tanggal upstream.
// Hasil hanya diterima bila bagian tanggalnya berpola YYYY-MM-DD,
// melindungi dari tanggal upstream yang rusak.
func DateOnly(s string) (string, bool) {
	idx := strings.IndexAny(s, "T ")
	if idx < 0 {
		return s, false
	}
	datePart := s[:idx]
	if !dateOnlyPattern.MatchString(datePart) {
		return s, false
	}
	return datePart, true
}
