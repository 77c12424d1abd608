package history

import (
	"sort"
	"time"
)

// transferEditWindow adalah jendela korelasi antara `aset/edit` dan
// `mutasi/input` yang dianggap satu kejadian transfer yang terekam ganda.
// Ini heuristik kedekatan jam, bukan kaitan kausal yang dijamin; sumber
// tidak memberi correlation id, jadi jendela 2 detik dipertahankan demi
// paritas perilaku.
const transferEditWindow = 2 * time.Second

// BuildTimeline memproyeksikan kumpulan record mentah menjadi grup
// (tahun, bulan) terurut menurun. Fungsi murni dan idempoten: input yang
// sama selalu menghasilkan pengelompokan yang sama.
func BuildTimeline(records []TransactionRecord) []Group {
	kept := dedupeTransferEdits(filterNoise(records))

	buckets := make(map[[2]int][]TransactionRecord)
	for _, rec := range kept {
		key := [2]int{rec.At.Year(), int(rec.At.Month()) - 1}
		buckets[key] = append(buckets[key], rec)
	}

	groups := make([]Group, 0, len(buckets))
	for key, rows := range buckets {
		sort.SliceStable(rows, func(i, j int) bool {
			if !rows[i].At.Equal(rows[j].At) {
				return rows[i].At.After(rows[j].At)
			}
			// Waktu identik diurutkan deterministik berdasar identitas record.
			if rows[i].TableRef != rows[j].TableRef {
				return rows[i].TableRef < rows[j].TableRef
			}
			return rows[i].RecordID < rows[j].RecordID
		})
		entries := make([]Entry, len(rows))
		for i, rec := range rows {
			entries[i] = Entry{Record: rec}
		}
		groups = append(groups, Group{Year: key[0], Month: key[1], Entries: entries})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Year != groups[j].Year {
			return groups[i].Year > groups[j].Year
		}
		return groups[i].Month > groups[j].Month
	})
	return groups
}

// filterNoise membuang record sub-tabel lokasi murni.
func filterNoise(records []TransactionRecord) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(records))
	for _, rec := range records {
		if rec.TableRef == TableAsetLokasi {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// dedupeTransferEdits menekan `aset/edit` yang punya pasangan
// `mutasi/input` dalam jendela transferEditWindow: keduanya dianggap satu
// kejadian transfer yang terekam di dua tabel.
func dedupeTransferEdits(records []TransactionRecord) []TransactionRecord {
	var transferTimes []time.Time
	for _, rec := range records {
		if rec.TableRef == TableMutasi && rec.Action == ActionInput {
			transferTimes = append(transferTimes, rec.At)
		}
	}
	if len(transferTimes) == 0 {
		return records
	}

	out := make([]TransactionRecord, 0, len(records))
	for _, rec := range records {
		if rec.TableRef == TableAset && rec.Action == ActionEdit && nearAny(rec.At, transferTimes) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func nearAny(t time.Time, candidates []time.Time) bool {
	for _, c := range candidates {
		d := t.Sub(c)
		if d < 0 {
			d = -d
		}
		if d <= transferEditWindow {
			return true
		}
	}
	return false
}
