package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHumanLabel(t *testing.T) {
	cases := map[string]string{
		"namaBarang":      "Nama Barang",
		"kodeAset":        "Kode Aset",
		"penanggungJawab": "Penanggung Jawab",
		"merk":            "Merk",
		"harga_beli":      "Harga Beli",
		"":                "",
	}
	for in, want := range cases {
		require.Equal(t, want, HumanLabel(in), in)
	}
}

func TestSummarizeChangesSortedByLabel(t *testing.T) {
	lines := SummarizeChanges(ChangeSet{
		"lokasi":     {Before: "Gudang A", After: "Gudang B"},
		"harga":      {Before: float64(1500000), After: float64(1750000)},
		"namaBarang": {Before: "Printer", After: "Printer LX"},
	})

	require.Len(t, lines, 3)
	require.Equal(t, "Harga", lines[0].Label)
	require.Equal(t, "Lokasi", lines[1].Label)
	require.Equal(t, "Nama Barang", lines[2].Label)

	require.Equal(t, "1500000", lines[0].Before)
	require.Equal(t, "1750000", lines[0].After)
}

func TestSummarizeChangesValueDisplay(t *testing.T) {
	lines := SummarizeChanges(ChangeSet{
		"tanggal":    {Before: "2024-01-02T10:00:00Z", After: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
		"keterangan": {Before: nil, After: ""},
		"jumlah":     {Before: float64(2.5), After: float64(3)},
	})

	byField := map[string]ChangeLine{}
	for _, l := range lines {
		byField[l.Field] = l
	}

	require.Equal(t, "2024-01-02", byField["tanggal"].Before)
	require.Equal(t, "2024-02-03", byField["tanggal"].After)
	require.Equal(t, "-", byField["keterangan"].Before)
	require.Equal(t, "-", byField["keterangan"].After)
	require.Equal(t, "2.5", byField["jumlah"].Before)
	require.Equal(t, "3", byField["jumlah"].After)
}

func TestSummarizeChangesEmpty(t *testing.T) {
	require.Nil(t, SummarizeChanges(nil))
	require.Nil(t, SummarizeChanges(ChangeSet{}))
}

func TestSummarizeApprovalsPreservesOrder(t *testing.T) {
	at := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	lines := SummarizeApprovals([]ApprovalEvent{
		{Actor: "budi", Role: "kabag", Decision: StatusDisetujui, At: at},
		{Actor: "sari", Role: "admin", Decision: StatusDitolak, Reason: " data kurang ", At: at.Add(time.Hour)},
	})

	require.Len(t, lines, 2)
	require.Equal(t, "budi", lines[0].Actor)
	require.Equal(t, "sari", lines[1].Actor)
	require.Equal(t, "data kurang", lines[1].Reason)
	require.Nil(t, SummarizeApprovals(nil))
}
