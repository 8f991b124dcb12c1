package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadTarget_ObjectKey(t *testing.T) {
	ts := time.Date(2025, 3, 12, 9, 30, 15, 123456789, time.UTC)

	got := NewUploadTarget("vendor-42", ts).ObjectKey()
	want := "sales_reports/vendor-42/2025-03-12T09:30:15.123456789Z.csv"

	assert.Equal(t, want, got)
}

func TestUploadTarget_ObjectKey_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2025, 3, 12, 10, 30, 15, 0, loc)

	got := NewUploadTarget("acme", ts).ObjectKey()

	assert.Equal(t, "sales_reports/acme/2025-03-12T09:30:15.000000000Z.csv", got)
}

func TestUploadTarget_ObjectKey_VendorVerbatim(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		vendor string
		want   string
	}{
		{"plain", "v1", "sales_reports/v1/2025-01-01T00:00:00.000000000Z.csv"},
		{"spaces", "big vendor", "sales_reports/big vendor/2025-01-01T00:00:00.000000000Z.csv"},
		{"dots not cleaned", "../x", "sales_reports/../x/2025-01-01T00:00:00.000000000Z.csv"},
		{"unicode", "véndor", "sales_reports/véndor/2025-01-01T00:00:00.000000000Z.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewUploadTarget(tt.vendor, ts).ObjectKey())
		})
	}
}

func TestUploadTarget_DistinctInstantsGiveDistinctKeys(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	k1 := NewUploadTarget("v", base).ObjectKey()
	k2 := NewUploadTarget("v", base.Add(time.Nanosecond)).ObjectKey()

	require.NotEqual(t, k1, k2)
}

func TestUploadTarget_KeysSortInTimeOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	earlier := NewUploadTarget("v", base.Add(900*time.Millisecond)).ObjectKey()
	later := NewUploadTarget("v", base.Add(time.Second+100*time.Millisecond)).ObjectKey()

	assert.Less(t, earlier, later)
}

func TestVendorPrefix(t *testing.T) {
	ts := time.Now()
	key := NewUploadTarget("acme", ts).ObjectKey()

	assert.Equal(t, "sales_reports/acme/", VendorPrefix("acme"))
	assert.True(t, len(key) > len(VendorPrefix("acme")))
	assert.Equal(t, VendorPrefix("acme"), key[:len(VendorPrefix("acme"))])
}

func TestBaseFileName(t *testing.T) {
	assert.Equal(t, "", BaseFileName(""))
	assert.Equal(t, "report.csv", BaseFileName("report.csv"))
	assert.Equal(t, "report.csv", BaseFileName("/tmp/uploads/report.csv"))
}
