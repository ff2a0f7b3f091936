package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name          string
		fileName      string
		wantKind      ArchiveKind
		wantDisplay   string
		wantTimestamp string
	}{
		{
			name:          "custom archive",
			fileName:      "custom_archive_Foo_2025-09-23T10:00:00.json",
			wantKind:      KindCustom,
			wantDisplay:   "Foo",
			wantTimestamp: "2025-09-23T10:00:00",
		},
		{
			name:          "custom archive with multi-word name",
			fileName:      "custom_archive_Q3_Review_2025-09-01.json",
			wantKind:      KindCustom,
			wantDisplay:   "Q3_Review",
			wantTimestamp: "2025-09-01",
		},
		{
			name:          "manual archive lists order references",
			fileName:      "manual_archive_PO123_PO456_2025-08-15T08:30:00.json",
			wantKind:      KindManual,
			wantDisplay:   "Manual Archive - PO123, PO456",
			wantTimestamp: "2025-08-15T08:30:00",
		},
		{
			name:          "auto archive for arrivals",
			fileName:      "auto_archive_arrived_2025-07-01T00:00:00.json",
			wantKind:      KindAutoArrived,
			wantDisplay:   "Auto Archive - Arrived",
			wantTimestamp: "2025-07-01T00:00:00",
		},
		{
			name:          "data backup dump",
			fileName:      "shipments_2025-06-30.json",
			wantKind:      KindDataBackup,
			wantDisplay:   "2025-06-30",
			wantTimestamp: "2025-06-30",
		},
		{
			name:        "unrecognized prefix",
			fileName:    "random_file.json",
			wantKind:    KindUnknown,
			wantDisplay: "random_file.json",
		},
		{
			name:        "non-json file",
			fileName:    "custom_archive_Foo.txt",
			wantKind:    KindUnknown,
			wantDisplay: "custom_archive_Foo.txt",
		},
		{
			name:        "custom archive without timestamp",
			fileName:    "custom_archive_Foo.json",
			wantKind:    KindCustom,
			wantDisplay: "Foo",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseFileName(tt.fileName)
			assert.Equal(t, tt.wantKind, info.Kind)
			assert.Equal(t, tt.wantDisplay, info.DisplayName)
			assert.Equal(t, tt.wantTimestamp, info.Timestamp)
			assert.Equal(t, tt.fileName, info.FileName)
		})
	}
}

func TestBuildCustomFileName(t *testing.T) {
	t.Run("round-trips through ParseFileName", func(t *testing.T) {
		fileName := BuildCustomFileName("Peak_Season", "2025-09-23T10:00:00")
		assert.Equal(t, "custom_archive_Peak_Season_2025-09-23T10:00:00.json", fileName)

		info := ParseFileName(fileName)
		assert.Equal(t, KindCustom, info.Kind)
		assert.Equal(t, "Peak_Season", info.DisplayName)
		assert.Equal(t, "2025-09-23T10:00:00", info.Timestamp)
	})

	t.Run("strips filesystem-hostile characters", func(t *testing.T) {
		fileName := BuildCustomFileName(`a/b\c:d`, "2025-01-01")
		assert.Equal(t, "custom_archive_a-b-c-d_2025-01-01.json", fileName)
	})
}
