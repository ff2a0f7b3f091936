package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	shipmentModel "github.com/cargodesk/cargodesk/internal/shipment/model"
)

// ArchiveKind is the tagged variant behind the archive filename conventions.
// The kind is determined once when a file is listed or loaded; nothing else
// re-parses the filename prefix.
type ArchiveKind string

const (
	KindCustom      ArchiveKind = "custom"
	KindManual      ArchiveKind = "manual"
	KindAutoArrived ArchiveKind = "auto_arrived"
	KindDataBackup  ArchiveKind = "data_backup"
	KindUnknown     ArchiveKind = "unknown"
)

const (
	prefixCustom      = "custom_archive_"
	prefixManual      = "manual_archive_"
	prefixAutoArrived = "auto_archive_arrived_"
	prefixDataBackup  = "shipments_"
)

// timestampToken matches the trailing date or ISO timestamp segment of an
// archive filename, e.g. "2025-09-23T10:00:00" or "2025-09-01".
var timestampToken = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T[\d:.+-]+)?$`)

// ArchiveInfo is the parsed identity of one archive snapshot file.
type ArchiveInfo struct {
	FileName    string      `json:"fileName"`
	Kind        ArchiveKind `json:"kind"`
	DisplayName string      `json:"displayName"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Size        int64       `json:"size"`
	ModifiedAt  time.Time   `json:"modifiedAt"`
}

// Snapshot is the payload of an archive file.
type Snapshot struct {
	ArchivedAt     time.Time                `json:"archivedAt"`
	TotalShipments int                      `json:"totalShipments"`
	Shipments      []shipmentModel.Shipment `json:"shipments"`
}

// ParseFileName classifies an archive filename and derives its display name.
// Backup dumps (shipments_*.json) get KindDataBackup and are excluded from
// the archive listing by the service.
func ParseFileName(fileName string) ArchiveInfo {
	info := ArchiveInfo{FileName: fileName, Kind: KindUnknown, DisplayName: fileName}

	base, ok := strings.CutSuffix(fileName, ".json")
	if !ok {
		return info
	}

	switch {
	case strings.HasPrefix(base, prefixCustom):
		name, ts := splitTimestamp(strings.TrimPrefix(base, prefixCustom))
		info.Kind = KindCustom
		info.DisplayName = strings.Join(name, "_")
		info.Timestamp = ts
	case strings.HasPrefix(base, prefixManual):
		refs, ts := splitTimestamp(strings.TrimPrefix(base, prefixManual))
		info.Kind = KindManual
		info.DisplayName = fmt.Sprintf("Manual Archive - %s", strings.Join(refs, ", "))
		info.Timestamp = ts
	case strings.HasPrefix(base, prefixAutoArrived):
		_, ts := splitTimestamp(strings.TrimPrefix(base, prefixAutoArrived))
		info.Kind = KindAutoArrived
		info.DisplayName = "Auto Archive - Arrived"
		info.Timestamp = ts
	case strings.HasPrefix(base, prefixDataBackup):
		info.Kind = KindDataBackup
		info.DisplayName = strings.TrimPrefix(base, prefixDataBackup)
		info.Timestamp = strings.TrimPrefix(base, prefixDataBackup)
	}
	return info
}

// BuildCustomFileName produces the filename for a renamed archive, keeping
// the custom_archive_ convention and the given timestamp.
func BuildCustomFileName(displayName, timestamp string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, strings.TrimSpace(displayName))
	return fmt.Sprintf("%s%s_%s.json", prefixCustom, safe, timestamp)
}

// splitTimestamp splits underscore-separated tokens into (name tokens,
// trailing timestamp). The timestamp token is the last one that looks like a
// date or ISO timestamp.
func splitTimestamp(rest string) ([]string, string) {
	tokens := strings.Split(rest, "_")
	if len(tokens) == 0 {
		return tokens, ""
	}
	last := tokens[len(tokens)-1]
	if timestampToken.MatchString(last) {
		return tokens[:len(tokens)-1], last
	}
	return tokens, ""
}
