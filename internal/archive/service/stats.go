package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cargodesk/cargodesk/internal/archive/model"
)

// MonthlyStats aggregates archive activity for one calendar month: how many
// archives of each kind were taken, and a per-day histogram of archived
// shipment counts. This is the data behind the archive chart.
type MonthlyStats struct {
	Month          string                    `json:"month"`
	CountsByKind   map[model.ArchiveKind]int `json:"countsByKind"`
	ShipmentsByDay map[string]int            `json:"shipmentsByDay"`
	TotalArchives  int                       `json:"totalArchives"`
	TotalShipments int                       `json:"totalShipments"`
}

// GetMonthlyStats computes the aggregation for the given "YYYY-MM" month.
// Archives whose snapshot cannot be decoded are skipped with a warning
// rather than failing the whole aggregation.
func (s *ArchiveService) GetMonthlyStats(ctx context.Context, month string) (*MonthlyStats, error) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", month, err)
	}
	monthEnd := monthStart.AddDate(0, 1, 0)

	infos, err := s.ListArchives(ctx)
	if err != nil {
		return nil, err
	}

	stats := &MonthlyStats{
		Month:          month,
		CountsByKind:   make(map[model.ArchiveKind]int),
		ShipmentsByDay: make(map[string]int),
	}

	for _, info := range infos {
		at := archiveTime(info)
		if at.Before(monthStart) || !at.Before(monthEnd) {
			continue
		}

		stats.CountsByKind[info.Kind]++
		stats.TotalArchives++

		snapshot, err := s.GetArchive(ctx, info.FileName)
		if err != nil {
			slog.Warn("skipping archive in monthly stats",
				"file", info.FileName,
				"error", err,
			)
			continue
		}
		day := at.Format("2006-01-02")
		stats.ShipmentsByDay[day] += snapshot.TotalShipments
		stats.TotalShipments += snapshot.TotalShipments
	}

	return stats, nil
}

// archiveTime prefers the timestamp embedded in the filename over the
// object's modification time, since edits touch the latter.
func archiveTime(info model.ArchiveInfo) time.Time {
	if info.Timestamp != "" {
		value := info.Timestamp
		if !strings.Contains(value, "T") {
			value += "T00:00:00"
		}
		if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
			return t
		}
	}
	return info.ModifiedAt
}
