package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargodesk/cargodesk/internal/archive/model"
	shipmentModel "github.com/cargodesk/cargodesk/internal/shipment/model"
	"github.com/cargodesk/cargodesk/internal/storage"
)

// memoryDriver is an in-memory storage.Driver for service tests.
type memoryDriver struct {
	objects map[string][]byte
	modTime map[string]time.Time
}

func newMemoryDriver() *memoryDriver {
	return &memoryDriver{
		objects: make(map[string][]byte),
		modTime: make(map[string]time.Time),
	}
}

func (m *memoryDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.modTime[key] = time.Now()
	return nil
}

func (m *memoryDriver) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("no such object %q", key)
	}
	return io.NopCloser(bytes.NewReader(data)), "application/json", nil
}

func (m *memoryDriver) Delete(ctx context.Context, key string) error {
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("no such object %q", key)
	}
	delete(m.objects, key)
	delete(m.modTime, key)
	return nil
}

func (m *memoryDriver) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	infos := make([]storage.ObjectInfo, 0)
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, storage.ObjectInfo{
				Key:          key,
				Size:         int64(len(data)),
				LastModified: m.modTime[key],
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (m *memoryDriver) Rename(ctx context.Context, oldKey, newKey string) error {
	data, ok := m.objects[oldKey]
	if !ok {
		return fmt.Errorf("no such object %q", oldKey)
	}
	if _, exists := m.objects[newKey]; exists {
		return fmt.Errorf("destination %q already exists", newKey)
	}
	m.objects[newKey] = data
	m.modTime[newKey] = m.modTime[oldKey]
	delete(m.objects, oldKey)
	delete(m.modTime, oldKey)
	return nil
}

func (m *memoryDriver) GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "/files/" + key, nil
}

func (m *memoryDriver) putSnapshot(t *testing.T, fileName string, snapshot model.Snapshot) {
	t.Helper()
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	m.objects["archives/"+fileName] = data
	m.modTime["archives/"+fileName] = time.Now()
}

func snapshotOf(shipments ...shipmentModel.Shipment) model.Snapshot {
	return model.Snapshot{
		ArchivedAt:     time.Now().UTC(),
		TotalShipments: len(shipments),
		Shipments:      shipments,
	}
}

func TestListArchives(t *testing.T) {
	driver := newMemoryDriver()
	driver.putSnapshot(t, "custom_archive_Foo_2025-09-23T10:00:00.json", snapshotOf())
	driver.putSnapshot(t, "manual_archive_PO1_2025-09-10T08:00:00.json", snapshotOf())
	driver.putSnapshot(t, "shipments_2025-09-01.json", snapshotOf())

	s := NewArchiveService(driver)
	infos, err := s.ListArchives(context.Background())
	require.NoError(t, err)

	// The raw data backup is excluded
	require.Len(t, infos, 2)
	for _, info := range infos {
		assert.NotEqual(t, model.KindDataBackup, info.Kind)
	}
}

func TestGetArchive(t *testing.T) {
	driver := newMemoryDriver()
	ship := shipmentModel.Shipment{OrderRef: "PO-1", Supplier: "Acme"}
	driver.putSnapshot(t, "custom_archive_Foo_2025-09-23T10:00:00.json", snapshotOf(ship))

	s := NewArchiveService(driver)

	snapshot, err := s.GetArchive(context.Background(), "custom_archive_Foo_2025-09-23T10:00:00.json")
	require.NoError(t, err)
	require.Len(t, snapshot.Shipments, 1)
	assert.Equal(t, "PO-1", snapshot.Shipments[0].OrderRef)

	t.Run("missing archive", func(t *testing.T) {
		_, err := s.GetArchive(context.Background(), "custom_archive_Nope_2025-01-01.json")
		assert.ErrorIs(t, err, ErrArchiveNotFound)
	})

	t.Run("malformed snapshot", func(t *testing.T) {
		driver.objects["archives/custom_archive_Bad_2025-01-01.json"] = []byte("not json")
		_, err := s.GetArchive(context.Background(), "custom_archive_Bad_2025-01-01.json")
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
	})
}

func TestRenameArchive(t *testing.T) {
	driver := newMemoryDriver()
	driver.putSnapshot(t, "manual_archive_PO1_2025-09-10T08:00:00.json", snapshotOf())
	s := NewArchiveService(driver)

	info, err := s.RenameArchive(context.Background(), "manual_archive_PO1_2025-09-10T08:00:00.json", "September Batch")
	require.NoError(t, err)

	// The renamed file follows the custom convention and keeps its timestamp
	assert.Equal(t, model.KindCustom, info.Kind)
	assert.Equal(t, "2025-09-10T08:00:00", info.Timestamp)
	assert.Contains(t, driver.objects, "archives/"+info.FileName)
	assert.NotContains(t, driver.objects, "archives/manual_archive_PO1_2025-09-10T08:00:00.json")

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := s.RenameArchive(context.Background(), info.FileName, "  ")
		assert.Error(t, err)
	})

	t.Run("data backups are not renamable", func(t *testing.T) {
		_, err := s.RenameArchive(context.Background(), "shipments_2025-09-01.json", "x")
		assert.Error(t, err)
	})

	t.Run("rename cannot overwrite an existing archive", func(t *testing.T) {
		// Same timestamp, so renaming both to the same display name would
		// collide on the destination file.
		driver.putSnapshot(t, "manual_archive_PO2_2025-09-10T08:00:00.json", snapshotOf())
		taken, err := s.RenameArchive(context.Background(), "manual_archive_PO2_2025-09-10T08:00:00.json", "Target")
		require.NoError(t, err)

		driver.putSnapshot(t, "manual_archive_PO3_2025-09-10T08:00:00.json", snapshotOf(
			shipmentModel.Shipment{OrderRef: "PO-3", Supplier: "Gamma"},
		))
		_, err = s.RenameArchive(context.Background(), "manual_archive_PO3_2025-09-10T08:00:00.json", "Target")
		assert.ErrorContains(t, err, "already exists")

		// Neither snapshot was touched.
		assert.Contains(t, driver.objects, "archives/"+taken.FileName)
		source, err := s.GetArchive(context.Background(), "manual_archive_PO3_2025-09-10T08:00:00.json")
		require.NoError(t, err)
		assert.Equal(t, "Gamma", source.Shipments[0].Supplier)
	})
}

func TestUpdateShipment(t *testing.T) {
	driver := newMemoryDriver()
	fileName := "custom_archive_Foo_2025-09-23T10:00:00.json"
	driver.putSnapshot(t, fileName, snapshotOf(
		shipmentModel.Shipment{OrderRef: "PO-1", Supplier: "Acme"},
		shipmentModel.Shipment{OrderRef: "PO-2", Supplier: "Beta"},
	))
	s := NewArchiveService(driver)

	updated := shipmentModel.Shipment{OrderRef: "PO-2", Supplier: "Beta Renamed", Quantity: 5}
	snapshot, err := s.UpdateShipment(context.Background(), fileName, "PO-2", updated)
	require.NoError(t, err)
	assert.Equal(t, "Beta Renamed", snapshot.Shipments[1].Supplier)
	assert.Equal(t, 2, snapshot.TotalShipments)

	// The edit is persisted
	reread, err := s.GetArchive(context.Background(), fileName)
	require.NoError(t, err)
	assert.Equal(t, "Beta Renamed", reread.Shipments[1].Supplier)

	t.Run("unknown orderRef", func(t *testing.T) {
		_, err := s.UpdateShipment(context.Background(), fileName, "PO-404", updated)
		assert.Error(t, err)
	})
}

func TestReplaceData(t *testing.T) {
	driver := newMemoryDriver()
	fileName := "custom_archive_Foo_2025-09-23T10:00:00.json"
	driver.putSnapshot(t, fileName, snapshotOf(
		shipmentModel.Shipment{OrderRef: "PO-1"},
	))
	s := NewArchiveService(driver)

	snapshot, err := s.ReplaceData(context.Background(), fileName, []shipmentModel.Shipment{
		{OrderRef: "PO-10"}, {OrderRef: "PO-11"}, {OrderRef: "PO-12"},
	})
	require.NoError(t, err)

	// totalShipments tracks the replaced array
	assert.Equal(t, 3, snapshot.TotalShipments)
	assert.Len(t, snapshot.Shipments, 3)
}

func TestGetMonthlyStats(t *testing.T) {
	driver := newMemoryDriver()
	driver.putSnapshot(t, "custom_archive_Foo_2025-09-23T10:00:00.json", snapshotOf(
		shipmentModel.Shipment{OrderRef: "PO-1"},
		shipmentModel.Shipment{OrderRef: "PO-2"},
	))
	driver.putSnapshot(t, "manual_archive_PO3_2025-09-23T15:00:00.json", snapshotOf(
		shipmentModel.Shipment{OrderRef: "PO-3"},
	))
	driver.putSnapshot(t, "auto_archive_arrived_2025-08-31T23:00:00.json", snapshotOf(
		shipmentModel.Shipment{OrderRef: "PO-4"},
	))
	s := NewArchiveService(driver)

	stats, err := s.GetMonthlyStats(context.Background(), "2025-09")
	require.NoError(t, err)

	// The August archive is outside the month
	assert.Equal(t, 2, stats.TotalArchives)
	assert.Equal(t, 3, stats.TotalShipments)
	assert.Equal(t, 1, stats.CountsByKind[model.KindCustom])
	assert.Equal(t, 1, stats.CountsByKind[model.KindManual])
	assert.Equal(t, 0, stats.CountsByKind[model.KindAutoArrived])
	assert.Equal(t, 3, stats.ShipmentsByDay["2025-09-23"])

	t.Run("invalid month", func(t *testing.T) {
		_, err := s.GetMonthlyStats(context.Background(), "September")
		assert.Error(t, err)
	})
}
