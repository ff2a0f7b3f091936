package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/cargodesk/cargodesk/internal/archive/model"
	shipmentModel "github.com/cargodesk/cargodesk/internal/shipment/model"
	"github.com/cargodesk/cargodesk/internal/storage"
)

const archivePrefix = "archives/"

var (
	// ErrArchiveNotFound is returned when the named archive file does not exist.
	ErrArchiveNotFound = errors.New("archive not found")
	// ErrMalformedSnapshot is returned when an archive file does not decode
	// into a snapshot. Routers map it to 422.
	ErrMalformedSnapshot = errors.New("malformed archive snapshot")
)

// ArchiveService reads and edits archive snapshot files stored behind the
// blob storage driver. Archives are created by an external archiving
// process; this service never creates new ones, only lists, renames and
// edits existing snapshots.
type ArchiveService struct {
	store storage.Driver
}

func NewArchiveService(store storage.Driver) *ArchiveService {
	return &ArchiveService{store: store}
}

// ListArchives returns all non-backup archive files, newest first.
func (s *ArchiveService) ListArchives(ctx context.Context) ([]model.ArchiveInfo, error) {
	objects, err := s.store.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive files: %w", err)
	}

	infos := make([]model.ArchiveInfo, 0, len(objects))
	for _, obj := range objects {
		fileName := strings.TrimPrefix(obj.Key, archivePrefix)
		info := model.ParseFileName(fileName)
		if info.Kind == model.KindDataBackup {
			// Raw data dumps are not user-facing archives
			continue
		}
		info.Size = obj.Size
		info.ModifiedAt = obj.LastModified
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModifiedAt.After(infos[j].ModifiedAt)
	})
	return infos, nil
}

// GetArchive loads and decodes one archive snapshot.
func (s *ArchiveService) GetArchive(ctx context.Context, fileName string) (*model.Snapshot, error) {
	reader, _, err := s.store.Get(ctx, archivePrefix+path.Clean(fileName))
	if err != nil {
		return nil, ErrArchiveNotFound
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %q: %w", fileName, err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return &snapshot, nil
}

// RenameArchive gives an archive a new display name. The file keeps the
// custom_archive_ convention and its original timestamp, so the rename
// shows up in every consumer that parses the name.
func (s *ArchiveService) RenameArchive(ctx context.Context, fileName, newDisplayName string) (*model.ArchiveInfo, error) {
	if strings.TrimSpace(newDisplayName) == "" {
		return nil, fmt.Errorf("new archive name cannot be empty")
	}

	info := model.ParseFileName(fileName)
	if info.Kind == model.KindUnknown || info.Kind == model.KindDataBackup {
		return nil, fmt.Errorf("%q is not a renamable archive", fileName)
	}

	timestamp := info.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format("2006-01-02T15:04:05")
	}
	newFileName := model.BuildCustomFileName(newDisplayName, timestamp)
	if newFileName == fileName {
		newInfo := model.ParseFileName(fileName)
		return &newInfo, nil
	}

	// A rename must never overwrite another archive.
	if body, _, err := s.store.Get(ctx, archivePrefix+newFileName); err == nil {
		body.Close()
		return nil, fmt.Errorf("an archive named %q already exists", newFileName)
	}

	if err := s.store.Rename(ctx, archivePrefix+fileName, archivePrefix+newFileName); err != nil {
		return nil, fmt.Errorf("failed to rename archive: %w", err)
	}

	newInfo := model.ParseFileName(newFileName)
	return &newInfo, nil
}

// UpdateShipment edits one shipment record inside an archive, identified by
// its orderRef, and writes the whole snapshot back.
func (s *ArchiveService) UpdateShipment(ctx context.Context, fileName, orderRef string, updated shipmentModel.Shipment) (*model.Snapshot, error) {
	snapshot, err := s.GetArchive(ctx, fileName)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range snapshot.Shipments {
		if snapshot.Shipments[i].OrderRef == orderRef {
			updated.ID = snapshot.Shipments[i].ID
			snapshot.Shipments[i] = updated
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("shipment with orderRef %q not found in archive %q", orderRef, fileName)
	}

	if err := s.writeSnapshot(ctx, fileName, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ReplaceData overwrites the whole shipment array of an archive, the way the
// archive editor saves its table.
func (s *ArchiveService) ReplaceData(ctx context.Context, fileName string, shipments []shipmentModel.Shipment) (*model.Snapshot, error) {
	snapshot, err := s.GetArchive(ctx, fileName)
	if err != nil {
		return nil, err
	}
	snapshot.Shipments = shipments
	if err := s.writeSnapshot(ctx, fileName, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *ArchiveService) writeSnapshot(ctx context.Context, fileName string, snapshot *model.Snapshot) error {
	// totalShipments is revalidated on every write
	snapshot.TotalShipments = len(snapshot.Shipments)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode archive snapshot: %w", err)
	}
	if err := s.store.Save(ctx, archivePrefix+fileName, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to write archive %q: %w", fileName, err)
	}
	return nil
}

// FilterShipments returns the records whose supplier, orderRef, product name
// or destination contains the search term, case-insensitively. An empty term
// returns everything.
func FilterShipments(shipments []shipmentModel.Shipment, term string) []shipmentModel.Shipment {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return shipments
	}
	matched := make([]shipmentModel.Shipment, 0)
	for _, s := range shipments {
		if strings.Contains(strings.ToLower(s.Supplier), term) ||
			strings.Contains(strings.ToLower(s.OrderRef), term) ||
			strings.Contains(strings.ToLower(s.ProductName), term) ||
			strings.Contains(strings.ToLower(s.FinalPOD), term) {
			matched = append(matched, s)
		}
	}
	return matched
}
