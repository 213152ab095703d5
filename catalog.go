package gymserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pandarack/gym-server/log"
)

// Catalog reconciles the two sources of truth of the image catalog: the
// upload directory plus its metadata sidecar (which own file identity and
// classification) and the relational store (which owns association rows).
// It never mutates the relational store outside of cascading deletes; all
// listing operations re-read the directory on every call.
type Catalog struct {
	uploadDir string
	publicURL string

	metadata  *MetadataStore
	relations RelationStore
}

func NewCatalog(uploadDir, publicURL string, metadata *MetadataStore, relations RelationStore) *Catalog {
	return &Catalog{
		uploadDir: uploadDir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		metadata:  metadata,
		relations: relations,
	}
}

func (c *Catalog) UploadDir() string {
	return c.uploadDir
}

func (c *Catalog) ImageURL(filename string) string {
	return fmt.Sprintf("%s/images/%s", c.publicURL, filename)
}

// listByKind enumerates the upload directory and keeps the files whose
// metadata record carries the wanted kind. Files without a record are
// unclassified and excluded from both catalogs.
func (c *Catalog) listByKind(kind string) ([]CatalogItem, error) {
	files, err := ListImages(c.uploadDir)
	if err != nil {
		return nil, err
	}

	records := c.metadata.All()

	items := make([]CatalogItem, 0, len(files))
	for _, file := range files {
		record, ok := records[file]
		if !ok || record.Type != kind {
			continue
		}

		name := record.Name
		if name == "" {
			name = DisplayNameFromFilename(file)
		}

		items = append(items, CatalogItem{
			ID:       FileID(file),
			Name:     name,
			Image:    c.ImageURL(file),
			Filename: file,
			Type:     record.Type,
		})
	}

	// directory order is filesystem-dependent; present alphabetically
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	return items, nil
}

func (c *Catalog) ListMachines() ([]CatalogItem, error) {
	return c.listByKind(KindMachine)
}

func (c *Catalog) ListGripTypes() ([]CatalogItem, error) {
	return c.listByKind(KindGrip)
}

// Get returns the machine item identified by a file id.
func (c *Catalog) Get(id string) (CatalogItem, error) {
	machines, err := c.ListMachines()
	if err != nil {
		return CatalogItem{}, err
	}

	for _, machine := range machines {
		if machine.ID == id {
			return machine, nil
		}
	}

	return CatalogItem{}, ErrNotFound
}

// Classify returns the stored record of a filename, or an inferred one for
// files predating the metadata sidecar.
func (c *Catalog) Classify(filename string) ImageRecord {
	if record, ok := c.metadata.Get(filename); ok {
		return record
	}

	return ImageRecord{
		Name: DisplayNameFromFilename(filename),
		Type: InferKind(filename),
	}
}

// AllFiles is the admin listing: every image on disk with its size and raw
// metadata record, newest uploads first.
func (c *Catalog) AllFiles() ([]FileEntry, error) {
	files, err := ListImages(c.uploadDir)
	if err != nil {
		return nil, err
	}

	records := c.metadata.All()

	entries := make([]FileEntry, 0, len(files))
	for _, file := range files {
		record := records[file]

		var size int64
		if info, err := os.Stat(filepath.Join(c.uploadDir, file)); err == nil {
			size = info.Size()
		}

		name := record.Name
		if name == "" {
			name = DisplayNameFromFilename(file)
		}

		kind := record.Type
		if kind == "" {
			kind = InferKind(file)
		}

		entries = append(entries, FileEntry{
			Filename:   file,
			Name:       name,
			Size:       size,
			UploadDate: record.UploadDate,
			Type:       kind,
			Metadata:   record,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UploadDate.After(entries[j].UploadDate)
	})

	return entries, nil
}

// GripTypesForMachine resolves the grip-type images available for a
// machine id.
//
// The junction table is queried by the exact id first. When that yields
// nothing and the metadata store can resolve a display name for the id,
// every machine record sharing that name (case-insensitive) becomes a
// candidate id and the junction is re-queried with the candidate set; this
// is a best-effort reconciliation for ids that drifted when files were
// re-uploaded under new timestamp prefixes, and it is logged as such.
//
// Resulting grip-type ids are mapped to on-disk files by exact filename
// match first, then by comparing timestamp-stripped remainders.
func (c *Catalog) GripTypesForMachine(ctx context.Context, machineID string) ([]CatalogItem, error) {
	gripTypeIDs, err := c.relations.GripTypeIDsForMachines(ctx, []string{machineID})
	if err != nil {
		return nil, err
	}

	records := c.metadata.All()

	if len(gripTypeIDs) == 0 {
		candidates := c.machinesByDisplayName(records, machineID)
		if len(candidates) > 0 {
			log.Warn("no grip relations for exact machine id, reconciling by display name",
				zap.String("machineID", machineID),
				zap.Strings("candidates", candidates),
				log.SourceCatalog)

			gripTypeIDs, err = c.relations.GripTypeIDsForMachines(ctx, candidates)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(gripTypeIDs) == 0 {
		return []CatalogItem{}, nil
	}

	files, err := ListImages(c.uploadDir)
	if err != nil {
		return nil, err
	}

	items := []CatalogItem{}
	for _, file := range files {
		id := FileID(file)
		if !matchesGripType(id, gripTypeIDs) {
			continue
		}

		name := records[file].Name
		if name == "" {
			name = GripLabelFromFilename(file)
		}

		items = append(items, CatalogItem{
			ID:       id,
			Name:     name,
			Image:    c.ImageURL(file),
			Filename: file,
			Type:     KindGrip,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	return items, nil
}

// machinesByDisplayName resolves the display name recorded for a machine
// id and collects the ids of every machine record sharing it.
func (c *Catalog) machinesByDisplayName(records map[string]ImageRecord, machineID string) []string {
	var machineName string
	for filename, record := range records {
		if record.Type == KindMachine && FileID(filename) == machineID {
			machineName = record.Name
			break
		}
	}
	if machineName == "" {
		return nil
	}

	var candidates []string
	for filename, record := range records {
		if record.Type == KindMachine && record.Name != "" &&
			strings.EqualFold(record.Name, machineName) {
			candidates = append(candidates, FileID(filename))
		}
	}

	return candidates
}

// matchesGripType reports whether a file id satisfies one of the wanted
// grip-type ids, exactly or by timestamp-stripped remainder. The remainder
// comparison is what keeps associations alive when a grip image is
// re-uploaded under a fresh timestamp prefix, regardless of where the grip
// marker sits in the name.
func matchesGripType(fileID string, gripTypeIDs []string) bool {
	for _, gripID := range gripTypeIDs {
		if fileID == gripID {
			return true
		}
	}

	fileSuffix := StripTimestampPrefix(fileID)
	for _, gripID := range gripTypeIDs {
		if StripTimestampPrefix(gripID) == fileSuffix {
			return true
		}
	}

	return false
}

// RegisterUpload writes the metadata record of a freshly stored file. When
// the uploader declared no kind, the filename convention decides, with the
// legacy name-list heuristic as a last resort.
func (c *Catalog) RegisterUpload(filename, name, kind, machineFor string) (ImageRecord, error) {
	if kind == "" {
		kind = InferKind(filename)
		log.Warn("upload without explicit type, classified from filename",
			zap.String("filename", filename), zap.String("kind", kind),
			log.SourceCatalog)
	}

	if kind != KindMachine && kind != KindGrip {
		return ImageRecord{}, ErrInvalid
	}

	if name == "" {
		name = DisplayNameFromFilename(filename)
	}

	if kind != KindGrip {
		machineFor = ""
	}

	now := time.Now().UTC()
	record := ImageRecord{
		Name:         name,
		Type:         kind,
		MachineFor:   machineFor,
		UploadDate:   now,
		LastModified: now,
	}

	if err := c.metadata.Upsert(filename, record); err != nil {
		return ImageRecord{}, err
	}

	return record, nil
}

// Edit updates a record's display name and machine association, optionally
// moving it under a replacement file. Renaming and file replacement are
// independent: with an empty newFilename the file (and hence the external
// id) is untouched. Replacing deletes the old file from disk.
func (c *Catalog) Edit(filename, name, machineFor, newFilename string) (ImageRecord, error) {
	current, ok := c.metadata.Get(filename)
	if !ok {
		return ImageRecord{}, ErrNotFound
	}

	update := func(record *ImageRecord) {
		if name != "" {
			record.Name = name
		}
		if machineFor != "" {
			record.MachineFor = machineFor
		}
		record.LastModified = time.Now().UTC()
	}

	if newFilename == "" || newFilename == filename {
		update(&current)
		if err := c.metadata.Upsert(filename, current); err != nil {
			return ImageRecord{}, err
		}
		return current, nil
	}

	if err := os.Remove(filepath.Join(c.uploadDir, filename)); err != nil && !os.IsNotExist(err) {
		return ImageRecord{}, err
	}

	if err := c.metadata.Rename(filename, newFilename, update); err != nil {
		return ImageRecord{}, err
	}

	record, _ := c.metadata.Get(newFilename)
	return record, nil
}

// Delete removes a file and its metadata record. Machine deletions cascade
// to the machine's association rows so the junction table does not keep
// pointing at a gone id. A missing file is NotFound, not a failure.
func (c *Catalog) Delete(ctx context.Context, filename string) error {
	path := filepath.Join(c.uploadDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ErrNotFound
	}

	if err := os.Remove(path); err != nil {
		return err
	}

	record, _ := c.metadata.Get(filename)
	if err := c.metadata.Remove(filename); err != nil {
		return err
	}

	if record.Type == KindMachine {
		if err := c.relations.DeleteMachineRelations(ctx, FileID(filename)); err != nil {
			// file and record are gone; losing the junction cleanup is
			// recoverable on the next association save
			log.Error("fail to cascade machine relation cleanup",
				zap.String("machineID", FileID(filename)), zap.Error(err),
				log.SourceCatalog)
		}
	}

	return nil
}

// MachineViews synthesizes the panel's machine list: catalog items joined
// with their muscle-group associations. Machines have no persisted row of
// their own.
func (c *Catalog) MachineViews(ctx context.Context) ([]MachineView, error) {
	machines, err := c.ListMachines()
	if err != nil {
		return nil, err
	}

	records := c.metadata.All()

	views := make([]MachineView, 0, len(machines))
	for _, machine := range machines {
		groups, err := c.relations.MuscleGroupsForMachine(ctx, machine.ID)
		if err != nil {
			return nil, err
		}
		if groups == nil {
			groups = []MachineMuscleGroupInfo{}
		}

		views = append(views, MachineView{
			CatalogItem:  machine,
			UploadDate:   records[machine.Filename].UploadDate,
			MuscleGroups: groups,
		})
	}

	return views, nil
}

// MachineView synthesizes the view of a single machine.
func (c *Catalog) MachineView(ctx context.Context, id string) (MachineView, error) {
	views, err := c.MachineViews(ctx)
	if err != nil {
		return MachineView{}, err
	}

	for _, view := range views {
		if view.ID == id {
			return view, nil
		}
	}

	return MachineView{}, ErrNotFound
}
