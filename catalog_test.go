package gymserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubRelationStore serves catalog tests without a database. Only the
// operations the catalog engine reaches are populated.
type stubRelationStore struct {
	gripRelations   map[string][]string
	muscleGroups    map[string][]MachineMuscleGroupInfo
	deletedMachines []string
}

func (s *stubRelationStore) GripTypeIDsForMachines(_ context.Context, machineIDs []string) ([]string, error) {
	var ids []string
	for _, machineID := range machineIDs {
		ids = append(ids, s.gripRelations[machineID]...)
	}
	return ids, nil
}

func (s *stubRelationStore) AllGripRelations(context.Context) ([]MachineGripType, error) {
	return nil, nil
}

func (s *stubRelationStore) SaveGripRelations(context.Context, []GripRelation, bool) error {
	return nil
}

func (s *stubRelationStore) DeleteMachineRelations(_ context.Context, machineID string) error {
	s.deletedMachines = append(s.deletedMachines, machineID)
	return nil
}

func (s *stubRelationStore) ListMuscleGroups(context.Context) ([]MuscleGroupInfo, error) {
	return nil, nil
}

func (s *stubRelationStore) CreateMuscleGroup(context.Context, string, string, string) (MuscleGroup, error) {
	return MuscleGroup{}, nil
}

func (s *stubRelationStore) UpdateMuscleGroup(context.Context, string, string, string, string) error {
	return nil
}

func (s *stubRelationStore) DeleteMuscleGroup(context.Context, string) error {
	return nil
}

func (s *stubRelationStore) MuscleGroupsForMachine(_ context.Context, machineID string) ([]MachineMuscleGroupInfo, error) {
	return s.muscleGroups[machineID], nil
}

func (s *stubRelationStore) AssociateMuscleGroup(context.Context, string, string, bool) error {
	return nil
}

func (s *stubRelationStore) DissociateMuscleGroup(context.Context, string, string) error {
	return nil
}

func (s *stubRelationStore) CreateWeightRecord(context.Context, *WeightRecord) error {
	return nil
}

func (s *stubRelationStore) ListWeightRecords(context.Context, string) ([]WeightRecord, error) {
	return nil, nil
}

func (s *stubRelationStore) MaxWeightRecord(context.Context, string, string, string) (*WeightRecord, error) {
	return nil, nil
}

func (s *stubRelationStore) DeleteWeightRecord(context.Context, string, string) error {
	return nil
}

func newTestCatalog(t *testing.T, relations *stubRelationStore) (*Catalog, string) {
	dir := t.TempDir()
	catalog := NewCatalog(dir, "http://localhost:3001/", NewMetadataStore(dir), relations)
	return catalog, dir
}

func writeImage(t *testing.T, dir, name string) {
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0644))
}

func TestCatalogPartition(t *testing.T) {
	catalog, dir := newTestCatalog(t, &stubRelationStore{})

	writeImage(t, dir, "11111111_bench_press.jpg")
	writeImage(t, dir, "22222222_grip_wide.jpg")
	writeImage(t, dir, "33333333_unclassified.jpg")

	record, err := catalog.RegisterUpload("11111111_bench_press.jpg", "Bench Press", KindMachine, "")
	assert.NoError(t, err)
	assert.Equal(t, "Bench Press", record.Name)

	_, err = catalog.RegisterUpload("22222222_grip_wide.jpg", "Wide", KindGrip, AllMachines)
	assert.NoError(t, err)

	machines, err := catalog.ListMachines()
	assert.NoError(t, err)
	assert.Len(t, machines, 1)
	assert.Equal(t, "11111111_bench_press", machines[0].ID)
	assert.Equal(t, "http://localhost:3001/images/11111111_bench_press.jpg", machines[0].Image)

	gripTypes, err := catalog.ListGripTypes()
	assert.NoError(t, err)
	assert.Len(t, gripTypes, 1)
	assert.Equal(t, "22222222_grip_wide", gripTypes[0].ID)

	// unclassified files only show up in the admin listing
	entries, err := catalog.AllFiles()
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestCatalogGet(t *testing.T) {
	catalog, dir := newTestCatalog(t, &stubRelationStore{})

	writeImage(t, dir, "11111111_bench_press.jpg")
	_, err := catalog.RegisterUpload("11111111_bench_press.jpg", "", KindMachine, "")
	assert.NoError(t, err)

	machine, err := catalog.Get("11111111_bench_press")
	assert.NoError(t, err)
	assert.Equal(t, "Bench Press", machine.Name)

	_, err = catalog.Get("absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassify(t *testing.T) {
	catalog, dir := newTestCatalog(t, &stubRelationStore{})

	writeImage(t, dir, "11111111_bench_press.jpg")
	_, err := catalog.RegisterUpload("11111111_bench_press.jpg", "Flat Bench", KindMachine, "")
	assert.NoError(t, err)

	record := catalog.Classify("11111111_bench_press.jpg")
	assert.Equal(t, "Flat Bench", record.Name)
	assert.Equal(t, KindMachine, record.Type)

	// files predating the sidecar get an inferred record
	record = catalog.Classify("99999999_grip_wide.jpg")
	assert.Equal(t, KindGrip, record.Type)
	assert.Equal(t, "Grip Wide", record.Name)
}

func TestRegisterUpload(t *testing.T) {
	catalog, _ := newTestCatalog(t, &stubRelationStore{})

	_, err := catalog.RegisterUpload("11111111_thing.jpg", "", "weird", "")
	assert.ErrorIs(t, err, ErrInvalid)

	// machineFor only means something for grip types
	record, err := catalog.RegisterUpload("11111111_bench_press.jpg", "", KindMachine, "something")
	assert.NoError(t, err)
	assert.Empty(t, record.MachineFor)
	assert.False(t, record.UploadDate.IsZero())

	// a missing kind falls back to the filename convention
	record, err = catalog.RegisterUpload("22222222_grip_wide.jpg", "", "", "11111111_bench_press")
	assert.NoError(t, err)
	assert.Equal(t, KindGrip, record.Type)
	assert.Equal(t, "11111111_bench_press", record.MachineFor)
}

func TestGripTypesForMachineExactMatch(t *testing.T) {
	relations := &stubRelationStore{
		gripRelations: map[string][]string{
			"11111111_bench_press": {"22222222_grip_wide"},
		},
	}
	catalog, dir := newTestCatalog(t, relations)

	writeImage(t, dir, "22222222_grip_wide.jpg")
	_, err := catalog.RegisterUpload("22222222_grip_wide.jpg", "Wide Grip", KindGrip, "11111111_bench_press")
	assert.NoError(t, err)

	items, err := catalog.GripTypesForMachine(context.Background(), "11111111_bench_press")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Wide Grip", items[0].Name)
}

func TestGripTypesForMachineSuffixMatch(t *testing.T) {
	// the junction still points at the grip's old id; the file on disk was
	// re-uploaded under a fresh timestamp prefix
	relations := &stubRelationStore{
		gripRelations: map[string][]string{
			"11111111_bench_press": {"22222222_grip_wide"},
		},
	}
	catalog, dir := newTestCatalog(t, relations)

	writeImage(t, dir, "99999999_grip_wide.jpg")
	writeImage(t, dir, "88888888_bench_press.jpg")

	items, err := catalog.GripTypesForMachine(context.Background(), "11111111_bench_press")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "99999999_grip_wide", items[0].ID)
	// the file has no metadata record, so the label comes from the filename
	assert.Equal(t, "Wide", items[0].Name)
}

func TestGripTypesForMachineSuffixMatchTrailingMarker(t *testing.T) {
	// same re-upload drift, but the grip marker sits at the end of the name
	relations := &stubRelationStore{
		gripRelations: map[string][]string{
			"11111111_bench_press": {"12345678_wide_grip"},
		},
	}
	catalog, dir := newTestCatalog(t, relations)

	writeImage(t, dir, "87654321_wide_grip.png")

	items, err := catalog.GripTypesForMachine(context.Background(), "11111111_bench_press")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "87654321_wide_grip", items[0].ID)
	assert.Equal(t, "Wide Grip", items[0].Name)
}

func TestGripTypesForMachineDisplayNameFallback(t *testing.T) {
	// the junction is keyed by the machine's old id; the current file shares
	// its display name with the old record
	relations := &stubRelationStore{
		gripRelations: map[string][]string{
			"11111111_bench_press": {"33333333_grip_wide"},
		},
	}
	catalog, dir := newTestCatalog(t, relations)

	writeImage(t, dir, "22222222_bench_press.jpg")
	writeImage(t, dir, "33333333_grip_wide.jpg")

	_, err := catalog.RegisterUpload("22222222_bench_press.jpg", "Bench Press", KindMachine, "")
	assert.NoError(t, err)
	assert.NoError(t, catalog.metadata.Upsert("11111111_bench_press.jpg", ImageRecord{
		Name: "bench press",
		Type: KindMachine,
	}))

	items, err := catalog.GripTypesForMachine(context.Background(), "22222222_bench_press")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "33333333_grip_wide", items[0].ID)
}

func TestGripTypesForMachineNoRelations(t *testing.T) {
	catalog, dir := newTestCatalog(t, &stubRelationStore{})

	writeImage(t, dir, "22222222_grip_wide.jpg")

	items, err := catalog.GripTypesForMachine(context.Background(), "11111111_bench_press")
	assert.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCatalogEditInPlace(t *testing.T) {
	catalog, dir := newTestCatalog(t, &stubRelationStore{})

	writeImage(t, dir, "11111111_bench_press.jpg")
	_, err := catalog.RegisterUpload("11111111_bench_press.jpg", "Bench Press", KindMachine, "")
	assert.NoError(t, err)

	before, _ := catalog.metadata.Get("11111111_bench_press.jpg")

	record, err := catalog.Edit("11111111_bench_press.jpg", "Flat Bench", "", "")
	assert.NoError(t, err)
	assert.Equal(t, "Flat Bench", record.Name)
	assert.Equal(t, before.UploadDate, record.UploadDate)
	assert.False(t, record.LastModified.Before(before.LastModified))

	// the file and hence the external id are untouched
	machine, err := catalog.Get("11111111_bench_press")
	assert.NoError(t, err)
	assert.Equal(t, "Flat Bench", machine.Name)

	_, err = catalog.Edit("absent.jpg", "x", "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogEditReplaceFile(t *testing.T) {
	catalog, dir := newTestCatalog(t, &stubRelationStore{})

	writeImage(t, dir, "11111111_bench_press.jpg")
	writeImage(t, dir, "22222222_bench_press.jpg")
	_, err := catalog.RegisterUpload("11111111_bench_press.jpg", "Bench Press", KindMachine, "")
	assert.NoError(t, err)

	record, err := catalog.Edit("11111111_bench_press.jpg", "", "", "22222222_bench_press.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "Bench Press", record.Name)

	_, statErr := os.Stat(filepath.Join(dir, "11111111_bench_press.jpg"))
	assert.True(t, os.IsNotExist(statErr))

	_, ok := catalog.metadata.Get("11111111_bench_press.jpg")
	assert.False(t, ok)
	_, ok = catalog.metadata.Get("22222222_bench_press.jpg")
	assert.True(t, ok)
}

func TestCatalogDelete(t *testing.T) {
	relations := &stubRelationStore{}
	catalog, dir := newTestCatalog(t, relations)

	assert.ErrorIs(t, catalog.Delete(context.Background(), "absent.jpg"), ErrNotFound)

	writeImage(t, dir, "11111111_bench_press.jpg")
	_, err := catalog.RegisterUpload("11111111_bench_press.jpg", "", KindMachine, "")
	assert.NoError(t, err)

	assert.NoError(t, catalog.Delete(context.Background(), "11111111_bench_press.jpg"))

	_, statErr := os.Stat(filepath.Join(dir, "11111111_bench_press.jpg"))
	assert.True(t, os.IsNotExist(statErr))
	_, ok := catalog.metadata.Get("11111111_bench_press.jpg")
	assert.False(t, ok)

	// machine deletions cascade to the junction table
	assert.Equal(t, []string{"11111111_bench_press"}, relations.deletedMachines)
}

func TestMachineViews(t *testing.T) {
	relations := &stubRelationStore{
		muscleGroups: map[string][]MachineMuscleGroupInfo{
			"11111111_bench_press": {
				{MuscleGroupID: "mg1", Name: "chest", DisplayName: "Chest", IsPrimary: true},
			},
		},
	}
	catalog, dir := newTestCatalog(t, relations)

	writeImage(t, dir, "11111111_bench_press.jpg")
	writeImage(t, dir, "22222222_lat_pulldown.jpg")
	_, err := catalog.RegisterUpload("11111111_bench_press.jpg", "Bench Press", KindMachine, "")
	assert.NoError(t, err)
	_, err = catalog.RegisterUpload("22222222_lat_pulldown.jpg", "Lat Pulldown", KindMachine, "")
	assert.NoError(t, err)

	views, err := catalog.MachineViews(context.Background())
	assert.NoError(t, err)
	assert.Len(t, views, 2)

	view, err := catalog.MachineView(context.Background(), "11111111_bench_press")
	assert.NoError(t, err)
	assert.Len(t, view.MuscleGroups, 1)
	assert.True(t, view.MuscleGroups[0].IsPrimary)

	view, err = catalog.MachineView(context.Background(), "22222222_lat_pulldown")
	assert.NoError(t, err)
	assert.NotNil(t, view.MuscleGroups)
	assert.Empty(t, view.MuscleGroups)

	_, err = catalog.MachineView(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}
