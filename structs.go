package gymserver

import (
	"time"
)

// ImageRecord is the per-file descriptive record kept in the metadata
// sidecar. The JSON field names are the sidecar's de facto schema; other
// tools interoperating with the upload directory must honor them.
type ImageRecord struct {
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	MachineFor   string    `json:"machineFor,omitempty"`
	UploadDate   time.Time `json:"uploadDate"`
	LastModified time.Time `json:"lastModified"`
}

// CatalogItem is one classified entry of a catalog listing. ID is the
// filename without its extension and is the stable external identifier.
type CatalogItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

// FileEntry is the admin listing shape: a catalog item plus the raw
// metadata record and file size.
type FileEntry struct {
	Filename   string      `json:"filename"`
	Name       string      `json:"name"`
	Size       int64       `json:"size"`
	UploadDate time.Time   `json:"uploadDate"`
	Type       string      `json:"type"`
	Metadata   ImageRecord `json:"metadata"`
}

// GripRelation is one machine/grip-type pair of the bulk association
// payload.
type GripRelation struct {
	MachineID  string `json:"machine_id"`
	GripTypeID string `json:"grip_type_id"`
}

// MuscleGroupInfo is the API shape of a muscle group, with the number of
// machines currently associated to it.
type MuscleGroupInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Color        string `json:"color"`
	MachineCount int64  `json:"machine_count"`
}

// MachineMuscleGroupInfo is a muscle group as seen from a machine: the
// group's attributes plus whether it is the machine's primary group.
type MachineMuscleGroupInfo struct {
	MuscleGroupID string `json:"muscle_group_id"`
	Name          string `json:"muscle_group_name"`
	DisplayName   string `json:"muscle_group_display"`
	Color         string `json:"muscle_group_color"`
	IsPrimary     bool   `json:"is_primary"`
}

// MachineView is the panel's read-time view of a machine. Machines are
// never persisted on their own; a view is synthesized from the kind=machine
// ImageRecord joined with the relational association rows.
type MachineView struct {
	CatalogItem
	UploadDate   time.Time                `json:"uploadDate"`
	MuscleGroups []MachineMuscleGroupInfo `json:"muscle_groups"`
}
