package model

import (
	"time"
)

// Permissions is the per-user capability source of record. The legacy
// deployment packed these into a bitmask; the four flags are kept as
// explicit columns and only folded into a bitmask for token claims.
type Permissions struct {
	Enabled     bool `json:"enabled"`
	Uploader    bool `json:"uploader"`
	Pathologist bool `json:"pathologist"`
	Admin       bool `json:"admin"`
}

// Bit layout of the legacy permission mask.
const (
	permBitEnabled = 1 << iota
	permBitUploader
	permBitPathologist
	permBitAdmin
)

// Bitmask folds the flags into the legacy bit layout
// (bit0 enabled, bit1 uploader, bit2 pathologist, bit3 admin).
func (p Permissions) Bitmask() int {
	var mask int
	if p.Enabled {
		mask |= permBitEnabled
	}
	if p.Uploader {
		mask |= permBitUploader
	}
	if p.Pathologist {
		mask |= permBitPathologist
	}
	if p.Admin {
		mask |= permBitAdmin
	}
	return mask
}

// PermissionsFromBitmask is the inverse of Bitmask.
func PermissionsFromBitmask(mask int) Permissions {
	return Permissions{
		Enabled:     mask&permBitEnabled != 0,
		Uploader:    mask&permBitUploader != 0,
		Pathologist: mask&permBitPathologist != 0,
		Admin:       mask&permBitAdmin != 0,
	}
}

// Capability is one named action a route can demand. Routes declare a
// Capability instead of poking at permission bits inline.
type Capability int

const (
	// CapViewImages covers fetching images to grade. Any authenticated
	// user may do this.
	CapViewImages Capability = iota
	// CapGradeImages covers submitting ratings.
	CapGradeImages
	// CapUploadImages covers adding new images to the pool. Any
	// authenticated user may do this; the uploader flag only rides
	// along in the legacy bitmask.
	CapUploadImages
	// CapManageUsers covers creating and listing users.
	CapManageUsers
	// CapOwnTasks covers task management and aggregate views for an
	// investigator's own tasks.
	CapOwnTasks
)

// Allowed is the authorization predicate: does a user holding perms get
// to exercise cap? Viewing and uploading are open to every
// authenticated user; the rest demand flags on an enabled account.
func Allowed(perms Permissions, cap Capability) bool {
	switch cap {
	case CapViewImages:
		return true
	case CapGradeImages:
		return perms.Pathologist && perms.Enabled
	case CapUploadImages:
		return true
	case CapManageUsers:
		return perms.Admin && perms.Enabled
	case CapOwnTasks:
		return perms.Enabled
	}
	return false
}

type User struct {
	ID          int64       `json:"id"`
	Fullname    string      `json:"fullname"`
	Email       string      `json:"email"`
	Password    string      `json:"-"` // bcrypt hash, never exposed
	Permissions Permissions `json:"permissions"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Observer is a user eligible to grade a task, with whether they are
// currently assigned to it.
type Observer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
}
