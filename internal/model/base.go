package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ── INT[] column type ──

// IntArray maps a PostgreSQL INT[] column. It stores the same {1,2,3} text
// form on SQLite, which keeps tests on the in-memory driver honest.
type IntArray []int

// Scan parses the {1,2,3} text representation.
func (a *IntArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("IntArray.Scan: unsupported type %T", src)
	}
	s = strings.Trim(s, "{}")
	if s == "" {
		*a = IntArray{}
		return nil
	}
	parts := strings.Split(s, ",")
	arr := make(IntArray, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("IntArray.Scan: invalid element %q: %w", p, err)
		}
		arr = append(arr, n)
	}
	*a = arr
	return nil
}

// Value renders {1,2,3}; a nil slice is stored as NULL.
func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	parts := make([]string, len(a))
	for i, n := range a {
		parts[i] = strconv.Itoa(n)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// GormDataType names the general type gorm needs to accept a slice field.
func (IntArray) GormDataType() string { return "intarray" }

// GormDBDataType picks INT[] on PostgreSQL and TEXT elsewhere.
func (IntArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "INT[]"
	}
	return "TEXT"
}

// BaseModel carries the audit timestamps embedded in every table.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── Roles ──

// Role names shared by the global user role and term memberships.
const (
	RoleAdmin  = "Admin"
	RoleAdder  = "Adder"
	RoleMember = "Member"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleAdder, RoleMember:
		return true
	}
	return false
}
