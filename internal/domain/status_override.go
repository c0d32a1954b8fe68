package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StatusOverride holds either a manually declared project status or nothing,
// in which case the status is derived from stage completion. The zero value
// means "derive".
type StatusOverride struct {
	status ProjectStatus
	set    bool
}

// StatusDerived returns an override that defers to stage completion
func StatusDerived() StatusOverride {
	return StatusOverride{}
}

// StatusExplicit returns an override pinning the project to status
func StatusExplicit(status ProjectStatus) StatusOverride {
	return StatusOverride{status: status, set: true}
}

// Explicit returns the declared status and true, or false when the status
// should be derived
func (o StatusOverride) Explicit() (ProjectStatus, bool) {
	return o.status, o.set
}

// IsDerived reports whether no manual status is set
func (o StatusOverride) IsDerived() bool {
	return !o.set
}

func (o StatusOverride) String() string {
	if !o.set {
		return "derived"
	}
	return string(o.status)
}

// Value implements driver.Valuer. Derived statuses are stored as NULL.
func (o StatusOverride) Value() (driver.Value, error) {
	if !o.set {
		return nil, nil
	}
	return string(o.status), nil
}

// Scan implements sql.Scanner
func (o *StatusOverride) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*o = StatusDerived()
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into StatusOverride", src)
	}

	if raw == "" {
		*o = StatusDerived()
		return nil
	}
	status := ProjectStatus(raw)
	if !status.IsValid() {
		return fmt.Errorf("invalid project status %q", raw)
	}
	*o = StatusExplicit(status)
	return nil
}

// MarshalJSON encodes a derived status as null
func (o StatusOverride) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(string(o.status))
}

// UnmarshalJSON accepts null, an empty string or one of the status values
func (o *StatusOverride) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*o = StatusDerived()
		return nil
	}
	status := ProjectStatus(*raw)
	if !status.IsValid() {
		return fmt.Errorf("invalid project status %q", *raw)
	}
	*o = StatusExplicit(status)
	return nil
}
