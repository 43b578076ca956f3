package storage

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildAuditPath lays records out in hive-style hourly partitions so they can
// be scanned with read_parquet('audit/*/*/*.parquet', hive_partitioning = true).
func BuildAuditPath(at time.Time, id string) (string, error) {
	if err := validatePathComponent(id, "audit id"); err != nil {
		return "", err
	}
	ts := at.UTC()
	return path.Join(
		"audit",
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("hour=%02d", ts.Hour()),
		fmt.Sprintf("ask-%s.parquet", id),
	), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
