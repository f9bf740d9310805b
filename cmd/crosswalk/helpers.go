package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const stampLayout = "2006-01-02 15:04"

// formatID renders a numeric identifier, or a dash when the namespace is
// unresolved.
func formatID(id int64) string {
	if id <= 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

func formatIMDB(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "-"
	}
	return id
}

func formatStamp(value time.Time) string {
	if value.IsZero() {
		return "unknown"
	}
	return value.Local().Format(stampLayout)
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
