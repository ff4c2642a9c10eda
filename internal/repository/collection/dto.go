package collection

import (
	"fmt"
	"strconv"
	"time"
)

// Info is the stored collection metadata.
type Info struct {
	Name      string
	Dim       int
	CreatedAt time.Time
}

func infoToHash(info Info) map[string]string {
	return map[string]string{
		"name":       info.Name,
		"dim":        strconv.Itoa(info.Dim),
		"created_at": strconv.FormatInt(info.CreatedAt.UnixMilli(), 10),
	}
}

func infoFromHash(name string, m map[string]string) (Info, error) {
	dim, err := strconv.Atoi(m["dim"])
	if err != nil {
		return Info{}, fmt.Errorf("invalid dim %q: %w", m["dim"], err)
	}
	info := Info{Name: name, Dim: dim}
	if ms, err := strconv.ParseInt(m["created_at"], 10, 64); err == nil {
		info.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return info, nil
}
