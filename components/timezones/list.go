package timezones

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

//go:embed data/iana_timezones.txt
var dataFS embed.FS

const defaultListPath = "data/iana_timezones.txt"

var loadDefaultZones = sync.OnceValues(func() ([]string, error) {
	f, err := dataFS.Open(defaultListPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadZones(f)
})

// DefaultZones returns a copy of the embedded IANA zone list, sorted.
func DefaultZones() ([]string, error) {
	zones, err := loadDefaultZones()
	if err != nil {
		return nil, fmt.Errorf("timezones: load embedded list: %w", err)
	}
	return slices.Clone(zones), nil
}

// LoadZones reads one zone per line, skipping blanks and # comments, and
// returns the distinct zones sorted.
func LoadZones(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("timezones: missing reader")
	}

	scanner := bufio.NewScanner(r)
	zones := make([]string, 0, 512)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		zones = append(zones, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("timezones: read list: %w", err)
	}

	slices.Sort(zones)
	return slices.Compact(zones), nil
}

// zonesFor returns the configured zones or the embedded list.
func zonesFor(opts Options) ([]string, error) {
	if opts.Zones != nil {
		return opts.Zones, nil
	}
	return loadDefaultZones()
}

// OffsetLabel labels a zone with its current UTC offset, for example
// "UTC+05:30" for Asia/Kolkata, which option.DisplayLabel shows as
// "Asia/Kolkata (UTC+05:30)". Unknown zones are labelled with their name.
func OffsetLabel(zone string) string {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return zone
	}
	_, offset := time.Now().In(loc).Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offset/3600, (offset%3600)/60)
}
