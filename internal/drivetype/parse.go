package drivetype

import (
	"strings"
	"unicode"
)

// ParseMediaType reads storage-query output. It accepts the names "SSD"
// and "HDD" or the numeric MediaType codes 4 and 3, matched as whole
// tokens. The first recognised token wins.
func ParseMediaType(out string) Verdict {
	tokens := strings.FieldsFunc(out, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		switch strings.ToUpper(tok) {
		case "SSD", "4":
			return SSD
		case "HDD", "3":
			return HDD
		}
	}
	return Inconclusive
}

// ParseRotational reads a rotational flag as printed by lsblk's ROTA
// column or /sys/block/*/queue/rotational.
func ParseRotational(out string) Verdict {
	line := strings.TrimSpace(out)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	switch line {
	case "0":
		return SSD
	case "1":
		return HDD
	default:
		return Inconclusive
	}
}

// ClassifyDiskDrive inspects the MediaType and InterfaceType reported
// for a physical disk by the management subsystem. An NVMe interface is
// solid-state whatever the media type says. It never answers HDD: the
// generic "Fixed hard disk media" string covers both kinds.
func ClassifyDiskDrive(mediaType, interfaceType, diskModel string) Verdict {
	media := strings.ToUpper(mediaType)
	if strings.Contains(media, "SSD") || strings.Contains(media, "SOLID STATE") {
		return SSD
	}
	if strings.EqualFold(strings.TrimSpace(interfaceType), "NVMe") {
		return SSD
	}
	if m := strings.ToUpper(diskModel); strings.Contains(m, "NVME") || strings.Contains(m, "SSD") {
		return SSD
	}
	return Inconclusive
}
