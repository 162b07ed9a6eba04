package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func RenewOutputPath(outputPath string) string {
	dir := filepath.Dir(outputPath)
	base := filepath.Base(outputPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	index := 1
	for {
		outputPath = filepath.Join(dir, fmt.Sprintf("%s-(%d)%s", name, index, ext))
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			return outputPath
		}
		index++
	}
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// includes logger
func ReadDownloadList(filePath string) ([]DownloadEntry, error) {
	log := GetLogger("config")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}
	var entries []DownloadEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyDownloadList
	}
	for i, entry := range entries {
		if entry.URL == "" {
			return nil, fmt.Errorf("missing link for entry %d", i+1)
		}
	}
	log.Debug().Int("count", len(entries)).Msg("Entries loaded from YAML")
	return entries, nil
}

// FormatBytes renders a byte count with binary units and up to two decimals,
// e.g. 1536 -> "1.5 KB".
func FormatBytes(bytes int64) string {
	return FormatBytesPrecision(bytes, 2)
}

func FormatBytesPrecision(bytes int64, decimals int) string {
	const unit = 1024
	if bytes <= 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}
	div, exp := int64(1), 0
	for n := bytes; n >= unit && exp < len(byteUnits)-1; n /= unit {
		div *= unit
		exp++
	}
	fixed := strconv.FormatFloat(float64(bytes)/float64(div), 'f', decimals, 64)
	value, _ := strconv.ParseFloat(fixed, 64)
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + byteUnits[exp]
}

func FormatSpeed(bytes int64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "0 Bytes/s"
	}
	bps := float64(bytes) / elapsed.Seconds()
	return FormatBytes(int64(bps)) + "/s"
}

// CleanPartials removes leftover temporary download files from dir and
// returns the paths it deleted.
func CleanPartials(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), TempSuffix) {
			continue
		}
		filePath := filepath.Join(dir, file.Name())
		if err := os.Remove(filePath); err != nil {
			return removed, err
		}
		removed = append(removed, filePath)
	}
	return removed, nil
}
