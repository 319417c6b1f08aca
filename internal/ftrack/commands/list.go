package commands

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
)

// formatBytes converts a byte count into a human-readable string.
func formatBytes(bytes int64, decimals int) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	const k = 1024
	if decimals < 0 {
		decimals = 0
	}
	sizes := []string{"Bytes", "KB", "MB", "GB", "TB"}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(k)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	return fmt.Sprintf("%.*f %s", decimals, float64(bytes)/math.Pow(k, float64(i)), sizes[i])
}

// List prints the snapshot timeline of targetDirectory.
func List(targetDirectory string) error {
	r, err := openRepo(targetDirectory)
	if err != nil {
		return err
	}
	m, err := r.manager()
	if err != nil {
		return err
	}

	entries := m.Entries()
	if len(entries) == 0 {
		fmt.Printf("No snapshots found for \"%s\".\n", r.dir)
		return nil
	}

	storedSize, err := lib.NewObjectStore(r.dir).StoredSize()
	if err != nil {
		return fmt.Errorf("failed to calculate stored size: %w", err)
	}

	fmt.Printf("Snapshots for \"%s\":\n", r.dir)
	fmt.Printf("%-7s %-6s %-25s %-8s %s\n", "INDEX", "ID", "TIMESTAMP", "FILES", "SIZE")
	fmt.Printf("%-7s %-6s %-25s %-8s %s\n", "=====", "==", "=========", "=====", "====")
	for _, e := range entries {
		fmt.Printf("%-7s %-6s %-25s %-8s %s\n",
			strconv.Itoa(e.Index),
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Local().Format("2006-01-02 15:04:05 MST"),
			strconv.Itoa(e.FileCount),
			formatBytes(e.TotalSize, 2),
		)
	}
	fmt.Printf("\nStored content size: %s\n", formatBytes(storedSize, 2))
	return nil
}
