package ingest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// renderThumbnail pipes a raw file through dcraw and cjpeg to produce a
// JPEG preview at outputDir/filename, grounded on original_source's literal
// `dcraw -c -w -q 3 {} | cjpeg > {}` shell-out.
func renderThumbnail(path, outputDir, filename string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating thumbnail directory %s: %w", outputDir, err)
	}

	dest := filepath.Join(outputDir, filename)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating thumbnail file %s: %w", dest, err)
	}
	defer out.Close()

	dcraw := exec.Command("dcraw", "-c", "-w", "-q", "3", path)
	cjpeg := exec.Command("cjpeg")

	pipe, err := dcraw.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("wiring dcraw|cjpeg pipe: %w", err)
	}
	cjpeg.Stdin = pipe
	cjpeg.Stdout = out

	if err := cjpeg.Start(); err != nil {
		return "", fmt.Errorf("starting cjpeg: %w", err)
	}
	if err := dcraw.Run(); err != nil {
		return "", fmt.Errorf("running dcraw: %w", err)
	}
	if err := cjpeg.Wait(); err != nil {
		return "", fmt.Errorf("running cjpeg: %w", err)
	}

	return dest, nil
}
