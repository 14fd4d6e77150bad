// asset_io.go - the one asset-loading capability spec.md §6 asks for:
// read bytes from a path, capped so a runaway shader or config file can't
// exhaust memory. Grounded on the teacher's plain os.ReadFile use (no
// embed.FS, no vfs layer in the teacher).
package main

import "os"

// MaxTextAssetBytes bounds any text asset (shader source, config file) this
// harness reads from disk.
const MaxTextAssetBytes = 16 * 1024 * 1024

// ReadShaderSource reads a GLSL source file, enforcing MaxTextAssetBytes.
func ReadShaderSource(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxTextAssetBytes {
		return "", NewBenchError(KindAssetIO, "shader source exceeds size cap: "+path, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadAssetBytes reads an arbitrary asset file, enforcing MaxTextAssetBytes.
func ReadAssetBytes(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxTextAssetBytes {
		return nil, NewBenchError(KindAssetIO, "asset exceeds size cap: "+path, nil)
	}
	return os.ReadFile(path)
}
