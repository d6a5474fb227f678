package utils

import (
	"path/filepath"
	"strings"
)

// OutputExt is the extension given to compiled logic text.
const OutputExt = ".msm"

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// DefaultOutputPath swaps the source extension for OutputExt.
func DefaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" || ext == OutputExt {
		return inPath + OutputExt
	}
	return strings.TrimSuffix(inPath, ext) + OutputExt
}
