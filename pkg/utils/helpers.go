package utils

import (
	"fmt"
	"io/ioutil"
	"path"
	"strings"
)

//InSlice returns true if given string appears in given slice
func InSlice(lookingFor string, slice []string) bool {
	for _, s := range slice {
		if s == lookingFor {
			return true
		}
	}

	return false
}

//ListDir returns a list of files/ directories in given path
func ListDir(path string) ([]string, error) {
	names := make([]string, 0)
	if files, err := ioutil.ReadDir(path); err != nil {
		return nil, fmt.Errorf("ListDir: Error, got '%v'", err)
	} else {
		for _, f := range files {
			names = append(names, f.Name())
		}
	}

	return names, nil
}

//OutputBaseName returns the base name (no extension) of the videos produced for given source video and run.
//Only the first 8 characters of runID are used.
func OutputBaseName(srcVideoName, runID string) string {
	base := strings.TrimSuffix(path.Base(srcVideoName), path.Ext(srcVideoName))
	if len(runID) > 8 {
		runID = runID[:8]
	}
	if runID == "" {
		return base
	}
	return base + "_" + runID
}
