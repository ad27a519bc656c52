//go:build darwin

package installed

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

func systemNames() []string {
	dirs := []string{"/Applications"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "Applications"))
	}
	var names []string
	for _, d := range dirs {
		names = append(names, appBundles(d)...)
	}
	logrus.Debugf("Read %d installed application bundles", len(names))
	return names
}

// appBundles lists "<Name>.app" entries directly under dir.
func appBundles(dir string) []string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range ents {
		if strings.EqualFold(filepath.Ext(e.Name()), ".app") {
			names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		}
	}
	return names
}
