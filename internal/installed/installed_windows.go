//go:build windows

package installed

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows/registry"
)

var uninstallKeys = []struct {
	root registry.Key
	path string
}{
	{registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.CURRENT_USER, `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`},
}

func systemNames() []string {
	var names []string
	for _, u := range uninstallKeys {
		k, err := registry.OpenKey(u.root, u.path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
		if err != nil {
			logrus.WithError(err).WithField("key", u.path).Debug("open uninstall key")
			continue
		}
		subs, err := k.ReadSubKeyNames(-1)
		if err != nil {
			logrus.WithError(err).WithField("key", u.path).Debug("enumerate uninstall key")
		}
		for _, s := range subs {
			entry, err := registry.OpenKey(k, s, registry.QUERY_VALUE)
			if err != nil {
				continue
			}
			if name, _, err := entry.GetStringValue("DisplayName"); err == nil {
				names = append(names, name)
			}
			entry.Close()
		}
		k.Close()
	}
	logrus.Debugf("Read %d installed program names from registry", len(names))
	return names
}
