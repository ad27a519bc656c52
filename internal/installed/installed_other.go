//go:build !windows && !darwin

package installed

func systemNames() []string { return nil }
