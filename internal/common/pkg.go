package common

import (
	"path"
	"strings"
)

// PkgAlias returns the name a package is usually imported under: the last path
// element, skipping a major version element ("example.com/lib/v2" is "lib") and
// dropping a gopkg.in version suffix ("gopkg.in/yaml.v3" is "yaml").
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	dir, base := path.Split(pkgPath)
	if isMajorVersion(base) && dir != "" {
		base = path.Base(dir)
	}

	if strings.HasPrefix(pkgPath, "gopkg.in/") {
		if i := strings.Index(base, ".v"); i > 0 {
			base = base[:i]
		}
	}

	return base
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}

	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
