package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
)

// String возвращает строку версии, заполняемую через -ldflags.
func String() string {
	return fmt.Sprintf("%s (%s)", version, commit)
}
