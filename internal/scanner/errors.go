package scanner

import "fmt"

func errShape(field, want string) error {
	return fmt.Errorf("%s: expected %s", field, want)
}

func (l *Loader) skippedRecords(src Source, n int) {
	if n == 0 {
		return
	}
	l.logger.Warn("skipped malformed scanner records",
		"scanner", string(src.Scanner), "path", src.Path, "skipped", n)
}
