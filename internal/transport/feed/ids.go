package feed

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadIDs reads one product ID per line. Surrounding whitespace is trimmed,
// blank lines are skipped and repeated IDs are kept once, in first-seen order.
func ReadIDs(r io.Reader) ([]string, error) {
	var ids []string
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read id list: %w", err)
	}
	return ids, nil
}
