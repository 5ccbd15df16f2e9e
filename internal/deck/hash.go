package deck

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// ContentHash computes a stable hex digest of a template tree. The schema
// cache keys entries by (template ID, content hash), so re-uploading a
// changed file under the same name invalidates stale schemas automatically.
func ContentHash(t *Template) string {
	// encoding/json emits struct fields in declaration order, so the
	// encoding is deterministic for a given tree.
	b, err := json.Marshal(t)
	if err != nil {
		// A Template is plain data; marshal can only fail on corrupt
		// invalid UTF-8, which we still want a stable answer for.
		return fmt.Sprintf("unhashable-%d", len(t.Slides))
	}
	sum := sha256.Sum256(b)
	return fmt.Sprintf("%x", sum[:])
}
