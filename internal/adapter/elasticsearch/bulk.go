package elasticsearch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/climbr-etl/internal/domain"
)

type bulkAction struct {
	Index bulkTarget `json:"index"`
}

type bulkTarget struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// WriteBulk encodes docs in the bulk API format: an index action line
// followed by the document line, both newline terminated.
func WriteBulk(w io.Writer, docs []domain.Document) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, doc := range docs {
		action := bulkAction{Index: bulkTarget{Index: doc.Index, ID: strconv.Itoa(doc.ID)}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("encode bulk action %s/%d: %w", doc.Index, doc.ID, err)
		}
		if err := enc.Encode(doc.Body); err != nil {
			return fmt.Errorf("encode document %s/%d: %w", doc.Index, doc.ID, err)
		}
	}
	return bw.Flush()
}
