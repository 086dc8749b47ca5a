package utils

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/yashagw/relcore/internal/value"
)

// HashValue hashes a value under loose equality using fnv, so values that
// compare equal land in the same bucket.
func HashValue(v value.Value) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(v.LooseKey()))
	return h.Sum64()
}

// RowKey builds the strict identity key of a row, used for duplicate
// elimination and set membership.
func RowKey(row []value.Value) string {
	var sb strings.Builder
	for _, v := range row {
		writePart(&sb, v.Identity())
	}
	return sb.String()
}

// LooseRowKey is RowKey under loose equality: two rows get the same key
// exactly when their values are pairwise Equal.
func LooseRowKey(row []value.Value) string {
	var sb strings.Builder
	for _, v := range row {
		writePart(&sb, v.LooseKey())
	}
	return sb.String()
}

// writePart length-prefixes each part, so no cell content can shift a
// column boundary.
func writePart(sb *strings.Builder, part string) {
	sb.WriteString(strconv.Itoa(len(part)))
	sb.WriteByte(':')
	sb.WriteString(part)
}
