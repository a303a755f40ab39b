package intake

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dataURLPrefix = "data:image/"

// ExtractSignatures walks the raw value map, including nested objects, and
// decodes every embedded signature image. Entries that fail to decode are
// skipped rather than failing the submission.
func ExtractSignatures(submissionID, patientID uuid.UUID, signerName string, signedAt time.Time, values map[string]any) []Signature {
	var out []Signature
	walkValues("", values, func(field string, value string) {
		data, ok := decodeDataURL(value)
		if !ok {
			return
		}
		sum := sha256.Sum256(data)
		out = append(out, Signature{
			ID:           uuid.New(),
			SubmissionID: submissionID,
			PatientID:    patientID,
			FieldName:    field,
			Bytes:        data,
			Hash:         hex.EncodeToString(sum[:]),
			SignerName:   signerName,
			SignedAt:     signedAt,
		})
	})
	return out
}

func walkValues(prefix string, values map[string]any, visit func(field, value string)) {
	for name, value := range values {
		field := name
		if prefix != "" {
			field = prefix + "." + name
		}
		switch v := value.(type) {
		case string:
			if strings.HasPrefix(v, dataURLPrefix) {
				visit(field, v)
			}
		case map[string]any:
			walkValues(field, v, visit)
		case []any:
			for _, entry := range v {
				if s, ok := entry.(string); ok && strings.HasPrefix(s, dataURLPrefix) {
					visit(field, s)
				}
			}
		}
	}
}

// decodeDataURL extracts the payload of a base64 image data URL.
func decodeDataURL(value string) ([]byte, bool) {
	if !strings.HasPrefix(value, dataURLPrefix) {
		return nil, false
	}
	idx := strings.Index(value, ",")
	if idx < 0 || !strings.Contains(value[:idx], ";base64") {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(value[idx+1:])
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func isDataURL(value any) bool {
	s, ok := value.(string)
	return ok && strings.HasPrefix(s, dataURLPrefix)
}
