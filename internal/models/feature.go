package models

// Feature identifies one of the server's analysis capabilities.
type Feature string

const (
	FeatureProofreading Feature = "proofreading"
	FeatureRestructure  Feature = "restructure"
	FeatureCoherence    Feature = "coherence"
	FeatureCompare      Feature = "compare"
)

// AllFeatures lists every analysis kind the server supports.
var AllFeatures = []Feature{
	FeatureProofreading,
	FeatureRestructure,
	FeatureCoherence,
	FeatureCompare,
}

// ParseFeature validates a feature name from user input.
func ParseFeature(s string) (Feature, bool) {
	f := Feature(s)
	for _, known := range AllFeatures {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// Valid reports whether f is one of the known analysis kinds.
func (f Feature) Valid() bool {
	_, ok := ParseFeature(string(f))
	return ok
}

// Synthetic column names appended to editable result tables. They carry the
// per-row action controls rather than server data.
const (
	ColumnReplace  = "apakah_ganti"
	ColumnAssignee = "pic_proofread"
	ColumnFinalize = "finalize"
)

// Result columns with special presentation rules.
const (
	ColumnContext   = "Pada Kalimat"     // highlighted with the error term
	ColumnErrorTerm = "Kata/Frasa Salah" // the term highlighted inside ColumnContext
	ColumnRevised   = "Kalimat Revisi"   // diff spans
	ColumnSuggested = "saran"            // diff spans
	ColumnReason    = "Alasan"           // newline-preserving
)

// Columns returns the server's column order for f, the same set the web
// front end used for each feature. Compare results are read-only; the other
// features carry the action-control columns.
func (f Feature) Columns() []string {
	switch f {
	case FeatureProofreading:
		return []string{
			"Kata/Frasa Salah", "Perbaikan Sesuai KBBI", "Pada Kalimat",
			"Ditemukan di Halaman", ColumnReplace, ColumnAssignee, ColumnFinalize,
		}
	case FeatureRestructure:
		return []string{
			"Paragraf yang Perlu Dipindah", "Lokasi Asli", "Saran Lokasi Baru",
			ColumnReplace, ColumnAssignee, ColumnFinalize,
		}
	case FeatureCoherence:
		return []string{
			"topik", "asli", "saran", "catatan",
			ColumnReplace, ColumnAssignee, ColumnFinalize,
		}
	case FeatureCompare:
		return []string{"Sub-bab Asal", "Kalimat yang Menyimpang", "Alasan"}
	default:
		return nil
	}
}

// Editable reports whether f's result table carries action controls.
func (f Feature) Editable() bool {
	return f != FeatureCompare
}

// columnLabels maps raw column names to the display labels the original UI
// showed in table headers.
var columnLabels = map[string]string{
	"Kata/Frasa Salah":      "Salah",
	"Perbaikan Sesuai KBBI": "Perbaikan",
	"Pada Kalimat":          "Konteks Kalimat",
	"Ditemukan di Halaman":  "Halaman",
	"Kalimat Awal":          "Kalimat Asli",
	"Kata yang Direvisi":    "Perubahan",
	"topik":                 "Topik Utama",
	"asli":                  "Teks Asli",
	"saran":                 "Saran Revisi",
	"catatan":               "Catatan",
	ColumnReplace:           "Ganti?",
	ColumnAssignee:          "PIC",
	ColumnFinalize:          "Finalize",
}

// ColumnLabel returns the display label for a column, falling back to the
// raw name for columns without a custom label.
func ColumnLabel(column string) string {
	if label, ok := columnLabels[column]; ok {
		return label
	}
	return column
}
