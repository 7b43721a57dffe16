package sankey

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/lipidflow-cli/internal/table"
)

// lipidTable is a small classification table whose abundances add up to 100.
func lipidTable() *table.Table {
	return table.FromRecords("lipids",
		[]string{"lipid", "Category", "Main class", "Sub class", "abundance"},
		[]string{"PC 16:0_18:1", "GP", "PC", "PC-diacyl", "40"},
		[]string{"PC O-34:1", "GP", "PC", "PC-ether", "5"},
		[]string{"PE 18:0_20:4", "GP", "PE", "PE-diacyl", "20"},
		[]string{"TG 52:2", "GL", "TG", "TG", "25"},
		[]string{"Cer 18:1;O2/16:0", "SP", "Cer", "Cer", "9.5"},
		[]string{"SM 34:1;O2", "SP", "SM", "SM", "0.5"},
	)
}

func lipidColumns() Columns {
	return Columns{Start: "Category", Mid: "Main class", End: "Sub class", Value: "abundance", RowID: "lipid"}
}

func mustFrame(t *testing.T, src Source, value, id string) *Frame {
	t.Helper()
	f, err := NewFrame(src, value, id)
	require.NoError(t, err)
	return f
}
