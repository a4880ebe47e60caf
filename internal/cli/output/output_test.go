package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-dashboard/internal/domain/weather"
)

func TestPrinterPlainPrefixes(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false)

	p.Success("added %s", "Oslo")
	p.Warning("slow %d", 3)
	p.Header("Favorites")

	require.Contains(t, out.String(), "[OK] added Oslo")
	require.Contains(t, out.String(), "Favorites\n---------")
	require.Equal(t, "[WARN] slow 3\n", errOut.String())
}

func TestFormatTemperature(t *testing.T) {
	require.Equal(t, "22°C", FormatTemperature(21.6, weather.UnitsMetric))
	require.Equal(t, "70°F", FormatTemperature(70.2, weather.UnitsImperial))
	require.Equal(t, "290K", FormatTemperature(290.1, weather.UnitsStandard))

	p := NewPrinter(&bytes.Buffer{}, &bytes.Buffer{}, false)
	require.Equal(t, "-3°C", p.Temperature(-3.4, weather.UnitsMetric))
}

func TestTableRendersRows(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"City", "Temp"})
	table.AddRow("Oslo", "-3°C")
	table.AddRow("Paris", "11°C")
	require.Equal(t, 2, table.Len())
	require.NoError(t, table.Render())

	rendered := buf.String()
	require.Contains(t, rendered, "Oslo")
	require.Contains(t, rendered, "11°C")
	require.Less(t, strings.Index(rendered, "Oslo"), strings.Index(rendered, "Paris"))
}
