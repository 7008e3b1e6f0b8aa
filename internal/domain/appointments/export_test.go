package appointments

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportAppointmentList(t *testing.T) {
	items := []Item{
		sampleItem(time.Date(2025, 1, 1, 11, 30, 0, 0, time.UTC), StateCheckedIn),
		sampleItem(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), StateConfirmed),
	}
	list := PresentAppointmentList("c1", items, FilterRemaining, map[Filter]int{}, presenterNow)

	data, err := ExportAppointmentList(list)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Appointments"}, f.GetSheetList())

	rows, err := f.GetRows("Appointments")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"9am", "Janet Williams", "999 009 00829", "1 January 1955", "70 years old", "Confirmed"}, rows[1])
	assert.Equal(t, "11:30am", rows[2][0])
	assert.Equal(t, "Checked in", rows[2][5])
}
