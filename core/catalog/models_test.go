package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_AcademicYear(t *testing.T) {
	tests := []struct {
		now  string
		want int
	}{
		{now: "2021-01-15", want: 2020}, // before August: previous year
		{now: "2021-07-31", want: 2020},
		{now: "2021-08-01", want: 2021}, // rolls over in August
		{now: "2021-12-31", want: 2021},
	}
	for _, tt := range tests {
		now, err := time.Parse("2006-01-02", tt.now)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, AcademicYear(now), "now=%s", tt.now)
	}
}

func Test_YearPeriods(t *testing.T) {
	now := time.Date(2013, time.September, 1, 0, 0, 0, 0, time.UTC)

	periods := YearPeriods(2010, now)
	assert.Equal(t, []YearPeriod{
		{Year: 2010, Label: "2010 - 2011 (and earlier)"},
		{Year: 2011, Label: "2011 - 2012"},
		{Year: 2012, Label: "2012 - 2013"},
		{Year: 2013, Label: "2013 - 2014"},
	}, periods)
}

func Test_FormatByteSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{size: 0, want: "0 b"},
		{size: 1023, want: "1023 b"},
		{size: 1024, want: "1.0 Kb"},
		{size: 1536, want: "1.5 Kb"},
		{size: 5 << 20, want: "5.0 MB"},
		{size: 3 << 30, want: "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatByteSize(tt.size))
	}
}

func Test_NewFile_DisplayPath(t *testing.T) {
	flat := NewFile{Category: "misc"}
	assert.Equal(t, "misc", flat.DisplayPath())

	structured := NewFile{Category: "exams", Year: 2020, Subtype: "questions"}
	assert.Equal(t, "exams/2020-2021/questions", structured.DisplayPath())
}
