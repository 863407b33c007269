package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCategories = []string{"exams", "homework", "literature", "misc", "summaries"}

func Test_ParseFolderPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    FolderPath
		wantErr error
	}{
		{name: "empty", path: "", wantErr: ErrNoFolder},
		{name: "unknown category", path: "lectures", wantErr: ErrNoFolder},
		{name: "flat category", path: "misc", want: FolderPath{Category: "misc"}},
		{name: "flat category trailing slash", path: "misc/", want: FolderPath{Category: "misc"}},
		{name: "flat category has no children", path: "misc/2020-2021", wantErr: ErrNoFolder},
		{name: "structured category", path: "exams", want: FolderPath{Category: "exams", Structured: true}},
		{name: "period", path: "exams/2020-2021", want: FolderPath{Category: "exams", Structured: true, Period: "2020-2021"}},
		{name: "subtype", path: "homework/2019-2020/answers",
			want: FolderPath{Category: "homework", Structured: true, Period: "2019-2020", Subtype: "answers"}},
		{name: "bad subtype", path: "exams/2020-2021/solutions", wantErr: ErrNoFolder},
		{name: "too deep", path: "exams/2020-2021/questions/extra", wantErr: ErrNoFolder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFolderPath(testCategories, tt.path)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_FolderPath_roundTrip(t *testing.T) {
	for _, path := range []string{"misc", "exams", "exams/2020-2021", "homework/2012-2013/questions"} {
		p, err := ParseFolderPath(testCategories, path)
		require.NoError(t, err)
		assert.Equal(t, path, p.String())
	}
}

func Test_FolderPath_Depth(t *testing.T) {
	assert.Equal(t, 1, FolderPath{Category: "misc"}.Depth())
	assert.Equal(t, 2, FolderPath{Category: "exams", Period: "2020-2021"}.Depth())
	assert.Equal(t, 3, FolderPath{Category: "exams", Period: "2020-2021", Subtype: "questions"}.Depth())
}
