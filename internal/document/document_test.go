package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageIndex(t *testing.T) {
	idx := NewPageIndex([]string{"first", "", "third"})
	assert.Equal(t, 3, idx.Len())

	p, ok := idx.Page(1)
	assert.True(t, ok)
	assert.Equal(t, Page{Index: 0, Text: "first"}, p)

	p, ok = idx.Page(2)
	assert.True(t, ok)
	assert.Equal(t, "", p.Text, "empty pages keep their slot")

	_, ok = idx.Page(0)
	assert.False(t, ok)
	_, ok = idx.Page(4)
	assert.False(t, ok)

	assert.Equal(t, []string{"first", "", "third"}, idx.Texts())

	pages := idx.Pages()
	pages[0].Text = "mutated"
	assert.Equal(t, "first", idx.Texts()[0], "Pages returns a copy")
}

func TestRawTableHeader(t *testing.T) {
	assert.Nil(t, RawTable{}.Header())
	assert.Equal(t, []string{"姓名", "职务"}, RawTable{Rows: [][]string{{"姓名", "职务"}, {"张三", "董事"}}}.Header())
}

func TestLogicalTableAppend(t *testing.T) {
	lt := LogicalTable{Columns: []string{"姓名", "职务", "任期"}}
	lt.Append([]string{"张三", "董事"})
	lt.Append([]string{"李四", "监事", "2020", "extra"})

	assert.True(t, lt.HasColumn("职务"))
	assert.False(t, lt.HasColumn("性别"))
	assert.Equal(t, []Row{
		{"姓名": "张三", "职务": "董事", "任期": ""},
		{"姓名": "李四", "职务": "监事", "任期": "2020"},
	}, lt.Rows)
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, 100.0, Column{Left: 50, Right: 150}.Width())
}
