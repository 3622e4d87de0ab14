package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validParams = `
table_column_names:
  name: {chinese: 姓名, english: name}
  position: {chinese: 职务, english: position}
board_members_positions_regex: "董事|监事"
optimal_pdf_page_height: 842
person_label: PER
normalization: nfkc
familial_gazetteer:
  sibling: [兄弟, 姐妹]
  cousin: [表兄弟]
  spouse: 配偶
`

func TestParseParams(t *testing.T) {
	p, err := ParseParams([]byte(validParams))
	require.NoError(t, err)

	assert.Equal(t, "姓名", p.TableColumnNames.Name.Chinese)
	assert.Equal(t, "position", p.TableColumnNames.Position.English)
	assert.Equal(t, 842.0, p.OptimalPDFPageHeight)
	assert.Equal(t, "PER", p.PersonLabel)
	assert.Equal(t, NormalizeNFKC, p.Normalization)
	require.NotNil(t, p.Positions())
	assert.True(t, p.Positions().MatchString("独立董事"))
	assert.False(t, p.Positions().MatchString("总经理"))
}

func TestGazetteerKeepsDocumentOrder(t *testing.T) {
	p, err := ParseParams([]byte(validParams))
	require.NoError(t, err)

	assert.Equal(t, Gazetteer{
		{Label: "sibling", Keywords: []string{"兄弟", "姐妹"}},
		{Label: "cousin", Keywords: []string{"表兄弟"}},
		{Label: "spouse", Keywords: []string{"配偶"}},
	}, p.FamilialGazetteer)
}

func TestParseParamsDefaults(t *testing.T) {
	p, err := ParseParams([]byte(`
table_column_names:
  name: {chinese: 姓名}
  position: {chinese: 职务}
board_members_positions_regex: 董事
optimal_pdf_page_height: 800
`))
	require.NoError(t, err)
	assert.Equal(t, "name", p.TableColumnNames.Name.English)
	assert.Equal(t, "position", p.TableColumnNames.Position.English)
	assert.Equal(t, "PERSON", p.PersonLabel)
	assert.Equal(t, NormalizeNFC, p.Normalization)
	assert.Empty(t, p.FamilialGazetteer)
}

func TestParseParamsValidation(t *testing.T) {
	doc := func(regex, height, extra string) string {
		return "table_column_names:\n" +
			"  name: {chinese: 姓名}\n" +
			"  position: {chinese: 职务}\n" +
			"board_members_positions_regex: " + regex + "\n" +
			"optimal_pdf_page_height: " + height + "\n" + extra
	}

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name header", "table_column_names:\n  position: {chinese: 职务}\nboard_members_positions_regex: x\noptimal_pdf_page_height: 1\n", "name.chinese"},
		{"missing regex", doc(`""`, "842", ""), "board_members_positions_regex is required"},
		{"bad regex", doc(`"董事("`, "842", ""), "board_members_positions_regex"},
		{"zero height", doc("董事", "0", ""), "optimal_pdf_page_height"},
		{"unknown normalization", doc("董事", "842", "normalization: nfd\n"), "normalization"},
		{"gazetteer not a mapping", doc("董事", "842", "familial_gazetteer: [兄弟]\n"), "expected mapping"},
		{"gazetteer nested mapping", doc("董事", "842", "familial_gazetteer:\n  sibling: {a: b}\n"), "expected list of keywords"},
		{"malformed yaml", "table_column_names: [", "parse params"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validParams), 0o644))

	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Len(t, p.FamilialGazetteer, 3)

	_, err = LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read params file")
}

func TestSampleParamsFile(t *testing.T) {
	p, err := LoadParams(filepath.Join("..", "..", "configs", "params.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.FamilialGazetteer)
	assert.Equal(t, "姓名", p.TableColumnNames.Name.Chinese)
}
