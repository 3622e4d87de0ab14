package tables

import (
	"testing"

	"github.com/dgallion1/boardkin/internal/document"
	"github.com/stretchr/testify/assert"
)

func TestCandidatePages(t *testing.T) {
	idx := document.NewPageIndex([]string{
		"公司简介\n本公司成立于2001年",                 // no headers
		"董事会成员\n姓名 性别 职务 任期\n张三 男 董事长 2020", // both tokens
		"姓名 性别 职务 任期",                        // name not preceded by newline
		"前言\n姓名 性别\n职务\n",                     // position not surrounded by spaces
		"附表\n姓名 年龄 职务 持股\n李四 50 监事 0",     // both tokens
	})

	assert.Equal(t, []int{2, 5}, CandidatePages(idx, "姓名", "职务"))
}

func TestCandidatePages_NoMatch(t *testing.T) {
	idx := document.NewPageIndex([]string{"nothing here", "or here"})
	assert.Empty(t, CandidatePages(idx, "姓名", "职务"))
}
