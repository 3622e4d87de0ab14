package ner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryRecognizerLongestNameWins(t *testing.T) {
	d := NewDictionaryRecognizer([]string{"张三", "张三丰", " 李四 ", ""}, "PERSON")

	got, err := d.Recognize(context.Background(), []string{
		"张三丰与李四是兄弟",
		"张三的妻子",
		"无人",
	})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []Entity{{Text: "张三丰", Label: "PERSON"}, {Text: "李四", Label: "PERSON"}}, got[0])
	assert.Equal(t, []Entity{{Text: "张三", Label: "PERSON"}}, got[1])
	assert.Empty(t, got[2])
}

func TestDictionaryRecognizerRepeatedMentions(t *testing.T) {
	d := NewDictionaryRecognizer([]string{"Ann"}, "PERSON")
	got, err := d.Recognize(context.Background(), []string{"Ann and Ann"})
	require.NoError(t, err)
	assert.Len(t, got[0], 2)
}

func TestDictionaryRecognizerHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDictionaryRecognizer([]string{"x"}, "PERSON").Recognize(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
