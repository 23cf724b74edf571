package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	t.Run("keyphrases joined with city appended", func(t *testing.T) {
		got := Build([]string{"golang", "backend developer"}, "Pune")
		assert.Equal(t, "golang backend developer Pune", got)
	})

	t.Run("no city", func(t *testing.T) {
		got := Build([]string{"golang", "kubernetes"}, "")
		assert.Equal(t, "golang kubernetes", got)
	})

	t.Run("empty keyphrases with city", func(t *testing.T) {
		assert.Equal(t, "Bengaluru", Build(nil, "Bengaluru"))
		assert.Equal(t, "Bengaluru", Build([]string{}, "Bengaluru"))
	})

	t.Run("empty everything", func(t *testing.T) {
		assert.Equal(t, "", Build(nil, ""))
	})

	t.Run("single keyphrase", func(t *testing.T) {
		assert.Equal(t, "data engineer", Build([]string{"data engineer"}, ""))
	})
}
