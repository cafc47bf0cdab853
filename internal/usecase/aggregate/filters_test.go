package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/usecase/aggregate"
)

func merged(t *testing.T) []*entity.Article {
	return []*entity.Article{
		withSources(art(t, "A", "https://x.com/1", "Single", 1), "A"),
		withSources(art(t, "A", "https://x.com/2", "Pair", 2), "A", "B"),
		withSources(art(t, "B", "https://x.com/3", "Triple", 3), "B", "C", "D"),
		withSources(art(t, "C", "https://x.com/4", "Other pair", 4), "C", "D"),
		nil,
	}
}

func TestMostRepeated(t *testing.T) {
	got := aggregate.MostRepeated(merged(t), aggregate.DefaultMinSources)

	assert.Equal(t, []string{"Triple", "Pair", "Other pair"}, titlesOf(got))
	for _, a := range got {
		assert.GreaterOrEqual(t, a.SourceCount, 2)
	}

	assert.Equal(t, []string{"Triple"}, titlesOf(aggregate.MostRepeated(merged(t), 3)))
}

func TestUniqueArticles(t *testing.T) {
	assert.Equal(t, []string{"Single"}, titlesOf(aggregate.UniqueArticles(merged(t))))
}

func TestBySourceCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		want     []string
	}{
		{"all", 1, 0, []string{"Single", "Pair", "Triple", "Other pair"}},
		{"exactly two", 2, 2, []string{"Pair", "Other pair"}},
		{"two or more", 2, 0, []string{"Pair", "Triple", "Other pair"}},
		{"inclusive bounds", 1, 2, []string{"Single", "Pair", "Other pair"}},
		{"empty range", 5, 9, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titlesOf(aggregate.BySourceCount(merged(t), tt.min, tt.max)))
		})
	}
}

func TestFromSource(t *testing.T) {
	assert.Equal(t, []string{"Triple", "Other pair"}, titlesOf(aggregate.FromSource(merged(t), "D")))
	assert.Empty(t, aggregate.FromSource(merged(t), "Z"))
}
