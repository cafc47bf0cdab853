package aggregate

import (
	"sort"

	"news-aggregator/internal/domain/entity"
)

// DefaultMinSources is the default threshold used by MostRepeated.
const DefaultMinSources = 2

// MostRepeated returns the articles reported by at least minSources sources, ordered by
// SourceCount descending. Articles with equal counts keep their input order.
func MostRepeated(articles []*entity.Article, minSources int) []*entity.Article {
	out := filter(articles, func(a *entity.Article) bool {
		return a.SourceCount >= minSources
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SourceCount > out[j].SourceCount
	})
	return out
}

// UniqueArticles returns the articles reported by exactly one source.
func UniqueArticles(articles []*entity.Article) []*entity.Article {
	return filter(articles, func(a *entity.Article) bool {
		return a.SourceCount == 1
	})
}

// BySourceCount returns the articles whose SourceCount lies in [minSources, maxSources].
// A maxSources of zero or less means no upper bound.
func BySourceCount(articles []*entity.Article, minSources, maxSources int) []*entity.Article {
	return filter(articles, func(a *entity.Article) bool {
		if a.SourceCount < minSources {
			return false
		}
		return maxSources <= 0 || a.SourceCount <= maxSources
	})
}

// FromSource returns the articles that sourceName reported, alone or among others.
func FromSource(articles []*entity.Article, sourceName string) []*entity.Article {
	return filter(articles, func(a *entity.Article) bool {
		return a.HasSource(sourceName)
	})
}

func filter(articles []*entity.Article, keep func(*entity.Article) bool) []*entity.Article {
	out := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if a != nil && keep(a) {
			out = append(out, a)
		}
	}
	return out
}
