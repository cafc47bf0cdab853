package dedup

import (
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/usecase/similarity"
)

// Deduplicate merges duplicate reports in articles according to strategy.
// The returned slice holds new merged articles in first-seen order; inputs are not
// modified. Nil entries are ignored. An unknown strategy falls back to Combined.
func Deduplicate(articles []*entity.Article, strategy Strategy) []*entity.Article {
	switch strategy {
	case ByURL:
		return MergeByURL(articles)
	case ByTitle:
		return MergeByTitle(articles)
	case ByTitleSimilarity:
		return MergeByTitleSimilarity(articles)
	default:
		return MergeCombined(articles)
	}
}

// MergeByURL groups articles by NormalizeURL and merges each group into its first member.
func MergeByURL(articles []*entity.Article) []*entity.Article {
	return mergeByKey(articles, func(a *entity.Article) string {
		return NormalizeURL(a.URL)
	})
}

// MergeByTitle groups articles by normalized title and merges each group into its
// first member.
func MergeByTitle(articles []*entity.Article) []*entity.Article {
	return mergeByKey(articles, func(a *entity.Article) string {
		return similarity.NormalizeTitle(a.Title)
	})
}

// MergeByTitleSimilarity performs a single greedy pass: each article is compared with the
// representatives accepted so far and merged into the first one whose title similarity
// exceeds similarity.MatchThreshold. Otherwise it becomes a new representative.
//
// The result depends on input order; no search for a better match is made.
func MergeByTitleSimilarity(articles []*entity.Article) []*entity.Article {
	out := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if a == nil {
			continue
		}
		merged := false
		for i, rep := range out {
			if similarity.IsMatch(rep.Title, a.Title) {
				out[i] = rep.Merge(a)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, a.Merge(nil))
		}
	}
	return out
}

// MergeCombined runs MergeByURL and then MergeByTitleSimilarity over the merged result,
// so syndicated copies with different URLs are caught after exact duplicates collapse.
func MergeCombined(articles []*entity.Article) []*entity.Article {
	return MergeByTitleSimilarity(MergeByURL(articles))
}

// mergeByKey groups articles on key in first-seen order.
func mergeByKey(articles []*entity.Article, key func(*entity.Article) string) []*entity.Article {
	index := make(map[string]int, len(articles))
	out := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if a == nil {
			continue
		}
		k := key(a)
		if i, ok := index[k]; ok {
			out[i] = out[i].Merge(a)
			continue
		}
		index[k] = len(out)
		// Merge(nil) yields a detached copy so callers never share slices with the input
		out = append(out, a.Merge(nil))
	}
	return out
}
